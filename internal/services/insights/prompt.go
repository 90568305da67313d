package insights

import (
	"encoding/json"
	"fmt"

	"perfscope/internal/domain"
)

const promptTemplate = `
You are a web performance expert. Analyze the following performance test results and provide detailed optimization recommendations.

Test Results:
%s

Provide your analysis in the following JSON format (respond with valid JSON only, no markdown):

{
  "score": number (0-100),
  "grade": "A" | "B" | "C" | "D" | "F",
  "summary": "Brief overall performance summary",
  "issues": [
    {
      "metric": "Metric name (e.g., LCP, FID, CLS)",
      "current": number,
      "target": number,
      "severity": "high" | "medium" | "low",
      "description": "What this issue means"
    }
  ],
  "recommendations": [
    {
      "title": "Recommendation title",
      "description": "Detailed description",
      "priority": "High" | "Medium" | "Low",
      "expectedImpact": "Expected improvement",
      "implementation": "How to implement this",
      "metrics": ["List of metrics this affects"]
    }
  ],
  "keyInsights": [
    "Important insights about the website's performance"
  ]
}

Focus on Core Web Vitals (LCP, FID, CLS), loading performance, and user experience. Be specific and actionable in your recommendations.
%s`

const approximatedFIDNote = `
Note: the FID value above is Total Blocking Time measured in the lab, not field First Input Delay.
`

func buildPrompt(results *domain.Results) (string, error) {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results for prompt: %w", err)
	}
	note := ""
	if results.WebVitals.FIDApproximated {
		note = approximatedFIDNote
	}
	return fmt.Sprintf(promptTemplate, payload, note), nil
}
