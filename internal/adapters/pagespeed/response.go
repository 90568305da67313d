package pagespeed

import (
	"encoding/json"

	"perfscope/internal/domain"
	"perfscope/internal/normalize"
)

// Response is the subset of the runPagespeed payload we read. Every field is
// optional; absent values fall through to normalize defaults.
type Response struct {
	ID                string            `json:"id"`
	LoadingExperience loadingExperience `json:"loadingExperience"`
	LighthouseResult  *lighthouseResult `json:"lighthouseResult"`
}

type loadingExperience struct {
	Metrics map[string]fieldMetric `json:"metrics"`
}

type fieldMetric struct {
	Percentile *float64 `json:"percentile"`
}

type lighthouseResult struct {
	FetchTime  string              `json:"fetchTime"`
	Audits     map[string]audit    `json:"audits"`
	Categories map[string]category `json:"categories"`
}

type audit struct {
	NumericValue *float64        `json:"numericValue"`
	Details      json.RawMessage `json:"details"`
}

type category struct {
	Score *float64 `json:"score"`
}

type networkDetails struct {
	Items []json.RawMessage `json:"items"`
}

type networkItem struct {
	TransferSize *float64 `json:"transferSize"`
}

// ToAudit adapts a PageSpeed payload. It never fails and reads no clock:
// TestID is the Lighthouse fetchTime, or empty when the payload has none.
func ToAudit(r *Response, target string, strategy domain.Strategy) normalize.Audit {
	a := normalize.Audit{
		URL:      target,
		Provider: ProviderName,
		Strategy: strategy,
	}
	if r.ID != "" {
		a.URL = r.ID
	}

	if fid, ok := r.LoadingExperience.Metrics["FIRST_INPUT_DELAY_MS"]; ok && fid.Percentile != nil {
		v := *fid.Percentile
		a.FieldFID = &v
	}

	lr := r.LighthouseResult
	if lr == nil {
		lr = &lighthouseResult{}
	}
	if lr.FetchTime != "" {
		a.TestID = lr.FetchTime
	}

	cats := &normalize.Categories{
		Performance:   lr.categoryScore("performance"),
		Accessibility: lr.categoryScore("accessibility"),
		BestPractices: lr.categoryScore("best-practices"),
		SEO:           lr.categoryScore("seo"),
	}
	a.Categories = cats
	a.PerformanceScore = cats.Performance

	fcp := lr.numeric("first-contentful-paint")
	si := lr.numeric("speed-index")
	a.Metrics = normalize.Metrics{
		LCP:            lr.numeric("largest-contentful-paint"),
		FCP:            fcp,
		SpeedIndex:     si,
		TBT:            lr.numeric("total-blocking-time"),
		CLS:            lr.numeric("cumulative-layout-shift"),
		TTFB:           lr.numeric("server-response-time"),
		LoadTime:       lr.numeric("interactive"),
		StartRender:    fcp,
		VisualComplete: si,
	}
	a.Network = lr.network()
	return a
}

func (lr *lighthouseResult) numeric(id string) float64 {
	if a, ok := lr.Audits[id]; ok && a.NumericValue != nil {
		return *a.NumericValue
	}
	return 0
}

func (lr *lighthouseResult) categoryScore(id string) *float64 {
	c, ok := lr.Categories[id]
	if !ok || c.Score == nil {
		return nil
	}
	v := *c.Score
	return &v
}

// network sums the network-requests audit. Unparseable details or items count
// as absent.
func (lr *lighthouseResult) network() normalize.Network {
	a, ok := lr.Audits["network-requests"]
	if !ok || len(a.Details) == 0 {
		return normalize.Network{}
	}
	var d networkDetails
	if err := json.Unmarshal(a.Details, &d); err != nil {
		return normalize.Network{}
	}
	var bytes float64
	for _, raw := range d.Items {
		var it networkItem
		if err := json.Unmarshal(raw, &it); err != nil || it.TransferSize == nil {
			continue
		}
		bytes += *it.TransferSize
	}
	return normalize.Network{Requests: len(d.Items), BytesIn: int64(bytes)}
}
