package webpagetest

import (
	"encoding/json"
	"sort"
	"strconv"

	"perfscope/internal/domain"
	"perfscope/internal/normalize"
)

// ResultData is the jsonResult.php "data" object.
type ResultData struct {
	URL        string              `json:"url"`
	Runs       map[string]run      `json:"runs"`
	Lighthouse map[string]*float64 `json:"lighthouse"`
}

type run struct {
	FirstView *firstView `json:"firstView"`
}

type firstView struct {
	LoadTime             float64         `json:"loadTime"`
	TTFB                 float64         `json:"TTFB"`
	Render               float64         `json:"render"`
	VisualComplete       float64         `json:"visualComplete"`
	SpeedIndex           float64         `json:"SpeedIndex"`
	FirstContentfulPaint float64         `json:"firstContentfulPaint"`
	TotalBlockingTime    *float64        `json:"TotalBlockingTime"`
	BytesIn              int64           `json:"bytesIn"`
	BytesInDoc           *int64          `json:"bytesInDoc"`
	Requests             int             `json:"requests"`
	RequestsDoc          *int            `json:"requestsDoc"`
	ChromeUserTiming     json.RawMessage `json:"chromeUserTiming"`
}

// userTimings accepts both the keyed-object and the [{name,value}] shapes.
func (fv *firstView) userTimings() map[string]float64 {
	out := map[string]float64{}
	if len(fv.ChromeUserTiming) == 0 {
		return out
	}
	if err := json.Unmarshal(fv.ChromeUserTiming, &out); err == nil {
		return out
	}
	var list []struct {
		Name  string   `json:"name"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(fv.ChromeUserTiming, &list); err != nil {
		return map[string]float64{}
	}
	out = make(map[string]float64, len(list))
	for _, e := range list {
		if e.Value != nil {
			out[e.Name] = *e.Value
		}
	}
	return out
}

// ToAudit adapts a completed WebPageTest result. The first run's first view
// drives the summary; every run with a first view is kept in Runs.
func ToAudit(testID string, d *ResultData, strategy domain.Strategy) (normalize.Audit, error) {
	keys := make([]string, 0, len(d.Runs))
	for k, r := range d.Runs {
		if r.FirstView != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return normalize.Audit{}, ErrNoTestData
	}
	sort.Slice(keys, func(i, j int) bool { return runIndex(keys[i]) < runIndex(keys[j]) })

	fv := d.Runs[keys[0]].FirstView
	timings := fv.userTimings()

	m := normalize.Metrics{
		LCP:            timings["LargestContentfulPaint"],
		FCP:            fv.FirstContentfulPaint,
		SpeedIndex:     fv.SpeedIndex,
		CLS:            timings["CumulativeLayoutShift"],
		TTFB:           fv.TTFB,
		LoadTime:       fv.LoadTime,
		StartRender:    fv.Render,
		VisualComplete: fv.VisualComplete,
	}
	if fv.TotalBlockingTime != nil {
		m.TBT = *fv.TotalBlockingTime
	}

	a := normalize.Audit{
		TestID:   testID,
		URL:      d.URL,
		Provider: ProviderName,
		Strategy: strategy,
		Metrics:  m,
		Network: normalize.Network{
			Requests:    fv.Requests,
			BytesIn:     fv.BytesIn,
			RequestsDoc: fv.RequestsDoc,
			BytesInDoc:  fv.BytesInDoc,
		},
	}
	if v, ok := timings["FirstInputDelay"]; ok {
		a.FieldFID = &v
	}

	fid := m.TBT
	if a.FieldFID != nil {
		fid = *a.FieldFID
	}
	score := float64(normalize.ScoreFromVitals(m.LCP, fid, m.CLS, m.SpeedIndex, m.TTFB, m.FCP)) / 100
	a.PerformanceScore = &score

	if len(d.Lighthouse) > 0 {
		a.Categories = &normalize.Categories{
			Performance:   fraction(d.Lighthouse["Performance"]),
			Accessibility: fraction(d.Lighthouse["Accessibility"]),
			BestPractices: fraction(d.Lighthouse["Best Practices"]),
			SEO:           fraction(d.Lighthouse["SEO"]),
		}
	}

	for _, k := range keys {
		v := d.Runs[k].FirstView
		a.Runs = append(a.Runs, domain.RunView{
			LoadTime:       v.LoadTime,
			TTFB:           v.TTFB,
			Render:         v.Render,
			VisualComplete: v.VisualComplete,
			SpeedIndex:     v.SpeedIndex,
			BytesIn:        v.BytesIn,
			Requests:       v.Requests,
		})
	}
	return a, nil
}

// fraction accepts Lighthouse scores reported either as 0-1 or 0-100.
func fraction(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	if f > 1 {
		f /= 100
	}
	return &f
}

func runIndex(k string) int {
	n, err := strconv.Atoi(k)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
