package normalize

// vitalPenalty deducts points when a metric crosses its "needs improvement"
// (soft) or "poor" (hard) threshold.
type vitalPenalty struct {
	soft, hard         float64
	softCost, hardCost int
}

var (
	lcpPenalty  = vitalPenalty{soft: 2500, hard: 4000, softCost: 10, hardCost: 25}
	fidPenalty  = vitalPenalty{soft: 100, hard: 300, softCost: 8, hardCost: 20}
	clsPenalty  = vitalPenalty{soft: 0.1, hard: 0.25, softCost: 8, hardCost: 20}
	siPenalty   = vitalPenalty{soft: 3400, hard: 5800, softCost: 6, hardCost: 15}
	ttfbPenalty = vitalPenalty{soft: 800, hard: 1800, softCost: 4, hardCost: 10}
	fcpPenalty  = vitalPenalty{soft: 1800, hard: 3000, softCost: 4, hardCost: 10}
)

func (p vitalPenalty) cost(v float64) int {
	switch {
	case v > p.hard:
		return p.hardCost
	case v > p.soft:
		return p.softCost
	}
	return 0
}

// ScoreFromVitals estimates a 0-100 score for providers that do not report a
// performance category (WebPageTest without Lighthouse).
func ScoreFromVitals(lcp, fid, cls, si, ttfb, fcp float64) int {
	score := 100
	score -= lcpPenalty.cost(lcp)
	score -= fidPenalty.cost(fid)
	score -= clsPenalty.cost(cls)
	score -= siPenalty.cost(si)
	score -= ttfbPenalty.cost(ttfb)
	score -= fcpPenalty.cost(fcp)
	return max(score, 0)
}
