package risk

import (
	"math"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
)

// Band is the conviction bucket a position falls into
type Band string

const (
	BandRocket     Band = "ROCKET"     // 고확신 성장
	BandAnchor     Band = "ANCHOR"     // 안정 보유
	BandWait       Band = "WAIT"       // 관망
	BandUnanalyzed Band = "UNANALYZED" // 점수 없음
)

// Aggregator buckets positions by score band
// ⭐ SSOT: 포트폴리오 리스크 점수 계산은 여기서만
type Aggregator struct {
	bands policy.Risk
}

// NewAggregator creates an aggregator with the given band thresholds
func NewAggregator(bands policy.Risk) *Aggregator {
	return &Aggregator{bands: bands}
}

// Classify returns the band of a single score (first match wins)
func (a *Aggregator) Classify(score *float64) Band {
	switch {
	case score == nil:
		return BandUnanalyzed
	case *score >= a.bands.RocketMinScore:
		return BandRocket
	case *score >= a.bands.AnchorMinScore:
		return BandAnchor
	default:
		return BandWait
	}
}

// Aggregate counts bands and computes the rocket share as risk score.
// 분석된 종목이 하나도 없으면 0
func (a *Aggregator) Aggregate(positions []contracts.EnrichedPosition) contracts.RiskSummary {
	var summary contracts.RiskSummary

	for _, p := range positions {
		switch a.Classify(p.Score) {
		case BandUnanalyzed:
			summary.UnanalyzedCount++
		case BandRocket:
			summary.RocketCount++
		case BandAnchor:
			summary.AnchorCount++
		default:
			summary.WaitCount++
		}
	}

	analyzed := summary.RocketCount + summary.AnchorCount + summary.WaitCount
	if analyzed > 0 {
		summary.RiskScore = int(math.Round(float64(summary.RocketCount) / float64(analyzed) * 100))
	}

	return summary
}
