package s2_screening

import (
	"math"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// Upside sub-score caps
const (
	maxMomentum = 2.5
	maxTraction = 2.0
	maxUpside   = 10.0
)

// ScoreUpside computes the five upside components for c
func ScoreUpside(c *contracts.Candidate, report contracts.SecurityReport, timeline pipelineconfig.Timeline, now time.Time) contracts.UpsideBreakdown {
	b := contracts.UpsideBreakdown{
		MarketCap: marketCapScore(c.MarketCap),
		Momentum:  momentumScore(c.PriceChange24h, c.Volume24h, c.MarketCap),
		Traction:  tractionScore(holderCount(c, report), c.Liquidity),
		Timing:    timingScore(c, timeline, now),
		Sector:    sectorScore(c.Sector),
	}
	b.Total = clamp(b.MarketCap+b.Momentum+b.Traction+b.Timing+b.Sector, 0, maxUpside)
	return b
}

// marketCapScore rewards small caps (more room to grow)
func marketCapScore(mcap float64) float64 {
	switch {
	case math.IsNaN(mcap) || mcap <= 0:
		return 0
	case mcap < 100_000:
		return 2.5
	case mcap < 300_000:
		return 2.0
	case mcap < 1_000_000:
		return 1.5
	case mcap < 5_000_000:
		return 1.0
	case mcap < 10_000_000:
		return 0.5
	default:
		return 0
	}
}

func momentumScore(change, volume, mcap float64) float64 {
	var s float64
	switch {
	case change > 50:
		s = 2.0
	case change > 20:
		s = 1.5
	case change > 10:
		s = 1.0
	case change > 0:
		s = 0.5
	case change > -10:
		s = 0.25
	}

	// 회전율 보너스: 하루 거래대금이 시총 초과
	if mcap > 0 && volume/mcap > 1.0 {
		s += 0.5
	}
	return math.Min(s, maxMomentum)
}

func tractionScore(holders int, liquidity float64) float64 {
	var s float64
	switch {
	case holders >= 1000:
		s += 1.0
	case holders >= 500:
		s += 0.75
	case holders >= 100:
		s += 0.5
	case holders > 0:
		s += 0.25
	}

	switch {
	case liquidity >= 100_000:
		s += 1.0
	case liquidity >= 50_000:
		s += 0.75
	case liquidity >= 10_000:
		s += 0.5
	case liquidity > 0:
		s += 0.25
	}
	return math.Min(s, maxTraction)
}

// timingScore favors very fresh listings for short timelines and
// one-to-four-week-old listings for long ones
func timingScore(c *contracts.Candidate, timeline pipelineconfig.Timeline, now time.Time) float64 {
	age, ok := c.Age(now)
	if !ok {
		return 0.5
	}

	const day = 24 * time.Hour
	if timeline.IsShort() {
		switch {
		case age < day:
			return 1.5
		case age < 3*day:
			return 1.0
		case age < 7*day:
			return 0.5
		default:
			return 0.25
		}
	}

	switch {
	case age < 7*day:
		return 0.5
	case age < 28*day:
		return 1.5
	case age < 90*day:
		return 1.0
	default:
		return 0.25
	}
}

func sectorScore(s contracts.Sector) float64 {
	switch {
	case s.IsHot():
		return 1.5
	case s.IsMedium():
		return 1.0
	default:
		return 0.5
	}
}

// holderCount prefers the security report's figure over the provider's
func holderCount(c *contracts.Candidate, report contracts.SecurityReport) int {
	if report.HolderCount != nil {
		return *report.HolderCount
	}
	return c.Holders
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
