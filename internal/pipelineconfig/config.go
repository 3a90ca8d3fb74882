package pipelineconfig

import (
	"math"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

// Risk is the operator's risk appetite
type Risk string

const (
	RiskHigh   Risk = "High"
	RiskMedium Risk = "Medium"
	RiskLow    Risk = "Low"
)

// ParseRisk matches s case-insensitively
func ParseRisk(s string) (Risk, bool) {
	for _, r := range []Risk{RiskHigh, RiskMedium, RiskLow} {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// Timeline is the intended holding horizon
type Timeline string

const (
	TimelineDays   Timeline = "Days"
	TimelineWeeks  Timeline = "Weeks"
	TimelineMonths Timeline = "Months"
	TimelineYears  Timeline = "Years"
)

// ParseTimeline matches s case-insensitively
func ParseTimeline(s string) (Timeline, bool) {
	for _, t := range []Timeline{TimelineDays, TimelineWeeks, TimelineMonths, TimelineYears} {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// IsShort reports whether the timeline favours very fresh listings
func (t Timeline) IsShort() bool {
	return t == TimelineDays || t == TimelineWeeks
}

// Known discovery sources, in fetchTokenData priority order
const (
	SourceDexScreener   = "dexscreener"
	SourceCoinGecko     = "coingecko"
	SourceCoinMarketCap = "coinmarketcap"
)

// KnownSources returns every adapter name the coordinator can build
func KnownSources() []string {
	return []string{SourceDexScreener, SourceCoinGecko, SourceCoinMarketCap}
}

// MarketCapRange is a half-open [Min, Max) USD range
type MarketCapRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v falls inside the range
func (r MarketCapRange) Contains(v float64) bool {
	return v >= r.Min && v < r.Max
}

// Market-cap buckets
const (
	BucketUltra    = "ultra"
	BucketEmerging = "emerging"
	BucketEarly    = "early"
	BucketMid      = "mid"
	BucketAny      = "any"
)

var buckets = map[string]MarketCapRange{
	BucketUltra:    {Min: 0, Max: 1_000_000},
	BucketEmerging: {Min: 1_000_000, Max: 10_000_000},
	BucketEarly:    {Min: 10_000_000, Max: 50_000_000},
	BucketMid:      {Min: 50_000_000, Max: 250_000_000},
	BucketAny:      {Min: 0, Max: math.Inf(1)},
}

// BucketRange resolves a bucket name; ok is false for unknown names
func BucketRange(name string) (MarketCapRange, bool) {
	r, ok := buckets[strings.ToLower(name)]
	return r, ok
}

// Options is the flat pipeline configuration
// ⭐ SSOT: 파이프라인 동작을 바꾸는 모든 옵션
type Options struct {
	MarketCap           string           `yaml:"market_cap" json:"marketCap"`
	Sector              contracts.Sector `yaml:"sector" json:"sector"`
	Risk                Risk             `yaml:"risk" json:"risk"`
	Timeline            Timeline         `yaml:"timeline" json:"timeline"`
	MaxCandidates       int              `yaml:"max_candidates" json:"maxCandidates"`
	Sources             []string         `yaml:"sources" json:"sources"`
	ScreeningThreshold  float64          `yaml:"screening_threshold" json:"screeningThreshold"`
	MaxRedFlags         int              `yaml:"max_red_flags" json:"maxRedFlags"`
	EvaluationThreshold float64          `yaml:"evaluation_threshold" json:"evaluationThreshold"`
	DDThreshold         float64          `yaml:"dd_threshold" json:"ddThreshold"`
	Chains              []string         `yaml:"chains" json:"chains"`
	AutoScreenAlerts    bool             `yaml:"auto_screen_alerts" json:"autoScreenAlerts"`
	AutoEvaluateAlerts  bool             `yaml:"auto_evaluate_alerts" json:"autoEvaluateAlerts"`
}

// Defaults returns the built-in pipeline options
func Defaults() Options {
	return Options{
		MarketCap:           BucketEmerging,
		Sector:              "", // all sectors
		Risk:                RiskMedium,
		Timeline:            TimelineWeeks,
		MaxCandidates:       50,
		Sources:             []string{SourceCoinGecko, SourceDexScreener, SourceCoinMarketCap},
		ScreeningThreshold:  5.0, // 10점 만점 중 절반
		MaxRedFlags:         3,
		EvaluationThreshold: 30, // 50점 만점, HOLD 상단
		DDThreshold:         0.7,
		Chains:              nil, // all chains
	}
}

// Range returns the market-cap range of the configured bucket
// (falls back to "any" for unknown names).
func (o Options) Range() MarketCapRange {
	if r, ok := BucketRange(o.MarketCap); ok {
		return r
	}
	return buckets[BucketAny]
}

// SourceEnabled reports whether name is in the enabled source set
func (o Options) SourceEnabled(name string) bool {
	for _, s := range o.Sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// ChainAllowed applies the chain allow-list; an empty chain always passes
func (o Options) ChainAllowed(chain string) bool {
	if len(o.Chains) == 0 || chain == "" {
		return true
	}
	want := contracts.CanonicalChain(chain)
	for _, c := range o.Chains {
		if contracts.CanonicalChain(c) == want {
			return true
		}
	}
	return false
}

// canonicalChains maps every entry through the chain alias table
// ("eth" → "ethereum", "bnb" → "bsc") and drops blanks and duplicates
func canonicalChains(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		c = contracts.CanonicalChain(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Clone returns a copy with independent slices
func (o Options) Clone() Options {
	out := o
	out.Sources = append([]string(nil), o.Sources...)
	out.Chains = append([]string(nil), o.Chains...)
	return out
}
