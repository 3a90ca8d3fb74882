package pipelineconfig

import (
	"sort"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

// Merge applies a partial override on top of base.
// Only recognized keys with well-typed, in-range values are applied;
// every other key is returned in ignored (sorted).
// Keys are matched in camelCase or snake_case.
func Merge(base Options, override map[string]interface{}) (Options, []string) {
	out := base.Clone()
	var ignored []string

	for rawKey, value := range override {
		if !apply(&out, canonicalKey(rawKey), value) {
			ignored = append(ignored, rawKey)
		}
	}

	sort.Strings(ignored)
	return out, ignored
}

// canonicalKey folds "maxCandidates" and "max_candidates" to "maxcandidates"
func canonicalKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

func apply(o *Options, key string, value interface{}) bool {
	switch key {
	case "marketcap":
		s, ok := value.(string)
		if !ok {
			return false
		}
		if _, known := BucketRange(s); !known {
			return false
		}
		o.MarketCap = strings.ToLower(s)

	case "sector":
		s, ok := value.(string)
		if !ok {
			return false
		}
		if s == "" || strings.EqualFold(s, "all") {
			o.Sector = ""
			return true
		}
		sector, known := contracts.ParseSector(s)
		if !known {
			return false
		}
		o.Sector = sector

	case "risk":
		s, ok := value.(string)
		if !ok {
			return false
		}
		r, known := ParseRisk(s)
		if !known {
			return false
		}
		o.Risk = r

	case "timeline":
		s, ok := value.(string)
		if !ok {
			return false
		}
		t, known := ParseTimeline(s)
		if !known {
			return false
		}
		o.Timeline = t

	case "maxcandidates":
		n, ok := toInt(value)
		if !ok || n <= 0 {
			return false
		}
		o.MaxCandidates = n

	case "sources":
		list, ok := toStringSlice(value)
		if !ok {
			return false
		}
		for i := range list {
			list[i] = strings.ToLower(list[i])
		}
		o.Sources = list

	case "screeningthreshold":
		f, ok := toFloat(value)
		if !ok || f < 0 || f > 10 {
			return false
		}
		o.ScreeningThreshold = f

	case "maxredflags":
		n, ok := toInt(value)
		if !ok || n < 0 {
			return false
		}
		o.MaxRedFlags = n

	case "evaluationthreshold":
		f, ok := toFloat(value)
		if !ok || f < 0 || f > 50 {
			return false
		}
		o.EvaluationThreshold = f

	case "ddthreshold":
		f, ok := toFloat(value)
		if !ok || f < 0 || f > 1 {
			return false
		}
		o.DDThreshold = f

	case "chains":
		list, ok := toStringSlice(value)
		if !ok {
			return false
		}
		o.Chains = canonicalChains(list)

	case "autoscreenalerts":
		b, ok := value.(bool)
		if !ok {
			return false
		}
		o.AutoScreenAlerts = b

	case "autoevaluatealerts":
		b, ok := value.(bool)
		if !ok {
			return false
		}
		o.AutoEvaluateAlerts = b

	default:
		return false
	}

	return true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		// Comma-separated form used by CLI flags
		if strings.TrimSpace(list) == "" {
			return []string{}, true
		}
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
