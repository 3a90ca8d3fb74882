package contracts

// SecurityReport is the contract-introspection result for one token.
// Nil fields mean the provider had no data for them.
// ⭐ SSOT: 어떤 보안 서비스가 만들었든 이 형태로 소비
type SecurityReport struct {
	Verified         bool     `json:"verified"`
	Provider         string   `json:"provider,omitempty"`
	IsHoneypot       *bool    `json:"is_honeypot,omitempty"`
	BuyTax           *float64 `json:"buy_tax,omitempty"`  // percent
	SellTax          *float64 `json:"sell_tax,omitempty"` // percent
	IsProxy          *bool    `json:"is_proxy,omitempty"`
	IsMintable       *bool    `json:"is_mintable,omitempty"`
	HolderCount      *int     `json:"holder_count,omitempty"`
	TopHolderPercent *float64 `json:"top_holder_percent,omitempty"`
	LiquidityLocked  *bool    `json:"liquidity_locked,omitempty"`
}

// UnverifiedReport returns the default report used when no real data exists
func UnverifiedReport() SecurityReport {
	return SecurityReport{Verified: false}
}

// Honeypot reports a confirmed honeypot
func (r SecurityReport) Honeypot() bool { return isTrue(r.IsHoneypot) }

// Mintable reports a confirmed mint function
func (r SecurityReport) Mintable() bool { return isTrue(r.IsMintable) }

// Proxy reports a confirmed upgradeable proxy
func (r SecurityReport) Proxy() bool { return isTrue(r.IsProxy) }

// MaxTax returns the larger of buy/sell tax; ok is false when both unknown
func (r SecurityReport) MaxTax() (float64, bool) {
	switch {
	case r.BuyTax == nil && r.SellTax == nil:
		return 0, false
	case r.BuyTax == nil:
		return *r.SellTax, true
	case r.SellTax == nil:
		return *r.BuyTax, true
	case *r.BuyTax > *r.SellTax:
		return *r.BuyTax, true
	default:
		return *r.SellTax, true
	}
}

// AIDecision is an externally supplied risk judgement attached to alerts
type AIDecision struct {
	Decision        string   `json:"decision"`
	Confidence      float64  `json:"confidence"` // 0.0 - 1.0
	Reasoning       string   `json:"reasoning,omitempty"`
	RiskScore       int      `json:"risk_score"` // 0-100, lower is better
	SuggestedAmount float64  `json:"suggested_amount,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Clone returns a copy that shares no pointers with r
func (r SecurityReport) Clone() SecurityReport {
	out := r
	out.IsHoneypot = clonePtr(r.IsHoneypot)
	out.BuyTax = clonePtr(r.BuyTax)
	out.SellTax = clonePtr(r.SellTax)
	out.IsProxy = clonePtr(r.IsProxy)
	out.IsMintable = clonePtr(r.IsMintable)
	out.HolderCount = clonePtr(r.HolderCount)
	out.TopHolderPercent = clonePtr(r.TopHolderPercent)
	out.LiquidityLocked = clonePtr(r.LiquidityLocked)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

func isTrue(b *bool) bool {
	return b != nil && *b
}
