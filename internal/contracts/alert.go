package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

// AlertTypeToken is the only alert type the scanner bridge emits for tokens
const AlertTypeToken = "telegram_token_alert"

// AlertSource is the provenance tag of candidates created from alerts
const AlertSource = "telegram"

var (
	// ErrInvalidAddress is returned for addresses that are neither EVM nor Solana
	ErrInvalidAddress = errors.New("invalid token address")

	// ErrUnsupportedAlert is returned for payloads with a foreign type tag
	ErrUnsupportedAlert = errors.New("unsupported alert type")
)

// AlertPayload is the scanner bridge message for one detected token
// ⭐ SSOT: 외부 알림은 이 형태로만 수신
type AlertPayload struct {
	Type       string        `json:"type"`
	Timestamp  string        `json:"timestamp"`
	Token      AlertToken    `json:"token"`
	Metrics    *AlertMetrics `json:"metrics,omitempty"`
	AIDecision *AIDecision   `json:"ai_decision,omitempty"`
}

// AlertToken identifies the token and where it was seen
type AlertToken struct {
	Address       string `json:"address"`
	Chain         string `json:"chain"`
	Symbol        string `json:"symbol,omitempty"`
	Name          string `json:"name,omitempty"`
	DetectedAt    string `json:"detected_at,omitempty"`
	Source        string `json:"source,omitempty"`
	ChatName      string `json:"chat_name,omitempty"`
	SourceMessage string `json:"source_message,omitempty"`
}

// AlertMetrics are the scanner's pre-fetched market and contract figures
type AlertMetrics struct {
	PriceUSD         *float64 `json:"price_usd"`
	MarketCapUSD     *float64 `json:"market_cap_usd"`
	LiquidityUSD     *float64 `json:"liquidity_usd"`
	Volume24hUSD     *float64 `json:"volume_24h_usd"`
	IsHoneypot       *bool    `json:"is_honeypot"`
	BuyTaxPercent    *float64 `json:"buy_tax_percent"`
	SellTaxPercent   *float64 `json:"sell_tax_percent"`
	HolderCount      *int     `json:"holder_count"`
	TopHolderPercent *float64 `json:"top_holder_percent"`
	AgeHours         *float64 `json:"age_hours"`
}

// ParseAlert decodes and validates one bridge message.
// An empty type is accepted and treated as a token alert.
func ParseAlert(data []byte) (*AlertPayload, error) {
	var p AlertPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode alert: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the type tag and the token address
func (p *AlertPayload) Validate() error {
	if p.Type != "" && p.Type != AlertTypeToken {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlert, p.Type)
	}
	return ValidateAddress(p.Token.Address)
}

// ValidateAddress accepts a 0x-prefixed 20-byte hex address or a base58
// string decoding to a 32-byte Solana public key.
func ValidateAddress(address string) error {
	a := strings.TrimSpace(address)
	if a == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if IsEVMAddress(a) || IsSolanaAddress(a) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidAddress, a)
}

// IsEVMAddress reports whether a is 0x followed by 40 hex digits
func IsEVMAddress(a string) bool {
	if len(a) != 42 || !(strings.HasPrefix(a, "0x") || strings.HasPrefix(a, "0X")) {
		return false
	}
	for _, r := range a[2:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsSolanaAddress reports whether a is base58 for exactly 32 bytes
func IsSolanaAddress(a string) bool {
	if len(a) < 32 || len(a) > 44 {
		return false
	}
	decoded, err := base58.Decode(a)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// SecurityReport converts the scanner metrics into a verified report
func (m *AlertMetrics) SecurityReport() SecurityReport {
	if m == nil {
		return UnverifiedReport()
	}
	return SecurityReport{
		Verified:         true,
		Provider:         AlertSource,
		IsHoneypot:       m.IsHoneypot,
		BuyTax:           m.BuyTaxPercent,
		SellTax:          m.SellTaxPercent,
		HolderCount:      m.HolderCount,
		TopHolderPercent: m.TopHolderPercent,
	}
}

// RiskScore rates the metrics 0-100, lower is safer.
// Unknown values count against the token.
func RiskScore(m *AlertMetrics) int {
	if m == nil {
		m = &AlertMetrics{}
	}
	score := 0

	// Liquidity
	switch {
	case m.LiquidityUSD == nil || *m.LiquidityUSD < 5000:
		score += 30
	case *m.LiquidityUSD < 10000:
		score += 20
	case *m.LiquidityUSD < 50000:
		score += 10
	}

	// Honeypot
	if m.IsHoneypot == nil {
		score += 15
	} else if *m.IsHoneypot {
		score += 40
	}

	// Taxes
	if m.BuyTaxPercent != nil && *m.BuyTaxPercent > 10 {
		score += 10
	}
	if m.SellTaxPercent != nil && *m.SellTaxPercent > 10 {
		score += 10
	}

	// Holder concentration
	if m.TopHolderPercent == nil {
		score += 5
	} else if *m.TopHolderPercent > 20 {
		score += 10
	}

	if m.HolderCount != nil && *m.HolderCount < 50 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// ToCandidate maps the alert onto the normalized candidate shape.
// Metrics become the attached security report; without them the
// candidate goes through the live security lookup.
func (p *AlertPayload) ToCandidate(now time.Time) Candidate {
	addr := strings.TrimSpace(p.Token.Address)
	symbol := p.Token.Symbol
	if strings.TrimSpace(symbol) == "" {
		symbol = addr
		if len(symbol) > 6 {
			symbol = symbol[:6]
		}
	}
	name := p.Token.Name
	if strings.TrimSpace(name) == "" {
		name = strings.ToUpper(strings.TrimSpace(symbol))
	}

	c := Candidate{
		Symbol:  symbol,
		Name:    name,
		Chain:   p.Token.Chain,
		Address: addr,
		Source:  AlertSource,
	}

	if m := p.Metrics; m != nil {
		c.Price = deref(m.PriceUSD)
		c.MarketCap = deref(m.MarketCapUSD)
		c.FDV = c.MarketCap
		c.Liquidity = deref(m.LiquidityUSD)
		c.Volume24h = deref(m.Volume24hUSD)
		if m.HolderCount != nil {
			c.Holders = *m.HolderCount
		}
		if m.AgeHours != nil && *m.AgeHours >= 0 {
			listed := now.Add(-time.Duration(*m.AgeHours * float64(time.Hour)))
			c.ListedAt = &listed
		}
		report := m.SecurityReport()
		c.Security = &report
	}

	if c.ListedAt == nil {
		if t, ok := parseAlertTime(p.Token.DetectedAt); ok {
			c.ListedAt = &t
		}
	}

	if p.AIDecision != nil {
		d := *p.AIDecision
		d.Warnings = append([]string(nil), p.AIDecision.Warnings...)
		c.AIDecision = &d
	}

	c.SourceData, _ = json.Marshal(map[string]string{
		"chat_name":      p.Token.ChatName,
		"detected_at":    p.Token.DetectedAt,
		"source_message": p.Token.SourceMessage,
	})

	c.Normalize()
	return c
}

// parseAlertTime accepts RFC 3339 and the scanner's naive ISO format
func parseAlertTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
