package goplus

import (
	"strconv"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

type tokenSecurityResponse struct {
	Code    int                      `json:"code"`
	Message string                   `json:"message"`
	Result  map[string]tokenSecurity `json:"result"`
}

// GoPlus encodes every scalar as a string; "" means unknown
type tokenSecurity struct {
	IsHoneypot  string   `json:"is_honeypot"`
	BuyTax      string   `json:"buy_tax"`
	SellTax     string   `json:"sell_tax"`
	IsProxy     string   `json:"is_proxy"`
	IsMintable  string   `json:"is_mintable"`
	HolderCount string   `json:"holder_count"`
	Holders     []holder `json:"holders"`
	LPHolders   []holder `json:"lp_holders"`
}

type holder struct {
	Address  string `json:"address"`
	Percent  string `json:"percent"`
	IsLocked int    `json:"is_locked"`
}

func (t tokenSecurity) toReport() contracts.SecurityReport {
	r := contracts.SecurityReport{
		Verified:   true,
		Provider:   ProviderName,
		IsHoneypot: flag(t.IsHoneypot),
		IsProxy:    flag(t.IsProxy),
		IsMintable: flag(t.IsMintable),
		BuyTax:     fractionToPercent(t.BuyTax),
		SellTax:    fractionToPercent(t.SellTax),
	}

	if n, err := strconv.Atoi(strings.TrimSpace(t.HolderCount)); err == nil {
		r.HolderCount = contracts.Int(n)
	}

	// 최대 보유자 비중 (fraction → percent)
	var top *float64
	for _, h := range t.Holders {
		p := fractionToPercent(h.Percent)
		if p != nil && (top == nil || *p > *top) {
			top = p
		}
	}
	r.TopHolderPercent = top

	if len(t.LPHolders) > 0 {
		locked := false
		for _, h := range t.LPHolders {
			if h.IsLocked == 1 {
				locked = true
				break
			}
		}
		r.LiquidityLocked = contracts.Bool(locked)
	}

	return r
}

func flag(s string) *bool {
	switch strings.TrimSpace(s) {
	case "1":
		return contracts.Bool(true)
	case "0":
		return contracts.Bool(false)
	default:
		return nil
	}
}

func fractionToPercent(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return contracts.Float(v * 100)
}
