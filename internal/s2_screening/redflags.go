package s2_screening

import (
	"fmt"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
)

// Red-flag thresholds
const (
	maxTaxPercent       = 10.0
	maxTopHolderPercent = 20.0
	minHolders          = 100
	minLiquidityUSD     = 10_000.0
	minAge              = 24 * time.Hour
)

// Red-flag IDs
const (
	FlagHoneypot           = "honeypot"
	FlagHighBuyTax         = "high_buy_tax"
	FlagHighSellTax        = "high_sell_tax"
	FlagWhaleConcentration = "whale_concentration"
	FlagMintable           = "mintable"
	FlagProxy              = "proxy"
	FlagNoSocials          = "no_socials"
	FlagLowHolders         = "low_holders"
	FlagLowLiquidity       = "low_liquidity"
	FlagVeryNew            = "very_new"
)

// DetectRedFlags runs the fixed rule set in order. Unknown report fields
// never raise a flag.
func DetectRedFlags(c *contracts.Candidate, report contracts.SecurityReport, now time.Time) []contracts.RedFlag {
	flags := make([]contracts.RedFlag, 0)
	add := func(id, name string, sev contracts.Severity, desc string) {
		flags = append(flags, contracts.RedFlag{ID: id, Name: name, Severity: sev, Description: desc})
	}

	if report.Honeypot() {
		add(FlagHoneypot, "Honeypot", contracts.SeverityCritical, "Token cannot be sold")
	}
	if report.BuyTax != nil && *report.BuyTax > maxTaxPercent {
		add(FlagHighBuyTax, "High buy tax", contracts.SeverityMajor,
			fmt.Sprintf("Buy tax %.1f%% exceeds %.0f%%", *report.BuyTax, maxTaxPercent))
	}
	if report.SellTax != nil && *report.SellTax > maxTaxPercent {
		add(FlagHighSellTax, "High sell tax", contracts.SeverityMajor,
			fmt.Sprintf("Sell tax %.1f%% exceeds %.0f%%", *report.SellTax, maxTaxPercent))
	}
	if report.TopHolderPercent != nil && *report.TopHolderPercent > maxTopHolderPercent {
		add(FlagWhaleConcentration, "Whale concentration", contracts.SeverityMajor,
			fmt.Sprintf("Top holder owns %.1f%% of supply", *report.TopHolderPercent))
	}
	if report.Mintable() {
		add(FlagMintable, "Mintable", contracts.SeverityMajor, "Owner can mint new supply")
	}
	if report.Proxy() {
		add(FlagProxy, "Proxy contract", contracts.SeverityMajor, "Contract logic is upgradeable")
	}
	if !c.Links.HasSocials() {
		add(FlagNoSocials, "No socials", contracts.SeverityMinor, "No Twitter, Telegram or Discord found")
	}
	if holders, known := knownHolders(c, report); known && holders < minHolders {
		add(FlagLowHolders, "Low holders", contracts.SeverityMinor,
			fmt.Sprintf("Only %d holders", holders))
	}
	if c.Liquidity < minLiquidityUSD {
		add(FlagLowLiquidity, "Low liquidity", contracts.SeverityMinor,
			fmt.Sprintf("Liquidity $%.0f below $%.0f", c.Liquidity, minLiquidityUSD))
	}
	if age, ok := c.Age(now); ok && age < minAge {
		add(FlagVeryNew, "Very new", contracts.SeverityMinor,
			fmt.Sprintf("Listed %.1f hours ago", age.Hours()))
	}

	return flags
}

// knownHolders distinguishes a reported zero from a missing figure
func knownHolders(c *contracts.Candidate, report contracts.SecurityReport) (int, bool) {
	if report.HolderCount != nil {
		return *report.HolderCount, true
	}
	return c.Holders, c.Holders > 0
}
