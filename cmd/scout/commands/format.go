package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted command header
func PrintHeader(title, sessionID string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
	fmt.Printf("  Session   : %s\n", sessionID)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// phaseError turns a failed phase into a command error
func phaseError(res contracts.PhaseResult) error {
	if res.Success {
		return nil
	}
	return fmt.Errorf("%s failed: %s", res.Phase, res.Error)
}

// PrintCandidates prints one line per candidate
func PrintCandidates(candidates []contracts.Candidate, limit int) {
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	fmt.Printf("%-4s %-10s %-10s %14s %14s %10s %8s %7s\n",
		"#", "SYMBOL", "CHAIN", "MCAP", "VOL24H", "CHG24H", "SCORE", "FLAGS")
	PrintSeparator()
	for i, c := range candidates[:limit] {
		score := "-"
		flags := "-"
		if c.Screening != nil {
			score = fmt.Sprintf("%.2f", c.Screening.Score)
			flags = fmt.Sprintf("%d", len(c.Screening.RedFlags))
		}
		fmt.Printf("%-4d %-10s %-10s %14s %14s %9.1f%% %8s %7s\n",
			i+1, truncate(c.Symbol, 10), truncate(c.Chain, 10),
			formatUSD(c.MarketCap), formatUSD(c.Volume24h), c.PriceChange24h, score, flags)
	}
	if limit < len(candidates) {
		fmt.Printf("... %d more\n", len(candidates)-limit)
	}
}

// PrintEvaluation prints the category breakdown of one evaluation
func PrintEvaluation(eval *contracts.EvaluationResult) {
	fmt.Printf("  %-12s %s\n", "Token", eval.Symbol)
	fmt.Printf("  %-12s %.1f / 50 (%.0f%%)\n", "Score", eval.TotalScore, eval.Percentage)
	fmt.Printf("  %-12s %s (%s confidence)\n", "Verdict", eval.Recommendation, eval.Confidence)
	PrintSeparator()
	for _, cat := range contracts.AllCategories() {
		cs := eval.Category(cat)
		notes := make([]string, 0, len(cs.Evidence))
		for _, ev := range cs.Evidence {
			notes = append(notes, ev.Text)
		}
		fmt.Printf("  %-12s %4.1f / %.0f  %s\n", cat, cs.Score, cs.Max, strings.Join(notes, "; "))
	}
}

// PrintDiligence prints the checklist of one DD report
func PrintDiligence(dd *contracts.DDResult) {
	fmt.Printf("  %-12s %s\n", "Token", dd.Symbol)
	fmt.Printf("  %-12s %d/%d (%.0f%%)\n", "Passed", dd.PassedCount(), len(dd.Items), dd.PassRate*100)
	fmt.Printf("  %-12s %.2f\n", "Weighted", dd.WeightedScore)
	fmt.Printf("  %-12s %s (%s)\n", "Verdict", dd.Recommendation, dd.Allocation)
	fmt.Printf("  %-12s %s\n", "Action", dd.Action)
	PrintSeparator()
	for _, item := range dd.Items {
		mark := "✗"
		if item.Passed {
			mark = "✓"
		}
		fmt.Printf("  %s %-28s %d/%d\n", mark, item.Name, item.Score, item.MaxScore)
	}
}

// PrintTradeReady prints the execution hand-off list
func PrintTradeReady(intents []contracts.TradeIntent) {
	if len(intents) == 0 {
		fmt.Println("  (no trade-ready tokens)")
		return
	}
	for i, t := range intents {
		fmt.Printf("  %d. %-10s %-10s weighted=%.2f pass=%.0f%% %s\n",
			i+1, t.Symbol, t.Chain, t.WeightedScore, t.PassRate*100, t.Recommendation)
	}
}

// formatUSD formats a dollar amount with K/M/B suffix
func formatUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
