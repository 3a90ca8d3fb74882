package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "S1 후보 발굴 (옵션: S2 스크리닝)",
	Long: `활성화된 소스(DexScreener, CoinGecko, CoinMarketCap)에서 후보를 수집합니다.

Flags로 지정한 값은 이번 실행에만 적용됩니다.

Example:
  go run ./cmd/scout discover
  go run ./cmd/scout discover --market-cap micro --risk high --timeline days
  go run ./cmd/scout discover --sources dexscreener --chains base,solana --screen`,
	RunE: runDiscover,
}

var (
	discoverMarketCap string
	discoverRisk      string
	discoverTimeline  string
	discoverSector    string
	discoverSources   string
	discoverChains    string
	discoverMax       int
	discoverScreen    bool
	discoverShow      int
)

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverMarketCap, "market-cap", "", "micro|small|emerging|mid|large")
	discoverCmd.Flags().StringVar(&discoverRisk, "risk", "", "low|medium|high")
	discoverCmd.Flags().StringVar(&discoverTimeline, "timeline", "", "days|weeks|months")
	discoverCmd.Flags().StringVar(&discoverSector, "sector", "", "sector filter (all = no filter)")
	discoverCmd.Flags().StringVar(&discoverSources, "sources", "", "comma-separated source list")
	discoverCmd.Flags().StringVar(&discoverChains, "chains", "", "comma-separated chain allow-list")
	discoverCmd.Flags().IntVar(&discoverMax, "max", 0, "max candidates")
	discoverCmd.Flags().BoolVar(&discoverScreen, "screen", false, "run S2 screening on the result")
	discoverCmd.Flags().IntVar(&discoverShow, "show", 20, "rows to print")
}

// discoverOverride collects the flags that were actually set
func discoverOverride(cmd *cobra.Command) map[string]interface{} {
	override := make(map[string]interface{})
	set := func(flag, key string, value interface{}) {
		if cmd.Flags().Changed(flag) {
			override[key] = value
		}
	}
	set("market-cap", "marketCap", discoverMarketCap)
	set("risk", "risk", discoverRisk)
	set("timeline", "timeline", discoverTimeline)
	set("sector", "sector", discoverSector)
	set("sources", "sources", discoverSources)
	set("chains", "chains", discoverChains)
	set("max", "maxCandidates", discoverMax)

	if len(override) == 0 {
		return nil
	}
	return override
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.orchestrator.Discover(ctx, discoverOverride(cmd))
	if err := phaseError(res.PhaseResult); err != nil {
		return err
	}

	if !discoverScreen {
		if jsonOutput {
			return printJSON(res)
		}
		PrintHeader("S1 Discovery", a.orchestrator.SessionID())
		for source, n := range res.PerSource {
			fmt.Printf("  %-14s %d\n", source, n)
		}
		for source, msg := range res.Errors {
			PrintWarning(fmt.Sprintf("%s failed: %s", source, msg))
		}
		if len(res.IgnoredKeys) > 0 {
			PrintWarning(fmt.Sprintf("ignored override keys: %v", res.IgnoredKeys))
		}
		PrintSeparator()
		PrintCandidates(res.Candidates, discoverShow)
		fmt.Println()
		PrintSuccess(fmt.Sprintf("%d candidates in %.2fs", res.Count, res.Duration.Seconds()))
		return nil
	}

	screened := a.orchestrator.Screen(ctx, nil)
	if err := phaseError(screened.PhaseResult); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]interface{}{"discovery": res, "screening": screened})
	}

	PrintHeader("S1 Discovery → S2 Screening", a.orchestrator.SessionID())
	PrintCandidates(screened.Candidates, discoverShow)
	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d/%d candidates passed screening", screened.Passed, screened.Total))
	return nil
}
