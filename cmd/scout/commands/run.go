package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tokenscout/internal/brain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 파이프라인 1회 실행",
	Long: `S1 → S2 → S3 (상위 N개) → S4 (평가 기준 통과 토큰)

Example:
  go run ./cmd/scout run
  go run ./cmd/scout run --top 10 --risk high
  go run ./cmd/scout run --skip-dd --json`,
	RunE: runPipeline,
}

var (
	runTopN   int
	runSkipDD bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runTopN, "top", 5, "screened candidates to evaluate (0 = all)")
	runCmd.Flags().BoolVar(&runSkipDD, "skip-dd", false, "stop after S3")
	runCmd.Flags().StringVar(&discoverMarketCap, "market-cap", "", "micro|small|emerging|mid|large")
	runCmd.Flags().StringVar(&discoverRisk, "risk", "", "low|medium|high")
	runCmd.Flags().StringVar(&discoverTimeline, "timeline", "", "days|weeks|months")
	runCmd.Flags().StringVar(&discoverSector, "sector", "", "sector filter (all = no filter)")
	runCmd.Flags().StringVar(&discoverSources, "sources", "", "comma-separated source list")
	runCmd.Flags().StringVar(&discoverChains, "chains", "", "comma-separated chain allow-list")
	runCmd.Flags().IntVar(&discoverMax, "max", 0, "max candidates")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	runConfig := brain.RunConfig{
		RunID:        brain.GenerateRunID(),
		Override:     discoverOverride(cmd),
		EvaluateTopN: runTopN,
		SkipDD:       runSkipDD,
	}

	if !jsonOutput {
		PrintHeader("Pipeline run "+runConfig.RunID, a.orchestrator.SessionID())
	}

	result, err := a.orchestrator.Run(ctx, runConfig)
	if jsonOutput {
		if perr := printJSON(result); perr != nil {
			return perr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	printRunResult(result)
	return nil
}

func printRunResult(result *brain.RunResult) {
	if result.Discovery != nil {
		fmt.Printf("  S1 Discovery   : %d candidates\n", result.Discovery.Count)
		for source, msg := range result.Discovery.Errors {
			fmt.Printf("                   %s failed: %s\n", source, msg)
		}
	}
	if result.Screening != nil {
		fmt.Printf("  S2 Screening   : %d/%d passed\n", result.Screening.Passed, result.Screening.Total)
	}
	fmt.Printf("  S3 Evaluation  : %d evaluated\n", len(result.Evaluations))
	for _, eval := range result.Evaluations {
		if eval.Evaluation == nil {
			continue
		}
		fmt.Printf("                   %-10s %5.1f %s\n", eval.Evaluation.Symbol, eval.Evaluation.TotalScore, eval.Evaluation.Recommendation)
	}
	fmt.Printf("  S4 Diligence   : %d reports\n", len(result.Diligence))
	PrintSeparator()
	fmt.Println("  Trade-ready:")
	PrintTradeReady(result.TradeReady)
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Run %s completed in %.2fs (%v)", result.RunID, result.Duration.Seconds(), result.CompletedStages))
}
