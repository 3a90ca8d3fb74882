package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <symbol|address>",
	Short: "S3 5개 카테고리 평가 (50점 만점)",
	Long: `토큰 하나를 조회해 Team, Community, Tokenomics, Product, Market
카테고리로 평가합니다. 세션에 없는 토큰은 소스에서 직접 조회합니다.

Example:
  go run ./cmd/scout evaluate PEPE
  go run ./cmd/scout evaluate 0x6982508145454Ce325dDbE47a25d4ec3d2311933 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

// ddCmd represents the dd command
var ddCmd = &cobra.Command{
	Use:   "dd <symbol|address>",
	Short: "S4 10개 항목 실사",
	Long: `토큰을 평가한 뒤 가중치 체크리스트로 실사를 수행합니다.

Example:
  go run ./cmd/scout dd PEPE`,
	Args: cobra.ExactArgs(1),
	RunE: runDD,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(ddCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.orchestrator.Evaluate(ctx, args[0])
	if err := phaseError(res.PhaseResult); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(res)
	}

	PrintHeader("S3 Evaluation", a.orchestrator.SessionID())
	PrintEvaluation(res.Evaluation)
	fmt.Println()
	if res.MeetsThreshold {
		PrintSuccess("meets the evaluation threshold, eligible for DD")
	} else {
		PrintWarning("below the evaluation threshold")
	}
	return nil
}

func runDD(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.orchestrator.RunDD(ctx, args[0])
	if err := phaseError(res.PhaseResult); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(res)
	}

	PrintHeader("S4 Due Diligence", a.orchestrator.SessionID())
	PrintEvaluation(res.Evaluation)
	PrintSeparator()
	PrintDiligence(res.Report)
	fmt.Println()
	PrintTradeReady(a.orchestrator.TradeReady())
	return nil
}
