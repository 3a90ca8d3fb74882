package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineConfig string
	jsonOutput     bool
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "tokenscout - 토큰 발굴/실사 파이프라인",
	Long: `tokenscout Unified CLI

Discovery → Screening → Evaluation → Due Diligence
4단계 파이프라인으로 신규 토큰을 발굴하고 실사합니다.

Usage:
  go run ./cmd/scout [command]

Examples:
  go run ./cmd/scout discover --risk high --screen
  go run ./cmd/scout evaluate PEPE
  go run ./cmd/scout dd 0x6982508145454Ce325dDbE47a25d4ec3d2311933
  go run ./cmd/scout run --top 5
  go run ./cmd/scout api
  go run ./cmd/scout listen
  go run ./cmd/scout scheduler`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&pipelineConfig, "pipeline-config", "", "pipeline defaults YAML (overrides PIPELINE_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
