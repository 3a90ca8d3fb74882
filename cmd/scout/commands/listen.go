package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "스캐너 알림 브리지 구독",
	Long: `스캐너 WebSocket 브리지(기본 ws://localhost:8766)에 연결해
telegram_token_alert 메시지를 세션 후보 풀에 추가합니다.

autoScreenAlerts / autoEvaluateAlerts 설정 시 S2/S3까지 자동 실행합니다.

Example:
  go run ./cmd/scout listen
  go run ./cmd/scout listen --url ws://scanner:8766 --auto-evaluate`,
	RunE: runListen,
}

var (
	listenURL          string
	listenAutoScreen   bool
	listenAutoEvaluate bool
)

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().StringVar(&listenURL, "url", "", "bridge URL (기본: ALERT_BRIDGE_URL)")
	listenCmd.Flags().BoolVar(&listenAutoScreen, "auto-screen", false, "screen every alert")
	listenCmd.Flags().BoolVar(&listenAutoEvaluate, "auto-evaluate", false, "screen and evaluate every alert")
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if listenURL != "" {
		a.cfg.AlertBridge.URL = listenURL
	}

	override := make(map[string]interface{})
	if listenAutoScreen || listenAutoEvaluate {
		override["autoScreenAlerts"] = true
	}
	if listenAutoEvaluate {
		override["autoEvaluateAlerts"] = true
	}
	if len(override) > 0 {
		if err := phaseError(a.orchestrator.SetConfig(override).PhaseResult); err != nil {
			return err
		}
	}

	a.serveMetrics(ctx)

	fmt.Printf("\n📡 Listening on %s (Ctrl+C to stop)\n", a.cfg.AlertBridge.URL)

	err = a.newListener().Run(ctx)
	if ctx.Err() != nil {
		stats := a.orchestrator.Stats()
		PrintSuccess(fmt.Sprintf("Stopped after %d alerts (%d evaluated)", stats.AlertsIngested, stats.Evaluations))
		return nil
	}
	return err
}
