package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `주기 작업을 시작하거나 조회합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/scout scheduler start
  go run ./cmd/scout scheduler list
  go run ./cmd/scout scheduler run discovery_sweep`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- discovery_sweep: SCHEDULER_SWEEP_SPEC (기본 15분마다, S1 → S4)
- session_rotation: 매일 자정 (세션 저장 후 초기화)
- cache_cleanup: 5분마다 (Redis 미사용 시)

--listen 지정 시 스캐너 알림 브리지도 함께 구독합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var schedulerListen bool

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().BoolVar(&schedulerListen, "listen", false, "also consume the scanner alert bridge")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	a.serveMetrics(ctx)
	if schedulerListen {
		a.runListener(ctx)
	}

	sched.Start(ctx)

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()
	if jsonOutput {
		return printJSON(stats)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		st := stats[jobName]
		next := "-"
		if st.NextRun != nil {
			next = st.NextRun.Format(time.RFC3339)
		}
		fmt.Printf("  - %-18s %-18s next=%s\n", jobName, st.Schedule, next)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	// RunNow uses the scheduler's base context
	sched.Start(ctx)
	defer sched.Stop()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunNow(jobName)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}

	PrintSuccess(fmt.Sprintf("Job %s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}
