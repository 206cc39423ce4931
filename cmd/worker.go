package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/salary-advance/internal/scheduler"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that reconcile pending cash-outs and track reimbursement deadlines.`,
}

var schedulerWorkerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the cron scheduler",
	Long:  `Run the payment reconciliation sweep and the overdue reimbursement job on their configured schedules`,
	Run: func(cmd *cobra.Command, args []string) {
		startSchedulerWorker()
	},
}

var (
	reconcileSchedule string
	overdueSchedule   string
	jobTimeout        time.Duration
)

func startSchedulerWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	app, err := newApp(context.Background(), cfg, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	schedulerConfig := scheduler.Config{
		ReconcileSchedule: getStringFlag(reconcileSchedule, cfg.Reconciler.SweepSchedule),
		OverdueSchedule:   getStringFlag(overdueSchedule, cfg.Reimbursement.OverdueSchedule),
	}

	lg.Info("starting scheduler worker",
		"reconcile_schedule", schedulerConfig.ReconcileSchedule,
		"overdue_schedule", schedulerConfig.OverdueSchedule,
		"job_timeout", jobTimeout)

	jobs := scheduler.NewJobs(app.Reconciler, app.Reimbursements, jobTimeout, lg)
	s := scheduler.NewScheduler(jobs, lg, schedulerConfig)
	if err := s.Start(); err != nil {
		lg.Error("failed to start scheduler", "error", err)
		app.Close(context.Background())
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("scheduler worker is running. Press Ctrl+C to stop.", "jobs", s.Entries())

	sig := <-sigChan
	lg.Info("received signal, shutting down scheduler worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	select {
	case <-s.Stop().Done():
		lg.Info("running jobs finished")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
	app.Close(ctx)
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	schedulerWorkerCmd.Flags().StringVar(&reconcileSchedule, "reconcile-schedule", "", "Cron spec for the payment reconciliation sweep (overrides config)")
	schedulerWorkerCmd.Flags().StringVar(&overdueSchedule, "overdue-schedule", "", "Cron spec for marking overdue reimbursements (overrides config)")
	schedulerWorkerCmd.Flags().DurationVar(&jobTimeout, "job-timeout", 5*time.Minute, "Maximum duration of a single job run")

	workerCmd.AddCommand(schedulerWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
