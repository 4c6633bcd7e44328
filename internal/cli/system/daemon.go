package system

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/notifier"
)

// DaemonCmd delivers notifications until interrupted. With the local
// backend due notifications are polled on a cron schedule; with the queue
// backend an asynq worker consumes scheduled tasks from Redis.
type DaemonCmd struct {
	Concurrency int  `help:"Queue worker concurrency." default:"5"`
	NoBackup    bool `help:"Disable the daily automatic backup."`
}

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// singleRun wraps fn so that a run starting while another is in progress is skipped.
func singleRun(fn func()) cron.Job {
	return cron.NewChain(cron.SkipIfStillRunning(cronLogger{})).Then(cron.FuncJob(fn))
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	d, err := ctx.Dispatcher()
	if err != nil {
		return err
	}

	sched := cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.Recover(cronLogger{})))
	local := ctx.Config.Notifier.Backend == constants.BackendLocal

	var dispatch cron.Job
	if local {
		dispatch = singleRun(func() { dispatchOnce(ctx, d) })
		if _, err := sched.AddJob(constants.DispatchSchedule, dispatch); err != nil {
			return fmt.Errorf("failed to schedule dispatcher: %w", err)
		}
	}
	if !c.NoBackup {
		if _, err := sched.AddJob("@daily", singleRun(ctx.PerformAutomaticBackup)); err != nil {
			return fmt.Errorf("failed to schedule backups: %w", err)
		}
	}

	if local {
		dispatch.Run()
	} else {
		srv, mux := notifier.NewWorker(cli.RedisOpt(ctx.Config), d, c.Concurrency)
		if err := srv.Start(mux); err != nil {
			return fmt.Errorf("failed to start queue worker: %w", err)
		}
		defer srv.Shutdown()
		logger.Info("Queue worker started", "redis", ctx.Config.Redis.Addr, "concurrency", c.Concurrency)
	}

	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	fmt.Printf("medcare daemon running (%s backend), press Ctrl+C to stop\n", ctx.Config.Notifier.Backend)
	<-ctx.Context().Done()
	fmt.Println("Stopping daemon...")
	return nil
}

func dispatchOnce(ctx *cli.Context, d *notifier.Dispatcher) {
	res, err := d.DispatchDue(ctx.Context())
	if err != nil {
		logger.Error("Dispatch failed", "error", err)
		return
	}
	if res.Sent+res.Expired+res.Failed > 0 {
		logger.Info("Dispatch finished", "sent", res.Sent, "expired", res.Expired, "failed", res.Failed)
	}
}
