package worker

import (
	"context"
	"time"

	"lawlink-api/core/config"
	"lawlink-api/core/logger"

	"github.com/hibiken/asynq"
)

// Periodic task types. Each one is a sweep that makes forward progress and is
// safe to run again if a previous run overlapped or crashed.
const (
	TaskReminderSweep   = "reminder:sweep"
	TaskCredentialSweep = "credential:refresh"
	TaskBookingExpire   = "booking:expire"
	TaskLedgerRepair    = "ledger:repair"
)

type JobFunc func(ctx context.Context) error

// Worker runs the background sweeps on asynq. The scheduler enqueues periodic
// tasks into redis and the embedded server consumes them, so sweeps survive
// process restarts and are not duplicated across instances sharing redis.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

func New() *Worker {
	cfg := config.Get()
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Logger:      asynqLogger{},
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: asynqLogger{},
	})

	return &Worker{
		server:    server,
		scheduler: scheduler,
		mux:       asynq.NewServeMux(),
	}
}

// Register binds a job to a task type.
func (w *Worker) Register(taskType string, job JobFunc) {
	w.mux.HandleFunc(taskType, func(ctx context.Context, _ *asynq.Task) error {
		start := time.Now()
		if err := job(ctx); err != nil {
			logger.Error("Worker:Task:Failed", "task", taskType, "error", err)
			return err
		}
		logger.Info("Worker:Task:Done", "task", taskType, "took", time.Since(start))
		return nil
	})
}

// Schedule enqueues taskType every interval.
func (w *Worker) Schedule(taskType string, every time.Duration) error {
	_, err := w.scheduler.Register(
		"@every "+every.String(),
		asynq.NewTask(taskType, nil),
		asynq.MaxRetry(0),
		asynq.Unique(every),
	)
	return err
}

func (w *Worker) Start() error {
	if err := w.scheduler.Start(); err != nil {
		return err
	}
	return w.server.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

// asynqLogger routes asynq's log output through the app logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("Worker:asynq", "args", args) }
func (asynqLogger) Info(args ...any)  { logger.Info("Worker:asynq", "args", args) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("Worker:asynq", "args", args) }
func (asynqLogger) Error(args ...any) { logger.Error("Worker:asynq", "args", args) }
func (asynqLogger) Fatal(args ...any) { logger.Error("Worker:asynq:fatal", "args", args) }
