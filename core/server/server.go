package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lawlink-api/core/cache"
	"lawlink-api/core/config"
	"lawlink-api/core/constants"
	"lawlink-api/core/database"
	"lawlink-api/core/logger"
	"lawlink-api/core/middleware"
	"lawlink-api/core/worker"
	"lawlink-api/modules/booking"
	"lawlink-api/modules/credential"
	"lawlink-api/modules/notification"
	"lawlink-api/modules/payment"
	"lawlink-api/modules/reminder"
	"lawlink-api/modules/slot"
	"lawlink-api/modules/user"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Run boots the whole service: config, database, cache, HTTP modules and the
// background worker. It blocks until SIGINT/SIGTERM and then shuts everything
// down in order.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	})
	if err != nil {
		return err
	}

	cacheStore, err := cache.NewCache()
	if err != nil {
		return err
	}
	defer cacheStore.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	api := e.Group("/api/v1")
	private := api.Group("/private")
	public := api.Group("/public")

	mw := middleware.NewMiddleware(cacheStore)

	userSvc := user.Init(private, db, mw)
	_, dispatcher := notification.Init(private, db, mw)

	credSvc, err := credential.Init(private, public, db, mw)
	if err != nil {
		return err
	}

	_, slotRepo := slot.Init(private, public, db, mw)

	bookingSvc, bookingRepo := booking.Init(private, db, mw, slotRepo, userSvc, credSvc, dispatcher)

	paymentSvc := payment.Init(private, public, db, mw, bookingSvc, userSvc)

	reminderSvc := reminder.Init(bookingRepo, userSvc, dispatcher)

	var w *worker.Worker
	if cfg.Worker.Enabled {
		w = worker.New()
		w.Register(worker.TaskReminderSweep, func(ctx context.Context) error {
			_, err := reminderSvc.DispatchDue(ctx, 0)
			return err
		})
		w.Register(worker.TaskCredentialSweep, func(ctx context.Context) error {
			_, _, err := credSvc.RefreshExpiring(ctx, constants.RefreshHorizon)
			return err
		})
		w.Register(worker.TaskBookingExpire, func(ctx context.Context) error {
			_, err := bookingSvc.ExpirePending(ctx)
			return err
		})
		w.Register(worker.TaskLedgerRepair, func(ctx context.Context) error {
			if _, err := bookingSvc.RepairLedger(ctx); err != nil {
				return err
			}
			_, err := paymentSvc.RepairSettled(ctx)
			return err
		})

		for taskType, every := range map[string]time.Duration{
			worker.TaskReminderSweep:   constants.ReminderSweepInterval,
			worker.TaskCredentialSweep: constants.RefreshSweepInterval,
			worker.TaskBookingExpire:   constants.BookingExpireEvery,
			worker.TaskLedgerRepair:    constants.LedgerRepairEvery,
		} {
			if err := w.Schedule(taskType, every); err != nil {
				return err
			}
		}
		if err := w.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if w != nil {
			w.Shutdown()
		}
		return err
	case sig := <-quit:
		logger.Info("Server:Run:Shutdown", "signal", sig.String())
	}

	if w != nil {
		w.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()
	return e.Shutdown(ctx)
}
