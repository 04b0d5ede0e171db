package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/migrate"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/router"
	"github.com/iliyamo/venue-booking/internal/storage"
)

const (
	appName    = "venue-booking"
	appVersion = "0.3.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Cannot load config")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).WithField(logging.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up (env=%s)", appName, appVersion, cfg.Env)

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).WithField(logging.FldDriver, cfg.DBDriver).Fatal("Failed to open database connection")
	}
	defer func() { _ = db.Close() }()

	logger.Info("Performing database migrations...")
	if err := migrate.Run(db, logger); err != nil {
		logger.WithError(err).Fatal("Database migration has failed")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.WithField("addr", cfg.Redis.Address()).Warn("Redis unavailable, rate limiting and caching disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.WithError(err).WithField(logging.FldPath, cfg.UploadDir).Fatal("Failed to create upload directory")
	}
	files := storage.NewDisk(cfg.UploadDir, cfg.UploadURLPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pub queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub = queue.NewAMQPPublisher(cfg.AMQPURL, logger)
		if cfg.RosterConsumerEnabled {
			go queue.StartRosterConsumer(ctx, cfg.AMQPURL, cfg.RosterLogPath, logger.WithField(logging.FldComponent, "consumer"))
		}
	} else {
		logger.Info("AMQP_URL not set, roster notifications disabled")
	}

	srv := router.New(cfg, logger.WithField(logging.FldComponent, "http"), db, rdb, files, pub)
	go srv.Images.Run(ctx, cfg.SweepInterval)

	errs := make(chan error, 1)
	go func() {
		logger.WithField("addr", ":"+cfg.Port).Info("Starting listening port")
		if err := srv.Echo.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	go watchdog(ctx, cfg.Port, logger)

	// notify systemd that we are ready to go (if available)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	select {
	case err := <-errs:
		logger.WithError(err).Error("Server failed")
	case <-ctx.Done():
		logger.Info("Caught signal to stop. Shutting down.")
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Shutdown complete")
}

// watchdog pings systemd while the health check answers. It returns at once
// when the unit has no WatchdogSec.
func watchdog(ctx context.Context, port string, logger *logrus.Entry) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	logger.Info("Activating systemd watchdog goroutine")
	url := fmt.Sprintf("http://127.0.0.1:%s/healthz", port)
	client := &http.Client{Timeout: interval / 3}
	t := time.NewTicker(interval / 3)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if resp, err := client.Get(url); err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				}
			}
		}
	}
}
