package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appHTTP "github.com/cmlabs-hris/office-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/sse"
	attendanceService "github.com/cmlabs-hris/office-backend-go/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/office-backend-go/internal/service/notification"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	clk := cfg.Clock()

	hub := sse.NewHub()
	notifier := notificationService.NewNotifier(notificationService.NewHubPublisher(hub), log, notificationService.Config{
		PublishTimeout: cfg.Notify.Timeout,
	})
	defer notifier.Stop()

	attendanceSvc := attendanceService.NewAttendanceService(st.attendance, st.directory, notifier, clk, log)
	correctionSvc := attendanceService.NewCorrectionService(st.attendance, st.directory, notifier, clk, log)
	leaveSvc := attendanceService.NewLeaveService(st.attendance, st.transactor, st.directory, notifier, clk, log)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         log,
		AllowedOrigins: cfg.App.AllowedOrigins,
	}, JWTService, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Correction:   appHTTP.NewCorrectionHandler(correctionSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		Notification: appHTTP.NewNotificationHandler(hub, JWTService),
	})

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(clk.Location(), log)
		jobs := cron.NewAttendanceJobs(attendanceSvc, clk, log)
		if err := jobs.RegisterJobs(scheduler, cfg.Cron.MarkAbsentSpec); err != nil {
			return fmt.Errorf("failed to register cron jobs: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.App.Port, "store", cfg.Database.Driver, "utc_offset", clk.Location().String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
