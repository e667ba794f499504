package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/config"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/erp-attendance/internal/handler/http"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/slack"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/sse"
	"github.com/cmlabs-hris/erp-attendance/internal/repository/postgresql"
	approvalService "github.com/cmlabs-hris/erp-attendance/internal/service/approval"
	attendanceService "github.com/cmlabs-hris/erp-attendance/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/erp-attendance/internal/service/leave"
	notificationService "github.com/cmlabs-hris/erp-attendance/internal/service/notification"
	"github.com/go-chi/httplog/v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "erp-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	policy, err := config.LoadWorkPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	workStatusRepo := postgresql.NewWorkStatusRepository(db)
	workRequestRepo := postgresql.NewWorkRequestRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveGrantRepo := postgresql.NewLeaveGrantRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	compensatoryRepo := postgresql.NewCompensatoryRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	transactor := postgresql.NewTransactor(db)

	ops := slack.New(cfg.Slack.BotToken, slack.Options{
		InfoChannelID:  cfg.Slack.InfoChannelID,
		ErrorChannelID: cfg.Slack.ErrorChannelID,
	})

	hub := sse.NewHub()
	notifier := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{
		BatchSize:   cfg.Notification.BatchSize,
		WorkerCount: cfg.Notification.Workers,
	})
	defer notifier.Stop()

	calc := attendance.NewCalculator(policy.Attendance)
	workflow := approvalService.NewWorkflow(transactor)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, workStatusRepo, userRepo, calc, notifier, ops)
	workRequestSvc := attendanceService.NewWorkRequestService(workRequestRepo, attendanceRepo, userRepo, calc, workflow, notifier)

	quotaSvc := leaveService.NewQuotaService(
		transactor,
		userRepo,
		leaveBalanceRepo,
		leaveGrantRepo,
		leaveService.NewQuotaCalculator(policy.AnnualLeave),
		policy.Attendance.Location,
		ops,
	)
	leaveSvc := leaveService.NewLeaveService(quotaSvc)
	requestSvc := leaveService.NewRequestService(
		leaveRequestRepo,
		compensatoryRepo,
		leaveBalanceRepo,
		leaveGrantRepo,
		attendanceRepo,
		userRepo,
		workflow,
		notifier,
	)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
		Concise:        cfg.IsProduction(),
		AllowedOrigins: cfg.App.AllowedOrigins,
		CronSecret:     cfg.Cron.Secret,
	}, jwt.NewVerifier(cfg.Auth.JWTSecret), userRepo, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		WorkRequest:  appHTTP.NewWorkRequestHandler(workRequestSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc, requestSvc),
		Notification: appHTTP.NewNotificationHandler(notifier),
	})

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, policy.Attendance).RegisterJobs(scheduler)
	cron.NewLeaveJobs(leaveSvc, policy.Attendance.Location).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
