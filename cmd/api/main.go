package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skponto/skponto-backend-go/internal/config"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	appHTTP "github.com/skponto/skponto-backend-go/internal/handler/http"
	"github.com/skponto/skponto-backend-go/internal/pkg/cron"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/skponto/skponto-backend-go/internal/pkg/jwt"
	"github.com/skponto/skponto-backend-go/internal/pkg/sse"
	"github.com/skponto/skponto-backend-go/internal/pkg/storage"
	"github.com/skponto/skponto-backend-go/internal/repository/postgresql"
	compensationService "github.com/skponto/skponto-backend-go/internal/service/compensation"
	"github.com/skponto/skponto-backend-go/internal/service/file"
	hourBankService "github.com/skponto/skponto-backend-go/internal/service/hourbank"
	notificationService "github.com/skponto/skponto-backend-go/internal/service/notification"
	overtimeService "github.com/skponto/skponto-backend-go/internal/service/overtime"
	timeRecordService "github.com/skponto/skponto-backend-go/internal/service/timerecord"
	"github.com/skponto/skponto-backend-go/internal/service/workhours"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	workClassRepo := postgresql.NewWorkClassRepository(db)
	hourBankRepo := postgresql.NewHourBankRepository(db, cfg.Database.LockTimeout)
	transactionRepo := postgresql.NewTransactionRepository(db)
	timeRecordRepo := postgresql.NewTimeRecordRepository(db)
	overtimeRequestRepo := postgresql.NewOvertimeRequestRepository(db)
	overtimeSettingsRepo := postgresql.NewOvertimeSettingsRepository(db)
	overtimeLimitsRepo := postgresql.NewOvertimeLimitsRepository(db)
	compensationRepo := postgresql.NewCompensationRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	notifSvc := notificationService.NewNotificationService(
		notificationRepo,
		sse.NewHub[notification.SSEEvent](16),
		notificationService.Config{
			BatchSize:     cfg.Notification.BatchSize,
			FlushInterval: cfg.Notification.FlushInterval,
			WorkerCount:   cfg.Notification.WorkerCount,
			QueueSize:     cfg.Notification.QueueSize,
		},
	)

	attestationStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		slog.Error("Failed to initialize local storage", "error", err)
		os.Exit(1)
	}
	fileSvc := file.NewFileService(attestationStorage, cfg.Storage.MaxUploadSize)

	policies := workhours.NewPolicyResolver(userRepo, workClassRepo, workclass.DefaultPolicy())
	ledger := hourBankService.NewLedger(txManager, hourBankRepo, transactionRepo)
	settlementSvc := hourBankService.NewSettlementService(
		txManager,
		ledger,
		hourBankRepo,
		timeRecordRepo,
		overtimeRequestRepo,
		policies,
		notifSvc,
	)
	hourBankSvc := hourBankService.NewHourBankService(ledger, hourBankRepo, transactionRepo, userRepo, notifSvc)
	timeRecordSvc := timeRecordService.NewTimeRecordService(txManager, timeRecordRepo, policies, settlementSvc, cfg.Location())
	overtimeSvc := overtimeService.NewOvertimeService(
		txManager,
		overtimeRequestRepo,
		overtimeSettingsRepo,
		overtimeLimitsRepo,
		userRepo,
		notifSvc,
		overtime.SettingsDefaults{
			MaxDailyOvertime:   cfg.Overtime.MaxDailyOvertime,
			MaxWeeklyOvertime:  cfg.Overtime.MaxWeeklyOvertime,
			MaxMonthlyOvertime: cfg.Overtime.MaxMonthlyOvertime,
			AutoApprovalLimit:  cfg.Overtime.AutoApprovalLimit,
			RequiresApproval:   cfg.Overtime.RequiresApproval,
			Multipliers: map[overtime.Type]float64{
				overtime.TypeRegular: cfg.Overtime.DefaultMultiplier,
				overtime.TypeNight:   cfg.Overtime.DefaultMultiplier,
				overtime.TypeWeekend: cfg.Overtime.WeekendMultiplier,
				overtime.TypeHoliday: cfg.Overtime.HolidayMultiplier,
			},
		},
	)
	compensationSvc := compensationService.NewCompensationService(txManager, compensationRepo, ledger, userRepo, notifSvc)

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		HourBank:     appHTTP.NewHourBankHandler(hourBankSvc),
		TimeRecord:   appHTTP.NewTimeRecordHandler(timeRecordSvc, settlementSvc, fileSvc),
		Overtime:     appHTTP.NewOvertimeHandler(overtimeSvc),
		Compensation: appHTTP.NewCompensationHandler(compensationSvc),
		Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService),
	}, cfg.App, cfg.SlogLevel())

	scheduler := cron.NewScheduler()
	cron.NewHourBankJobs(
		settlementSvc,
		hourBankSvc,
		cfg.HourBank.SweepInterval,
		cfg.HourBank.ReconcileInterval,
		cfg.HourBank.SweepLookbackDays,
	).RegisterJobs(scheduler)
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Request contexts derive from ctx so open SSE streams end on shutdown.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
	notifSvc.Stop()
}
