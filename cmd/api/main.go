package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grievance-service/internal/api/http"
	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/classifier"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	officerRepo := repository.NewOfficerRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	mappingRepo := repository.NewCategoryMappingRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	historyRepo := repository.NewComplaintHistoryRepository(pool)
	slaRuleRepo := repository.NewSLARuleRepository(pool)
	auditLogRepo := repository.NewAuditLogRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	auditService := service.NewAuditService(dispatcher, auditLogRepo, logger)
	auditService.RegisterHandlers()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	slaService := service.NewSLAService(service.SLADependencies{
		RuleRepo:       slaRuleRepo,
		DepartmentRepo: departmentRepo,
		ComplaintRepo:  complaintRepo,
	}, cfg.Monitor.AtRiskWindow(), logger)

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		MappingRepo: mappingRepo,
		OfficerRepo: officerRepo,
		HistoryRepo: historyRepo,
		SLA:         slaService,
		Dispatcher:  dispatcher,
	}, logger)

	classifierClient := classifier.NewClient(cfg.Classifier, classifier.NewRedisCache(redis.Client), logger)

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		ComplaintRepo: complaintRepo,
		Classifier:    classifierClient,
		Assignment:    assignmentService,
		Dispatcher:    dispatcher,
	}, logger)

	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		ComplaintRepo: complaintRepo,
		HistoryRepo:   historyRepo,
		OfficerRepo:   officerRepo,
		AccountRepo:   accountRepo,
		SLA:           slaService,
		Dispatcher:    dispatcher,
	}, cfg.Trust, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo: accountRepo,
		Dispatcher:  dispatcher,
	})

	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		AccountRepo:    accountRepo,
		OfficerRepo:    officerRepo,
		DepartmentRepo: departmentRepo,
		MappingRepo:    mappingRepo,
		ComplaintRepo:  complaintRepo,
		HistoryRepo:    historyRepo,
		AuditLogRepo:   auditLogRepo,
		Dispatcher:     dispatcher,
	}, logger)

	monitor := worker.NewSLAMonitor(worker.MonitorDependencies{
		ComplaintRepo: complaintRepo,
		HistoryRepo:   historyRepo,
		SLA:           slaService,
		Dispatcher:    dispatcher,
		Redis:         redis.Client,
		Metrics:       metrics,
	}, cfg.Monitor, logger)
	go monitor.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo, officerRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:              handlers.NewAuthHandler(authService),
		Complaints:        handlers.NewComplaintsHandler(intakeService, lifecycleService),
		OfficerComplaints: handlers.NewOfficerComplaintsHandler(intakeService, lifecycleService),
		SLA:               handlers.NewSLAHandler(slaService, monitor),
		Admin:             handlers.NewAdminHandler(adminService, intakeService, lifecycleService),
		AuthMiddleware:    authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
