package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glucogard_backend/internal/config"
	"glucogard_backend/internal/controller"
	"glucogard_backend/internal/questionnaire"
	"glucogard_backend/internal/repository"
	"glucogard_backend/internal/service"
	"glucogard_backend/pkg/configwatcher"
	"glucogard_backend/pkg/database"
	"glucogard_backend/pkg/logger"
	"glucogard_backend/pkg/monitoring"
	"glucogard_backend/pkg/security"
	"glucogard_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Provider *questionnaire.Provider

	tracerProvider *sdktrace.TracerProvider
}

type repositories struct {
	user      *repository.UserRepository
	screening *repository.ScreeningRepository
	draft     *repository.DraftRepository
	riskCache *repository.RiskCache
}

type services struct {
	auth      *service.AuthService
	risk      *service.RiskService
	screening *service.ScreeningService
	research  *service.ResearchService
	dashboard *service.DashboardService
}

type controllers struct {
	auth      *controller.AuthController
	screening *controller.ScreeningController
	dashboard *controller.DashboardController
	research  *controller.ResearchController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		screening: repository.NewScreeningRepository(db),
		draft:     repository.NewDraftRepository(rdb),
		riskCache: repository.NewRiskCache(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.risk = service.NewRiskService(cfg.Scoring)
	s.screening = service.NewScreeningService(a.Provider, repos.screening, repos.draft, s.risk, repos.riskCache)
	s.research = service.NewResearchService(repos.screening, &cfg.Storage, cfg.Storage.ExportSalt)
	s.dashboard = service.NewDashboardService(repos.screening, repos.draft, repos.riskCache)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		screening: controller.NewScreeningController(s.screening),
		dashboard: controller.NewDashboardController(s.dashboard),
		research:  controller.NewResearchController(s.research),
		health:    controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// resolvePolicy maps the configured policy string to the engine policy.
// Unset follows the server mode: fail loudly in development, keep serving in
// production.
func resolvePolicy(cfg *config.Config) questionnaire.Policy {
	switch cfg.Questionnaire.Policy {
	case "strict":
		return questionnaire.PolicyStrict
	case "lenient":
		return questionnaire.PolicyLenient
	}
	if cfg.Server.Mode == "release" {
		return questionnaire.PolicyLenient
	}
	return questionnaire.PolicyStrict
}

// buildEngine loads the configured bank file, or the built-in diabetes flow
// when none is configured.
func buildEngine(cfg *config.Config) (*questionnaire.Engine, error) {
	reg := questionnaire.DefaultRegistry()
	policy := resolvePolicy(cfg)

	flow := questionnaire.DefaultFlow()
	if cfg.Questionnaire.BankPath != "" {
		loaded, err := questionnaire.LoadFlow(cfg.Questionnaire.BankPath)
		if err != nil {
			return nil, err
		}
		flow = loaded
	}
	return questionnaire.NewEngine(flow, reg, policy, logger.Log)
}

// watchBank swaps in a freshly parsed engine when the bank file changes. A
// bad edit is logged and the previous flow keeps serving.
func (a *App) watchBank(cfg *config.Config) {
	if cfg.Questionnaire.BankPath == "" {
		return
	}
	go configwatcher.WatchFile(cfg.Questionnaire.BankPath, func(path string) {
		eng, err := buildEngine(cfg)
		if err != nil {
			logger.Log.Error("questionnaire bank reload failed, keeping previous flow",
				zap.String("path", path), zap.Error(err))
			return
		}
		a.Provider.Swap(eng)
		logger.Log.Info("questionnaire bank reloaded",
			zap.String("path", path), zap.String("flow", eng.Flow().Name))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to load questionnaire flow", zap.Error(err))
	}
	logger.Log.Info("Questionnaire flow loaded",
		zap.String("flow", eng.Flow().Name), zap.Int("questions", eng.Flow().Len()))

	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Provider: questionnaire.NewProvider(eng),
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("glucogard-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.watchBank(cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
