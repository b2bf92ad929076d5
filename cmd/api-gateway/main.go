package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-agenda-api/api/swagger"
	"github.com/noah-isme/lms-agenda-api/internal/handler"
	internalmiddleware "github.com/noah-isme/lms-agenda-api/internal/middleware"
	"github.com/noah-isme/lms-agenda-api/internal/repository"
	"github.com/noah-isme/lms-agenda-api/internal/service"
	"github.com/noah-isme/lms-agenda-api/pkg/cache"
	"github.com/noah-isme/lms-agenda-api/pkg/config"
	"github.com/noah-isme/lms-agenda-api/pkg/database"
	"github.com/noah-isme/lms-agenda-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-agenda-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-agenda-api/pkg/middleware/requestid"
)

// @title LMS Agenda API
// @version 1.0.0
// @description Class schedules, weekly timetable, today's agenda and alerts for a language centre.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := connect(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to connect backends", zap.Error(err))
	}
	defer deps.close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ExposedHeaders: []string{"Content-Disposition", internalmiddleware.CacheStatusHeader, reqidmiddleware.Header},
	}))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	ops := handler.NewMetricsHandler(metrics, deps.checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes := buildRoutes(cfg, deps, metrics, logr)
	verifier := service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	auth := internalmiddleware.OptionalJWT(verifier)
	if cfg.JWT.Required {
		auth = internalmiddleware.JWT(verifier)
	}
	routes.Register(r.Group(cfg.APIPrefix), auth)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Backend), zap.Bool("cache", deps.redis != nil && cfg.Cache.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type backends struct {
	db     *sqlx.DB
	redis  *redis.Client
	stores repository.Stores
	checks map[string]handler.Pinger
}

func (b *backends) close() {
	if b.db != nil {
		_ = b.db.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// connect opens the configured record store and, when needed, Redis. The kv backend
// requires Redis; the response cache only uses it when reachable.
func connect(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*backends, error) {
	deps := &backends{checks: make(map[string]handler.Pinger)}

	needRedis := cfg.Store.Backend == config.StoreKV || cfg.Cache.Enabled
	if needRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		switch {
		case err == nil:
			deps.redis = client
		case cfg.Store.Backend == config.StoreKV:
			return nil, err
		default:
			logr.Warn("redis unavailable, response cache disabled", zap.Error(err))
		}
	}

	switch cfg.Store.Backend {
	case config.StoreKV:
		kv := repository.NewKVStore(deps.redis)
		deps.stores = kv.Stores()
		deps.checks["store"] = kv
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			deps.close()
			return nil, err
		}
		deps.db = db
		deps.stores = repository.NewSQLStores(db)
		deps.checks["database"] = database.Health{DB: db}
	}

	if deps.redis != nil && cfg.Cache.Enabled {
		deps.checks["cache"] = repository.NewCacheRepository(deps.redis, logr)
	}
	return deps, nil
}

func buildRoutes(cfg *config.Config, deps *backends, metrics *service.MetricsService, logr *zap.Logger) handler.Routes {
	loc := cfg.Location()
	validate := service.NewValidator()

	var cacheRepo service.CacheRepository
	if deps.redis != nil {
		cacheRepo = repository.NewCacheRepository(deps.redis, logr.Named("cache"))
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr.Named("cache"), cfg.Cache.Enabled && cacheRepo != nil)

	stores := deps.stores
	classes := service.NewClassService(stores.Classes, cacheSvc, validate, logr.Named("classes"))
	students := service.NewStudentService(stores.Students, stores.Classes, validate, logr.Named("students"))
	attendance := service.NewAttendanceService(stores.Attendance, stores.Classes, cacheSvc, validate, logr.Named("attendance"))
	tuitions := service.NewTuitionService(service.TuitionServiceParams{
		Repo:      stores.Tuitions,
		Students:  stores.Students,
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr.Named("tuitions"),
		Location:  loc,
	})
	calendar := service.NewCalendarService(service.CalendarServiceParams{
		Classes:  stores.Classes,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr.Named("calendar"),
		Location: loc,
		CacheTTL: cfg.Cache.CalendarTTL,
	})
	today := service.NewDashboardService(service.DashboardServiceParams{
		Classes:    stores.Classes,
		Attendance: stores.Attendance,
		Tuitions:   stores.Tuitions,
		Metrics:    metrics,
		Logger:     logr.Named("dashboard"),
		Location:   loc,
	})
	management := service.NewManagementService(service.ManagementServiceParams{
		Tuitions:   stores.Tuitions,
		Attendance: stores.Attendance,
		Cache:      cacheSvc,
		Logger:     logr.Named("management"),
		Location:   loc,
		Config: service.ManagementServiceConfig{
			CacheTTL:         cfg.Dashboard.CacheTTL,
			OverdueListLimit: cfg.Dashboard.OverdueListLimit,
		},
	})

	return handler.Routes{
		Classes:    handler.NewClassHandler(classes),
		Students:   handler.NewStudentHandler(students),
		Attendance: handler.NewAttendanceHandler(attendance),
		Tuitions:   handler.NewTuitionHandler(tuitions, loc),
		Calendar:   handler.NewCalendarHandler(calendar),
		Dashboard:  handler.NewDashboardHandler(today, management),
	}
}
