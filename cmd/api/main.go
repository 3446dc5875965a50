package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/config"
	"github.com/essayons/essayons-api/internal/domain/admin"
	"github.com/essayons/essayons-api/internal/domain/auth"
	"github.com/essayons/essayons-api/internal/domain/organization"
	"github.com/essayons/essayons-api/internal/domain/permission"
	"github.com/essayons/essayons-api/internal/domain/project"
	"github.com/essayons/essayons-api/internal/domain/support"
	"github.com/essayons/essayons-api/internal/domain/user"
	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/database"
	"github.com/essayons/essayons-api/internal/pkg/jwt"
	"github.com/essayons/essayons-api/internal/pkg/logger"
	"github.com/essayons/essayons-api/internal/pkg/ratelimit"
	pkgresponse "github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/session"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Essayons API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	operatorJWT := admin.NewJWTService(cfg.JWTSecret, cfg.JWTAccessTTL)
	sessions := session.NewStore(redis, cfg.SessionTTL)

	sweepCtx, stopSweepers := context.WithCancel(context.Background())
	defer stopSweepers()

	var loginAttempts, bindAttempts, apiLimiter ratelimit.Store
	if redis != nil {
		loginAttempts = ratelimit.NewRedisStore(redis, "rl:login", cfg.LoginMaxAttempts, cfg.LoginWindow)
		bindAttempts = ratelimit.NewRedisStore(redis, "rl:bind", 30, time.Minute)
		apiLimiter = ratelimit.NewRedisStore(redis, "rl:api", 300, time.Minute)
	} else {
		log.Warn().Msg("Redis not configured: rate limiting is in-process and impersonation binding is disabled")
		login := ratelimit.NewMemoryStore(cfg.LoginMaxAttempts, cfg.LoginWindow)
		bind := ratelimit.NewMemoryStore(30, time.Minute)
		api := ratelimit.NewMemoryStore(300, time.Minute)
		for _, store := range []*ratelimit.MemoryStore{login, bind, api} {
			store.StartSweeper(sweepCtx, time.Hour)
		}
		loginAttempts, bindAttempts, apiLimiter = login, bind, api
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	orgRepo := organization.NewRepository(db)
	permRepo := permission.NewRepository(db)
	supportRepo := support.NewRepository(db)
	auditRepo := support.NewAuditRepository(db)
	operatorRepo := admin.NewRepository(db)
	projectRepo := project.NewRepository(db)

	// ---------- Services ----------
	auditLogger := support.NewAuditLogger(auditRepo)
	orgService := organization.NewService(orgRepo, userRepo)
	supportService := support.NewService(supportRepo, orgService, auditLogger)
	tokenService := support.NewTokenService(cfg.ImpersonationSecret, supportRepo, auditLogger)
	resolver := permission.NewResolver(permRepo, supportService)
	permService := permission.NewService(permRepo)
	authService := auth.NewService(userRepo, loginAttempts)
	operatorService := admin.NewService(operatorRepo, loginAttempts)
	projectService := project.NewService(projectRepo)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService, sessions, jwtService)
	orgHandler := organization.NewHandler(orgService, userRepo)
	permHandler := permission.NewHandler(permService, resolver)
	supportHandler := support.NewHandler(supportService, tokenService, sessions, auditLogger)
	operatorHandler := admin.NewHandler(operatorService, operatorJWT)
	projectHandler := project.NewHandler(projectService)

	// ---------- Middleware ----------
	sessionAuth := middleware.Auth(sessions, jwtService)
	readOnlyEnforcer := middleware.ReadOnlyEnforcer(supportService, sessions)
	// The enforcer reads the impersonation state Auth loads into the
	// context, so every tenant-facing route runs the pair in that order.
	tenantAuth := func(next http.Handler) http.Handler {
		return sessionAuth(readOnlyEnforcer(next))
	}
	operatorAuth := admin.AuthMiddleware(operatorJWT, operatorService)
	requireTenant := organization.RequireTenant(orgService)
	loginLimiter := middleware.RateLimit(loginAttempts, "login", middleware.IPKey)
	bindLimiter := middleware.RateLimit(bindAttempts, "bind", middleware.IPKey)

	// ---------- Router ----------
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(apiLimiter, "api", middleware.IPKey))

		r.Mount("/auth", authHandler.Routes(tenantAuth, loginLimiter))
		r.Mount("/organizations", orgHandler.Routes(tenantAuth))
		r.Mount("/permissions", permHandler.Routes(tenantAuth, requireTenant))
		r.Mount("/projects", projectHandler.Routes(tenantAuth, requireTenant, resolver))
		r.Mount("/support", supportHandler.Routes(operatorAuth, bindLimiter))
		r.Mount("/admin", operatorHandler.Routes(operatorAuth, loginLimiter))
	})

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	seedDefaultRoles(seedCtx, orgRepo, permRepo)
	seedCancel()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// seedDefaultRoles ensures every organization has the built-in system roles.
func seedDefaultRoles(ctx context.Context, orgs organization.Repository, perms permission.Repository) {
	list, err := orgs.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list organizations for role seeding")
		return
	}
	for _, org := range list {
		if err := permission.EnsureDefaultRoles(ctx, perms, org.ID); err != nil {
			log.Error().Err(err).
				Str("organization_id", org.ID.String()).
				Msg("Failed to seed default roles")
		}
	}
}
