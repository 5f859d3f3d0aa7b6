package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/config"
	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/audit"
	adminhttp "coachmarket-backend/internal/features/admin/delivery/http"
	adminpg "coachmarket-backend/internal/features/admin/repository/postgres"
	adminservice "coachmarket-backend/internal/features/admin/service"
	apphttp "coachmarket-backend/internal/features/application/delivery/http"
	apppg "coachmarket-backend/internal/features/application/repository/postgres"
	appservice "coachmarket-backend/internal/features/application/service"
	authhttp "coachmarket-backend/internal/features/auth/delivery/http"
	authredis "coachmarket-backend/internal/features/auth/repository/redis"
	authservice "coachmarket-backend/internal/features/auth/service"
	"coachmarket-backend/internal/features/auth/token"
	chathttp "coachmarket-backend/internal/features/chat/delivery/http"
	chatpg "coachmarket-backend/internal/features/chat/repository/postgres"
	chatservice "coachmarket-backend/internal/features/chat/service"
	gamehttp "coachmarket-backend/internal/features/game/delivery/http"
	gamepg "coachmarket-backend/internal/features/game/repository/postgres"
	gameservice "coachmarket-backend/internal/features/game/service"
	listinghttp "coachmarket-backend/internal/features/listing/delivery/http"
	listingpg "coachmarket-backend/internal/features/listing/repository/postgres"
	listingredis "coachmarket-backend/internal/features/listing/repository/redis"
	listingservice "coachmarket-backend/internal/features/listing/service"
	notifhttp "coachmarket-backend/internal/features/notification/delivery/http"
	notifpg "coachmarket-backend/internal/features/notification/repository/postgres"
	notifservice "coachmarket-backend/internal/features/notification/service"
	requesthttp "coachmarket-backend/internal/features/request/delivery/http"
	requestpg "coachmarket-backend/internal/features/request/repository/postgres"
	requestservice "coachmarket-backend/internal/features/request/service"
	reviewhttp "coachmarket-backend/internal/features/review/delivery/http"
	reviewpg "coachmarket-backend/internal/features/review/repository/postgres"
	reviewservice "coachmarket-backend/internal/features/review/service"
	userhttp "coachmarket-backend/internal/features/user/delivery/http"
	userpg "coachmarket-backend/internal/features/user/repository/postgres"
	userredis "coachmarket-backend/internal/features/user/repository/redis"
	userservice "coachmarket-backend/internal/features/user/service"
	"coachmarket-backend/internal/platform/db"
	redisplatform "coachmarket-backend/internal/platform/redis"
)

const cacheTTL = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("coachmarket-api", cfg.Debug)

	pg, err := db.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres open failed")
	}
	defer pg.Close()

	if err := db.Migrate(pg, "migrations"); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	rdb, err := redisplatform.Open(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis open failed")
	}
	defer rdb.Close()

	tokens := token.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Repositories.
	userRepo := userpg.NewPostgresRepository(pg)
	adminRepo := adminpg.NewPostgresRepository(pg)
	gameRepo := gamepg.NewPostgresRepository(pg)
	appRepo := apppg.NewPostgresRepository(pg)
	listingRepo := listingpg.NewPostgresRepository(pg)
	requestRepo := requestpg.NewPostgresRepository(pg)
	chatRepo := chatpg.NewPostgresRepository(pg)
	reviewRepo := reviewpg.NewPostgresRepository(pg)
	notifRepo := notifpg.NewPostgresRepository(pg)

	auditor := audit.NewRecorder(adminRepo)

	// Services.
	userCache := userredis.NewUserCache(rdb, cacheTTL)
	userSvc := userservice.NewUserService(userRepo, userCache)
	loginThrottle := authredis.NewLoginThrottle(rdb, time.Hour)
	authSvc := authservice.NewAuthService(userRepo, adminRepo, tokens, auditor, loginThrottle, cfg.Auth.BcryptCost)
	adminSvc := adminservice.NewAdminService(adminRepo, cfg.Auth.BcryptCost)
	gameSvc := gameservice.NewGameService(gameRepo)
	notifSvc := notifservice.NewNotificationService(notifRepo)
	listingSvc := listingservice.NewListingService(listingRepo, listingredis.NewListingCache(rdb, cacheTTL))
	appSvc := appservice.NewApplicationService(appRepo, listingSvc, userCache)
	requestSvc := requestservice.NewRequestService(requestRepo, listingRepo, notifSvc, userCache)
	chatSvc := chatservice.NewChatService(chatRepo)
	reviewSvc := reviewservice.NewReviewService(reviewRepo, requestRepo)

	// HTTP surface.
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api/v1")
	authed := public.Group("", middleware.Auth(tokens))
	admin := authed.Group("/admin", middleware.RequireAdmin(), auditor.Middleware())

	authHandler := authhttp.NewAuthHandler(authSvc, tokens)
	authHandler.RegisterRoutes(public)
	authHandler.RegisterProtectedRoutes(authed)

	userhttp.NewUserHandler(userSvc).RegisterRoutes(authed)
	gamehttp.NewGameHandler(gameSvc).RegisterRoutes(public, admin)
	listinghttp.NewListingHandler(listingSvc).RegisterRoutes(public, authed)
	apphttp.NewApplicationHandler(appSvc).RegisterRoutes(authed, admin)
	requesthttp.NewRequestHandler(requestSvc).RegisterRoutes(authed, admin)
	chathttp.NewChatHandler(chatSvc).RegisterRoutes(authed, admin)
	reviewhttp.NewReviewHandler(reviewSvc).RegisterRoutes(authed, public)
	notifhttp.NewNotificationHandler(notifSvc).RegisterRoutes(authed)
	adminhttp.NewAdminHandler(adminSvc, userSvc).RegisterRoutes(admin)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
