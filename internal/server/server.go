package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fitcoach/docs"
	"fitcoach/internal/ai"
	"fitcoach/internal/config"
	"fitcoach/internal/handler"
	authHandler "fitcoach/internal/handler/auth"
	"fitcoach/internal/pkg/cache"
	"fitcoach/internal/pkg/jwt"
	"fitcoach/internal/pkg/mongodb"
	"fitcoach/internal/repository"
	authRepo "fitcoach/internal/repository/auth"
	"fitcoach/internal/server/middleware"
	"fitcoach/internal/service"
)

// Server is the HTTP front of the coaching service.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New builds the server: connections first, then repositories, services,
// handlers and routes. MongoDB is required; Redis and the completion
// provider degrade gracefully when not configured.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Redis is an optional read-through cache; the service runs without it.
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (s *Server) setupRoutes() error {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	db := s.mongo.Database()
	convRepo := repository.NewConversationRepo(db)
	statsRepo := repository.NewStatsRepo(db)
	adminRepo := repository.NewAdminRepo(db)
	profileRepo := repository.NewUserProfileRepo(db)
	userRepo := authRepo.NewUserRepo(db)
	refreshTokenRepo := authRepo.NewRefreshTokenRepo(db)

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}

	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}

	refreshTokenExpiry := s.cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	authSvc := service.NewAuthService(
		userRepo,
		refreshTokenRepo,
		profileRepo,
		jwtSecret,
		accessTokenExpiry,
		refreshTokenExpiry,
	)
	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)

	// The cache interfaces are satisfied by *cache.RedisCache; a typed nil
	// must not leak into the interface values when Redis is absent.
	var viewCache service.ViewCache
	var convCache service.ConversationCache
	if s.redis != nil {
		viewCache = s.redis
		convCache = s.redis
	}

	adminSvc := service.NewAdminService(
		userRepo,
		profileRepo,
		adminRepo,
		convRepo,
		statsRepo,
		refreshTokenRepo,
		viewCache,
	)

	v1 := s.engine.Group("/api/v1")
	{
		authHdl := authHandler.NewHandler(authSvc)
		v1.POST("/auth/register", authHdl.Register)
		v1.POST("/auth/login", authHdl.Login)
		v1.POST("/auth/refresh", authHdl.Refresh)
		v1.POST("/auth/logout", authHdl.Logout)
		v1.GET("/auth/me", authHdl.GetMe)

		// Chat endpoints take the user id from the request body, so they
		// stay open to anonymous callers. A Bearer token, when present,
		// must still match the body; see ChatHandler.
		if s.cfg.AI.APIKey != "" {
			oracle, err := ai.NewClient(context.Background(), &s.cfg.AI)
			if err != nil {
				return err
			}
			chatSvc, err := service.NewChatService(oracle, convRepo, statsRepo, convCache, s.cfg.Chat)
			if err != nil {
				return err
			}
			chatHdl := handler.NewChatHandler(chatSvc)

			chat := v1.Group("/chat", middleware.OptionalAuth(jwtUtil))
			chat.POST("/generate", chatHdl.Generate)
			chat.POST("/stream", chatHdl.Stream)
		} else {
			log.Warn().Msg("AI API key not configured, chat endpoints disabled")
		}

		adminHdl := handler.NewAdminHandler(adminSvc)

		// Deletion identifies the acting admin by the adminId field in the
		// body; the service checks the marker and answers 403 itself.
		v1.DELETE("/admin/users", adminHdl.DeleteUser)

		admin := v1.Group("/admin", middleware.Auth(jwtUtil), middleware.AdminRequired(adminSvc))
		admin.GET("/users", adminHdl.ListUsers)
		admin.GET("/users/:id/conversation", adminHdl.GetConversation)
	}

	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
