package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "smartkanban/docs"
	"smartkanban/internal/auth"
	"smartkanban/internal/config"
	"smartkanban/internal/handler"
	"smartkanban/internal/middleware"
	"smartkanban/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	Engine   *gin.Engine
	Config   *config.Config
	Strategy auth.Strategy

	handler http.Handler
	logger  *log.Logger
	closer  io.Closer
}

func Init(cfg *config.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	// Setup storage
	dataDoc, authDoc, closer, err := openDocuments(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to open storage: %w", err)
	}
	logger.Info("✅ Storage ready", "driver", driverName(cfg))

	// Initialize repositories
	store := repository.NewStore(dataDoc, logger.WithPrefix("store"))
	userRepo := repository.NewUserRepository(authDoc, logger.WithPrefix("accounts"))

	strategy, err := newStrategy(cfg, store, userRepo, logger)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}
	logger.Info("🔐 Auth mode", "mode", strategy.Mode())

	// Setup Gin
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.WithPrefix("http")))
	r.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))

	s := &Server{
		Engine:   r,
		Config:   cfg,
		Strategy: strategy,
		logger:   logger,
		closer:   closer,
	}
	s.registerRoutes(store)
	s.handler = newCORS(cfg.CORSAllowedOrigins)(r)
	return s, nil
}

func (s *Server) registerRoutes(store repository.StoreInterface) {
	r := s.Engine

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(store, s.logger)
	taskHandler := handler.NewTaskHandler(store, s.logger)

	// Public routes
	r.GET("/health", handler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	switch strategy := s.Strategy.(type) {
	case *auth.SharedSecret:
		r.POST("/login", handler.NewSharedLoginHandler(strategy, s.logger).Login)
	case *auth.Account:
		userHandler := handler.NewUserHandler(strategy, s.Config.CookieSecure, s.logger)
		authGroup := r.Group("/auth")
		{
			authGroup.POST("/register", userHandler.Register)
			authGroup.POST("/login", userHandler.Login)
			authGroup.POST("/refresh", userHandler.Refresh)
			authGroup.POST("/logout", userHandler.Logout)
			authGroup.GET("/me", middleware.AuthMiddleware(strategy), userHandler.Me)
		}
	}

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthMiddleware(s.Strategy))
	{
		authorized.GET("/projects", projectHandler.List)
		authorized.POST("/projects", projectHandler.Create)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
	}

	s.mountStatic()
}

// Handler is the full HTTP handler, gin wrapped in CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases the storage backend.
func (s *Server) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	if err := s.Close(); err != nil {
		s.logger.Warn("storage close failed", "err", err)
	}

	s.logger.Info("✅ Server exited properly")
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
