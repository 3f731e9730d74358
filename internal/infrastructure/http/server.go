package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/clearbridge-dev/payments/internal/adapter/handler/http"
	"github.com/clearbridge-dev/payments/internal/config"
	"github.com/clearbridge-dev/payments/internal/infrastructure/database"
	"github.com/clearbridge-dev/payments/internal/middleware/auth"
	"github.com/clearbridge-dev/payments/internal/usecase"
)

type Server struct {
	config  *config.Config
	logger  *zap.Logger
	echo    *echo.Echo
	repos   *database.Repositories
	service *usecase.PaymentService
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, service *usecase.PaymentService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:  cfg,
		logger:  logger,
		echo:    e,
		repos:   repos,
		service: service,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "payments",
		})
	})

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(s.service, s.config.Service.Payment.DefaultCurrency, s.logger)
	configHandler := handlers.NewGatewayConfigHandler(s.repos.GatewayConfig, s.logger)

	// JWT middleware configuration
	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public routes (no authentication required)
	// Masked gateway config - the site needs the public key to render checkout
	v1.GET("/config", configHandler.GetPublicConfig)

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	payments := protected.Group("/payments")
	payments.POST("/initialize", paymentHandler.InitializePayment)
	payments.POST("/verify", paymentHandler.VerifyPayment)
	payments.GET("", paymentHandler.GetUserTransactions)

	// Admin routes (require admin role)
	admin := protected.Group("/admin", auth.AdminMiddleware(s.logger))
	admin.GET("/payments", paymentHandler.GetAllTransactions)
	admin.GET("/config", configHandler.GetConfig)
	admin.POST("/config", configHandler.SaveConfig)
}
