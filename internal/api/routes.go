package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarinsubahh/buet-exchange/internal/api/handlers"
	"github.com/jarinsubahh/buet-exchange/internal/api/middleware"
	"github.com/jarinsubahh/buet-exchange/internal/config"
	"github.com/jarinsubahh/buet-exchange/internal/services"
	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metrics        *metrics.MetricsCollector
	authHandler    *handlers.AuthHandler
	listingHandler *handlers.ListingHandler
	paymentHandler *handlers.PaymentHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
}

func NewRouter(
	cfg *config.Configuration,
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
	sessionService *services.SessionService,
	listingService *services.ListingService,
	db *gorm.DB,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger, metricsCollector, cfg.Security.MaxLoginAttempts)
	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(reqMiddleware.LoginAttemptMiddleware())

	return &Router{
		engine:         engine,
		logger:         logger,
		metrics:        metricsCollector,
		authHandler:    handlers.NewAuthHandler(sessionService, db, cfg.Security, logger),
		listingHandler: handlers.NewListingHandler(listingService, logger, metricsCollector),
		paymentHandler: handlers.NewPaymentHandler(listingService, logger),
		adminHandler:   handlers.NewAdminHandler(listingService, logger),
		authMiddleware: authMiddleware,
		reqMiddleware:  reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "buet-exchange"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
		})
	})

	r.engine.POST("/signup", r.authHandler.Signup)
	r.engine.POST("/login", r.authHandler.Login)
	r.engine.POST("/logout", r.authHandler.Logout)

	// Browse is public; everything that touches a session identity is
	// behind RequireAuth.
	r.engine.GET("/listings", r.listingHandler.Browse)

	authorized := r.engine.Group("/")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.POST("/listings", r.listingHandler.Create)
		authorized.GET("/my/listings", r.listingHandler.MyListings)
		authorized.GET("/listings/:id/access", r.listingHandler.Access)
		authorized.POST("/listings/:id/sold", r.listingHandler.MarkSold)
		authorized.GET("/payments/:id", r.paymentHandler.Show)
		authorized.POST("/payments/:id", r.paymentHandler.Complete)

		admin := authorized.Group("/admin")
		admin.Use(r.authMiddleware.RequireAdmin())
		{
			admin.GET("/listings/pending", r.adminHandler.Pending)
			admin.POST("/listings/:id/approve", r.adminHandler.Approve)
			admin.POST("/listings/:id/reject", r.adminHandler.Reject)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
