package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pniceshipping/portal/internal/api/handler"
	"github.com/pniceshipping/portal/internal/api/middleware"
	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
	"github.com/pniceshipping/portal/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	shipments ports.ShipmentService,
	deliveries ports.DeliveryService,
	queue ports.NotificationQueue,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pnice"))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Handlers ---
	shipmentHandler := handler.NewShipmentHandler(shipments)
	deliveryHandler := handler.NewDeliveryHandler(deliveries, queue)

	staffOnly := middleware.RBAC(domain.RoleAdmin)
	anyUser := middleware.RBAC(domain.RoleAdmin, domain.RoleClient)

	// --- Portal routes (gateway-authenticated) ---
	v1 := e.Group("/v1", middleware.Identity())

	v1.POST("/shipments", shipmentHandler.Create, anyUser)
	v1.GET("/shipments", shipmentHandler.List, anyUser)
	v1.GET("/shipments/:tracking_number", shipmentHandler.Get, anyUser)
	v1.POST("/shipments/:tracking_number/status", shipmentHandler.Transition, staffOnly)

	v1.POST("/deliveries", deliveryHandler.Create, staffOnly)
	v1.GET("/deliveries", deliveryHandler.List, anyUser)
	v1.GET("/deliveries/:id", deliveryHandler.Get, anyUser)

	return e
}
