// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/app"
	"stockledger/internal/domain/catalogs"
	"stockledger/internal/domain/documents/stock_in"
	"stockledger/internal/domain/documents/stock_out"
	"stockledger/internal/domain/documents/stock_transfer"
	"stockledger/internal/infrastructure/http/v1/dto"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/internal/infrastructure/metrics"
	"stockledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// Metrics enables the HTTP metrics middleware and /metrics; optional.
	Metrics *metrics.Metrics

	// JWTValidator enables bearer authentication on /api/v1. When nil the
	// caller is taken from the X-Actor header.
	JWTValidator middleware.JWTValidator

	// Health serves /health; optional.
	Health *handlers.HealthHandler
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Order matters: errors recorded by Recovery must reach ErrorHandler.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	if cfg.Metrics != nil {
		router.GET("/metrics", middleware.MetricsEndpoint(cfg.Metrics))
	}

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("/live", cfg.Health.Live)
			health.GET("/ready", cfg.Health.Ready)
			health.GET("/info", cfg.Health.Info)
		}
	}

	v1 := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		v1.Use(middleware.Auth(cfg.JWTValidator))
	} else {
		v1.Use(middleware.ActorFromHeader())
	}

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(v1, base, cfg.Services.Catalogs)
	registerDocumentRoutes(v1, base, cfg.Services)
	handlers.NewBalanceHandler(base, cfg.Services.Balances).RegisterRoutes(v1.Group("/balances"))
	handlers.NewReportsHandler(base, cfg.Services.Reports).RegisterRoutes(v1.Group("/reports"))

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, dir *catalogs.Directory) {
	handlers.NewCatalogHandler[*catalogs.Warehouse, dto.WarehouseRequest](base, dir.Warehouses).
		RegisterRoutes(rg.Group("/warehouses"))
	handlers.NewCatalogHandler[*catalogs.Product, dto.ProductRequest](base, dir.Products).
		RegisterRoutes(rg.Group("/products"))
	handlers.NewCatalogHandler[*catalogs.Supplier, dto.SupplierRequest](base, dir.Suppliers).
		RegisterRoutes(rg.Group("/suppliers"))
	handlers.NewCatalogHandler[*catalogs.Customer, dto.CustomerRequest](base, dir.Customers).
		RegisterRoutes(rg.Group("/customers"))
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	handlers.NewDocumentHandler[*stock_in.StockIn, stock_in.CreateRequest, stock_in.UpdateRequest](base, svc.StockIns).
		RegisterRoutes(rg.Group("/stock-ins"))
	handlers.NewDocumentHandler[*stock_out.StockOut, stock_out.CreateRequest, stock_out.UpdateRequest](base, svc.StockOuts).
		RegisterRoutes(rg.Group("/stock-outs"))
	handlers.NewDocumentHandler[*stock_transfer.StockTransfer, stock_transfer.CreateRequest, stock_transfer.UpdateRequest](base, svc.StockTransfers).
		RegisterRoutes(rg.Group("/stock-transfers"))
	handlers.NewStockTakeHandler(base, svc.StockTakes).
		RegisterRoutes(rg.Group("/stock-takes"))
}
