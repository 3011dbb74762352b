// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/handlers"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/middleware"
	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

// Ledger is the in-memory state the API serves.
type Ledger struct {
	Registry *ledger.Registry
	Vault    *ledger.Vault
	Roles    *ledger.RoleBook
}

// Initialize builds the API. db may be nil when the ledger runs in memory only.
func Initialize(db *gorm.DB, cfg *config.Config, l Ledger) (*gin.Engine, error) {
	// Initialize services
	registryService := services.NewRegistryService(l.Registry, cfg)
	collectionService := services.NewCollectionService(l.Registry, db, cfg.Ledger.AmountDecimals)
	authService := services.NewAuthService(l.Roles, cfg)
	paymentService, err := services.NewPaymentService(l.Vault, l.Registry, collectionService, cfg)
	if err != nil {
		return nil, err
	}

	return build(db, cfg, l, Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Registry:   handlers.NewRegistryHandler(registryService),
		Collection: handlers.NewCollectionHandler(collectionService),
		Payment:    handlers.NewPaymentHandler(paymentService),
	}), nil
}

type Handlers struct {
	Auth       *handlers.AuthHandler
	Registry   *handlers.RegistryHandler
	Collection *handlers.CollectionHandler
	Payment    *handlers.PaymentHandler
}

// InitializeWithHandlers is Initialize with prebuilt handlers, for tests that
// swap the card gateway.
func InitializeWithHandlers(db *gorm.DB, cfg *config.Config, l Ledger, h Handlers) *gin.Engine {
	return build(db, cfg, l, h)
}

func build(db *gorm.DB, cfg *config.Config, l Ledger, h Handlers) *gin.Engine {
	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.Issuer)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.OptionalAuth())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", healthHandler(db, l))

	authRequired := middleware.AuthRequired()

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(authRequired)
		{
			auth.GET("/me", h.Auth.GetProfile)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		v1.GET("/registry", h.Registry.GetInfo)
		v1.GET("/artists/:address", h.Registry.GetArtist)

		collections := v1.Group("/collections")
		{
			collections.GET("", h.Registry.ListCollections)
			collections.POST("", authRequired, middleware.RoleRequired(l.Roles, ledger.RoleOperator), h.Registry.DeployCollection)
			collections.GET("/:ref", h.Registry.GetCollection)

			// Minting authority is checked by the collection itself, which
			// also admits its owner.
			collections.POST("/:ref/tokens", authRequired, h.Collection.Mint)
			collections.POST("/:ref/batches", authRequired, h.Collection.BatchMint)
			collections.GET("/:ref/batches/:batchId", h.Collection.GetBatch)

			collections.GET("/:ref/tokens/:id", h.Collection.GetToken)
			collections.GET("/:ref/tokens/:id/royalty", h.Collection.GetRoyalty)
			collections.POST("/:ref/tokens/:id/listing", authRequired, h.Collection.ListToken)
			collections.DELETE("/:ref/tokens/:id/listing", authRequired, h.Collection.CancelListing)
			collections.POST("/:ref/tokens/:id/purchase", authRequired, h.Collection.Purchase)
			collections.POST("/:ref/tokens/:id/transfer", authRequired, h.Collection.Transfer)
			collections.POST("/:ref/tokens/:id/checkout", authRequired, middleware.PaymentRateLimit(), h.Payment.CreateCheckout)

			collections.GET("/:ref/owners/:address", h.Collection.GetHoldings)
			collections.GET("/:ref/settlements", h.Collection.GetSettlements)
		}

		v1.POST("/checkout/confirm", authRequired, middleware.PaymentRateLimit(), h.Payment.ConfirmCheckout)

		vault := v1.Group("/vault")
		{
			vault.POST("/deposits", authRequired, middleware.RoleRequired(l.Roles, ledger.RoleOperator), h.Payment.Deposit)
			vault.GET("/accounts/:address", h.Payment.GetBalance)
		}
	}

	return r
}

func healthHandler(db *gorm.DB, l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":      "healthy",
			"version":     "1.0.0",
			"collections": len(l.Registry.ArtistRecords()),
			"storage":     "memory",
		}

		if db != nil {
			body["storage"] = "postgres"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}

		c.JSON(status, body)
	}
}
