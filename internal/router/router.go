// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/manna-art/manna-backend/internal/config"
	"github.com/manna-art/manna-backend/internal/handlers"
	"github.com/manna-art/manna-backend/internal/middleware"
	"github.com/manna-art/manna-backend/internal/services"
	"github.com/manna-art/manna-backend/internal/store"
	"github.com/manna-art/manna-backend/internal/utils"
)

// Initialize builds every collaborator once and wires the route table.
// All clients are constructed here and injected; nothing downstream
// reaches for process-wide state.
func Initialize(catalog store.Catalog, cfg *config.Config, log *logrus.Logger) (*gin.Engine, error) {
	artifacts, err := services.NewArtifactStore(cfg.Arweave)
	if err != nil {
		return nil, err
	}
	registry := services.NewStoryClient(cfg.Story)
	billing := services.NewStripeBilling(cfg.Stripe)

	registration := services.NewRegistrationService(catalog, artifacts, registry, billing,
		services.WithEntitlementBypass(cfg.Stripe.SkipSubscriptionCheck),
		services.WithLogger(log),
	)

	artworkHandler := handlers.NewArtworkHandler(catalog)
	registerHandler := handlers.NewRegisterHandler(registration)
	remixHandler := handlers.NewRemixHandler(registration)
	subscriptionHandler := handlers.NewSubscriptionHandler(billing)
	checkoutHandler := handlers.NewCheckoutHandler(billing)
	spgHandler := handlers.NewSPGHandler(registry)
	sessionHandler := handlers.NewSessionHandler()

	// An empty WALLET_SESSION_SECRET must not replace the built-in
	// fallback with an empty signing key.
	if cfg.Auth.JWTSecret != "" {
		utils.SetJWTSecret(cfg.Auth.JWTSecret)
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WalletSession())
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	r.POST("/session", sessionHandler.Create)
	r.GET("/me/artworks", middleware.WalletRequired(), artworkHandler.GetMyArtworks)

	r.GET("/artworks", artworkHandler.GetArtworks)
	r.GET("/artworks/:id", artworkHandler.GetArtwork)
	r.GET("/artworks/creator/:wallet", artworkHandler.GetArtworksByCreator)
	r.POST("/artworks/:id/view", artworkHandler.RecordView)
	r.POST("/artworks/:id/like", artworkHandler.Like)

	r.POST("/register-ip", middleware.UploadRateLimit(), registerHandler.RegisterIP)
	r.POST("/remix", middleware.UploadRateLimit(), remixHandler.CreateRemix)

	r.POST("/subscription/status", subscriptionHandler.GetStatus)
	r.POST("/create-checkout-session", checkoutHandler.CreateCheckoutSession)

	r.POST("/spg/create", spgHandler.CreateCollection)

	return r, nil
}
