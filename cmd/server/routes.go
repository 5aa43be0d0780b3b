package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"wallet-core.backend/internal/domain/entities"
	"wallet-core.backend/internal/interfaces/http/handlers"
	"wallet-core.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	walletHandler  *handlers.WalletHandler
	apiKeyHandler  *handlers.ApiKeyHandler
	depositHandler *handlers.DepositHandler
	authMiddleware gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, x-api-key, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Wallet routes (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.POST("", d.walletHandler.CreateWallet)
			wallets.GET("", middleware.RequirePermission(entities.PermissionRead), d.walletHandler.ListWallets)
			wallets.GET("/balance", middleware.RequirePermission(entities.PermissionRead), d.walletHandler.GetBalance)
			wallets.GET("/transactions", middleware.RequirePermission(entities.PermissionRead), d.walletHandler.GetTransactions)
			wallets.POST("/transfer",
				middleware.RequirePermission(entities.PermissionTransfer),
				middleware.IdempotencyMiddleware(),
				d.walletHandler.Transfer)
			wallets.GET("/:id", middleware.RequirePermission(entities.PermissionRead), d.walletHandler.GetWallet)
		}

		// Deposit routes
		deposits := v1.Group("/deposits")
		{
			deposits.POST("/initialize",
				d.authMiddleware,
				middleware.RequirePermission(entities.PermissionDeposit),
				middleware.IdempotencyMiddleware(),
				d.depositHandler.Initialize)
			deposits.GET("/verify/:reference",
				d.authMiddleware,
				middleware.RequirePermission(entities.PermissionRead),
				d.depositHandler.Verify)

			// Provider callback. Authenticated by HMAC signature, not by
			// user credentials.
			deposits.POST("/webhook", d.depositHandler.Webhook)
		}

		// API key routes (bearer token only; keys cannot mint keys)
		apiKeys := v1.Group("/api-keys")
		apiKeys.Use(d.authMiddleware, middleware.RequireBearerAuth())
		{
			apiKeys.POST("", d.apiKeyHandler.Create)
			apiKeys.GET("", d.apiKeyHandler.List)
			apiKeys.POST("/:id/rollover", d.apiKeyHandler.Rollover)
			apiKeys.DELETE("/:id", d.apiKeyHandler.Revoke)
		}
	}
}
