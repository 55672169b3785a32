package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"open-wallet.backend/internal/interfaces/http/handlers"
	"open-wallet.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	walletHandler  *handlers.WalletHandler
	agentHandler   *handlers.AgentHandler
	ucpHandler     *handlers.UCPHandler
	authMiddleware gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")

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
		// Wallet routes (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.POST("", d.walletHandler.CreateWallet)
			wallets.GET("/me", d.walletHandler.GetMyWallet)
			wallets.GET("/:id", d.walletHandler.GetWallet)
			wallets.GET("/:id/stats", d.walletHandler.GetWalletStats)
			wallets.GET("/:id/transactions", d.walletHandler.GetTransactions)
			wallets.PUT("/:id/status", d.walletHandler.UpdateWalletStatus)
			wallets.POST("/:id/add-funds", middleware.IdempotencyMiddleware(), d.walletHandler.AddFunds)
			wallets.POST("/:id/deduct-funds", middleware.IdempotencyMiddleware(), d.walletHandler.DeductFunds)
			wallets.POST("/:id/transfer", middleware.IdempotencyMiddleware(), d.walletHandler.Transfer)
			wallets.POST("/:id/chain-transfers", middleware.IdempotencyMiddleware(), d.walletHandler.RecordChainTransfer)
		}

		// Transaction routes (protected)
		transactions := v1.Group("/transactions")
		transactions.Use(d.authMiddleware)
		{
			transactions.POST("/:id/refund", middleware.IdempotencyMiddleware(), d.walletHandler.Refund)
		}

		// Agent routes (protected)
		agents := v1.Group("/agents")
		agents.Use(d.authMiddleware)
		{
			agents.POST("", d.agentHandler.RegisterAgent)
			agents.GET("", d.agentHandler.ListAgents)
			agents.GET("/:id", d.agentHandler.GetAgent)
			agents.PUT("/:id/policy", d.agentHandler.UpdateAgentPolicy)
			agents.PUT("/:id/status", d.agentHandler.UpdateAgentStatus)
			agents.POST("/transfer", middleware.IdempotencyMiddleware(), d.agentHandler.A2ATransfer)
		}

		// UCP routes: schema is public, intents are protected
		ucp := v1.Group("/ucp")
		{
			ucp.GET("/schema", d.ucpHandler.Schema)
			ucp.POST("/intents", d.authMiddleware, middleware.IdempotencyMiddleware(), d.ucpHandler.ProcessIntent)
		}
	}
}
