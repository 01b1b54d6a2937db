package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the API v1 route groups onto a router. Middleware
// (CORS, logging, recovery) is attached by the caller.
func SetupRouter(
	router *gin.Engine,
	sessionHandler *SessionHandler,
	tradeHandler *TradeHandler,
	activityHandler *ActivityHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		session := v1.Group("/session")
		{
			session.POST("/connect", sessionHandler.ConnectHandler)
			session.POST("/disconnect", sessionHandler.DisconnectHandler)
			session.GET("/status", sessionHandler.StatusHandler)
		}

		v1.GET("/accounts/:address", sessionHandler.AccountHandler)

		v1.POST("/payments", tradeHandler.PaymentHandler)

		swaps := v1.Group("/swaps")
		{
			swaps.POST("", tradeHandler.SwapHandler)
			swaps.POST("/estimate", tradeHandler.EstimateHandler)
			swaps.POST("/preview", tradeHandler.PreviewRequestHandler)
			swaps.GET("/preview", tradeHandler.PreviewHandler)
		}

		v1.GET("/transactions/:id", tradeHandler.TransactionStatusHandler)

		activity := v1.Group("/activity")
		{
			activity.GET("", activityHandler.RecentHandler)
			activity.POST("/refresh", activityHandler.RefreshHandler)
		}
	}
}
