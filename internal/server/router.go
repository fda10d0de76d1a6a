package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/hub"
	"auction-engine/internal/identity"
	"auction-engine/internal/repository"
	handler "auction-engine/services/auction/handler"
	"auction-engine/utils"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc *auction.AuctionService, h *hub.Hub, gateway identity.Resolver, store repository.AuctionStore) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(svc)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.GET("/user", AuthRequired(gateway, store), auctionHandler.GetCurrentUserHandler)

		lots := api.Group("/lots", OptionalAuth(gateway, store))
		{
			lots.GET("", auctionHandler.ListLotsHandler)
			lots.GET("/:lot_id", auctionHandler.GetLotHandler)
			lots.GET("/:lot_id/bids", auctionHandler.GetLotBidsHandler)
		}

		admin := api.Group("/admin", AuthRequired(gateway, store), RequireAdmin)
		{
			admin.POST("/lots", auctionHandler.CreateLotHandler)
			admin.PUT("/lots/:lot_id", auctionHandler.UpdateLotHandler)
			admin.POST("/lots/:lot_id/start", auctionHandler.StartLotHandler)
			admin.POST("/lots/:lot_id/end", auctionHandler.EndLotHandler)
			admin.DELETE("/lots/:lot_id", auctionHandler.DeleteLotHandler)
		}
	}

	router.GET("/ws", serveWS(h, gateway, store))

	return router
}

// serveWS authenticates the connect token and hands the connection to
// the broadcast hub.
func serveWS(h *hub.Hub, gateway identity.Resolver, store repository.AuctionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		user, err := resolveAndSync(c, gateway, store, token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if err := h.Serve(c.Writer, c.Request, user, token); err != nil {
			utils.Warn("websocket upgrade failed", map[string]any{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}
}
