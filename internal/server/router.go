package server

import (
	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	if s.cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), rateLimit(300, 50))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// websocket endpoint authenticates via token query parameter since
	// browsers cannot set headers on websocket upgrades
	router.GET("/ws", s.handleWebSocket)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.GET("/me", s.requireAuth(), s.handleMe)
		}

		admin := v1.Group("/admin", s.requireAuth(), s.requireAdmin())
		{
			admin.POST("/users/:id/approve", s.handleApprove)
			admin.POST("/users/:id/suspend", s.handleSuspend)
		}

		active := v1.Group("", s.requireAuth(), s.requireActive())
		{
			active.GET("/discover", s.handleDiscover)

			active.POST("/swipes", s.handleSwipe)
			active.POST("/blocks", s.handleBlock)

			active.GET("/likes", s.handleLikedYou)
			active.GET("/likes/new", s.handleNewLikedYou)
			active.GET("/likes/count", s.handleLikedYouCount)

			active.GET("/matches", s.handleMatches)
			active.GET("/matches/:id/messages", s.handleHistory)
			active.POST("/matches/:id/messages", s.handleSendMessage)
		}
	}

	return router
}
