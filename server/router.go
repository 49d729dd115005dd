package server

import (
	"net/http"

	httpHandler "hacker-feed/interfaces/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(storyHandler httpHandler.IStoryHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	// The feed is a public read-only API; any origin may consume it.
	router.Use(cors.Default())

	router.GET("/stories", storyHandler.GetStories)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
