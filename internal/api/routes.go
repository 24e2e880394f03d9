package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pinball/internal/api/handlers"
	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/journal"
	"github.com/playmatatu/pinball/internal/middleware"
	tablestore "github.com/playmatatu/pinball/internal/redis"
	"github.com/playmatatu/pinball/internal/ws"
)

// SetupRoutes configures all API routes. store and j may be nil when Redis
// or Postgres are not configured.
func SetupRoutes(router *gin.Engine, m *game.TableManager, store *tablestore.TableStore, j *journal.Store, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	var checkpoints handlers.CheckpointLoader
	if store != nil {
		checkpoints = store
	}
	var replays handlers.ReplaySource
	if j != nil {
		replays = j
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))
		v1.GET("/layout", handlers.GetLayout(m))

		tables := v1.Group("/tables")
		{
			tables.POST("", handlers.CreateTable(m, cfg))
			tables.GET("/:id", handlers.GetTable(m, checkpoints))
			tables.DELETE("/:id", handlers.CloseTable(m, cfg))
			tables.GET("/:id/replay", handlers.ReplayTable(m, replays))
			tables.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(m, cfg.JWTSecret))
		}
	}
}
