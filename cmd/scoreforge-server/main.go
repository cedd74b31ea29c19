// Command scoreforge-server is a thin gin HTTP wrapper around the
// processSheet/renderAudio engine, following a godotenv+flag-driven
// service bootstrap (Conceptual-Machines-magda-api main.go) since this
// repo's external interface is a service boundary, not a window.
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"scoreforge/internal/diag"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadConfig()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := diag.NewLogger(8192)
	defer logger.Shutdown()

	router := setupRouter(cfg, logger)

	log.Printf("scoreforge-server listening on :%s (environment=%s)", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func setupRouter(cfg *config, logger *diag.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	srv := newServer(cfg, logger)

	router.GET("/health", srv.healthCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/sheets", srv.postSheet)
		v1.POST("/render", srv.postRender)
	}

	return router
}
