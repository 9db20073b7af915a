package http

import (
	"net"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/config"
	"github.com/vovakirdan/soc-receiver/internal/listener"
	"github.com/vovakirdan/soc-receiver/internal/observer"
)

const readHeaderTimeout = 5 * time.Second

// Status is the read-only view of the alert listener exposed over HTTP.
type Status interface {
	Addr() net.Addr
	State() listener.State
	Stats() listener.Stats
}

// NewRouter builds the admin routes.
func NewRouter(status Status, feed *observer.Broadcaster, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	handlers := NewStatusHandlers(status)
	router.GET("/health", handlers.Health)
	router.GET("/stats", handlers.Stats)
	router.GET("/ws/alerts", gin.WrapH(NewWSHandler(feed, status, logger)))

	return router
}

// NewServer builds the admin HTTP server listening on cfg.AdminAddr.
func NewServer(cfg config.Config, status Status, feed *observer.Broadcaster, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.AdminAddr,
		Handler:           NewRouter(status, feed, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
