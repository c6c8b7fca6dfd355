package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
)

// NewServer builds the HTTP server: health probe, admin API and the
// WebSocket line transport.
func NewServer(hub *core.Hub, users UserCounter, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	channels := NewChannelHandlers(hub, users, logger)
	api := router.Group("/api")
	{
		api.GET("/channels", channels.List)
		api.GET("/channels/:name", channels.Get)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.MaxLineBytes, logger)))

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
