package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

type Handler struct {
	Graph    *research.Graph
	Cfg      *config.Config
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(graph *research.Graph, cfg *config.Config) *Handler {
	return &Handler{
		Graph:  graph,
		Cfg:    cfg,
		Logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.Server.CorsOrigins),
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.root)

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.health)
	}

	r.GET(h.Cfg.Server.WSPath, h.research)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Backend is running!"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) research(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	newSession(conn, h.Graph, h.Logger).run()
}

// originChecker allows the configured CORS origins on the websocket
// handshake. A lone "*" entry or a missing Origin header (non-browser
// clients) is accepted.
func originChecker(origins []string) func(*http.Request) bool {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		return allowed[origin]
	}
}
