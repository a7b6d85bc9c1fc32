package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Saifkhan77806/LoveTown/internal/config"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/middleware"
	"github.com/Saifkhan77806/LoveTown/internal/realtime"
	"github.com/Saifkhan77806/LoveTown/internal/service/chat"
)

// HTTP serves the chat REST API and the websocket endpoint.
type HTTP struct {
	chat     *chat.Service
	hub      *realtime.Hub
	verifier *middleware.Verifier
	upgrader *websocket.Upgrader
	logger   *slog.Logger
	started  time.Time
}

func NewHTTP(cfg *config.Config, chatSvc *chat.Service, hub *realtime.Hub, verifier *middleware.Verifier, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{
		chat:     chatSvc,
		hub:      hub,
		verifier: verifier,
		upgrader: realtime.NewUpgrader(cfg.HTTP.AllowedOrigins),
		logger:   logger.With("component", "http"),
		started:  time.Now(),
	}
}

// Router wires every route.
func (h *HTTP) Router(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog())

	r.Use(cors.New(corsConfig(cfg.HTTP.AllowedOrigins)))

	r.GET("/health", h.health)

	auth := middleware.Auth(h.verifier)
	r.GET("/ws", auth, h.serveWS)

	api := r.Group("/api/messages", auth)
	api.GET("/conversation/:user1/:user2", h.conversation)
	api.GET("/count/:user1/:user2", h.count)
	api.DELETE("/:id", h.deleteMessage)
	api.POST("/read/:partner", h.markRead)
	api.GET("/user/:email/conversations", h.conversations)
	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		// credentials rule out a literal "*", so echo the caller's origin
		cc.AllowOriginFunc = func(string) bool { return true }
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

// NewHTTPServer wraps the router with the configured address and timeouts.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (h *HTTP) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
			"user", middleware.Identity(c),
		)
	}
}

func (h *HTTP) fail(c *gin.Context, err error) {
	code := svcErr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error":   string(svcErr.CodeOf(err)),
		"message": err.Error(),
	})
}

// participant rejects callers reading a room they are not part of.
func (h *HTTP) participant(c *gin.Context, users ...string) bool {
	me := middleware.Identity(c)
	for _, u := range users {
		if u == me {
			return true
		}
	}
	h.fail(c, svcErr.Unauthorized("not a participant of this conversation"))
	return false
}

func (h *HTTP) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"online": len(h.hub.Online()),
	})
}

func (h *HTTP) serveWS(c *gin.Context) {
	if err := h.hub.ServeWS(h.upgrader, c.Writer, c.Request, middleware.Identity(c)); err != nil {
		// the upgrader already wrote the HTTP error
		h.logger.Warn("websocket upgrade failed", "user", middleware.Identity(c), "err", err)
	}
}

func (h *HTTP) conversation(c *gin.Context) {
	u1, u2 := c.Param("user1"), c.Param("user2")
	if !h.participant(c, u1, u2) {
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.fail(c, svcErr.BadInput("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	page, err := h.chat.History(c.Request.Context(), u1, u2, limit, c.Query("cursor"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HTTP) count(c *gin.Context) {
	u1, u2 := c.Param("user1"), c.Param("user2")
	if !h.participant(c, u1, u2) {
		return
	}
	ctx := c.Request.Context()
	n, err := h.chat.Count(ctx, u1, u2)
	if err != nil {
		h.fail(c, err)
		return
	}
	unlocked, err := h.chat.VideoUnlocked(ctx, u1, u2)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":         n,
		"milestone":     h.chat.Milestone(),
		"videoUnlocked": unlocked,
	})
}

func (h *HTTP) deleteMessage(c *gin.Context) {
	msg, err := h.chat.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": msg.ID})
}

func (h *HTTP) markRead(c *gin.Context) {
	n, err := h.chat.MarkRead(c.Request.Context(), middleware.Identity(c), c.Param("partner"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *HTTP) conversations(c *gin.Context) {
	email := c.Param("email")
	if !h.participant(c, email) {
		return
	}
	convs, err := h.chat.Conversations(c.Request.Context(), email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}
