// Package health exposes liveness and dependency status.
package health

import (
	"time"

	"github.com/gin-gonic/gin"
	redispkg "github.com/gwd-cms/core/internal/pkg/redis"
	"github.com/gwd-cms/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	cache   *redispkg.Client
	started time.Time
	version string
}

func NewHandler(db *gorm.DB, cache *redispkg.Client, version string) *Handler {
	return &Handler{db: db, cache: cache, started: time.Now(), version: version}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	rg.GET("/health", h.health)
	rg.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })
}

func (h *Handler) health(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
	}

	redisStatus := "ok"
	if h.cache == nil {
		redisStatus = "disabled"
	} else if err := h.cache.Ping(c.Request.Context()); err != nil {
		redisStatus = "down"
	}

	response.OK(c, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"deps": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
