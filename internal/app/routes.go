package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/middleware"
	"github.com/gwd-cms/core/internal/modules/access/auth"
	"github.com/gwd-cms/core/internal/modules/access/role"
	"github.com/gwd-cms/core/internal/modules/access/user"
	"github.com/gwd-cms/core/internal/modules/content/block"
	"github.com/gwd-cms/core/internal/modules/content/page"
	"github.com/gwd-cms/core/internal/modules/content/preview"
	"github.com/gwd-cms/core/internal/modules/content/schema"
	"github.com/gwd-cms/core/internal/modules/processing/ai"
	"github.com/gwd-cms/core/internal/modules/stats/analytics"
	"github.com/gwd-cms/core/internal/modules/storage/backup"
	"github.com/gwd-cms/core/internal/modules/storage/media"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/modules/system/health"
	"github.com/gwd-cms/core/internal/modules/tasks"
	"github.com/gwd-cms/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	authMW := middleware.Auth(db)
	optionalAuth := middleware.OptionalAuth(db)

	// Shared services
	auditSvc := audit.NewService(db, a.logger)
	roleSvc := role.NewService(db, auditSvc)
	userSvc := user.NewService(db, auditSvc)
	pageSvc := page.NewService(db, auditSvc)
	mediaSvc := media.NewService(db, auditSvc, a.cfg.Paths.Static)

	a.bootstrap(roleSvc, userSvc)

	// guard chains authentication with a permission check.
	guard := func(perm string) gin.HandlerFunc {
		check := roleSvc.Require(perm)
		return func(c *gin.Context) {
			authMW(c)
			if c.IsAborted() {
				return
			}
			check(c)
		}
	}

	appInfo := gin.H{
		"name":    "gwd-cms-core",
		"version": Version,
	}

	api := r.Group(apiPrefix)
	api.Use(optionalAuth)
	api.Use(middleware.RateLimit(a.rc.Raw()))
	api.Use(middleware.HTTPCache(a.rc.Raw(), 15*time.Second, a.cfg.IsDev()))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })

	health.NewHandler(db, a.rc, Version).RegisterRoutes(api, authMW)

	// Access control
	auth.NewHandler(auth.NewService(db, auditSvc)).RegisterRoutes(api, authMW)
	user.NewHandler(userSvc, roleSvc.Require(role.PermUsers)).RegisterRoutes(api, authMW)
	role.NewHandler(roleSvc).RegisterRoutes(api, authMW)

	// Content
	schema.NewHandler(schema.NewService(db, auditSvc)).RegisterRoutes(api, guard(role.PermSchemas))
	page.NewHandler(pageSvc).RegisterRoutes(api, guard(role.PermPages))
	block.NewHandler(block.NewService(db, auditSvc)).RegisterRoutes(api, guard(role.PermBlocks))
	preview.NewHandler(preview.NewService(pageSvc)).RegisterRoutes(api, optionalAuth, middleware.IsAuthenticated)

	// Assets
	media.NewHandler(mediaSvc).RegisterRoutes(api, guard(role.PermMedia))
	r.Static("/media", mediaSvc.StaticDir())

	// Dashboard extras
	tasks.NewHandler(tasks.NewService(db, auditSvc)).RegisterRoutes(api, guard(role.PermTasks))
	ai.NewHandler(ai.NewService(a.cfg, auditSvc)).RegisterRoutes(api, guard(role.PermAI))
	analytics.NewHandler(analytics.NewService(a.cfg, a.rc, a.logger)).RegisterRoutes(api, guard(role.PermAnalytics))
	backup.NewHandler(backup.NewService(db, a.cfg, auditSvc, a.logger)).RegisterRoutes(api, guard(role.PermBackup))
	audit.NewHandler(auditSvc).RegisterRoutes(api, guard(role.PermAudit))
}
