// Package audit records who did what to which entity. Writes are
// fire-and-forget: a failed insert is logged and swallowed so that an
// audit problem never fails the operation being audited.
package audit

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/middleware"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor identifies the user performing an audited action.
type Actor struct {
	ID   string
	Name string
}

// ActorFrom builds an Actor from the authenticated request context.
func ActorFrom(c *gin.Context) Actor {
	return Actor{ID: middleware.CurrentUserID(c), Name: middleware.CurrentUserName(c)}
}

type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	EntityName string
	Details    string
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// Log records one entry. An empty actor (unauthenticated or system
// internal call) is a no-op. The insert runs off the request path so
// the audited operation never waits on it.
func (s *Service) Log(actor Actor, e Entry) {
	if actor.ID == "" && actor.Name == "" {
		return
	}
	row := models.AuditLogModel{
		UserID:     actor.ID,
		UserName:   actor.Name,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
		Details:    e.Details,
		Timestamp:  time.Now(),
	}
	go func() {
		if err := s.db.Create(&row).Error; err != nil {
			s.log.Warn("audit write failed",
				zap.String("action", e.Action),
				zap.String("entity_type", e.EntityType),
				zap.Error(err),
			)
		}
	}()
}

type listFilter struct {
	UserID     string
	EntityType string
	Action     string
}

func (s *Service) List(q pagination.Query, f listFilter) ([]models.AuditLogModel, response.Pagination, error) {
	tx := s.db.Model(&models.AuditLogModel{}).Order("timestamp DESC")
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		tx = tx.Where("entity_type = ?", f.EntityType)
	}
	if f.Action != "" {
		tx = tx.Where("action = ?", f.Action)
	}
	var rows []models.AuditLogModel
	pag, err := pagination.Paginate(tx, q, &rows)
	return rows, pag, err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/audit", authMW)
	g.GET("", h.list)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	rows, pag, err := h.svc.List(q, listFilter{
		UserID:     c.Query("user_id"),
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, pag)
}
