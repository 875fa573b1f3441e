// Package tasks implements the dashboard to-do list. Completion is
// per-user: the same task can be done for one editor and open for
// another.
package tasks

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/middleware"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"gorm.io/gorm"
)

type CreateTaskDTO struct {
	Text       string   `json:"text" binding:"required"`
	AssignedTo []string `json:"assigned_to"`
}

type UpdateTaskDTO struct {
	Text       *string  `json:"text"`
	AssignedTo []string `json:"assigned_to"`
}

type taskResponse struct {
	ID          string               `json:"id"`
	Text        string               `json:"text"`
	CompletedBy map[string]time.Time `json:"completed_by"`
	AssignedTo  []string             `json:"assigned_to"`
	Completed   bool                 `json:"completed"`
	Created     time.Time            `json:"created"`
}

func toResponse(t *models.TaskModel, viewerID string) taskResponse {
	completedBy := t.CompletedBy
	if completedBy == nil {
		completedBy = map[string]time.Time{}
	}
	assigned := t.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	_, done := completedBy[viewerID]
	return taskResponse{
		ID: t.ID, Text: t.Text, CompletedBy: completedBy,
		AssignedTo: assigned, Completed: done, Created: t.CreatedAt,
	}
}

type Service struct {
	db    *gorm.DB
	audit *audit.Service
}

func NewService(db *gorm.DB, aud *audit.Service) *Service {
	return &Service{db: db, audit: aud}
}

func (s *Service) List(q pagination.Query) ([]models.TaskModel, response.Pagination, error) {
	tx := s.db.Model(&models.TaskModel{}).Order("created_at DESC")
	var rows []models.TaskModel
	pag, err := pagination.Paginate(tx, q, &rows)
	return rows, pag, err
}

func (s *Service) GetByID(id string) (*models.TaskModel, error) {
	var t models.TaskModel
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *Service) Create(actor audit.Actor, dto *CreateTaskDTO) (*models.TaskModel, error) {
	assigned := dto.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	t := models.TaskModel{
		Text:        dto.Text,
		CompletedBy: map[string]time.Time{},
		AssignedTo:  assigned,
	}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "task.create", EntityType: "task", EntityID: t.ID, EntityName: t.Text})
	return &t, nil
}

func (s *Service) Update(actor audit.Actor, id string, dto *UpdateTaskDTO) (*models.TaskModel, error) {
	t, err := s.GetByID(id)
	if err != nil || t == nil {
		return t, err
	}
	updates := map[string]interface{}{}
	if dto.Text != nil {
		updates["text"] = *dto.Text
	}
	if dto.AssignedTo != nil {
		updates["assigned_to"] = dto.AssignedTo
	}
	if len(updates) == 0 {
		return t, nil
	}
	if err := s.db.Model(t).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "task.update", EntityType: "task", EntityID: t.ID, EntityName: t.Text})
	return t, nil
}

// SetCompleted marks or clears the viewer's completion on the task.
// Marking an already-completed task keeps the original timestamp.
func (s *Service) SetCompleted(actor audit.Actor, id, userID string, done bool) (*models.TaskModel, error) {
	t, err := s.GetByID(id)
	if err != nil || t == nil {
		return t, err
	}
	if t.CompletedBy == nil {
		t.CompletedBy = map[string]time.Time{}
	}
	_, marked := t.CompletedBy[userID]
	if marked == done {
		return t, nil
	}
	action := "task.complete"
	if done {
		t.CompletedBy[userID] = time.Now()
	} else {
		delete(t.CompletedBy, userID)
		action = "task.uncomplete"
	}
	if err := s.db.Model(t).Update("completed_by", t.CompletedBy).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: action, EntityType: "task", EntityID: t.ID, EntityName: t.Text})
	return t, nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	if err := s.db.Delete(&models.TaskModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "task.delete", EntityType: "task", EntityID: id, EntityName: t.Text})
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/tasks", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.POST("/:id/complete", h.complete)
	g.POST("/:id/uncomplete", h.uncomplete)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	rows, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	viewer := middleware.CurrentUserID(c)
	items := make([]taskResponse, len(rows))
	for i := range rows {
		items[i] = toResponse(&rows[i], viewer)
	}
	response.Paged(c, items, pag)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateTaskDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Create(audit.ActorFrom(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(t, middleware.CurrentUserID(c)))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTaskDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Update(audit.ActorFrom(c), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if t == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(t, middleware.CurrentUserID(c)))
}

func (h *Handler) complete(c *gin.Context)   { h.setCompleted(c, true) }
func (h *Handler) uncomplete(c *gin.Context) { h.setCompleted(c, false) }

func (h *Handler) setCompleted(c *gin.Context, done bool) {
	viewer := middleware.CurrentUserID(c)
	t, err := h.svc.SetCompleted(audit.ActorFrom(c), c.Param("id"), viewer, done)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if t == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(t, viewer))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
