// Package block manages reusable named content snippets that live
// outside the page archetype system (footers, banners, notices).
package block

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"gorm.io/gorm"
)

type CreateBlockDTO struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Content string `json:"content"`
}

type UpdateBlockDTO struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Status  *string `json:"status"`
	Content *string `json:"content"`
}

type blockResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func toResponse(b *models.BlockModel) blockResponse {
	return blockResponse{
		ID: b.ID, Name: b.Name, Type: b.Type, Status: b.Status,
		Content: b.Content, Created: b.CreatedAt, Modified: b.UpdatedAt,
	}
}

type Service struct {
	db    *gorm.DB
	audit *audit.Service
}

func NewService(db *gorm.DB, aud *audit.Service) *Service {
	return &Service{db: db, audit: aud}
}

func (s *Service) List(q pagination.Query, blockType string) ([]models.BlockModel, response.Pagination, error) {
	tx := s.db.Model(&models.BlockModel{}).Order("name ASC")
	if blockType != "" {
		tx = tx.Where("type = ?", blockType)
	}
	var rows []models.BlockModel
	pag, err := pagination.Paginate(tx, q, &rows)
	return rows, pag, err
}

func (s *Service) GetByID(id string) (*models.BlockModel, error) {
	var b models.BlockModel
	if err := s.db.First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) Create(actor audit.Actor, dto *CreateBlockDTO) (*models.BlockModel, error) {
	b := models.BlockModel{Name: dto.Name, Type: dto.Type, Content: dto.Content}
	if dto.Status != "" {
		b.Status = dto.Status
	}
	if err := s.db.Create(&b).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "block.create", EntityType: "block", EntityID: b.ID, EntityName: b.Name})
	return &b, nil
}

func (s *Service) Update(actor audit.Actor, id string, dto *UpdateBlockDTO) (*models.BlockModel, error) {
	b, err := s.GetByID(id)
	if err != nil || b == nil {
		return b, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Type != nil {
		updates["type"] = *dto.Type
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if dto.Content != nil {
		updates["content"] = *dto.Content
	}
	if len(updates) == 0 {
		return b, nil
	}
	if err := s.db.Model(b).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "block.update", EntityType: "block", EntityID: b.ID, EntityName: b.Name})
	return b, nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	b, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}
	if err := s.db.Delete(&models.BlockModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "block.delete", EntityType: "block", EntityID: id, EntityName: b.Name})
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/blocks", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	rows, pag, err := h.svc.List(q, c.Query("type"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]blockResponse, len(rows))
	for i := range rows {
		items[i] = toResponse(&rows[i])
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if b == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(b))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, err := h.svc.Create(audit.ActorFrom(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(b))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, err := h.svc.Update(audit.ActorFrom(c), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if b == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(b))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
