// Package role implements flat, named permission sets and the
// middleware that enforces them. A user references a role by name; the
// role carries the list of capability strings it grants.
package role

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/middleware"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Known capability identifiers. "*" grants everything.
const (
	PermAll       = "*"
	PermPages     = "pages.manage"
	PermSchemas   = "schemas.manage"
	PermBlocks    = "blocks.manage"
	PermMedia     = "media.manage"
	PermUsers     = "users.manage"
	PermRoles     = "roles.manage"
	PermAudit     = "audit.view"
	PermAnalytics = "analytics.view"
	PermBackup    = "backup.manage"
	PermTasks     = "tasks.manage"
	PermAI        = "ai.use"
)

type CreateRoleDTO struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleDTO struct {
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
}

type roleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// dedupPermissions drops repeated capability strings, keeping the
// first occurrence's position.
func dedupPermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	seen := map[string]bool{}
	for _, p := range perms {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func toResponse(r *models.RoleModel) roleResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return roleResponse{
		ID: r.ID, Name: r.Name, Description: r.Description,
		Permissions: perms, Created: r.CreatedAt, Modified: r.UpdatedAt,
	}
}

type Service struct {
	db    *gorm.DB
	audit *audit.Service
}

func NewService(db *gorm.DB, aud *audit.Service) *Service {
	return &Service{db: db, audit: aud}
}

// SeedDefaults creates the built-in roles when they are missing. It
// never overwrites operator edits to existing roles.
func (s *Service) SeedDefaults() error {
	defaults := []models.RoleModel{
		{Name: "admin", Description: "Full access", Permissions: []string{PermAll}},
		{Name: "editor", Description: "Content management", Permissions: []string{
			PermPages, PermSchemas, PermBlocks, PermMedia, PermTasks, PermAI,
		}},
		{Name: "viewer", Description: "Read-only dashboard access", Permissions: []string{
			PermAnalytics,
		}},
	}
	for _, r := range defaults {
		var count int64
		if err := s.db.Model(&models.RoleModel{}).Where("name = ?", r.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.db.Create(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) List() ([]models.RoleModel, error) {
	var roles []models.RoleModel
	return roles, s.db.Order("name ASC").Find(&roles).Error
}

func (s *Service) GetByID(id string) (*models.RoleModel, error) {
	var r models.RoleModel
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Service) GetByName(name string) (*models.RoleModel, error) {
	var r models.RoleModel
	if err := s.db.Where("name = ?", name).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Service) Create(actor audit.Actor, dto *CreateRoleDTO) (*models.RoleModel, error) {
	var count int64
	s.db.Model(&models.RoleModel{}).Where("name = ?", dto.Name).Count(&count)
	if count > 0 {
		return nil, errors.New("role name already exists")
	}
	perms := dedupPermissions(dto.Permissions)
	r := models.RoleModel{Name: dto.Name, Description: dto.Description, Permissions: perms}
	if err := s.db.Create(&r).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "role.create", EntityType: "role", EntityID: r.ID, EntityName: r.Name})
	return &r, nil
}

func (s *Service) Update(actor audit.Actor, id string, dto *UpdateRoleDTO) (*models.RoleModel, error) {
	r, err := s.GetByID(id)
	if err != nil || r == nil {
		return r, err
	}
	updates := map[string]interface{}{}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Permissions != nil {
		updates["permissions"] = dedupPermissions(dto.Permissions)
	}
	if len(updates) == 0 {
		return r, nil
	}
	if err := s.db.Model(r).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "role.update", EntityType: "role", EntityID: r.ID, EntityName: r.Name})
	return r, nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	r, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	var inUse int64
	s.db.Model(&models.UserModel{}).Where("role = ?", r.Name).Count(&inUse)
	if inUse > 0 {
		return errors.New("role is assigned to users")
	}
	if err := s.db.Delete(&models.RoleModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "role.delete", EntityType: "role", EntityID: id, EntityName: r.Name})
	return nil
}

// HasPermission resolves the user's role and checks it grants perm.
func (s *Service) HasPermission(userID, perm string) (bool, error) {
	var roleName string
	if err := s.db.Model(&models.UserModel{}).Select("role").Where("id = ?", userID).Scan(&roleName).Error; err != nil {
		return false, err
	}
	if roleName == "" {
		return false, nil
	}
	r, err := s.GetByName(roleName)
	if err != nil || r == nil {
		return false, err
	}
	for _, p := range r.Permissions {
		if p == PermAll || p == perm {
			return true, nil
		}
	}
	return false, nil
}

// Require returns a middleware enforcing perm on top of the auth
// middleware. Lookup errors deny access.
func (s *Service) Require(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)
		if userID == "" {
			response.Unauthorized(c)
			return
		}
		ok, err := s.HasPermission(userID, perm)
		if err != nil || !ok {
			response.Forbidden(c)
		}
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/roles", authMW, h.svc.Require(PermRoles))
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	roles, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]roleResponse, len(roles))
	for i := range roles {
		items[i] = toResponse(&roles[i])
	}
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	r, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if r == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(r))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	r, err := h.svc.Create(audit.ActorFrom(c), &dto)
	if err != nil {
		if err.Error() == "role name already exists" {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(r))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	r, err := h.svc.Update(audit.ActorFrom(c), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if r == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(r))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		if err.Error() == "role is assigned to users" {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
