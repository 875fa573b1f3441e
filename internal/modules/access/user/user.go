// Package user manages dashboard operator accounts.
package user

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/middleware"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already registered")

const minPasswordLen = 8

type CreateUserDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

type UpdateUserDTO struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Avatar *string `json:"avatar"`
}

type ChangePasswordDTO struct {
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
	Created       time.Time  `json:"created"`
}

func toResponse(u *models.UserModel) userResponse {
	return userResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar,
		LastLoginTime: u.LastLoginTime, LastLoginIP: u.LastLoginIP, Created: u.CreatedAt,
	}
}

type Service struct {
	db    *gorm.DB
	audit *audit.Service
}

func NewService(db *gorm.DB, aud *audit.Service) *Service {
	return &Service{db: db, audit: aud}
}

func hashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLen {
		return "", errors.New("password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

func (s *Service) List(q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	tx := s.db.Model(&models.UserModel{}).Order("created_at ASC")
	var users []models.UserModel
	pag, err := pagination.Paginate(tx, q, &users)
	return users, pag, err
}

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Count() (int64, error) {
	var count int64
	err := s.db.Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

func (s *Service) Create(actor audit.Actor, dto *CreateUserDTO) (*models.UserModel, error) {
	var count int64
	s.db.Model(&models.UserModel{}).Where("email = ?", dto.Email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := hashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	role := dto.Role
	if role == "" {
		role = "editor"
	}
	u := models.UserModel{
		Name: dto.Name, Email: dto.Email, Password: hash,
		Role: role, Avatar: dto.Avatar,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "user.create", EntityType: "user", EntityID: u.ID, EntityName: u.Name})
	return &u, nil
}

// CreateInitialAdmin bootstraps the first account when the users table
// is empty. Used at startup, not exposed over HTTP.
func (s *Service) CreateInitialAdmin(name, email, password string) (*models.UserModel, error) {
	count, err := s.Count()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("users already exist")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := models.UserModel{Name: name, Email: email, Password: hash, Role: "admin"}
	return &u, s.db.Create(&u).Error
}

func (s *Service) Update(actor audit.Actor, id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(id)
	if err != nil || u == nil {
		return u, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Email != nil && *dto.Email != u.Email {
		var count int64
		s.db.Model(&models.UserModel{}).Where("email = ? AND id <> ?", *dto.Email, id).Count(&count)
		if count > 0 {
			return nil, ErrEmailTaken
		}
		updates["email"] = *dto.Email
	}
	if dto.Role != nil {
		updates["role"] = *dto.Role
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.db.Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "user.update", EntityType: "user", EntityID: u.ID, EntityName: u.Name})
	return u, nil
}

func (s *Service) ChangePassword(actor audit.Actor, id, newPassword string) error {
	u, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if u == nil {
		return gorm.ErrRecordNotFound
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.Model(u).Update("password", hash).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "user.change_password", EntityType: "user", EntityID: u.ID, EntityName: u.Name})
	return nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	u, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	if err := s.db.Delete(&models.UserModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "user.delete", EntityType: "user", EntityID: id, EntityName: u.Name})
	return nil
}

type Handler struct {
	svc    *Service
	manage gin.HandlerFunc
}

// NewHandler builds the HTTP surface. manage guards routes that touch
// other users' accounts; self-service routes run under plain auth.
func NewHandler(svc *Service, manage gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, manage: manage}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users", authMW)
	g.PUT("/:id/password", h.changePassword)

	m := g.Group("", h.manage)
	m.GET("", h.list)
	m.GET("/:id", h.get)
	m.POST("", h.create)
	m.PUT("/:id", h.update)
	m.PATCH("/:id", h.update)
	m.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	users, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]userResponse, len(users))
	for i := range users {
		items[i] = toResponse(&users[i])
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Create(audit.ActorFrom(c), &dto)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		if err.Error() == "password too short" {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(u))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Update(audit.ActorFrom(c), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

// changePassword lets a user change their own password; changing
// someone else's requires the user management permission.
func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	if id == "me" {
		id = middleware.CurrentUserID(c)
	}
	if id != middleware.CurrentUserID(c) && h.manage != nil {
		h.manage(c)
		if c.IsAborted() {
			return
		}
	}
	if err := h.svc.ChangePassword(audit.ActorFrom(c), id, dto.Password); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		if err.Error() == "password too short" {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) delete(c *gin.Context) {
	if c.Param("id") == middleware.CurrentUserID(c) {
		response.BadRequest(c, "cannot delete your own account")
		return
	}
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
