// Package schema manages content schemas: named field trees that
// describe structured documents. Repeater fields nest child fields
// recursively up to a fixed depth.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"github.com/gwd-cms/core/internal/pkg/slug"
	"gorm.io/gorm"
)

// MaxDepth bounds repeater nesting. The root fields sit at depth 1.
const MaxDepth = 5

var (
	ErrSlugTaken     = errors.New("slug already exists")
	ErrSlugImmutable = errors.New("slug cannot be changed after creation")
)

type CreateSchemaDTO struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Fields      []models.SchemaField `json:"fields"`
}

type UpdateSchemaDTO struct {
	Name        *string              `json:"name"`
	Slug        *string              `json:"slug"`
	Description *string              `json:"description"`
	Fields      []models.SchemaField `json:"fields"`
}

// checkSlugUpdate rejects a slug change. Echoing the current slug back
// (clients often PUT the whole object) is allowed.
func checkSlugUpdate(current string, requested *string) error {
	if requested != nil && *requested != current {
		return ErrSlugImmutable
	}
	return nil
}

type schemaResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug"`
	Description string               `json:"description"`
	Fields      []models.SchemaField `json:"fields"`
	Created     time.Time            `json:"created"`
	Modified    time.Time            `json:"modified"`
}

func toResponse(m *models.ContentSchemaModel) schemaResponse {
	fields := m.Fields
	if fields == nil {
		fields = []models.SchemaField{}
	}
	return schemaResponse{
		ID: m.ID, Name: m.Name, Slug: m.Slug, Description: m.Description,
		Fields: fields, Created: m.CreatedAt, Modified: m.UpdatedAt,
	}
}

var fieldNameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateFields checks a field tree and returns per-field errors with
// nested paths ("fields[0].fields[2].name").
func ValidateFields(fields []models.SchemaField) []response.FieldError {
	return validateLevel("fields", fields, 1)
}

func validateLevel(base string, fields []models.SchemaField, depth int) []response.FieldError {
	var errs []response.FieldError
	if depth > MaxDepth {
		errs = append(errs, response.FieldError{
			Path:    base,
			Message: fmt.Sprintf("fields nest deeper than the limit of %d levels", MaxDepth),
		})
		return errs
	}
	seen := map[string]int{}
	for i, f := range fields {
		path := fmt.Sprintf("%s[%d]", base, i)
		name := strings.TrimSpace(f.Name)
		if name == "" {
			errs = append(errs, response.FieldError{Path: path + ".name", Message: "field name is required"})
		} else if !fieldNameRe.MatchString(name) {
			errs = append(errs, response.FieldError{Path: path + ".name", Message: "field name may contain only letters, digits and underscores"})
		} else if prev, dup := seen[name]; dup {
			errs = append(errs, response.FieldError{
				Path:    path + ".name",
				Message: fmt.Sprintf("duplicates the name of sibling field %d", prev),
			})
		} else {
			seen[name] = i
		}
		if !models.KnownFieldType(f.Type) {
			errs = append(errs, response.FieldError{Path: path + ".type", Message: fmt.Sprintf("unknown field type %q", f.Type)})
			continue
		}
		if f.Type == models.FieldRepeater {
			if len(f.Fields) == 0 {
				errs = append(errs, response.FieldError{Path: path + ".fields", Message: "a repeater must declare at least one child field"})
			} else {
				errs = append(errs, validateLevel(path+".fields", f.Fields, depth+1)...)
			}
		} else if len(f.Fields) > 0 {
			errs = append(errs, response.FieldError{Path: path + ".fields", Message: "only repeater fields may declare child fields"})
		}
	}
	return errs
}

// NormalizeFields assigns IDs to fields missing one, recursively, and
// clears child lists on non-repeater fields.
func NormalizeFields(fields []models.SchemaField) []models.SchemaField {
	for i := range fields {
		if fields[i].ID == "" {
			fields[i].ID = uuid.NewString()
		}
		if fields[i].Type == models.FieldRepeater {
			fields[i].Fields = NormalizeFields(fields[i].Fields)
		} else {
			fields[i].Fields = nil
		}
	}
	return fields
}

type Service struct {
	db    *gorm.DB
	audit *audit.Service
}

func NewService(db *gorm.DB, aud *audit.Service) *Service {
	return &Service{db: db, audit: aud}
}

func (s *Service) List(q pagination.Query) ([]models.ContentSchemaModel, response.Pagination, error) {
	tx := s.db.Model(&models.ContentSchemaModel{}).Order("created_at ASC")
	var rows []models.ContentSchemaModel
	pag, err := pagination.Paginate(tx, q, &rows)
	return rows, pag, err
}

func (s *Service) GetByID(id string) (*models.ContentSchemaModel, error) {
	var m models.ContentSchemaModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) GetBySlug(sl string) (*models.ContentSchemaModel, error) {
	var m models.ContentSchemaModel
	if err := s.db.Where("slug = ?", sl).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Create(actor audit.Actor, dto *CreateSchemaDTO) (*models.ContentSchemaModel, error) {
	sl := slug.Generate(dto.Name)
	if sl == "" {
		return nil, fmt.Errorf("name yields an empty slug")
	}
	var count int64
	s.db.Model(&models.ContentSchemaModel{}).Where("slug = ?", sl).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}
	fields := dto.Fields
	if fields == nil {
		fields = []models.SchemaField{}
	}
	m := models.ContentSchemaModel{
		Name:        dto.Name,
		Slug:        sl,
		Description: dto.Description,
		Fields:      NormalizeFields(fields),
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "schema.create", EntityType: "schema", EntityID: m.ID, EntityName: m.Name})
	return &m, nil
}

func (s *Service) Update(actor audit.Actor, id string, dto *UpdateSchemaDTO) (*models.ContentSchemaModel, error) {
	m, err := s.GetByID(id)
	if err != nil || m == nil {
		return m, err
	}
	// Slug is fixed at creation; renaming changes only the display name.
	if err := checkSlugUpdate(m.Slug, dto.Slug); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil && *dto.Name != m.Name {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Fields != nil {
		updates["fields"] = NormalizeFields(dto.Fields)
	}
	if len(updates) == 0 {
		return m, nil
	}
	if err := s.db.Model(m).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "schema.update", EntityType: "schema", EntityID: m.ID, EntityName: m.Name})
	return m, nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	m, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	if err := s.db.Delete(&models.ContentSchemaModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "schema.delete", EntityType: "schema", EntityID: id, EntityName: m.Name})
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/schemas", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	rows, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]schemaResponse, len(rows))
	for i := range rows {
		items[i] = toResponse(&rows[i])
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	m, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSchemaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if errs := ValidateFields(dto.Fields); len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}
	m, err := h.svc.Create(audit.ActorFrom(c), &dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(m))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSchemaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Fields != nil {
		if errs := ValidateFields(dto.Fields); len(errs) > 0 {
			response.ValidationFailed(c, errs)
			return
		}
	}
	m, err := h.svc.Update(audit.ActorFrom(c), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrSlugImmutable) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
