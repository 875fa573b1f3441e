// Package page manages site pages. Every page belongs to one archetype
// (pagetype.PageType) and carries a content document whose shape is
// owned by that archetype.
package page

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/content/pagetype"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"github.com/gwd-cms/core/internal/pkg/slug"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken   = errors.New("slug already exists")
	ErrBadSlug     = errors.New("slug must contain only lowercase letters, digits and hyphens")
	ErrBadPageType = errors.New("unknown page type")
	ErrBadStatus   = errors.New("unknown page status")
)

// ValidationError carries per-field content errors out of the service
// layer so handlers can return a 422 instead of a 500.
type ValidationError struct {
	Fields []response.FieldError
}

func (e *ValidationError) Error() string { return "content validation failed" }

type CreatePageDTO struct {
	Title    string                 `json:"title" binding:"required"`
	Slug     string                 `json:"slug"`
	PageType pagetype.PageType      `json:"pageType" binding:"required"`
	Status   models.PageStatus      `json:"status"`
	Author   string                 `json:"author"`
	Content  map[string]interface{} `json:"content"`
}

type UpdatePageDTO struct {
	Title    *string                `json:"title"`
	Slug     *string                `json:"slug"`
	PageType *pagetype.PageType     `json:"pageType"`
	Status   *models.PageStatus     `json:"status"`
	Author   *string                `json:"author"`
	Content  map[string]interface{} `json:"content"`
}

type pageResponse struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Slug     string                 `json:"slug"`
	PageType pagetype.PageType      `json:"pageType"`
	Status   models.PageStatus      `json:"status"`
	Author   string                 `json:"author"`
	Content  map[string]interface{} `json:"content"`
	Created  time.Time              `json:"created"`
	Modified time.Time              `json:"modified"`
}

func toResponse(p *models.PageModel) pageResponse {
	content := p.Content
	if content == nil {
		content = map[string]interface{}{}
	}
	return pageResponse{
		ID: p.ID, Title: p.Title, Slug: p.Slug,
		PageType: pagetype.PageType(p.PageType), Status: p.Status,
		Author: p.Author, Content: content,
		Created: p.CreatedAt, Modified: p.UpdatedAt,
	}
}

type ListFilter struct {
	Status   string
	PageType string
	Search   string
}

type Service struct {
	db    *gorm.DB
	audit *audit.Service
}

func NewService(db *gorm.DB, aud *audit.Service) *Service {
	return &Service{db: db, audit: aud}
}

func (s *Service) List(q pagination.Query, f ListFilter) ([]models.PageModel, response.Pagination, error) {
	tx := s.db.Model(&models.PageModel{}).Order("created_at DESC")
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.PageType != "" {
		tx = tx.Where("page_type = ?", f.PageType)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		tx = tx.Where("title LIKE ? OR slug LIKE ?", like, like)
	}
	var pages []models.PageModel
	pag, err := pagination.Paginate(tx, q, &pages)
	return pages, pag, err
}

func (s *Service) GetByID(id string) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetBySlug(sl string) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.db.Where("slug = ?", sl).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// slugAvailable reports whether sl is free, ignoring excludeID.
func (s *Service) slugAvailable(sl, excludeID string) bool {
	tx := s.db.Model(&models.PageModel{}).Where("slug = ?", sl)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	tx.Count(&count)
	return count == 0
}

// SuggestSlug returns sl if free, otherwise the first "-2", "-3", ...
// suffix that is.
func (s *Service) SuggestSlug(sl, excludeID string) string {
	if s.slugAvailable(sl, excludeID) {
		return sl
	}
	for i := 2; i < 100; i++ {
		candidate := fmt.Sprintf("%s-%d", sl, i)
		if s.slugAvailable(candidate, excludeID) {
			return candidate
		}
	}
	return ""
}

func (s *Service) Create(actor audit.Actor, dto *CreatePageDTO) (*models.PageModel, error) {
	if !pagetype.Valid(dto.PageType) {
		return nil, ErrBadPageType
	}
	status := dto.Status
	if status == "" {
		status = models.PageDraft
	}
	if !models.KnownPageStatus(status) {
		return nil, ErrBadStatus
	}

	sl := dto.Slug
	if sl == "" {
		sl = slug.Generate(dto.Title)
	}
	if sl == "" || !slug.Valid(sl) {
		return nil, ErrBadSlug
	}
	if !s.slugAvailable(sl, "") {
		return nil, ErrSlugTaken
	}

	spec, _ := pagetype.For(dto.PageType)
	content := dto.Content
	if content == nil {
		content = spec.New()
	} else if errs := spec.Validate(content); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	author := dto.Author
	if author == "" {
		author = actor.Name
	}

	p := models.PageModel{
		Title:    dto.Title,
		Slug:     sl,
		Status:   status,
		Author:   author,
		PageType: string(dto.PageType),
		Content:  content,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "page.create", EntityType: "page", EntityID: p.ID, EntityName: p.Title})
	return &p, nil
}

func (s *Service) Update(actor audit.Actor, id string, dto *UpdatePageDTO) (*models.PageModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}

	updates := map[string]interface{}{}

	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Slug != nil && *dto.Slug != p.Slug {
		if !slug.Valid(*dto.Slug) {
			return nil, ErrBadSlug
		}
		if !s.slugAvailable(*dto.Slug, id) {
			return nil, ErrSlugTaken
		}
		updates["slug"] = *dto.Slug
	}
	if dto.Status != nil {
		if !models.KnownPageStatus(*dto.Status) {
			return nil, ErrBadStatus
		}
		updates["status"] = *dto.Status
	}
	if dto.Author != nil {
		updates["author"] = *dto.Author
	}

	effectiveType, newContent, err := resolveContentUpdate(pagetype.PageType(p.PageType), dto.PageType, dto.Content)
	if err != nil {
		return nil, err
	}
	if string(effectiveType) != p.PageType {
		updates["page_type"] = string(effectiveType)
	}
	if newContent != nil {
		updates["content"] = newContent
	}

	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}

	action := "page.update"
	if dto.Status != nil && *dto.Status == models.PagePublished {
		action = "page.publish"
	}
	s.audit.Log(actor, audit.Entry{Action: action, EntityType: "page", EntityID: p.ID, EntityName: p.Title})
	return p, nil
}

// resolveContentUpdate decides the effective page type and stored
// content for an update. A type change resets content to the new
// archetype's defaults; the old document is discarded, so flipping
// back later starts from the original type's defaults, not the old
// content. An explicit content payload in the same request wins over
// the reset and is validated against the effective type. A nil content
// return means the stored document is kept.
func resolveContentUpdate(current pagetype.PageType, requested *pagetype.PageType, explicit map[string]interface{}) (pagetype.PageType, map[string]interface{}, error) {
	effective := current
	var content map[string]interface{}
	if requested != nil && *requested != current {
		if !pagetype.Valid(*requested) {
			return "", nil, ErrBadPageType
		}
		effective = *requested
		content = pagetype.Defaults(effective)
	}
	if explicit != nil {
		spec, ok := pagetype.For(effective)
		if !ok {
			return "", nil, ErrBadPageType
		}
		if errs := spec.Validate(explicit); len(errs) > 0 {
			return "", nil, &ValidationError{Fields: errs}
		}
		content = explicit
	}
	return effective, content, nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	p, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	if err := s.db.Delete(&models.PageModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "page.delete", EntityType: "page", EntityID: id, EntityName: p.Title})
	return nil
}

// ApplyContentOps runs a batch of list mutations against the page's
// content document. Either every op applies or the stored page is left
// untouched. Freshly added items may fail field validation until the
// editor fills them in; only structure and cardinality are enforced
// here.
func (s *Service) ApplyContentOps(actor audit.Actor, id string, ops []pagetype.Op) (*models.PageModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	spec, ok := pagetype.For(pagetype.PageType(p.PageType))
	if !ok {
		return nil, ErrBadPageType
	}

	content := p.Content
	if content == nil {
		content = spec.New()
	}
	for i, op := range ops {
		if err := spec.Apply(content, op); err != nil {
			return nil, &ValidationError{Fields: []response.FieldError{{
				Path:    op.Path,
				Message: fmt.Sprintf("operation %d: %v", i, err),
			}}}
		}
	}

	if err := s.db.Model(p).Update("content", content).Error; err != nil {
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{
		Action: "page.content_ops", EntityType: "page", EntityID: p.ID, EntityName: p.Title,
		Details: fmt.Sprintf("%d operation(s)", len(ops)),
	})
	p.Content = content
	return p, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/pages", authMW)
	g.GET("", h.list)
	g.GET("/archetypes", h.archetypes)
	g.GET("/check-slug", h.checkSlug)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/content/ops", h.contentOps)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	pages, pag, err := h.svc.List(q, ListFilter{
		Status:   c.Query("status"),
		PageType: c.Query("page_type"),
		Search:   c.Query("search"),
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]pageResponse, len(pages))
	for i := range pages {
		items[i] = toResponse(&pages[i])
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p))
}

type archetypeInfo struct {
	Type     pagetype.PageType      `json:"type"`
	Defaults map[string]interface{} `json:"defaults"`
	Lists    []archetypeList        `json:"lists"`
}

type archetypeList struct {
	Path string `json:"path"`
	Min  int    `json:"min"`
	Max  int    `json:"max,omitempty"`
}

// GET /pages/archetypes — the closed list of page types, with their
// default content and repeating sections, for admin UI consumption.
func (h *Handler) archetypes(c *gin.Context) {
	out := make([]archetypeInfo, 0, len(pagetype.All()))
	for _, pt := range pagetype.All() {
		spec, _ := pagetype.For(pt)
		lists := make([]archetypeList, len(spec.Lists))
		for i, l := range spec.Lists {
			lists[i] = archetypeList{Path: l.Path, Min: l.Min, Max: l.Max}
		}
		out = append(out, archetypeInfo{Type: pt, Defaults: spec.New(), Lists: lists})
	}
	response.OK(c, out)
}

// GET /pages/check-slug?slug=&exclude_id= — advisory availability
// check. Create and update still enforce uniqueness themselves.
func (h *Handler) checkSlug(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("slug"))
	if raw == "" {
		response.BadRequest(c, "slug query parameter is required")
		return
	}
	sl := slug.Generate(raw)
	if sl == "" {
		response.BadRequest(c, "slug has no usable characters")
		return
	}
	excludeID := c.Query("exclude_id")
	available := h.svc.slugAvailable(sl, excludeID)
	body := gin.H{"slug": sl, "available": available}
	if !available {
		if suggestion := h.svc.SuggestSlug(sl, excludeID); suggestion != "" {
			body["suggestion"] = suggestion
		}
	}
	response.OK(c, body)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(audit.ActorFrom(c), &dto)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, toResponse(p))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(audit.ActorFrom(c), c.Param("id"), &dto)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

type contentOpsDTO struct {
	Ops []pagetype.Op `json:"ops" binding:"required"`
}

func (h *Handler) contentOps(c *gin.Context) {
	var dto contentOpsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(dto.Ops) == 0 {
		response.BadRequest(c, "ops must not be empty")
		return
	}
	p, err := h.svc.ApplyContentOps(audit.ActorFrom(c), c.Param("id"), dto.Ops)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p))
}

func writeServiceError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationFailed(c, ve.Fields)
	case errors.Is(err, ErrSlugTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrBadSlug), errors.Is(err, ErrBadPageType), errors.Is(err, ErrBadStatus):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
