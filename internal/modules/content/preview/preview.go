// Package preview serves read-only page payloads for the public site
// and the editor preview pane. Rich text values inside the content
// document are rendered to HTML alongside the raw source.
package preview

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/content/page"
	"github.com/gwd-cms/core/internal/modules/content/pagetype"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

type previewResponse struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Slug     string                 `json:"slug"`
	PageType pagetype.PageType      `json:"pageType"`
	Status   models.PageStatus      `json:"status"`
	Content  map[string]interface{} `json:"content"`
	Rendered map[string]string      `json:"rendered"`
	Modified time.Time              `json:"modified"`
}

type Service struct {
	pages *page.Service
}

func NewService(pages *page.Service) *Service { return &Service{pages: pages} }

// Resolve finds the page for a preview path. The empty path and "/"
// fall back to the home page.
func (s *Service) Resolve(path string, includeDrafts bool) (*models.PageModel, error) {
	sl := strings.Trim(path, "/")
	var (
		p   *models.PageModel
		err error
	)
	if sl == "" {
		p, err = s.pages.GetBySlug("home")
		if err == nil && p == nil {
			p, err = firstOfType(s.pages, pagetype.Home, includeDrafts)
		}
	} else {
		p, err = s.pages.GetBySlug(sl)
	}
	if err != nil || p == nil {
		return nil, err
	}
	if !includeDrafts && p.Status != models.PagePublished {
		return nil, nil
	}
	return p, nil
}

func firstOfType(pages *page.Service, t pagetype.PageType, includeDrafts bool) (*models.PageModel, error) {
	list, _, err := pages.List(pagination.Query{Page: 1, Size: 1}, fallbackFilter(t, includeDrafts))
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

// fallbackFilter builds the lookup filter for the home fallback. An
// anonymous viewer only ever sees published pages, so the lookup must
// filter by status too; otherwise a newer draft of the same type would
// shadow an older published page and the fallback would 404.
func fallbackFilter(t pagetype.PageType, includeDrafts bool) page.ListFilter {
	f := page.ListFilter{PageType: string(t)}
	if !includeDrafts {
		f.Status = string(models.PagePublished)
	}
	return f
}

// RenderRichText walks the content document and renders every
// rich_text-shaped string (keys "body") plus archetype rich text
// fields to HTML, keyed by dotted path.
func RenderRichText(content map[string]interface{}) map[string]string {
	out := map[string]string{}
	walkStrings("", content, func(path, value string) {
		if !isRichTextPath(path) || strings.TrimSpace(value) == "" {
			return
		}
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(value), &buf); err != nil {
			return
		}
		out[path] = buf.String()
	})
	return out
}

// isRichTextPath matches the content keys the archetypes use for long
// form text.
func isRichTextPath(path string) bool {
	last := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		last = path[idx+1:]
	}
	return last == "body" || last == "text" || last == "description"
}

func walkStrings(prefix string, node interface{}, visit func(path, value string)) {
	switch v := node.(type) {
	case map[string]interface{}:
		for key, child := range v {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			walkStrings(path, child, visit)
		}
	case []interface{}:
		for i, child := range v {
			walkStrings(prefix+"["+strconv.Itoa(i)+"]", child, visit)
		}
	case string:
		visit(prefix, v)
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the public preview endpoint. optionalAuth lets
// logged-in editors see drafts; anonymous callers only see published
// pages.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optionalAuth gin.HandlerFunc, isAuthed func(*gin.Context) bool) {
	rg.GET("/preview/*slug", optionalAuth, func(c *gin.Context) {
		h.preview(c, isAuthed(c))
	})
}

func (h *Handler) preview(c *gin.Context, includeDrafts bool) {
	p, err := h.svc.Resolve(c.Param("slug"), includeDrafts)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	content := p.Content
	if content == nil {
		content = map[string]interface{}{}
	}
	response.OK(c, previewResponse{
		ID: p.ID, Title: p.Title, Slug: p.Slug,
		PageType: pagetype.PageType(p.PageType), Status: p.Status,
		Content: content, Rendered: RenderRichText(content),
		Modified: p.UpdatedAt,
	})
}
