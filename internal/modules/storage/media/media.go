// Package media handles uploaded assets. Files land in the static
// directory on disk; each upload also gets a library row so the admin
// UI can browse, search and delete assets.
package media

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/pagination"
	"github.com/gwd-cms/core/internal/pkg/response"
	"gorm.io/gorm"
)

const maxUploadBytes = 32 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".pdf": true, ".mp4": true,
	".webm": true, ".ico": true,
}

type mediaResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	Created    time.Time `json:"created"`
}

func toResponse(m *models.MediaModel) mediaResponse {
	return mediaResponse{
		ID: m.ID, Name: m.Name, URL: "/media/" + filepath.Base(m.Path),
		MimeType: m.MimeType, Size: m.Size, UploadedBy: m.UploadedBy,
		Created: m.CreatedAt,
	}
}

type Service struct {
	db        *gorm.DB
	audit     *audit.Service
	staticDir string
}

func NewService(db *gorm.DB, aud *audit.Service, staticDir string) *Service {
	if staticDir == "" {
		staticDir = "./static"
	}
	return &Service{db: db, audit: aud, staticDir: staticDir}
}

// StaticDir is where uploaded files live; the router serves it.
func (s *Service) StaticDir() string { return s.staticDir }

func (s *Service) List(q pagination.Query, search string) ([]models.MediaModel, response.Pagination, error) {
	tx := s.db.Model(&models.MediaModel{}).Order("created_at DESC")
	if search != "" {
		tx = tx.Where("name LIKE ?", "%"+search+"%")
	}
	var rows []models.MediaModel
	pag, err := pagination.Paginate(tx, q, &rows)
	return rows, pag, err
}

func (s *Service) GetByID(id string) (*models.MediaModel, error) {
	var m models.MediaModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Store saves the uploaded file under a random name (original
// extension preserved) and records it in the library.
func (s *Service) Store(actor audit.Actor, header *multipart.FileHeader, save func(dst string) error) (*models.MediaModel, error) {
	if header.Size > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds the %d MB limit", maxUploadBytes>>20)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("file type %q is not allowed", ext)
	}

	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		return nil, err
	}
	filename := uuid.NewString() + ext
	path := filepath.Join(s.staticDir, filename)
	if err := save(path); err != nil {
		return nil, err
	}

	m := models.MediaModel{
		Name:       filepath.Base(header.Filename),
		Path:       path,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       header.Size,
		UploadedBy: actor.ID,
	}
	if err := s.db.Create(&m).Error; err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	s.audit.Log(actor, audit.Entry{Action: "media.upload", EntityType: "media", EntityID: m.ID, EntityName: m.Name})
	return &m, nil
}

func (s *Service) Delete(actor audit.Actor, id string) error {
	m, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	if err := s.db.Delete(&models.MediaModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	_ = os.Remove(m.Path)
	s.audit.Log(actor, audit.Entry{Action: "media.delete", EntityType: "media", EntityID: id, EntityName: m.Name})
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/media", authMW)
	g.GET("", h.list)
	g.POST("/upload", h.upload)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	rows, pag, err := h.svc.List(q, c.Query("search"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]mediaResponse, len(rows))
	for i := range rows {
		items[i] = toResponse(&rows[i])
	}
	response.Paged(c, items, pag)
}

func (h *Handler) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	m, err := h.svc.Store(audit.ActorFrom(c), header, func(dst string) error {
		return c.SaveUploadedFile(header, dst)
	})
	if err != nil {
		if strings.Contains(err.Error(), "not allowed") || strings.Contains(err.Error(), "limit") {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(m))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
