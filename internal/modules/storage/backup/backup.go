// Package backup exports the content database as a JSON archive. Runs
// can be triggered from the dashboard or on a schedule; archives land
// in the backups directory and, when configured, an S3 bucket.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appcfg "github.com/gwd-cms/core/internal/config"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const archiveVersion = 1

// Archive is the on-disk backup document.
type Archive struct {
	Version   int                         `json:"version"`
	CreatedAt time.Time                   `json:"created_at"`
	Schemas   []models.ContentSchemaModel `json:"schemas"`
	Pages     []models.PageModel          `json:"pages"`
	Blocks    []models.BlockModel         `json:"blocks"`
	Roles     []models.RoleModel          `json:"roles"`
	Tasks     []models.TaskModel          `json:"tasks"`
	Media     []models.MediaModel         `json:"media"`
}

type Service struct {
	db    *gorm.DB
	cfg   *appcfg.AppConfig
	audit *audit.Service
	log   *zap.Logger
}

func NewService(db *gorm.DB, cfg *appcfg.AppConfig, aud *audit.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, cfg: cfg, audit: aud, log: log}
}

func (s *Service) dir() string {
	if s.cfg.Paths.Backups != "" {
		return s.cfg.Paths.Backups
	}
	return "./backups"
}

// Run exports all content tables and writes one timestamped archive.
func (s *Service) Run(ctx context.Context, actor audit.Actor) (string, error) {
	archive := Archive{Version: archiveVersion, CreatedAt: time.Now()}

	steps := []struct {
		name string
		dest interface{}
	}{
		{"schemas", &archive.Schemas},
		{"pages", &archive.Pages},
		{"blocks", &archive.Blocks},
		{"roles", &archive.Roles},
		{"tasks", &archive.Tasks},
		{"media", &archive.Media},
	}
	for _, step := range steps {
		if err := s.db.WithContext(ctx).Find(step.dest).Error; err != nil {
			return "", fmt.Errorf("export %s: %w", step.name, err)
		}
	}

	payload, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("backup-%s.json", archive.CreatedAt.Format("20060102-150405"))
	path := filepath.Join(s.dir(), name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}

	if s.cfg.Backup.S3.Enable {
		uploader, err := NewS3Uploader(s.cfg.Backup.S3)
		if err != nil {
			s.log.Warn("s3 uploader init failed", zap.Error(err))
		} else if err := uploader.Upload(ctx, name, payload); err != nil {
			s.log.Warn("s3 backup upload failed", zap.String("key", name), zap.Error(err))
		}
	}

	s.audit.Log(actor, audit.Entry{Action: "backup.run", EntityType: "backup", EntityName: name})
	return name, nil
}

type archiveInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

func (s *Service) List() ([]archiveInfo, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if os.IsNotExist(err) {
			return []archiveInfo{}, nil
		}
		return nil, err
	}
	out := make([]archiveInfo, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		out = append(out, archiveInfo{Name: ent.Name(), Size: info.Size(), Created: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

// resolve guards against path traversal in archive names.
func (s *Service) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
		return "", errors.New("invalid archive name")
	}
	return filepath.Join(s.dir(), name), nil
}

func (s *Service) Delete(actor audit.Actor, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	s.audit.Log(actor, audit.Entry{Action: "backup.delete", EntityType: "backup", EntityName: name})
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/backup", authMW)
	g.GET("", h.list)
	g.POST("", h.run)
	g.GET("/:name", h.download)
	g.DELETE("/:name", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	archives, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, archives)
}

func (h *Handler) run(c *gin.Context) {
	name, err := h.svc.Run(c.Request.Context(), audit.ActorFrom(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"name": name})
}

func (h *Handler) download(c *gin.Context) {
	path, err := h.svc.resolve(c.Param("name"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(audit.ActorFrom(c), c.Param("name")); err != nil {
		if os.IsNotExist(err) {
			response.NotFound(c)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}
