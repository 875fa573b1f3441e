// Package ai provides AI-assisted authoring: inferring a content
// schema from a sample JSON document, and condensing free text into a
// titled summary note. Generated schemas pass the same validation as
// hand-written ones before they are returned; field IDs the model
// omits are back-filled locally.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	appcfg "github.com/gwd-cms/core/internal/config"
	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/content/schema"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	"github.com/gwd-cms/core/internal/pkg/response"
)

var (
	ErrNoProvider       = errors.New("no enabled AI provider")
	ErrGenerationFailed = errors.New("generation failed")
)

// SchemaDraft is an AI-proposed content schema, not yet persisted.
type SchemaDraft struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Fields      []models.SchemaField `json:"fields"`
}

// Note is a titled summary of free text.
type Note struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type Service struct {
	cfg   *appcfg.AppConfig
	audit *audit.Service
}

func NewService(cfg *appcfg.AppConfig, aud *audit.Service) *Service {
	return &Service{cfg: cfg, audit: aud}
}

// GenerateSchema asks the model to infer a schema from an arbitrary
// JSON document and validates the draft with the regular schema rules.
// Any unusable model output collapses into ErrGenerationFailed; there
// is no retry.
func (s *Service) GenerateSchema(ctx context.Context, actor audit.Actor, document json.RawMessage, providerID string) (*SchemaDraft, error) {
	provider := selectProvider(s.cfg.AI.Providers, providerID)
	if provider == nil {
		return nil, ErrNoProvider
	}
	if !json.Valid(document) {
		return nil, errors.New("document is not valid JSON")
	}

	systemPrompt, prompt := buildSchemaPrompt(schema.MaxDepth, string(document))
	raw, err := callModel(ctx, provider, systemPrompt, prompt, 1500)
	if err != nil {
		return nil, ErrGenerationFailed
	}

	var draft SchemaDraft
	if err := unmarshalModelJSON(raw, &draft); err != nil {
		return nil, ErrGenerationFailed
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, ErrGenerationFailed
	}
	if draft.Fields == nil {
		draft.Fields = []models.SchemaField{}
	}
	if errs := schema.ValidateFields(draft.Fields); len(errs) > 0 {
		return nil, ErrGenerationFailed
	}
	draft.Fields = schema.NormalizeFields(draft.Fields)

	s.audit.Log(actor, audit.Entry{
		Action: "ai.schema_draft", EntityType: "schema", EntityName: draft.Name,
	})
	return &draft, nil
}

// GenerateNote condenses free text into a {title, summary} pair.
func (s *Service) GenerateNote(ctx context.Context, actor audit.Actor, text, providerID string) (*Note, error) {
	provider := selectProvider(s.cfg.AI.Providers, providerID)
	if provider == nil {
		return nil, ErrNoProvider
	}

	systemPrompt, prompt := buildNotePrompt(text)
	raw, err := callModel(ctx, provider, systemPrompt, prompt, 400)
	if err != nil {
		return nil, ErrGenerationFailed
	}

	var note Note
	if err := unmarshalModelJSON(raw, &note); err != nil {
		return nil, ErrGenerationFailed
	}
	note.Title = strings.TrimSpace(note.Title)
	note.Summary = strings.TrimSpace(note.Summary)
	if note.Title == "" || note.Summary == "" {
		return nil, ErrGenerationFailed
	}

	s.audit.Log(actor, audit.Entry{Action: "ai.note", EntityType: "note", EntityName: note.Title})
	return &note, nil
}

// Providers lists configured providers without their keys.
func (s *Service) Providers() []gin.H {
	out := make([]gin.H, 0, len(s.cfg.AI.Providers))
	for _, p := range s.cfg.AI.Providers {
		out = append(out, gin.H{
			"id": p.ID, "name": p.Name, "type": p.Type,
			"default_model": p.DefaultModel, "enabled": p.Enabled,
		})
	}
	return out
}

// TestProvider runs a minimal completion against the provider.
func (s *Service) TestProvider(ctx context.Context, providerID string) error {
	provider := selectProvider(s.cfg.AI.Providers, providerID)
	if provider == nil {
		return ErrNoProvider
	}
	_, err := callModel(ctx, provider, "", "Reply with the single word: OK", 10)
	return err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)
	g.GET("/providers", h.providers)
	g.POST("/test", h.test)
	g.POST("/schema", h.generateSchema)
	g.POST("/note", h.generateNote)
}

func (h *Handler) providers(c *gin.Context) {
	response.OK(c, h.svc.Providers())
}

type testDTO struct {
	ProviderID string `json:"provider_id"`
}

func (h *Handler) test(c *gin.Context) {
	var dto testDTO
	_ = c.ShouldBindJSON(&dto)
	if err := h.svc.TestProvider(c.Request.Context(), dto.ProviderID); err != nil {
		if errors.Is(err, ErrNoProvider) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"ok": true})
}

type generateSchemaDTO struct {
	Document   json.RawMessage `json:"document" binding:"required"`
	ProviderID string          `json:"provider_id"`
}

func (h *Handler) generateSchema(c *gin.Context) {
	var dto generateSchemaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	draft, err := h.svc.GenerateSchema(c.Request.Context(), audit.ActorFrom(c), dto.Document, dto.ProviderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, draft)
}

type generateNoteDTO struct {
	Text       string `json:"text" binding:"required"`
	ProviderID string `json:"provider_id"`
}

func (h *Handler) generateNote(c *gin.Context) {
	var dto generateNoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	note, err := h.svc.GenerateNote(c.Request.Context(), audit.ActorFrom(c), dto.Text, dto.ProviderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, note)
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoProvider):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrGenerationFailed):
		response.InternalError(c, err)
	default:
		response.BadRequest(c, err.Error())
	}
}
