// Package analytics surfaces Google Analytics 4 traffic data on the
// dashboard. Configuration failures map to a closed set of error codes
// so the admin UI can explain exactly what is missing.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	appcfg "github.com/gwd-cms/core/internal/config"
	redispkg "github.com/gwd-cms/core/internal/pkg/redis"
	"github.com/gwd-cms/core/internal/pkg/response"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// Closed error vocabulary for configuration and upstream failures.
const (
	CodeMissingPropertyID  = "MISSING_GA_PROPERTY_ID"
	CodeMissingCredentials = "MISSING_CREDENTIALS_STRING"
	CodeInvalidCredentials = "INVALID_CREDENTIALS_JSON"
	CodeClientInit         = "GA_CLIENT_INIT_ERROR"
	CodeAPIError           = "GA_API_ERROR"
	analyticsScope         = "https://www.googleapis.com/auth/analytics.readonly"
	cacheKeyPrefix         = "gwd:analytics:"
	cacheTTL               = 10 * time.Minute
	defaultRangeDays       = 7
	maxTopPages            = 5
)

// Error pairs one of the closed codes with an operator-facing message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Summary is the dashboard traffic overview.
type Summary struct {
	RangeDays   int       `json:"range_days"`
	ActiveUsers int64     `json:"active_users"`
	NewUsers    int64     `json:"new_users"`
	PageViews   int64     `json:"page_views"`
	TopPages    []TopPage `json:"top_pages"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type TopPage struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type Service struct {
	cfg   *appcfg.AppConfig
	cache *redispkg.Client
	log   *zap.Logger
}

func NewService(cfg *appcfg.AppConfig, cache *redispkg.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, cache: cache, log: log}
}

// newClient validates the configured credentials and builds the GA
// Data API client. Every failure path carries a closed error code.
func (s *Service) newClient(ctx context.Context) (*analyticsdata.Service, *Error) {
	propertyID := s.cfg.Analytics.PropertyID
	if propertyID == "" {
		return nil, &Error{Code: CodeMissingPropertyID, Message: "analytics property ID is not configured"}
	}
	raw := s.cfg.Analytics.CredentialsJSON
	if raw == "" {
		return nil, &Error{Code: CodeMissingCredentials, Message: "analytics credentials are not configured"}
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(raw), analyticsScope)
	if err != nil {
		return nil, &Error{Code: CodeInvalidCredentials, Message: "analytics credentials are not valid service account JSON"}
	}

	svc, err := analyticsdata.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, &Error{Code: CodeClientInit, Message: "could not initialize the analytics client"}
	}
	return svc, nil
}

// GetSummary fetches (or serves from cache) the traffic summary for
// the trailing rangeDays window.
func (s *Service) GetSummary(ctx context.Context, rangeDays int) (*Summary, *Error) {
	if rangeDays <= 0 || rangeDays > 365 {
		rangeDays = defaultRangeDays
	}

	cacheKey := fmt.Sprintf("%ssummary:%d", cacheKeyPrefix, rangeDays)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil && raw != "" {
			var cached Summary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	client, cerr := s.newClient(ctx)
	if cerr != nil {
		return nil, cerr
	}
	property := "properties/" + s.cfg.Analytics.PropertyID

	totals, err := client.Properties.RunReport(property, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{
			StartDate: fmt.Sprintf("%ddaysAgo", rangeDays),
			EndDate:   "today",
		}},
		Metrics: []*analyticsdata.Metric{
			{Name: "activeUsers"},
			{Name: "newUsers"},
			{Name: "screenPageViews"},
		},
	}).Context(ctx).Do()
	if err != nil {
		s.log.Warn("analytics totals request failed", zap.Error(err))
		return nil, &Error{Code: CodeAPIError, Message: "analytics API request failed"}
	}

	pages, err := client.Properties.RunReport(property, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{
			StartDate: fmt.Sprintf("%ddaysAgo", rangeDays),
			EndDate:   "today",
		}},
		Dimensions: []*analyticsdata.Dimension{
			{Name: "pagePath"},
			{Name: "pageTitle"},
		},
		Metrics: []*analyticsdata.Metric{{Name: "screenPageViews"}},
		OrderBys: []*analyticsdata.OrderBy{{
			Metric: &analyticsdata.MetricOrderBy{MetricName: "screenPageViews"},
			Desc:   true,
		}},
		Limit: maxTopPages,
	}).Context(ctx).Do()
	if err != nil {
		s.log.Warn("analytics top pages request failed", zap.Error(err))
		return nil, &Error{Code: CodeAPIError, Message: "analytics API request failed"}
	}

	summary := &Summary{
		RangeDays: rangeDays,
		TopPages:  []TopPage{},
		FetchedAt: time.Now(),
	}
	if len(totals.Rows) > 0 && len(totals.Rows[0].MetricValues) == 3 {
		row := totals.Rows[0]
		summary.ActiveUsers = parseMetric(row.MetricValues[0])
		summary.NewUsers = parseMetric(row.MetricValues[1])
		summary.PageViews = parseMetric(row.MetricValues[2])
	}
	for _, row := range pages.Rows {
		if len(row.DimensionValues) < 2 || len(row.MetricValues) < 1 {
			continue
		}
		summary.TopPages = append(summary.TopPages, TopPage{
			Path:  row.DimensionValues[0].Value,
			Title: row.DimensionValues[1].Value,
			Views: parseMetric(row.MetricValues[0]),
		})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(raw), cacheTTL)
		}
	}
	return summary, nil
}

func parseMetric(v *analyticsdata.MetricValue) int64 {
	if v == nil {
		return 0
	}
	n, _ := strconv.ParseInt(v.Value, 10, 64)
	return n
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/analytics", authMW)
	g.GET("/summary", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	rangeDays, _ := strconv.Atoi(c.DefaultQuery("range_days", strconv.Itoa(defaultRangeDays)))
	summary, aerr := h.svc.GetSummary(c.Request.Context(), rangeDays)
	if aerr != nil {
		status := http.StatusBadGateway
		switch aerr.Code {
		case CodeMissingPropertyID, CodeMissingCredentials, CodeInvalidCredentials:
			status = http.StatusPreconditionFailed
		}
		c.JSON(status, gin.H{
			"ok":      0,
			"code":    aerr.Code,
			"message": aerr.Message,
		})
		return
	}
	response.OK(c, summary)
}
