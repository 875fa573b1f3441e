package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix      = "gwd:http_cache:"
	cacheMaxBody     = 1 << 20
	cacheHitHeader   = "x-gwd-cache"
	defaultCacheTTL  = 15 * time.Second
	cacheControlSkip = "no-store"
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body     []byte
	overflow bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	if !w.overflow {
		if len(w.body)+len(data) > cacheMaxBody {
			w.overflow = true
			w.body = nil
		} else {
			w.body = append(w.body, data...)
		}
	}
	return w.ResponseWriter.Write(data)
}

// HTTPCache serves successful anonymous GET responses from Redis for a
// short TTL. Authenticated requests bypass the cache entirely.
func HTTPCache(rdb *redis.Client, ttl time.Duration, disable bool) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return func(c *gin.Context) {
		if disable || c.Request.Method != http.MethodGet || IsAuthenticated(c) {
			c.Next()
			return
		}
		if c.GetHeader("Cache-Control") == cacheControlSkip {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cachePrefix + c.Request.URL.RequestURI()

		if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(raw, &cached) == nil && cached.Status == http.StatusOK {
				c.Header(cacheHitHeader, "hit")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		writer := &cacheBodyWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Header(cacheHitHeader, "miss")
		c.Next()

		if writer.overflow || writer.Status() != http.StatusOK || len(writer.body) == 0 {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body,
		})
		if err != nil {
			return
		}
		rdb.Set(ctx, key, payload, ttl)
	}
}
