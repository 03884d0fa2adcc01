package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lguillozl/ecommerce-api/internal/logging"
)

const bodyLogLimit = 8 * 1024

var redactedKeys = map[string]struct{}{
	"password": {}, "authorization": {}, "token": {}, "secret": {},
}

// Logging logs each request/response pair and injects a request-scoped
// slog.Logger into the gin context. JSON bodies are captured capped and
// with credential fields redacted.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote", c.ClientIP(),
		)
		logging.With(c, l)

		var reqBody string
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			head, truncated, restored := capBody(c.Request.Body, bodyLogLimit)
			// Only the log is capped; the handler reads the full body.
			c.Request.Body = restored
			reqBody = string(redactJSON(head))
			if truncated {
				reqBody += "...truncated..."
			}
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusBadRequest {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}

// capBody reads at most n bytes for logging and hands back a body that
// still carries everything, stitching the unread tail onto what was
// already consumed.
func capBody(rc io.ReadCloser, n int) (head []byte, truncated bool, body io.ReadCloser) {
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, rc, int64(n+1))
	b := buf.Bytes()
	if len(b) > n {
		full := bodyReadCloser{
			Reader: io.MultiReader(bytes.NewReader(b), rc),
			Closer: rc,
		}
		return b[:n], true, full
	}
	rc.Close()
	return b, false, io.NopCloser(bytes.NewReader(b))
}

type bodyReadCloser struct {
	io.Reader
	io.Closer
}

func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw // not JSON
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				if _, hit := redactedKeys[strings.ToLower(k)]; hit {
					v[k] = "***redacted***"
					continue
				}
				v[k] = scrub(val)
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	out, err := json.Marshal(scrub(m))
	if err != nil {
		return raw
	}
	return out
}
