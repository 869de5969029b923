package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLogger records one audit entry. Implemented by service.AuditService.
type AuditLogger interface {
	Log(rec *model.AuditRecord)
}

// bodyCaptureWriter tees the response body so it can be audited.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// AuditMiddleware records every mutating request keyed by the partner
// that made it. Reads are not audited. Runs after auth so the partner
// is already resolved.
func AuditMiddleware(auditSvc AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		start := time.Now()

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		capture := &bodyCaptureWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		id := c.GetString("request_id")
		if id == "" {
			id = uuid.NewString()
		}
		rec := &model.AuditRecord{
			ID:        id,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			CreatedAt: start,
		}
		if val, ok := c.Get(ContextPartnerKey); ok {
			if partner, ok := val.(*model.Partner); ok && partner != nil {
				rec.PartnerID = partner.ID
			}
		}
		rec.RequestBody = redactAuditBody(reqBody)
		rec.StatusCode = c.Writer.Status()
		rec.ResponseBody = redactAuditBody(capture.body.Bytes())
		rec.LatencyMs = time.Since(start).Milliseconds()

		auditSvc.Log(rec)
	}
}

// redactAuditBody masks secret-bearing JSON fields. Bodies that fail to
// parse as JSON are stored opaque rather than risk leaking a secret.
func redactAuditBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	redacted, ok := redactJSON(body)
	if !ok {
		return "[unparsed]"
	}
	return string(redacted)
}

func redactJSON(body []byte) ([]byte, bool) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false
	}
	redactValue(&data)
	out, err := json.Marshal(data)
	if err != nil {
		return nil, false
	}
	return out, true
}

func redactValue(v *interface{}) {
	switch raw := (*v).(type) {
	case map[string]interface{}:
		for key, val := range raw {
			if isSensitiveKey(key) {
				raw[key] = "***"
				continue
			}
			vv := val
			redactValue(&vv)
			raw[key] = vv
		}
	case []interface{}:
		for i, val := range raw {
			vv := val
			redactValue(&vv)
			raw[i] = vv
		}
	}
}

func isSensitiveKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "api_key",
		"apikey",
		"orderly_secret",
		"orderlysecret",
		"orderly_key",
		"orderlykey",
		"secret",
		"signature",
		"admin_key",
		"admin_secret_key":
		return true
	default:
		return false
	}
}
