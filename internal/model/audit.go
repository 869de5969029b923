package model

import "time"

// AuditRecord is one mutating gateway request, captured after the
// handler ran. Bodies are redacted before the record leaves the
// middleware, so everything past that point is safe to persist.
type AuditRecord struct {
	ID        string `db:"id" json:"id"`
	PartnerID int64  `db:"partner_id" json:"partner_id"`
	Method    string `db:"method" json:"method"`
	Path      string `db:"path" json:"path"`
	IP        string `db:"ip" json:"ip"`
	UserAgent string `db:"user_agent" json:"user_agent"`

	RequestBody  string `db:"request_body" json:"request_body"`
	StatusCode   int    `db:"status_code" json:"status_code"`
	ResponseBody string `db:"response_body" json:"response_body"`
	LatencyMs    int64  `db:"latency_ms" json:"latency_ms"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
