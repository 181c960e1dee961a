package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Visitor is one logged page view with the client metadata derived from the
// request headers. Rows are append-only: they are never updated or deleted by
// normal operation.
type Visitor struct {
	bun.BaseModel `bun:"table:visitors,alias:v"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Path           string    `bun:"path,notnull" json:"path"`
	IP             *string   `bun:"ip" json:"ip,omitempty"`
	Country        *string   `bun:"country" json:"country,omitempty"`
	City           *string   `bun:"city" json:"city,omitempty"`
	UserAgent      *string   `bun:"user_agent" json:"user_agent,omitempty"`
	DeviceType     string    `bun:"device_type,notnull,default:'unknown'" json:"device_type"`
	Browser        string    `bun:"browser,notnull,default:'unknown'" json:"browser"`
	BrowserVersion *string   `bun:"browser_version" json:"browser_version,omitempty"`
	OS             string    `bun:"os,notnull,default:'unknown'" json:"os"`
	OSVersion      *string   `bun:"os_version" json:"os_version,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Field length bounds applied before insert, defensive against oversized or
// malicious header values.
const (
	MaxPathLen      = 500
	MaxIPLen        = 50
	MaxGeoLen       = 100
	MaxUserAgentLen = 500
)

// BeforeInsert hook
var _ bun.BeforeInsertHook = (*Visitor)(nil)

func (v *Visitor) BeforeInsert(ctx context.Context, query *bun.InsertQuery) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	return nil
}

// Truncate caps a string at max bytes. Header values are untrusted input.
func Truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// TruncatePtr caps an optional string, mapping empty to nil.
func TruncatePtr(s string, max int) *string {
	if s == "" {
		return nil
	}
	t := Truncate(s, max)
	return &t
}
