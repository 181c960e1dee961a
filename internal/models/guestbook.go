package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type GuestbookEntry struct {
	bun.BaseModel `bun:"table:guestbook_entries,alias:g"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Message   string    `bun:"message,notnull" json:"message"`
	IP        *string   `bun:"ip" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// GuestbookEntryResponse for API output. The IP stays server-side.
type GuestbookEntryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

func (g *GuestbookEntry) ToResponse() *GuestbookEntryResponse {
	return &GuestbookEntryResponse{
		ID:        g.ID,
		Name:      g.Name,
		Message:   g.Message,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
}

// BeforeInsert hook
var _ bun.BeforeInsertHook = (*GuestbookEntry)(nil)

func (g *GuestbookEntry) BeforeInsert(ctx context.Context, query *bun.InsertQuery) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	return nil
}
