package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ContactMessage stores a contact-form submission. The sender email and
// message body are AES-encrypted at rest and decrypted by the service layer
// before they reach the dashboard.
type ContactMessage struct {
	bun.BaseModel `bun:"table:contact_messages,alias:cm"`

	ID               int64   `bun:"id,pk,autoincrement" json:"id"`
	Name             string  `bun:"name,notnull" json:"name"`
	EmailEncrypted   string  `bun:"email_encrypted,notnull" json:"-"`
	Subject          *string `bun:"subject" json:"subject,omitempty"`
	MessageEncrypted string  `bun:"message_encrypted,notnull" json:"-"`

	// Decrypted fields, populated on read, never stored
	Email   string `bun:"-" json:"email"`
	Message string `bun:"-" json:"message"`

	IsRead    bool      `bun:"is_read,default:false" json:"is_read"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// ContactMessageResponse for API output
type ContactMessageResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Subject   *string `json:"subject,omitempty"`
	Message   string  `json:"message"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

func (m *ContactMessage) ToResponse() *ContactMessageResponse {
	return &ContactMessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// BeforeInsert hook
var _ bun.BeforeInsertHook = (*ContactMessage)(nil)

func (m *ContactMessage) BeforeInsert(ctx context.Context, query *bun.InsertQuery) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}
