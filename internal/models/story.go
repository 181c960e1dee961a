package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Story is a photo story: a titled set of images with a short description.
type Story struct {
	bun.BaseModel `bun:"table:stories,alias:s"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description *string    `bun:"description" json:"description,omitempty"`
	Images      []string   `bun:"images,type:jsonb,default:'[]'" json:"images"`
	TakenAt     *time.Time `bun:"taken_at" json:"taken_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:now()" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:now()" json:"updated_at"`
	DeletedAt   *time.Time `bun:"deleted_at,soft_delete" json:"-"`
}

// StoryResponse for API output
type StoryResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Images      []string `json:"images"`
	TakenAt     *string  `json:"taken_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func (s *Story) ToResponse() *StoryResponse {
	images := s.Images
	if images == nil {
		images = []string{}
	}

	resp := &StoryResponse{
		ID:          s.ID.String(),
		Title:       s.Title,
		Description: s.Description,
		Images:      images,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}

	if s.TakenAt != nil {
		ta := s.TakenAt.Format(time.RFC3339)
		resp.TakenAt = &ta
	}

	return resp
}

// BeforeInsert hook
var _ bun.BeforeInsertHook = (*Story)(nil)

func (s *Story) BeforeInsert(ctx context.Context, query *bun.InsertQuery) error {
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeUpdate hook
var _ bun.BeforeUpdateHook = (*Story)(nil)

func (s *Story) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	s.UpdatedAt = time.Now()
	return nil
}
