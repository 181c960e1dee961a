package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post categories
const (
	CategoryBlog        = "blog"
	CategoryDevelopment = "development"
)

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Slug       string     `bun:"slug,notnull,unique" json:"slug"`
	Title      string     `bun:"title,notnull" json:"title"`
	Excerpt    *string    `bun:"excerpt" json:"excerpt,omitempty"`
	Content    string     `bun:"content,notnull" json:"content"`
	CoverImage *string    `bun:"cover_image" json:"cover_image,omitempty"`
	Category   string     `bun:"category,notnull,default:'blog'" json:"category"`
	Tags       []string   `bun:"tags,type:jsonb,default:'[]'" json:"tags"`
	Published  bool       `bun:"published,default:false" json:"published"`

	PublishedAt *time.Time `bun:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:now()" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:now()" json:"updated_at"`
	DeletedAt   *time.Time `bun:"deleted_at,soft_delete" json:"-"`
}

// PostResponse for API output
type PostResponse struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     *string  `json:"excerpt,omitempty"`
	Content     string   `json:"content,omitempty"`
	CoverImage  *string  `json:"cover_image,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
	PublishedAt *string  `json:"published_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func (p *Post) ToResponse() *PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	resp := &PostResponse{
		ID:         p.ID.String(),
		Slug:       p.Slug,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		Category:   p.Category,
		Tags:       tags,
		Published:  p.Published,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}

	if p.PublishedAt != nil {
		pa := p.PublishedAt.Format(time.RFC3339)
		resp.PublishedAt = &pa
	}

	return resp
}

// ToListResponse omits the full content for index pages.
func (p *Post) ToListResponse() *PostResponse {
	resp := p.ToResponse()
	resp.Content = ""
	return resp
}

// BeforeInsert hook
var _ bun.BeforeInsertHook = (*Post)(nil)

func (p *Post) BeforeInsert(ctx context.Context, query *bun.InsertQuery) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeUpdate hook
var _ bun.BeforeUpdateHook = (*Post)(nil)

func (p *Post) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	p.UpdatedAt = time.Now()
	return nil
}
