package handlers

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/boscod/portfolio-api/internal/database"
	"github.com/boscod/portfolio-api/internal/models"
	"github.com/gofiber/fiber/v3"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// PostPayload represents the create/update payload
type PostPayload struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Excerpt    *string  `json:"excerpt,omitempty"`
	Content    string   `json:"content"`
	CoverImage *string  `json:"cover_image,omitempty"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags,omitempty"`
	Published  *bool    `json:"published,omitempty"`
}

func validCategory(category string) bool {
	return category == models.CategoryBlog || category == models.CategoryDevelopment
}

// ListPublic returns published posts, newest first, optionally filtered by
// category
func (h *PostHandler) ListPublic(c fiber.Ctx) error {
	page := 1
	limit := 10
	if p, err := strconv.Atoi(c.Query("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit", "10")); err == nil && l > 0 && l <= 50 {
		limit = l
	}
	offset := (page - 1) * limit

	category := c.Query("category")

	ctx := context.Background()
	var posts []models.Post

	query := database.DB.NewSelect().
		Model(&posts).
		Where("published = ?", true).
		Where("deleted_at IS NULL").
		Order("published_at DESC")

	if category != "" {
		if !validCategory(category) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Bad Request",
				"message": "Unknown category",
			})
		}
		query = query.Where("category = ?", category)
	}

	if tag := c.Query("tag"); tag != "" {
		// jsonb containment against the tags array
		needle, _ := json.Marshal([]string{tag})
		query = query.Where("tags @> ?", string(needle))
	}

	total, err := query.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to count posts",
		})
	}

	if err := query.Limit(limit).Offset(offset).Scan(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to fetch posts",
		})
	}

	responses := make([]*models.PostResponse, len(posts))
	for i := range posts {
		responses[i] = posts[i].ToListResponse()
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return c.JSON(fiber.Map{
		"posts": responses,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetBySlug returns a single published post
func (h *PostHandler) GetBySlug(c fiber.Ctx) error {
	slug := c.Params("slug")

	ctx := context.Background()
	post := new(models.Post)

	err := database.DB.NewSelect().
		Model(post).
		Where("slug = ?", slug).
		Where("published = ?", true).
		Where("deleted_at IS NULL").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Post not found",
		})
	}

	return c.JSON(post.ToResponse())
}

// ListAdmin returns all posts including drafts
func (h *PostHandler) ListAdmin(c fiber.Ctx) error {
	ctx := context.Background()
	var posts []models.Post

	err := database.DB.NewSelect().
		Model(&posts).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to fetch posts",
		})
	}

	responses := make([]*models.PostResponse, len(posts))
	for i := range posts {
		responses[i] = posts[i].ToListResponse()
	}

	return c.JSON(fiber.Map{
		"posts": responses,
	})
}

// Create handles creating a new post
func (h *PostHandler) Create(c fiber.Ctx) error {
	var payload PostPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if payload.Title == "" || payload.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Title and slug are required",
		})
	}

	if !validCategory(payload.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Category must be 'blog' or 'development'",
		})
	}

	ctx := context.Background()

	// Check slug uniqueness up front for a friendlier error
	exists, _ := database.DB.NewSelect().
		Model((*models.Post)(nil)).
		Where("slug = ?", payload.Slug).
		Exists(ctx)
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Conflict",
			"message": "Slug already in use",
		})
	}

	tags := payload.Tags
	if tags == nil {
		tags = []string{}
	}

	post := &models.Post{
		Slug:       payload.Slug,
		Title:      payload.Title,
		Excerpt:    payload.Excerpt,
		Content:    payload.Content,
		CoverImage: payload.CoverImage,
		Category:   payload.Category,
		Tags:       tags,
	}

	if payload.Published != nil && *payload.Published {
		post.Published = true
		now := time.Now()
		post.PublishedAt = &now
	}

	if _, err := database.DB.NewInsert().Model(post).Exec(ctx); err != nil {
		log.Printf("[Posts] Failed to create post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(post.ToResponse())
}

// Update handles updating a post
func (h *PostHandler) Update(c fiber.Ctx) error {
	postID := c.Params("id")

	var payload PostPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	ctx := context.Background()

	post := new(models.Post)
	err := database.DB.NewSelect().
		Model(post).
		Where("id = ?", postID).
		Where("deleted_at IS NULL").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Post not found",
		})
	}

	if payload.Title != "" {
		post.Title = payload.Title
	}
	if payload.Slug != "" {
		post.Slug = payload.Slug
	}
	if payload.Content != "" {
		post.Content = payload.Content
	}
	if payload.Category != "" {
		if !validCategory(payload.Category) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Bad Request",
				"message": "Category must be 'blog' or 'development'",
			})
		}
		post.Category = payload.Category
	}
	if payload.Excerpt != nil {
		post.Excerpt = payload.Excerpt
	}
	if payload.CoverImage != nil {
		post.CoverImage = payload.CoverImage
	}
	if payload.Tags != nil {
		post.Tags = payload.Tags
	}
	if payload.Published != nil {
		post.Published = *payload.Published
		if post.Published && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	}

	if _, err := database.DB.NewUpdate().Model(post).WherePK().Exec(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to update post",
		})
	}

	return c.JSON(post.ToResponse())
}

// Delete handles soft deleting a post
func (h *PostHandler) Delete(c fiber.Ctx) error {
	postID := c.Params("id")
	ctx := context.Background()

	result, err := database.DB.NewDelete().
		Model((*models.Post)(nil)).
		Where("id = ?", postID).
		Exec(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to delete post",
		})
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Post not found",
		})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
