package handlers

import (
	"context"
	"log"
	"time"

	"github.com/boscod/portfolio-api/internal/database"
	"github.com/boscod/portfolio-api/internal/models"
	"github.com/gofiber/fiber/v3"
)

type StoryHandler struct{}

func NewStoryHandler() *StoryHandler {
	return &StoryHandler{}
}

// StoryPayload represents the create/update payload
type StoryPayload struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
	TakenAt     *string  `json:"taken_at,omitempty"` // RFC3339
}

// List returns all photo stories, newest first
func (h *StoryHandler) List(c fiber.Ctx) error {
	ctx := context.Background()
	var stories []models.Story

	err := database.DB.NewSelect().
		Model(&stories).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to fetch stories",
		})
	}

	responses := make([]*models.StoryResponse, len(stories))
	for i := range stories {
		responses[i] = stories[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"stories": responses,
	})
}

// Get returns a single story by ID
func (h *StoryHandler) Get(c fiber.Ctx) error {
	storyID := c.Params("id")

	ctx := context.Background()
	story := new(models.Story)

	err := database.DB.NewSelect().
		Model(story).
		Where("id = ?", storyID).
		Where("deleted_at IS NULL").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Story not found",
		})
	}

	return c.JSON(story.ToResponse())
}

// Create handles creating a new story
func (h *StoryHandler) Create(c fiber.Ctx) error {
	var payload StoryPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if payload.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Title is required",
		})
	}

	images := payload.Images
	if images == nil {
		images = []string{}
	}

	story := &models.Story{
		Title:       payload.Title,
		Description: payload.Description,
		Images:      images,
	}

	if payload.TakenAt != nil {
		if t, err := time.Parse(time.RFC3339, *payload.TakenAt); err == nil {
			story.TakenAt = &t
		}
	}

	ctx := context.Background()
	if _, err := database.DB.NewInsert().Model(story).Exec(ctx); err != nil {
		log.Printf("[Stories] Failed to create story: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to create story",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(story.ToResponse())
}

// Update handles updating a story
func (h *StoryHandler) Update(c fiber.Ctx) error {
	storyID := c.Params("id")

	var payload StoryPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	ctx := context.Background()

	story := new(models.Story)
	err := database.DB.NewSelect().
		Model(story).
		Where("id = ?", storyID).
		Where("deleted_at IS NULL").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Story not found",
		})
	}

	if payload.Title != "" {
		story.Title = payload.Title
	}
	if payload.Description != nil {
		story.Description = payload.Description
	}
	if payload.Images != nil {
		story.Images = payload.Images
	}
	if payload.TakenAt != nil {
		if t, err := time.Parse(time.RFC3339, *payload.TakenAt); err == nil {
			story.TakenAt = &t
		}
	}

	if _, err := database.DB.NewUpdate().Model(story).WherePK().Exec(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to update story",
		})
	}

	return c.JSON(story.ToResponse())
}

// Delete handles soft deleting a story
func (h *StoryHandler) Delete(c fiber.Ctx) error {
	storyID := c.Params("id")
	ctx := context.Background()

	result, err := database.DB.NewDelete().
		Model((*models.Story)(nil)).
		Where("id = ?", storyID).
		Exec(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to delete story",
		})
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Story not found",
		})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
