package handlers

import (
	"context"
	"log"
	"strconv"

	"github.com/boscod/portfolio-api/internal/database"
	"github.com/boscod/portfolio-api/internal/middleware"
	"github.com/boscod/portfolio-api/internal/models"
	"github.com/boscod/portfolio-api/internal/rabbitmq"
	"github.com/gofiber/fiber/v3"
)

const (
	maxGuestNameLen    = 50
	maxGuestMessageLen = 1000
)

type GuestbookHandler struct{}

func NewGuestbookHandler() *GuestbookHandler {
	return &GuestbookHandler{}
}

// GuestbookPayload represents the create payload
type GuestbookPayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Create handles a new guestbook entry
func (h *GuestbookHandler) Create(c fiber.Ctx) error {
	var payload GuestbookPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if payload.Name == "" || payload.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Name and message are required",
		})
	}

	ip := middleware.GetRealIP(c)
	entry := &models.GuestbookEntry{
		Name:    models.Truncate(payload.Name, maxGuestNameLen),
		Message: models.Truncate(payload.Message, maxGuestMessageLen),
		IP:      models.TruncatePtr(ip, models.MaxIPLen),
	}

	ctx := context.Background()
	if _, err := database.DB.NewInsert().Model(entry).Exec(ctx); err != nil {
		log.Printf("[Guestbook] Failed to create entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to save entry",
		})
	}

	// Best-effort owner notification via the queue
	preview := entry.Message
	if len(preview) > 120 {
		preview = preview[:120]
	}
	if err := rabbitmq.PublishNotifyEvent(rabbitmq.NotifyEvent{
		Kind:    rabbitmq.EventGuestbookEntry,
		Name:    entry.Name,
		Preview: preview,
	}); err != nil {
		log.Printf("[Guestbook] Failed to publish notification: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry.ToResponse())
}

// List returns guestbook entries, newest first
func (h *GuestbookHandler) List(c fiber.Ctx) error {
	page := 1
	limit := 20
	if p, err := strconv.Atoi(c.Query("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit", "20")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	offset := (page - 1) * limit

	ctx := context.Background()
	var entries []models.GuestbookEntry

	query := database.DB.NewSelect().
		Model(&entries).
		Order("created_at DESC")

	total, err := query.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to count entries",
		})
	}

	if err := query.Limit(limit).Offset(offset).Scan(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to fetch entries",
		})
	}

	responses := make([]*models.GuestbookEntryResponse, len(entries))
	for i := range entries {
		responses[i] = entries[i].ToResponse()
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return c.JSON(fiber.Map{
		"entries": responses,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// Delete removes a guestbook entry (dashboard moderation)
func (h *GuestbookHandler) Delete(c fiber.Ctx) error {
	entryID := c.Params("id")
	ctx := context.Background()

	result, err := database.DB.NewDelete().
		Model((*models.GuestbookEntry)(nil)).
		Where("id = ?", entryID).
		Exec(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to delete entry",
		})
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Entry not found",
		})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
