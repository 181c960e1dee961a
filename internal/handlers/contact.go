package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/boscod/portfolio-api/internal/database"
	"github.com/boscod/portfolio-api/internal/models"
	"github.com/boscod/portfolio-api/internal/rabbitmq"
	"github.com/boscod/portfolio-api/internal/services"
	"github.com/gofiber/fiber/v3"
)

const (
	maxContactNameLen    = 100
	maxContactSubjectLen = 200
	maxContactMessageLen = 5000
)

type ContactHandler struct {
	cryptoService *services.CryptoService
}

func NewContactHandler(cryptoService *services.CryptoService) *ContactHandler {
	return &ContactHandler{
		cryptoService: cryptoService,
	}
}

// ContactPayload represents the contact-form payload
type ContactPayload struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Subject *string `json:"subject,omitempty"`
	Message string  `json:"message"`
}

// Create handles a contact-form submission. Sender email and message body
// are encrypted before they hit the database.
func (h *ContactHandler) Create(c fiber.Ctx) error {
	var payload ContactPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if payload.Name == "" || payload.Email == "" || payload.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Name, email, and message are required",
		})
	}

	if !strings.Contains(payload.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid email address",
		})
	}

	emailEncrypted, err := h.cryptoService.Encrypt(models.Truncate(payload.Email, models.MaxGeoLen))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to encrypt data",
		})
	}

	messageEncrypted, err := h.cryptoService.Encrypt(models.Truncate(payload.Message, maxContactMessageLen))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to encrypt data",
		})
	}

	var subject *string
	if payload.Subject != nil {
		subject = models.TruncatePtr(*payload.Subject, maxContactSubjectLen)
	}

	message := &models.ContactMessage{
		Name:             models.Truncate(payload.Name, maxContactNameLen),
		EmailEncrypted:   emailEncrypted,
		Subject:          subject,
		MessageEncrypted: messageEncrypted,
	}

	ctx := context.Background()
	if _, err := database.DB.NewInsert().Model(message).Exec(ctx); err != nil {
		log.Printf("[Contact] Failed to create message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to save message",
		})
	}

	// Best-effort owner notification via the queue. The event carries only
	// the name and subject; the body stays encrypted in the database.
	eventSubject := ""
	if subject != nil {
		eventSubject = *subject
	}
	if err := rabbitmq.PublishNotifyEvent(rabbitmq.NotifyEvent{
		Kind:    rabbitmq.EventContactMessage,
		Name:    message.Name,
		Subject: eventSubject,
	}); err != nil {
		log.Printf("[Contact] Failed to publish notification: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Message received",
	})
}

// List returns contact messages for the dashboard, decrypted
func (h *ContactHandler) List(c fiber.Ctx) error {
	ctx := context.Background()
	var messages []models.ContactMessage

	err := database.DB.NewSelect().
		Model(&messages).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to fetch messages",
		})
	}

	responses := make([]*models.ContactMessageResponse, len(messages))
	for i := range messages {
		messages[i].Email, _ = h.cryptoService.Decrypt(messages[i].EmailEncrypted)
		messages[i].Message, _ = h.cryptoService.Decrypt(messages[i].MessageEncrypted)
		responses[i] = messages[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"messages": responses,
	})
}

// MarkRead flags a message as read
func (h *ContactHandler) MarkRead(c fiber.Ctx) error {
	messageID := c.Params("id")
	ctx := context.Background()

	result, err := database.DB.NewUpdate().
		Model((*models.ContactMessage)(nil)).
		Set("is_read = ?", true).
		Where("id = ?", messageID).
		Exec(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to update message",
		})
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Message not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Delete removes a contact message
func (h *ContactHandler) Delete(c fiber.Ctx) error {
	messageID := c.Params("id")
	ctx := context.Background()

	result, err := database.DB.NewDelete().
		Model((*models.ContactMessage)(nil)).
		Where("id = ?", messageID).
		Exec(ctx)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to delete message",
		})
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Message not found",
		})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
