package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/boscod/portfolio-api/internal/middleware"
	"github.com/boscod/portfolio-api/internal/models"
	"github.com/boscod/portfolio-api/internal/services"
	"github.com/boscod/portfolio-api/internal/useragent"
	"github.com/gofiber/fiber/v3"
)

// NotifyVisitFunc dispatches a visit notification. Implementations are
// expected to be slow (network) and unreliable; the handler calls them in a
// detached goroutine and swallows their errors.
type NotifyVisitFunc func(path string, country, city *string) error

type VisitorHandler struct {
	visitorService *services.VisitorService
	notifyVisit    NotifyVisitFunc
}

func NewVisitorHandler(visitorService *services.VisitorService, notifyVisit NotifyVisitFunc) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		notifyVisit:    notifyVisit,
	}
}

// TrackPayload represents the page-view tracking payload
type TrackPayload struct {
	Path string `json:"path"`
}

// Track logs one page view. Telemetry is best-effort: the only hard client
// error is a missing path. A persistence failure is reported as a
// soft-success so a database outage never shows up as a user-facing error.
func (h *VisitorHandler) Track(c fiber.Ctx) error {
	var payload TrackPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if payload.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Path is required",
		})
	}

	path := models.Truncate(payload.Path, models.MaxPathLen)
	rawUA := c.Get("User-Agent")
	info := useragent.Parse(models.Truncate(rawUA, models.MaxUserAgentLen))

	visitor := &models.Visitor{
		Path:           path,
		IP:             models.TruncatePtr(middleware.GetRealIP(c), models.MaxIPLen),
		Country:        models.TruncatePtr(middleware.GetGeoCountry(c), models.MaxGeoLen),
		City:           models.TruncatePtr(middleware.GetGeoCity(c), models.MaxGeoLen),
		UserAgent:      models.TruncatePtr(rawUA, models.MaxUserAgentLen),
		DeviceType:     info.DeviceType,
		Browser:        info.Browser,
		BrowserVersion: info.BrowserVersion,
		OS:             info.OS,
		OSVersion:      info.OSVersion,
	}

	ctx := context.Background()
	if err := h.visitorService.Log(ctx, visitor); err != nil {
		log.Printf("[Track] Failed to log visit for %s: %v", path, err)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to track visit",
		})
	}

	// Fire-and-forget owner notification, skipped for the site's own
	// dashboard and API traffic. The goroutine is intentionally detached:
	// a slow or failing notification must never delay the response.
	if h.notifyVisit != nil && !isInternalPath(path) {
		country, city := visitor.Country, visitor.City
		go func() {
			if err := h.notifyVisit(path, country, city); err != nil {
				log.Printf("[Track] Visit notification failed: %v", err)
			}
		}()
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// isInternalPath reports whether the visited path belongs to the dashboard
// or the API itself rather than the public site.
func isInternalPath(path string) bool {
	return strings.HasPrefix(path, "/dashboard") || strings.HasPrefix(path, "/api")
}

// List returns the recent visitor log plus the aggregate stats for the
// dashboard. Read-only.
func (h *VisitorHandler) List(c fiber.Ctx) error {
	limit := 50
	offset := 0
	if l, err := strconv.Atoi(c.Query("limit", "50")); err == nil && l > 0 {
		limit = l
	}
	if limit > services.MaxVisitorPageSize {
		limit = services.MaxVisitorPageSize
	}
	if o, err := strconv.Atoi(c.Query("offset", "0")); err == nil && o >= 0 {
		offset = o
	}

	ctx := context.Background()

	visitors, err := h.visitorService.Recent(ctx, limit, offset)
	if err != nil {
		log.Printf("[Visitors] Failed to fetch visitors: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to fetch visitors",
		})
	}

	stats, err := h.visitorService.Stats(ctx)
	if err != nil {
		log.Printf("[Visitors] Failed to compute stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to compute stats",
		})
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data":   visitors,
		"stats":  stats,
		"pagination": fiber.Map{
			"total":  stats.Total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// Export streams the recent visitor log as an Excel workbook
func (h *VisitorHandler) Export(c fiber.Ctx) error {
	ctx := context.Background()

	f, err := h.visitorService.ExportExcel(ctx)
	if err != nil {
		log.Printf("[Visitors] Failed to build export: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to build export",
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to write export",
		})
	}

	filename := fmt.Sprintf("visitors-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}
