package routes

import (
	"github.com/boscod/portfolio-api/internal/database"
	"github.com/boscod/portfolio-api/internal/handlers"
	"github.com/boscod/portfolio-api/internal/middleware"
	"github.com/boscod/portfolio-api/internal/services"
	"github.com/gofiber/fiber/v3"
)

func SetupRoutes(app *fiber.App, jwtService *services.JWTService, cryptoService *services.CryptoService, authService *services.AuthService, telegramService *services.TelegramService) {
	// Initialize services
	visitorService := services.NewVisitorService(database.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, jwtService)
	visitorHandler := handlers.NewVisitorHandler(visitorService, telegramService.NotifyVisit)
	postHandler := handlers.NewPostHandler()
	storyHandler := handlers.NewStoryHandler()
	guestbookHandler := handlers.NewGuestbookHandler()
	contactHandler := handlers.NewContactHandler(cryptoService)

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Portfolio API is running",
		})
	})

	// API group
	api := app.Group("/api")

	// Health check
	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Portfolio API is running",
		})
	})

	// ==================
	// Public Routes
	// ==================
	api.Post("/auth/login", authHandler.Login)

	// Page-view tracking (called by client-side instrumentation)
	api.Post("/track", visitorHandler.Track)

	// Published content
	api.Get("/posts", postHandler.ListPublic)
	api.Get("/posts/:slug", postHandler.GetBySlug)
	api.Get("/stories", storyHandler.List)
	api.Get("/stories/:id", storyHandler.Get)
	api.Get("/guestbook", guestbookHandler.List)

	// Public writes, rate limited: 15 requests per minute per IP
	public := api.Group("", middleware.RateLimitMiddleware())
	public.Post("/guestbook", guestbookHandler.Create)
	public.Post("/contact", contactHandler.Create)

	// ==================
	// Protected Routes (JWT)
	// ==================
	admin := api.Group("/admin", middleware.AuthMiddleware(jwtService))

	// Auth routes
	admin.Post("/auth/logout", authHandler.Logout)
	admin.Get("/auth/me", authHandler.Me)

	// Visitor analytics
	admin.Get("/visitors", visitorHandler.List)
	admin.Get("/visitors/export", visitorHandler.Export)

	// Post management
	admin.Get("/posts", postHandler.ListAdmin)
	admin.Post("/posts", postHandler.Create)
	admin.Put("/posts/:id", postHandler.Update)
	admin.Delete("/posts/:id", postHandler.Delete)

	// Story management
	admin.Post("/stories", storyHandler.Create)
	admin.Put("/stories/:id", storyHandler.Update)
	admin.Delete("/stories/:id", storyHandler.Delete)

	// Guestbook moderation
	admin.Delete("/guestbook/:id", guestbookHandler.Delete)

	// Contact inbox
	admin.Get("/messages", contactHandler.List)
	admin.Post("/messages/:id/read", contactHandler.MarkRead)
	admin.Delete("/messages/:id", contactHandler.Delete)
}
