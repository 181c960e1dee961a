package handlers

import (
	"context"
	"time"

	"github.com/boscod/portfolio-api/internal/middleware"
	"github.com/boscod/portfolio-api/internal/services"
	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	authService *services.AuthService
	jwtService  *services.JWTService
}

func NewAuthHandler(authService *services.AuthService, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
	}
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles the dashboard gate. Failed attempts are limited to 5 per
// client IP within a window; the counter resets on success.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Username and password are required",
		})
	}

	ip := middleware.GetRealIP(c)
	limiter := h.authService.Limiter()

	if allowed, _ := limiter.Allowed(ip); !allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":   "Too many attempts",
			"message": "Too many failed login attempts. Try again later.",
		})
	}

	ctx := context.Background()

	user, err := h.authService.GetUserByUsername(ctx, req.Username)
	if err != nil {
		limiter.RecordFailure(ip)
		_, remaining := limiter.Allowed(ip)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":              "Unauthorized",
			"message":            "Invalid username or password",
			"remaining_attempts": remaining,
		})
	}

	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		limiter.RecordFailure(ip)
		_, remaining := limiter.Allowed(ip)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":              "Unauthorized",
			"message":            "Invalid username or password",
			"remaining_attempts": remaining,
		})
	}

	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Forbidden",
			"message": "Account is deactivated",
		})
	}

	limiter.Reset(ip)

	// Update last login
	_ = h.authService.UpdateLastLogin(ctx, user.ID)

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to generate token",
		})
	}

	h.setAuthCookie(c, token)

	return c.JSON(fiber.Map{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	// Clear the auth cookie
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   false, // Set to true in production
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Me returns the current user's information
func (h *AuthHandler) Me(c fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Unauthorized",
			"message": "Not authenticated",
		})
	}

	ctx := context.Background()
	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user": user.ToResponse(),
	})
}

// setAuthCookie sets the authentication cookie
func (h *AuthHandler) setAuthCookie(c fiber.Ctx, token string) {
	expiry := h.jwtService.GetExpiry()
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(expiry),
		HTTPOnly: true,
		Secure:   false, // Set to true in production
		SameSite: "Lax",
	})
}
