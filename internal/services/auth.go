package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/boscod/portfolio-api/config"
	"github.com/boscod/portfolio-api/internal/database"
	"github.com/boscod/portfolio-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	jwtService *JWTService
	limiter    *LoginLimiter
}

func NewAuthService(jwtService *JWTService) *AuthService {
	return &AuthService{
		jwtService: jwtService,
		limiter:    NewLoginLimiter(MaxLoginAttempts, LoginAttemptWindow),
	}
}

// HashPassword hashes a password using bcrypt
func (a *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with a hash
func (a *AuthService) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Limiter exposes the login attempt limiter for the handler layer
func (a *AuthService) Limiter() *LoginLimiter {
	return a.limiter
}

// GetUserByUsername retrieves a user by username (case-insensitive)
func (a *AuthService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := database.DB.NewSelect().
		Model(user).
		Where("LOWER(username) = LOWER(?)", username).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (a *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)
	err := database.DB.NewSelect().
		Model(user).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateLastLogin updates the last_login_at timestamp
func (a *AuthService) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := database.DB.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_login_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// GenerateToken generates a JWT token for a user
func (a *AuthService) GenerateToken(user *models.User) (string, error) {
	return a.jwtService.GenerateToken(user.ID, user.Username)
}

// EnsureAdminUser seeds the dashboard account from config when it does not
// exist yet. There is no public registration.
func (a *AuthService) EnsureAdminUser(ctx context.Context, cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	existing, _ := a.GetUserByUsername(ctx, cfg.AdminUsername)
	if existing != nil {
		return nil
	}

	hash, err := a.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		IsActive:     true,
	}

	if _, err := database.DB.NewInsert().Model(user).Exec(ctx); err != nil {
		return err
	}

	log.Printf("Seeded admin user %q", cfg.AdminUsername)
	return nil
}

// Login attempt limiting for the dashboard gate. At most 5 failed attempts
// per client IP within the window; the counter resets on success.
const (
	MaxLoginAttempts   = 5
	LoginAttemptWindow = 15 * time.Minute
)

type loginAttempt struct {
	count       int
	windowStart time.Time
}

// LoginLimiter tracks failed login attempts per client IP in memory. State
// is process-local and lost on restart, which is acceptable for a
// single-instance dashboard gate.
type LoginLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	attempts map[string]*loginAttempt
}

func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		max:      max,
		window:   window,
		attempts: make(map[string]*loginAttempt),
	}
}

// Allowed reports whether the given IP may attempt a login, and how many
// attempts remain.
func (l *LoginLimiter) Allowed(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[ip]
	if !ok || time.Since(a.windowStart) > l.window {
		return true, l.max
	}

	remaining := l.max - a.count
	if remaining < 0 {
		remaining = 0
	}
	return a.count < l.max, remaining
}

// RecordFailure counts a failed attempt for the IP, starting a new window
// when the previous one has expired.
func (l *LoginLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[ip]
	if !ok || time.Since(a.windowStart) > l.window {
		l.attempts[ip] = &loginAttempt{count: 1, windowStart: time.Now()}
		return
	}
	a.count++
}

// Reset clears the attempt counter for the IP after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}
