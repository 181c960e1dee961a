package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiterBlocksAfterMaxFailures(t *testing.T) {
	l := NewLoginLimiter(MaxLoginAttempts, LoginAttemptWindow)
	ip := "203.0.113.7"

	for i := 0; i < MaxLoginAttempts; i++ {
		allowed, remaining := l.Allowed(ip)
		assert.True(t, allowed)
		assert.Equal(t, MaxLoginAttempts-i, remaining)
		l.RecordFailure(ip)
	}

	allowed, remaining := l.Allowed(ip)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestLoginLimiterTracksIPsIndependently(t *testing.T) {
	l := NewLoginLimiter(MaxLoginAttempts, LoginAttemptWindow)

	for i := 0; i < MaxLoginAttempts; i++ {
		l.RecordFailure("10.0.0.1")
	}

	allowed, _ := l.Allowed("10.0.0.1")
	assert.False(t, allowed)

	allowed, remaining := l.Allowed("10.0.0.2")
	assert.True(t, allowed)
	assert.Equal(t, MaxLoginAttempts, remaining)
}

func TestLoginLimiterResetOnSuccess(t *testing.T) {
	l := NewLoginLimiter(MaxLoginAttempts, LoginAttemptWindow)
	ip := "10.0.0.1"

	for i := 0; i < MaxLoginAttempts; i++ {
		l.RecordFailure(ip)
	}
	allowed, _ := l.Allowed(ip)
	require.False(t, allowed)

	l.Reset(ip)

	allowed, remaining := l.Allowed(ip)
	assert.True(t, allowed)
	assert.Equal(t, MaxLoginAttempts, remaining)
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	// Short window so the test does not sleep for minutes
	l := NewLoginLimiter(MaxLoginAttempts, 50*time.Millisecond)
	ip := "10.0.0.1"

	for i := 0; i < MaxLoginAttempts; i++ {
		l.RecordFailure(ip)
	}
	allowed, _ := l.Allowed(ip)
	require.False(t, allowed)

	time.Sleep(100 * time.Millisecond)

	allowed, remaining := l.Allowed(ip)
	assert.True(t, allowed)
	assert.Equal(t, MaxLoginAttempts, remaining)

	// A failure after expiry starts a fresh window
	l.RecordFailure(ip)
	allowed, remaining = l.Allowed(ip)
	assert.True(t, allowed)
	assert.Equal(t, MaxLoginAttempts-1, remaining)
}

func TestHashAndCheckPassword(t *testing.T) {
	a := NewAuthService(NewJWTService("test-secret", 1))

	hash, err := a.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, a.CheckPassword("correct horse battery staple", hash))
	assert.False(t, a.CheckPassword("wrong password", hash))
}
