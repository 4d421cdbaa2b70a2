package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewLoginRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "attempt %d should pass", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "attempt over the limit should be rejected")

	// Başka IP etkilenmez.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestLoginRateLimiter_ResetClearsAttempts(t *testing.T) {
	rl := NewLoginRateLimiter(2, time.Minute)

	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	require.False(t, rl.Allow("1.2.3.4"))

	// Başarılı giriş sayacı sıfırlar.
	rl.Reset("1.2.3.4")
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestLoginRateLimiter_WindowExpires(t *testing.T) {
	rl := NewLoginRateLimiter(1, 50*time.Millisecond)

	require.True(t, rl.Allow("1.2.3.4"))
	require.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"), "window expiry should allow again")
}

func TestLoginRateLimiter_RetryAfterSeconds(t *testing.T) {
	rl := NewLoginRateLimiter(1, time.Minute)

	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")

	wait := rl.RetryAfterSeconds("1.2.3.4")
	assert.Greater(t, wait, 0)
	assert.LessOrEqual(t, wait, 60)
}

func TestComposeRateLimiter_CooldownAfterBurst(t *testing.T) {
	rl := NewComposeRateLimiter(2, time.Minute, time.Minute)

	assert.True(t, rl.Allow("user-1"))
	assert.True(t, rl.Allow("user-1"))
	assert.False(t, rl.Allow("user-1"), "burst over the limit triggers cooldown")

	// Cooldown süresi raporlanır.
	assert.Greater(t, rl.CooldownSeconds("user-1"), 0)

	// Cooldown kullanıcı bazlıdır.
	assert.True(t, rl.Allow("user-2"))
}

func TestComposeRateLimiter_CooldownExpires(t *testing.T) {
	rl := NewComposeRateLimiter(1, 20*time.Millisecond, 30*time.Millisecond)

	require.True(t, rl.Allow("user-1"))
	require.False(t, rl.Allow("user-1"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow("user-1"))
}

func TestExtractIP(t *testing.T) {
	r, _ := http.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:54321"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	// Proxy header'ı öncelikli; ilk hop istemci IP'sidir.
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.NotEmpty(t, FormatRetryMessage(30))
}
