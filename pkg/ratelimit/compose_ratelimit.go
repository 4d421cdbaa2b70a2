package ratelimit

import (
	"sync"
	"time"
)

// composeState, bir kullanıcının içerik üretim penceresi + varsa
// aktif cooldown bilgisi.
type composeState struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time
}

// ComposeRateLimiter, kullanıcı bazlı içerik üretim (chat mesajı,
// yorum, gönderi) flood koruması. Login limiter'dan farkı: limit
// aşıldığında sadece pencereyi beklemek yerine ayrı bir cooldown
// cezası uygulanır — spam yapan kullanıcı window'dan bağımsız olarak
// cooldown süresince bloke kalır.
//
// Kullanım:
//
//	limiter := NewComposeRateLimiter(5, 5*time.Second, 15*time.Second)
//	if !limiter.Allow(userID) {
//		secs := limiter.CooldownSeconds(userID)
//		// ErrBadRequest + "wait N second(s)"
//	}
type ComposeRateLimiter struct {
	mu          sync.RWMutex
	states      map[string]*composeState
	maxActions  int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

func NewComposeRateLimiter(maxActions int, window, cooldown time.Duration) *ComposeRateLimiter {
	rl := &ComposeRateLimiter{
		states:      make(map[string]*composeState),
		maxActions:  maxActions,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, kullanıcının yeni içerik üretmesine izin verilip
// verilmediğini döner. Limit ilk aşıldığında cooldown başlatılır;
// cooldown süresince tüm çağrılar false döner.
func (rl *ComposeRateLimiter) Allow(userID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	s, exists := rl.states[userID]
	if !exists {
		rl.states[userID] = &composeState{count: 1, windowStart: now}
		return true
	}

	// Aktif cooldown her şeyden önce kontrol edilir.
	if now.Before(s.cooldownUntil) {
		return false
	}

	if now.Sub(s.windowStart) > rl.window {
		s.count = 1
		s.windowStart = now
		return true
	}

	s.count++
	if s.count > rl.maxActions {
		s.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds, kullanıcının kalan cooldown süresi (saniye).
// Cooldown yoksa 0 döner.
func (rl *ComposeRateLimiter) CooldownSeconds(userID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	s, exists := rl.states[userID]
	if !exists {
		return 0
	}

	remaining := time.Until(s.cooldownUntil)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *ComposeRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *ComposeRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, s := range rl.states {
		if now.Sub(s.windowStart) > rl.window && now.After(s.cooldownUntil) {
			delete(rl.states, userID)
		}
	}
}
