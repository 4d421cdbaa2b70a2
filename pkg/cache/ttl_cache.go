// Package cache — generic in-memory TTL cache.
//
// Thread-safe, süre aşımlı (time-to-live) key/value deposu. Sık okunan
// ama nadiren değişen verileri her istekte veritabanına gitmeden
// bellekte tutmak için kullanılır — örneğin auth middleware'in kısa
// ömürlü kullanıcı cache'i: aynı token'la gelen ardışık isteklerde
// users tablosuna tekrar tekrar SELECT atılmaz.
//
// Her entry bir son kullanma zamanı taşır; süresi dolan entry Get'te
// miss sayılır ve arka plandaki temizlik goroutine'i tarafından
// map'ten silinir.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, K anahtarlı V değerli generic cache.
//
//	c := cache.New[string, *models.User](30*time.Second, 5*time.Minute)
//	c.Set(userID, user)
//	user, ok := c.Get(userID)
//
// sync.RWMutex ile korunur: okumalar paralel, yazmalar exclusive.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	// Close() bu channel'ı kapatarak temizlik goroutine'ini durdurur.
	stopCleanup chan struct{}
}

// New, cache'i ve periyodik temizlik goroutine'ini başlatır.
//
// ttl: entry yaşam süresi. cleanupInterval: süresi dolanların map'ten
// fiziksel silinme sıklığı. Get zaten süresi dolmuş entry döndürmez;
// cleanup sadece bellek büyümesini sınırlar.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get, (value, true) döner; key yoksa veya süresi dolmuşsa
// (zero value, false). Süresi dolan entry burada silinmez —
// RLock yeterli kalsın diye silme işi cleanup'a bırakılmıştır.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, değeri ttl süresiyle yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete, tek bir key'i invalidate eder. Kullanıcı profili
// değiştiğinde veya hesap askıya alındığında çağrılır — aksi halde
// stale kullanıcı ttl dolana kadar servis edilir.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteFunc, predicate'in true döndüğü tüm key'leri siler.
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if predicate(key) {
			delete(c.entries, key)
		}
	}
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Len, süresi dolmuşlar dahil toplam entry sayısı.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, temizlik goroutine'ini durdurur (goroutine leak önleme).
func (c *TTLCache[K, V]) Close() {
	close(c.stopCleanup)
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
