// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Auth → PlatformAdmin → Handler
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/akinalp/meydan/handlers"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/pkg/cache"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/services"
)

// userCacheTTL: Doğrulanan kullanıcı kaydının cache'te kalma süresi.
// Kısa tutulur — admin bir hesabı dondurduğunda en geç bu süre sonunda
// kullanıcının request'leri reddedilmeye başlar.
const userCacheTTL = 30 * time.Second

// AuthMiddleware, JWT token doğrulama middleware'ı.
//
// Her request'te DB'ye gitmemek için doğrulanan kullanıcılar kısa süreli
// bir TTL cache'te tutulur. Feed scroll gibi saniyede onlarca request üreten
// akışlarda bu cache DB yükünü ciddi şekilde azaltır.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
	userCache   *cache.TTLCache[string, *models.User]
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		userCache:   cache.New[string, *models.User](userCacheTTL, time.Minute),
	}
}

// InvalidateUser, bir kullanıcının cache kaydını düşürür.
// Profil güncelleme, hesap dondurma gibi durumlardan sonra çağrılır —
// değişiklik TTL beklemeden bir sonraki request'te görünür.
func (m *AuthMiddleware) InvalidateUser(userID string) {
	m.userCache.Delete(userID)
}

// Close, cache'in arka plan temizleyicisini durdurur (graceful shutdown).
func (m *AuthMiddleware) Close() {
	m.userCache.Close()
}

// Require, JWT token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
// Hesap dondurulmuşsa → 403 Forbidden.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Middleware nasıl çalışır?
// 1. "Authorization" header'ını oku
// 2. "Bearer " prefix'ini kaldır → raw token string
// 3. AuthService.ValidateAccessToken() ile doğrula
// 4. Token geçerliyse → kullanıcıyı cache'ten/DB'den getir → context'e ekle → next
// 5. Geçersizse → 401 döndür, next ÇAĞIRILMAZ
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Header'dan token'ı al
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		// 2. "Bearer " prefix'ini kaldır
		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// 3. Token'ı doğrula
		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// 4. Kullanıcıyı getir — önce cache, yoksa DB.
		// Token geçerli ama kullanıcı silinmiş olabilir; DB kontrolü bunun için şart.
		user, ok := m.userCache.Get(claims.UserID)
		if !ok {
			user, err = m.userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
				return
			}

			// Password hash'i temizle — context'te ve cache'te taşınmamalı
			user.PasswordHash = ""
			m.userCache.Set(claims.UserID, user)
		}

		// Dondurulmuş hesap hiçbir endpoint'e erişemez — token hâlâ geçerli
		// olsa bile. Cache TTL'i kısa olduğu için gecikme en fazla 30 saniyedir.
		if user.IsSuspended {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "account is suspended")
			return
		}

		// 5. Context'e kullanıcıyı ekle
		// context.WithValue: mevcut context'e key-value ekler.
		// Downstream handler'lar r.Context().Value(UserContextKey) ile erişir.
		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
