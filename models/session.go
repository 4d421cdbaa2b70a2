package models

import "time"

// Session, refresh token oturumunu temsil eder.
//
// Access token kısa ömürlüdür (15dk) ve DB'ye hiç dokunmaz.
// Refresh token uzun ömürlüdür (7 gün) ve DB'de yaşar; böylece
// çalınan oturum iptal edilebilir ve logout yalnızca ilgili
// oturumu düşürür.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"` // API'ye gönderilmez
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
