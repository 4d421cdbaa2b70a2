// Package models, uygulamanın domain modellerini tanımlar.
//
// Model, veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den gelen/giden verilerin şeklini belirler. json tag'leri
// serialize davranışını kontrol eder; hassas alanlar `json:"-"` ile
// response dışında tutulur.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// UserStatus, kullanıcının çevrimiçi durumunu temsil eder.
// Go'da enum yoktur; typed string + const değerler kullanılır.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusIdle    UserStatus = "idle"
	UserStatusDND     UserStatus = "dnd"
	UserStatusOffline UserStatus = "offline"
)

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           *string    `json:"email,omitempty"` // opsiyonel, şifre sıfırlama için
	DisplayName     *string    `json:"display_name"`    // *string = nullable
	AvatarURL       *string    `json:"avatar_url"`
	CoverURL        *string    `json:"cover_url"`
	Bio             *string    `json:"bio"`
	PasswordHash    string     `json:"-"` // API response'a asla çıkmaz
	Status          UserStatus `json:"status"`
	Language        string     `json:"language"` // "en", "tr"
	IsPlatformAdmin bool       `json:"is_platform_admin"`
	IsSuspended     bool       `json:"is_suspended"`
	IsVerified      bool       `json:"is_verified"`
	TwoFAEnabled    bool       `json:"twofa_enabled"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PublicProfile, başkalarına gösterilen kırpılmış görünüm.
// Email ve moderasyon alanları dışarı sızmaz.
type PublicProfile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url"`
	CoverURL    *string    `json:"cover_url"`
	Bio         *string    `json:"bio"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Public, User'dan paylaşılabilir profili üretir.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CoverURL:    u.CoverURL,
		Bio:         u.Bio,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
	}
}

// CreateUserRequest, kayıt isteği. Password düz gelir,
// hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Validate kuralları:
//   - Username: 3-32 karakter, alfanumerik + alt çizgi
//   - Password: minimum 8 karakter
//   - Email: opsiyonel, basit format kontrolü
//   - DisplayName: opsiyonel, max 32 karakter
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}

	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email != "" && !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}

	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > 32 {
		return fmt.Errorf("display name must be at most 32 characters")
	}

	return nil
}

// LoginRequest, giriş isteği.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateProfileRequest, profil güncellemesi. nil field = dokunma.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Language    *string `json:"language"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.DisplayName != nil && utf8.RuneCountInString(*r.DisplayName) > 32 {
		return fmt.Errorf("display name must be at most 32 characters")
	}
	if r.Bio != nil && utf8.RuneCountInString(*r.Bio) > 300 {
		return fmt.Errorf("bio must be at most 300 characters")
	}
	if r.Language != nil && *r.Language != "en" && *r.Language != "tr" {
		return fmt.Errorf("unsupported language")
	}
	return nil
}

// DeleteAccountRequest, hesap silme onayı. Şifre tekrar istenir.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
