package models

import (
	"fmt"
	"strings"
	"time"
)

// OTPType, tek kullanımlık kodun hangi akışa ait olduğunu söyler.
type OTPType string

const (
	OTPTypeEmailVerification OTPType = "email_verification"
	OTPTypeTwoFactor         OTPType = "two_factor"
)

// OTP, e-posta ile gönderilen tek kullanımlık kodun DB kaydı.
// Kodun kendisi saklanmaz; sadece hash'i tutulur.
type OTP struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OTPHash   string    `json:"-"`
	OTPType   OTPType   `json:"otp_type"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// VerifyEmailRequest, kayıt sonrası e-posta doğrulama isteği.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Code = strings.TrimSpace(r.Code)
	if r.Email == "" || !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	return nil
}

// Verify2FARequest, 2FA etkinleştirme onayı. Kod e-posta ile gelir.
type Verify2FARequest struct {
	Code string `json:"code"`
}

func (r *Verify2FARequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	return nil
}
