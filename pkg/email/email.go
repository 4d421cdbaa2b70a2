// Package email, uygulama genelinde email gönderimi için soyutlama
// katmanı sağlar.
//
// Service katmanı EmailSender interface'ine bağımlıdır; Resend API
// kullanan concrete implementasyon sadece constructor'da görünür.
// Sağlayıcı değişikliği yeni bir implementasyon + wire-up değişikliği
// demektir, service koduna dokunulmaz.
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// EmailSender, email gönderimi için interface.
type EmailSender interface {
	// SendPasswordReset, kullanıcıya şifre sıfırlama linki içeren email
	// gönderir. token plaintext'tir ve linke gömülür; DB'de yalnızca
	// SHA256 hash'i durur.
	SendPasswordReset(ctx context.Context, toEmail, token string) error

	// SendVerificationOTP, kayıt sonrası e-posta doğrulama kodunu
	// gönderir. code plaintext'tir; DB'de yalnızca SHA256 hash'i durur.
	SendVerificationOTP(ctx context.Context, toEmail, code string) error

	// SendTwoFactorOTP, 2FA etkinleştirme onay kodunu gönderir.
	SendTwoFactorOTP(ctx context.Context, toEmail, code string) error
}

// resendSender, Resend API ile gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Resend'de doğrulanmış domain altında olmalı
	appURL    string // reset linklerinde kullanılan public URL
}

// NewResendSender, Resend client'ı ile yeni bir EmailSender oluşturur.
// apiKey: re_xxxxxxxx formatındaki Resend API anahtarı.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

// SendPasswordReset, şifre sıfırlama email'i gönderir.
// Link formatı: {appURL}/reset-password?token={token}. Kullanıcı linke
// tıkladığında frontend token'ı URL'den okuyup reset-password
// endpoint'ine POST eder.
func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#0f172a;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#0f172a;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#1e293b;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">meydan</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">Password Reset Request</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                We received a request to reset your password. Click the button below to choose a new password.
              </p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#0ea5e9;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">
                      Reset Password
                    </a>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0 0 16px 0;">
                This link will expire in 20 minutes. If you didn't request a password reset, you can safely ignore this email.
              </p>
              <p style="color:#475569;font-size:13px;line-height:1.6;margin:0;word-break:break-all;">
                If the button doesn't work, copy and paste this link:<br>
                <a href="%s" style="color:#0ea5e9;">%s</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, resetLink, resetLink, resetLink)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("meydan <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Reset Your Password — meydan",
		Html:    html,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

func (s *resendSender) SendVerificationOTP(ctx context.Context, toEmail, code string) error {
	return s.sendCode(ctx, toEmail, code,
		"Verify Your Email — meydan",
		"Verify Your Email",
		"Thanks for signing up! Use the code below to verify your email address.")
}

func (s *resendSender) SendTwoFactorOTP(ctx context.Context, toEmail, code string) error {
	return s.sendCode(ctx, toEmail, code,
		"Your Verification Code — meydan",
		"Two-Factor Verification",
		"Use the code below to confirm enabling two-factor authentication on your account.")
}

// sendCode, tek kullanımlık kod içeren email'lerin ortak şablonu.
// Kod büyük puntolu bir kutuda gösterilir, link yoktur.
func (s *resendSender) sendCode(ctx context.Context, toEmail, code, subject, heading, intro string) error {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#0f172a;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#0f172a;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#1e293b;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">meydan</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">%s</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                %s
              </p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#0f172a;border-radius:6px;padding:16px 32px;">
                    <span style="color:#0ea5e9;font-size:28px;font-weight:700;letter-spacing:6px;">%s</span>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0;">
                This code will expire in 10 minutes. Do not share it with anyone.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, heading, intro, code)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("meydan <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	return nil
}
