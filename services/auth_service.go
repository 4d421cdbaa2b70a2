// Package services, business logic katmanını barındırır.
//
// Service, handler (HTTP) ile repository (DB) arasında oturur ve tüm
// iş kuralları burada yaşar: şifre hash'leme, token üretimi, yetki ve
// engelleme kontrolleri, sayaç tutarlılığı.
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri
// alır/verir. Service ASLA doğrudan SQL çalıştırmaz — repository
// interface'i kullanır.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/pkg/email"
	"github.com/akinalp/meydan/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// resetTokenTTL: şifre sıfırlama linkinin geçerlilik süresi.
// resetCooldown: iki reset email'i arasındaki minimum süre (spam ve
// email kotası koruması).
const (
	resetTokenTTL = 20 * time.Minute
	resetCooldown = 90 * time.Second

	// otpTTL: e-posta doğrulama ve 2FA kodlarının geçerlilik süresi.
	otpTTL = 10 * time.Minute
)

// AuthService interface'i — handler bu interface'e bağımlıdır,
// concrete struct'a değil.
type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ChangeEmail(ctx context.Context, userID, password, newEmail string) error
	// ForgotPassword, kayıtlı email'e sıfırlama linki gönderir.
	// Email kayıtlı değilse de nil döner — hesap varlığı sızdırılmaz.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	// ResetPassword, linkteki plaintext token ile şifreyi yeniler ve
	// kullanıcının tüm oturumlarını düşürür.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	// VerifyEmail, kayıt sırasında gönderilen kodu doğrular ve hesabı
	// "verified" işaretler.
	VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) error
	// Enable2FA, kullanıcının email'ine onay kodu gönderir; 2FA ancak
	// Verify2FA ile kod doğrulanınca açılır.
	Enable2FA(ctx context.Context, userID string) error
	Verify2FA(ctx context.Context, userID string, req *models.Verify2FARequest) error
	Disable2FA(ctx context.Context, userID string) error
}

// AuthTokens, login/register sonrası dönen token çifti.
type AuthTokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	otpRepo     repository.OTPRepository
	emailSender email.EmailSender // nil olabilir — email devre dışı
	jwtSecret   []byte
	accessExp   time.Duration
	refreshExp  time.Duration
}

// NewAuthService, constructor. emailSender nil verilirse şifre
// sıfırlama akışı "email disabled" hatası döner; geliştirme ortamında
// Resend anahtarı zorunlu olmasın diye.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	resetRepo repository.PasswordResetRepository,
	otpRepo repository.OTPRepository,
	emailSender email.EmailSender,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		otpRepo:     otpRepo,
		emailSender: emailSender,
		jwtSecret:   []byte(jwtSecret),
		accessExp:   time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:  time.Duration(refreshExpDays) * 24 * time.Hour,
	}
}

// Register, yeni kullanıcı kaydı oluşturur ve token çifti döner.
func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Bcrypt cost=12: ~100ms/hash, brute-force maliyetini yükseltir.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	var emailAddr *string
	if req.Email != "" {
		emailAddr = &req.Email
	}

	user := &models.User{
		Username:     req.Username,
		DisplayName:  displayName,
		Email:        emailAddr,
		PasswordHash: string(hash),
		Status:       models.UserStatusOnline,
		Language:     "en",
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir (username/email)
	}

	// Email verildiyse doğrulama kodu gönderilir. Gönderim hatası kaydı
	// engellemez; kullanıcı kodu sonradan yeniden isteyebilir.
	if s.emailSender != nil && emailAddr != nil {
		if err := s.sendOTP(ctx, user.ID, *emailAddr, models.OTPTypeEmailVerification); err != nil {
			log.Printf("[auth] verification email failed for user %s: %v", user.ID, err)
		}
	}

	return s.generateTokens(ctx, user)
}

// Login, kullanıcı girişi yapar. Askıya alınmış hesaplar giriş yapamaz.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Kullanıcı yok ile şifre yanlış aynı mesajı döner —
			// username enumeration engellenir.
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	if user.IsSuspended {
		return nil, fmt.Errorf("%w: account is suspended", pkg.ErrForbidden)
	}

	if err := s.userRepo.UpdateStatus(ctx, user.ID, models.UserStatusOnline); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	user.Status = models.UserStatusOnline

	return s.generateTokens(ctx, user)
}

// RefreshToken, refresh token'ı doğrular, eski oturumu düşürür ve yeni
// token çifti üretir (rotation — çalınan refresh token tek kullanımlık
// kalır).
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if delErr := s.sessionRepo.DeleteByID(ctx, session.ID); delErr != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", delErr)
		}
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old session: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// Oturum açıkken askıya alınan kullanıcı refresh'te yakalanır.
	if user.IsSuspended {
		return nil, fmt.Errorf("%w: account is suspended", pkg.ErrForbidden)
	}

	return s.generateTokens(ctx, user)
}

// Logout, refresh token'ın oturumunu siler. Token zaten geçersizse
// sessizce başarılı sayılır (idempotent).
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.userRepo.UpdateStatus(ctx, session.UserID, models.UserStatusOffline); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	return s.sessionRepo.DeleteByID(ctx, session.ID)
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
// DB'ye dokunmaz — her istek için ucuzdur.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

// ChangePassword, mevcut şifre doğrulanarak yeni şifre atanır.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", pkg.ErrUnauthorized)
	}

	if currentPassword == newPassword {
		return fmt.Errorf("%w: new password must be different from current password", pkg.ErrBadRequest)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(newHash))
}

// ChangeEmail, şifre doğrulanarak email değiştirilir. Boş string
// email'i kaldırır (email opsiyoneldir).
func (s *authService) ChangeEmail(ctx context.Context, userID, password, newEmail string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("%w: password is incorrect", pkg.ErrUnauthorized)
	}

	if strings.TrimSpace(newEmail) == "" {
		if user.Email == nil {
			return fmt.Errorf("%w: no email to remove", pkg.ErrBadRequest)
		}
		return s.userRepo.UpdateEmail(ctx, userID, nil)
	}

	newEmail = strings.TrimSpace(newEmail)
	if !models.IsValidEmail(newEmail) {
		return fmt.Errorf("%w: invalid email format", pkg.ErrBadRequest)
	}

	if user.Email != nil && *user.Email == newEmail {
		return fmt.Errorf("%w: new email is the same as current email", pkg.ErrBadRequest)
	}

	return s.userRepo.UpdateEmail(ctx, userID, &newEmail) // unique ihlali → ErrAlreadyExists
}

// ForgotPassword, sıfırlama token'ı üretir ve email'ler.
//
// Response her durumda aynıdır: email kayıtlı değilse, cooldown'daysa
// veya gönderim başarısızsa bile handler'a nil döner. Aksi halde
// endpoint hangi email'lerin kayıtlı olduğunu sızdırır.
func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if s.emailSender == nil {
		return fmt.Errorf("%w: password reset email is not configured", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	// Cooldown: son token'dan bu yana yeterli süre geçmediyse yeni
	// email atılmaz ama response yine başarılı görünür.
	if latest, err := s.resetRepo.GetLatestByUserID(ctx, user.ID); err == nil {
		if time.Since(latest.CreatedAt) < resetCooldown {
			return nil
		}
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return err
	}

	plaintext, tokenHash, err := generateResetToken()
	if err != nil {
		return err
	}

	// Eski token'lar düşürülür — aynı anda tek geçerli link olur.
	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return err
	}

	if err := s.emailSender.SendPasswordReset(ctx, req.Email, plaintext); err != nil {
		// Gönderim hatası kullanıcıya yansıtılmaz; operatör loglardan görür.
		log.Printf("[auth] password reset email failed for user %s: %v", user.ID, err)
	}

	return nil
}

// ResetPassword, plaintext token'ı doğrular, şifreyi günceller ve tüm
// oturumları düşürür.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	sum := sha256.Sum256([]byte(req.Token))
	tokenHash := hex.EncodeToString(sum[:])

	token, err := s.resetRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
		}
		return err
	}

	if token.Used || time.Now().After(token.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, token.UserID, string(newHash)); err != nil {
		return err
	}

	if err := s.resetRepo.MarkUsed(ctx, token.ID); err != nil {
		return err
	}

	// Şifre değişince mevcut tüm refresh oturumları iptal edilir —
	// hesabı ele geçiren kişi oturumda kalamaz.
	return s.sessionRepo.DeleteByUserID(ctx, token.UserID)
}

// VerifyEmail, email + kod çiftini doğrular. Kod en son gönderilen
// olmalı, süresi geçmemiş olmalı; başarıda kullanıcının tüm doğrulama
// kodları silinir ve hesap verified işaretlenir.
func (s *authService) VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid email or code", pkg.ErrBadRequest)
		}
		return err
	}

	if user.IsVerified {
		return fmt.Errorf("%w: email is already verified", pkg.ErrBadRequest)
	}

	if err := s.consumeOTP(ctx, user.ID, req.Code, models.OTPTypeEmailVerification); err != nil {
		return err
	}

	return s.userRepo.SetVerified(ctx, user.ID, true)
}

// Enable2FA, onay kodu gönderir. 2FA bu çağrıyla AÇILMAZ; kullanıcı
// kodu Verify2FA'ya getirince açılır.
func (s *authService) Enable2FA(ctx context.Context, userID string) error {
	if s.emailSender == nil {
		return fmt.Errorf("%w: two-factor email is not configured", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.TwoFAEnabled {
		return fmt.Errorf("%w: two-factor authentication is already enabled", pkg.ErrBadRequest)
	}
	if user.Email == nil {
		return fmt.Errorf("%w: an email address is required for two-factor authentication", pkg.ErrBadRequest)
	}

	return s.sendOTP(ctx, user.ID, *user.Email, models.OTPTypeTwoFactor)
}

func (s *authService) Verify2FA(ctx context.Context, userID string, req *models.Verify2FARequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFAEnabled {
		return fmt.Errorf("%w: two-factor authentication is already enabled", pkg.ErrBadRequest)
	}

	if err := s.consumeOTP(ctx, userID, req.Code, models.OTPTypeTwoFactor); err != nil {
		return err
	}

	return s.userRepo.SetTwoFA(ctx, userID, true)
}

func (s *authService) Disable2FA(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFAEnabled {
		return fmt.Errorf("%w: two-factor authentication is not enabled", pkg.ErrBadRequest)
	}

	// Askıda kalan onay kodları da temizlenir.
	if err := s.otpRepo.DeleteByUser(ctx, userID, models.OTPTypeTwoFactor); err != nil {
		return err
	}

	return s.userRepo.SetTwoFA(ctx, userID, false)
}

// ─── Private Helpers ───

// sendOTP, tek kullanımlık kod üretir, hash'ini DB'ye yazar ve
// plaintext'i email'ler. Eski kodlar düşürülür — aynı anda tek geçerli
// kod olur.
func (s *authService) sendOTP(ctx context.Context, userID, toEmail string, otpType models.OTPType) error {
	code, codeHash, err := generateOTPCode()
	if err != nil {
		return err
	}

	if err := s.otpRepo.DeleteByUser(ctx, userID, otpType); err != nil {
		return err
	}

	if err := s.otpRepo.Create(ctx, &models.OTP{
		UserID:    userID,
		OTPHash:   codeHash,
		OTPType:   otpType,
		ExpiresAt: time.Now().Add(otpTTL),
	}); err != nil {
		return err
	}

	switch otpType {
	case models.OTPTypeTwoFactor:
		return s.emailSender.SendTwoFactorOTP(ctx, toEmail, code)
	default:
		return s.emailSender.SendVerificationOTP(ctx, toEmail, code)
	}
}

// consumeOTP, kodu en son gönderilen kayıtla karşılaştırır; eşleşme ve
// süre kontrolünden geçerse kullanıcının o türdeki tüm kodlarını siler.
func (s *authService) consumeOTP(ctx context.Context, userID, code string, otpType models.OTPType) error {
	otp, err := s.otpRepo.GetLatest(ctx, userID, otpType)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
		}
		return err
	}

	if time.Now().After(otp.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
	}

	sum := sha256.Sum256([]byte(code))
	if hex.EncodeToString(sum[:]) != otp.OTPHash {
		return fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
	}

	return s.otpRepo.DeleteByUser(ctx, userID, otpType)
}

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*AuthTokens, error) {
	now := time.Now()
	accessClaims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "meydan",
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshString := hex.EncodeToString(refreshBytes)

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshString,
		ExpiresAt:    now.Add(s.refreshExp),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	user.PasswordHash = ""

	return &AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		User:         *user,
	}, nil
}

// generateResetToken, 32-byte random token üretir; plaintext linke
// gömülür, DB'ye hash yazılır.
func generateResetToken() (plaintext, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plaintext = hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(plaintext))
	return plaintext, hex.EncodeToString(sum[:]), nil
}

// generateOTPCode, 6 haneli rakam kodu üretir; email'de elle yazılacak
// kadar kısadır, kaba kuvvete karşı TTL + tek kullanımlık olması yeter.
func generateOTPCode() (code, codeHash string, err error) {
	raw := make([]byte, 4)
	if _, err = rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate otp: %w", err)
	}
	n := uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])
	code = fmt.Sprintf("%06d", n%1000000)
	sum := sha256.Sum256([]byte(code))
	return code, hex.EncodeToString(sum[:]), nil
}
