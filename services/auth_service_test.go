package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tokens, err := env.auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "alice", tokens.User.Username)
	assert.Empty(t, tokens.User.PasswordHash, "password hash must not leak in responses")

	logged, err := env.auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, logged.User.ID)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice")

	_, err := env.auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice")

	_, err := env.auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tokens, err := env.auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	claims, err := env.auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = env.auth.ValidateAccessToken("garbage.token.value")
	assert.Error(t, err)
}

func TestAuthService_RefreshRotatesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tokens, err := env.auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// Eski refresh token artık geçersiz — rotation tek kullanımlıktır.
	_, err = env.auth.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tokens, err := env.auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, tokens.RefreshToken))

	_, err = env.auth.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	err := env.auth.ChangePassword(ctx, alice.ID, "wrong-password", "newpassword1")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	require.NoError(t, env.auth.ChangePassword(ctx, alice.ID, "password123", "newpassword1"))

	_, err = env.auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	assert.Error(t, err)
	_, err = env.auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestAuthService_ForgotPassword_EmailDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Test ortamında emailSender nil — akış konfigürasyon hatası döner,
	// hesap varlığından bağımsız olarak.
	err := env.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

// captureSender, gönderilen kodları kaydeden EmailSender; test gerçek
// email atmadan plaintext koda ulaşır.
type captureSender struct {
	lastVerification string
	lastTwoFactor    string
	lastReset        string
}

func (c *captureSender) SendPasswordReset(_ context.Context, _, token string) error {
	c.lastReset = token
	return nil
}

func (c *captureSender) SendVerificationOTP(_ context.Context, _, code string) error {
	c.lastVerification = code
	return nil
}

func (c *captureSender) SendTwoFactorOTP(_ context.Context, _, code string) error {
	c.lastTwoFactor = code
	return nil
}

// authWithSender, env'in repo'ları üzerinde email gönderimi açık bir
// AuthService kurar.
func authWithSender(env *testEnv, sender *captureSender) AuthService {
	return NewAuthService(env.users, env.sessions, env.resets, env.otps, sender, "test-secret", 15, 7)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sender := &captureSender{}
	auth := authWithSender(env, sender)

	tokens, err := auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sender.lastVerification, "register with email must send a verification code")
	assert.False(t, tokens.User.IsVerified)

	// Yanlış kod reddedilir, hesap doğrulanmamış kalır.
	wrong := "000000"
	if sender.lastVerification == wrong {
		wrong = "000001"
	}
	err = auth.VerifyEmail(ctx, &models.VerifyEmailRequest{Email: "alice@example.com", Code: wrong})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, auth.VerifyEmail(ctx, &models.VerifyEmailRequest{
		Email: "alice@example.com",
		Code:  sender.lastVerification,
	}))

	user, err := env.users.GetByID(ctx, tokens.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	// Kod tek kullanımlıktır; ikinci deneme düşer.
	err = auth.VerifyEmail(ctx, &models.VerifyEmailRequest{
		Email: "alice@example.com",
		Code:  sender.lastVerification,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_VerifyEmail_ExpiredCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sender := &captureSender{}
	auth := authWithSender(env, sender)

	_, err := auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	// Kodun süresi geçmişe çekilir.
	_, err = env.db.Conn.Exec("UPDATE otps SET expires_at = datetime('now', '-1 hour')")
	require.NoError(t, err)

	err = auth.VerifyEmail(ctx, &models.VerifyEmailRequest{
		Email: "alice@example.com",
		Code:  sender.lastVerification,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_TwoFactorLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sender := &captureSender{}
	auth := authWithSender(env, sender)

	tokens, err := auth.Register(ctx, &models.CreateUserRequest{
		Username: "alice",
		Password: "password123",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	alice := tokens.User

	// Kod doğrulanana kadar 2FA kapalı kalır.
	require.NoError(t, auth.Enable2FA(ctx, alice.ID))
	require.NotEmpty(t, sender.lastTwoFactor)

	user, err := env.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, user.TwoFAEnabled)

	require.NoError(t, auth.Verify2FA(ctx, alice.ID, &models.Verify2FARequest{Code: sender.lastTwoFactor}))

	user, err = env.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, user.TwoFAEnabled)

	// Açıkken tekrar açma denemesi reddedilir.
	err = auth.Enable2FA(ctx, alice.ID)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, auth.Disable2FA(ctx, alice.ID))

	user, err = env.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, user.TwoFAEnabled)

	// Kapalıyken kapatma denemesi de reddedilir.
	err = auth.Disable2FA(ctx, alice.ID)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_Enable2FA_RequiresEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sender := &captureSender{}
	auth := authWithSender(env, sender)

	tokens, err := auth.Register(ctx, &models.CreateUserRequest{
		Username: "noemail",
		Password: "password123",
	})
	require.NoError(t, err)

	err = auth.Enable2FA(ctx, tokens.User.ID)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuthService_Enable2FA_EmailDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	// env.auth emailSender'sız kuruludur — 2FA açma konfigürasyon
	// hatası döner.
	err := env.auth.Enable2FA(ctx, alice.ID)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
