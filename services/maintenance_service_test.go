package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestMaintenanceService_RunOnce_ResyncsDriftedCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "sayaç testi")
	_, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "c"})
	require.NoError(t, err)

	// Sayaç elle bozulur — dışarıdan yapılmış bir müdahaleyi taklit eder.
	_, err = env.db.Conn.Exec("UPDATE posts SET comments_counter = 42 WHERE id = ?", post.ID)
	require.NoError(t, err)

	m := NewMaintenanceService(env.posts, env.comments, env.sessions, env.resets, env.otps, time.Hour)
	m.RunOnce(ctx)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCounter)
}

func TestMaintenanceService_RunOnce_RemovesExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	tokens, err := env.auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	// Oturum süresi geçmişe çekilir.
	_, err = env.db.Conn.Exec("UPDATE sessions SET expires_at = ? WHERE user_id = ?",
		time.Now().Add(-time.Hour), alice.ID)
	require.NoError(t, err)

	m := NewMaintenanceService(env.posts, env.comments, env.sessions, env.resets, env.otps, time.Hour)
	m.RunOnce(ctx)

	_, err = env.auth.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err, "expired session must be gone after the sweep")
}

func TestMaintenanceService_RunOnce_RemovesExpiredOTPs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	require.NoError(t, env.otps.Create(ctx, &models.OTP{
		UserID:    alice.ID,
		OTPHash:   "stale-hash",
		OTPType:   models.OTPTypeEmailVerification,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	m := NewMaintenanceService(env.posts, env.comments, env.sessions, env.resets, env.otps, time.Hour)
	m.RunOnce(ctx)

	_, err := env.otps.GetLatest(ctx, alice.ID, models.OTPTypeEmailVerification)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestMaintenanceService_StartStopIdempotent(t *testing.T) {
	env := newTestEnv(t)

	m := NewMaintenanceService(env.posts, env.comments, env.sessions, env.resets, env.otps, time.Hour)

	m.Start()
	m.Start() // ikinci çağrı no-op
	m.Stop()
	m.Stop() // kapalıyken tekrar Stop panic'lememeli
}
