package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateCover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	require.NoError(t, env.user.UpdateCover(ctx, alice.ID, "/api/uploads/abc_cover.png"))

	me, err := env.user.GetMe(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, me.CoverURL)
	assert.Equal(t, "/api/uploads/abc_cover.png", *me.CoverURL)

	// Kapak, public profilde de görünür.
	profile, err := env.user.GetProfile(ctx, "", alice.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.CoverURL)
	assert.Equal(t, "/api/uploads/abc_cover.png", *profile.CoverURL)

	// Avatar güncellemesi kapağı ezmez; Update tüm profil alanlarını yazar.
	require.NoError(t, env.user.UpdateAvatar(ctx, alice.ID, "/api/uploads/abc_avatar.png"))
	me, err = env.user.GetMe(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, me.CoverURL)
	require.NotNil(t, me.AvatarURL)
}
