package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestFriendshipService_SendAndAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	fr, err := env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusPending, fr.Status)

	// Requester kendi isteğini kabul edemez.
	err = env.friendship.AcceptRequest(ctx, alice.ID, fr.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	require.NoError(t, env.friendship.AcceptRequest(ctx, bob.ID, fr.ID))

	friends, err := env.friendship.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.Username, friends[0].Username)
}

func TestFriendshipService_CrossRequestAutoAccepts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "bob"})
	require.NoError(t, err)

	// Bob da Alice'e istek gönderirse iki niyet örtüşür, kayıt accepted olur.
	fr, err := env.friendship.SendRequest(ctx, bob.ID, &models.SendFriendRequestRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, fr.Status)
}

func TestFriendshipService_DuplicateRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")

	_, err := env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "bob"})
	require.NoError(t, err)

	_, err = env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "bob"})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestFriendshipService_SelfRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	_, err := env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "alice"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestFriendshipService_Remove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	eve := env.createUser(t, "eve")
	env.befriend(t, alice, bob)

	friends, err := env.friendship.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	frID := friends[0].ID

	// Üçüncü kişi silemez.
	err = env.friendship.RemoveFriendship(ctx, eve.ID, frID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	require.NoError(t, env.friendship.RemoveFriendship(ctx, bob.ID, frID))

	friends, err = env.friendship.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestFriendshipService_BlockedMasked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	require.NoError(t, env.block.Block(ctx, bob.ID, alice.ID))

	// Engellendiğini öğrenemez: kullanıcı yokmuş gibi NotFound.
	_, err := env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "bob"})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestBlockService_BlockDropsFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.befriend(t, alice, bob)

	require.NoError(t, env.block.Block(ctx, alice.ID, bob.ID))

	// Engelleme mevcut arkadaşlığı düşürür.
	friends, err := env.friendship.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// Idempotent: ikinci Block sessizce başarılı.
	assert.NoError(t, env.block.Block(ctx, alice.ID, bob.ID))

	blockedList, err := env.block.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, blockedList, 1)
	assert.Equal(t, bob.Username, blockedList[0].Username)
}

func TestBlockService_Unblock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	// Engel yokken Unblock NotFound.
	err := env.block.Unblock(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	require.NoError(t, env.block.Block(ctx, alice.ID, bob.ID))
	require.NoError(t, env.block.Unblock(ctx, alice.ID, bob.ID))

	// Engel kalktıktan sonra etkileşim tekrar mümkün.
	_, err = env.friendship.SendRequest(ctx, alice.ID, &models.SendFriendRequestRequest{Username: "bob"})
	assert.NoError(t, err)
}
