package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestDirectKey_Canonical(t *testing.T) {
	assert.Equal(t, DirectKey("a", "b"), DirectKey("b", "a"))
	assert.Equal(t, "a:b", DirectKey("b", "a"))
}

func TestChatService_ResolveDirect_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	first, err := env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Aynı çift ters sırayla çözülse de aynı sohbet döner.
	second, err := env.chat.ResolveDirect(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestChatService_ResolveDirect_Self(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")

	_, err := env.chat.ResolveDirect(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestChatService_ResolveDirect_BlockedMasked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	require.NoError(t, env.block.Block(ctx, bob.ID, alice.ID))

	_, err := env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestChatService_ResolveDirect_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	// Aynı çift için paralel istekler: kaybeden UNIQUE ihlalinden sonra
	// kazananın kaydını okur, iki çağrı da aynı sohbeti döner.
	const n = 8
	results := make([]*models.Conversation, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i], errs[i] = env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
			} else {
				results[i], errs[i] = env.chat.ResolveDirect(ctx, bob.ID, alice.ID)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "call %d", i)
		require.NotNil(t, results[i], "call %d", i)
		assert.Equal(t, results[0].ID, results[i].ID, "call %d resolved a different conversation", i)
	}
}

func TestChatService_CreateGroup_RequiresFriends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	env.befriend(t, alice, bob)

	// carol arkadaş değil → grup kurulamaz.
	_, err := env.chat.CreateGroup(ctx, alice.ID, &models.CreateGroupRequest{
		Name:      "takım",
		MemberIDs: []string{bob.ID, carol.ID},
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Hepsi arkadaşsa kurulur.
	env.befriend(t, alice, carol)
	conv, err := env.chat.CreateGroup(ctx, alice.ID, &models.CreateGroupRequest{
		Name:      "takım",
		MemberIDs: []string{bob.ID, carol.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConversationGroup, conv.Type)
}

// JoinGroup o id'de bir grup sohbeti bulamazsa NotFound döner —
// hiç olmayan id için de, direct bir sohbetin id'si için de.
func TestChatService_JoinGroup_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	eve := env.createUser(t, "eve")

	err := env.chat.JoinGroup(ctx, eve.ID, "nonexistent")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	direct, err := env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	err = env.chat.JoinGroup(ctx, eve.ID, direct.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestChatService_SendAndGetMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	conv, err := env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	sent, err := env.chat.SendMessage(ctx, alice.ID, conv.ID, &models.SendMessageRequest{Content: "selam"})
	require.NoError(t, err)
	assert.Equal(t, "selam", sent.Content)

	msgs, err := env.chat.GetMessages(ctx, bob.ID, conv.ID, "", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "selam", msgs[0].Content)
	assert.Equal(t, alice.Username, msgs[0].Sender.Username)
}

func TestChatService_SendMessage_NotAMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	eve := env.createUser(t, "eve")
	conv, err := env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = env.chat.SendMessage(ctx, eve.ID, conv.ID, &models.SendMessageRequest{Content: "merhaba"})
	assert.Error(t, err)
}

func TestChatService_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	conv, err := env.chat.ResolveDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	sent, err := env.chat.SendMessage(ctx, alice.ID, conv.ID, &models.SendMessageRequest{Content: "selam"})
	require.NoError(t, err)

	require.NoError(t, env.chat.MarkRead(ctx, bob.ID, conv.ID, sent.ID))
}
