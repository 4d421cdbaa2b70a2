package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestAdminService_SetSuspended(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	target := env.createUser(t, "target")

	tokens, err := env.auth.Login(ctx, &models.LoginRequest{Username: "target", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.admin.SetSuspended(ctx, target.ID, true))

	got, err := env.users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSuspended)

	// Askıya alma oturumları düşürür — refresh token artık çalışmaz,
	// yeniden giriş de reddedilir.
	_, err = env.auth.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err)
	_, err = env.auth.Login(ctx, &models.LoginRequest{Username: "target", Password: "password123"})
	assert.Error(t, err)

	require.NoError(t, env.admin.SetSuspended(ctx, target.ID, false))
	got, err = env.users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSuspended)
}

func TestAdminService_AdminImmunity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "bigboss")
	env.promoteAdmin(t, admin.ID)

	// Platform admin'ler askıya alınamaz ve silinemez.
	err := env.admin.SetSuspended(ctx, admin.ID, true)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	err = env.admin.DeleteUser(ctx, admin.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestAdminService_DeleteUser_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	target := env.createUser(t, "target")
	post := env.createPost(t, author.ID, "kalıcı")

	_, err := env.comment.AddComment(ctx, target.ID, post.ID, &models.CreateCommentRequest{Text: "spam"})
	require.NoError(t, err)
	_, err = env.reaction.React(ctx, target.ID, models.PostParent(post.ID), models.ReactionAngry)
	require.NoError(t, err)

	require.NoError(t, env.admin.DeleteUser(ctx, target.ID))

	_, err = env.users.GetByID(ctx, target.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCounter)
	assert.Equal(t, 0, got.ReactionCounter)
}

func TestAdminService_RemovePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "uygunsuz")
	node, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "c"})
	require.NoError(t, err)

	// Yazarlık kontrolü yok; silme semantiği normal silme ile aynı.
	require.NoError(t, env.admin.RemovePost(ctx, post.ID))

	_, err = env.posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.comments.GetByID(ctx, node.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestAdminService_RemoveComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "post")
	root, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)
	reply, err := env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "r"})
	require.NoError(t, err)

	require.NoError(t, env.admin.RemoveComment(ctx, root.ID))

	_, err = env.comments.GetByID(ctx, root.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.comments.GetByID(ctx, reply.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	gotPost, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotPost.CommentsCounter)
}

func TestAdminService_ListUsersAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createPost(t, alice.ID, "bir")
	env.createPost(t, alice.ID, "iki")

	users, err := env.admin.ListUsers(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	stats, err := env.admin.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UserCount)
	assert.Equal(t, 2, stats.PostCount)
	assert.Equal(t, 0, stats.CommentCount)
}
