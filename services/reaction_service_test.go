package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestReactionService_React_IncrementsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	reactor := env.createUser(t, "reactor")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.reaction.React(ctx, reactor.ID, models.PostParent(post.ID), models.ReactionLike)
	require.NoError(t, err)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReactionCounter)
}

func TestReactionService_React_SameTypeIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.reaction.React(ctx, author.ID, models.PostParent(post.ID), models.ReactionLike)
	require.NoError(t, err)

	// Aynı tür ikinci kez: no-op, sayaç değişmez.
	_, err = env.reaction.React(ctx, author.ID, models.PostParent(post.ID), models.ReactionLike)
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReactionCounter)
}

func TestReactionService_React_TypeChangeKeepsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")
	parent := models.PostParent(post.ID)

	_, err := env.reaction.React(ctx, author.ID, parent, models.ReactionLike)
	require.NoError(t, err)

	// Tür değişimi: satır aynı kalır, sayaç artmaz.
	updated, err := env.reaction.React(ctx, author.ID, parent, models.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLove, updated.Type)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReactionCounter)

	groups, err := env.reaction.ListReactions(ctx, parent)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.ReactionLove, groups[0].Type)
	assert.Equal(t, 1, groups[0].Count)
}

func TestReactionService_Unreact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")
	parent := models.PostParent(post.ID)

	_, err := env.reaction.React(ctx, author.ID, parent, models.ReactionLike)
	require.NoError(t, err)
	require.NoError(t, env.reaction.Unreact(ctx, author.ID, parent))

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReactionCounter)

	// Olmayan tepkiyi kaldırmak NotFound.
	err = env.reaction.Unreact(ctx, author.ID, parent)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestReactionService_React_OnComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")
	node, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "c"})
	require.NoError(t, err)

	_, err = env.reaction.React(ctx, author.ID, models.CommentParent(node.ID), models.ReactionWow)
	require.NoError(t, err)

	got, err := env.comments.GetByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReactionCounter)

	// Yorum reaksiyonu post sayacına karışmaz.
	gotPost, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotPost.ReactionCounter)
}

func TestReactionService_React_InvalidType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.reaction.React(ctx, author.ID, models.PostParent(post.ID), models.ReactionType("boring"))
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestReactionService_React_BlockedMaskedAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	blocked := env.createUser(t, "blocked")
	post := env.createPost(t, author.ID, "hello")

	require.NoError(t, env.block.Block(ctx, author.ID, blocked.ID))

	_, err := env.reaction.React(ctx, blocked.ID, models.PostParent(post.ID), models.ReactionLike)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
