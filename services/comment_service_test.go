package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestCommentService_AddComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "first post")

	node, err := env.comment.AddComment(ctx, commenter.ID, post.ID, &models.CreateCommentRequest{Text: "nice one"})
	require.NoError(t, err)
	assert.Equal(t, commenter.ID, node.AuthorID)
	assert.Equal(t, models.PostParent(post.ID), node.Parent)

	// Post'un kök yorum sayacı artmış olmalı.
	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCounter)
}

func TestCommentService_AddComment_EmptyText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")

	_, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "   "})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestCommentService_AddComment_FrozenPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")
	require.NoError(t, env.post.SetFrozen(ctx, author.ID, post.ID, true))

	// Donmuş post'a yazar bile yorum ekleyemez.
	_, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "hi"})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Çözülünce tekrar açılır.
	require.NoError(t, env.post.SetFrozen(ctx, author.ID, post.ID, false))
	_, err = env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "hi"})
	assert.NoError(t, err)
}

func TestCommentService_AddComment_CommentsDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	other := env.createUser(t, "other")
	post := env.createPost(t, author.ID, "first post")
	require.NoError(t, env.post.SetAllowComments(ctx, author.ID, post.ID, false))

	_, err := env.comment.AddComment(ctx, other.ID, post.ID, &models.CreateCommentRequest{Text: "hi"})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestCommentService_AddReply_FrozenBlocksOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")
	node, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)

	require.NoError(t, env.comment.SetFrozen(ctx, author.ID, node.ID, true))

	// Dondurma yazarın KENDİSİNE de uygulanır.
	_, err = env.comment.AddReply(ctx, author.ID, node.ID, &models.CreateCommentRequest{Text: "self reply"})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestCommentService_AddReply_IncrementsParentCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")
	root, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)

	_, err = env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "r1"})
	require.NoError(t, err)
	_, err = env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "r2"})
	require.NoError(t, err)

	got, err := env.comments.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RepliesCounter)

	// Reply'ler post'un kök yorum sayacına yansımaz.
	gotPost, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotPost.CommentsCounter)
}

func TestCommentService_DeleteNode_Subtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")

	// root altında reply zincirleri: root → r1 → r1a, root → r2
	root, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)
	r1, err := env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "r1"})
	require.NoError(t, err)
	r1a, err := env.comment.AddReply(ctx, author.ID, r1.ID, &models.CreateCommentRequest{Text: "r1a"})
	require.NoError(t, err)
	r2, err := env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "r2"})
	require.NoError(t, err)

	// r1'e bir reaksiyon da bırakılır — silmede beraber temizlenmeli.
	_, err = env.reaction.React(ctx, author.ID, models.CommentParent(r1.ID), models.ReactionLike)
	require.NoError(t, err)

	require.NoError(t, env.comment.DeleteNode(ctx, author.ID, r1.ID))

	// r1 ve torunu r1a gider, kardeş r2 ve root kalır.
	_, err = env.comments.GetByID(ctx, r1.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.comments.GetByID(ctx, r1a.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.comments.GetByID(ctx, r2.ID)
	assert.NoError(t, err)

	// root'un sayacı tam 1 azalır: r1a root'un doğrudan çocuğu değildi.
	got, err := env.comments.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RepliesCounter)

	// Silinen alt ağacın reaksiyonları da gitmiştir.
	groups, err := env.reactions.GroupByParent(ctx, models.CommentParent(r1.ID))
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCommentService_DeleteNode_RootDecrementsPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")
	root, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)
	_, err = env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "r1"})
	require.NoError(t, err)

	require.NoError(t, env.comment.DeleteNode(ctx, author.ID, root.ID))

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCounter)
}

func TestCommentService_DeleteNode_OnlyAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	other := env.createUser(t, "other")
	post := env.createPost(t, author.ID, "first post")
	node, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)

	err = env.comment.DeleteNode(ctx, other.ID, node.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestCommentService_ListByParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")

	for _, text := range []string{"a", "b", "c"} {
		_, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: text})
		require.NoError(t, err)
	}

	list, err := env.comment.ListByParent(ctx, author.ID, models.PostParent(post.ID), "", 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, author.Username, list[0].Author.Username)
}

// Aynı saniyede yazılan kardeşler cursor'la sayfalanırken kaybolmamalı:
// beş yorum art arda (aynı created_at saniyesinde) eklenir, ikişerli
// sayfalarla gezilir ve beşinin de tam olarak bir kez, en yeniden en
// eskiye geldiği doğrulanır.
func TestCommentService_ListByParent_CursorPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "first post")

	texts := []string{"c1", "c2", "c3", "c4", "c5"}
	for _, text := range texts {
		_, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: text})
		require.NoError(t, err)
	}

	var collected []string
	before := ""
	for {
		page, err := env.comment.ListByParent(ctx, author.ID, models.PostParent(post.ID), before, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, c := range page {
			collected = append(collected, c.Text)
		}
		before = page[len(page)-1].ID
	}

	assert.Equal(t, []string{"c5", "c4", "c3", "c2", "c1"}, collected)
}

func TestCommentService_BlockedUserCannotComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	blocked := env.createUser(t, "blocked")
	post := env.createPost(t, author.ID, "first post")

	require.NoError(t, env.block.Block(ctx, author.ID, blocked.ID))

	// Engel NotFound olarak maskelenir, Forbidden değil.
	_, err := env.comment.AddComment(ctx, blocked.ID, post.ID, &models.CreateCommentRequest{Text: "hi"})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
