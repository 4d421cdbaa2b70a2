package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
)

func TestPostService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "merhaba dünya")

	got, err := env.post.GetPost(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "merhaba dünya", got.Text)
	assert.Equal(t, author.Username, got.Author.Username)
	assert.True(t, got.AllowComments, "comments are allowed by default")
	assert.False(t, got.IsFrozen)
}

func TestPostService_Create_EmptyText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")

	_, err := env.post.CreatePost(ctx, author.ID, &models.CreatePostRequest{Text: "  "})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestPostService_CreateWithTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	friend := env.createUser(t, "friend")
	env.befriend(t, author, friend)

	post, err := env.post.CreatePost(ctx, author.ID, &models.CreatePostRequest{
		Text: "birlikte",
		Tags: []string{friend.ID},
	})
	require.NoError(t, err)

	got, err := env.post.GetPost(ctx, author.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "friend", got.Tags[0].Username)

	// Liste zenginleştirmesi de etiketleri taşır.
	feed, err := env.post.GetFeed(ctx, author.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Len(t, feed[0].Tags, 1)
	assert.Equal(t, friend.ID, feed[0].Tags[0].ID)
}

func TestPostService_CreateWithTags_OnlyFriends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")

	// Arkadaş olmayan kullanıcı etiketlenemez.
	_, err := env.post.CreatePost(ctx, author.ID, &models.CreatePostRequest{
		Text: "olmaz",
		Tags: []string{stranger.ID},
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Var olmayan kullanıcı da etiketlenemez.
	_, err = env.post.CreatePost(ctx, author.ID, &models.CreatePostRequest{
		Text: "olmaz",
		Tags: []string{"nonexistent-id"},
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Yazar kendini etiketleyemez.
	_, err = env.post.CreatePost(ctx, author.ID, &models.CreatePostRequest{
		Text: "olmaz",
		Tags: []string{author.ID},
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestPostService_Feed_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	env.createPost(t, author.ID, "first")
	env.createPost(t, author.ID, "second")
	env.createPost(t, author.ID, "third")

	feed, err := env.post.GetFeed(ctx, author.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "third", feed[0].Text)
	assert.Equal(t, "first", feed[2].Text)
}

func TestPostService_Feed_FiltersBlocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	viewer := env.createUser(t, "viewer")
	env.createPost(t, author.ID, "gizli")
	env.createPost(t, viewer.ID, "benim")

	require.NoError(t, env.block.Block(ctx, author.ID, viewer.ID))

	// Engel iki yönlü eler: engelleyenin gönderileri engellenene görünmez.
	feed, err := env.post.GetFeed(ctx, viewer.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "benim", feed[0].Text)

	// Tekil erişim de maskelenir.
	posts, err := env.posts.ListByAuthor(ctx, author.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	_, err = env.post.GetPost(ctx, viewer.ID, posts[0].ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestPostService_UpdateText_OnlyAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	other := env.createUser(t, "other")
	post := env.createPost(t, author.ID, "orijinal")

	_, err := env.post.UpdateText(ctx, other.ID, post.ID, &models.UpdatePostRequest{Text: "saldırı"})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	updated, err := env.post.UpdateText(ctx, author.ID, post.ID, &models.UpdatePostRequest{Text: "düzeltildi"})
	require.NoError(t, err)
	assert.Equal(t, "düzeltildi", updated.Text)
}

func TestPostService_DeletePost_CascadesTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "silinecek")

	root, err := env.comment.AddComment(ctx, author.ID, post.ID, &models.CreateCommentRequest{Text: "root"})
	require.NoError(t, err)
	reply, err := env.comment.AddReply(ctx, author.ID, root.ID, &models.CreateCommentRequest{Text: "reply"})
	require.NoError(t, err)
	_, err = env.reaction.React(ctx, author.ID, models.PostParent(post.ID), models.ReactionLike)
	require.NoError(t, err)
	_, err = env.reaction.React(ctx, author.ID, models.CommentParent(reply.ID), models.ReactionLove)
	require.NoError(t, err)

	require.NoError(t, env.post.DeletePost(ctx, author.ID, post.ID))

	_, err = env.posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.comments.GetByID(ctx, root.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.comments.GetByID(ctx, reply.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	groups, err := env.reactions.GroupByParent(ctx, models.CommentParent(reply.ID))
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestPostService_DeletePost_OnlyAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	other := env.createUser(t, "other")
	post := env.createPost(t, author.ID, "benim")

	err := env.post.DeletePost(ctx, other.ID, post.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestPostService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	env.createPost(t, author.ID, "gophers love concurrency")
	env.createPost(t, author.ID, "cats love naps")

	results, total, err := env.post.Search(ctx, "concurrency", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text, "concurrency")

	// "love" iki gönderiyi de bulur.
	_, total, err = env.post.Search(ctx, "love", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestUserService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	leaver := env.createUser(t, "leaver")
	post := env.createPost(t, author.ID, "kalıcı")

	// leaver yorum bırakır ve tepki verir; hesabı silinince ikisi de
	// temizlenir, sayaçlar düşer.
	_, err := env.comment.AddComment(ctx, leaver.ID, post.ID, &models.CreateCommentRequest{Text: "bye"})
	require.NoError(t, err)
	_, err = env.reaction.React(ctx, leaver.ID, models.PostParent(post.ID), models.ReactionLike)
	require.NoError(t, err)

	require.NoError(t, env.user.DeleteAccount(ctx, leaver.ID, &models.DeleteAccountRequest{Password: "password123"}))

	_, err = env.users.GetByID(ctx, leaver.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCounter)
	assert.Equal(t, 0, got.ReactionCounter)
}

func TestUserService_DeleteAccount_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	leaver := env.createUser(t, "leaver")

	err := env.user.DeleteAccount(ctx, leaver.ID, &models.DeleteAccountRequest{Password: "nope-nope"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}
