package services

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/ws"
)

// nopHub, testlerde WebSocket broadcast'lerini yutan EventPublisher.
type nopHub struct{}

func (nopHub) BroadcastToAll(ws.Event)                  {}
func (nopHub) BroadcastToAllExcept(string, ws.Event)    {}
func (nopHub) BroadcastToUser(string, ws.Event)         {}
func (nopHub) GetOnlineUserIDs() []string               { return nil }

// testEnv, gerçek (geçici dosya) SQLite üzerinde tam service katmanı.
// In-memory yerine dosya kullanıyoruz: WAL pragma'sı ve eşzamanlılık
// testleri gerçek dosya davranışını gerektirir.
type testEnv struct {
	db *database.DB

	users       repository.UserRepository
	sessions    repository.SessionRepository
	resets      repository.PasswordResetRepository
	otps        repository.OTPRepository
	posts       repository.PostRepository
	comments    repository.CommentRepository
	reactions   repository.ReactionRepository
	friendships repository.FriendshipRepository
	blocks      repository.BlockRepository

	auth       AuthService
	user       UserService
	post       PostService
	comment    CommentService
	reaction   ReactionService
	friendship FriendshipService
	block      BlockService
	chat       ChatService
	admin      AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	sessionRepo := repository.NewSQLiteSessionRepo(db.Conn)
	resetRepo := repository.NewSQLiteResetTokenRepo(db.Conn)
	otpRepo := repository.NewSQLiteOTPRepo(db.Conn)
	postRepo := repository.NewSQLitePostRepo(db.Conn)
	commentRepo := repository.NewSQLiteCommentRepo(db.Conn)
	reactionRepo := repository.NewSQLiteReactionRepo(db.Conn)
	friendshipRepo := repository.NewSQLiteFriendshipRepo(db.Conn)
	blockRepo := repository.NewSQLiteBlockRepo(db.Conn)
	convRepo := repository.NewSQLiteConversationRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)
	readStateRepo := repository.NewSQLiteReadStateRepo(db.Conn)

	hub := nopHub{}

	env := &testEnv{
		db:          db,
		users:       userRepo,
		sessions:    sessionRepo,
		resets:      resetRepo,
		otps:        otpRepo,
		posts:       postRepo,
		comments:    commentRepo,
		reactions:   reactionRepo,
		friendships: friendshipRepo,
		blocks:      blockRepo,
	}

	env.auth = NewAuthService(userRepo, sessionRepo, resetRepo, otpRepo, nil, "test-secret", 15, 7)
	env.user = NewUserService(db.Conn, userRepo, postRepo, commentRepo, reactionRepo, blockRepo, hub)
	env.post = NewPostService(db.Conn, postRepo, commentRepo, reactionRepo, userRepo, blockRepo, friendshipRepo, hub)
	env.comment = NewCommentService(db.Conn, commentRepo, postRepo, userRepo, reactionRepo, blockRepo, hub, nil)
	env.reaction = NewReactionService(db.Conn, reactionRepo, postRepo, commentRepo, blockRepo, hub)
	env.friendship = NewFriendshipService(friendshipRepo, userRepo, blockRepo, hub)
	env.block = NewBlockService(db.Conn, blockRepo, friendshipRepo, userRepo)
	env.chat = NewChatService(db.Conn, convRepo, messageRepo, readStateRepo, userRepo, friendshipRepo, blockRepo, hub, nil, nil)
	env.admin = NewAdminService(db.Conn, repository.NewSQLiteAdminRepo(db.Conn), userRepo, postRepo, commentRepo, sessionRepo, env.post, env.comment, hub)

	return env
}

// promoteAdmin, kullanıcıyı platform admin yapar. Admin yetkisi normal
// API'den verilemediği için test doğrudan DB'ye yazar.
func (e *testEnv) promoteAdmin(t *testing.T, userID string) {
	t.Helper()

	_, err := e.db.Conn.Exec("UPDATE users SET is_platform_admin = 1 WHERE id = ?", userID)
	require.NoError(t, err)
}

// createUser, Register üzerinden kullanıcı açar ve kaydı döner.
func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	tokens, err := e.auth.Register(context.Background(), &models.CreateUserRequest{
		Username: username,
		Password: "password123",
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return &tokens.User
}

// createPost, verilen kullanıcı adına bir gönderi açar.
func (e *testEnv) createPost(t *testing.T, userID, text string) *models.Post {
	t.Helper()

	post, err := e.post.CreatePost(context.Background(), userID, &models.CreatePostRequest{Text: text})
	require.NoError(t, err)
	return post
}

// befriend, iki kullanıcıyı istek + kabul akışıyla arkadaş yapar.
func (e *testEnv) befriend(t *testing.T, a, b *models.User) {
	t.Helper()

	ctx := context.Background()
	fr, err := e.friendship.SendRequest(ctx, a.ID, &models.SendFriendRequestRequest{Username: b.Username})
	require.NoError(t, err)
	require.NoError(t, e.friendship.AcceptRequest(ctx, b.ID, fr.ID))
}
