// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - auth: JWT token doğrulaması
//   - authAdmin: auth + platform admin yetkisi
package main

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/akinalp/meydan/config"
	"github.com/akinalp/meydan/middleware"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
// Dönen AuthMiddleware, graceful shutdown'da Close() için main'e verilir.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE tanımlanmalı.
// Örnek: "/api/posts/search" → "/api/posts/{id}" öncesinde,
// yoksa Go router "search" kelimesini bir post ID olarak yorumlar.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
	cfg *config.Config,
) *middleware.AuthMiddleware {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	platformAdminMw := middleware.NewPlatformAdminMiddleware()

	// ─── Middleware Chain Helpers ───
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}
	authAdmin := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(platformAdminMw.Require(http.HandlerFunc(handler)))
	}

	// Health check — load balancer / uptime monitoring için, auth'suz.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.Handle("POST /api/auth/logout", auth(h.Auth.Logout))
	mux.HandleFunc("POST /api/auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)
	mux.HandleFunc("POST /api/auth/verify-email", h.Auth.VerifyEmail)

	// User — "me" ve "search" literal'leri "{id}" den önce
	mux.Handle("GET /api/users/me", auth(h.User.Me))
	mux.Handle("PATCH /api/users/me", auth(h.User.UpdateProfile))
	mux.Handle("DELETE /api/users/me", auth(h.User.DeleteAccount))
	mux.Handle("POST /api/users/me/password", auth(h.Auth.ChangePassword))
	mux.Handle("PUT /api/users/me/email", auth(h.Auth.ChangeEmail))
	mux.Handle("POST /api/users/me/avatar", auth(h.Avatar.Upload))
	mux.Handle("POST /api/users/me/cover", auth(h.Avatar.UploadCover))
	mux.Handle("POST /api/users/me/2fa", auth(h.Auth.Enable2FA))
	mux.Handle("POST /api/users/me/2fa/verify", auth(h.Auth.Verify2FA))
	mux.Handle("DELETE /api/users/me/2fa", auth(h.Auth.Disable2FA))
	mux.Handle("GET /api/users/search", auth(h.User.Search))
	mux.Handle("GET /api/users/{id}", auth(h.User.GetProfile))
	mux.Handle("GET /api/users/{id}/posts", auth(h.Post.ListByAuthor))

	// Posts
	mux.Handle("POST /api/posts", auth(h.Post.Create))
	mux.Handle("GET /api/posts", auth(h.Post.Feed))
	mux.Handle("GET /api/posts/search", auth(h.Post.Search))
	mux.Handle("GET /api/posts/{id}", auth(h.Post.Get))
	mux.Handle("PATCH /api/posts/{id}", auth(h.Post.Update))
	mux.Handle("PUT /api/posts/{id}/frozen", auth(h.Post.SetFrozen))
	mux.Handle("PUT /api/posts/{id}/allow-comments", auth(h.Post.SetAllowComments))
	mux.Handle("DELETE /api/posts/{id}", auth(h.Post.Delete))

	// Comments — post altında oluşturma/listeleme, yorum altında reply
	mux.Handle("POST /api/posts/{id}/comments", auth(h.Comment.Create))
	mux.Handle("GET /api/posts/{id}/comments", auth(h.Comment.ListForPost))
	mux.Handle("POST /api/comments/{id}/replies", auth(h.Comment.Reply))
	mux.Handle("GET /api/comments/{id}/replies", auth(h.Comment.ListReplies))
	mux.Handle("GET /api/comments/{id}", auth(h.Comment.Get))
	mux.Handle("PATCH /api/comments/{id}", auth(h.Comment.Update))
	mux.Handle("PUT /api/comments/{id}/frozen", auth(h.Comment.SetFrozen))
	mux.Handle("DELETE /api/comments/{id}", auth(h.Comment.Delete))

	// Reactions — PUT idempotent upsert, DELETE kaldırma
	mux.Handle("PUT /api/posts/{id}/reactions", auth(h.Reaction.ReactToPost))
	mux.Handle("DELETE /api/posts/{id}/reactions", auth(h.Reaction.UnreactPost))
	mux.Handle("GET /api/posts/{id}/reactions", auth(h.Reaction.ListForPost))
	mux.Handle("PUT /api/comments/{id}/reactions", auth(h.Reaction.ReactToComment))
	mux.Handle("DELETE /api/comments/{id}/reactions", auth(h.Reaction.UnreactComment))
	mux.Handle("GET /api/comments/{id}/reactions", auth(h.Reaction.ListForComment))

	// Friendships
	mux.Handle("POST /api/friendships", auth(h.Friendship.SendRequest))
	mux.Handle("GET /api/friendships", auth(h.Friendship.ListFriends))
	mux.Handle("GET /api/friendships/incoming", auth(h.Friendship.ListIncoming))
	mux.Handle("GET /api/friendships/outgoing", auth(h.Friendship.ListOutgoing))
	mux.Handle("POST /api/friendships/{id}/accept", auth(h.Friendship.Accept))
	mux.Handle("DELETE /api/friendships/{id}", auth(h.Friendship.Remove))

	// Blocks
	mux.Handle("PUT /api/blocks/{id}", auth(h.Block.Block))
	mux.Handle("DELETE /api/blocks/{id}", auth(h.Block.Unblock))
	mux.Handle("GET /api/blocks", auth(h.Block.List))

	// Conversations — "direct" ve "group" literal'leri "{id}" den önce
	mux.Handle("POST /api/conversations/direct", auth(h.Chat.ResolveDirect))
	mux.Handle("POST /api/conversations/group", auth(h.Chat.CreateGroup))
	mux.Handle("GET /api/conversations", auth(h.Chat.List))
	mux.Handle("POST /api/conversations/{id}/join", auth(h.Chat.Join))
	mux.Handle("POST /api/conversations/{id}/leave", auth(h.Chat.Leave))
	mux.Handle("POST /api/conversations/{id}/messages", auth(h.Chat.SendMessage))
	mux.Handle("GET /api/conversations/{id}/messages", auth(h.Chat.GetMessages))
	mux.Handle("PUT /api/conversations/{id}/read", auth(h.Chat.MarkRead))

	// Platform Admin
	mux.Handle("GET /api/admin/users", authAdmin(h.Admin.ListUsers))
	mux.Handle("PUT /api/admin/users/{id}/suspended", authAdmin(h.Admin.SetSuspended))
	mux.Handle("DELETE /api/admin/users/{id}", authAdmin(h.Admin.DeleteUser))
	mux.Handle("GET /api/admin/posts", authAdmin(h.Admin.ListPosts))
	mux.Handle("DELETE /api/admin/posts/{id}", authAdmin(h.Admin.RemovePost))
	mux.Handle("DELETE /api/admin/comments/{id}", authAdmin(h.Admin.RemoveComment))
	mux.Handle("GET /api/admin/stats", authAdmin(h.Admin.Stats))

	// Statik upload dosyaları (avatar'lar).
	// Path traversal guard'ı: strip sonrası "/" veya "\" içeren istekler reddedilir.
	mux.HandleFunc("GET /api/uploads/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/uploads/")
		if name == "" || strings.ContainsAny(name, "/\\") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.Upload.Dir, name))
	})

	// WebSocket
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	return authMw
}
