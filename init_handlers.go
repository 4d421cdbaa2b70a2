// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/meydan/config"
	"github.com/akinalp/meydan/handlers"
	"github.com/akinalp/meydan/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Post       *handlers.PostHandler
	Comment    *handlers.CommentHandler
	Reaction   *handlers.ReactionHandler
	Friendship *handlers.FriendshipHandler
	Block      *handlers.BlockHandler
	Chat       *handlers.ChatHandler
	Admin      *handlers.AdminHandler
	Avatar     *handlers.AvatarHandler
	WS         *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		User:       handlers.NewUserHandler(svcs.User),
		Post:       handlers.NewPostHandler(svcs.Post),
		Comment:    handlers.NewCommentHandler(svcs.Comment),
		Reaction:   handlers.NewReactionHandler(svcs.Reaction),
		Friendship: handlers.NewFriendshipHandler(svcs.Friendship),
		Block:      handlers.NewBlockHandler(svcs.Block),
		Chat:       handlers.NewChatHandler(svcs.Chat),
		Admin:      handlers.NewAdminHandler(svcs.Admin),
		Avatar:     handlers.NewAvatarHandler(svcs.Upload, svcs.User, cfg.Upload.MaxSize),
		WS:         ws.NewHandler(hub, svcs.Auth),
	}
}
