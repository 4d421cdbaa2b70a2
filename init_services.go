// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/akinalp/meydan/config"
	"github.com/akinalp/meydan/pkg/email"
	"github.com/akinalp/meydan/pkg/ratelimit"
	"github.com/akinalp/meydan/services"
	"github.com/akinalp/meydan/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Post        services.PostService
	Comment     services.CommentService
	Reaction    services.ReactionService
	Friendship  services.FriendshipService
	Block       services.BlockService
	Chat        services.ChatService
	Admin       services.AdminService
	Upload      services.UploadService
	Maintenance services.MaintenanceService
}

// RateLimiters, tüm rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login   *ratelimit.LoginRateLimiter
	Compose *ratelimit.ComposeRateLimiter
}

// initServices, tüm service'leri ve rate limiter'ları oluşturur.
//
// hub ve encryptionKey service'ler arası paylaşılan dependency'lerdir.
// composeLimiter hem yorum hem chat mesajı yazma akışlarında ortaktır:
// kullanıcı başına tek kota, iki yüzeye bölünmez.
func initServices(db *sql.DB, repos *Repositories, hub ws.EventPublisher, cfg *config.Config, encryptionKey []byte) (*Services, *RateLimiters) {
	// ─── Email service (opsiyonel) ───
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromEmail != "" && cfg.Email.AppURL != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Printf("[main] email service enabled (from=%s)", cfg.Email.FromEmail)
	} else {
		log.Println("[main] email service disabled (RESEND_API_KEY, RESEND_FROM or APP_URL not set)")
	}

	// ─── Rate Limiters ───
	loginLimiter := ratelimit.NewLoginRateLimiter(5, 2*time.Minute)
	composeLimiter := ratelimit.NewComposeRateLimiter(5, 5*time.Second, 15*time.Second)

	commentLimiter := &services.CommentLimiter{
		Allow:           composeLimiter.Allow,
		CooldownSeconds: composeLimiter.CooldownSeconds,
	}

	// ─── Service'ler ───
	authService := services.NewAuthService(
		repos.User, repos.Session, repos.ResetToken, repos.OTP, emailSender,
		cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry,
	)

	userService := services.NewUserService(
		db, repos.User, repos.Post, repos.Comment, repos.Reaction, repos.Block, hub,
	)
	postService := services.NewPostService(
		db, repos.Post, repos.Comment, repos.Reaction, repos.User, repos.Block, repos.Friendship, hub,
	)
	commentService := services.NewCommentService(
		db, repos.Comment, repos.Post, repos.User, repos.Reaction, repos.Block, hub, commentLimiter,
	)
	reactionService := services.NewReactionService(
		db, repos.Reaction, repos.Post, repos.Comment, repos.Block, hub,
	)
	friendshipService := services.NewFriendshipService(repos.Friendship, repos.User, repos.Block, hub)
	blockService := services.NewBlockService(db, repos.Block, repos.Friendship, repos.User)
	chatService := services.NewChatService(
		db, repos.Conversation, repos.Message, repos.ReadState,
		repos.User, repos.Friendship, repos.Block, hub, commentLimiter, encryptionKey,
	)
	adminService := services.NewAdminService(
		db, repos.Admin, repos.User, repos.Post, repos.Comment, repos.Session,
		postService, commentService, hub,
	)
	uploadService := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize)

	// ─── Periyodik temizlik (süresi dolmuş session/reset token/otp, sayaç senkronu) ───
	maintenanceService := services.NewMaintenanceService(
		repos.Post, repos.Comment, repos.Session, repos.ResetToken, repos.OTP,
		1*time.Hour,
	)

	svcs := &Services{
		Auth:        authService,
		User:        userService,
		Post:        postService,
		Comment:     commentService,
		Reaction:    reactionService,
		Friendship:  friendshipService,
		Block:       blockService,
		Chat:        chatService,
		Admin:       adminService,
		Upload:      uploadService,
		Maintenance: maintenanceService,
	}

	limiters := &RateLimiters{
		Login:   loginLimiter,
		Compose: composeLimiter,
	}

	return svcs, limiters
}
