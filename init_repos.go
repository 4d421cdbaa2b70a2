// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository bir SQL.DB bağlantısı alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"database/sql"

	"github.com/akinalp/meydan/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı ayrı değişkenler yerine tek struct kullanmak:
// 1. Fonksiyon imzalarını temiz tutar (tek parametre yerine bir düzine parametre)
// 2. Yeni repository eklendiğinde sadece struct + initRepositories güncellenir
// 3. IDE auto-complete ile kolay erişim (repos.User, repos.Post, vb.)
type Repositories struct {
	User         repository.UserRepository
	Session      repository.SessionRepository
	ResetToken   repository.PasswordResetRepository
	OTP          repository.OTPRepository
	Post         repository.PostRepository
	Comment      repository.CommentRepository
	Reaction     repository.ReactionRepository
	Friendship   repository.FriendshipRepository
	Block        repository.BlockRepository
	Conversation repository.ConversationRepository
	Message      repository.MessageRepository
	ReadState    repository.ReadStateRepository
	Admin        repository.AdminRepository
}

// initRepositories, tüm repository'leri aynı DB bağlantısı ile oluşturur.
//
// Not: Service katmanı transaction gereken akışlarda bu instance'ları
// DEĞİL, database.WithTx içinde *sql.Tx üzerinden oluşturulan geçici
// repo'ları kullanır. Buradakiler tekil (transaction'sız) okuma/yazma
// işlemleri içindir.
func initRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(db),
		Session:      repository.NewSQLiteSessionRepo(db),
		ResetToken:   repository.NewSQLiteResetTokenRepo(db),
		OTP:          repository.NewSQLiteOTPRepo(db),
		Post:         repository.NewSQLitePostRepo(db),
		Comment:      repository.NewSQLiteCommentRepo(db),
		Reaction:     repository.NewSQLiteReactionRepo(db),
		Friendship:   repository.NewSQLiteFriendshipRepo(db),
		Block:        repository.NewSQLiteBlockRepo(db),
		Conversation: repository.NewSQLiteConversationRepo(db),
		Message:      repository.NewSQLiteMessageRepo(db),
		ReadState:    repository.NewSQLiteReadStateRepo(db),
		Admin:        repository.NewSQLiteAdminRepo(db),
	}
}
