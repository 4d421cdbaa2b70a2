// MaintenanceService — periyodik arka plan bakım job'ı.
//
// Belirli aralıklarla üç iş yapar:
//  1. Sayaç senkronu: posts ve comments tablolarındaki denormalize
//     sayaçlar gerçek satır sayılarına eşitlenir. Normal akışta sayaçlar
//     atomik increment'lerle zaten doğrudur; bu job olası sapmaları
//     (yarıda kalan eski deploy'lar, elle DB müdahalesi) sessizce kapatır
//     ve sapma bulursa loglar — sapma görülüyorsa bir yerde bug vardır.
//  2. Süresi dolmuş refresh oturumlarının temizliği.
//  3. Süresi dolmuş şifre sıfırlama token'larının temizliği.
//  4. Süresi dolmuş tek kullanımlık kodların (OTP) temizliği.
//
// Goroutine pattern: time.NewTicker + select + stopCh
// (pkg/cache/ttl_cache.go ile aynı). Graceful shutdown sırasında
// main.go Stop() çağırır.
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/akinalp/meydan/repository"
)

// MaintenanceService, periyodik bakım job'ı interface'i.
type MaintenanceService interface {
	Start()
	Stop()
	// RunOnce, bir bakım turunu hemen çalıştırır. Ticker beklemeden
	// başlangıçta ve testlerde kullanılır.
	RunOnce(ctx context.Context)
}

type maintenanceService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	otpRepo     repository.OTPRepository

	interval time.Duration
	stopCh   chan struct{}
	mu       sync.Mutex // Start/Stop race koruması
	running  bool
}

// NewMaintenanceService, constructor. interval production'da
// 10*time.Minute civarıdır.
func NewMaintenanceService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	sessionRepo repository.SessionRepository,
	resetRepo repository.PasswordResetRepository,
	otpRepo repository.OTPRepository,
	interval time.Duration,
) MaintenanceService {
	return &maintenanceService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		otpRepo:     otpRepo,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

func (s *maintenanceService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	go s.loop()
	log.Printf("[maintenance] started, interval=%s", s.interval)
}

func (s *maintenanceService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	close(s.stopCh)
	log.Println("[maintenance] stopped")
}

func (s *maintenanceService) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Her tur kendi context'i ve makul bir deadline'ı ile çalışır.
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			s.RunOnce(ctx)
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

func (s *maintenanceService) RunOnce(ctx context.Context) {
	if n, err := s.postRepo.ResyncCounters(ctx); err != nil {
		log.Printf("[maintenance] post counter resync failed: %v", err)
	} else if n > 0 {
		log.Printf("[maintenance] corrected %d drifted post counter(s)", n)
	}

	if n, err := s.commentRepo.ResyncCounters(ctx); err != nil {
		log.Printf("[maintenance] comment counter resync failed: %v", err)
	} else if n > 0 {
		log.Printf("[maintenance] corrected %d drifted comment counter(s)", n)
	}

	if n, err := s.sessionRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[maintenance] session cleanup failed: %v", err)
	} else if n > 0 {
		log.Printf("[maintenance] removed %d expired session(s)", n)
	}

	if n, err := s.resetRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[maintenance] reset token cleanup failed: %v", err)
	} else if n > 0 {
		log.Printf("[maintenance] removed %d expired reset token(s)", n)
	}

	if n, err := s.otpRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[maintenance] otp cleanup failed: %v", err)
	} else if n > 0 {
		log.Printf("[maintenance] removed %d expired otp(s)", n)
	}
}
