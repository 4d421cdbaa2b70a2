package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/ws"
	"github.com/google/uuid"
)

// FriendshipService, arkadaşlık iş kuralları.
//
// Engel maskesi: taraflardan biri diğerini engellediyse istek
// gönderilemez ve hata NotFound'dur, Forbidden değil — kimin kimi
// engellediği API üzerinden okunamaz.
type FriendshipService interface {
	// SendRequest, username'e istek gönderir. Karşı taraftan bekleyen
	// bir istek varsa iki istek otomatik arkadaşlığa dönüşür.
	SendRequest(ctx context.Context, userID string, req *models.SendFriendRequestRequest) (*models.Friendship, error)
	// AcceptRequest, bekleyen isteği kabul eder. Yalnızca addressee.
	AcceptRequest(ctx context.Context, userID, friendshipID string) error
	// RemoveFriendship, kaydı siler: istek reddetme (addressee),
	// istek geri çekme (requester) ve arkadaşlıktan çıkarma aynı
	// operasyondur. Yalnızca taraflar.
	RemoveFriendship(ctx context.Context, userID, friendshipID string) error
	ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
}

type friendshipService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	blockRepo      repository.BlockRepository
	hub            ws.EventPublisher
}

func NewFriendshipService(
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	hub ws.EventPublisher,
) FriendshipService {
	return &friendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		blockRepo:      blockRepo,
		hub:            hub,
	}
}

func (s *friendshipService) SendRequest(ctx context.Context, userID string, req *models.SendFriendRequestRequest) (*models.Friendship, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	target, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if target.ID == userID {
		return nil, fmt.Errorf("%w: you cannot send a friend request to yourself", pkg.ErrBadRequest)
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if blocked {
		// Engel bilgisi sızdırılmaz — kullanıcı yokmuş gibi davranılır.
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}

	existing, err := s.friendshipRepo.GetByPair(ctx, userID, target.ID)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		switch {
		case existing.Status == models.FriendshipStatusAccepted:
			return nil, fmt.Errorf("%w: you are already friends", pkg.ErrAlreadyExists)

		case existing.RequesterID == userID:
			return nil, fmt.Errorf("%w: friend request already sent", pkg.ErrAlreadyExists)

		default:
			// Karşı taraf zaten bana istek göndermiş; iki niyet
			// örtüşüyor, kayıt doğrudan accepted olur.
			if err := s.friendshipRepo.UpdateStatus(ctx, existing.ID, models.FriendshipStatusAccepted); err != nil {
				return nil, err
			}
			existing.Status = models.FriendshipStatusAccepted

			s.notify(existing.RequesterID, ws.Event{Op: ws.OpFriendAccept, Data: existing})
			s.notify(existing.AddresseeID, ws.Event{Op: ws.OpFriendAccept, Data: existing})

			return existing, nil
		}
	}

	friendship := &models.Friendship{
		ID:          uuid.NewString(),
		RequesterID: userID,
		AddresseeID: target.ID,
		Status:      models.FriendshipStatusPending,
	}

	if err := s.friendshipRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	s.notify(target.ID, ws.Event{Op: ws.OpFriendRequest, Data: friendship})

	return friendship, nil
}

func (s *friendshipService) AcceptRequest(ctx context.Context, userID, friendshipID string) error {
	friendship, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}

	// Yalnızca isteğin hedefi kabul edebilir; requester kendi isteğini
	// kabul edemez.
	if friendship.AddresseeID != userID {
		return fmt.Errorf("%w: only the addressee can accept this request", pkg.ErrForbidden)
	}

	if friendship.Status != models.FriendshipStatusPending {
		return fmt.Errorf("%w: request is not pending", pkg.ErrBadRequest)
	}

	if err := s.friendshipRepo.UpdateStatus(ctx, friendshipID, models.FriendshipStatusAccepted); err != nil {
		return err
	}

	friendship.Status = models.FriendshipStatusAccepted
	s.notify(friendship.RequesterID, ws.Event{Op: ws.OpFriendAccept, Data: friendship})

	return nil
}

func (s *friendshipService) RemoveFriendship(ctx context.Context, userID, friendshipID string) error {
	friendship, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}

	if friendship.RequesterID != userID && friendship.AddresseeID != userID {
		return fmt.Errorf("%w: you are not part of this friendship", pkg.ErrForbidden)
	}

	if err := s.friendshipRepo.Delete(ctx, friendshipID); err != nil {
		return err
	}

	// Karşı tarafa haber verilir; listesinden düşsün.
	other := friendship.RequesterID
	if other == userID {
		other = friendship.AddresseeID
	}
	s.notify(other, ws.Event{Op: ws.OpFriendRemove, Data: map[string]any{"id": friendshipID}})

	return nil
}

func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListFriends(ctx, userID)
}

func (s *friendshipService) ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListIncoming(ctx, userID)
}

func (s *friendshipService) ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListOutgoing(ctx, userID)
}

func (s *friendshipService) notify(userID string, event ws.Event) {
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, event)
	}
}
