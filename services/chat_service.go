package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/pkg/crypto"
	"github.com/akinalp/meydan/repository"
	"github.com/akinalp/meydan/ws"
)

// ChatService, direct ve grup sohbeti iş kuralları.
//
// Direct sohbet lazily oluşturulur: iki kullanıcı arasındaki kayıt ilk
// ihtiyaçta açılır. Tekillik DB'deki partial unique index'e dayanır;
// iki istek aynı anda sohbet açmaya kalkarsa biri UNIQUE ihlaline
// takılır ve kazananın kaydını BİR kez yeniden okur. Döngü yoktur —
// ikinci okuma da boş dönerse bu bir bug'dır ve hata olarak yüzeye çıkar.
type ChatService interface {
	// ResolveDirect, iki kullanıcı arasındaki direct sohbeti döner;
	// yoksa oluşturur.
	ResolveDirect(ctx context.Context, userID, otherUserID string) (*models.Conversation, error)
	// CreateGroup, grup sohbeti açar. Tüm üyeler kurucunun kabul
	// edilmiş arkadaşı olmalıdır; değilse BadRequest.
	CreateGroup(ctx context.Context, userID string, req *models.CreateGroupRequest) (*models.Conversation, error)
	// JoinGroup, kurucusu arkadaşınız olan bir gruba katılma.
	JoinGroup(ctx context.Context, userID, conversationID string) error
	LeaveGroup(ctx context.Context, userID, conversationID string) error
	SendMessage(ctx context.Context, userID, conversationID string, req *models.SendMessageRequest) (*models.ChatMessageWithSender, error)
	GetMessages(ctx context.Context, userID, conversationID, beforeID string, limit int) ([]models.ChatMessageWithSender, error)
	ListConversations(ctx context.Context, userID string) ([]models.ConversationWithMembers, error)
	// MarkRead, okunma imini messageID'ye taşır.
	MarkRead(ctx context.Context, userID, conversationID, messageID string) error
}

type chatService struct {
	db            *sql.DB
	convRepo      repository.ConversationRepository
	messageRepo   repository.MessageRepository
	readStateRepo repository.ReadStateRepository
	userRepo      repository.UserRepository
	friendRepo    repository.FriendshipRepository
	blockRepo     repository.BlockRepository
	hub           ws.EventPublisher
	limiter       *CommentLimiter // mesaj flood koruması, yorumla aynı mekanizma
	encryptionKey []byte          // nil = mesajlar düz metin saklanır
}

func NewChatService(
	db *sql.DB,
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	readStateRepo repository.ReadStateRepository,
	userRepo repository.UserRepository,
	friendRepo repository.FriendshipRepository,
	blockRepo repository.BlockRepository,
	hub ws.EventPublisher,
	limiter *CommentLimiter,
	encryptionKey []byte,
) ChatService {
	return &chatService{
		db:            db,
		convRepo:      convRepo,
		messageRepo:   messageRepo,
		readStateRepo: readStateRepo,
		userRepo:      userRepo,
		friendRepo:    friendRepo,
		blockRepo:     blockRepo,
		hub:           hub,
		limiter:       limiter,
		encryptionKey: encryptionKey,
	}
}

// DirectKey, iki kullanıcı id'sinden kanonik anahtar üretir.
// Id'ler küçükten büyüğe sıralanır; (A,B) ve (B,A) aynı anahtarı verir.
func DirectKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

func (s *chatService) ResolveDirect(ctx context.Context, userID, otherUserID string) (*models.Conversation, error) {
	if userID == otherUserID {
		return nil, fmt.Errorf("%w: you cannot start a conversation with yourself", pkg.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}

	key := DirectKey(userID, otherUserID)

	conv, err := s.convRepo.GetDirectByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	conv, err = s.createDirect(ctx, userID, otherUserID, key)
	if err == nil {
		return conv, nil
	}

	// UNIQUE ihlali: paralel bir istek aynı sohbeti bizden önce açtı.
	// Kazananın kaydı BİR kez yeniden okunur, tekrar INSERT denenmez.
	if errors.Is(err, pkg.ErrAlreadyExists) {
		conv, reqErr := s.convRepo.GetDirectByKey(ctx, key)
		if reqErr != nil {
			return nil, reqErr
		}
		if conv == nil {
			return nil, fmt.Errorf("direct conversation vanished after unique violation: %s", key)
		}
		return conv, nil
	}

	return nil, err
}

func (s *chatService) CreateGroup(ctx context.Context, userID string, req *models.CreateGroupRequest) (*models.Conversation, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	for _, memberID := range req.MemberIDs {
		if memberID == userID {
			return nil, fmt.Errorf("%w: member list must not include the creator", pkg.ErrBadRequest)
		}

		if _, err := s.userRepo.GetByID(ctx, memberID); err != nil {
			return nil, err
		}

		// Grup yalnızca kabul edilmiş arkadaşlardan kurulur. Engelleme
		// arkadaşlığı zaten düşürdüğü için bu kontrol engeli de kapsar.
		friends, err := s.friendRepo.AreFriends(ctx, userID, memberID)
		if err != nil {
			return nil, err
		}
		if !friends {
			return nil, fmt.Errorf("%w: all group members must be your friends", pkg.ErrBadRequest)
		}
	}

	conv := &models.Conversation{
		Type:      models.ConversationGroup,
		Name:      &req.Name,
		CreatedBy: &userID,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		convRepo := repository.NewSQLiteConversationRepo(tx)

		if err := convRepo.Create(ctx, conv); err != nil {
			return err
		}
		if err := convRepo.AddMember(ctx, conv.ID, userID); err != nil {
			return err
		}
		for _, memberID := range req.MemberIDs {
			if err := convRepo.AddMember(ctx, conv.ID, memberID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, memberID := range req.MemberIDs {
		s.notify(memberID, ws.Event{Op: ws.OpConversationCreate, Data: conv})
	}

	return conv, nil
}

func (s *chatService) JoinGroup(ctx context.Context, userID, conversationID string) error {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	// O id'de bir grup sohbeti yoksa NotFound — direct sohbetin id'si de
	// "yok" sayılır, tipten sohbet varlığı sızdırılmaz.
	if conv.Type != models.ConversationGroup {
		return fmt.Errorf("%w: group conversation", pkg.ErrNotFound)
	}

	if conv.CreatedBy == nil {
		return fmt.Errorf("%w: group has no owner", pkg.ErrForbidden)
	}

	friends, err := s.friendRepo.AreFriends(ctx, userID, *conv.CreatedBy)
	if err != nil {
		return err
	}
	if !friends && userID != *conv.CreatedBy {
		return fmt.Errorf("%w: you must be friends with the group owner to join", pkg.ErrForbidden)
	}

	return s.convRepo.AddMember(ctx, conversationID, userID)
}

func (s *chatService) LeaveGroup(ctx context.Context, userID, conversationID string) error {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if conv.Type != models.ConversationGroup {
		return fmt.Errorf("%w: direct conversations cannot be left", pkg.ErrBadRequest)
	}

	member, err := s.convRepo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: you are not a member of this conversation", pkg.ErrForbidden)
	}

	return s.convRepo.RemoveMember(ctx, conversationID, userID)
}

func (s *chatService) SendMessage(ctx context.Context, userID, conversationID string, req *models.SendMessageRequest) (*models.ChatMessageWithSender, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if s.limiter != nil && !s.limiter.Allow(userID) {
		wait := s.limiter.CooldownSeconds(userID)
		return nil, fmt.Errorf("%w: you're sending messages too fast, wait %d second(s)", pkg.ErrBadRequest, wait)
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	member, err := s.convRepo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: you are not a member of this conversation", pkg.ErrForbidden)
	}

	memberIDs, err := s.convRepo.MemberIDs(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Sohbet açıldıktan SONRA konan engel burada yakalanır: direct
	// sohbette karşı taraf engelliyse mesaj gitmez.
	if conv.Type == models.ConversationDirect {
		for _, id := range memberIDs {
			if id == userID {
				continue
			}
			blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, id)
			if err != nil {
				return nil, err
			}
			if blocked {
				return nil, fmt.Errorf("%w: you cannot message this user", pkg.ErrForbidden)
			}
		}
	}

	stored := req.Content
	if s.encryptionKey != nil {
		stored, err = crypto.Encrypt(req.Content, s.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt message: %w", err)
		}
	}

	message := &models.ChatMessage{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        stored,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// Gönderenin okunma imi kendi mesajına taşınır; kendi mesajı
	// unread görünmesin.
	if err := s.readStateRepo.Upsert(ctx, conversationID, userID, message.ID); err != nil {
		log.Printf("[chat] failed to advance read state for sender %s: %v", userID, err)
	}

	// API'ye ve broadcast'e çözülmüş içerik gider.
	message.Content = req.Content

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &models.ChatMessageWithSender{
		ChatMessage: *message,
		Sender:      sender.Public(),
	}

	for _, memberID := range memberIDs {
		if memberID == userID {
			continue
		}
		s.notify(memberID, ws.Event{Op: ws.OpChatMessageCreate, Data: result})
	}

	return result, nil
}

func (s *chatService) GetMessages(ctx context.Context, userID, conversationID, beforeID string, limit int) ([]models.ChatMessageWithSender, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if _, err := s.convRepo.GetByID(ctx, conversationID); err != nil {
		return nil, err
	}

	member, err := s.convRepo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: you are not a member of this conversation", pkg.ErrForbidden)
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return []models.ChatMessageWithSender{}, nil
	}

	senderIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		senderIDs = append(senderIDs, m.SenderID)
	}

	senders, err := s.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.ChatMessageWithSender, 0, len(messages))
	for _, m := range messages {
		if s.encryptionKey != nil {
			plain, err := crypto.Decrypt(m.Content, s.encryptionKey)
			if err != nil {
				// Anahtar rotasyonu veya bozuk kayıt: mesaj akışı
				// kırılmaz, içerik yerine işaret döner.
				log.Printf("[chat] failed to decrypt message %s: %v", m.ID, err)
				m.Content = "[unreadable message]"
			} else {
				m.Content = plain
			}
		}

		item := models.ChatMessageWithSender{ChatMessage: m}
		if sender, ok := senders[m.SenderID]; ok {
			item.Sender = sender.Public()
		}
		result = append(result, item)
	}

	return result, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]models.ConversationWithMembers, error) {
	convs, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []models.ConversationWithMembers{}, nil
	}

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}

	membersByConv, err := s.convRepo.MembersByConversations(ctx, ids)
	if err != nil {
		return nil, err
	}

	latestByConv, err := s.messageRepo.LatestByConversations(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Tüm sohbetlerin üye profilleri tek batch ile yüklenir.
	var allMemberIDs []string
	for _, memberIDs := range membersByConv {
		allMemberIDs = append(allMemberIDs, memberIDs...)
	}
	profiles, err := s.userRepo.GetByIDs(ctx, allMemberIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.ConversationWithMembers, 0, len(convs))
	for _, c := range convs {
		item := models.ConversationWithMembers{
			Conversation: c,
			Members:      []models.PublicProfile{},
		}

		for _, memberID := range membersByConv[c.ID] {
			if profile, ok := profiles[memberID]; ok {
				item.Members = append(item.Members, profile.Public())
			}
		}

		if latest, ok := latestByConv[c.ID]; ok {
			if s.encryptionKey != nil {
				if plain, err := crypto.Decrypt(latest.Content, s.encryptionKey); err == nil {
					latest.Content = plain
				} else {
					latest.Content = "[unreadable message]"
				}
			}
			item.LastMessage = &latest
		}

		unread, err := s.messageRepo.CountUnread(ctx, c.ID, userID)
		if err != nil {
			return nil, err
		}
		item.UnreadCount = unread

		result = append(result, item)
	}

	return result, nil
}

func (s *chatService) MarkRead(ctx context.Context, userID, conversationID, messageID string) error {
	member, err := s.convRepo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: you are not a member of this conversation", pkg.ErrForbidden)
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.ConversationID != conversationID {
		return fmt.Errorf("%w: message does not belong to this conversation", pkg.ErrBadRequest)
	}

	return s.readStateRepo.Upsert(ctx, conversationID, userID, messageID)
}

// ─── Private Helpers ───

// createDirect, direct kaydını ve iki üyeliği tek transaction'da açar.
func (s *chatService) createDirect(ctx context.Context, userID, otherUserID, key string) (*models.Conversation, error) {
	conv := &models.Conversation{
		Type:      models.ConversationDirect,
		DirectKey: &key,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		convRepo := repository.NewSQLiteConversationRepo(tx)

		if err := convRepo.Create(ctx, conv); err != nil {
			return err
		}
		if err := convRepo.AddMember(ctx, conv.ID, userID); err != nil {
			return err
		}
		return convRepo.AddMember(ctx, conv.ID, otherUserID)
	})
	if err != nil {
		return nil, err
	}

	s.notify(otherUserID, ws.Event{Op: ws.OpConversationCreate, Data: conv})

	return conv, nil
}

func (s *chatService) notify(userID string, event ws.Event) {
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, event)
	}
}
