package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ConversationType, sohbet türü.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

// Conversation, iki kişilik (direct) veya çok kişilik (group) sohbet.
//
// DirectKey yalnızca direct sohbetlerde doludur: iki üyenin id'si
// küçükten büyüğe "low:high" olarak birleştirilir. Partial unique
// index aynı çift için ikinci bir direct kaydını engeller; bu kayıt
// ilk mesajda lazily oluşturulur.
type Conversation struct {
	ID        string           `json:"id"`
	Type      ConversationType `json:"type"`
	Name      *string          `json:"name,omitempty"` // yalnızca group
	DirectKey *string          `json:"-"`
	CreatedBy *string          `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ConversationWithMembers, liste yanıtları için üye profilleri ve
// okunmamış sayısıyla zenginleştirilmiş görünüm.
type ConversationWithMembers struct {
	Conversation
	Members     []PublicProfile `json:"members"`
	UnreadCount int             `json:"unread_count"`
	LastMessage *ChatMessage    `json:"last_message,omitempty"`
}

// ChatMessage, sohbetteki tek mesaj. Content DB'de şifreli durur,
// API'ye çözülmüş döner.
type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatMessageWithSender, mesajı gönderen profiliyle birlikte döner.
type ChatMessageWithSender struct {
	ChatMessage
	Sender PublicProfile `json:"sender"`
}

// CreateGroupRequest, grup sohbeti oluşturma isteği.
// MemberIDs kurucuyu içermez; kurucu otomatik eklenir.
type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

func (r *CreateGroupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	n := utf8.RuneCountInString(r.Name)
	if n == 0 {
		return fmt.Errorf("name is required")
	}
	if n > 64 {
		return fmt.Errorf("name must be at most 64 characters")
	}
	if len(r.MemberIDs) == 0 {
		return fmt.Errorf("at least one member is required")
	}
	if len(r.MemberIDs) > 50 {
		return fmt.Errorf("a group can have at most 50 members")
	}
	seen := make(map[string]bool, len(r.MemberIDs))
	for _, id := range r.MemberIDs {
		if id == "" {
			return fmt.Errorf("member id cannot be empty")
		}
		if seen[id] {
			return fmt.Errorf("duplicate member id: %s", id)
		}
		seen[id] = true
	}
	return nil
}

// SendMessageRequest, mesaj gönderme isteği.
type SendMessageRequest struct {
	Content string `json:"content"`
}

func (r *SendMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	n := utf8.RuneCountInString(r.Content)
	if n == 0 {
		return fmt.Errorf("content is required")
	}
	if n > 4000 {
		return fmt.Errorf("content must be at most 4000 characters")
	}
	return nil
}
