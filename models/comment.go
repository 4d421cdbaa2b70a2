package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// CommentNode, yorum ağacının bir düğümü. Kök yorumlar bir post'a,
// reply'ler başka bir yoruma bağlanır; ikisi de aynı tabloda yaşar
// ve ebeveyn ParentRef ile ayrışır.
//
// RepliesCounter yalnızca canlı doğrudan çocukları sayar.
// IsFrozen açıkken düğüme reply eklenemez; sahibi için de geçerlidir.
type CommentNode struct {
	ID              string     `json:"id"`
	AuthorID        string     `json:"author_id"`
	Parent          ParentRef  `json:"parent"`
	Text            string     `json:"text"`
	RepliesCounter  int        `json:"replies_counter"`
	ReactionCounter int        `json:"reaction_counter"`
	IsFrozen        bool       `json:"is_frozen"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CommentWithAuthor, liste yanıtlarında author profili ve gruplanmış
// reaksiyonlarla zenginleştirilmiş düğüm.
type CommentWithAuthor struct {
	CommentNode
	Author    PublicProfile   `json:"author"`
	Reactions []ReactionGroup `json:"reactions"`
}

// CreateCommentRequest, hem AddComment hem AddReply için metin gövdesi.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

func (r *CreateCommentRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	n := utf8.RuneCountInString(r.Text)
	if n == 0 {
		return fmt.Errorf("text is required")
	}
	if n > 2000 {
		return fmt.Errorf("text must be at most 2000 characters")
	}
	return nil
}

// UpdateCommentRequest, yorum metni güncelleme isteği.
type UpdateCommentRequest struct {
	Text string `json:"text"`
}

func (r *UpdateCommentRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	n := utf8.RuneCountInString(r.Text)
	if n == 0 {
		return fmt.Errorf("text is required")
	}
	if n > 2000 {
		return fmt.Errorf("text must be at most 2000 characters")
	}
	return nil
}
