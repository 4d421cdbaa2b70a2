package models

import (
	"fmt"
	"time"
)

// ReactionType, izin verilen tepki türleri.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ValidReactionType, türün bilinen kümede olduğunu kontrol eder.
func ValidReactionType(t ReactionType) bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// Reaction, bir kullanıcının bir post'a veya yoruma verdiği tepki.
//
// UNIQUE(parent_kind, parent_id, user_id) constraint'i kullanıcı başına
// entity başına tek satır garanti eder; tür değiştirmek satırı update
// eder, yenisini eklemez.
type Reaction struct {
	ID        string       `json:"id"`
	Parent    ParentRef    `json:"parent"`
	UserID    string       `json:"user_id"`
	Type      ReactionType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}

// ReactionGroup, bir entity'deki aynı türün toplu görünümü.
// Örnek: like 3 [user1, user2, user3]
type ReactionGroup struct {
	Type  ReactionType `json:"type"`
	Count int          `json:"count"`
	Users []string     `json:"users"`
}

// ReactRequest, tepki ekleme/değiştirme isteği.
type ReactRequest struct {
	Type ReactionType `json:"type"`
}

func (r *ReactRequest) Validate() error {
	if !ValidReactionType(r.Type) {
		return fmt.Errorf("invalid reaction type: %q", r.Type)
	}
	return nil
}
