// Friendship domain modeli.
//
// Arkadaşlık tek tablo üzerinden çalışır:
// - "pending": istek gönderildi, henüz kabul edilmedi
// - "accepted": arkadaşlık aktif
//
// requester_id her zaman isteği gönderen, addressee_id hedef taraftır.
// Engelleme ayrı bir kayıttır (bkz. Block); arkadaşlık durumu değildir.
package models

import (
	"fmt"
	"strings"
	"time"
)

// FriendshipStatus, arkadaşlık durumunu temsil eden typed constant.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
)

// Friendship, bir arkadaşlık kaydı.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FriendshipWithUser, kaydı karşı tarafın profiliyle birlikte döner.
// "Karşı taraf": ben requester isem addressee, addressee isem requester.
// Bu ayrımı SQL'deki CASE yapar, service'e hazır gelir.
type FriendshipWithUser struct {
	ID        string           `json:"id"`
	Status    FriendshipStatus `json:"status"`
	Outgoing  bool             `json:"outgoing"` // isteği ben mi gönderdim
	CreatedAt time.Time        `json:"created_at"`
	// Karşı tarafın bilgileri (JOIN ile gelir)
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	UserStatus  string  `json:"user_status"` // online/idle/dnd/offline
}

// SendFriendRequestRequest, istek gönderme payload'ı.
// Username ile aranır; ID istemcide bilinmeyebilir.
type SendFriendRequestRequest struct {
	Username string `json:"username"`
}

func (r *SendFriendRequestRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Block, bir kullanıcının diğerini engellemesi.
// Engel tek yönlü kayıttır ama etkisi iki yönlüdür: taraflardan biri
// diğerini engellediyse aralarında istek, tepki ve direct sohbet açılmaz.
type Block struct {
	ID        string    `json:"id"`
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
