// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı bir gönderi/yorum/mesaj oluşturur → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToAll (veya BroadcastToUser) metodunu çağırır
// 3. Hub, event'i ilgili client'lara iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
// 5. Frontend event'i alır ve feed/sohbet store'unu günceller
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "post_create", "heartbeat" vb.
// Data: Event'e özgü payload — gönderi objesi, reaction özeti vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Frontend eksik event tespit etmek için seq'i takip eder.
//   Örnek: seq 5'ten sonra seq 7 gelirse, 6 kaybolmuş demektir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ────────────────────────────────────────────
// Operation sabitleri
// ────────────────────────────────────────────

// Client → Server operasyonları
const (
	OpHeartbeat      = "heartbeat"       // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
	OpTyping         = "typing"          // Kullanıcı bir sohbette yazıyor
	OpPresenceUpdate = "presence_update" // Durum değişikliği (online/idle/dnd)
)

// Server → Client operasyonları
const (
	OpReady        = "ready"         // Bağlantı kurulduğunda ilk gönderilen — online kullanıcı listesi
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt — "seni duydum"
	OpTypingStart  = "typing_start"  // Bir kullanıcı sohbette yazıyor
	OpPresence     = "presence_update"

	// Gönderi (post) operasyonları
	OpPostCreate = "post_create" // Yeni gönderi oluşturuldu
	OpPostUpdate = "post_update" // Gönderi düzenlendi (metin, kilit, yorum izni)
	OpPostDelete = "post_delete" // Gönderi ve tüm yorum ağacı silindi

	// Yorum (comment) operasyonları
	OpCommentCreate = "comment_create" // Yeni yorum veya yanıt oluşturuldu
	OpCommentUpdate = "comment_update" // Yorum düzenlendi
	OpCommentDelete = "comment_delete" // Yorum ve alt ağacı silindi

	// Reaction (tepki) operasyonları
	OpReactionUpdate = "reaction_update" // Bir hedefin reaction özeti güncellendi

	// Arkadaşlık operasyonları
	OpFriendRequest = "friend_request" // Yeni arkadaşlık isteği geldi
	OpFriendAccept  = "friend_accept"  // Arkadaşlık isteği kabul edildi
	OpFriendRemove  = "friend_remove"  // Arkadaşlık/istek kaldırıldı (red, iptal veya çıkarma)

	// Sohbet (chat) operasyonları
	OpConversationCreate = "conversation_create" // Yeni konuşma oluşturuldu (direct veya grup)
	OpChatMessageCreate  = "chat_message_create" // Yeni sohbet mesajı gönderildi

	// Kullanıcı operasyonları
	OpUserUpdate     = "user_update"     // Profil güncellendi (görünen ad, bio, avatar)
	OpUserDelete     = "user_delete"     // Hesap silindi
	OpAccountSuspend = "account_suspend" // Hesap admin tarafından donduruldu — client oturumu kapatmalı
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
// Frontend online kullanıcıları Set'e atar (presence indicator için).
type ReadyData struct {
	OnlineUserIDs []string `json:"online_user_ids"`
}

// PresenceData, bir kullanıcının online durumu değiştiğinde broadcast edilen payload.
type PresenceData struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// TypingData, typing event'inin payload'ı (Client → Server).
type TypingData struct {
	ConversationID string `json:"conversation_id"`
}

// TypingStartData, typing_start event'inin payload'ı (broadcast edilen).
// Frontend conversation_id'ye bakarak sadece açık sohbette indicator gösterir.
type TypingStartData struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	ConversationID string `json:"conversation_id"`
}
