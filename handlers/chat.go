package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// ChatHandler, sohbet endpoint'lerini yöneten struct.
type ChatHandler struct {
	chatService services.ChatService
}

// NewChatHandler, constructor.
func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ResolveDirect godoc
// POST /api/conversations/direct
// Body: { "user_id": "..." }
//
// İki kullanıcı arasında direct sohbet döner — yoksa oluşturur.
// Aynı çift için her zaman aynı konuşma döner; iki taraf aynı anda
// istese bile tek kayıt oluşur.
func (h *ChatHandler) ResolveDirect(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user_id is required")
		return
	}

	conv, err := h.chatService.ResolveDirect(r.Context(), user.ID, req.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conv)
}

// CreateGroup godoc
// POST /api/conversations/group
// Body: { "name": "...", "member_ids": ["..."] }
// Tüm üyeler kurucunun kabul edilmiş arkadaşı olmalıdır.
func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.chatService.CreateGroup(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, conv)
}

// Join godoc
// POST /api/conversations/{id}/join
// Kurucusu arkadaşınız olan bir gruba katılma.
func (h *ChatHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.chatService.JoinGroup(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "joined conversation"})
}

// Leave godoc
// POST /api/conversations/{id}/leave
func (h *ChatHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.chatService.LeaveGroup(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "left conversation"})
}

// List godoc
// GET /api/conversations
// Kullanıcının konuşmaları: üyeler, son mesaj ve okunmamış sayısıyla.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	convs, err := h.chatService.ListConversations(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, convs)
}

// SendMessage godoc
// POST /api/conversations/{id}/messages
// Body: { "content": "..." }
// Sadece üyeler; direct sohbette karşı taraf engellemişse 403.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.chatService.SendMessage(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, message)
}

// GetMessages godoc
// GET /api/conversations/{id}/messages?before=ID&limit=50
// Mesajları cursor-based pagination ile döner. Sadece üyeler.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	beforeID := r.URL.Query().Get("before")

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	messages, err := h.chatService.GetMessages(r.Context(), user.ID, r.PathValue("id"), beforeID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messages)
}

// MarkRead godoc
// PUT /api/conversations/{id}/read
// Body: { "message_id": "..." }
// Okunma imini verilen mesaja taşır — okunmamış sayacı buradan hesaplanır.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req struct {
		MessageID string `json:"message_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.MessageID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "message_id is required")
		return
	}

	if err := h.chatService.MarkRead(r.Context(), user.ID, r.PathValue("id"), req.MessageID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "read state updated"})
}
