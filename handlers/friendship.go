// Package handlers — FriendshipHandler: arkadaşlık HTTP endpoint'leri.
//
// Thin handler prensibi: Parse → Service → Response.
// Tüm endpoint'ler auth middleware gerektirir (ek permission gerekmez).
//
// İstek reddetme, geri çekme ve arkadaşlıktan çıkarma tek endpoint'tir
// (DELETE /api/friendships/{id}) — üçü de kaydın silinmesidir, yetki
// kontrolü service'de yapılır.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// FriendshipHandler, arkadaşlık endpoint'lerini yöneten struct.
type FriendshipHandler struct {
	friendshipService services.FriendshipService
}

// NewFriendshipHandler, constructor.
func NewFriendshipHandler(friendshipService services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// SendRequest godoc
// POST /api/friendships
// Body: { "username": "hedef_kullanici" }
//
// Karşı taraftan bekleyen bir istek zaten varsa iki istek otomatik
// olarak kabul edilmiş arkadaşlığa dönüşür.
func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	friendship, err := h.friendshipService.SendRequest(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, friendship)
}

// Accept godoc
// POST /api/friendships/{id}/accept
// Yalnızca isteğin muhatabı (addressee) kabul edebilir.
func (h *FriendshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.AcceptRequest(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "friend request accepted"})
}

// Remove godoc
// DELETE /api/friendships/{id}
// İstek reddetme / geri çekme / arkadaşlıktan çıkarma — hepsi bu endpoint.
func (h *FriendshipHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.RemoveFriendship(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "friendship removed"})
}

// ListFriends godoc
// GET /api/friendships
// Kabul edilmiş arkadaşlar, karşı tarafın profiliyle birlikte.
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	friends, err := h.friendshipService.ListFriends(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, friends)
}

// ListIncoming godoc
// GET /api/friendships/incoming
// Bana gelen bekleyen istekler.
func (h *FriendshipHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	requests, err := h.friendshipService.ListIncoming(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, requests)
}

// ListOutgoing godoc
// GET /api/friendships/outgoing
// Benim gönderdiğim bekleyen istekler.
func (h *FriendshipHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	requests, err := h.friendshipService.ListOutgoing(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, requests)
}
