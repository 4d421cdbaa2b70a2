package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// CommentHandler, yorum ağacı endpoint'lerini yöneten struct.
//
// Yorumlar polimorfiktir: kök yorumlar bir post'a, reply'lar bir yoruma
// bağlanır. Handler hangi endpoint'ten geldiğine göre ParentRef kurar,
// gerisini service halleder.
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler, constructor.
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create godoc
// POST /api/posts/{id}/comments
// Body: { "text": "..." }
// Post donmuşsa veya yorumlara kapalıysa 403.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.AddComment(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, comment)
}

// Reply godoc
// POST /api/comments/{id}/replies
// Body: { "text": "..." }
// Ebeveyn yorum donmuşsa sahibi dahil kimse reply ekleyemez → 403.
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.commentService.AddReply(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, reply)
}

// Get godoc
// GET /api/comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	comment, err := h.commentService.GetComment(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, comment)
}

// ListForPost godoc
// GET /api/posts/{id}/comments?before=ID&limit=20
// Post'un kök yorumlarını döner (reply'lar dahil değildir —
// her yorumun reply'ları ayrı endpoint'ten sayfalanır).
func (h *CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	h.listByParent(w, r, models.PostParent(r.PathValue("id")))
}

// ListReplies godoc
// GET /api/comments/{id}/replies?before=ID&limit=20
func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	h.listByParent(w, r, models.CommentParent(r.PathValue("id")))
}

func (h *CommentHandler) listByParent(w http.ResponseWriter, r *http.Request, parent models.ParentRef) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	beforeID := r.URL.Query().Get("before")

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	comments, err := h.commentService.ListByParent(r.Context(), user.ID, parent, beforeID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, comments)
}

// Update godoc
// PATCH /api/comments/{id}
// Body: { "text": "..." }
// Yalnızca yazar.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.commentService.UpdateText(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, comment)
}

// SetFrozen godoc
// PUT /api/comments/{id}/frozen
// Body: { "frozen": true }
// Donmuş yorumun ALTINA reply eklenemez; yorumun kendisi okunabilir kalır.
func (h *CommentHandler) SetFrozen(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req struct {
		Frozen bool `json:"frozen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.commentService.SetFrozen(r.Context(), user.ID, r.PathValue("id"), req.Frozen); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]bool{"frozen": req.Frozen})
}

// Delete godoc
// DELETE /api/comments/{id}
// Yorumu ve TÜM alt ağacını (reply'ların reply'ları dahil) siler.
// Yalnızca yazar — reply'ların yazarları farklı olsa bile ağaç komple gider.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.commentService.DeleteNode(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
