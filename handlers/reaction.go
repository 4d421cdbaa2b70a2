package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// ReactionHandler, tepki endpoint'lerini yöneten struct.
//
// Tepkiler de yorumlar gibi polimorfiktir: hem post'lara hem yorumlara
// bırakılabilir. Her hedef için aynı üçlü vardır: bırak (PUT), kaldır
// (DELETE), listele (GET).
type ReactionHandler struct {
	reactionService services.ReactionService
}

// NewReactionHandler, constructor.
func NewReactionHandler(reactionService services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// ReactToPost godoc
// PUT /api/posts/{id}/reactions
// Body: { "type": "like" }
//
// Upsert semantiği:
// - Tepki yoksa → oluşturulur, sayaç +1
// - Aynı türde tepki varsa → 409, hiçbir şey değişmez
// - Farklı türde tepki varsa → tür değişir, sayaç AYNI kalır
func (h *ReactionHandler) ReactToPost(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.PostParent(r.PathValue("id")))
}

// ReactToComment godoc
// PUT /api/comments/{id}/reactions
func (h *ReactionHandler) ReactToComment(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.CommentParent(r.PathValue("id")))
}

func (h *ReactionHandler) react(w http.ResponseWriter, r *http.Request, parent models.ParentRef) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reaction, err := h.reactionService.React(r.Context(), user.ID, parent, req.Type)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, reaction)
}

// UnreactPost godoc
// DELETE /api/posts/{id}/reactions
// Kullanıcının bu hedefteki tepkisini kaldırır. Tepki yoksa 404.
func (h *ReactionHandler) UnreactPost(w http.ResponseWriter, r *http.Request) {
	h.unreact(w, r, models.PostParent(r.PathValue("id")))
}

// UnreactComment godoc
// DELETE /api/comments/{id}/reactions
func (h *ReactionHandler) UnreactComment(w http.ResponseWriter, r *http.Request) {
	h.unreact(w, r, models.CommentParent(r.PathValue("id")))
}

func (h *ReactionHandler) unreact(w http.ResponseWriter, r *http.Request, parent models.ParentRef) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.reactionService.Unreact(r.Context(), user.ID, parent); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "reaction removed"})
}

// ListForPost godoc
// GET /api/posts/{id}/reactions
// Tür bazında gruplanmış tepkiler: [{ "type": "like", "count": 3, "users": [...] }]
func (h *ReactionHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.PostParent(r.PathValue("id")))
}

// ListForComment godoc
// GET /api/comments/{id}/reactions
func (h *ReactionHandler) ListForComment(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.CommentParent(r.PathValue("id")))
}

func (h *ReactionHandler) list(w http.ResponseWriter, r *http.Request, parent models.ParentRef) {
	groups, err := h.reactionService.ListReactions(r.Context(), parent)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, groups)
}
