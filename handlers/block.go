package handlers

import (
	"net/http"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// BlockHandler, engelleme endpoint'lerini yöneten struct.
type BlockHandler struct {
	blockService services.BlockService
}

// NewBlockHandler, constructor.
func NewBlockHandler(blockService services.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// Block godoc
// PUT /api/blocks/{id}
// Kullanıcıyı engeller. Varsa aradaki arkadaşlık da silinir.
// Idempotent: zaten engelliyse yine 200 döner.
func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.blockService.Block(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user blocked"})
}

// Unblock godoc
// DELETE /api/blocks/{id}
// Engeli kaldırır. Engel yoksa 404.
func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.blockService.Unblock(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user unblocked"})
}

// List godoc
// GET /api/blocks
// Engellediğim kullanıcıların profilleri.
func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	blocked, err := h.blockService.ListBlocked(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, blocked)
}
