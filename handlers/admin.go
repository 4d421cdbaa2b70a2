// Package handlers — AdminHandler, platform admin endpoint'leri.
//
// Bu handler sadece platform admin kullanıcılar tarafından erişilebilir.
// PlatformAdminMiddleware tarafından korunur.
//
// Admin dokunulmazlığı: admin hesapları askıya alınamaz ve silinemez —
// bu kontroller service'dedir, handler sadece sonucu iletir.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// AdminHandler, moderasyon endpoint'lerini yöneten struct.
type AdminHandler struct {
	adminService services.AdminService
}

// NewAdminHandler, constructor.
func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// parsePage, limit/offset query parametrelerini okur.
func parsePage(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// ListUsers godoc
// GET /api/admin/users?limit=50&offset=0
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 50, 200)

	users, err := h.adminService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// SetSuspended godoc
// PUT /api/admin/users/{id}/suspended
// Body: { "suspended": true }
// Askıya alınan kullanıcının tüm oturumları düşer ve WS üzerinden bildirilir.
func (h *AdminHandler) SetSuspended(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Suspended bool `json:"suspended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.SetSuspended(r.Context(), r.PathValue("id"), req.Suspended); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]bool{"suspended": req.Suspended})
}

// DeleteUser godoc
// DELETE /api/admin/users/{id}
// Kullanıcıyı tüm içeriğiyle siler (hesap silme cascade'iyle aynı).
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// ListPosts godoc
// GET /api/admin/posts?limit=50&offset=0
func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 50, 200)

	posts, err := h.adminService.ListPosts(r.Context(), limit, offset)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, posts)
}

// RemovePost godoc
// DELETE /api/admin/posts/{id}
// İçerik moderasyonu — silme semantiği normal silmeyle birebir aynı,
// sadece yazarlık kontrolü atlanır.
func (h *AdminHandler) RemovePost(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.RemovePost(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "post removed"})
}

// RemoveComment godoc
// DELETE /api/admin/comments/{id}
func (h *AdminHandler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.RemoveComment(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "comment removed"})
}

// Stats godoc
// GET /api/admin/stats
// Platform özet sayıları: kullanıcı, gönderi, yorum.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.GetStats(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stats)
}
