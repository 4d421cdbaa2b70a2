// Package handlers — AvatarHandler: avatar ve kapak fotoğrafı yükleme
// endpoint'leri.
//
// Upload akışı iki adımdır:
// 1. UploadService dosyayı doğrular (sadece görsel) ve diske yazar
// 2. UserService URL'i kullanıcı kaydına işler ve broadcast eder
//
// Bu ayrım sayesinde dosya G/Ç'si ile DB güncellemesi ayrı test edilir.
package handlers

import (
	"net/http"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/pkg"
	"github.com/akinalp/meydan/services"
)

// AvatarHandler, avatar upload endpoint'ini yöneten struct.
type AvatarHandler struct {
	uploadService services.UploadService
	userService   services.UserService
	maxUploadSize int64
}

// NewAvatarHandler, constructor.
func NewAvatarHandler(uploadService services.UploadService, userService services.UserService, maxUploadSize int64) *AvatarHandler {
	return &AvatarHandler{
		uploadService: uploadService,
		userService:   userService,
		maxUploadSize: maxUploadSize,
	}
}

// Upload godoc
// POST /api/users/me/avatar
// multipart/form-data, field adı: "avatar"
//
// Sadece görsel dosyaları kabul edilir (jpeg, png, gif, webp).
// Başarılı yüklemede yeni avatar URL'i döner ve user_update broadcast edilir.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	// ParseMultipartForm: body'yi multipart form olarak parse eder.
	// maxUploadSize bellek limitini belirler — aşan kısım geçici dosyaya yazılır.
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	avatarURL, err := h.uploadService.UploadAvatar(file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.userService.UpdateAvatar(r.Context(), user.ID, avatarURL); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"avatar_url": avatarURL})
}

// UploadCover godoc
// POST /api/users/me/cover
// multipart/form-data, field adı: "cover"
func (h *AvatarHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := r.ParseMultipartForm(2 * h.maxUploadSize); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "cover file is required")
		return
	}
	defer file.Close()

	coverURL, err := h.uploadService.UploadCover(file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.userService.UpdateCover(r.Context(), user.ID, coverURL); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"cover_url": coverURL})
}
