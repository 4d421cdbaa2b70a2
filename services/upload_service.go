package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/akinalp/meydan/pkg"
)

// UploadService, profil görseli yükleme iş mantığı.
//
// Dosya diske yazılır ve public URL'i döner; DB kaydı yoktur —
// avatar/kapak URL'i users tablosunda yaşar ve UserService tarafından
// yazılır.
type UploadService interface {
	UploadAvatar(file multipart.File, header *multipart.FileHeader) (string, error)
	// UploadCover, kapak fotoğrafı için aynı akış; boyut sınırı avatarın
	// iki katıdır.
	UploadCover(file multipart.File, header *multipart.FileHeader) (string, error)
}

type uploadService struct {
	uploadDir string
	maxSize   int64
}

func NewUploadService(uploadDir string, maxSize int64) UploadService {
	return &uploadService{
		uploadDir: uploadDir,
		maxSize:   maxSize,
	}
}

// allowedAvatarTypes, avatar olarak kabul edilen görüntü formatları.
var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadAvatar, dosyayı doğrular, rastgele isimle diske kaydeder ve
// "/api/uploads/{name}" URL'ini döner.
func (s *uploadService) UploadAvatar(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.saveImage(file, header, s.maxSize)
}

func (s *uploadService) UploadCover(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.saveImage(file, header, 2*s.maxSize)
}

func (s *uploadService) saveImage(file multipart.File, header *multipart.FileHeader, maxSize int64) (string, error) {
	if header.Size > maxSize {
		return "", fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, maxSize/(1024*1024))
	}

	contentType := header.Header.Get("Content-Type")
	// charset gibi parametreler atılır, yalnız base type kalır.
	mimeBase := strings.TrimSpace(strings.Split(contentType, ";")[0])

	if !allowedAvatarTypes[mimeBase] {
		return "", fmt.Errorf("%w: file must be an image (jpeg/png/gif/webp)", pkg.ErrBadRequest)
	}

	// Rastgele prefix çakışmayı önler; orijinal ad sanitize edilerek
	// path traversal kapanır.
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random filename: %w", err)
	}
	diskFilename := hex.EncodeToString(randomBytes) + "_" + sanitizeFilename(header.Filename)

	destPath := filepath.Join(s.uploadDir, diskFilename)
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, file); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return "/api/uploads/" + diskFilename, nil
}

// sanitizeFilename, dizin yolunu ve tehlikeli karakterleri temizler
// (../../etc/passwd gibi girişler etkisiz kalır).
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '\x00' {
			return -1
		}
		return r
	}, name)

	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}

	return name
}
