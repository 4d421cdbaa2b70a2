package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Post, akıştaki bir gönderi.
//
// CommentsCounter yalnızca kök yorumları sayar (reply'ler değil);
// ReactionCounter her zaman reactions tablosundaki satır sayısına eşittir.
// İki sayaç da SQL tarafında atomik increment ile güncellenir,
// okunup geri yazılmaz.
type Post struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"author_id"`
	Text            string    `json:"text"`
	CommentsCounter int       `json:"comments_counter"`
	ReactionCounter int       `json:"reaction_counter"`
	IsFrozen        bool      `json:"is_frozen"`
	AllowComments   bool      `json:"allow_comments"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PostWithAuthor, liste endpoint'lerinde döndürülen zenginleştirilmiş hali.
type PostWithAuthor struct {
	Post
	Author    PublicProfile   `json:"author"`
	Reactions []ReactionGroup `json:"reactions"`
	Tags      []PublicProfile `json:"tags,omitempty"`
}

// CreatePostRequest, gönderi oluşturma isteği. Tags, gönderide
// etiketlenecek kullanıcı id'leridir; yalnızca yazarın arkadaşları
// etiketlenebilir, kontrol service katmanında yapılır.
type CreatePostRequest struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

func (r *CreatePostRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	n := utf8.RuneCountInString(r.Text)
	if n == 0 {
		return fmt.Errorf("text is required")
	}
	if n > 4000 {
		return fmt.Errorf("text must be at most 4000 characters")
	}

	if len(r.Tags) > 20 {
		return fmt.Errorf("at most 20 users can be tagged")
	}
	seen := make(map[string]struct{}, len(r.Tags))
	deduped := r.Tags[:0]
	for _, id := range r.Tags {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("invalid tags")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	r.Tags = deduped
	return nil
}

// UpdatePostRequest, gönderi metni güncelleme isteği.
type UpdatePostRequest struct {
	Text string `json:"text"`
}

func (r *UpdatePostRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	n := utf8.RuneCountInString(r.Text)
	if n == 0 {
		return fmt.Errorf("text is required")
	}
	if n > 4000 {
		return fmt.Errorf("text must be at most 4000 characters")
	}
	return nil
}
