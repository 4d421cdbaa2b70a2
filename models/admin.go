package models

// AdminUserListItem, admin panelde gösterilen kullanıcı satırı.
// İstatistikler tek SQL sorgusuyla toplanır (correlated subquery pattern).
// PasswordHash ve email hash'i gibi alanlar bu projeksiyona hiç girmez.
type AdminUserListItem struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	DisplayName     *string `json:"display_name"`
	AvatarURL       *string `json:"avatar_url"`
	IsPlatformAdmin bool    `json:"is_platform_admin"`
	IsSuspended     bool    `json:"is_suspended"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	PostCount       int     `json:"post_count"`
	CommentCount    int     `json:"comment_count"`
	FriendCount     int     `json:"friend_count"`
}

// AdminPostListItem, admin panelde gösterilen gönderi satırı.
type AdminPostListItem struct {
	ID              string `json:"id"`
	AuthorID        string `json:"author_id"`
	AuthorUsername  string `json:"author_username"`
	Text            string `json:"text"`
	CommentsCounter int    `json:"comments_counter"`
	ReactionCounter int    `json:"reaction_counter"`
	IsFrozen        bool   `json:"is_frozen"`
	CreatedAt       string `json:"created_at"`
}
