package models

// Post is a user upload shown in the community feed
type Post struct {
	Model
	UserID        uint   `json:"user_id" gorm:"index;not null"`
	User          *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Caption       string `json:"caption"`
	MediaURL      string `json:"media_url"`
	ThumbnailURL  string `json:"thumbnail_url"`
	LikesCount    int64  `json:"likes_count"`
	CommentsCount int64  `json:"comments_count"`
	LikedByMe     bool   `json:"liked_by_me" gorm:"-"`
}

// Comment represents a user's comment on a post
type Comment struct {
	Model
	PostID  uint   `json:"post_id" gorm:"index;not null"`
	UserID  uint   `json:"user_id" gorm:"not null"`
	User    *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Content string `json:"content" gorm:"type:text"`
}

// Like represents a user's like on a post
type Like struct {
	Model
	PostID uint `json:"post_id" gorm:"uniqueIndex:idx_like_post_user;not null"`
	UserID uint `json:"user_id" gorm:"uniqueIndex:idx_like_post_user;not null"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=1000" conform:"trim"`
}
