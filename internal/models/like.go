package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	BookmarkEvent   = "event"
	BookmarkPost    = "post"
	BookmarkComment = "comment"
)

// Bookmark saves an event, post or comment for later
type Bookmark struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_bookmark"`
	TargetType string    `json:"target_type" gorm:"size:20;uniqueIndex:idx_user_bookmark"`
	TargetID   uint      `json:"target_id" gorm:"uniqueIndex:idx_user_bookmark"`
	CreatedAt  time.Time `json:"created_at"`
}
