package models

import "time"

// Comment is a post or event comment; ParentID makes it a reply
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	PostID    *uint     `json:"post_id,omitempty" gorm:"index"`
	EventID   *uint     `json:"event_id,omitempty" gorm:"index"`
	ParentID  *uint     `json:"parent_id,omitempty" gorm:"index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentLike is one user's like on a comment
type CommentLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID uint      `json:"comment_id" gorm:"index;uniqueIndex:idx_comment_like"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_comment_like"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	AwardHeart     = "heart"
	AwardHelpful   = "helpful"
	AwardInspiring = "inspiring"
)

// CommentAward is a badge one user gives to another user's comment
type CommentAward struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID uint      `json:"comment_id" gorm:"index;uniqueIndex:idx_award_comment_giver"`
	GiverID   uint      `json:"giver_id" gorm:"index;uniqueIndex:idx_award_comment_giver"`
	Award     string    `json:"award" gorm:"size:20;uniqueIndex:idx_award_comment_giver"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID   *uint  `json:"post_id"`
	EventID  *uint  `json:"event_id"`
	ParentID *uint  `json:"parent_id"`
	Content  string `json:"content" validate:"required,min=1,max=1000"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type AwardCommentRequest struct {
	Award string `json:"award" validate:"required,oneof=heart helpful inspiring"`
}

// CommentNode is one node of a comment tree
type CommentNode struct {
	Comment
	Author      *UserCompact     `json:"author,omitempty"`
	LikesCount  int64            `json:"likes_count"`
	AwardCounts map[string]int64 `json:"award_counts,omitempty"`
	IsLiked     bool             `json:"is_liked"`
	Replies     []*CommentNode   `json:"replies"`
}
