package models

import "time"

const (
	PostKindUpdate    = "update"
	PostKindVolunteer = "volunteer"
	PostKindStory     = "story"
)

// Post is a user publication, optionally attached to an event or a squad
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	EventID   *uint     `json:"event_id,omitempty" gorm:"index"`
	SquadID   *uint     `json:"squad_id,omitempty" gorm:"index"`
	Kind      string    `json:"kind" gorm:"size:20;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostParticipant marks a user signing up for a volunteer post
type PostParticipant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_participant_user_post"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_participant_user_post"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	Kind     string `json:"kind" validate:"omitempty,oneof=update volunteer story"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
	EventID  *uint  `json:"event_id,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content  *string `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	Post
	Author            *UserCompact `json:"author,omitempty"`
	LikesCount        int64        `json:"likes_count"`
	CommentsCount     int64        `json:"comments_count"`
	ParticipantsCount int64        `json:"participants_count"`
	IsLiked           bool         `json:"is_liked"`
	IsBookmarked      bool         `json:"is_bookmarked"`
	IsParticipating   bool         `json:"is_participating"`
}

// PostFilter narrows post listings. SquadID nil excludes squad posts.
type PostFilter struct {
	AuthorIDs []uint
	EventID   uint
	SquadID   *uint
}
