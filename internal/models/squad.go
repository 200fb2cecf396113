package models

import "time"

const (
	SquadRoleAdmin     = "admin"
	SquadRoleModerator = "moderator"
	SquadRoleMember    = "member"
)

// Squad is a user-created interest group with its own feed
type Squad struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OwnerID     uint      `json:"owner_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:80;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"size:1000"`
	Category    string    `json:"category" gorm:"size:50;index"`
	AvatarURL   string    `json:"avatar_url"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SquadMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	SquadID  uint      `json:"squad_id" gorm:"index;uniqueIndex:idx_squad_member"`
	UserID   uint      `json:"user_id" gorm:"index;uniqueIndex:idx_squad_member"`
	Role     string    `json:"role" gorm:"size:20;not null"`
	JoinedAt time.Time `json:"joined_at"`
}

// SquadReaction is an emoji reaction on a squad post
type SquadReaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_squad_reaction"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_squad_reaction"`
	Emoji     string    `json:"emoji" gorm:"size:16;uniqueIndex:idx_squad_reaction"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSquadRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=80"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"omitempty,max=50"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	IsPrivate   bool   `json:"is_private"`
}

type UpdateSquadRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=80"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	IsPrivate   *bool   `json:"is_private"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin moderator member"`
}

type ReactRequest struct {
	Emoji string `json:"emoji" validate:"required,min=1,max=16"`
}

// SquadSummary adds read-time counts and the caller's role
type SquadSummary struct {
	Squad
	MembersCount int64  `json:"members_count"`
	Role         string `json:"role,omitempty"`
}

// SquadMemberView is a member with the user's compact profile
type SquadMemberView struct {
	SquadMember
	User *UserCompact `json:"user,omitempty"`
}

// ReactionCount aggregates reactions on a post by emoji
type ReactionCount struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}
