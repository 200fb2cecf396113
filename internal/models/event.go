package models

import "time"

const (
	EventStatusActive = "active"
	EventStatusClosed = "closed"
)

// Event is a fundraising cause created by a user
type Event struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	OwnerID      uint       `json:"owner_id" gorm:"index;not null"`
	Title        string     `json:"title" gorm:"size:150;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Category     string     `json:"category" gorm:"size:50;index"`
	Location     string     `json:"location" gorm:"size:120"`
	ImageURL     string     `json:"image_url"`
	GoalAmount   float64    `json:"goal_amount" gorm:"type:decimal(12,2);not null"`
	RaisedAmount float64    `json:"raised_amount" gorm:"type:decimal(12,2);not null;default:0"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	Status       string     `json:"status" gorm:"size:20;index;not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Support marks a user actively backing an event. Mutually exclusive with Pass.
type Support struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_support_user_event"`
	EventID   uint      `json:"event_id" gorm:"index;uniqueIndex:idx_support_user_event"`
	CreatedAt time.Time `json:"created_at"`
}

// Pass records that a user dismissed an event
type Pass struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_pass_user_event"`
	EventID   uint      `json:"event_id" gorm:"index;uniqueIndex:idx_pass_user_event"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=150"`
	Description string     `json:"description" validate:"max=5000"`
	Category    string     `json:"category" validate:"omitempty,max=50"`
	Location    string     `json:"location" validate:"omitempty,max=120"`
	ImageURL    string     `json:"image_url" validate:"omitempty,url"`
	GoalAmount  float64    `json:"goal_amount" validate:"required,gt=0"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=150"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Category    *string    `json:"category" validate:"omitempty,max=50"`
	Location    *string    `json:"location" validate:"omitempty,max=120"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url"`
	GoalAmount  *float64   `json:"goal_amount" validate:"omitempty,gt=0"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Status      *string    `json:"status" validate:"omitempty,oneof=active closed"`
}

// EventSummary is an event with read-time counts and caller-specific flags
type EventSummary struct {
	Event
	Owner           *UserCompact `json:"owner,omitempty"`
	SupportersCount int64        `json:"supporters_count"`
	DonationsCount  int64        `json:"donations_count"`
	IsSupported     bool         `json:"is_supported"`
	IsBookmarked    bool         `json:"is_bookmarked"`
}

// EventFilter narrows event listings
type EventFilter struct {
	Category string
	Query    string
	OwnerID  uint
	Status   string
}
