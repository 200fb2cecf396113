package models

import "time"

const (
	NotificationLike     = "like"
	NotificationComment  = "comment"
	NotificationFollow   = "follow"
	NotificationDonation = "donation"
	NotificationAward    = "award"
	NotificationSupport  = "support"
	NotificationSystem   = "system"
)

// Notification is a single alert delivered to one user as a side effect of another user's action
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"index;not null"`
	ActorID     *uint     `json:"actor_id,omitempty" gorm:"index"`
	Type        string    `json:"type" gorm:"size:20;index;not null"`
	Title       string    `json:"title" gorm:"size:120"`
	Message     string    `json:"message"`
	Amount      *float64  `json:"amount,omitempty" gorm:"type:decimal(12,2)"`
	Link        *string   `json:"link,omitempty"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	Notification
	Actor *UserCompact `json:"actor,omitempty"`
}

// UserSettings holds per-user preferences, including which notification types are delivered
type UserSettings struct {
	UserID             uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	NotifyLikes        bool      `json:"notify_likes"`
	NotifyComments     bool      `json:"notify_comments"`
	NotifyFollows      bool      `json:"notify_follows"`
	NotifyDonations    bool      `json:"notify_donations"`
	NotifySupports     bool      `json:"notify_supports"`
	NotifyAwards       bool      `json:"notify_awards"`
	PrivateProfile     bool      `json:"private_profile"`
	PushToken          string    `json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings a user has before saving any
func DefaultSettings(userID uint) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		NotifyLikes:        true,
		NotifyComments:     true,
		NotifyFollows:      true,
		NotifyDonations:    true,
		NotifySupports:     true,
		NotifyAwards:       true,
	}
}

// Allows reports whether notifications of the given type should be delivered.
func (s *UserSettings) Allows(notificationType string) bool {
	switch notificationType {
	case NotificationLike:
		return s.NotifyLikes
	case NotificationComment:
		return s.NotifyComments
	case NotificationFollow:
		return s.NotifyFollows
	case NotificationDonation:
		return s.NotifyDonations
	case NotificationSupport:
		return s.NotifySupports
	case NotificationAward:
		return s.NotifyAwards
	default:
		return true
	}
}

type UpdateSettingsRequest struct {
	EmailNotifications *bool   `json:"email_notifications"`
	PushNotifications  *bool   `json:"push_notifications"`
	NotifyLikes        *bool   `json:"notify_likes"`
	NotifyComments     *bool   `json:"notify_comments"`
	NotifyFollows      *bool   `json:"notify_follows"`
	NotifyDonations    *bool   `json:"notify_donations"`
	NotifySupports     *bool   `json:"notify_supports"`
	NotifyAwards       *bool   `json:"notify_awards"`
	PrivateProfile     *bool   `json:"private_profile"`
	PushToken          *string `json:"push_token" validate:"omitempty,max=4096"`
}
