// Package notifier creates notification rows as a side effect of user actions.
package notifier

import (
	"context"
	"errors"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notice describes one notification to deliver
type Notice struct {
	RecipientID uint
	ActorID     uint
	Type        string
	Title       string
	Message     string
	Amount      *float64
	Link        string
}

// Pusher delivers a stored notification to the recipient's device
type Pusher interface {
	Push(ctx context.Context, token string, n *models.Notification) error
}

// SettingsFinder resolves a recipient's notification preferences
type SettingsFinder interface {
	FindSettings(ctx context.Context, userID uint) (*models.UserSettings, error)
}

// Emitter writes notifications inline with the action that caused them.
// Failures never reach the caller.
type Emitter struct {
	notifications repositories.NotificationRepository
	settings      SettingsFinder
	pusher        Pusher
	logger        zerolog.Logger
}

// New returns an Emitter. pusher may be nil.
func New(notifications repositories.NotificationRepository, settings SettingsFinder, pusher Pusher) *Emitter {
	return &Emitter{
		notifications: notifications,
		settings:      settings,
		pusher:        pusher,
		logger:        log.With().Str("component", "notifier").Logger(),
	}
}

// Emit stores the notice unless it is addressed to nobody, to the actor
// themselves, or to a recipient who muted its type. It returns the stored row, or
// nil when nothing was written.
func (e *Emitter) Emit(ctx context.Context, n Notice) *models.Notification {
	if n.RecipientID == 0 || n.RecipientID == n.ActorID {
		return nil
	}

	settings, err := e.settings.FindSettings(ctx, n.RecipientID)
	if err != nil {
		e.logger.Warn().Err(err).Uint("recipient_id", n.RecipientID).Msg("Failed to load notification settings")
		settings = models.DefaultSettings(n.RecipientID)
	}
	if n.Type != models.NotificationSystem && !settings.Allows(n.Type) {
		return nil
	}

	row := &models.Notification{
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		Amount:      n.Amount,
	}
	if n.ActorID != 0 {
		actorID := n.ActorID
		row.ActorID = &actorID
	}
	if n.Link != "" {
		link := n.Link
		row.Link = &link
	}

	if err := e.notifications.CreateNotification(ctx, row); err != nil {
		e.logger.Warn().Err(err).
			Uint("recipient_id", n.RecipientID).
			Str("type", n.Type).
			Msg("Failed to create notification")
		return nil
	}

	e.push(ctx, settings, row)
	return row
}

func (e *Emitter) push(ctx context.Context, settings *models.UserSettings, row *models.Notification) {
	if e.pusher == nil || !settings.PushNotifications || settings.PushToken == "" {
		return
	}
	if err := e.pusher.Push(ctx, settings.PushToken, row); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn().Err(err).Uint("notification_id", row.ID).Msg("Failed to push notification")
	}
}
