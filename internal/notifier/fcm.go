package notifier

import (
	"context"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"github.com/causeconnect/backend/internal/models"
)

// FCMPusher sends notifications through Firebase Cloud Messaging
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Push(ctx context.Context, token string, n *models.Notification) error {
	data := map[string]string{
		"notification_id": strconv.FormatUint(uint64(n.ID), 10),
		"type":            n.Type,
	}
	if n.Link != nil {
		data["link"] = *n.Link
	}
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
	})
	return err
}
