package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConversationPrivate = "private"
	ConversationGroup   = "group"

	PresenceOnline  = "online"
	PresenceOffline = "offline"
	PresenceAway    = "away"
	PresenceBusy    = "busy"
)

// Conversation is a chat thread stored in MongoDB. Participant ids are decimal user ids.
type Conversation struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type         string             `json:"type" bson:"type"`
	Name         string             `json:"name,omitempty" bson:"name,omitempty"`
	Participants []string           `json:"participants" bson:"participants"`
	CreatedBy    string             `json:"created_by" bson:"created_by"`
	LastMessage  *MessagePreview    `json:"last_message,omitempty" bson:"last_message,omitempty"`
	Unread       map[string]int     `json:"unread" bson:"unread"`
	Typing       map[string]bool    `json:"typing,omitempty" bson:"typing,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type MessagePreview struct {
	SenderID string    `json:"sender_id" bson:"sender_id"`
	Content  string    `json:"content" bson:"content"`
	SentAt   time.Time `json:"sent_at" bson:"sent_at"`
}

type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	SenderID       string             `json:"sender_id" bson:"sender_id"`
	Content        string             `json:"content" bson:"content"`
	Attachments    []Attachment       `json:"attachments,omitempty" bson:"attachments,omitempty"`
	ReadBy         []string           `json:"read_by" bson:"read_by"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// Attachment references a file stored in GridFS
type Attachment struct {
	ID          string `json:"id" bson:"id"`
	Filename    string `json:"filename" bson:"filename"`
	ContentType string `json:"content_type" bson:"content_type"`
	Size        int64  `json:"size" bson:"size"`
	UploadedBy  string `json:"uploaded_by,omitempty" bson:"uploaded_by,omitempty"`
}

// Presence is one document per user
type Presence struct {
	UserID   string    `json:"user_id" bson:"_id"`
	Status   string    `json:"status" bson:"status"`
	LastSeen time.Time `json:"last_seen" bson:"last_seen"`
}

type CreateConversationRequest struct {
	RecipientID    uint   `json:"recipient_id" validate:"required_without=ParticipantIDs"`
	ParticipantIDs []uint `json:"participant_ids" validate:"omitempty,min=2,max=50,dive,required"`
	Name           string `json:"name" validate:"max=80"`
}

type SendMessageRequest struct {
	Content       string   `json:"content" validate:"required_without=AttachmentIDs,max=4000"`
	AttachmentIDs []string `json:"attachment_ids" validate:"omitempty,max=10,dive,len=24,hexadecimal"`
}

type TypingRequest struct {
	Typing bool `json:"typing"`
}

type PresenceRequest struct {
	Status string `json:"status" validate:"required,oneof=online offline away busy"`
}

// ConversationView is a conversation from the caller's point of view
type ConversationView struct {
	Conversation
	UnreadCount int `json:"unread_count"`
}
