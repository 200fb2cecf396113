package repositories

import (
	"context"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository stores conversations and their messages in MongoDB
type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	FindPrivateConversation(ctx context.Context, a, b string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string, limit int64) ([]models.Conversation, error)
	SetTyping(ctx context.Context, id primitive.ObjectID, userID string, typing bool) error

	CreateMessage(ctx context.Context, conv *models.Conversation, msg *models.Message) error
	ListMessages(ctx context.Context, convID primitive.ObjectID, before time.Time, limit int64) ([]models.Message, error)
	MarkRead(ctx context.Context, convID primitive.ObjectID, userID string) (int64, error)
}

// MongoChatRepository implements ChatRepository for MongoDB
type MongoChatRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoChatRepository creates a new MongoChatRepository
func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

// EnsureIndexes creates the indexes the chat queries rely on
func (r *MongoChatRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updated_at", Value: -1}},
	}); err != nil {
		return err
	}
	_, err := r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoChatRepository) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	now := time.Now().UTC()
	conv.ID = primitive.NewObjectID()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	if conv.Unread == nil {
		conv.Unread = make(map[string]int, len(conv.Participants))
		for _, p := range conv.Participants {
			conv.Unread[p] = 0
		}
	}
	_, err := r.conversations.InsertOne(ctx, conv)
	return err
}

func (r *MongoChatRepository) GetConversation(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// FindPrivateConversation looks up the two-party conversation between a and b directly
func (r *MongoChatRepository) FindPrivateConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	filter := bson.M{
		"type":         models.ConversationPrivate,
		"participants": bson.M{"$all": bson.A{a, b}, "$size": 2},
	}
	var conv models.Conversation
	if err := r.conversations.FindOne(ctx, filter).Decode(&conv); err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (r *MongoChatRepository) ListConversations(ctx context.Context, userID string, limit int64) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.conversations.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *MongoChatRepository) SetTyping(ctx context.Context, id primitive.ObjectID, userID string, typing bool) error {
	res, err := r.conversations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"typing." + userID: typing}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMessage stores msg, marks it read by its sender and bumps the unread
// counter of every other participant along with the last message preview.
func (r *MongoChatRepository) CreateMessage(ctx context.Context, conv *models.Conversation, msg *models.Message) error {
	now := time.Now().UTC()
	msg.ID = primitive.NewObjectID()
	msg.ConversationID = conv.ID
	msg.CreatedAt = now
	msg.ReadBy = []string{msg.SenderID}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return err
	}

	inc := bson.M{}
	for _, p := range conv.Participants {
		if p != msg.SenderID {
			inc["unread."+p] = 1
		}
	}
	update := bson.M{
		"$set": bson.M{
			"last_message":           models.MessagePreview{SenderID: msg.SenderID, Content: msg.Content, SentAt: now},
			"updated_at":             now,
			"typing." + msg.SenderID: false,
		},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	_, err := r.conversations.UpdateOne(ctx, bson.M{"_id": conv.ID}, update)
	return err
}

// ListMessages returns up to limit messages older than before, newest first
func (r *MongoChatRepository) ListMessages(ctx context.Context, convID primitive.ObjectID, before time.Time, limit int64) ([]models.Message, error) {
	filter := bson.M{"conversation_id": convID}
	if !before.IsZero() {
		filter["created_at"] = bson.M{"$lt": before}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(limit)
	cursor, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead zeroes the reader's unread counter and adds the reader to read_by of
// every message still lacking it. It reports how many messages changed.
func (r *MongoChatRepository) MarkRead(ctx context.Context, convID primitive.ObjectID, userID string) (int64, error) {
	res, err := r.conversations.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{"$set": bson.M{"unread." + userID: 0}})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, ErrNotFound
	}

	many, err := r.messages.UpdateMany(ctx,
		bson.M{"conversation_id": convID, "read_by": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"read_by": userID}},
	)
	if err != nil {
		return 0, err
	}
	return many.ModifiedCount, nil
}
