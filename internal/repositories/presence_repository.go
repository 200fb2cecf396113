package repositories

import (
	"context"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PresenceRepository keeps one presence document per user
type PresenceRepository interface {
	SetStatus(ctx context.Context, userID, status string) (*models.Presence, error)
	GetPresence(ctx context.Context, userIDs []string) ([]models.Presence, error)
	// Watch streams presence changes for userIDs until ctx is cancelled
	Watch(ctx context.Context, userIDs []string) (<-chan models.Presence, error)
}

type MongoPresenceRepository struct {
	collection *mongo.Collection
}

func NewMongoPresenceRepository(db *mongo.Database) *MongoPresenceRepository {
	return &MongoPresenceRepository{collection: db.Collection("presence")}
}

func (r *MongoPresenceRepository) SetStatus(ctx context.Context, userID, status string) (*models.Presence, error) {
	p := &models.Presence{UserID: userID, Status: status, LastSeen: time.Now().UTC()}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"status": p.Status, "last_seen": p.LastSeen}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPresence returns the stored presence of each user; users never seen are reported offline
func (r *MongoPresenceRepository) GetPresence(ctx context.Context, userIDs []string) ([]models.Presence, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Presence
	if err = cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[string]models.Presence, len(found))
	for _, p := range found {
		byID[p.UserID] = p
	}

	result := make([]models.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		p, ok := byID[id]
		if !ok {
			p = models.Presence{UserID: id, Status: models.PresenceOffline}
		}
		result = append(result, p)
	}
	return result, nil
}

func (r *MongoPresenceRepository) Watch(ctx context.Context, userIDs []string) (<-chan models.Presence, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":   bson.M{"$in": bson.A{"insert", "update", "replace"}},
			"documentKey._id": bson.M{"$in": userIDs},
		}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	out := make(chan models.Presence)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument *models.Presence `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Warn().Err(err).Msg("Failed to decode presence change")
				continue
			}
			if event.FullDocument == nil {
				continue
			}
			select {
			case out <- *event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("Presence change stream stopped")
		}
	}()
	return out, nil
}
