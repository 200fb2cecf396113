package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AttachmentStore keeps chat attachments in GridFS
type AttachmentStore interface {
	Upload(ctx context.Context, filename, contentType, uploaderID string, content io.Reader) (*models.Attachment, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *models.Attachment, error)
	Stat(ctx context.Context, ids []string) ([]models.Attachment, error)
}

type GridFSAttachmentStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSAttachmentStore(db *mongo.Database) (*GridFSAttachmentStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("attachments"))
	if err != nil {
		return nil, err
	}
	return &GridFSAttachmentStore{bucket: bucket}, nil
}

func (s *GridFSAttachmentStore) Upload(ctx context.Context, filename, contentType, uploaderID string, content io.Reader) (*models.Attachment, error) {
	metadata := bson.M{
		"content_type": contentType,
		"uploaded_by":  uploaderID,
		"uploaded_at":  time.Now().UTC(),
	}
	stream, err := s.bucket.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &models.Attachment{
		ID:          stream.FileID.(primitive.ObjectID).Hex(),
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  uploaderID,
	}, nil
}

func (s *GridFSAttachmentStore) Open(ctx context.Context, id string) (io.ReadCloser, *models.Attachment, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return stream, toAttachment(id, stream.GetFile()), nil
}

// Stat resolves attachment ids to their stored metadata; unknown ids are ErrNotFound
func (s *GridFSAttachmentStore) Stat(ctx context.Context, ids []string) ([]models.Attachment, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, ErrNotFound
		}
		objectIDs = append(objectIDs, objectID)
	}

	cursor, err := s.bucket.FindContext(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []gridfs.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	if len(files) != len(objectIDs) {
		return nil, ErrNotFound
	}
	attachments := make([]models.Attachment, 0, len(files))
	for i := range files {
		oid, _ := files[i].ID.(primitive.ObjectID)
		attachments = append(attachments, *toAttachment(oid.Hex(), &files[i]))
	}
	return attachments, nil
}

func toAttachment(id string, file *gridfs.File) *models.Attachment {
	var metadata struct {
		ContentType string `bson:"content_type"`
		UploadedBy  string `bson:"uploaded_by"`
	}
	if file.Metadata != nil {
		_ = bson.Unmarshal(file.Metadata, &metadata)
	}
	return &models.Attachment{
		ID:          id,
		Filename:    file.Name,
		ContentType: metadata.ContentType,
		Size:        file.Length,
		UploadedBy:  metadata.UploadedBy,
	}
}
