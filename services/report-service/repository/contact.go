package repository

import (
	"context"
	"time"

	"ethics-reporting-system/services/report-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContactStore interface {
	Insert(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, page Page) ([]models.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id string) error
}

type MongoContactStore struct {
	coll *mongo.Collection
}

func NewMongoContactStore(db *mongo.Database) *MongoContactStore {
	return &MongoContactStore{coll: db.Collection("contact_messages")}
}

func (s *MongoContactStore) Insert(ctx context.Context, msg *models.ContactMessage) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	msg.CreatedAt = time.Now()
	_, err := s.coll.InsertOne(ctx, msg)
	return err
}

func (s *MongoContactStore) List(ctx context.Context, page Page) ([]models.ContactMessage, int64, error) {
	page = page.Normalize()

	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var messages []models.ContactMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (s *MongoContactStore) MarkRead(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"read": true}})
	return err
}
