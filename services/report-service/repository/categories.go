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

type CategoryStore interface {
	Insert(ctx context.Context, category *models.ReportCategory) error
	FindByID(ctx context.Context, id string) (*models.ReportCategory, error)
	FindByName(ctx context.Context, name string) (*models.ReportCategory, error)
	ListActive(ctx context.Context) ([]models.ReportCategory, error)
	ListAll(ctx context.Context) ([]models.ReportCategory, error)
	Update(ctx context.Context, id string, fields bson.M) (*models.ReportCategory, error)
	Delete(ctx context.Context, id string) error
	IncrementReportCount(ctx context.Context, id primitive.ObjectID) error
}

type MongoCategoryStore struct {
	coll *mongo.Collection
}

func NewMongoCategoryStore(db *mongo.Database) *MongoCategoryStore {
	return &MongoCategoryStore{coll: db.Collection("report_categories")}
}

func (s *MongoCategoryStore) Insert(ctx context.Context, category *models.ReportCategory) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, category)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateName
	}
	return err
}

func (s *MongoCategoryStore) FindByID(ctx context.Context, id string) (*models.ReportCategory, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	var category models.ReportCategory
	err = s.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *MongoCategoryStore) FindByName(ctx context.Context, name string) (*models.ReportCategory, error) {
	var category models.ReportCategory
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *MongoCategoryStore) list(ctx context.Context, query bson.M) ([]models.ReportCategory, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "display_order", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.ReportCategory
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *MongoCategoryStore) ListActive(ctx context.Context) ([]models.ReportCategory, error) {
	return s.list(ctx, bson.M{"status": models.CategoryActive})
}

func (s *MongoCategoryStore) ListAll(ctx context.Context) ([]models.ReportCategory, error) {
	return s.list(ctx, bson.M{})
}

func (s *MongoCategoryStore) Update(ctx context.Context, id string, fields bson.M) (*models.ReportCategory, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	fields["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category models.ReportCategory
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": fields}, opts).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *MongoCategoryStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCategoryNotFound
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *MongoCategoryStore) IncrementReportCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"report_count": 1}})
	return err
}
