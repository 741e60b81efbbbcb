package repository

import (
	"context"
	"fmt"
	"time"

	"ethics-reporting-system/services/report-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportStore is everything the report service needs from persistence.
// Status history, notes and messages are appended with $push so concurrent
// admin edits never clobber each other's entries; scalar fields are
// last-write-wins by design.
type ReportStore interface {
	Insert(ctx context.Context, report *models.Report) error
	FindByTrackingID(ctx context.Context, trackingID string) (*models.Report, error)
	FindByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter, page Page) ([]models.Report, int64, error)
	UpdateStatus(ctx context.Context, id, status, resolution string, entry models.StatusEntry) (*models.Report, error)
	Assign(ctx context.Context, id, assignedTo string, entry models.StatusEntry) (*models.Report, error)
	AddInternalNote(ctx context.Context, id string, note models.InternalNote) (*models.Report, error)
	AddMessage(ctx context.Context, id string, msg models.Message) (*models.Report, error)
	AddMessageByTrackingID(ctx context.Context, trackingID string, msg models.Message) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

type MongoReportStore struct {
	coll *mongo.Collection
}

func NewMongoReportStore(db *mongo.Database) *MongoReportStore {
	return &MongoReportStore{coll: db.Collection("reports")}
}

func (s *MongoReportStore) Insert(ctx context.Context, report *models.Report) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (s *MongoReportStore) FindByTrackingID(ctx context.Context, trackingID string) (*models.Report, error) {
	var report models.Report
	err := s.coll.FindOne(ctx, bson.M{"tracking_id": trackingID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *MongoReportStore) FindByID(ctx context.Context, id string) (*models.Report, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReportNotFound
	}

	var report models.Report
	err = s.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func buildReportFilter(filter ReportFilter) bson.M {
	query := bson.M{}

	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	if filter.AssignedTo != "" {
		query["assigned_to"] = filter.AssignedTo
	}
	if filter.CategoryID != "" {
		if objID, err := primitive.ObjectIDFromHex(filter.CategoryID); err == nil {
			query["category_id"] = objID
		}
	}
	if filter.From != nil || filter.To != nil {
		dateRange := bson.M{}
		if filter.From != nil {
			dateRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateRange["$lte"] = *filter.To
		}
		query["created_at"] = dateRange
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexQuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tracking_id": pattern},
		}
	}
	return query
}

func (s *MongoReportStore) List(ctx context.Context, filter ReportFilter, page Page) ([]models.Report, int64, error) {
	page = page.Normalize()
	query := buildReportFilter(filter)

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	order := -1
	if page.SortOrder == "asc" {
		order = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: page.SortBy, Value: order}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *MongoReportStore) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*models.Report, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReportNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report models.Report
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *MongoReportStore) UpdateStatus(ctx context.Context, id, status, resolution string, entry models.StatusEntry) (*models.Report, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if resolution != "" {
		set["resolution"] = resolution
	}
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": entry},
	})
}

func (s *MongoReportStore) Assign(ctx context.Context, id, assignedTo string, entry models.StatusEntry) (*models.Report, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{
			"assigned_to": assignedTo,
			"status":      entry.Status,
			"updated_at":  time.Now(),
		},
		"$push": bson.M{"status_history": entry},
	})
}

func (s *MongoReportStore) AddInternalNote(ctx context.Context, id string, note models.InternalNote) (*models.Report, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set":  bson.M{"updated_at": time.Now()},
		"$push": bson.M{"internal_notes": note},
	})
}

func (s *MongoReportStore) AddMessage(ctx context.Context, id string, msg models.Message) (*models.Report, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$set":  bson.M{"updated_at": time.Now()},
		"$push": bson.M{"messages": msg},
	})
}

func (s *MongoReportStore) AddMessageByTrackingID(ctx context.Context, trackingID string, msg models.Message) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"tracking_id": trackingID}, bson.M{
		"$set":  bson.M{"updated_at": time.Now()},
		"$push": bson.M{"messages": msg},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *MongoReportStore) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"category_id": categoryID})
}

// regexQuoteMeta escapes the search term so user input cannot change the
// shape of the query.
func regexQuoteMeta(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		for j := 0; j < len(special); j++ {
			if c == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
