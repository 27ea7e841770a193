package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"kintai-bot/internal/model"
)

type AttendanceStore struct {
	attendance *mongo.Collection
}

// NewAttendanceStore creates the store and ensures its indexes. The unique
// (user_id, date) index is what deduplicates racing inserts from rapid
// double-clicks; the store relies on it rather than any in-process locking.
func NewAttendanceStore(ctx context.Context, db *MongoDB) (*AttendanceStore, error) {
	attendance := db.Collection("attendance")

	if _, err := attendance.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create attendance indexes: %w", err)
	}

	return &AttendanceStore{attendance: attendance}, nil
}

// GetRecord returns the attendance record for (date, userID), or nil if none.
func (s *AttendanceStore) GetRecord(ctx context.Context, date, userID string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := s.attendance.FindOne(ctx, bson.M{
		"user_id": userID,
		"date":    date,
	}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &record, nil
}

// CreateRecord inserts a new attendance record and sets the ID on the struct.
func (s *AttendanceStore) CreateRecord(ctx context.Context, record *model.AttendanceRecord) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	res, err := s.attendance.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	record.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// UpdateRecord updates an existing attendance record.
func (s *AttendanceStore) UpdateRecord(ctx context.Context, record *model.AttendanceRecord) error {
	record.UpdatedAt = time.Now()
	_, err := s.attendance.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	return err
}

// GetRecordsByDate returns all attendance records for the given date (YYYY-MM-DD).
func (s *AttendanceStore) GetRecordsByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error) {
	cursor, err := s.attendance.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	var results []*model.AttendanceRecord
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return results, nil
}

// CountsByDate computes the per-day tally with a single aggregation so the
// numbers always come from the store, never from in-memory deltas.
func (s *AttendanceStore) CountsByDate(ctx context.Context, date string) (model.DayCounts, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "date", Value: date}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "office", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$work_style", string(model.WorkStyleOffice)}}}, 1, 0,
			}}}}}},
			{Key: "remote", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$work_style", string(model.WorkStyleRemote)}}}, 1, 0,
			}}}}}},
			// Parity sum: each odd departure_count contributes exactly 1.
			{Key: "departed", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$mod", Value: bson.A{"$departure_count", 2}}}}}},
		}}},
	}

	cursor, err := s.attendance.Aggregate(ctx, pipeline)
	if err != nil {
		return model.DayCounts{}, fmt.Errorf("aggregate counts: %w", err)
	}
	var results []model.DayCounts
	if err := cursor.All(ctx, &results); err != nil {
		return model.DayCounts{}, fmt.Errorf("decode counts: %w", err)
	}
	if len(results) == 0 {
		return model.DayCounts{}, nil
	}
	return results[0], nil
}
