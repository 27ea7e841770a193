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

type MemberStore struct {
	members *mongo.Collection
}

func NewMemberStore(ctx context.Context, db *MongoDB) (*MemberStore, error) {
	members := db.Collection("members")

	if _, err := members.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, fmt.Errorf("create member index: %w", err)
	}

	return &MemberStore{members: members}, nil
}

// GetByCode returns the directory entry for a Slack user ID, or nil if none.
func (s *MemberStore) GetByCode(ctx context.Context, code string) (*model.TeamMember, error) {
	var member model.TeamMember
	err := s.members.FindOne(ctx, bson.M{"code": code}).Decode(&member)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &member, nil
}

// Create inserts a new directory entry and sets the ID on the struct.
func (s *MemberStore) Create(ctx context.Context, member *model.TeamMember) error {
	member.CreatedAt = time.Now()
	res, err := s.members.InsertOne(ctx, member)
	if err != nil {
		return err
	}
	member.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// List returns all registered members.
func (s *MemberStore) List(ctx context.Context) ([]*model.TeamMember, error) {
	cursor, err := s.members.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	var results []*model.TeamMember
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return results, nil
}
