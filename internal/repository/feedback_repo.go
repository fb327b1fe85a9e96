package repository

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/survey-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FeedbackRepo struct {
	coll *mongo.Collection
}

func NewFeedbackRepo(db *mongo.Database) *FeedbackRepo {
	return &FeedbackRepo{coll: db.Collection(FeedbackCollection)}
}

func (r *FeedbackRepo) Create(ctx context.Context, fb *models.Feedback) (primitive.ObjectID, error) {
	res, err := r.coll.InsertOne(ctx, fb)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert feedback: %w", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	fb.ID = id
	return id, nil
}

func (r *FeedbackRepo) List(ctx context.Context) ([]models.Feedback, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	defer cursor.Close(ctx)

	feedbacks := []models.Feedback{}
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return feedbacks, nil
}
