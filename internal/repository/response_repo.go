package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/survey-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResponseRepo struct {
	coll *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) *ResponseRepo {
	return &ResponseRepo{coll: db.Collection(ResponsesCollection)}
}

// EnsureIndexes indexes surveyId, which every listing filters on.
func (r *ResponseRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "surveyId", Value: 1}},
		Options: options.Index().SetName("surveyId_1"),
	})
	if err != nil {
		return fmt.Errorf("create responses index: %w", err)
	}
	return nil
}

// Create stores the response and fills in its generated ID.
func (r *ResponseRepo) Create(ctx context.Context, resp *models.SurveyResponse) error {
	res, err := r.coll.InsertOne(ctx, resp)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		resp.ID = id
	}
	return nil
}

// ListBySurvey returns responses whose surveyId equals the given string exactly.
// Answers are arbitrary JSON so documents come back as bson.M.
func (r *ResponseRepo) ListBySurvey(ctx context.Context, surveyID string) ([]bson.M, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"surveyId": surveyID})
	if err != nil {
		return nil, fmt.Errorf("find responses: %w", err)
	}
	defer cursor.Close(ctx)

	responses := []bson.M{}
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	return responses, nil
}

func (r *ResponseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var resp bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&resp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find response %s: %w", id.Hex(), err)
	}
	return resp, nil
}
