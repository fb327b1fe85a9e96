package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SurveyRepo stores schemaless survey documents.
type SurveyRepo struct {
	coll *mongo.Collection
}

func NewSurveyRepo(db *mongo.Database) *SurveyRepo {
	return &SurveyRepo{coll: db.Collection(SurveysCollection)}
}

// Create inserts the document as given, minus any client supplied _id.
func (r *SurveyRepo) Create(ctx context.Context, survey bson.M) (primitive.ObjectID, error) {
	doc := withoutID(survey)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert survey: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert survey: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

func (r *SurveyRepo) List(ctx context.Context) ([]bson.M, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find surveys: %w", err)
	}
	defer cursor.Close(ctx)

	surveys := []bson.M{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, fmt.Errorf("decode surveys: %w", err)
	}
	return surveys, nil
}

func (r *SurveyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var survey bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find survey %s: %w", id.Hex(), err)
	}
	return survey, nil
}

// Update $sets the given fields. It returns ErrNotFound when no survey has the id.
func (r *SurveyRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": withoutID(fields)})
	if err != nil {
		return fmt.Errorf("update survey %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func withoutID(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}
