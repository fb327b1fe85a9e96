package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Surveys have no fixed schema and are handled as bson.M throughout.

type SurveyResponse struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SurveyID string             `bson:"surveyId" json:"surveyId"`

	// Answers is whatever JSON value the client submitted.
	Answers interface{} `bson:"answers" json:"answers"`

	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}
