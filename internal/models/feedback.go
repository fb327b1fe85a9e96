package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Feedback struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Rating   float64            `bson:"rating" json:"rating"`
	Topic    string             `bson:"topic" json:"topic"`

	TechnicalIssue bool    `bson:"technical_issue" json:"technical_issue"`
	ProfileImg     *string `bson:"profileImg" json:"profileImg"`

	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}
