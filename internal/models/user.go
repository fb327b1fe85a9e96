package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`

	// Always a bcrypt or argon2id hash. Never serialized.
	Password string `bson:"password" json:"-"`

	ProfileImg *string `bson:"profileImg" json:"profileImg"`
	GodAccess  bool    `bson:"god_access" json:"god_access"`
}
