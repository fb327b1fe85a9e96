// Package repository holds one repository per MongoDB collection. Every
// method is a single round trip; callers bound it with a context deadline.
package repository

import (
	"errors"
)

const (
	SurveysCollection   = "surveys"
	ResponsesCollection = "responses"
	UsersCollection     = "users"
	FeedbackCollection  = "feedbacks"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
