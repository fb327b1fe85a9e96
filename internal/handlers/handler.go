// Package handlers implements the HTTP API. Every handler maps to one
// repository call, bounded by dbTimeout, and reports failures through
// writeError.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/models"
	"github.com/AnshRaj112/survey-backend/internal/services"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultDBTimeout = 5 * time.Second

type SurveyStore interface {
	Create(ctx context.Context, survey bson.M) (primitive.ObjectID, error)
	List(ctx context.Context) ([]bson.M, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

type ResponseStore interface {
	Create(ctx context.Context, resp *models.SurveyResponse) error
	ListBySurvey(ctx context.Context, surveyID string) ([]bson.M, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, fb *models.Feedback) (primitive.ObjectID, error)
	List(ctx context.Context) ([]models.Feedback, error)
}

// SurveyCache holds encoded survey documents keyed by hex id.
type SurveyCache interface {
	Get(ctx context.Context, surveyID string) ([]byte, bool, error)
	Set(ctx context.Context, surveyID string, data []byte) error
	Delete(ctx context.Context, surveyID string) error
}

type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder string) (string, error)
}

type ResponseBroadcaster interface {
	Subscribe(surveyID string) (<-chan services.ResponseEvent, func())
	Publish(ctx context.Context, resp *models.SurveyResponse) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps are the collaborators a Handler needs. Cache and Uploader are
// optional; leave them nil when the backing service is not configured.
type Deps struct {
	Surveys   SurveyStore
	Responses ResponseStore
	Users     UserStore
	Feedback  FeedbackStore
	Hub       ResponseBroadcaster

	Cache    SurveyCache
	Uploader ImageUploader

	// Checks are pinged by the readiness probe, keyed by name.
	Checks map[string]Pinger

	Logger    zerolog.Logger
	DBTimeout time.Duration
}

type Handler struct {
	surveys   SurveyStore
	responses ResponseStore
	users     UserStore
	feedback  FeedbackStore
	hub       ResponseBroadcaster
	cache     SurveyCache
	uploader  ImageUploader
	checks    map[string]Pinger
	log       zerolog.Logger
	dbTimeout time.Duration
	now       func() time.Time
}

func New(d Deps) *Handler {
	timeout := d.DBTimeout
	if timeout <= 0 {
		timeout = defaultDBTimeout
	}
	return &Handler{
		surveys:   d.Surveys,
		responses: d.Responses,
		users:     d.Users,
		feedback:  d.Feedback,
		hub:       d.Hub,
		cache:     d.Cache,
		uploader:  d.Uploader,
		checks:    d.Checks,
		log:       d.Logger,
		dbTimeout: timeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) dbContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.dbTimeout)
}

// logger prefers the request scoped logger set up by the middleware chain.
func (h *Handler) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.log
}
