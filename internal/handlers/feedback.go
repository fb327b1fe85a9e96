package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/internal/models"
	"github.com/AnshRaj112/survey-backend/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating accepts a JSON number or a numeric string such as "5", which is what
// HTML form values arrive as.
type Rating float64

func (r *Rating) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*r = Rating(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*r = Rating(n)
			return nil
		}
	}
	return errs.NewBadRequestError("Rating must be a number", []errs.FieldError{
		{Field: "rating", Error: "must be a number"},
	})
}

// SubmitFeedbackRequest is the body of POST /api/feedback. Rating must be a
// non-zero number.
type SubmitFeedbackRequest struct {
	Username       string  `json:"username" validate:"required"`
	Email          string  `json:"email" validate:"required"`
	Rating         Rating  `json:"rating" validate:"required"`
	Topic          string  `json:"topic" validate:"required"`
	TechnicalIssue bool    `json:"technical_issue"`
	ProfileImg     *string `json:"profileImg"`
}

type SubmitFeedbackResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	FeedbackID primitive.ObjectID `json:"feedbackId"`
}

type ListFeedbackResponse struct {
	Success   bool              `json:"success"`
	Feedbacks []models.Feedback `json:"feedbacks"`
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Topic = strings.TrimSpace(req.Topic)
	if err := validation.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	fb := &models.Feedback{
		Username:       req.Username,
		Email:          req.Email,
		Rating:         float64(req.Rating),
		Topic:          req.Topic,
		TechnicalIssue: req.TechnicalIssue,
		ProfileImg:     req.ProfileImg,
		SubmittedAt:    h.now(),
	}
	id, err := h.feedback.Create(ctx, fb)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitFeedbackResponse{
		Success:    true,
		Message:    "Feedback submitted successfully!",
		FeedbackID: id,
	})
}

func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.dbContext(r)
	defer cancel()

	feedbacks, err := h.feedback.List(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if feedbacks == nil {
		feedbacks = []models.Feedback{}
	}
	writeJSON(w, http.StatusOK, ListFeedbackResponse{Success: true, Feedbacks: feedbacks})
}
