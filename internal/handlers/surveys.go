package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/internal/repository"
	"github.com/AnshRaj112/survey-backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatedResponse struct {
	Message string             `json:"message"`
	ID      primitive.ObjectID `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// decodeSurvey accepts any JSON object and nothing else.
func decodeSurvey(w http.ResponseWriter, r *http.Request) (bson.M, error) {
	var body map[string]interface{}
	if err := decodeJSON(w, r, &body); err != nil {
		return nil, errs.NewBadRequestError("Survey must be a JSON object", nil)
	}
	if body == nil {
		return nil, errs.NewBadRequestError("Survey must be a JSON object", nil)
	}
	delete(body, "_id")
	return bson.M(body), nil
}

func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	survey, err := decodeSurvey(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	id, err := h.surveys.Create(ctx, survey)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreatedResponse{Message: "Survey created!", ID: id})
}

func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.dbContext(r)
	defer cancel()

	surveys, err := h.surveys.List(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

// GetSurvey is served cache-aside when a cache is configured. Cache failures
// fall through to the database.
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ObjectID(chi.URLParam(r, "id"), "survey")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	if h.cache != nil {
		data, ok, err := h.cache.Get(ctx, id.Hex())
		if err != nil {
			h.logger(r).Warn().Err(err).Str("survey_id", id.Hex()).Msg("survey cache read failed")
		}
		if ok {
			w.Header().Set("X-Cache", "HIT")
			writeRawJSON(w, http.StatusOK, data)
			return
		}
	}

	survey, err := h.surveys.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, r, errs.NewNotFoundError("Survey not found"))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := json.Marshal(survey)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, id.Hex(), data); err != nil {
			h.logger(r).Warn().Err(err).Str("survey_id", id.Hex()).Msg("survey cache write failed")
		}
		w.Header().Set("X-Cache", "MISS")
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (h *Handler) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ObjectID(chi.URLParam(r, "id"), "survey")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	fields, err := decodeSurvey(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(fields) == 0 {
		h.writeError(w, r, errs.NewBadRequestError("Update must contain at least one field", nil))
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	err = h.surveys.Update(ctx, id, fields)
	if errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, r, errs.NewNotFoundError("Survey not found"))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, id.Hex()); err != nil {
			h.logger(r).Warn().Err(err).Str("survey_id", id.Hex()).Msg("survey cache invalidation failed")
		}
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Survey updated successfully!"})
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
