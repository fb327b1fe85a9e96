package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/internal/models"
	"github.com/AnshRaj112/survey-backend/internal/repository"
	"github.com/AnshRaj112/survey-backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type SubmitResponseRequest struct {
	SurveyID string      `json:"surveyId" validate:"required"`
	Answers  interface{} `json:"answers"`
}

// SubmitResponse stores answers for any surveyId string; the survey is not
// required to exist. Live subscribers are notified after the write.
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	resp := &models.SurveyResponse{
		SurveyID:    req.SurveyID,
		Answers:     req.Answers,
		SubmittedAt: h.now(),
	}
	if err := h.responses.Create(ctx, resp); err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.hub != nil {
		if err := h.hub.Publish(ctx, resp); err != nil {
			h.logger(r).Warn().Err(err).Str("survey_id", resp.SurveyID).Msg("failed to broadcast response")
		}
	}

	writeJSON(w, http.StatusCreated, CreatedResponse{Message: "Survey response submitted!", ID: resp.ID})
}

func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.dbContext(r)
	defer cancel()

	responses, err := h.responses.ListBySurvey(ctx, chi.URLParam(r, "surveyId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) GetResponse(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ObjectID(chi.URLParam(r, "id"), "response")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	resp, err := h.responses.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, r, errs.NewNotFoundError("Response not found"))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var responseUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamResponses pushes every response submitted for the survey after the
// connection opens. Clients only listen; anything they send is discarded.
func (h *Handler) StreamResponses(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyId")
	if surveyID == "" {
		h.writeError(w, r, errs.NewBadRequestError("surveyId is required", nil))
		return
	}

	events, unsubscribe := h.hub.Subscribe(surveyID)
	defer unsubscribe()

	conn, err := responseUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger(r).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger(r).With().Str("survey_id", surveyID).Logger()
	log.Info().Msg("live response subscriber connected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Info().Msg("live response subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Warn().Err(err).Msg("failed to write response event")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
