package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	responseChannelPrefix = "survey:responses:"
	subscriberBuffer      = 16
	maxSubscriberBackoff  = 30 * time.Second
)

// ResponseEvent is the payload pushed to live subscribers of a survey.
type ResponseEvent struct {
	Type     string                 `json:"type"`
	SurveyID string                 `json:"survey_id"`
	Response *models.SurveyResponse `json:"response"`
}

// ResponseHub fans submitted responses out to WebSocket subscribers. With a
// Redis client every instance publishes to and listens on the same channels,
// so a subscriber on one instance sees responses submitted on another.
type ResponseHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan ResponseEvent]struct{}

	redis *redis.Client
	log   zerolog.Logger
}

// NewResponseHub returns an in-process hub when client is nil.
func NewResponseHub(client *redis.Client, log zerolog.Logger) *ResponseHub {
	return &ResponseHub{
		subscribers: make(map[string]map[chan ResponseEvent]struct{}),
		redis:       client,
		log:         log,
	}
}

// Subscribe registers interest in one survey. The returned func must be
// called to release the subscription; it closes the channel.
func (h *ResponseHub) Subscribe(surveyID string) (<-chan ResponseEvent, func()) {
	ch := make(chan ResponseEvent, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.subscribers[surveyID]
	if !ok {
		subs = make(map[chan ResponseEvent]struct{})
		h.subscribers[surveyID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[surveyID], ch)
			if len(h.subscribers[surveyID]) == 0 {
				delete(h.subscribers, surveyID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish announces a stored response. Without Redis, or when the publish
// fails, it is delivered to local subscribers directly.
func (h *ResponseHub) Publish(ctx context.Context, resp *models.SurveyResponse) error {
	event := ResponseEvent{Type: "response", SurveyID: resp.SurveyID, Response: resp}

	if h.redis == nil {
		h.fanOut(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := h.redis.Publish(ctx, responseChannelPrefix+resp.SurveyID, data).Err(); err != nil {
		h.fanOut(event)
		return fmt.Errorf("publish response event: %w", err)
	}
	return nil
}

func (h *ResponseHub) fanOut(event ResponseEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.SurveyID] {
		// Slow subscribers lose events instead of stalling publishers.
		select {
		case ch <- event:
		default:
			h.log.Warn().Str("survey_id", event.SurveyID).Msg("dropping response event for slow subscriber")
		}
	}
}

// Run relays Redis messages to local subscribers until ctx is done. It
// returns immediately when the hub has no Redis client.
func (h *ResponseHub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		err := h.relay(ctx, func() { backoff = time.Second })
		if ctx.Err() != nil {
			return
		}
		h.log.Error().Err(err).Dur("retry_in", backoff).Msg("response subscriber disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxSubscriberBackoff {
			backoff = maxSubscriberBackoff
		}
	}
}

func (h *ResponseHub) relay(ctx context.Context, onMessage func()) error {
	pubsub := h.redis.PSubscribe(ctx, responseChannelPrefix+"*")
	defer pubsub.Close()

	h.log.Info().Str("pattern", responseChannelPrefix+"*").Msg("response subscriber started")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		onMessage()

		var event ResponseEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			h.log.Warn().Err(err).Str("channel", msg.Channel).Msg("failed to unmarshal response event")
			continue
		}
		if event.SurveyID == "" {
			event.SurveyID = strings.TrimPrefix(msg.Channel, responseChannelPrefix)
		}
		h.fanOut(event)
	}
}
