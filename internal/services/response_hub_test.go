package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func receive(t *testing.T, ch <-chan ResponseEvent) ResponseEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response event")
	}
	return ResponseEvent{}
}

func expectNothing(t *testing.T, ch <-chan ResponseEvent) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForPatternSubscribers(t *testing.T, m *miniredis.Miniredis, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.PubSubNumPat() < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d pattern subscribers, want %d", m.PubSubNumPat(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestResponseHubLocal(t *testing.T) {
	hub := NewResponseHub(nil, zerolog.New(io.Discard))
	ctx := context.Background()

	lunch, unsubLunch := hub.Subscribe("lunch")
	defer unsubLunch()
	dinner, unsubDinner := hub.Subscribe("dinner")
	defer unsubDinner()

	resp := &models.SurveyResponse{SurveyID: "lunch", Answers: "pizza"}
	if err := hub.Publish(ctx, resp); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	ev := receive(t, lunch)
	if ev.Type != "response" || ev.SurveyID != "lunch" || ev.Response.Answers != "pizza" {
		t.Errorf("event = %+v", ev)
	}
	expectNothing(t, dinner)
}

func TestResponseHubUnsubscribe(t *testing.T) {
	hub := NewResponseHub(nil, zerolog.New(io.Discard))

	ch, unsub := hub.Subscribe("lunch")
	unsub()
	unsub()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	if err := hub.Publish(context.Background(), &models.SurveyResponse{SurveyID: "lunch"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(hub.subscribers) != 0 {
		t.Errorf("subscriber map not cleaned up: %v", hub.subscribers)
	}
}

func TestResponseHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewResponseHub(nil, zerolog.New(io.Discard))
	ch, unsub := hub.Subscribe("lunch")
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = hub.Publish(context.Background(), &models.SurveyResponse{SurveyID: "lunch"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d events, want %d", len(ch), subscriberBuffer)
	}
}

func TestResponseHubAcrossInstances(t *testing.T) {
	m, client := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := NewResponseHub(client, zerolog.New(io.Discard))
	listener := NewResponseHub(client, zerolog.New(io.Discard))
	go publisher.Run(ctx)
	go listener.Run(ctx)
	waitForPatternSubscribers(t, m, 2)

	remote, unsubRemote := listener.Subscribe("lunch")
	defer unsubRemote()
	local, unsubLocal := publisher.Subscribe("lunch")
	defer unsubLocal()
	other, unsubOther := listener.Subscribe("dinner")
	defer unsubOther()

	resp := &models.SurveyResponse{SurveyID: "lunch", Answers: map[string]interface{}{"q1": "yes"}}
	if err := publisher.Publish(ctx, resp); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	ev := receive(t, remote)
	answers, ok := ev.Response.Answers.(map[string]interface{})
	if !ok || answers["q1"] != "yes" {
		t.Errorf("remote event answers = %#v", ev.Response.Answers)
	}
	if ev := receive(t, local); ev.SurveyID != "lunch" {
		t.Errorf("local event = %+v", ev)
	}
	expectNothing(t, other)
}

func TestResponseHubFallsBackWhenRedisFails(t *testing.T) {
	m, client := newTestRedis(t)
	hub := NewResponseHub(client, zerolog.New(io.Discard))
	ch, unsub := hub.Subscribe("lunch")
	defer unsub()

	m.SetError("ERR simulated outage")
	err := hub.Publish(context.Background(), &models.SurveyResponse{SurveyID: "lunch"})
	if err == nil {
		t.Fatal("expected publish error")
	}
	if ev := receive(t, ch); ev.SurveyID != "lunch" {
		t.Errorf("event = %+v", ev)
	}
}
