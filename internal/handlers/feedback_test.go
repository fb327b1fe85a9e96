package handlers

import (
	"net/http"
	"testing"
	"time"
)

func TestListFeedbackEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/feedback", nil)
	body := decodeMap(t, rec)
	feedbacks, ok := body["feedbacks"].([]interface{})
	if rec.Code != http.StatusOK || body["success"] != true || !ok || len(feedbacks) != 0 {
		t.Errorf("empty list = %d %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitAndListFeedback(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/feedback", map[string]interface{}{
		"username": "ada",
		"email":    "ada@example.com",
		"rating":   4.5,
		"topic":    "dashboard",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeMap(t, rec)
	if created["success"] != true || created["message"] != "Feedback submitted successfully!" || created["feedbackId"] == "" {
		t.Errorf("created = %v", created)
	}

	body := decodeMap(t, env.do(http.MethodGet, "/api/feedback", nil))
	feedbacks, _ := body["feedbacks"].([]interface{})
	if len(feedbacks) != 1 {
		t.Fatalf("got %d feedbacks", len(feedbacks))
	}
	fb := feedbacks[0].(map[string]interface{})
	if fb["_id"] != created["feedbackId"] || fb["rating"] != 4.5 || fb["topic"] != "dashboard" {
		t.Errorf("feedback = %v", fb)
	}
	if fb["technical_issue"] != false || fb["profileImg"] != nil {
		t.Errorf("defaults = technical_issue:%v profileImg:%v", fb["technical_issue"], fb["profileImg"])
	}
	submitted, err := time.Parse(time.RFC3339, fb["submittedAt"].(string))
	if err != nil || !submitted.Equal(fixedNow) {
		t.Errorf("submittedAt = %v", fb["submittedAt"])
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	valid := func() map[string]interface{} {
		return map[string]interface{}{"username": "ada", "email": "ada@example.com", "rating": 5, "topic": "ui"}
	}

	for _, field := range []string{"username", "email", "rating", "topic"} {
		t.Run("missing "+field, func(t *testing.T) {
			env := newTestEnv(t)
			body := valid()
			delete(body, field)
			rec := env.do(http.MethodPost, "/api/feedback", body)
			expectError(t, rec, http.StatusBadRequest, "BAD_REQUEST", "Missing required fields ("+field+").")
		})
	}

	t.Run("zero rating", func(t *testing.T) {
		env := newTestEnv(t)
		body := valid()
		body["rating"] = 0
		expectError(t, env.do(http.MethodPost, "/api/feedback", body), http.StatusBadRequest, "BAD_REQUEST", "")
	})

	t.Run("rating not a number", func(t *testing.T) {
		env := newTestEnv(t)
		body := valid()
		body["rating"] = "five"
		resp := expectError(t, env.do(http.MethodPost, "/api/feedback", body), http.StatusBadRequest, "BAD_REQUEST", "Rating must be a number")
		fields, _ := resp["errors"].([]interface{})
		if len(fields) != 1 || fields[0].(map[string]interface{})["field"] != "rating" {
			t.Errorf("errors = %v, want field rating", fields)
		}
	})

	t.Run("rating as empty string", func(t *testing.T) {
		env := newTestEnv(t)
		body := valid()
		body["rating"] = ""
		expectError(t, env.do(http.MethodPost, "/api/feedback", body), http.StatusBadRequest, "BAD_REQUEST", "Rating must be a number")
	})
}

func TestSubmitFeedbackRatingAsString(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/feedback", map[string]interface{}{
		"username": "ada", "email": "ada@example.com", "rating": " 4.5 ", "topic": "ui",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	stored := env.feedback.items
	if len(stored) != 1 || stored[0].Rating != 4.5 {
		t.Errorf("stored = %+v, want one entry with rating 4.5", stored)
	}
}
