package routes

import (
	"github.com/AnshRaj112/survey-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Health checks
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)

	// Survey routes
	r.Post("/api/surveys", h.CreateSurvey)
	r.Get("/api/surveys", h.ListSurveys)
	r.Get("/api/surveys/{id}", h.GetSurvey)
	r.Put("/api/surveys/{id}", h.UpdateSurvey)

	// Survey response routes
	r.Post("/api/survey-responses", h.SubmitResponse)
	r.Get("/api/survey-responses/response/{id}", h.GetResponse)
	r.Get("/api/survey-responses/{surveyId}", h.ListResponses)
	r.Get("/ws/survey-responses/{surveyId}", h.StreamResponses)

	// User routes
	r.Get("/api/users", h.LookupUser)
	r.Post("/api/users", h.RegisterUser)
	r.Post("/api/users/create", h.RegisterUser)
	r.Post("/api/users/register", h.RegisterUser)
	r.Post("/api/users/login", h.Login)
	r.Post("/api/providers/login", h.ProviderLogin)

	// Feedback routes
	r.Post("/api/feedback", h.SubmitFeedback)
	r.Get("/api/feedback", h.ListFeedback)

	// File upload routes
	r.Post("/api/upload", h.UploadImage)
}
