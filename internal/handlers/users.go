package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/internal/models"
	"github.com/AnshRaj112/survey-backend/internal/repository"
	"github.com/AnshRaj112/survey-backend/internal/validation"
	"github.com/AnshRaj112/survey-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const duplicateEmailMessage = "User with this email already exists."

type RegisterRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,maxbytes=72"`
	ProfileImg *string `json:"profileImg"`
	GodAccess  bool    `json:"god_access"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LookupUserResponse struct {
	Exists bool         `json:"exists"`
	Data   *models.User `json:"data,omitempty"`
}

type RegisterResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	UserID  primitive.ObjectID `json:"userId"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

type ProviderLoginResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Provider *models.User `json:"provider"`
}

// LookupUser answers whether an account exists for ?email=.
func (h *Handler) LookupUser(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		h.writeError(w, r, errs.NewBadRequestError("Email query parameter is required", []errs.FieldError{
			{Field: "email", Error: "is required"},
		}))
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, LookupUserResponse{Exists: false})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LookupUserResponse{Exists: true, Data: user})
}

// RegisterUser backs /api/users/register, /api/users/create and POST /api/users.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	_, err := h.users.FindByEmail(ctx, req.Email)
	if err == nil {
		h.writeError(w, r, errs.NewBadRequestError(duplicateEmailMessage, nil))
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, r, err)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user := &models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hashed,
		ProfileImg: req.ProfileImg,
		GodAccess:  req.GodAccess,
	}
	id, err := h.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		h.writeError(w, r, errs.NewBadRequestError(duplicateEmailMessage, nil))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Success: true,
		Message: "User registered successfully!",
		UserID:  id,
	})
}

// authenticate returns the user only when the password verifies against the
// stored hash. notFound and mismatch are the client messages for each case.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, notFound, mismatch string) (*models.User, bool) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		h.writeError(w, r, err)
		return nil, false
	}

	ctx, cancel := h.dbContext(r)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, r, errs.NewUnauthorizedError(notFound))
		return nil, false
	}
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil {
		h.logger(r).Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("stored credential could not be verified")
	}
	if !ok {
		h.writeError(w, r, errs.NewUnauthorizedError(mismatch))
		return nil, false
	}
	return user, true
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r, "Invalid credentials", "Invalid credentials")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, User: user})
}

func (h *Handler) ProviderLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.authenticate(w, r, "Provider not found.", "Invalid credentials.")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ProviderLoginResponse{
		Success:  true,
		Message:  "Provider login successful!",
		Provider: provider,
	})
}
