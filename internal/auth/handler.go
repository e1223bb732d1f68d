package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hamzamohiuddin1/msaconnect/internal/httputil"
	"github.com/hamzamohiuddin1/msaconnect/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the unauthenticated auth endpoints.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)
	router.Get("/auth/confirm-email/{token}", h.ConfirmEmail)
}

// RegisterProtectedRoutes registers endpoints that require a bearer token.
func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/me", h.Me)
	router.Put("/auth/profile", h.UpdateProfile)
}

// Register creates a new user account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		respondValidationError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, ErrInvalidDomain) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("registration failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "server error during registration")
		return
	}

	h.logger.Info("user registered", "email", resp.User.Email)
	httputil.RespondWithJSON(w, http.StatusCreated, resp)
}

// Login authenticates a user
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		respondValidationError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "server error during login")
		return
	}

	h.logger.Info("user logged in", "email", req.Email)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// ConfirmEmail exchanges a confirmation token for a confirmed account
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.service.ConfirmEmail(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("email confirmation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "server error during email confirmation")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Email confirmed successfully. You can now log in.",
	})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.Error("failed to load current user", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "server error")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// UpdateProfile applies a partial update to the authenticated user's profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		respondValidationError(w, err)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.Error("profile update failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "server error during profile update")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

// respondValidationError writes field-level validation messages.
func respondValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		httputil.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  fields,
		})
		return
	}
	httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
}
