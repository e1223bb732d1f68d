package classes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hamzamohiuddin1/msaconnect/internal/auth"
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

// RegisterRoutes registers the class endpoints. All of them require auth.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/classes", h.GetClasses)
	router.Put("/classes", h.UpdateClasses)
	router.Get("/classes/classmates/{courseId}/{sectionCode}", h.FindClassmates)
	router.Post("/classes/send-new-classmate-email", h.SendNewClassmateEmail)
}

// GetClasses returns the caller's class list
func (h *Handler) GetClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	classList, err := h.service.GetClasses(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "failed to fetch classes")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"classes": classList})
}

// UpdateClasses normalizes and replaces the caller's full class list
func (h *Handler) UpdateClasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateClassesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	classList, err := h.service.ReplaceClasses(r.Context(), userID, req.Classes)
	if err != nil {
		if errors.Is(err, ErrInvalidClass) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.handleServiceError(w, err, "failed to update classes")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Classes updated successfully",
		"classes": classList,
	})
}

// FindClassmates returns other confirmed users sharing a course
func (h *Handler) FindClassmates(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	courseID := chi.URLParam(r, "courseId")
	sectionCode := chi.URLParam(r, "sectionCode")

	resp, err := h.service.FindClassmates(r.Context(), userID, courseID, sectionCode)
	if err != nil {
		h.handleServiceError(w, err, "failed to find classmates")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// SendNewClassmateEmail triggers the notification fan-out for a course the
// caller just added
func (h *Handler) SendNewClassmateEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	queued, err := h.service.NotifyNewClassmates(r.Context(), userID, req.CourseID, req.SectionCode)
	if err != nil {
		h.handleServiceError(w, err, "failed to queue classmate notifications")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Classmate notifications queued",
		"count":   queued,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, logMessage string) {
	if errors.Is(err, user.ErrNotFound) {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.logger.Error(logMessage, "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "server error")
}
