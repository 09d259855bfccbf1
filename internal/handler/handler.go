package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jnx001/proj-exa/internal/attempt"
	appI18n "github.com/jnx001/proj-exa/internal/i18n"
	"github.com/jnx001/proj-exa/internal/model"
	"github.com/jnx001/proj-exa/internal/store"
)

// Config holds runtime handler parameters set via CLI flags.
type Config struct {
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers, including the
// in-progress attempts of logged-in students. Attempts are process-local;
// a restart loses them and students simply start over.
type Handler struct {
	store    *store.Store
	config   Config
	validate *validator.Validate

	mu       sync.Mutex
	attempts map[int64]*attempt.Attempt // keyed by student ID
}

// New creates a new Handler.
func New(s *store.Store, cfg Config) *Handler {
	return &Handler{
		store:    s,
		config:   cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		attempts: make(map[int64]*attempt.Attempt),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/logout", h.handleLogout)
		r.Get("/exams", h.handleListExams)
		r.Get("/exams/{examID}/questions", h.handleListQuestions)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleAdmin))
			r.Post("/exams", h.handleCreateExam)
			r.Post("/exams/{examID}/questions", h.handleAddQuestion)
			r.Delete("/exams/{examID}", h.handleDeleteExam)
			r.Get("/results", h.handleAllResults)
			r.Get("/results/summary", h.handleResultsSummary)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleStudent))
			r.Get("/exams/available", h.handleAvailableExams)
			r.Post("/exams/{examID}/start", h.handleStartExam)
			r.Post("/exams/{examID}/answer", h.handleAnswer)
			r.Post("/exams/{examID}/submit", h.handleSubmit)
			r.Get("/results/mine", h.handleMyResults)
		})
	})
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// message sends a localized single-message response.
func (h *Handler) message(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	h.respondJSON(w, status, messageResponse{Message: appI18n.T(r.Context(), msgID)})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	h.message(w, r, http.StatusInternalServerError, "InternalError")
}

// decodeValid decodes a JSON body into dst and validates it. On failure it
// writes a 400 with the validation detail and returns false; no persistence
// operation runs after that.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.validationError(w, r, err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.validationError(w, r, err)
		return false
	}
	return true
}

func (h *Handler) validationError(w http.ResponseWriter, r *http.Request, err error) {
	detail := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		detail = fe.Field() + " failed on " + fe.Tag()
	}
	h.respondJSON(w, http.StatusBadRequest, messageResponse{
		Message: appI18n.Td(r.Context(), "ValidationError", map[string]any{"Detail": detail}),
	})
}

// attemptFor returns the student's in-progress attempt, or nil.
func (h *Handler) attemptFor(studentID int64) *attempt.Attempt {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts[studentID]
}

func (h *Handler) setAttempt(studentID int64, a *attempt.Attempt) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts[studentID] = a
}

func (h *Handler) clearAttempt(studentID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.attempts, studentID)
}

// drainBody decodes an optional JSON body into dst. An empty body is fine;
// anything present must decode and validate.
func (h *Handler) drainBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return true
	}
	if err != nil {
		h.validationError(w, r, err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.validationError(w, r, err)
		return false
	}
	return true
}
