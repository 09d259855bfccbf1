package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jnx001/proj-exa/internal/model"
	"github.com/jnx001/proj-exa/internal/report"
	"github.com/jnx001/proj-exa/internal/store"
)

type createExamRequest struct {
	Name            string `json:"name" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	TotalMarks      int    `json:"total_marks" validate:"required,gt=0"`
}

type addQuestionRequest struct {
	Text          string `json:"text" validate:"required"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c" validate:"required"`
	OptionD       string `json:"option_d" validate:"required"`
	CorrectOption string `json:"correct_option" validate:"required,oneof=A B C D"`
	Marks         int    `json:"marks" validate:"omitempty,gt=0"`
}

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var req createExamRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	admin := model.UserFromContext(r.Context())

	id, err := h.store.CreateExam(model.Exam{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		TotalMarks:      req.TotalMarks,
		CreatedBy:       admin.ID,
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid exam ID", http.StatusBadRequest)
		return
	}

	var req addQuestionRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if req.Marks == 0 {
		req.Marks = 1
	}

	exam, err := h.store.GetExam(examID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if exam == nil {
		h.message(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}

	id, err := h.store.AddQuestion(model.Question{
		ExamID:        examID,
		Text:          req.Text,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: model.Option(req.CorrectOption),
		Marks:         req.Marks,
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid exam ID", http.StatusBadRequest)
		return
	}

	err = h.store.DeleteExam(examID)
	if errors.Is(err, store.ErrNotFound) {
		h.message(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.message(w, r, http.StatusOK, "ExamDeleted")
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, exams)
}

// handleListQuestions returns an exam's questions. Admins get the answer
// key; students get the presentation view only.
func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid exam ID", http.StatusBadRequest)
		return
	}

	questions, err := h.store.ListQuestions(examID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	user := model.UserFromContext(r.Context())
	if user.Role == model.RoleAdmin {
		h.respondJSON(w, http.StatusOK, questions)
		return
	}
	h.respondJSON(w, http.StatusOK, questionViews(questions))
}

// resultRowView adds the derived percentage to a dashboard row.
type resultRowView struct {
	model.ResultRow
	Percentage float64 `json:"percentage"`
}

func (h *Handler) handleAllResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.AllResults()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	views := make([]resultRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, resultRowView{
			ResultRow:  row,
			Percentage: report.Percentage(row.Score, row.TotalMarks),
		})
	}
	h.respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleResultsSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.AllResults()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, report.Summarize(rows))
}
