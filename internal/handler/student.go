package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jnx001/proj-exa/internal/attempt"
	appI18n "github.com/jnx001/proj-exa/internal/i18n"
	"github.com/jnx001/proj-exa/internal/model"
	"github.com/jnx001/proj-exa/internal/report"
	"github.com/jnx001/proj-exa/internal/store"
)

// questionView is the student-facing question shape: no correct option.
type questionView struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
	Marks   int    `json:"marks"`
}

func questionViews(questions []model.Question) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{
			ID:      q.ID,
			Text:    q.Text,
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
			Marks:   q.Marks,
		})
	}
	return views
}

// availableExamView is one row of the student's exam listing.
type availableExamView struct {
	model.Exam
	Questions int  `json:"questions"`
	Taken     bool `json:"taken"`
}

type answerRequest struct {
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Selected   string `json:"selected" validate:"required,oneof=A B C D"`
}

// submitRequest optionally carries last-moment selections; the usual flow
// records them one by one through the answer endpoint first.
type submitRequest struct {
	Selections []answerRequest `json:"selections" validate:"omitempty,dive"`
}

func (h *Handler) handleAvailableExams(w http.ResponseWriter, r *http.Request) {
	student := model.UserFromContext(r.Context())

	exams, err := h.store.ListExams()
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	views := make([]availableExamView, 0, len(exams))
	for _, e := range exams {
		count, err := h.store.QuestionCount(e.ID)
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		taken, err := h.store.HasTaken(student.ID, e.ID)
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		views = append(views, availableExamView{Exam: e, Questions: count, Taken: taken})
	}
	h.respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleStartExam(w http.ResponseWriter, r *http.Request) {
	student := model.UserFromContext(r.Context())
	examID, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid exam ID", http.StatusBadRequest)
		return
	}

	att, err := attempt.Start(h.store, student.ID, examID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.message(w, r, http.StatusNotFound, "ExamNotFound")
		return
	case errors.Is(err, attempt.ErrAlreadyTaken):
		h.message(w, r, http.StatusConflict, "ExamAlreadyTaken")
		return
	case errors.Is(err, attempt.ErrNoQuestions):
		h.message(w, r, http.StatusConflict, "ExamNoQuestions")
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	// Replacing an earlier unfinished attempt is a restart; its answers
	// are gone.
	h.setAttempt(student.ID, att)

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":   appI18n.T(r.Context(), "AttemptInProgress"),
		"exam":      att.Exam,
		"questions": questionViews(att.Questions),
	})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	student := model.UserFromContext(r.Context())
	examID, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid exam ID", http.StatusBadRequest)
		return
	}

	att := h.attemptFor(student.ID)
	if att == nil || att.Exam.ID != examID {
		h.message(w, r, http.StatusConflict, "AttemptNotStarted")
		return
	}

	var req answerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := att.Select(req.QuestionID, model.Option(req.Selected)); err != nil {
		h.validationError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"answered":  len(att.Selections),
		"remaining": len(att.Unanswered()),
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	student := model.UserFromContext(r.Context())
	examID, err := strconv.ParseInt(chi.URLParam(r, "examID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid exam ID", http.StatusBadRequest)
		return
	}

	att := h.attemptFor(student.ID)
	if att == nil || att.Exam.ID != examID {
		h.message(w, r, http.StatusConflict, "AttemptNotStarted")
		return
	}

	var req submitRequest
	if !h.drainBody(w, r, &req) {
		return
	}
	for _, sel := range req.Selections {
		if err := att.Select(sel.QuestionID, model.Option(sel.Selected)); err != nil {
			h.validationError(w, r, err)
			return
		}
	}

	result, err := att.Submit(h.store)
	if errors.Is(err, attempt.ErrUnanswered) {
		h.message(w, r, http.StatusBadRequest, "UnansweredQuestion")
		return
	}
	if err != nil {
		// The attempt stays in progress; the student may retry the
		// submission.
		h.internalError(w, r, err)
		return
	}
	h.clearAttempt(student.ID)

	pct := report.Percentage(result.Score, result.TotalMarks)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"message": appI18n.Td(r.Context(), "ExamSubmitted", map[string]any{
			"Score":   result.Score,
			"Total":   result.TotalMarks,
			"Percent": fmt.Sprintf("%.2f", pct),
		}),
		"result": result,
	})
}

// studentResultView adds the derived percentage and grade band to a
// history row.
type studentResultView struct {
	model.StudentResultRow
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

func (h *Handler) handleMyResults(w http.ResponseWriter, r *http.Request) {
	student := model.UserFromContext(r.Context())

	rows, err := h.store.ResultsForStudent(student.ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	views := make([]studentResultView, 0, len(rows))
	for _, row := range rows {
		pct := report.Percentage(row.Score, row.TotalMarks)
		views = append(views, studentResultView{
			StudentResultRow: row,
			Percentage:       pct,
			Grade:            report.Grade(pct),
		})
	}
	h.respondJSON(w, http.StatusOK, views)
}
