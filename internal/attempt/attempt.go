// Package attempt implements the exam-taking flow. An Attempt is the
// explicit session context for one student working through one exam:
// it lives in memory only, and losing it simply lets the student restart.
package attempt

import (
	"errors"
	"fmt"
	"time"

	"github.com/jnx001/proj-exa/internal/model"
	"github.com/jnx001/proj-exa/internal/store"
)

var (
	// ErrAlreadyTaken means the student already has a result for the exam.
	ErrAlreadyTaken = errors.New("exam already taken")
	// ErrNoQuestions means the exam has no questions to present.
	ErrNoQuestions = errors.New("exam has no questions")
	// ErrNotInProgress means the attempt is not open for answers.
	ErrNotInProgress = errors.New("attempt not in progress")
	// ErrUnanswered blocks submission while any question has no selection.
	ErrUnanswered = errors.New("question not answered")
	// ErrUnknownQuestion means the question does not belong to the exam.
	ErrUnknownQuestion = errors.New("question not in exam")
	// ErrInvalidOption means the selection is not one of A-D.
	ErrInvalidOption = errors.New("invalid option")
)

// State is the lifecycle position of an attempt.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
)

// Attempt holds the in-progress state of one student-exam pairing: the
// question set frozen at start time and one selection per question.
type Attempt struct {
	StudentID  int64
	Exam       model.Exam
	Questions  []model.Question
	State      State
	Selections map[int64]model.Option
}

// Start opens an attempt. It requires the exam to exist, to have at least
// one question, and the student to have no prior result for it. The
// has-taken check and the eventual result insert are separate statements,
// so two racing sessions can both pass it; that race is accepted.
func Start(s *store.Store, studentID, examID int64) (*Attempt, error) {
	exam, err := s.GetExam(examID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam == nil {
		return nil, fmt.Errorf("exam %d: %w", examID, store.ErrNotFound)
	}

	taken, err := s.HasTaken(studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("check prior result: %w", err)
	}
	if taken {
		return nil, ErrAlreadyTaken
	}

	questions, err := s.ListQuestions(examID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	return &Attempt{
		StudentID:  studentID,
		Exam:       *exam,
		Questions:  questions,
		State:      StateInProgress,
		Selections: make(map[int64]model.Option, len(questions)),
	}, nil
}

// Select records the student's option for one question, replacing any
// earlier choice.
func (a *Attempt) Select(questionID int64, opt model.Option) error {
	if a.State != StateInProgress {
		return ErrNotInProgress
	}
	if !opt.Valid() {
		return fmt.Errorf("%q: %w", opt, ErrInvalidOption)
	}
	for _, q := range a.Questions {
		if q.ID == questionID {
			a.Selections[questionID] = opt
			return nil
		}
	}
	return fmt.Errorf("question %d: %w", questionID, ErrUnknownQuestion)
}

// Unanswered returns the IDs of questions that have no selection yet, in
// presentation order.
func (a *Attempt) Unanswered() []int64 {
	var missing []int64
	for _, q := range a.Questions {
		if _, ok := a.Selections[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// Submit scores the attempt and records one result row snapshotting the
// exam's declared total marks. Every question must have a selection first.
// If the insert fails the attempt stays in progress so submission can be
// retried; a retry that succeeds after a partial failure is not
// deduplicated.
func (a *Attempt) Submit(s *store.Store) (*model.Result, error) {
	if a.State != StateInProgress {
		return nil, ErrNotInProgress
	}
	if missing := a.Unanswered(); len(missing) > 0 {
		return nil, fmt.Errorf("question %d: %w", missing[0], ErrUnanswered)
	}

	res := model.Result{
		StudentID:  a.StudentID,
		ExamID:     a.Exam.ID,
		Score:      Score(a.Questions, a.Selections),
		TotalMarks: a.Exam.TotalMarks,
	}
	id, err := s.InsertResult(res)
	if err != nil {
		return nil, fmt.Errorf("record result: %w", err)
	}
	res.ID = id
	res.SubmittedAt = time.Now()

	a.State = StateSubmitted
	a.Selections = nil
	return &res, nil
}

// Score sums the marks of every question whose selection matches its
// correct option. No partial credit, no negative marking.
func Score(questions []model.Question, selections map[int64]model.Option) int {
	score := 0
	for _, q := range questions {
		if selections[q.ID] == q.CorrectOption {
			score += q.Marks
		}
	}
	return score
}
