package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jnx001/proj-exa/internal/model"
)

// CreateExam inserts an exam and returns its identifier.
func (s *Store) CreateExam(e model.Exam) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO exams (name, duration_minutes, total_marks, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Name, e.DurationMinutes, e.TotalMarks, e.CreatedBy, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetExam returns an exam by ID, or nil if absent.
func (s *Store) GetExam(id int64) (*model.Exam, error) {
	var e model.Exam
	err := s.db.QueryRow(
		`SELECT id, name, duration_minutes, total_marks, created_by, created_at
		 FROM exams WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &e.DurationMinutes, &e.TotalMarks, &e.CreatedBy, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExams returns all exams, newest first.
func (s *Store) ListExams() ([]model.Exam, error) {
	rows, err := s.db.Query(
		`SELECT id, name, duration_minutes, total_marks, created_by, created_at
		 FROM exams ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.DurationMinutes, &e.TotalMarks, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// DeleteExam removes an exam. Its questions and results go with it through
// the cascade constraints. Irreversible.
func (s *Store) DeleteExam(id int64) error {
	res, err := s.db.Exec(`DELETE FROM exams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("exam %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddQuestion appends one question to an existing exam. The correct_option
// check constraint is the only validation at this level.
func (s *Store) AddQuestion(q model.Question) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO questions (exam_id, text, option_a, option_b, option_c, option_d, correct_option, marks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ExamID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Marks,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListQuestions returns the questions of an exam in storage order.
func (s *Store) ListQuestions(examID int64) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_id, text, option_a, option_b, option_c, option_d, correct_option, marks
		 FROM questions WHERE exam_id = ?`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption, &q.Marks); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// QuestionCount returns the number of questions in an exam.
func (s *Store) QuestionCount(examID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions WHERE exam_id = ?`, examID).Scan(&count)
	return count, err
}
