package store

import (
	"time"

	"github.com/jnx001/proj-exa/internal/model"
)

// InsertResult records one graded submission. It is never updated or
// deleted through the normal flow.
func (s *Store) InsertResult(r model.Result) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO results (student_id, exam_id, score, total_marks, submitted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.StudentID, r.ExamID, r.Score, r.TotalMarks, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// HasTaken reports whether a student already has a result for an exam.
// This is the pre-submission existence check; it is not atomic with the
// later insert.
func (s *Store) HasTaken(studentID, examID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM results WHERE student_id = ? AND exam_id = ?`,
		studentID, examID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AllResults returns every submission joined with its student and exam,
// newest first.
func (s *Store) AllResults() ([]model.ResultRow, error) {
	rows, err := s.db.Query(
		`SELECT u.full_name, u.username, e.name, r.score, r.total_marks, r.submitted_at
		 FROM results r
		 JOIN users u ON r.student_id = u.id
		 JOIN exams e ON r.exam_id = e.id
		 ORDER BY r.submitted_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ResultRow
	for rows.Next() {
		var rr model.ResultRow
		if err := rows.Scan(&rr.FullName, &rr.Username, &rr.ExamName, &rr.Score, &rr.TotalMarks, &rr.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, rr)
	}
	return results, rows.Err()
}

// ResultsForStudent returns one student's submissions, newest first.
func (s *Store) ResultsForStudent(studentID int64) ([]model.StudentResultRow, error) {
	rows, err := s.db.Query(
		`SELECT e.name, r.score, r.total_marks, r.submitted_at
		 FROM results r
		 JOIN exams e ON r.exam_id = e.id
		 WHERE r.student_id = ?
		 ORDER BY r.submitted_at DESC, r.id DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.StudentResultRow
	for rows.Next() {
		var rr model.StudentResultRow
		if err := rows.Scan(&rr.ExamName, &rr.Score, &rr.TotalMarks, &rr.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, rr)
	}
	return results, rows.Err()
}
