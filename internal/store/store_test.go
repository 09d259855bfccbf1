package store

import (
	"errors"
	"testing"

	"github.com/jnx001/proj-exa/internal/auth"
	"github.com/jnx001/proj-exa/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, username, password string, role model.Role) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Username:       username,
		PasswordDigest: auth.Digest(password),
		Role:           role,
		FullName:       "Test " + username,
		Email:          username + "@example.com",
	})
	if err != nil {
		t.Fatalf("createTestUser(%s): %v", username, err)
	}
	return id
}

func createTestExam(t *testing.T, s *Store, name string, totalMarks int, createdBy int64) int64 {
	t.Helper()
	id, err := s.CreateExam(model.Exam{
		Name:            name,
		DurationMinutes: 30,
		TotalMarks:      totalMarks,
		CreatedBy:       createdBy,
	})
	if err != nil {
		t.Fatalf("createTestExam(%s): %v", name, err)
	}
	return id
}

func addTestQuestion(t *testing.T, s *Store, examID int64, text string, correct model.Option, marks int) int64 {
	t.Helper()
	id, err := s.AddQuestion(model.Question{
		ExamID:        examID,
		Text:          text,
		OptionA:       "option a",
		OptionB:       "option b",
		OptionC:       "option c",
		OptionD:       "option d",
		CorrectOption: correct,
		Marks:         marks,
	})
	if err != nil {
		t.Fatalf("addTestQuestion(%s): %v", text, err)
	}
	return id
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)

	// New already migrated; a second pass must not error on existing
	// tables or columns.
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if err := s.ensureUserColumns(); err != nil {
		t.Fatalf("ensureUserColumns on current schema: %v", err)
	}
}

func TestEnsureUserColumnsUpgradesLegacyTable(t *testing.T) {
	s := newTestStore(t)

	// Rebuild users the way a pre-email deployment created it.
	if _, err := s.db.Exec(`DROP TABLE users`); err != nil {
		t.Fatalf("drop users: %v", err)
	}
	_, err := s.db.Exec(`
	CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_digest TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy users: %v", err)
	}

	if err := s.ensureUserColumns(); err != nil {
		t.Fatalf("ensureUserColumns: %v", err)
	}
	if err := s.ensureUserColumns(); err != nil {
		t.Fatalf("ensureUserColumns second run: %v", err)
	}

	if _, err := createUser(s, "alice"); err != nil {
		t.Fatalf("insert with upgraded columns: %v", err)
	}
}

func createUser(s *Store, username string) (int64, error) {
	return s.CreateUser(model.User{
		Username:       username,
		PasswordDigest: auth.Digest("secret123"),
		Role:           model.RoleStudent,
		FullName:       "Full Name",
		Email:          username + "@example.com",
	})
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "alice", "secret123", model.RoleStudent)

	_, err := createUser(s, "alice")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if _, err := createUser(s, "bob"); err != nil {
		t.Fatalf("unused username rejected: %v", err)
	}

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 users, got %d", count)
	}
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "alice", "secret123", model.RoleStudent)

	tests := []struct {
		name     string
		username string
		password string
		role     model.Role
		wantUser bool
	}{
		{"match", "alice", "secret123", model.RoleStudent, true},
		{"wrong password", "alice", "wrong", model.RoleStudent, false},
		{"wrong username", "bob", "secret123", model.RoleStudent, false},
		{"wrong role", "alice", "secret123", model.RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.Authenticate(tt.username, tt.password, tt.role)
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if (u != nil) != tt.wantUser {
				t.Errorf("got user %v, want match=%v", u, tt.wantUser)
			}
			if u != nil && u.Username != tt.username {
				t.Errorf("got username %q, want %q", u.Username, tt.username)
			}
		})
	}
}

func TestExamCRUD(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)

	first := createTestExam(t, s, "Midterm", 10, adminID)
	second := createTestExam(t, s, "Final", 20, adminID)

	exam, err := s.GetExam(first)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if exam == nil || exam.Name != "Midterm" || exam.TotalMarks != 10 {
		t.Fatalf("unexpected exam: %+v", exam)
	}

	missing, err := s.GetExam(9999)
	if err != nil {
		t.Fatalf("GetExam missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing exam, got %+v", missing)
	}

	exams, err := s.ListExams()
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("expected 2 exams, got %d", len(exams))
	}
	// Newest first.
	if exams[0].ID != second || exams[1].ID != first {
		t.Errorf("unexpected order: %d, %d", exams[0].ID, exams[1].ID)
	}
}

func TestQuestions(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)
	examID := createTestExam(t, s, "Midterm", 3, adminID)

	q1 := addTestQuestion(t, s, examID, "Q1", model.OptionA, 1)
	addTestQuestion(t, s, examID, "Q2", model.OptionB, 2)

	count, err := s.QuestionCount(examID)
	if err != nil {
		t.Fatalf("QuestionCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 questions, got %d", count)
	}

	questions, err := s.ListQuestions(examID)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].ID != q1 || questions[0].CorrectOption != model.OptionA {
		t.Errorf("unexpected first question: %+v", questions[0])
	}
	if questions[1].Marks != 2 {
		t.Errorf("expected marks 2, got %d", questions[1].Marks)
	}
}

func TestAddQuestionRejectsBadOption(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)
	examID := createTestExam(t, s, "Midterm", 1, adminID)

	_, err := s.AddQuestion(model.Question{
		ExamID:        examID,
		Text:          "bad",
		OptionA:       "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: "E",
		Marks:         1,
	})
	if err == nil {
		t.Fatal("expected check constraint failure for correct_option E")
	}
}

func TestHasTaken(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)
	studentID := createTestUser(t, s, "alice", "secret123", model.RoleStudent)
	examID := createTestExam(t, s, "Midterm", 10, adminID)

	taken, err := s.HasTaken(studentID, examID)
	if err != nil {
		t.Fatalf("HasTaken: %v", err)
	}
	if taken {
		t.Fatal("expected not taken before any result")
	}

	if _, err := s.InsertResult(model.Result{StudentID: studentID, ExamID: examID, Score: 7, TotalMarks: 10}); err != nil {
		t.Fatalf("InsertResult: %v", err)
	}

	taken, err = s.HasTaken(studentID, examID)
	if err != nil {
		t.Fatalf("HasTaken after insert: %v", err)
	}
	if !taken {
		t.Fatal("expected taken after result insert")
	}
}

func TestResultProjections(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)
	alice := createTestUser(t, s, "alice", "secret123", model.RoleStudent)
	bob := createTestUser(t, s, "bob", "secret123", model.RoleStudent)
	midterm := createTestExam(t, s, "Midterm", 10, adminID)
	final := createTestExam(t, s, "Final", 20, adminID)

	for _, r := range []model.Result{
		{StudentID: alice, ExamID: midterm, Score: 7, TotalMarks: 10},
		{StudentID: bob, ExamID: midterm, Score: 4, TotalMarks: 10},
		{StudentID: alice, ExamID: final, Score: 18, TotalMarks: 20},
	} {
		if _, err := s.InsertResult(r); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}

	all, err := s.AllResults()
	if err != nil {
		t.Fatalf("AllResults: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	// Newest first: alice/Final was inserted last.
	if all[0].Username != "alice" || all[0].ExamName != "Final" || all[0].Score != 18 {
		t.Errorf("unexpected first row: %+v", all[0])
	}
	if all[0].FullName != "Test alice" {
		t.Errorf("join lost full name: %+v", all[0])
	}

	mine, err := s.ResultsForStudent(alice)
	if err != nil {
		t.Fatalf("ResultsForStudent: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 rows for alice, got %d", len(mine))
	}
	if mine[0].ExamName != "Final" || mine[1].ExamName != "Midterm" {
		t.Errorf("unexpected order: %+v", mine)
	}
}

func TestDeleteExamCascades(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)
	studentID := createTestUser(t, s, "alice", "secret123", model.RoleStudent)
	doomed := createTestExam(t, s, "Doomed", 5, adminID)
	kept := createTestExam(t, s, "Kept", 5, adminID)

	addTestQuestion(t, s, doomed, "DQ", model.OptionA, 5)
	addTestQuestion(t, s, kept, "KQ", model.OptionB, 5)
	if _, err := s.InsertResult(model.Result{StudentID: studentID, ExamID: doomed, Score: 5, TotalMarks: 5}); err != nil {
		t.Fatalf("InsertResult doomed: %v", err)
	}
	if _, err := s.InsertResult(model.Result{StudentID: studentID, ExamID: kept, Score: 0, TotalMarks: 5}); err != nil {
		t.Fatalf("InsertResult kept: %v", err)
	}

	if err := s.DeleteExam(doomed); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}

	count, err := s.QuestionCount(doomed)
	if err != nil {
		t.Fatalf("QuestionCount doomed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascade to remove questions, found %d", count)
	}
	taken, err := s.HasTaken(studentID, doomed)
	if err != nil {
		t.Fatalf("HasTaken doomed: %v", err)
	}
	if taken {
		t.Error("expected cascade to remove results")
	}

	// The other exam is untouched.
	count, _ = s.QuestionCount(kept)
	if count != 1 {
		t.Errorf("kept exam lost questions: %d", count)
	}
	taken, _ = s.HasTaken(studentID, kept)
	if !taken {
		t.Error("kept exam lost results")
	}

	if err := s.DeleteExam(doomed); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "alice", "secret123", model.RoleStudent)

	token, err := s.CreateAuthSession(userID)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != userID {
		t.Fatalf("unexpected session: %+v", sess)
	}

	unknown, err := s.GetAuthSession("no-such-token")
	if err != nil {
		t.Fatalf("GetAuthSession unknown: %v", err)
	}
	if unknown != nil {
		t.Fatalf("expected nil for unknown token, got %+v", unknown)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, _ = s.GetAuthSession(token)
	if sess != nil {
		t.Fatal("expected session gone after delete")
	}

	if err := s.CleanupExpiredSessions(); err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
}

func TestExportResults(t *testing.T) {
	s := newTestStore(t)
	adminID := createTestUser(t, s, "admin", "changeme", model.RoleAdmin)
	studentID := createTestUser(t, s, "alice", "secret123", model.RoleStudent)
	examID := createTestExam(t, s, "Midterm", 10, adminID)
	if _, err := s.InsertResult(model.Result{StudentID: studentID, ExamID: examID, Score: 9, TotalMarks: 10}); err != nil {
		t.Fatalf("InsertResult: %v", err)
	}

	export, err := s.ExportResults()
	if err != nil {
		t.Fatalf("ExportResults: %v", err)
	}
	if export.Submissions != 1 || len(export.Results) != 1 {
		t.Fatalf("unexpected export: %+v", export)
	}
	row := export.Results[0]
	if row.Username != "alice" || row.ExamName != "Midterm" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.Percentage != 90 || row.Grade != "A+" {
		t.Errorf("expected 90%% A+, got %v %s", row.Percentage, row.Grade)
	}
}
