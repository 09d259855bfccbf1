package model

import (
	"context"
	"time"
)

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin is the administrator role.
	RoleAdmin Role = "admin"
	// RoleStudent is the student role.
	RoleStudent Role = "student"
)

// Option identifies one of the four answer options of a question.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Valid reports whether o is one of A, B, C, D.
func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// User represents a system user. Role is immutable after creation.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordDigest string    `json:"-"`
	Role           Role      `json:"role"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Exam is a named assessment. Duration is advisory only; the taking flow
// does not enforce it.
type Exam struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      int       `json:"total_marks"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// Question belongs to exactly one exam and is immutable after creation.
type Question struct {
	ID            int64  `json:"id"`
	ExamID        int64  `json:"exam_id"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption Option `json:"correct_option"`
	Marks         int    `json:"marks"`
}

// Result is one exam attempt outcome for one student. TotalMarks snapshots
// the exam's declared total at submission time, not a live reference.
type Result struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	ExamID      int64     `json:"exam_id"`
	Score       int       `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ResultRow is the admin dashboard projection: one result joined with the
// student and exam it references.
type ResultRow struct {
	FullName    string    `json:"full_name"`
	Username    string    `json:"username"`
	ExamName    string    `json:"exam_name"`
	Score       int       `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// StudentResultRow is the per-student history projection.
type StudentResultRow struct {
	ExamName    string    `json:"exam_name"`
	Score       int       `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
