package model

import "time"

// ResultsExport is the top-level JSON structure for the export subcommand.
type ResultsExport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Submissions int            `json:"submissions"`
	Results     []ResultExport `json:"results"`
}

// ResultExport holds one graded submission for export.
type ResultExport struct {
	FullName    string    `json:"full_name"`
	Username    string    `json:"username"`
	ExamName    string    `json:"exam_name"`
	Score       int       `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	Percentage  float64   `json:"percentage"`
	Grade       string    `json:"grade"`
	SubmittedAt time.Time `json:"submitted_at"`
}
