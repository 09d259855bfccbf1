package store

import (
	"fmt"
	"time"

	"github.com/jnx001/proj-exa/internal/model"
	"github.com/jnx001/proj-exa/internal/report"
)

// ExportResults builds the export document from all recorded submissions,
// with derived percentage and grade band per row.
func (s *Store) ExportResults() (*model.ResultsExport, error) {
	rows, err := s.AllResults()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	export := &model.ResultsExport{
		GeneratedAt: time.Now(),
		Submissions: len(rows),
	}
	for _, r := range rows {
		pct := report.Percentage(r.Score, r.TotalMarks)
		export.Results = append(export.Results, model.ResultExport{
			FullName:    r.FullName,
			Username:    r.Username,
			ExamName:    r.ExamName,
			Score:       r.Score,
			TotalMarks:  r.TotalMarks,
			Percentage:  pct,
			Grade:       report.Grade(pct),
			SubmittedAt: r.SubmittedAt,
		})
	}
	return export, nil
}
