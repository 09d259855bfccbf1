// Package report derives dashboard figures from stored results. Nothing
// here is persisted; every value is recomputed from the result rows.
package report

import "github.com/jnx001/proj-exa/internal/model"

// Percentage returns score/total as a percentage. A zero total yields 0
// rather than a division error.
func Percentage(score, totalMarks int) float64 {
	if totalMarks <= 0 {
		return 0
	}
	return float64(score) / float64(totalMarks) * 100
}

// Grade maps a percentage to its grade band.
func Grade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	default:
		return "F"
	}
}

// Stats summarizes a set of submissions for the admin dashboard.
type Stats struct {
	Submissions int     `json:"submissions"`
	MeanPercent float64 `json:"mean_percent"`
	MaxPercent  float64 `json:"max_percent"`
}

// Summarize computes submission count, mean percentage, and best percentage
// over the given rows.
func Summarize(rows []model.ResultRow) Stats {
	st := Stats{Submissions: len(rows)}
	if len(rows) == 0 {
		return st
	}
	var sum float64
	for _, r := range rows {
		pct := Percentage(r.Score, r.TotalMarks)
		sum += pct
		if pct > st.MaxPercent {
			st.MaxPercent = pct
		}
	}
	st.MeanPercent = sum / float64(len(rows))
	return st
}
