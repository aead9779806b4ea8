package evaluation

import (
	"github.com/yourusername/forecast-eval/internal/models"
	"github.com/yourusername/forecast-eval/internal/timebucket"
)

// preprocessPoints prepares rows for grouping. Cross-validation rows already
// carry their fold cutoffs and pass through unchanged; plain-mode rows get
// the derived time-bucket labels attached. The input slice is never mutated.
func preprocessPoints(points []models.EvalPoint, useCV bool) []models.EvalPoint {
	out := make([]models.EvalPoint, len(points))
	if useCV {
		copy(out, points)
		return out
	}
	for i, p := range points {
		row := p.Clone()
		if row.Groups == nil {
			row.Groups = make(map[string]string, len(timebucket.Names()))
		}
		for name, label := range timebucket.Labels(p.Timestamp) {
			row.Groups[name] = label
		}
		out[i] = row
	}
	return out
}
