package models

import (
	"time"
)

// EvalPoint is one row of an evaluation table: the observed value and the
// forecast made for the same timestamp. In cross-validation mode Cutoff holds
// the start of the validation window the row belongs to; in plain mode Groups
// carries the derived time-bucket labels.
type EvalPoint struct {
	Timestamp time.Time         `json:"ds"`
	Truth     float64           `json:"y"`
	Forecast  float64           `json:"yhat"`
	Cutoff    time.Time         `json:"cutoff,omitempty"`
	Groups    map[string]string `json:"groups,omitempty"`
}

// HasCutoff reports whether the row carries a fold cutoff.
func (p EvalPoint) HasCutoff() bool {
	return !p.Cutoff.IsZero()
}

// Clone returns a deep copy of the point.
func (p EvalPoint) Clone() EvalPoint {
	out := p
	if p.Groups != nil {
		out.Groups = make(map[string]string, len(p.Groups))
		for k, v := range p.Groups {
			out.Groups[k] = v
		}
	}
	return out
}
