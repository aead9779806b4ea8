package evaluation

import (
	"fmt"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/models"
)

// Options bundles everything EvaluatePerformance needs besides the rows.
type Options struct {
	Eval       EvalOptions
	Dates      DatesOptions
	Resampling ResamplingOptions
	UseCV      bool
	Format     FormatOptions
}

// FromConfig converts app config to evaluation options
func FromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, fmt.Errorf("config is required")
	}

	opts := Options{
		Eval: EvalOptions{
			Metrics:            append([]string(nil), cfg.Evaluation.Metrics...),
			Granularity:        cfg.Evaluation.Granularity,
			AggregateForecasts: cfg.Evaluation.AggregateForecasts,
		},
		Dates:      DatesOptions{FoldsHorizon: cfg.Evaluation.FoldsHorizon},
		Resampling: ResamplingOptions{Freq: cfg.Evaluation.Freq},
		UseCV:      cfg.Evaluation.UseCV,
		Format:     FormatOptions{Precision: make(map[string]int, len(cfg.Display.Precision))},
	}
	for name, precision := range cfg.Display.Precision {
		opts.Format.Precision[name] = precision
	}

	return opts, opts.Validate()
}

// Validate validates evaluation options
func (o Options) Validate() error {
	if len(o.Eval.Metrics) == 0 {
		return fmt.Errorf("at least one metric is required")
	}
	if o.Eval.Granularity == "" {
		return fmt.Errorf("granularity is required")
	}
	if o.UseCV && o.Eval.Granularity != GranularityCutoff {
		return fmt.Errorf("cross-validation requires %q granularity", GranularityCutoff)
	}
	if o.UseCV && o.Dates.FoldsHorizon <= 0 {
		return fmt.Errorf("folds horizon must be positive")
	}
	return nil
}

// Evaluate runs EvaluatePerformance with these options.
func (o Options) Evaluate(points []models.EvalPoint) (*DisplayTable, map[string]*MetricTable, error) {
	return EvaluatePerformance(points, o.Eval, o.Dates, o.Resampling, o.UseCV, o.Format)
}
