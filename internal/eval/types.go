package eval

// #region eval-config

// EvalConfig selects the checks and their limits.
type EvalConfig struct {
	MaxStampLength int     // 0 uses the reasoner's maximum_stamp_length
	LoadWarning    float64 // informational: concept bag fill ratio to flag
}

// DefaultEvalConfig checks against the reasoner's own limits.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxStampLength: 0,
		LoadWarning:    0.9,
	}
}

// #endregion eval-config

// #region eval-metric

// EvalMetric is one check. Value counts violations, except for
// informational metrics.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result

// EvalResult is the outcome of a harness run.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// Metric returns the named metric.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result
