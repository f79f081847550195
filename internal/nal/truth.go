package nal

import (
	"encoding/json"
	"math"
)

// #region truth

// Truth is a (frequency, confidence) pair. The analytic flag is sticky:
// nothing but construction can clear it.
type Truth struct {
	F        ShortFloat
	C        ShortFloat
	analytic bool
}

// NewTruth builds a truth value from real numbers.
func NewTruth(f, c float64, analytic bool) Truth {
	return Truth{F: SF(f), C: SF(c), analytic: analytic}
}

// TruthFromWeights builds a truth value from positive and total evidence weights.
func TruthFromWeights(wPlus, w float64) Truth {
	if w <= 0 {
		return Truth{F: Half, C: Zero}
	}
	return NewTruth(wPlus/w, W2C(w), false)
}

// Frequency returns f as a real.
func (t Truth) Frequency() float64 { return t.F.Float() }

// Confidence returns c as a real.
func (t Truth) Confidence() float64 { return t.C.Float() }

// Analytic reports whether the value came from analytic (definitional) truth.
func (t Truth) Analytic() bool { return t.analytic }

// MarkAnalytic returns a copy flagged analytic.
func (t Truth) MarkAnalytic() Truth {
	t.analytic = true
	return t
}

// WithAnalyticFrom keeps the flag if either side carries it.
func (t Truth) WithAnalyticFrom(o Truth) Truth {
	t.analytic = t.analytic || o.analytic
	return t
}

// Expectation is c * (f - 0.5) + 0.5.
func (t Truth) Expectation() float64 {
	return t.C.Float()*(t.F.Float()-0.5) + 0.5
}

// ExpDifAbs is the absolute difference of two expectations.
func (t Truth) ExpDifAbs(o Truth) float64 {
	return math.Abs(t.Expectation() - o.Expectation())
}

// IsNegative reports f < 0.5.
func (t Truth) IsNegative() bool {
	return t.F < Half
}

// Equal compares both components exactly; the analytic flag is ignored.
func (t Truth) Equal(o Truth) bool {
	return t.F == o.F && t.C == o.C
}

// String renders the full value, e.g. %1.0000;0.9000%.
func (t Truth) String() string {
	return "%" + t.F.String() + ";" + t.C.String() + "%"
}

// Brief renders two digits per component, e.g. %1.00;0.90%.
func (t Truth) Brief() string {
	return "%" + t.F.Brief() + ";" + t.C.Brief() + "%"
}

type truthJSON struct {
	F        ShortFloat `json:"f"`
	C        ShortFloat `json:"c"`
	Analytic bool       `json:"analytic,omitempty"`
}

// MarshalJSON keeps the raw integers so values round-trip exactly.
func (t Truth) MarshalJSON() ([]byte, error) {
	return json.Marshal(truthJSON{F: t.F, C: t.C, Analytic: t.analytic})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *Truth) UnmarshalJSON(data []byte) error {
	var raw truthJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Truth{F: FromRaw(uint16(raw.F)), C: FromRaw(uint16(raw.C)), analytic: raw.Analytic}
	return nil
}

// #endregion truth
