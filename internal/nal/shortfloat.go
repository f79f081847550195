// Package nal holds the numeric core of the reasoner: fixed-point values,
// truth values, budget values, evidential stamps, and the truth and budget
// functions built on them.
package nal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// #region shortfloat

// ShortFloatScale is the backing integer for 1.0.
const ShortFloatScale = 10000

// ShortFloat is a value in [0, 1] with four decimal digits, stored as an
// integer in [0, 10000]. Equality and order follow the integer exactly.
type ShortFloat uint16

const (
	Zero ShortFloat = 0
	Half ShortFloat = ShortFloatScale / 2
	One  ShortFloat = ShortFloatScale
)

// SF rounds f to the nearest representable value, clamping into [0, 1].
func SF(f float64) ShortFloat {
	if math.IsNaN(f) || f <= 0 {
		return Zero
	}
	if f >= 1 {
		return One
	}
	return ShortFloat(math.Round(f * ShortFloatScale))
}

// NewShortFloat validates f before rounding it.
func NewShortFloat(f float64) (ShortFloat, error) {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return Zero, fmt.Errorf("short float %v out of range [0, 1]", f)
	}
	return SF(f), nil
}

// Float returns the real value.
func (s ShortFloat) Float() float64 {
	return float64(s) / ShortFloatScale
}

// Raw returns the backing integer.
func (s ShortFloat) Raw() uint16 {
	return uint16(s)
}

// FromRaw rebuilds a value from its backing integer, clamping at One.
func FromRaw(v uint16) ShortFloat {
	if v > ShortFloatScale {
		return One
	}
	return ShortFloat(v)
}

// Add is addition clamped at One.
func (s ShortFloat) Add(o ShortFloat) ShortFloat {
	sum := uint32(s) + uint32(o)
	if sum > ShortFloatScale {
		return One
	}
	return ShortFloat(sum)
}

// Sub is subtraction clamped at Zero.
func (s ShortFloat) Sub(o ShortFloat) ShortFloat {
	if o >= s {
		return Zero
	}
	return s - o
}

// Mul multiplies with rounding to the nearest representable value.
func (s ShortFloat) Mul(o ShortFloat) ShortFloat {
	return ShortFloat((uint32(s)*uint32(o) + ShortFloatScale/2) / ShortFloatScale)
}

// Not returns 1 - s.
func (s ShortFloat) Not() ShortFloat {
	return One - s
}

// UnmarshalJSON reads the backing integer and rejects values above One.
func (s *ShortFloat) UnmarshalJSON(data []byte) error {
	var raw uint16
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("short float: %w", err)
	}
	if raw > ShortFloatScale {
		return fmt.Errorf("short float %d out of range [0, %d]", raw, ShortFloatScale)
	}
	*s = ShortFloat(raw)
	return nil
}

// String prints four decimal digits.
func (s ShortFloat) String() string {
	return strconv.FormatFloat(s.Float(), 'f', 4, 64)
}

// Brief prints two decimal digits.
func (s ShortFloat) Brief() string {
	return strconv.FormatFloat(s.Float(), 'f', 2, 64)
}

// #endregion shortfloat

// #region aggregates

// GeometricMean is the n-th root of the product of values.
func GeometricMean(values ...ShortFloat) ShortFloat {
	if len(values) == 0 {
		return Zero
	}
	product := 1.0
	for _, v := range values {
		product *= v.Float()
	}
	return SF(math.Pow(product, 1.0/float64(len(values))))
}

// And is the product of values.
func And(values ...ShortFloat) ShortFloat {
	product := 1.0
	for _, v := range values {
		product *= v.Float()
	}
	return SF(product)
}

// Or is 1 minus the product of complements.
func Or(values ...ShortFloat) ShortFloat {
	product := 1.0
	for _, v := range values {
		product *= 1 - v.Float()
	}
	return SF(1 - product)
}

// Average is the arithmetic mean.
func Average(values ...ShortFloat) ShortFloat {
	if len(values) == 0 {
		return Zero
	}
	sum := 0.0
	for _, v := range values {
		sum += v.Float()
	}
	return SF(sum / float64(len(values)))
}

// Max returns the larger value.
func Max(a, b ShortFloat) ShortFloat {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller value.
func Min(a, b ShortFloat) ShortFloat {
	if a < b {
		return a
	}
	return b
}

// #endregion aggregates

// #region evidence

// Horizon is the evidential horizon k used by the weight/confidence conversions.
const Horizon = 1.0

// C2W converts a confidence into an evidence weight.
func C2W(c float64) float64 {
	if c >= 1 {
		return math.Inf(1)
	}
	return Horizon * c / (1 - c)
}

// W2C converts an evidence weight into a confidence.
func W2C(w float64) float64 {
	if math.IsInf(w, 1) {
		return 1
	}
	return w / (w + Horizon)
}

// #endregion evidence
