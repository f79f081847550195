package nal

// #region budget

// Budget is a (priority, durability, quality) triple.
type Budget struct {
	P ShortFloat `json:"p"`
	D ShortFloat `json:"d"`
	Q ShortFloat `json:"q"`
}

// NewBudget builds a budget from real numbers.
func NewBudget(p, d, q float64) Budget {
	return Budget{P: SF(p), D: SF(d), Q: SF(q)}
}

// Summary is the geometric mean of the three components.
func (b Budget) Summary() ShortFloat {
	return GeometricMean(b.P, b.D, b.Q)
}

// AboveThreshold reports summary >= threshold.
func (b Budget) AboveThreshold(threshold ShortFloat) bool {
	return b.Summary() >= threshold
}

// IncPriority raises priority towards one by v.
func (b *Budget) IncPriority(v ShortFloat) {
	b.P = Or(b.P, v)
}

// DecPriority scales priority down by v.
func (b *Budget) DecPriority(v ShortFloat) {
	b.P = And(b.P, v)
}

// IncDurability raises durability towards one by v.
func (b *Budget) IncDurability(v ShortFloat) {
	b.D = Or(b.D, v)
}

// DecDurability scales durability down by v.
func (b *Budget) DecDurability(v ShortFloat) {
	b.D = And(b.D, v)
}

// Merge keeps the larger of each component.
func (b *Budget) Merge(o Budget) {
	b.P = Max(b.P, o.P)
	b.D = Max(b.D, o.D)
	b.Q = Max(b.Q, o.Q)
}

// String renders the full value, e.g. $0.8000;0.5000;0.9500$.
func (b Budget) String() string {
	return "$" + b.P.String() + ";" + b.D.String() + ";" + b.Q.String() + "$"
}

// Brief renders two digits per component.
func (b Budget) Brief() string {
	return "$" + b.P.Brief() + ";" + b.D.Brief() + ";" + b.Q.Brief() + "$"
}

// #endregion budget
