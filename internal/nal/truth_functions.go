package nal

// #region single-premise

// Conversion derives <P --> S> from <S --> P>.
func Conversion(v Truth) Truth {
	w := And(v.F, v.C).Float()
	return NewTruth(1, W2C(w), false)
}

// Negation flips the frequency.
func Negation(v Truth) Truth {
	return Truth{F: v.F.Not(), C: v.C}
}

// Contraposition derives (--,P) ==> (--,S) from S ==> P.
func Contraposition(v Truth) Truth {
	w := And(v.F.Not(), v.C).Float()
	return NewTruth(0, W2C(w), false)
}

// #endregion single-premise

// #region double-premise

// Revision pools the evidence of two judgements about the same content.
func Revision(a, b Truth) Truth {
	w1 := C2W(a.C.Float())
	w2 := C2W(b.C.Float())
	w := w1 + w2
	f := (w1*a.F.Float() + w2*b.F.Float()) / w
	return NewTruth(f, W2C(w), false).WithAnalyticFrom(a).WithAnalyticFrom(b)
}

// Deduction: {M --> P, S --> M} |- S --> P.
func Deduction(a, b Truth) Truth {
	f := And(a.F, b.F)
	c := And(f, a.C, b.C)
	return Truth{F: f, C: c}
}

// DeductionReliance is deduction against an analytic premise of given reliance.
func DeductionReliance(a Truth, reliance ShortFloat) Truth {
	c := And(a.F, a.C, reliance)
	return Truth{F: a.F, C: c, analytic: true}
}

// Analogy: {M --> P, S <-> M} |- S --> P.
func Analogy(a, b Truth) Truth {
	f := And(a.F, b.F)
	c := And(b.F, a.C, b.C)
	return Truth{F: f, C: c}
}

// Resemblance: {M <-> P, S <-> M} |- S <-> P.
func Resemblance(a, b Truth) Truth {
	f := And(a.F, b.F)
	c := And(Or(a.F, b.F), a.C, b.C)
	return Truth{F: f, C: c}
}

// Abduction: {P --> M, S --> M} |- S --> P.
func Abduction(a, b Truth) Truth {
	if a.analytic || b.analytic {
		return Truth{F: Half, C: Zero}
	}
	w := And(b.F, a.C, b.C).Float()
	return Truth{F: a.F, C: SF(W2C(w))}
}

// Induction: {M --> P, M --> S} |- S --> P.
func Induction(a, b Truth) Truth {
	return Abduction(b, a)
}

// Exemplification: {P --> M, M --> S} |- S --> P.
func Exemplification(a, b Truth) Truth {
	if a.analytic || b.analytic {
		return Truth{F: Half, C: Zero}
	}
	w := And(a.F, b.F, a.C, b.C).Float()
	return Truth{F: One, C: SF(W2C(w))}
}

// Comparison: {M --> P, M --> S} |- S <-> P.
func Comparison(a, b Truth) Truth {
	f0 := Or(a.F, b.F)
	f := Zero
	if f0 != Zero {
		f = SF(And(a.F, b.F).Float() / f0.Float())
	}
	w := And(f0, a.C, b.C).Float()
	return Truth{F: f, C: SF(W2C(w))}
}

// #endregion double-premise
