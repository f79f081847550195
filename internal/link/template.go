package link

import "github.com/danielpatrickdp/narsvm/internal/term"

// Template is a (type, index path) position of a constant sub-term inside a
// concept's term, computed once when the concept is created.
type Template struct {
	Target term.Term
	Type   Type
	Index  []int
}

// Templates enumerates the link templates of t. Atoms have none.
func Templates(t term.Term) []Template {
	if !t.IsCompound() {
		return nil
	}
	typ := Compound
	if t.IsStatement() {
		typ = CompoundStatement
	}
	var out []Template
	collect(&out, t, typ, nil)
	return out
}

func isTransformable(t term.Term) bool {
	return t.Is(term.Product) || t.Is(term.ImageExt) || t.Is(term.ImageInt)
}

func path(prefix []int, steps ...int) []int {
	out := make([]int, 0, len(prefix)+len(steps))
	out = append(out, prefix...)
	return append(out, steps...)
}

// collect walks up to three levels below t. Conditions (the antecedent of an
// implication, either side of an equivalence) that are conjunctions or
// negations are descended with CompoundCondition and the side as prefix.
func collect(out *[]Template, t term.Term, typ Type, prefix []int) {
	for i, t1 := range t.Components() {
		if t1.IsConstant() {
			*out = append(*out, Template{Target: t1, Type: typ, Index: path(prefix, i)})
		}
		condition := t.Is(term.Equivalence) || (t.Is(term.Implication) && i == 0)
		if condition && (t1.Is(term.Conjunction) || t1.Is(term.Negation)) {
			collect(out, t1, CompoundCondition, path(prefix, i))
			continue
		}
		if !t1.IsCompound() {
			continue
		}
		for j, t2 := range t1.Components() {
			if t2.IsConstant() {
				if isTransformable(t1) {
					*out = append(*out, Template{Target: t2, Type: Transform, Index: path(prefix, i, j)})
				} else {
					*out = append(*out, Template{Target: t2, Type: typ, Index: path(prefix, i, j)})
				}
			}
			if !isTransformable(t2) {
				continue
			}
			for k, t3 := range t2.Components() {
				if t3.IsConstant() {
					*out = append(*out, Template{Target: t3, Type: Transform, Index: path(prefix, i, j, k)})
				}
			}
		}
	}
}
