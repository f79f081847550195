package term

import (
	"fmt"
	"strconv"
)

// #region normalize

// Normalize renames variables by order of first appearance ($1, #2, ?3 ...),
// one counter shared by all kinds, so α-equivalent terms share a name.
func Normalize(t Term) Term {
	if !t.HasVar() {
		return t
	}
	renames := make(map[string]string)
	out, err := renameVars(t, renames)
	if err != nil {
		// renaming variables to other variables cannot change validity
		panic(fmt.Sprintf("term: normalize %s: %v", t.name, err))
	}
	return out
}

func renameVars(t Term, renames map[string]string) (Term, error) {
	switch t.kind {
	case KindVariable:
		id, ok := renames[t.name]
		if !ok {
			id = strconv.Itoa(len(renames) + 1)
			renames[t.name] = id
		}
		return Variable(t.varKind, id), nil
	case KindCompound:
		if !t.HasVar() {
			return t, nil
		}
		comps := make([]Term, len(t.components))
		for i, c := range t.components {
			r, err := renameVars(c, renames)
			if err != nil {
				return Term{}, err
			}
			comps[i] = r
		}
		return NewCompound(t.connector, comps...)
	}
	return t, nil
}

// #endregion normalize

// #region unify

// Substitution maps variable names to the terms bound to them.
type Substitution map[string]Term

// Unify finds bindings for variables of the given kind that make a and b
// equal. Both sides may contain variables; bindings are consistent across
// the two terms.
func Unify(kind VarKind, a, b Term) (Substitution, bool) {
	sub := make(Substitution)
	if !unify(kind, a, b, sub) {
		return nil, false
	}
	return sub, true
}

func unify(kind VarKind, a, b Term, sub Substitution) bool {
	if a.kind == KindVariable && a.varKind == kind {
		return bind(kind, a, b, sub)
	}
	if b.kind == KindVariable && b.varKind == kind {
		return bind(kind, b, a, sub)
	}
	if a.kind != KindCompound || b.kind != KindCompound {
		return a.Equal(b)
	}
	if a.connector != b.connector || len(a.components) != len(b.components) {
		return false
	}
	if a.Equal(b) {
		return true
	}
	for i := range a.components {
		if !unify(kind, a.components[i], b.components[i], sub) {
			return false
		}
	}
	return true
}

func bind(kind VarKind, v, t Term, sub Substitution) bool {
	if v.Equal(t) {
		return true
	}
	if bound, ok := sub[v.name]; ok {
		return unify(kind, bound, t, sub)
	}
	sub[v.name] = t
	return true
}

// Apply replaces bound variables in t. The result may be invalid, e.g. when
// both sides of a statement become equal.
func Apply(sub Substitution, t Term) (Term, error) {
	if len(sub) == 0 || !t.HasVar() {
		return t, nil
	}
	return apply(sub, t, 0)
}

func apply(sub Substitution, t Term, depth int) (Term, error) {
	if depth > 64 {
		return Term{}, fmt.Errorf("%w: cyclic substitution", ErrInvalid)
	}
	switch t.kind {
	case KindVariable:
		if r, ok := sub[t.name]; ok {
			return apply(sub, r, depth+1)
		}
		return t, nil
	case KindCompound:
		if !t.HasVar() {
			return t, nil
		}
		comps := make([]Term, len(t.components))
		for i, c := range t.components {
			r, err := apply(sub, c, depth+1)
			if err != nil {
				return Term{}, err
			}
			comps[i] = r
		}
		return NewCompound(t.connector, comps...)
	}
	return t, nil
}

// #endregion unify
