// Package term models Narsese terms structurally. A Term is an immutable
// value; its canonical name is computed once at construction and is the
// identity used everywhere a term is hashed or compared.
package term

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// #region kinds

// Kind tags the variant of a Term.
type Kind uint8

const (
	KindWord Kind = iota
	KindPlaceholder
	KindVariable
	KindCompound
)

// VarKind is the prefix character of a variable.
type VarKind byte

const (
	VarIndependent VarKind = '$'
	VarDependent   VarKind = '#'
	VarQuery       VarKind = '?'
)

// Connector identifies a compound or statement.
type Connector string

const (
	Inheritance     Connector = "-->"
	Similarity      Connector = "<->"
	Implication     Connector = "==>"
	Equivalence     Connector = "<=>"
	Product         Connector = "*"
	ImageExt        Connector = "/"
	ImageInt        Connector = `\`
	SetExt          Connector = "{}"
	SetInt          Connector = "[]"
	IntersectionExt Connector = "&"
	IntersectionInt Connector = "|"
	DifferenceExt   Connector = "-"
	DifferenceInt   Connector = "~"
	Negation        Connector = "--"
	Conjunction     Connector = "&&"
	Disjunction     Connector = "||"
)

// IsStatement reports the four copulas.
func (c Connector) IsStatement() bool {
	switch c {
	case Inheritance, Similarity, Implication, Equivalence:
		return true
	}
	return false
}

// IsCommutative reports connectors whose children are stored sorted.
func (c Connector) IsCommutative() bool {
	switch c {
	case Similarity, Equivalence, SetExt, SetInt, IntersectionExt, IntersectionInt, Conjunction, Disjunction:
		return true
	}
	return false
}

// IsImage reports the two image connectors.
func (c Connector) IsImage() bool {
	return c == ImageExt || c == ImageInt
}

// ErrInvalid is wrapped by every construction failure.
var ErrInvalid = errors.New("invalid term")

// #endregion kinds

// #region term

// Term is a word, placeholder, variable, or compound.
type Term struct {
	kind       Kind
	word       string
	varKind    VarKind
	connector  Connector
	components []Term
	name       string
	complexity int
	vars       uint8
}

const (
	hasIndep uint8 = 1 << iota
	hasDep
	hasQuery
)

// Word builds an atomic term.
func Word(name string) Term {
	return Term{kind: KindWord, word: name, name: name, complexity: 1}
}

// Placeholder builds the image placeholder "_".
func Placeholder() Term {
	return Term{kind: KindPlaceholder, name: "_"}
}

// Variable builds a variable such as $x or #1.
func Variable(kind VarKind, id string) Term {
	t := Term{kind: KindVariable, varKind: kind, word: id, name: string(kind) + id}
	switch kind {
	case VarIndependent:
		t.vars = hasIndep
	case VarDependent:
		t.vars = hasDep
	case VarQuery:
		t.vars = hasQuery
	}
	return t
}

// NewCompound validates and normalizes a compound. Commutative children are
// sorted and deduplicated; single-member intersections and conjunctions
// collapse to their member.
func NewCompound(conn Connector, components ...Term) (Term, error) {
	comps := make([]Term, len(components))
	copy(comps, components)
	for _, c := range comps {
		if c.kind == KindCompound && c.name == "" {
			return Term{}, fmt.Errorf("%w: zero-value component", ErrInvalid)
		}
	}
	if conn.IsCommutative() {
		slices.SortFunc(comps, Compare)
		if !conn.IsStatement() {
			comps = slices.CompactFunc(comps, Term.Equal)
		}
	}

	switch conn {
	case Inheritance, Similarity, Implication, Equivalence:
		if len(comps) != 2 {
			return Term{}, fmt.Errorf("%w: statement %s needs 2 components, got %d", ErrInvalid, conn, len(comps))
		}
		if comps[0].Equal(comps[1]) {
			return Term{}, fmt.Errorf("%w: reflexive statement %s", ErrInvalid, comps[0].name)
		}
		for _, c := range comps {
			if c.kind == KindPlaceholder {
				return Term{}, fmt.Errorf("%w: placeholder outside image", ErrInvalid)
			}
		}
	case SetExt, SetInt, Product:
		if len(comps) == 0 {
			return Term{}, fmt.Errorf("%w: empty %s", ErrInvalid, conn)
		}
	case IntersectionExt, IntersectionInt, Conjunction, Disjunction:
		if len(comps) == 0 {
			return Term{}, fmt.Errorf("%w: empty %s", ErrInvalid, conn)
		}
		if len(comps) == 1 {
			return comps[0], nil
		}
	case DifferenceExt, DifferenceInt:
		if len(comps) != 2 {
			return Term{}, fmt.Errorf("%w: difference needs 2 components, got %d", ErrInvalid, len(comps))
		}
		if comps[0].Equal(comps[1]) {
			return Term{}, fmt.Errorf("%w: difference of equal terms", ErrInvalid)
		}
	case Negation:
		if len(comps) != 1 {
			return Term{}, fmt.Errorf("%w: negation needs 1 component, got %d", ErrInvalid, len(comps))
		}
	case ImageExt, ImageInt:
		if len(comps) < 2 {
			return Term{}, fmt.Errorf("%w: image needs a relation and a placeholder", ErrInvalid)
		}
		holes := 0
		for i, c := range comps {
			if c.kind == KindPlaceholder {
				if i == 0 {
					return Term{}, fmt.Errorf("%w: image relation cannot be a placeholder", ErrInvalid)
				}
				holes++
			}
		}
		if holes != 1 {
			return Term{}, fmt.Errorf("%w: image needs exactly one placeholder, got %d", ErrInvalid, holes)
		}
	default:
		return Term{}, fmt.Errorf("%w: unknown connector %q", ErrInvalid, conn)
	}
	if !conn.IsImage() {
		for _, c := range comps {
			if c.kind == KindPlaceholder {
				return Term{}, fmt.Errorf("%w: placeholder outside image", ErrInvalid)
			}
		}
	}

	t := Term{kind: KindCompound, connector: conn, components: comps, complexity: 1}
	for _, c := range comps {
		t.complexity += c.complexity
		t.vars |= c.vars
	}
	t.name = render(conn, comps)
	return t, nil
}

// MustCompound is NewCompound for literals known to be valid.
func MustCompound(conn Connector, components ...Term) Term {
	t, err := NewCompound(conn, components...)
	if err != nil {
		panic(err)
	}
	return t
}

// Statement builds <subject copula predicate>.
func Statement(copula Connector, subject, predicate Term) (Term, error) {
	if !copula.IsStatement() {
		return Term{}, fmt.Errorf("%w: %q is not a copula", ErrInvalid, copula)
	}
	return NewCompound(copula, subject, predicate)
}

func render(conn Connector, comps []Term) string {
	var sb strings.Builder
	switch {
	case conn.IsStatement():
		sb.WriteString("<")
		sb.WriteString(comps[0].name)
		sb.WriteString(" ")
		sb.WriteString(string(conn))
		sb.WriteString(" ")
		sb.WriteString(comps[1].name)
		sb.WriteString(">")
		return sb.String()
	case conn == SetExt || conn == SetInt:
		sb.WriteByte(conn[0])
		for i, c := range comps {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(c.name)
		}
		sb.WriteByte(conn[1])
		return sb.String()
	}
	sb.WriteString("(")
	sb.WriteString(string(conn))
	for _, c := range comps {
		sb.WriteString(",")
		sb.WriteString(c.name)
	}
	sb.WriteString(")")
	return sb.String()
}

// #endregion term

// #region accessors

func (t Term) Kind() Kind { return t.kind }
func (t Term) Name() string { return t.name }
func (t Term) String() string { return t.name }
func (t Term) Connector() Connector { return t.connector }
func (t Term) Complexity() int { return t.complexity }
func (t Term) Len() int { return len(t.components) }
func (t Term) Component(i int) Term { return t.components[i] }
func (t Term) IsZero() bool { return t.name == "" }
func (t Term) IsWord() bool { return t.kind == KindWord }
func (t Term) IsVariable() bool { return t.kind == KindVariable }
func (t Term) IsPlaceholder() bool { return t.kind == KindPlaceholder }
func (t Term) IsCompound() bool { return t.kind == KindCompound }
func (t Term) VarKind() VarKind { return t.varKind }
func (t Term) HasVar() bool { return t.vars != 0 }
func (t Term) HasQueryVar() bool { return t.vars&hasQuery != 0 }
func (t Term) HasDependentVar() bool { return t.vars&hasDep != 0 }
func (t Term) HasIndependentVar() bool { return t.vars&hasIndep != 0 }

// Components returns the children. The slice must not be modified.
func (t Term) Components() []Term {
	return t.components
}

// IsStatement reports whether t is built on a copula.
func (t Term) IsStatement() bool {
	return t.kind == KindCompound && t.connector.IsStatement()
}

// Is reports whether t is a compound with the given connector.
func (t Term) Is(conn Connector) bool {
	return t.kind == KindCompound && t.connector == conn
}

// Subject is the first side of a statement.
func (t Term) Subject() Term { return t.components[0] }

// Predicate is the second side of a statement.
func (t Term) Predicate() Term { return t.components[1] }

// IsConstant reports a term containing no variables.
func (t Term) IsConstant() bool {
	return t.kind != KindPlaceholder && t.vars == 0
}

// CanNameConcept reports whether a concept may be keyed by t: anything but
// a bare variable or placeholder.
func (t Term) CanNameConcept() bool {
	return !t.IsZero() && t.kind != KindVariable && t.kind != KindPlaceholder
}

// Equal compares canonical names.
func (t Term) Equal(o Term) bool {
	return t.name == o.name
}

// Compare orders terms by canonical name.
func Compare(a, b Term) int {
	return strings.Compare(a.name, b.name)
}

// ContainsComponent reports whether c is a direct child of t.
func (t Term) ContainsComponent(c Term) bool {
	for _, x := range t.components {
		if x.Equal(c) {
			return true
		}
	}
	return false
}

// PlaceholderIndex returns the position of "_" in an image, or -1.
func (t Term) PlaceholderIndex() int {
	for i, c := range t.components {
		if c.kind == KindPlaceholder {
			return i
		}
	}
	return -1
}

// WithComponent returns a copy of t with child i replaced.
func (t Term) WithComponent(i int, c Term) (Term, error) {
	if t.kind != KindCompound || i < 0 || i >= len(t.components) {
		return Term{}, fmt.Errorf("%w: no component %d in %s", ErrInvalid, i, t.name)
	}
	comps := make([]Term, len(t.components))
	copy(comps, t.components)
	comps[i] = c
	return NewCompound(t.connector, comps...)
}

// #endregion accessors
