package term

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inh(s, p Term) Term { return MustCompound(Inheritance, s, p) }

// #region construction-tests
func TestNewCompound_Names(t *testing.T) {
	bird, animal := Word("bird"), Word("animal")
	cases := []struct {
		name string
		term Term
		want string
	}{
		{"inheritance", inh(bird, animal), "<bird --> animal>"},
		{"ext set", MustCompound(SetExt, Word("b"), Word("a")), "{a,b}"},
		{"int set", MustCompound(SetInt, Word("red")), "[red]"},
		{"product", MustCompound(Product, bird, animal), "(*,bird,animal)"},
		{"image", MustCompound(ImageExt, Word("eat"), Placeholder(), Word("food")), "(/,eat,_,food)"},
		{"conjunction", MustCompound(Conjunction, inh(bird, animal), Word("x")), "(&&,<bird --> animal>,x)"},
		{"negation", MustCompound(Negation, bird), "(--,bird)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.term.Name())
		})
	}
}

func TestNewCompound_CommutativeSortedAndDeduped(t *testing.T) {
	a := MustCompound(IntersectionExt, Word("c"), Word("a"), Word("b"), Word("a"))
	b := MustCompound(IntersectionExt, Word("b"), Word("c"), Word("a"))
	assert.True(t, a.Equal(b))
	assert.Equal(t, "(&,a,b,c)", a.Name())
	assert.Equal(t, 3, a.Len())

	sim1 := MustCompound(Similarity, Word("tiger"), Word("cat"))
	sim2 := MustCompound(Similarity, Word("cat"), Word("tiger"))
	assert.Equal(t, sim1.Name(), sim2.Name())
	assert.Equal(t, "<cat <-> tiger>", sim1.Name())
}

func TestNewCompound_SingletonCollapses(t *testing.T) {
	got := MustCompound(Conjunction, Word("a"), Word("a"))
	assert.True(t, got.IsWord())
	assert.Equal(t, "a", got.Name())
}

func TestNewCompound_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		conn  Connector
		comps []Term
	}{
		{"reflexive", Inheritance, []Term{Word("a"), Word("a")}},
		{"arity", Inheritance, []Term{Word("a")}},
		{"empty set", SetExt, nil},
		{"image without placeholder", ImageExt, []Term{Word("r"), Word("a")}},
		{"placeholder first", ImageInt, []Term{Placeholder(), Word("a")}},
		{"stray placeholder", Product, []Term{Placeholder(), Word("a")}},
		{"difference of equals", DifferenceExt, []Term{Word("a"), Word("a")}},
		{"negation arity", Negation, []Term{Word("a"), Word("b")}},
		{"unknown", Connector("@@"), []Term{Word("a")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCompound(tc.conn, tc.comps...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestComplexity(t *testing.T) {
	assert.Equal(t, 1, Word("a").Complexity())
	assert.Equal(t, 0, Variable(VarQuery, "x").Complexity())
	s := inh(MustCompound(Product, Word("a"), Word("b")), Word("r"))
	assert.Equal(t, 5, s.Complexity())
	assert.Equal(t, 2, inh(Variable(VarIndependent, "x"), Word("r")).Complexity())
}

func TestPredicates(t *testing.T) {
	q := inh(Variable(VarQuery, "1"), Word("animal"))
	assert.True(t, q.HasQueryVar())
	assert.False(t, q.IsConstant())
	assert.True(t, q.CanNameConcept())
	assert.False(t, Variable(VarDependent, "1").CanNameConcept())
	assert.False(t, Placeholder().CanNameConcept())
	assert.True(t, inh(Word("a"), Word("b")).IsStatement())
	assert.Equal(t, 2, MustCompound(ImageExt, Word("r"), Word("a"), Placeholder()).PlaceholderIndex())
}

func TestWithComponent(t *testing.T) {
	s := inh(Word("robin"), Word("bird"))
	r, err := s.WithComponent(1, Word("animal"))
	require.NoError(t, err)
	assert.Equal(t, "<robin --> animal>", r.Name())
	_, err = s.WithComponent(1, Word("robin"))
	assert.Error(t, err)
}

// #endregion construction-tests

// #region variable-tests
func TestNormalize_AlphaEquivalence(t *testing.T) {
	a := MustCompound(Implication,
		inh(Variable(VarIndependent, "x"), Word("bird")),
		inh(Variable(VarIndependent, "x"), Word("animal")))
	b := MustCompound(Implication,
		inh(Variable(VarIndependent, "y"), Word("bird")),
		inh(Variable(VarIndependent, "y"), Word("animal")))
	assert.NotEqual(t, a.Name(), b.Name())
	assert.Equal(t, Normalize(a).Name(), Normalize(b).Name())
	assert.Equal(t, "<<$1 --> bird> ==> <$1 --> animal>>", Normalize(a).Name())
}

func TestNormalize_SharedCounter(t *testing.T) {
	s := MustCompound(Conjunction,
		inh(Variable(VarDependent, "a"), Word("x")),
		inh(Variable(VarQuery, "q"), Word("y")))
	n := Normalize(s)
	assert.Equal(t, "(&&,<#1 --> x>,<?2 --> y>)", n.Name())
	w := Word("plain")
	assert.Equal(t, w, Normalize(w))
}

func TestUnify(t *testing.T) {
	question := inh(Variable(VarQuery, "1"), Word("animal"))
	belief := inh(Word("robin"), Word("animal"))
	sub, ok := Unify(VarQuery, question, belief)
	require.True(t, ok)
	assert.Equal(t, "robin", sub["?1"].Name())

	applied, err := Apply(sub, question)
	require.NoError(t, err)
	assert.True(t, applied.Equal(belief))

	_, ok = Unify(VarQuery, question, inh(Word("robin"), Word("bird")))
	assert.False(t, ok)

	// the same variable must bind consistently
	pair := MustCompound(Product, Variable(VarQuery, "1"), Variable(VarQuery, "1"))
	_, ok = Unify(VarQuery, pair, MustCompound(Product, Word("a"), Word("b")))
	assert.False(t, ok)

	// other variable kinds are treated as constants
	_, ok = Unify(VarIndependent, question, belief)
	assert.False(t, ok)
}

// #endregion variable-tests
