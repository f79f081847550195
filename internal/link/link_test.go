package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

func parse(t *testing.T, s string) term.Term {
	t.Helper()
	got, err := narsese.ParseTerm(s)
	require.NoError(t, err)
	return got
}

type flat struct {
	target string
	typ    Type
	index  []int
}

func flatten(ts []Template) []flat {
	out := make([]flat, len(ts))
	for i, tm := range ts {
		out[i] = flat{tm.Target.Name(), tm.Type, tm.Index}
	}
	return out
}

func TestKey(t *testing.T) {
	assert.Equal(t, "@(T1-1)_bird", Key(Component, []int{0}, "bird"))
	assert.Equal(t, "_@(T4-2)@<robin --> bird>", Key(CompoundStatement, []int{1}, "<robin --> bird>"))
	assert.Equal(t, "_@(T0)@x", Key(Self, nil, "x"))
	assert.Equal(t, "_@(T8-1-2)@a", Key(Transform, []int{0, 1}, "a"))
	assert.Equal(t, "TRANSFORM", Transform.String())
}

func TestTemplates_Statement(t *testing.T) {
	got := flatten(Templates(parse(t, "<robin --> bird>")))
	assert.Equal(t, []flat{
		{"robin", CompoundStatement, []int{0}},
		{"bird", CompoundStatement, []int{1}},
	}, got)
	assert.Nil(t, Templates(term.Word("bird")))
}

func TestTemplates_ProductTransform(t *testing.T) {
	got := flatten(Templates(parse(t, "<(*,acid,base) --> reaction>")))
	assert.Equal(t, []flat{
		{"(*,acid,base)", CompoundStatement, []int{0}},
		{"acid", Transform, []int{0, 0}},
		{"base", Transform, []int{0, 1}},
		{"reaction", CompoundStatement, []int{1}},
	}, got)
}

func TestTemplates_Condition(t *testing.T) {
	got := flatten(Templates(parse(t, "<(&&,a,b) ==> c>")))
	assert.Equal(t, []flat{
		{"(&&,a,b)", CompoundStatement, []int{0}},
		{"a", CompoundCondition, []int{0, 0}},
		{"b", CompoundCondition, []int{0, 1}},
		{"c", CompoundStatement, []int{1}},
	}, got)
}

func TestTemplates_SkipVariables(t *testing.T) {
	got := flatten(Templates(parse(t, "<$x --> (&,bird,[red])>")))
	assert.Equal(t, []flat{
		{"(&,[red],bird)", CompoundStatement, []int{1}},
		{"[red]", CompoundStatement, []int{1, 0}},
		{"bird", CompoundStatement, []int{1, 1}},
	}, got)
}

func TestNewTermLink_Direction(t *testing.T) {
	whole := parse(t, "<robin --> bird>")
	tmpl := Templates(whole)[1]
	b := nal.NewBudget(0.5, 0.5, 0.5)

	down := NewTermLink(tmpl.Target, tmpl, b)
	assert.Equal(t, ComponentStatement, down.Type())
	assert.Equal(t, "@(T3-2)_bird", down.Key())

	up := NewTermLink(whole, tmpl, b)
	assert.Equal(t, CompoundStatement, up.Type())
	assert.Equal(t, "_@(T4-2)@<robin --> bird>", up.Key())
	assert.Equal(t, 1, up.IndexAt(0))
	assert.Equal(t, -1, up.IndexAt(1))
}

func TestTaskLink_Novelty(t *testing.T) {
	content := parse(t, "<robin --> bird>")
	task := entity.NewInputTask(entity.NewJudgement(content, nal.NewTruth(1, 0.9, false), nal.NewStamp(1, 0)), nal.NewBudget(0.8, 0.5, 0.9))
	tl := NewTaskLink(task, nil, *task.Budget(), 3)
	assert.Equal(t, Self, tl.Type())
	assert.Equal(t, "_@(T0)@<robin --> bird>. %1.00;0.90%", tl.Key())

	tmpl := Templates(content)[0]
	self := NewTermLink(content, tmpl, nal.NewBudget(0.5, 0.5, 0.5))
	assert.False(t, tl.Novel(self, 0), "a link to the task's own content is never novel")

	other := RestoreTermLink(parse(t, "<bird --> animal>"), CompoundStatement, []int{0}, nal.NewBudget(0.5, 0.5, 0.5))
	assert.True(t, tl.Novel(other, 0))
	assert.False(t, tl.Novel(other, 2))
	assert.True(t, tl.Novel(other, 3))
	assert.Len(t, tl.Records(), 1)

	for i := 0; i < 5; i++ {
		x := RestoreTermLink(term.Word(string(rune('a'+i))), Component, []int{i}, nal.NewBudget(0.5, 0.5, 0.5))
		assert.True(t, tl.Novel(x, 10))
	}
	assert.Len(t, tl.Records(), 3)
}
