package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

var testConfig = Config{
	MaxBeliefs:        3,
	MaxQuestions:      2,
	TaskLinkBagSize:   10,
	TaskLinkBagLevels: 10,
	TaskLinkForget:    20,
	TermLinkBagSize:   10,
	TermLinkBagLevels: 10,
	TermLinkForget:    50,
	TermLinkRecordLen: 10,
}

func statement() term.Term {
	return term.MustCompound(term.Inheritance, term.Word("a"), term.Word("b"))
}

func judgement(f, c float64, serials ...uint64) entity.Sentence {
	return entity.NewJudgement(statement(), nal.NewTruth(f, c, false), nal.Stamp{Base: serials})
}

func TestAddBelief_RankedAndCapped(t *testing.T) {
	c := New(statement(), nal.NewBudget(0.5, 0.5, 0.5), testConfig, nil)
	c.AddBelief(judgement(1, 0.5, 1))
	c.AddBelief(judgement(1, 0.9, 2))
	c.AddBelief(judgement(1, 0.7, 3))
	require.Len(t, c.Beliefs(), 3)
	assert.Equal(t, nal.SF(0.9), c.Beliefs()[0].Truth().C)
	assert.Equal(t, nal.SF(0.5), c.Beliefs()[2].Truth().C)

	tail, dropped := c.AddBelief(judgement(1, 0.8, 4))
	require.True(t, dropped)
	assert.Equal(t, nal.SF(0.5), tail.Truth().C)
	assert.Len(t, c.Beliefs(), 3)
	require.NoError(t, c.Check())

	_, dropped = c.AddBelief(judgement(1, 0.1, 5))
	assert.False(t, dropped)
	assert.Len(t, c.Beliefs(), 3)
}

func TestAddBelief_RejectsEquivalent(t *testing.T) {
	c := New(statement(), nal.NewBudget(0.5, 0.5, 0.5), testConfig, nil)
	c.AddBelief(judgement(1, 0.9, 1))
	c.AddBelief(judgement(1, 0.9, 1))
	assert.Len(t, c.Beliefs(), 1)
	require.NoError(t, c.Check())
}

func TestGetBelief_SkipsOverlap(t *testing.T) {
	c := New(statement(), nal.NewBudget(0.5, 0.5, 0.5), testConfig, nil)
	c.AddBelief(judgement(1, 0.9, 1))
	c.AddBelief(judgement(0, 0.8, 2))

	task := entity.NewInputTask(judgement(1, 0.9, 1), nal.NewBudget(0.8, 0.5, 0.9))
	b, ok := c.GetBelief(task)
	require.True(t, ok)
	assert.Equal(t, []uint64{2}, b.Stamp().Base)

	both := entity.NewInputTask(judgement(1, 0.9, 1, 2), nal.NewBudget(0.8, 0.5, 0.9))
	_, ok = c.GetBelief(both)
	assert.False(t, ok)
}

func TestAddQuestion_DedupesAndCaps(t *testing.T) {
	c := New(statement(), nal.NewBudget(0.5, 0.5, 0.5), testConfig, nil)
	q := func(subject string, serial uint64) *entity.Task {
		content := term.MustCompound(term.Inheritance, term.Word(subject), term.Word("b"))
		return entity.NewInputTask(entity.NewQuestion(content, nal.NewStamp(serial, 0)), nal.NewBudget(0.9, 0.9, 0.5))
	}
	first := q("a", 1)
	assert.Same(t, first, c.AddQuestion(first))
	assert.Same(t, first, c.AddQuestion(q("a", 2)))
	c.AddQuestion(q("x", 3))
	c.AddQuestion(q("y", 4))
	require.Len(t, c.Questions(), 2)
	assert.Equal(t, "<x --> b>?", c.Questions()[0].Key())
}

func TestNew_DerivesTemplates(t *testing.T) {
	c := New(statement(), nal.NewBudget(0.5, 0.5, 0.5), testConfig, nil)
	assert.Len(t, c.Templates(), 2)
	assert.Equal(t, "<a --> b>", c.Key())
	assert.Empty(t, New(term.Word("a"), nal.Budget{}, testConfig, nil).Templates())
}
