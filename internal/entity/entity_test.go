package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
)

func mustTerm(t *testing.T, s string) Sentence {
	t.Helper()
	content, err := narsese.ParseTerm(s)
	require.NoError(t, err)
	return NewJudgement(content, nal.NewTruth(1, 0.9, false), nal.NewStamp(1, 0))
}

func TestSentence_Key(t *testing.T) {
	j := mustTerm(t, "<robin --> bird>")
	assert.Equal(t, "<robin --> bird>. %1.00;0.90%", j.Key())
	assert.Equal(t, "<robin --> bird>. %1.0000;0.9000%", j.Narsese())

	q := NewQuestion(j.Content(), nal.NewStamp(2, 0))
	assert.Equal(t, "<robin --> bird>?", q.Key())
	assert.True(t, q.IsQuestion())
}

func TestSentence_Revisable(t *testing.T) {
	assert.True(t, mustTerm(t, "<robin --> bird>").Revisable())
	assert.False(t, mustTerm(t, "(&&,<#x --> bird>,<#x --> [red]>)").Revisable())
	assert.True(t, mustTerm(t, "(&&,<a --> bird>,<a --> [red]>)").Revisable())
}

func TestSentence_NormalizesVariables(t *testing.T) {
	a := mustTerm(t, "<<$x --> bird> ==> <$x --> animal>>")
	b := mustTerm(t, "<<$y --> bird> ==> <$y --> animal>>")
	assert.Equal(t, a.Key(), b.Key())
}

func TestSentence_JSONRoundTrip(t *testing.T) {
	j := mustTerm(t, "<(*,a,b) --> r>")
	data, err := json.Marshal(j)
	require.NoError(t, err)
	var back Sentence
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, j.EquivalentTo(back))
	assert.Equal(t, j.Revisable(), back.Revisable())

	assert.Error(t, json.Unmarshal([]byte(`{"content":"<a --> b>","punctuation":"."}`), &back))
}

func TestTask_Record(t *testing.T) {
	root := NewInputTask(mustTerm(t, "<a --> b>"), nal.NewBudget(0.8, 0.5, 0.9))
	belief := mustTerm(t, "<b --> c>")
	child := NewDerivedTask(mustTerm(t, "<a --> c>"), nal.NewBudget(0.5, 0.5, 0.5), root, &belief)
	assert.True(t, root.IsInput())
	assert.False(t, child.IsInput())
	assert.Same(t, root, child.Parent())
	assert.True(t, child.ParentChainAcyclic())

	back := FromRecord(child.Record(), nil)
	assert.Nil(t, back.Parent())
	assert.False(t, back.IsInput())
	assert.Same(t, root, FromRecord(child.Record(), root).Parent())
	assert.Equal(t, child.Key(), back.Key())
	require.NotNil(t, back.ParentBelief())
	assert.Equal(t, belief.Key(), back.ParentBelief().Key())
}
