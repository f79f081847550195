package reasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/nal"
)

func TestDefaultParameters_Valid(t *testing.T) {
	p := DefaultParameters()
	require.NoError(t, p.Validate())
	assert.Equal(t, nal.SF(0.01), p.threshold())

	cfg := p.memoryConfig()
	assert.Equal(t, 1000, cfg.BagSize)
	assert.Equal(t, 7, cfg.Concept.MaxBeliefs)
	assert.Equal(t, 10, cfg.Concept.TermLinkRecordLen)
}

func TestParameters_ValidateCollectsEveryProblem(t *testing.T) {
	p := DefaultParameters()
	p.ConceptBagSize = 0
	p.BudgetThreshold = 1.5
	p.DefaultJudgementConfidence = 1
	p.TermLinkRecordLength = -1

	err := p.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"concept_bag_size must be positive",
		"budget_threshold must be in [0, 1]",
		"default_judgement_confidence must be below 1",
		"term_link_record_length must not be negative",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNew_RejectsInvalidParameters(t *testing.T) {
	p := DefaultParameters()
	p.MaxReasonedTermLink = 0
	_, err := New(p, Void, nil)
	assert.ErrorContains(t, err, "max_reasoned_term_link")
}
