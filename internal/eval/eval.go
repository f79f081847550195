// Package eval checks a reasoner's structural invariants between commands.
package eval

import (
	"fmt"

	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// #region eval-harness

// EvalHarness runs the invariant checks against a reasoner.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates a harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks belief tables, bag coherence, parent chains, stamp bases and
// term normal form. It only reads the reasoner.
func (h *EvalHarness) Run(r *reasoner.Reasoner) EvalResult {
	maxStamp := h.config.MaxStampLength
	if maxStamp == 0 {
		maxStamp = r.Parameters().MaximumStampLength
	}
	concepts := r.Memory().Concepts().Items()
	tasks := r.Tasks()

	var metrics []EvalMetric
	var failReasons []string
	check := func(name string, problems []string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: float64(len(problems)), Pass: len(problems) == 0})
		if len(problems) > 0 {
			failReasons = append(failReasons, fmt.Sprintf("%s: %s", name, problems[0]))
		}
	}

	// 1. Belief tables ranked and free of evidential duplicates
	var beliefProblems []string
	for _, c := range concepts {
		beliefProblems = append(beliefProblems, beliefTable(c)...)
	}
	check("belief_tables", beliefProblems)

	// 2. Every bag's levels agree with its name table
	var bagProblems []string
	if err := r.Memory().Concepts().Check(); err != nil {
		bagProblems = append(bagProblems, "concepts: "+err.Error())
	}
	if err := r.NovelTasks().Check(); err != nil {
		bagProblems = append(bagProblems, "novel tasks: "+err.Error())
	}
	for _, c := range concepts {
		if err := c.TaskLinks().Check(); err != nil {
			bagProblems = append(bagProblems, c.Key()+" task-links: "+err.Error())
		}
		if err := c.TermLinks().Check(); err != nil {
			bagProblems = append(bagProblems, c.Key()+" term-links: "+err.Error())
		}
	}
	check("bag_coherence", bagProblems)

	// 3. Parent chains of linked tasks are acyclic
	var chainProblems []string
	for _, c := range concepts {
		for _, tl := range c.TaskLinks().Items() {
			if !tl.Task().ParentChainAcyclic() {
				chainProblems = append(chainProblems, "cycle above "+tl.Task().Key())
			}
		}
	}
	check("parent_chains", chainProblems)

	// 4. Stamp bases hold distinct serials within the length cap
	var stampProblems []string
	for _, t := range tasks {
		stampProblems = append(stampProblems, stampBase(t.Sentence().Stamp(), maxStamp, t.Key())...)
	}
	for _, c := range concepts {
		for _, b := range c.Beliefs() {
			stampProblems = append(stampProblems, stampBase(b.Stamp(), maxStamp, b.Key())...)
		}
	}
	check("stamp_bases", stampProblems)

	// 5. Commutative compounds are sorted and deduplicated
	var termProblems []string
	for _, c := range concepts {
		termProblems = append(termProblems, normalForm(c.Term())...)
	}
	for _, t := range tasks {
		termProblems = append(termProblems, normalForm(t.Sentence().Content())...)
	}
	check("commutative_terms", termProblems)

	// Load: informational, does not fail
	load := 0.0
	if capacity := r.Memory().Concepts().Capacity(); capacity > 0 {
		load = float64(len(concepts)) / float64(capacity)
	}
	metrics = append(metrics, EvalMetric{Name: "concept_load", Value: load, Pass: load < h.config.LoadWarning})

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = "invariant violated: " + failReasons[0]
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("invariants violated: %d checks: %s", len(failReasons), failReasons[0])
	}
	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region checks

func beliefTable(c *concept.Concept) []string {
	beliefs := c.Beliefs()
	var problems []string
	for i := 1; i < len(beliefs); i++ {
		prev, cur := beliefs[i-1], beliefs[i]
		if nal.RankBelief(prev.Truth(), prev.Stamp()) < nal.RankBelief(cur.Truth(), cur.Stamp()) {
			problems = append(problems, fmt.Sprintf("%s: beliefs %d and %d out of rank order", c.Key(), i-1, i))
		}
	}
	for i := range beliefs {
		for j := i + 1; j < len(beliefs); j++ {
			if beliefs[i].EquivalentTo(beliefs[j]) {
				problems = append(problems, fmt.Sprintf("%s: beliefs %d and %d evidentially equal", c.Key(), i, j))
			}
		}
	}
	return problems
}

func stampBase(s nal.Stamp, maxLen int, owner string) []string {
	var problems []string
	if maxLen > 0 && len(s.Base) > maxLen {
		problems = append(problems, fmt.Sprintf("%s: base of %d exceeds %d", owner, len(s.Base), maxLen))
	}
	seen := make(map[uint64]struct{}, len(s.Base))
	for _, serial := range s.Base {
		if _, dup := seen[serial]; dup {
			problems = append(problems, fmt.Sprintf("%s: serial %d repeated", owner, serial))
		}
		seen[serial] = struct{}{}
	}
	return problems
}

// normalForm walks t and reports commutative compounds whose children are
// out of order or repeated.
func normalForm(t term.Term) []string {
	if !t.IsCompound() {
		return nil
	}
	var problems []string
	comps := t.Components()
	if t.Connector().IsCommutative() {
		for i := 1; i < len(comps); i++ {
			cmp := term.Compare(comps[i-1], comps[i])
			if cmp > 0 || (cmp == 0 && !t.IsStatement()) {
				problems = append(problems, fmt.Sprintf("%s: children %d and %d not in normal order", t.Name(), i-1, i))
			}
		}
	}
	for _, c := range comps {
		problems = append(problems, normalForm(c)...)
	}
	return problems
}

// #endregion checks
