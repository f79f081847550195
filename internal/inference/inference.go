// Package inference is the standard NAL rule base behind the reasoner's
// four engine hooks: direct processing, local matching, first-order
// syllogisms with detachment, and product/image transformation.
package inference

import (
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// Name is the engine name recorded in status snapshots.
const Name = "nal"

// Engine returns the standard engine.
func Engine() reasoner.Engine {
	return reasoner.Engine{
		Name:      Name,
		Direct:    reasoner.ProcessDirect,
		Transform: Transform,
		Matching:  Match,
		Reason:    Reason,
	}
}

// #region match

// Match handles a task and a belief about the same content: a judgement is
// revised with it, a question is answered by it when the query variables
// unify.
func Match(ctx *reasoner.ConceptContext) {
	belief, ok := ctx.Belief()
	if !ok {
		return
	}
	task := ctx.Task()
	s := task.Sentence()
	if s.IsJudgement() {
		if s.Content().Equal(belief.Content()) && belief.Revisable() {
			revised := nal.Revision(s.Truth(), belief.Truth())
			b := ctx.ReviseBudget(s.Truth(), belief.Truth(), revised)
			ctx.DoublePremiseTask(s.Content(), &revised, b)
		}
		return
	}
	if _, ok := term.Unify(term.VarQuery, s.Content(), belief.Content()); ok {
		reasoner.TrySolution(ctx, belief, task)
	}
}

// #endregion match

// #region dispatch

// Reason routes a task-link and term-link pair to the rule that applies to
// their link types. Only pairs that need a belief are handled.
func Reason(ctx *reasoner.ConceptContext) {
	belief, ok := ctx.Belief()
	if !ok {
		return
	}
	taskLink, termLink := ctx.TaskLink(), ctx.TermLink()
	task := ctx.Task()
	switch taskLink.Type() {
	case link.Self:
		switch termLink.Type() {
		case link.ComponentStatement:
			detachment(ctx, task.Sentence(), belief, termLink.IndexAt(0))
		case link.CompoundStatement:
			detachment(ctx, belief, task.Sentence(), termLink.IndexAt(0))
		}
	case link.CompoundStatement:
		if termLink.Type() == link.CompoundStatement {
			syllogisms(ctx, taskLink, termLink, task.Sentence(), belief)
		}
	}
}

// figure encodes which sides of the two premises hold the shared term:
// 11 subject-subject, 12 subject-predicate, 21 predicate-subject,
// 22 predicate-predicate.
func figure(a, b interface{ IndexAt(int) int }) int {
	return (a.IndexAt(0)+1)*10 + (b.IndexAt(0) + 1)
}

// #endregion dispatch

// #region helpers

func asymmetric(t term.Term) bool {
	return t.Is(term.Inheritance) || t.Is(term.Implication)
}

func symmetric(t term.Term) bool {
	return t.Is(term.Similarity) || t.Is(term.Equivalence)
}

// higherOrder reports an implication or equivalence.
func higherOrder(t term.Term) bool {
	return t.Is(term.Implication) || t.Is(term.Equivalence)
}

// symmetricOf is the symmetric copula of the same order as t.
func symmetricOf(t term.Term) term.Connector {
	if higherOrder(t) {
		return term.Equivalence
	}
	return term.Similarity
}

// asymmetricOf is the asymmetric copula of the same order as t.
func asymmetricOf(t term.Term) term.Connector {
	if higherOrder(t) {
		return term.Implication
	}
	return term.Inheritance
}

// invalidStatement rejects a subject and predicate that are equal or where
// one directly contains the other.
func invalidStatement(subject, predicate term.Term) bool {
	if subject.Equal(predicate) {
		return true
	}
	return containsReflexively(subject, predicate) || containsReflexively(predicate, subject)
}

func containsReflexively(outer, inner term.Term) bool {
	if !outer.IsCompound() || outer.Connector().IsImage() {
		return false
	}
	return outer.ContainsComponent(inner)
}

// statement builds <subject copula predicate>, reporting false for
// anything invalid.
func statement(copula term.Connector, subject, predicate term.Term) (term.Term, bool) {
	if invalidStatement(subject, predicate) {
		return term.Term{}, false
	}
	t, err := term.Statement(copula, subject, predicate)
	if err != nil {
		return term.Term{}, false
	}
	return t, true
}

// derive queues content with truth (nil for questions) under a budget
// function. Backward budgets are computed from the belief truth.
func derive(ctx *reasoner.ConceptContext, content term.Term, truth *nal.Truth, fn nal.BudgetFunction, beliefTruth nal.Truth) {
	if !content.CanNameConcept() {
		return
	}
	var b nal.Budget
	if ctx.Task().IsQuestion() {
		b = ctx.BudgetInference(fn, content, &beliefTruth)
	} else {
		b = ctx.BudgetInference(fn, content, truth)
	}
	ctx.DoublePremiseTask(content, truth, b)
}

// forwardOrBackward picks the truth for a judgement task and the budget
// function for either kind of task.
func forwardOrBackward(task entity.Sentence, truth func() nal.Truth, backward nal.BudgetFunction) (*nal.Truth, nal.BudgetFunction) {
	if task.IsQuestion() {
		return nil, backward
	}
	t := truth()
	return &t, nal.Forward
}

// #endregion helpers
