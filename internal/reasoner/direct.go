package reasoner

import (
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/navm"
)

// #region process-direct

// ProcessDirect is the standard direct hook: judgements are checked for
// duplicates, revised against the best belief, offered to the concept's
// questions and stored; questions are registered and answered from the
// belief table.
func ProcessDirect(ctx *DirectContext) {
	if ctx.task.IsJudgement() {
		processJudgement(ctx)
		return
	}
	processQuestion(ctx)
}

func processJudgement(ctx *DirectContext) {
	task := ctx.task
	judgement := task.Sentence()
	c := ctx.concept

	if old, ok := bestSolution(judgement, c.Beliefs()); ok {
		if judgement.Content().Equal(old.Content()) && judgement.Stamp().EvidentialEqual(old.Stamp()) {
			if !task.IsInput() {
				task.Budget().P = 0
			}
			return
		}
		if revisable(judgement, old) {
			if stamp, ok := nal.MergeStamps(judgement.Stamp(), old.Stamp(), ctx.time, ctx.params.MaximumStampLength); ok {
				revised := nal.Revision(judgement.Truth(), old.Truth())
				b := ctx.ReviseBudget(judgement.Truth(), old.Truth(), revised)
				ctx.RevisionTask(judgement.Content(), revised, stamp, b, old)
			}
		}
	}
	if !task.Budget().AboveThreshold(ctx.params.threshold()) {
		return
	}
	for _, question := range c.Questions() {
		TrySolution(ctx, judgement, question)
	}
	if dropped, ok := c.AddBelief(judgement); ok {
		ctx.Comment("!!! Belief dropped: %s", dropped.Narsese())
	}
}

func processQuestion(ctx *DirectContext) {
	question := ctx.concept.AddQuestion(ctx.task)
	if answer, ok := bestSolution(question.Sentence(), ctx.concept.Beliefs()); ok {
		TrySolution(ctx, answer, question)
	}
}

// revisable reports whether two judgements about the same content may be
// pooled: the old one allows revision and their evidence is disjoint.
func revisable(a, b entity.Sentence) bool {
	return a.Content().Equal(b.Content()) && b.Revisable() && !a.Stamp().Overlaps(b.Stamp())
}

// bestSolution picks the belief that best answers problem.
func bestSolution(problem entity.Sentence, beliefs []entity.Sentence) (entity.Sentence, bool) {
	var best entity.Sentence
	var bestQuality nal.ShortFloat
	found := false
	for _, b := range beliefs {
		q := solutionQuality(problem, b)
		if !found || q > bestQuality {
			best, bestQuality, found = b, q, true
		}
	}
	return best, found
}

func solutionQuality(problem, solution entity.Sentence) nal.ShortFloat {
	return nal.SolutionQuality(problem.Content().HasQueryVar(), solution.Truth(), solution.Content().Complexity())
}

// #endregion process-direct

// #region solution

// SolutionContext is what TrySolution needs from either the direct or the
// concept context.
type SolutionContext interface {
	Report(out navm.Output)
	ActivatedTask(b nal.Budget, sentence entity.Sentence, candidateBelief *entity.Sentence)
	SolutionEval(quality nal.ShortFloat, solution entity.Sentence, question *entity.Task) (nal.Budget, bool)
	Parameters() Parameters
}

var (
	_ SolutionContext = (*DirectContext)(nil)
	_ SolutionContext = (*ConceptContext)(nil)
)

// TrySolution offers belief as an answer to question. It is kept only if
// it beats the current best solution; an input question reports it as
// ANSWER and the answer re-enters the system as an activated task.
func TrySolution(ctx SolutionContext, belief entity.Sentence, question *entity.Task) {
	problem := question.Sentence()
	quality := solutionQuality(problem, belief)
	if old := question.BestSolution(); old != nil {
		if solutionQuality(problem, *old) >= quality {
			return
		}
	}
	question.SetBestSolution(belief)
	if question.IsInput() {
		ctx.Report(navm.Output{Type: navm.OutAnswer, Content: belief.String(), Narsese: belief.Narsese()})
	}
	b, ok := ctx.SolutionEval(quality, belief, question)
	if ok && b.AboveThreshold(ctx.Parameters().threshold()) {
		ctx.ActivatedTask(b, belief, question.ParentBelief())
	}
}

// #endregion solution
