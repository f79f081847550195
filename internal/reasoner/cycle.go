package reasoner

import (
	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
)

// #region cycle

// Cycle runs n work cycles.
func (r *Reasoner) Cycle(n int) {
	for range n {
		r.workCycle()
	}
}

// workCycle is one atomic step: the direct pass, then the concept pass,
// then the clock tick.
func (r *Reasoner) workCycle() {
	r.processNewTasks()
	r.processNovelTask()
	r.processConcept()
	r.clock++
	r.logger.Debug("cycle",
		zap.Int64("clock", r.clock),
		zap.Int("concepts", r.memory.Size()),
		zap.Int("new_tasks", len(r.newTasks)),
		zap.Int("novel_tasks", r.novelTasks.Size()))
}

// #endregion cycle

// #region direct-pass

// processNewTasks drains the tasks queued before the pass started. Tasks
// derived during the pass wait for the next cycle.
func (r *Reasoner) processNewTasks() {
	n := len(r.newTasks)
	for range n {
		task := r.newTasks[0]
		r.newTasks = r.newTasks[1:]
		switch {
		case task.IsInput() || r.memory.HasConcept(task.Sentence().Content()):
			r.immediateProcess(task)
		case task.IsJudgement() && task.Sentence().Truth().Expectation() > r.params.DefaultCreationExpectation:
			if displaced, overflow := r.novelTasks.PutIn(task); overflow {
				r.report(commentf("!!! NovelTasks overflowed: %s", displaced))
			}
		default:
			r.report(commentf("!!! Neglected: %s", task))
		}
	}
	if len(r.newTasks) == 0 {
		r.newTasks = nil
	}
}

// processNovelTask processes at most one task from the novel bag.
func (r *Reasoner) processNovelTask() {
	if task, ok := r.novelTasks.TakeOut(); ok {
		r.immediateProcess(task)
	}
}

// immediateProcess activates the task's concept, runs the direct hook on
// it and, if the task is still worth it, links the concept to the task.
func (r *Reasoner) immediateProcess(task *entity.Task) {
	c, ok := r.memory.GetConceptOrCreate(task.Sentence().Content())
	if !ok {
		r.report(commentf("!!! Neglected: %s", task))
		return
	}
	r.memory.ActivateConcept(c, *task.Budget())
	r.memory.PickOutConcept(c.Key())

	ctx := &DirectContext{core: newCore(r, c, task)}
	r.engine.direct(ctx)
	if task.Budget().AboveThreshold(r.params.threshold()) {
		r.memory.LinkToTask(c, task, task.IsStructural())
	}
	r.absorbDirect(ctx)
}

// #endregion direct-pass

// #region concept-pass

// processConcept fires one task-link of one concept chosen by priority.
// Term-links are matched and reasoned on first, unless the task-link is a
// transform link; the transform hook then sees the task-link alone.
func (r *Reasoner) processConcept() {
	c, ok := r.memory.TakeOutConcept()
	if !ok {
		return
	}
	tl, ok := c.TakeOutTaskLink()
	if !ok {
		r.memory.PutBack(c)
		return
	}

	if tl.Type() != link.Transform {
		ctx := &ConceptContext{core: newCore(r, c, tl.Task()), taskLink: tl}
		for range r.params.MaxReasonedTermLink {
			termLink, ok := r.selectTermLink(ctx)
			if !ok {
				break
			}
			ctx.termLinks = append(ctx.termLinks, termLink)
		}
		for i := range ctx.termLinks {
			ctx.selectTermLink(i)
			r.engine.matching(ctx)
			if ctx.Produced() > 0 && ctx.task.IsJudgement() {
				continue
			}
			r.engine.reason(ctx)
		}
		r.absorbConcept(ctx)
	}

	tctx := &TransformContext{core: newCore(r, c, tl.Task()), taskLink: tl}
	r.engine.transform(tctx)
	r.absorbTransform(tctx)
}

// selectTermLink takes out the first term-link novel to the task-link,
// returning rejected ones to the bag. It gives up after
// max_matched_term_link attempts.
func (r *Reasoner) selectTermLink(ctx *ConceptContext) (*link.TermLink, bool) {
	for range r.params.MaxMatchedTermLink {
		termLink, ok := ctx.concept.TakeOutTermLink()
		if !ok {
			return nil, false
		}
		if ctx.taskLink.Novel(termLink, r.clock) {
			return termLink, true
		}
		ctx.concept.PutTermLinkBack(termLink)
	}
	return nil, false
}

// #endregion concept-pass
