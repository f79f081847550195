package reasoner

import (
	"fmt"

	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// Context is what every engine hook can rely on, whichever of the three
// contexts it was handed.
type Context interface {
	Concept() *concept.Concept
	Task() *entity.Task
	Time() int64
	Parameters() Parameters
	Report(out navm.Output)
	ConceptActivation(t term.Term) nal.ShortFloat
	BudgetInference(fn nal.BudgetFunction, content term.Term, truth *nal.Truth) nal.Budget
	SinglePremiseTask(content term.Term, punctuation entity.Punctuation, truth *nal.Truth, b nal.Budget)
}

var (
	_ Context = (*DirectContext)(nil)
	_ Context = (*TransformContext)(nil)
	_ Context = (*ConceptContext)(nil)
)

// #region core

// core is the working set shared by the three contexts. The concept is
// owned by the context until absorption.
type core struct {
	r        *Reasoner
	concept  *concept.Concept
	task     *entity.Task
	time     int64
	silence  int
	params   Parameters
	newTasks []*entity.Task
	outputs  []navm.Output
}

func newCore(r *Reasoner, c *concept.Concept, task *entity.Task) core {
	return core{
		r:       r,
		concept: c,
		task:    task,
		time:    r.clock,
		silence: r.silence,
		params:  r.params,
	}
}

func (c *core) Concept() *concept.Concept { return c.concept }
func (c *core) Task() *entity.Task { return c.task }
func (c *core) Time() int64 { return c.time }
func (c *core) Silence() int { return c.silence }
func (c *core) Parameters() Parameters { return c.params }

// NewTasks lists the tasks queued so far.
func (c *core) NewTasks() []*entity.Task { return c.newTasks }

// Outputs lists the outputs queued so far.
func (c *core) Outputs() []navm.Output { return c.outputs }

// Report queues an output for absorption.
func (c *core) Report(out navm.Output) {
	c.outputs = append(c.outputs, out)
}

// Comment queues a COMMENT.
func (c *core) Comment(format string, args ...any) {
	c.Report(navm.Comment(fmt.Sprintf(format, args...)))
}

// ConceptActivation is the priority of t's concept, zero when there is none.
func (c *core) ConceptActivation(t term.Term) nal.ShortFloat {
	if c.concept != nil && c.concept.Term().Equal(t) {
		return c.concept.Budget().P
	}
	if other, ok := c.r.memory.GetConcept(t); ok {
		return other.Budget().P
	}
	return 0
}

// derivedTask queues task if its budget clears the threshold and reports it
// as OUT when it is louder than the silence level.
func (c *core) derivedTask(task *entity.Task) {
	b := task.Budget()
	if !b.AboveThreshold(c.params.threshold()) {
		return
	}
	if !task.Sentence().Content().CanNameConcept() {
		return
	}
	if b.Summary().Float() > float64(c.silence)/100 {
		s := task.Sentence()
		c.Report(navm.Output{Type: navm.OutOut, Content: task.String(), Narsese: s.Narsese()})
	}
	c.newTasks = append(c.newTasks, task)
}

// ActivatedTask queues an answer: sentence re-entering the system as a
// task derived from the current one.
func (c *core) ActivatedTask(b nal.Budget, sentence entity.Sentence, candidateBelief *entity.Sentence) {
	c.derivedTask(entity.NewDerivedTask(sentence, b, c.task, candidateBelief))
}

// SinglePremiseTask queues a structural derivation from the current task
// alone. A content equal to the parent task's is skipped, which would loop
// back through the same transformation.
func (c *core) SinglePremiseTask(content term.Term, punctuation entity.Punctuation, truth *nal.Truth, b nal.Budget) {
	if parent := c.task.Parent(); parent != nil && parent.Sentence().Content().Equal(content) {
		return
	}
	stamp := c.task.Sentence().Stamp().Clone()
	stamp.CreationTime = c.time
	var s entity.Sentence
	switch punctuation {
	case entity.Judgement:
		if truth == nil {
			return
		}
		s = entity.NewJudgement(content, *truth, stamp)
	default:
		s = entity.NewQuestion(content, stamp)
	}
	c.derivedTask(entity.NewDerivedTask(s, b, c.task, nil))
}

// deriveWithStamp queues a two-premise derivation carrying stamp.
func (c *core) deriveWithStamp(content term.Term, truth *nal.Truth, stamp nal.Stamp, b nal.Budget, belief *entity.Sentence) {
	var s entity.Sentence
	if c.task.IsJudgement() {
		if truth == nil {
			return
		}
		s = entity.NewJudgement(content, *truth, stamp)
	} else {
		s = entity.NewQuestion(content, stamp)
	}
	c.derivedTask(entity.NewDerivedTask(s, b, c.task, belief))
}

// #endregion core

// #region direct

// DirectContext processes one incoming task against its concept.
type DirectContext struct {
	core
}

// BudgetInference has no links to draw on and uses the task budget.
func (c *DirectContext) BudgetInference(fn nal.BudgetFunction, content term.Term, truth *nal.Truth) nal.Budget {
	q, complexity := nal.InferenceQuality(fn, truth, content.Complexity())
	return nal.BudgetInference(q, complexity, c.task.Budget(), nil, 0)
}

// ReviseBudget charges a revision to the task only.
func (c *DirectContext) ReviseBudget(taskTruth, beliefTruth, revised nal.Truth) nal.Budget {
	return nal.ReviseBudget(taskTruth, beliefTruth, revised, c.task.Budget(), nil, nil)
}

// SolutionEval adjusts budgets for an answer to question.
func (c *DirectContext) SolutionEval(quality nal.ShortFloat, solution entity.Sentence, question *entity.Task) (nal.Budget, bool) {
	return nal.SolutionEval(quality, solution.Truth(), question.IsJudgement(), question.Budget(), nil, nil)
}

// RevisionTask queues a revised judgement with its merged stamp.
func (c *DirectContext) RevisionTask(content term.Term, truth nal.Truth, stamp nal.Stamp, b nal.Budget, belief entity.Sentence) {
	c.deriveWithStamp(content, &truth, stamp, b, &belief)
}

// #endregion direct

// #region transform

// TransformContext fires structural rules on one task-link.
type TransformContext struct {
	core
	taskLink *link.TaskLink
}

// TaskLink is the link being transformed.
func (c *TransformContext) TaskLink() *link.TaskLink { return c.taskLink }

// BudgetInference draws on the task-link budget.
func (c *TransformContext) BudgetInference(fn nal.BudgetFunction, content term.Term, truth *nal.Truth) nal.Budget {
	q, complexity := nal.InferenceQuality(fn, truth, content.Complexity())
	return nal.BudgetInference(q, complexity, c.taskLink.Budget(), nil, 0)
}

// #endregion transform

// #region concept

// ConceptContext pairs one task-link with a series of pre-selected
// term-links for two-premise inference.
type ConceptContext struct {
	core
	taskLink  *link.TaskLink
	termLinks []*link.TermLink
	current   int
	belief    *entity.Sentence
	newStamp  nal.Stamp
	mark      int
}

// TaskLink is the link whose task is reasoned about.
func (c *ConceptContext) TaskLink() *link.TaskLink { return c.taskLink }

// TermLinks lists the pre-selected term-links.
func (c *ConceptContext) TermLinks() []*link.TermLink { return c.termLinks }

// TermLink is the current term-link.
func (c *ConceptContext) TermLink() *link.TermLink { return c.termLinks[c.current] }

// Belief is the belief of the current term-link's target, if one could be
// combined with the task.
func (c *ConceptContext) Belief() (entity.Sentence, bool) {
	if c.belief == nil {
		return entity.Sentence{}, false
	}
	return *c.belief, true
}

// NewStamp is the merged stamp of task and belief, or the task's own.
func (c *ConceptContext) NewStamp() nal.Stamp { return c.newStamp }

// Produced counts tasks queued while on the current term-link.
func (c *ConceptContext) Produced() int { return len(c.newTasks) - c.mark }

// selectTermLink moves to term-link i and looks up its belief.
func (c *ConceptContext) selectTermLink(i int) {
	c.current = i
	c.belief = nil
	c.mark = len(c.newTasks)
	stamp := c.task.Sentence().Stamp().Clone()
	stamp.CreationTime = c.time
	c.newStamp = stamp
	target, ok := c.r.memory.GetConcept(c.TermLink().Target())
	if !ok {
		return
	}
	belief, ok := target.GetBelief(c.task)
	if !ok {
		return
	}
	merged, ok := nal.MergeStamps(c.task.Sentence().Stamp(), belief.Stamp(), c.time, c.params.MaximumStampLength)
	if !ok {
		return
	}
	c.belief = &belief
	c.newStamp = merged
}

// BudgetInference draws on both links and rewards the term-link.
func (c *ConceptContext) BudgetInference(fn nal.BudgetFunction, content term.Term, truth *nal.Truth) nal.Budget {
	q, complexity := nal.InferenceQuality(fn, truth, content.Complexity())
	tl := c.TermLink()
	return nal.BudgetInference(q, complexity, c.taskLink.Budget(), tl.Budget(), c.ConceptActivation(tl.Target()))
}

// ReviseBudget charges a revision to the task and feeds back to both links.
func (c *ConceptContext) ReviseBudget(taskTruth, beliefTruth, revised nal.Truth) nal.Budget {
	return nal.ReviseBudget(taskTruth, beliefTruth, revised, c.task.Budget(), c.taskLink.Budget(), c.TermLink().Budget())
}

// SolutionEval adjusts budgets for an answer to question.
func (c *ConceptContext) SolutionEval(quality nal.ShortFloat, solution entity.Sentence, question *entity.Task) (nal.Budget, bool) {
	return nal.SolutionEval(quality, solution.Truth(), question.IsJudgement(), question.Budget(), nil, nil)
}

// DoublePremiseTask queues a derivation from task and belief under the
// merged stamp.
func (c *ConceptContext) DoublePremiseTask(content term.Term, truth *nal.Truth, b nal.Budget) {
	c.deriveWithStamp(content, truth, c.newStamp.Clone(), b, c.belief)
}

// #endregion concept
