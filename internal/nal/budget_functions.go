package nal

import (
	"fmt"
	"math"
)

// RelativeThreshold bounds how far forgetting pulls priority below quality.
const RelativeThreshold = 0.1

// #region budget-function

// BudgetFunction names a budget-inference request an inference rule can make.
type BudgetFunction int

const (
	Forward BudgetFunction = iota
	Backward
	BackwardWeak
	CompoundForward
	CompoundBackward
	CompoundBackwardWeak
	Revise
)

var budgetFunctionNames = [...]string{
	Forward:              "Forward",
	Backward:             "Backward",
	BackwardWeak:         "BackwardWeak",
	CompoundForward:      "CompoundForward",
	CompoundBackward:     "CompoundBackward",
	CompoundBackwardWeak: "CompoundBackwardWeak",
	Revise:               "Revise",
}

func (f BudgetFunction) String() string {
	if f < 0 || int(f) >= len(budgetFunctionNames) {
		return fmt.Sprintf("BudgetFunction(%d)", int(f))
	}
	return budgetFunctionNames[f]
}

// InferenceQuality returns the quality and complexity divisor a budget
// function uses. truth may be nil for the compound-backward functions.
// Revise has its own formula; see ReviseBudget.
func InferenceQuality(fn BudgetFunction, truth *Truth, complexity int) (float64, int) {
	if complexity < 1 {
		complexity = 1
	}
	quality := func() float64 {
		if truth == nil {
			return 1
		}
		return TruthToQuality(*truth).Float()
	}
	switch fn {
	case Forward, Backward:
		return quality(), 1
	case BackwardWeak:
		return W2C(1) * quality(), 1
	case CompoundForward:
		return quality(), complexity
	case CompoundBackward:
		return 1, complexity
	case CompoundBackwardWeak:
		return W2C(1), complexity
	default:
		return quality(), 1
	}
}

// #endregion budget-function

// #region quality

// TruthToQuality maps a truth value to a quality; strong negative evidence
// still counts, discounted.
func TruthToQuality(t Truth) ShortFloat {
	e := t.Expectation()
	return SF(math.Max(e, (1-e)*0.75))
}

// RankBelief orders judgements in a belief table: confidence combined with
// originality (shorter evidential bases rank higher).
func RankBelief(t Truth, stamp Stamp) ShortFloat {
	originality := 1.0 / float64(stamp.Len()+1)
	return Or(t.C, SF(originality))
}

// SolutionQuality scores a judgement as an answer to a question. Questions
// with query variables prefer simple, expected answers.
func SolutionQuality(hasQueryVar bool, solution Truth, solutionComplexity int) ShortFloat {
	if hasQueryVar {
		if solutionComplexity < 1 {
			solutionComplexity = 1
		}
		return SF(solution.Expectation() / float64(solutionComplexity))
	}
	return solution.C
}

// #endregion quality

// #region activation

// Activate merges an incoming budget into a concept's budget.
func Activate(concept, incoming Budget) Budget {
	return Budget{
		P: Or(concept.P, incoming.P),
		D: Average(concept.D, incoming.D),
		Q: concept.Q,
	}
}

// DistributeAmongLinks divides priority among n links.
func DistributeAmongLinks(b Budget, n int) Budget {
	if n < 1 {
		n = 1
	}
	return Budget{P: SF(b.P.Float() / math.Sqrt(float64(n))), D: b.D, Q: b.Q}
}

// Forget decays priority towards a floor proportional to quality, faster
// for low durability. forgetCycles is the bag's forgetting rate.
func Forget(b Budget, forgetCycles int, relativeThreshold float64) Budget {
	if forgetCycles < 1 {
		forgetCycles = 1
	}
	quality := b.Q.Float() * relativeThreshold
	p := b.P.Float() - quality
	if p > 0 {
		quality += p * math.Pow(b.D.Float(), 1.0/(float64(forgetCycles)*p))
	}
	b.P = SF(quality)
	return b
}

// #endregion activation

// #region inference

// BudgetInference computes a derived budget from the task-link (or task)
// budget and, when present, the term-link budget. The term-link is
// rewarded in place with the derived quality and the target activation.
func BudgetInference(quality float64, complexity int, taskLink *Budget, termLink *Budget, targetActivation ShortFloat) Budget {
	if complexity < 1 {
		complexity = 1
	}
	p := taskLink.P
	d := SF(taskLink.D.Float() / float64(complexity))
	q := SF(quality / float64(complexity))
	if termLink != nil {
		p = Or(p, termLink.P)
		d = And(d, termLink.D)
		termLink.IncPriority(Or(q, targetActivation))
		termLink.IncDurability(q)
	}
	return Budget{P: p, D: d, Q: q}
}

// ReviseBudget computes the budget of a revision. The task budget always
// pays for the revision; with feedback the two links pay as well.
func ReviseBudget(taskTruth, beliefTruth, revised Truth, task *Budget, taskLink, termLink *Budget) Budget {
	difT := SF(revised.ExpDifAbs(taskTruth))
	task.DecPriority(difT.Not())
	task.DecDurability(difT.Not())
	if taskLink != nil {
		taskLink.DecPriority(difT.Not())
		taskLink.DecDurability(difT.Not())
	}
	if termLink != nil {
		difB := SF(revised.ExpDifAbs(beliefTruth))
		termLink.DecPriority(difB.Not())
		termLink.DecDurability(difB.Not())
	}
	dif := SF(revised.C.Float() - math.Max(taskTruth.C.Float(), beliefTruth.C.Float()))
	return Budget{
		P: Or(dif, task.P),
		D: Average(dif, task.D),
		Q: TruthToQuality(revised),
	}
}

// SolutionEval adjusts budgets after a judgement answers a question. For a
// judgement task the task is simply boosted and no budget is returned;
// for a question task a budget for the activated answer is returned and
// the question is damped so it is asked less once answered.
func SolutionEval(quality ShortFloat, solution Truth, taskIsJudgement bool, task *Budget, taskLink, termLink *Budget) (Budget, bool) {
	var out Budget
	ok := false
	if taskIsJudgement {
		task.IncPriority(quality)
	} else {
		out = Budget{P: Or(task.P, quality), D: task.D, Q: TruthToQuality(solution)}
		task.P = Min(quality.Not(), task.P)
		ok = true
	}
	if taskLink != nil {
		taskLink.P = Min(quality.Not(), taskLink.P)
	}
	if termLink != nil {
		termLink.IncPriority(quality)
	}
	return out, ok
}

// #endregion inference
