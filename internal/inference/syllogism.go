package inference

import (
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// #region syllogisms

// syllogisms pairs two statements sharing a term. The copula kinds choose
// the rule family, the figure chooses the positions.
func syllogisms(ctx *reasoner.ConceptContext, taskLink *link.TaskLink, termLink *link.TermLink, task, belief entity.Sentence) {
	t1, t2 := task.Content(), belief.Content()
	if !t1.IsStatement() || !t2.IsStatement() || higherOrder(t1) != higherOrder(t2) {
		return
	}
	switch {
	case asymmetric(t1) && asymmetric(t2):
		asymmetricAsymmetric(ctx, task, belief, figure(taskLink, termLink))
	case asymmetric(t1) && symmetric(t2):
		asymmetricSymmetric(ctx, task, belief, figure(taskLink, termLink))
	case symmetric(t1) && asymmetric(t2):
		asymmetricSymmetric(ctx, belief, task, figure(termLink, taskLink))
	default:
		symmetricSymmetric(ctx, belief, task, figure(termLink, taskLink))
	}
}

// unifyShared binds independent variables so the shared terms match and
// applies the bindings to both premises.
func unifyShared(a, b term.Term, s1, s2 term.Term) (term.Term, term.Term, bool) {
	sub, ok := term.Unify(term.VarIndependent, a, b)
	if !ok {
		return term.Term{}, term.Term{}, false
	}
	r1, err := term.Apply(sub, s1)
	if err != nil {
		return term.Term{}, term.Term{}, false
	}
	r2, err := term.Apply(sub, s2)
	if err != nil {
		return term.Term{}, term.Term{}, false
	}
	return r1, r2, !r1.Equal(r2)
}

// asymmetricAsymmetric handles two inheritances or two implications.
func asymmetricAsymmetric(ctx *reasoner.ConceptContext, task, belief entity.Sentence, fig int) {
	t1, t2 := task.Content(), belief.Content()
	switch fig {
	case 11:
		if s1, s2, ok := unifyShared(t1.Subject(), t2.Subject(), t1, t2); ok {
			abdIndCom(ctx, s1.Predicate(), s2.Predicate(), task, belief, fig)
		}
	case 12:
		if s1, s2, ok := unifyShared(t1.Subject(), t2.Predicate(), t1, t2); ok {
			dedExe(ctx, s2.Subject(), s1.Predicate(), task, belief)
		}
	case 21:
		if s1, s2, ok := unifyShared(t1.Predicate(), t2.Subject(), t1, t2); ok {
			dedExe(ctx, s1.Subject(), s2.Predicate(), task, belief)
		}
	case 22:
		if s1, s2, ok := unifyShared(t1.Predicate(), t2.Predicate(), t1, t2); ok {
			abdIndCom(ctx, s1.Subject(), s2.Subject(), task, belief, fig)
		}
	}
}

// asymmetricSymmetric handles an inheritance with a similarity (or an
// implication with an equivalence) by analogy.
func asymmetricSymmetric(ctx *reasoner.ConceptContext, asym, sym entity.Sentence, fig int) {
	a, s := asym.Content(), sym.Content()
	switch fig {
	case 11:
		if a1, s1, ok := unifyShared(a.Subject(), s.Subject(), a, s); ok {
			analogy(ctx, s1.Predicate(), a1.Predicate(), asym, sym)
		}
	case 12:
		if a1, s1, ok := unifyShared(a.Subject(), s.Predicate(), a, s); ok {
			analogy(ctx, s1.Subject(), a1.Predicate(), asym, sym)
		}
	case 21:
		if a1, s1, ok := unifyShared(a.Predicate(), s.Subject(), a, s); ok {
			analogy(ctx, a1.Subject(), s1.Predicate(), asym, sym)
		}
	case 22:
		if a1, s1, ok := unifyShared(a.Predicate(), s.Predicate(), a, s); ok {
			analogy(ctx, a1.Subject(), s1.Subject(), asym, sym)
		}
	}
}

// symmetricSymmetric handles two similarities or two equivalences by
// resemblance.
func symmetricSymmetric(ctx *reasoner.ConceptContext, belief, task entity.Sentence, fig int) {
	b, t := belief.Content(), task.Content()
	switch fig {
	case 11:
		if b1, t1, ok := unifyShared(b.Subject(), t.Subject(), b, t); ok {
			resemblance(ctx, b1.Predicate(), t1.Predicate(), belief, task)
		}
	case 12:
		if b1, t1, ok := unifyShared(b.Subject(), t.Predicate(), b, t); ok {
			resemblance(ctx, b1.Predicate(), t1.Subject(), belief, task)
		}
	case 21:
		if b1, t1, ok := unifyShared(b.Predicate(), t.Subject(), b, t); ok {
			resemblance(ctx, b1.Subject(), t1.Predicate(), belief, task)
		}
	case 22:
		if b1, t1, ok := unifyShared(b.Predicate(), t.Predicate(), b, t); ok {
			resemblance(ctx, b1.Subject(), t1.Subject(), belief, task)
		}
	}
}

// #endregion syllogisms

// #region rules

// dedExe derives <S --> P> by deduction and <P --> S> by exemplification.
func dedExe(ctx *reasoner.ConceptContext, subject, predicate term.Term, task, belief entity.Sentence) {
	copula := task.Content().Connector()
	v1, v2 := task.Truth(), belief.Truth()
	if content, ok := statement(copula, subject, predicate); ok {
		truth, fn := forwardOrBackward(task, func() nal.Truth { return nal.Deduction(v1, v2) }, nal.BackwardWeak)
		derive(ctx, content, truth, fn, v2)
	}
	if content, ok := statement(copula, predicate, subject); ok {
		truth, fn := forwardOrBackward(task, func() nal.Truth { return nal.Exemplification(v1, v2) }, nal.BackwardWeak)
		derive(ctx, content, truth, fn, v2)
	}
}

// abdIndCom derives both directions of the asymmetric copula and the
// symmetric one between two terms sharing a subject (induction, figure 11)
// or a predicate (abduction, figure 22).
func abdIndCom(ctx *reasoner.ConceptContext, term1, term2 term.Term, task, belief entity.Sentence, fig int) {
	if invalidStatement(term1, term2) {
		return
	}
	asym, sym := asymmetricOf(task.Content()), symmetricOf(task.Content())
	v1, v2 := task.Truth(), belief.Truth()
	rule := nal.Abduction
	if fig == 11 {
		rule = nal.Induction
	}
	if content, ok := statement(asym, term1, term2); ok {
		truth, fn := forwardOrBackward(task, func() nal.Truth { return rule(v1, v2) }, nal.Backward)
		derive(ctx, content, truth, fn, v2)
	}
	if content, ok := statement(asym, term2, term1); ok {
		truth, fn := forwardOrBackward(task, func() nal.Truth { return rule(v2, v1) }, nal.BackwardWeak)
		derive(ctx, content, truth, fn, v2)
	}
	if content, ok := statement(sym, term1, term2); ok {
		truth, fn := forwardOrBackward(task, func() nal.Truth { return nal.Comparison(v1, v2) }, nal.Backward)
		derive(ctx, content, truth, fn, v2)
	}
}

// analogy carries the asymmetric premise across the symmetric one.
func analogy(ctx *reasoner.ConceptContext, subject, predicate term.Term, asym, sym entity.Sentence) {
	content, ok := statement(asym.Content().Connector(), subject, predicate)
	if !ok {
		return
	}
	task := ctx.Task().Sentence()
	if task.IsQuestion() {
		fn, beliefTruth := nal.Backward, sym.Truth()
		if sym.IsQuestion() {
			fn, beliefTruth = nal.BackwardWeak, asym.Truth()
		}
		derive(ctx, content, nil, fn, beliefTruth)
		return
	}
	truth := nal.Analogy(asym.Truth(), sym.Truth())
	derive(ctx, content, &truth, nal.Forward, sym.Truth())
}

// resemblance chains two symmetric statements.
func resemblance(ctx *reasoner.ConceptContext, term1, term2 term.Term, belief, task entity.Sentence) {
	content, ok := statement(belief.Content().Connector(), term1, term2)
	if !ok {
		return
	}
	if task.IsQuestion() {
		derive(ctx, content, nil, nal.Backward, belief.Truth())
		return
	}
	truth := nal.Resemblance(belief.Truth(), task.Truth())
	derive(ctx, content, &truth, nal.Forward, belief.Truth())
}

// detachment applies an implication or equivalence (main) to a sentence
// matching one of its sides, concluding the other side. side is the
// position of sub in main.
func detachment(ctx *reasoner.ConceptContext, main, sub entity.Sentence, side int) {
	st := main.Content()
	if !higherOrder(st) {
		return
	}
	var content term.Term
	switch {
	case side == 0 && sub.Content().Equal(st.Subject()):
		content = st.Predicate()
	case side == 1 && sub.Content().Equal(st.Predicate()):
		content = st.Subject()
	default:
		return
	}
	if content.IsStatement() && invalidStatement(content.Subject(), content.Predicate()) {
		return
	}
	belief, _ := ctx.Belief()
	if ctx.Task().IsQuestion() {
		fn := nal.Backward
		if !st.Is(term.Equivalence) && side == 0 {
			fn = nal.BackwardWeak
		}
		derive(ctx, content, nil, fn, belief.Truth())
		return
	}
	v1, v2 := main.Truth(), sub.Truth()
	var truth nal.Truth
	switch {
	case st.Is(term.Equivalence):
		truth = nal.Analogy(v2, v1)
	case side == 0:
		truth = nal.Deduction(v1, v2)
	default:
		truth = nal.Abduction(v2, v1)
	}
	derive(ctx, content, &truth, nal.Forward, belief.Truth())
}

// #endregion rules
