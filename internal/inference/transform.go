package inference

import (
	"slices"

	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// #region transform

// Transform rewrites an inheritance between a product or image and a term
// into the equivalent inheritance seen from the linked component:
//
//	<(*,a,b) --> r>   <=>  <a --> (/,r,_,b)>
//	<r --> (*,a,b)>   <=>  <(\,r,_,b) --> a>
//
// The truth value carries over unchanged. Only transform task-links are
// rewritten.
func Transform(ctx *reasoner.TransformContext) {
	task := ctx.Task()
	content := task.Sentence().Content()
	tl := ctx.TaskLink()
	if tl.Type() != link.Transform || !content.Is(term.Inheritance) || len(tl.Index()) != 2 {
		return
	}
	out, ok := transformProductImage(content, tl.IndexAt(0), tl.IndexAt(1))
	if !ok {
		return
	}
	s := task.Sentence()
	if s.IsJudgement() {
		truth := s.Truth()
		b := ctx.BudgetInference(nal.CompoundForward, out, &truth)
		ctx.SinglePremiseTask(out, s.Punctuation(), &truth, b)
		return
	}
	b := ctx.BudgetInference(nal.CompoundBackward, out, nil)
	ctx.SinglePremiseTask(out, s.Punctuation(), nil, b)
}

// transformProductImage moves component index of side of inh to the other
// side of the copula.
func transformProductImage(inh term.Term, side, index int) (term.Term, bool) {
	if side != 0 && side != 1 {
		return term.Term{}, false
	}
	comp := inh.Component(side)
	if index < 0 || index >= comp.Len() || comp.Component(index).IsPlaceholder() {
		return term.Term{}, false
	}
	var subject, predicate term.Term
	var err error
	switch {
	case comp.Is(term.Product) && side == 0:
		subject = comp.Component(index)
		predicate, err = imageOf(term.ImageExt, comp, inh.Predicate(), index)
	case comp.Is(term.Product) && side == 1:
		subject, err = imageOf(term.ImageInt, comp, inh.Subject(), index)
		predicate = comp.Component(index)
	case comp.Is(term.ImageExt) && side == 1 && index == 0:
		subject, err = productOf(comp, inh.Subject())
		predicate = comp.Component(0)
	case comp.Is(term.ImageExt) && side == 1:
		subject = comp.Component(index)
		predicate, err = swapPlaceholder(comp, index, inh.Subject())
	case comp.Is(term.ImageInt) && side == 0 && index == 0:
		subject = comp.Component(0)
		predicate, err = productOf(comp, inh.Predicate())
	case comp.Is(term.ImageInt) && side == 0:
		subject, err = swapPlaceholder(comp, index, inh.Predicate())
		predicate = comp.Component(index)
	default:
		return term.Term{}, false
	}
	if err != nil {
		return term.Term{}, false
	}
	return statement(term.Inheritance, subject, predicate)
}

// imageOf builds (conn, relation, p0.._..pn) with the placeholder standing
// for product component index.
func imageOf(conn term.Connector, product, relation term.Term, index int) (term.Term, error) {
	comps := make([]term.Term, 0, product.Len()+1)
	comps = append(comps, relation)
	for i, c := range product.Components() {
		if i == index {
			c = term.Placeholder()
		}
		comps = append(comps, c)
	}
	return term.NewCompound(conn, comps...)
}

// productOf rebuilds the product an image was taken from, filling the
// placeholder with filler.
func productOf(image, filler term.Term) (term.Term, error) {
	comps := make([]term.Term, 0, image.Len()-1)
	for _, c := range image.Components()[1:] {
		if c.IsPlaceholder() {
			c = filler
		}
		comps = append(comps, c)
	}
	return term.NewCompound(term.Product, comps...)
}

// swapPlaceholder moves the placeholder of image to index and puts filler
// where it was.
func swapPlaceholder(image term.Term, index int, filler term.Term) (term.Term, error) {
	comps := slices.Clone(image.Components())
	at := image.PlaceholderIndex()
	comps[at] = filler
	comps[index] = term.Placeholder()
	return term.NewCompound(image.Connector(), comps...)
}

// #endregion transform
