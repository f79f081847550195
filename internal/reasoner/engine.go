package reasoner

import (
	"github.com/danielpatrickdp/narsvm/internal/navm"
)

// #region engine

// Engine is the inference plug-in: four hooks reading a context and queueing
// derived tasks and outputs on it. A nil hook does nothing.
type Engine struct {
	Name      string
	Direct    func(*DirectContext)
	Transform func(*TransformContext)
	Matching  func(*ConceptContext)
	Reason    func(*ConceptContext)
}

func (e Engine) direct(ctx *DirectContext) {
	if e.Direct != nil {
		e.Direct(ctx)
	}
}

func (e Engine) transform(ctx *TransformContext) {
	if e.Transform != nil {
		e.Transform(ctx)
	}
}

func (e Engine) matching(ctx *ConceptContext) {
	if e.Matching != nil {
		e.Matching(ctx)
	}
}

func (e Engine) reason(ctx *ConceptContext) {
	if e.Reason != nil {
		e.Reason(ctx)
	}
}

// #endregion engine

// #region builtin

// Void does nothing.
var Void = Engine{Name: "void"}

// Echo reports what each hook would process.
var Echo = Engine{
	Name: "echo",
	Direct: func(ctx *DirectContext) {
		ctx.Report(navm.Comment("direct: " + ctx.Task().String()))
	},
	Transform: func(ctx *TransformContext) {
		ctx.Report(navm.Comment("transform: " + ctx.TaskLink().String() + " in " + ctx.Concept().Key()))
	},
	Matching: func(ctx *ConceptContext) {
		ctx.Report(navm.Comment("matching: " + ctx.TaskLink().String() + " with " + ctx.TermLink().String()))
	},
	Reason: func(ctx *ConceptContext) {
		belief := "none"
		if b, ok := ctx.Belief(); ok {
			belief = b.Narsese()
		}
		ctx.Report(navm.Comment("reason: " + ctx.Task().Sentence().Narsese() + " with belief " + belief))
	},
}

// #endregion builtin
