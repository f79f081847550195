// Package reasoner drives the NARS work cycle: it consumes NAVM commands,
// schedules tasks and concepts, hands contexts to an inference engine and
// records the outputs the engine and the controller produce.
package reasoner

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/bag"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/memory"
	"github.com/danielpatrickdp/narsvm/internal/navm"
)

// ErrUnknownTarget is returned for an INF, SAV or LOA target outside the
// supported set.
var ErrUnknownTarget = errors.New("unknown target")

// Storage resolves the non-empty paths of SAV and LOA. Without one, SAV
// only echoes and LOA only accepts inline JSON.
type Storage interface {
	Save(target, path string, data []byte) error
	Load(target, path string) ([]byte, error)
}

// #region reasoner

// Reasoner is a single-threaded NARS controller. It is not safe for
// concurrent use; callers serialize access the way the runtime does.
type Reasoner struct {
	params  Parameters
	engine  Engine
	logger  *zap.Logger
	storage Storage

	pcg *rand.PCG
	rng *rand.Rand

	memory     *memory.Memory
	newTasks   []*entity.Task
	novelTasks *bag.Bag[*entity.Task]

	clock        int64
	stampSerial  uint64
	silence      int
	inputSerials map[string]uint64

	outputs    []navm.Output
	terminated bool
}

// New builds a reasoner in its reset state. logger may be nil.
func New(params Parameters, engine Engine, logger *zap.Logger) (*Reasoner, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("new reasoner: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reasoner{params: params, engine: engine, logger: logger}
	r.reset()
	return r, nil
}

// SetStorage attaches the resolver for SAV and LOA paths.
func (r *Reasoner) SetStorage(s Storage) { r.storage = s }

// reset drops all state and reseeds the generator from the parameters.
func (r *Reasoner) reset() {
	r.pcg = rand.NewPCG(r.params.Seed, r.params.Seed)
	r.rng = rand.New(r.pcg)
	r.memory = memory.New(r.params.memoryConfig(), r.rng)
	r.newTasks = nil
	r.novelTasks = bag.New[*entity.Task](r.params.NovelTaskBagSize, r.params.NovelTaskBagLevels, r.params.NewTaskForgettingCycle, r.rng)
	r.clock = 0
	r.stampSerial = 0
	r.silence = 0
	r.inputSerials = make(map[string]uint64)
	r.outputs = nil
}

func (r *Reasoner) Parameters() Parameters { return r.params }
func (r *Reasoner) Engine() Engine { return r.engine }
func (r *Reasoner) Memory() *memory.Memory { return r.memory }
func (r *Reasoner) Clock() int64 { return r.clock }
func (r *Reasoner) Silence() int { return r.silence }
func (r *Reasoner) StampSerial() uint64 { return r.stampSerial }
func (r *Reasoner) Terminated() bool { return r.terminated }

// NewTasks lists the queued new tasks, oldest first.
func (r *Reasoner) NewTasks() []*entity.Task { return r.newTasks }

// NovelTasks exposes the novel-task bag.
func (r *Reasoner) NovelTasks() *bag.Bag[*entity.Task] { return r.novelTasks }

// TakeOutputs returns and clears the recorded outputs.
func (r *Reasoner) TakeOutputs() []navm.Output {
	out := r.outputs
	r.outputs = nil
	return out
}

func (r *Reasoner) report(out navm.Output) {
	r.outputs = append(r.outputs, out)
}

// #endregion reasoner

// #region absorb

// absorbCore moves a context's queued tasks and outputs into the reasoner,
// preserving their order.
func (r *Reasoner) absorbCore(c *core) {
	r.newTasks = append(r.newTasks, c.newTasks...)
	r.outputs = append(r.outputs, c.outputs...)
	c.newTasks = nil
	c.outputs = nil
}

// absorbDirect returns the concept without forgetting; it was only just
// activated.
func (r *Reasoner) absorbDirect(ctx *DirectContext) {
	r.memory.PutIn(ctx.concept)
	r.absorbCore(&ctx.core)
}

func (r *Reasoner) absorbTransform(ctx *TransformContext) {
	ctx.concept.PutTaskLinkBack(ctx.taskLink)
	r.memory.PutBack(ctx.concept)
	r.absorbCore(&ctx.core)
}

// absorbConcept returns the term-links only; the task-link and the concept
// go back after the transform hook has run on the same pass.
func (r *Reasoner) absorbConcept(ctx *ConceptContext) {
	for _, tl := range ctx.termLinks {
		ctx.concept.PutTermLinkBack(tl)
	}
	r.absorbCore(&ctx.core)
}

// #endregion absorb
