// Package memory is the concept bag. The bag's name table doubles as the
// term index, so a concept is findable exactly while it sits in the bag.
package memory

import (
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/narsvm/internal/bag"
	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// Config sizes the memory and the concepts it creates.
type Config struct {
	BagSize         int
	BagLevels       int
	ForgetCycles    int
	InitialBudget   nal.Budget
	BudgetThreshold nal.ShortFloat
	Concept         concept.Config
}

// Memory owns every concept not currently held by a reasoning context.
type Memory struct {
	cfg      Config
	rng      *rand.Rand
	concepts *bag.Bag[*concept.Concept]
}

// New builds an empty memory drawing bag start positions from rng.
func New(cfg Config, rng *rand.Rand) *Memory {
	return &Memory{
		cfg:      cfg,
		rng:      rng,
		concepts: bag.New[*concept.Concept](cfg.BagSize, cfg.BagLevels, cfg.ForgetCycles, rng),
	}
}

// #region lookup

// Concepts exposes the concept bag.
func (m *Memory) Concepts() *bag.Bag[*concept.Concept] { return m.concepts }

// Size is the number of concepts in the bag.
func (m *Memory) Size() int { return m.concepts.Size() }

// HasConcept reports whether t has a concept in the bag.
func (m *Memory) HasConcept(t term.Term) bool {
	return m.concepts.Has(t.Name())
}

// GetConcept returns t's concept without creating one.
func (m *Memory) GetConcept(t term.Term) (*concept.Concept, bool) {
	return m.concepts.Get(t.Name())
}

// GetConceptOrCreate returns t's concept, creating it with the initial
// budget when absent. Bare variables and placeholders name no concept. The
// new concept may immediately overflow a full bag, in which case it is
// still returned but not retained.
func (m *Memory) GetConceptOrCreate(t term.Term) (*concept.Concept, bool) {
	if !t.CanNameConcept() {
		return nil, false
	}
	if c, ok := m.concepts.Get(t.Name()); ok {
		return c, true
	}
	c := concept.New(t, m.cfg.InitialBudget, m.cfg.Concept, m.rng)
	m.concepts.PutIn(c)
	return c, true
}

// PickOutConcept removes a concept so a context can own it.
func (m *Memory) PickOutConcept(key string) (*concept.Concept, bool) {
	return m.concepts.PickOut(key)
}

// TakeOutConcept removes a concept chosen by priority.
func (m *Memory) TakeOutConcept() (*concept.Concept, bool) {
	return m.concepts.TakeOut()
}

// PutIn returns a concept without forgetting. A concept displaced by a
// full bag is dropped.
func (m *Memory) PutIn(c *concept.Concept) {
	m.concepts.PutIn(c)
}

// PutBack returns a concept with forgetting applied.
func (m *Memory) PutBack(c *concept.Concept) {
	m.concepts.PutBack(c)
}

// #endregion lookup

// #region activation

// ActivateConceptCalculate is the budget c would have after activation by
// incoming. c is not modified.
func ActivateConceptCalculate(c *concept.Concept, incoming nal.Budget) nal.Budget {
	return nal.Activate(*c.Budget(), incoming)
}

// ActivateConcept raises c's budget. A concept in the bag is reinserted so
// its level follows the new priority; a concept held by a context is only
// updated.
func (m *Memory) ActivateConcept(c *concept.Concept, incoming nal.Budget) {
	if _, ok := m.concepts.PickOut(c.Key()); ok {
		*c.Budget() = ActivateConceptCalculate(c, incoming)
		m.concepts.PutBack(c)
		return
	}
	*c.Budget() = ActivateConceptCalculate(c, incoming)
}

// InsertTaskLink adds tl to c and activates c by the link's budget.
func (m *Memory) InsertTaskLink(c *concept.Concept, tl *link.TaskLink) {
	c.InsertTaskLink(tl)
	m.ActivateConcept(c, *tl.Budget())
}

// LinkToTask links c to task with a SELF task-link, then links every
// template target's concept to the task and builds term-links. Transform
// templates are skipped for structural tasks.
func (m *Memory) LinkToTask(c *concept.Concept, task *entity.Task, structural bool) {
	taskBudget := *task.Budget()
	m.InsertTaskLink(c, link.NewTaskLink(task, nil, taskBudget, c.Config().TermLinkRecordLen))

	templates := c.Templates()
	if len(templates) == 0 {
		return
	}
	sub := nal.DistributeAmongLinks(taskBudget, len(templates))
	if !sub.AboveThreshold(m.cfg.BudgetThreshold) {
		return
	}
	for i := range templates {
		tmpl := &templates[i]
		if structural && tmpl.Type == link.Transform {
			continue
		}
		target, ok := m.GetConceptOrCreate(tmpl.Target)
		if !ok {
			continue
		}
		m.InsertTaskLink(target, link.NewTaskLink(task, tmpl, sub, target.Config().TermLinkRecordLen))
	}
	m.BuildTermLinks(c, taskBudget)
}

// BuildTermLinks links c and each non-transform template target in both
// directions, recursing into compound targets.
func (m *Memory) BuildTermLinks(c *concept.Concept, b nal.Budget) {
	templates := c.Templates()
	if len(templates) == 0 {
		return
	}
	sub := nal.DistributeAmongLinks(b, len(templates))
	if !sub.AboveThreshold(m.cfg.BudgetThreshold) {
		return
	}
	for _, tmpl := range templates {
		if tmpl.Type == link.Transform {
			continue
		}
		target, ok := m.GetConceptOrCreate(tmpl.Target)
		if !ok {
			continue
		}
		c.InsertTermLink(link.NewTermLink(tmpl.Target, tmpl, sub))
		target.InsertTermLink(link.NewTermLink(c.Term(), tmpl, sub))
		if tmpl.Target.IsCompound() {
			m.BuildTermLinks(target, sub)
		}
	}
}

// #endregion activation

// #region restore

// Restore replaces the concept bag.
func (m *Memory) Restore(slots []bag.Slot[*concept.Concept], c bag.Cursor) error {
	if err := m.concepts.Restore(slots, c); err != nil {
		return fmt.Errorf("restore memory: %w", err)
	}
	return nil
}

// Check verifies the concept bag and every concept in it.
func (m *Memory) Check() error {
	if err := m.concepts.Check(); err != nil {
		return fmt.Errorf("memory: %w", err)
	}
	for _, c := range m.concepts.Items() {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

// #endregion restore
