// Package concept holds the term-keyed hub of beliefs, questions and links.
package concept

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/danielpatrickdp/narsvm/internal/bag"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// Config sizes the per-concept storage.
type Config struct {
	MaxBeliefs        int
	MaxQuestions      int
	TaskLinkBagSize   int
	TaskLinkBagLevels int
	TaskLinkForget    int
	TermLinkBagSize   int
	TermLinkBagLevels int
	TermLinkForget    int
	TermLinkRecordLen int
}

// #region concept

// Concept is owned either by the memory bag or by one in-flight context.
type Concept struct {
	term      term.Term
	budget    nal.Budget
	templates []link.Template
	cfg       Config

	beliefs   []entity.Sentence
	questions []*entity.Task
	taskLinks *bag.Bag[*link.TaskLink]
	termLinks *bag.Bag[*link.TermLink]
}

// New builds an empty concept and derives its link templates.
func New(t term.Term, b nal.Budget, cfg Config, rng *rand.Rand) *Concept {
	return &Concept{
		term:      t,
		budget:    b,
		templates: link.Templates(t),
		cfg:       cfg,
		taskLinks: bag.New[*link.TaskLink](cfg.TaskLinkBagSize, cfg.TaskLinkBagLevels, cfg.TaskLinkForget, rng),
		termLinks: bag.New[*link.TermLink](cfg.TermLinkBagSize, cfg.TermLinkBagLevels, cfg.TermLinkForget, rng),
	}
}

func (c *Concept) Key() string { return c.term.Name() }
func (c *Concept) Budget() *nal.Budget { return &c.budget }
func (c *Concept) Term() term.Term { return c.term }
func (c *Concept) Templates() []link.Template { return c.templates }
func (c *Concept) Config() Config { return c.cfg }
func (c *Concept) Beliefs() []entity.Sentence { return c.beliefs }
func (c *Concept) Questions() []*entity.Task { return c.questions }

func (c *Concept) TaskLinks() *bag.Bag[*link.TaskLink] { return c.taskLinks }
func (c *Concept) TermLinks() *bag.Bag[*link.TermLink] { return c.termLinks }

func (c *Concept) String() string {
	return c.budget.Brief() + " " + c.term.Name()
}

// #endregion concept

// #region beliefs

// AddBelief inserts j by rank. The table stays sorted by descending rank; a
// belief equivalent to one already held is rejected. Returns
// the belief that fell off the end, if any.
func (c *Concept) AddBelief(j entity.Sentence) (entity.Sentence, bool) {
	for _, existing := range c.beliefs {
		if j.EquivalentTo(existing) {
			return entity.Sentence{}, false
		}
	}
	rank := nal.RankBelief(j.Truth(), j.Stamp())
	i := 0
	inserted := false
	for ; i < len(c.beliefs); i++ {
		existing := c.beliefs[i]
		if rank >= nal.RankBelief(existing.Truth(), existing.Stamp()) {
			c.beliefs = slices.Insert(c.beliefs, i, j)
			inserted = true
			break
		}
	}
	if len(c.beliefs) > c.cfg.MaxBeliefs {
		tail := c.beliefs[len(c.beliefs)-1]
		c.beliefs = c.beliefs[:c.cfg.MaxBeliefs]
		return tail, true
	}
	if !inserted && len(c.beliefs) < c.cfg.MaxBeliefs {
		c.beliefs = append(c.beliefs, j)
	}
	return entity.Sentence{}, false
}

// GetBelief returns the first belief whose evidence does not overlap the
// task's, i.e. one it could be combined with.
func (c *Concept) GetBelief(task *entity.Task) (entity.Sentence, bool) {
	stamp := task.Sentence().Stamp()
	for _, b := range c.beliefs {
		if !stamp.Overlaps(b.Stamp()) {
			return b, true
		}
	}
	return entity.Sentence{}, false
}

// #endregion beliefs

// #region questions

// AddQuestion registers q. A question with the same content already held is
// returned instead so answers accumulate on one task. The oldest question is
// dropped past capacity.
func (c *Concept) AddQuestion(q *entity.Task) *entity.Task {
	content := q.Sentence().Content()
	for _, existing := range c.questions {
		if existing.Sentence().Content().Equal(content) {
			return existing
		}
	}
	c.questions = append(c.questions, q)
	if len(c.questions) > c.cfg.MaxQuestions {
		c.questions = slices.Delete(c.questions, 0, 1)
	}
	return q
}

// #endregion questions

// #region links

// InsertTaskLink adds tl to the task-link bag; the caller activates the
// concept.
func (c *Concept) InsertTaskLink(tl *link.TaskLink) {
	c.taskLinks.PutIn(tl)
}

// InsertTermLink adds tl to the term-link bag.
func (c *Concept) InsertTermLink(tl *link.TermLink) {
	c.termLinks.PutIn(tl)
}

func (c *Concept) TakeOutTaskLink() (*link.TaskLink, bool) { return c.taskLinks.TakeOut() }
func (c *Concept) TakeOutTermLink() (*link.TermLink, bool) { return c.termLinks.TakeOut() }

// PutTaskLinkBack returns a task-link with forgetting applied.
func (c *Concept) PutTaskLinkBack(tl *link.TaskLink) {
	c.taskLinks.PutBack(tl)
}

// PutTermLinkBack returns a term-link with forgetting applied.
func (c *Concept) PutTermLinkBack(tl *link.TermLink) {
	c.termLinks.PutBack(tl)
}

// #endregion links

// #region restore

// Restore replaces the stored contents, e.g. after loading a snapshot.
func (c *Concept) Restore(beliefs []entity.Sentence, questions []*entity.Task,
	taskLinks []bag.Slot[*link.TaskLink], taskCursor bag.Cursor,
	termLinks []bag.Slot[*link.TermLink], termCursor bag.Cursor) error {
	if len(beliefs) > c.cfg.MaxBeliefs {
		return fmt.Errorf("restore concept %s: %d beliefs exceed %d", c.Key(), len(beliefs), c.cfg.MaxBeliefs)
	}
	if err := c.taskLinks.Restore(taskLinks, taskCursor); err != nil {
		return fmt.Errorf("restore concept %s: task-links: %w", c.Key(), err)
	}
	if err := c.termLinks.Restore(termLinks, termCursor); err != nil {
		return fmt.Errorf("restore concept %s: term-links: %w", c.Key(), err)
	}
	c.beliefs = beliefs
	c.questions = questions
	return nil
}

// Check verifies the belief table ordering and both link bags.
func (c *Concept) Check() error {
	for i := 1; i < len(c.beliefs); i++ {
		prev, cur := c.beliefs[i-1], c.beliefs[i]
		if nal.RankBelief(prev.Truth(), prev.Stamp()) < nal.RankBelief(cur.Truth(), cur.Stamp()) {
			return fmt.Errorf("concept %s: beliefs %d and %d out of rank order", c.Key(), i-1, i)
		}
	}
	for i := range c.beliefs {
		for j := i + 1; j < len(c.beliefs); j++ {
			if c.beliefs[i].EquivalentTo(c.beliefs[j]) {
				return fmt.Errorf("concept %s: beliefs %d and %d are equivalent", c.Key(), i, j)
			}
		}
	}
	if len(c.beliefs) > c.cfg.MaxBeliefs {
		return fmt.Errorf("concept %s: %d beliefs exceed %d", c.Key(), len(c.beliefs), c.cfg.MaxBeliefs)
	}
	if err := c.taskLinks.Check(); err != nil {
		return fmt.Errorf("concept %s: task-links: %w", c.Key(), err)
	}
	if err := c.termLinks.Check(); err != nil {
		return fmt.Errorf("concept %s: term-links: %w", c.Key(), err)
	}
	return nil
}

// #endregion restore
