package reasoner

import (
	"encoding/json"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/danielpatrickdp/narsvm/internal/bag"
	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/link"
	"github.com/danielpatrickdp/narsvm/internal/memory"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
)

// #region schema

// Snapshot is the persisted core state. Tasks are stored once in a table,
// parents before children, and referenced by position everywhere else.
type Snapshot struct {
	Parameters   Parameters        `json:"parameters"`
	Clock        int64             `json:"clock"`
	StampSerial  uint64            `json:"stamp_serial"`
	Silence      int               `json:"silence"`
	RNG          []byte            `json:"rng"`
	InputSerials map[string]uint64 `json:"input_serials,omitempty"`
	Tasks        []TaskEntry       `json:"tasks"`
	Concepts     ConceptBag        `json:"concepts"`
	NewTasks     []int             `json:"new_tasks"`
	NovelTasks   TaskBag           `json:"novel_tasks"`
}

// Status is the memory snapshot plus the name of the attached engine.
type Status struct {
	Engine     string   `json:"engine"`
	Terminated bool     `json:"terminated,omitempty"`
	Memory     Snapshot `json:"memory"`
}

// TaskEntry is one task; Parent is a table position or -1.
type TaskEntry struct {
	entity.Record
	Parent int `json:"parent"`
}

// ConceptBag is the concept bag in level order.
type ConceptBag struct {
	Items  []ConceptSlot `json:"items"`
	Cursor bag.Cursor    `json:"cursor"`
}

// ConceptSlot is one concept and its level.
type ConceptSlot struct {
	Level   int           `json:"level"`
	Concept ConceptRecord `json:"concept"`
}

// ConceptRecord is a concept without its templates, which are re-derived
// from the term on load.
type ConceptRecord struct {
	Term      string            `json:"term"`
	Budget    nal.Budget        `json:"budget"`
	Beliefs   []entity.Sentence `json:"beliefs,omitempty"`
	Questions []int             `json:"questions,omitempty"`
	TaskLinks TaskLinkBag       `json:"task_links"`
	TermLinks TermLinkBag       `json:"term_links"`
}

// TaskLinkBag is a concept's task-link bag in level order.
type TaskLinkBag struct {
	Items  []TaskLinkRecord `json:"items,omitempty"`
	Cursor bag.Cursor       `json:"cursor"`
}

// TaskLinkRecord is one task-link and its level.
type TaskLinkRecord struct {
	Level   int             `json:"level"`
	Task    int             `json:"task"`
	Type    link.Type       `json:"type"`
	Index   []int           `json:"index,omitempty"`
	Budget  nal.Budget      `json:"budget"`
	Records []link.Recorded `json:"records,omitempty"`
}

// TermLinkBag is a concept's term-link bag in level order.
type TermLinkBag struct {
	Items  []TermLinkRecord `json:"items,omitempty"`
	Cursor bag.Cursor       `json:"cursor"`
}

// TermLinkRecord is one term-link and its level.
type TermLinkRecord struct {
	Level  int        `json:"level"`
	Target string     `json:"target"`
	Type   link.Type  `json:"type"`
	Index  []int      `json:"index,omitempty"`
	Budget nal.Budget `json:"budget"`
}

// TaskBag is the novel-task bag in level order.
type TaskBag struct {
	Items  []TaskSlot `json:"items,omitempty"`
	Cursor bag.Cursor `json:"cursor"`
}

// TaskSlot is one task and its level.
type TaskSlot struct {
	Level int `json:"level"`
	Task  int `json:"task"`
}

// #endregion schema

// #region save

type taskTable struct {
	index   map[*entity.Task]int
	entries []TaskEntry
}

// add stores t after its parent chain and returns its position.
func (tt *taskTable) add(t *entity.Task) int {
	if i, ok := tt.index[t]; ok {
		return i
	}
	parent := -1
	if t.Parent() != nil {
		parent = tt.add(t.Parent())
	}
	tt.index[t] = len(tt.entries)
	tt.entries = append(tt.entries, TaskEntry{Record: t.Record(), Parent: parent})
	return tt.index[t]
}

// Snapshot captures the core state.
func (r *Reasoner) Snapshot() (Snapshot, error) {
	rngState, err := r.pcg.MarshalBinary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: rng: %w", err)
	}
	tt := &taskTable{index: make(map[*entity.Task]int)}
	s := Snapshot{
		Parameters:   r.params,
		Clock:        r.clock,
		StampSerial:  r.stampSerial,
		Silence:      r.silence,
		RNG:          rngState,
		InputSerials: maps.Clone(r.inputSerials),
	}

	concepts := r.memory.Concepts()
	s.Concepts.Cursor = concepts.Cursor()
	for _, slot := range concepts.Slots() {
		s.Concepts.Items = append(s.Concepts.Items, ConceptSlot{Level: slot.Level, Concept: recordConcept(slot.Item, tt)})
	}
	for _, t := range r.newTasks {
		s.NewTasks = append(s.NewTasks, tt.add(t))
	}
	s.NovelTasks.Cursor = r.novelTasks.Cursor()
	for _, slot := range r.novelTasks.Slots() {
		s.NovelTasks.Items = append(s.NovelTasks.Items, TaskSlot{Level: slot.Level, Task: tt.add(slot.Item)})
	}
	s.Tasks = tt.entries
	return s, nil
}

func recordConcept(c *concept.Concept, tt *taskTable) ConceptRecord {
	rec := ConceptRecord{
		Term:    c.Term().Name(),
		Budget:  *c.Budget(),
		Beliefs: slices.Clone(c.Beliefs()),
	}
	for _, q := range c.Questions() {
		rec.Questions = append(rec.Questions, tt.add(q))
	}
	rec.TaskLinks.Cursor = c.TaskLinks().Cursor()
	for _, slot := range c.TaskLinks().Slots() {
		tl := slot.Item
		rec.TaskLinks.Items = append(rec.TaskLinks.Items, TaskLinkRecord{
			Level:   slot.Level,
			Task:    tt.add(tl.Task()),
			Type:    tl.Type(),
			Index:   tl.Index(),
			Budget:  *tl.Budget(),
			Records: slices.Clone(tl.Records()),
		})
	}
	rec.TermLinks.Cursor = c.TermLinks().Cursor()
	for _, slot := range c.TermLinks().Slots() {
		tl := slot.Item
		rec.TermLinks.Items = append(rec.TermLinks.Items, TermLinkRecord{
			Level:  slot.Level,
			Target: tl.Target().Name(),
			Type:   tl.Type(),
			Index:  tl.Index(),
			Budget: *tl.Budget(),
		})
	}
	return rec
}

// Status captures the snapshot with the engine name.
func (r *Reasoner) Status() (Status, error) {
	s, err := r.Snapshot()
	if err != nil {
		return Status{}, err
	}
	return Status{Engine: r.engine.Name, Terminated: r.terminated, Memory: s}, nil
}

// MarshalTarget encodes the memory or status target as JSON.
func (r *Reasoner) MarshalTarget(target string) ([]byte, error) {
	var v any
	var err error
	switch target {
	case "memory":
		v, err = r.Snapshot()
	case "status":
		v, err = r.Status()
	default:
		return nil, fmt.Errorf("%w %q (valid: memory, status)", ErrUnknownTarget, target)
	}
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", target, err)
	}
	return data, nil
}

// #endregion save

// #region load

// loaded is a fully rebuilt state, swapped in only once every part
// decoded, so a failed load leaves the reasoner untouched.
type loaded struct {
	params       Parameters
	pcg          *rand.PCG
	rng          *rand.Rand
	memory       *memory.Memory
	newTasks     []*entity.Task
	novelTasks   *bag.Bag[*entity.Task]
	clock        int64
	stampSerial  uint64
	silence      int
	inputSerials map[string]uint64
}

// Restore replaces the core state with s. The engine stays attached and
// link templates are re-derived from each concept's term.
func (r *Reasoner) Restore(s Snapshot) error {
	l, err := rebuild(s)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	r.params = l.params
	r.pcg, r.rng = l.pcg, l.rng
	r.memory = l.memory
	r.newTasks = l.newTasks
	r.novelTasks = l.novelTasks
	r.clock = l.clock
	r.stampSerial = l.stampSerial
	r.silence = l.silence
	r.inputSerials = l.inputSerials
	return nil
}

func rebuild(s Snapshot) (*loaded, error) {
	if err := s.Parameters.Validate(); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if s.Silence < 0 || s.Silence > 100 {
		return nil, fmt.Errorf("silence %d out of range", s.Silence)
	}
	// The bags draw their start positions while being built; the saved
	// generator state is applied once they are done.
	pcg := rand.NewPCG(0, 0)
	l := &loaded{
		params:       s.Parameters,
		pcg:          pcg,
		rng:          rand.New(pcg),
		clock:        s.Clock,
		stampSerial:  s.StampSerial,
		silence:      s.Silence,
		inputSerials: maps.Clone(s.InputSerials),
	}
	if l.inputSerials == nil {
		l.inputSerials = make(map[string]uint64)
	}

	tasks := make([]*entity.Task, len(s.Tasks))
	for i, e := range s.Tasks {
		var parent *entity.Task
		if e.Parent >= 0 {
			if e.Parent >= i {
				return nil, fmt.Errorf("task %d: parent %d does not precede it", i, e.Parent)
			}
			parent = tasks[e.Parent]
		}
		tasks[i] = entity.FromRecord(e.Record, parent)
	}
	task := func(i int) (*entity.Task, error) {
		if i < 0 || i >= len(tasks) {
			return nil, fmt.Errorf("task reference %d out of range", i)
		}
		return tasks[i], nil
	}

	cfg := s.Parameters.memoryConfig()
	l.memory = memory.New(cfg, l.rng)
	slots := make([]bag.Slot[*concept.Concept], 0, len(s.Concepts.Items))
	for _, item := range s.Concepts.Items {
		c, err := rebuildConcept(item.Concept, cfg.Concept, l.rng, task)
		if err != nil {
			return nil, err
		}
		slots = append(slots, bag.Slot[*concept.Concept]{Level: item.Level, Item: c})
	}
	if err := l.memory.Restore(slots, s.Concepts.Cursor); err != nil {
		return nil, err
	}

	for _, i := range s.NewTasks {
		t, err := task(i)
		if err != nil {
			return nil, fmt.Errorf("new tasks: %w", err)
		}
		l.newTasks = append(l.newTasks, t)
	}
	l.novelTasks = bag.New[*entity.Task](s.Parameters.NovelTaskBagSize, s.Parameters.NovelTaskBagLevels, s.Parameters.NewTaskForgettingCycle, nil)
	novel := make([]bag.Slot[*entity.Task], 0, len(s.NovelTasks.Items))
	for _, item := range s.NovelTasks.Items {
		t, err := task(item.Task)
		if err != nil {
			return nil, fmt.Errorf("novel tasks: %w", err)
		}
		novel = append(novel, bag.Slot[*entity.Task]{Level: item.Level, Item: t})
	}
	if err := l.novelTasks.Restore(novel, s.NovelTasks.Cursor); err != nil {
		return nil, fmt.Errorf("novel tasks: %w", err)
	}
	if err := pcg.UnmarshalBinary(s.RNG); err != nil {
		return nil, fmt.Errorf("rng: %w", err)
	}
	return l, nil
}

func rebuildConcept(rec ConceptRecord, cfg concept.Config, rng *rand.Rand, task func(int) (*entity.Task, error)) (*concept.Concept, error) {
	t, err := narsese.ParseTerm(rec.Term)
	if err != nil {
		return nil, fmt.Errorf("concept %q: %w", rec.Term, err)
	}
	c := concept.New(t, rec.Budget, cfg, nil)

	var questions []*entity.Task
	for _, i := range rec.Questions {
		q, err := task(i)
		if err != nil {
			return nil, fmt.Errorf("concept %q: questions: %w", rec.Term, err)
		}
		questions = append(questions, q)
	}
	taskLinks := make([]bag.Slot[*link.TaskLink], 0, len(rec.TaskLinks.Items))
	for _, item := range rec.TaskLinks.Items {
		tk, err := task(item.Task)
		if err != nil {
			return nil, fmt.Errorf("concept %q: task-links: %w", rec.Term, err)
		}
		tl := link.RestoreTaskLink(tk, item.Type, item.Index, item.Budget, cfg.TermLinkRecordLen, item.Records)
		taskLinks = append(taskLinks, bag.Slot[*link.TaskLink]{Level: item.Level, Item: tl})
	}
	termLinks := make([]bag.Slot[*link.TermLink], 0, len(rec.TermLinks.Items))
	for _, item := range rec.TermLinks.Items {
		target, err := narsese.ParseTerm(item.Target)
		if err != nil {
			return nil, fmt.Errorf("concept %q: term-link target: %w", rec.Term, err)
		}
		tl := link.RestoreTermLink(target, item.Type, item.Index, item.Budget)
		termLinks = append(termLinks, bag.Slot[*link.TermLink]{Level: item.Level, Item: tl})
	}
	if err := c.Restore(rec.Beliefs, questions, taskLinks, rec.TaskLinks.Cursor, termLinks, rec.TermLinks.Cursor); err != nil {
		return nil, err
	}
	return c, nil
}

// UnmarshalTarget decodes data as the memory or status target and swaps it
// in. Any failure leaves the reasoner unchanged.
func (r *Reasoner) UnmarshalTarget(target string, data []byte) error {
	switch target {
	case "memory":
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal memory: %w", err)
		}
		return r.Restore(s)
	case "status":
		var st Status
		if err := json.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("unmarshal status: %w", err)
		}
		if err := r.Restore(st.Memory); err != nil {
			return err
		}
		r.terminated = st.Terminated
		return nil
	}
	return fmt.Errorf("%w %q (valid: memory, status)", ErrUnknownTarget, target)
}

// #endregion load
