package entity

import "github.com/danielpatrickdp/narsvm/internal/nal"

// #region task

// Task is a sentence with a budget. Tasks are shared by pointer between
// task-links, queues and child tasks; the sentence never changes, the
// budget and best solution do.
type Task struct {
	sentence     Sentence
	budget       nal.Budget
	parent       *Task
	parentBelief *Sentence
	bestSolution *Sentence
	input        bool
}

// NewInputTask builds a task for a sentence entered by the user.
func NewInputTask(s Sentence, b nal.Budget) *Task {
	return &Task{sentence: s, budget: b, input: true}
}

// NewDerivedTask builds a task derived from parent and, optionally, a belief.
// The parent is fixed at construction.
func NewDerivedTask(s Sentence, b nal.Budget, parent *Task, parentBelief *Sentence) *Task {
	t := &Task{sentence: s, budget: b, parent: parent}
	if parentBelief != nil {
		pb := *parentBelief
		t.parentBelief = &pb
	}
	return t
}

func (t *Task) Sentence() Sentence { return t.sentence }
func (t *Task) Key() string { return t.sentence.Key() }
func (t *Task) Budget() *nal.Budget { return &t.budget }
func (t *Task) Parent() *Task { return t.parent }
func (t *Task) ParentBelief() *Sentence { return t.parentBelief }
func (t *Task) BestSolution() *Sentence { return t.bestSolution }
func (t *Task) IsInput() bool { return t.input }
func (t *Task) IsJudgement() bool { return t.sentence.IsJudgement() }
func (t *Task) IsQuestion() bool { return t.sentence.IsQuestion() }

// IsStructural reports a task derived from a task alone, without a belief.
func (t *Task) IsStructural() bool {
	return t.parent != nil && t.parentBelief == nil
}

// SetBestSolution records a better answer.
func (t *Task) SetBestSolution(s Sentence) {
	t.bestSolution = &s
}

// ParentChainAcyclic walks the parent pointers looking for a repeat.
func (t *Task) ParentChainAcyclic() bool {
	seen := make(map[*Task]struct{})
	for p := t; p != nil; p = p.parent {
		if _, ok := seen[p]; ok {
			return false
		}
		seen[p] = struct{}{}
	}
	return true
}

// String renders budget, sentence and stamp.
func (t *Task) String() string {
	return t.budget.String() + " " + t.sentence.String()
}

// #endregion task

// #region record

// Record is the serialized form of a task. The parent is not part of it;
// snapshots reference parents by position in their task table.
type Record struct {
	Sentence     Sentence   `json:"sentence"`
	Budget       nal.Budget `json:"budget"`
	ParentBelief *Sentence  `json:"parent_belief,omitempty"`
	BestSolution *Sentence  `json:"best_solution,omitempty"`
	Input        bool       `json:"input,omitempty"`
}

// Record snapshots the task.
func (t *Task) Record() Record {
	return Record{
		Sentence:     t.sentence,
		Budget:       t.budget,
		ParentBelief: t.parentBelief,
		BestSolution: t.bestSolution,
		Input:        t.input,
	}
}

// FromRecord rebuilds a task under parent, which may be nil.
func FromRecord(r Record, parent *Task) *Task {
	return &Task{
		sentence:     r.Sentence,
		parent:       parent,
		budget:       r.Budget,
		parentBelief: r.ParentBelief,
		bestSolution: r.BestSolution,
		input:        r.Input,
	}
}

// #endregion record
