// Package link defines term-link templates, term-links and task-links, and
// the one canonical key function they share.
package link

import (
	"strconv"
	"strings"

	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// #region types

// Type is the link type. The integer values are part of every link key.
type Type int

const (
	Self               Type = 0
	Component          Type = 1
	Compound           Type = 2
	ComponentStatement Type = 3
	CompoundStatement  Type = 4
	ComponentCondition Type = 5
	CompoundCondition  Type = 6
	Transform          Type = 8
)

var typeNames = map[Type]string{
	Self:               "SELF",
	Component:          "COMPONENT",
	Compound:           "COMPOUND",
	ComponentStatement: "COMPONENT_STATEMENT",
	CompoundStatement:  "COMPOUND_STATEMENT",
	ComponentCondition: "COMPONENT_CONDITION",
	CompoundCondition:  "COMPOUND_CONDITION",
	Transform:          "TRANSFORM",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Key builds the canonical link key: a direction marker, "T" and the type,
// the one-based index path, then the target.
//
//	@(T1-1)_bird     _@(T4-2)@<robin --> bird>
func Key(t Type, index []int, target string) string {
	var sb strings.Builder
	if t%2 == 1 {
		sb.WriteString("@(")
	} else {
		sb.WriteString("_@(")
	}
	sb.WriteString("T")
	sb.WriteString(strconv.Itoa(int(t)))
	for _, i := range index {
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	if t%2 == 1 {
		sb.WriteString(")_")
	} else {
		sb.WriteString(")@")
	}
	sb.WriteString(target)
	return sb.String()
}

// #endregion types

// #region term-link

// TermLink points from a concept to a related term.
type TermLink struct {
	target term.Term
	budget nal.Budget
	typ    Type
	index  []int
	key    string
}

// NewTermLink instantiates a template for target. When target is the
// template's own target the link points from the compound to its
// component, so the type steps down by one.
func NewTermLink(target term.Term, tmpl Template, b nal.Budget) *TermLink {
	typ := tmpl.Type
	if tmpl.Target.Equal(target) {
		typ--
	}
	return RestoreTermLink(target, typ, tmpl.Index, b)
}

// RestoreTermLink rebuilds a link from its parts.
func RestoreTermLink(target term.Term, typ Type, index []int, b nal.Budget) *TermLink {
	return &TermLink{target: target, budget: b, typ: typ, index: index, key: Key(typ, index, target.Name())}
}

func (l *TermLink) Key() string         { return l.key }
func (l *TermLink) Budget() *nal.Budget { return &l.budget }
func (l *TermLink) Target() term.Term   { return l.target }
func (l *TermLink) Type() Type          { return l.typ }
func (l *TermLink) Index() []int        { return l.index }

// IndexAt returns step i of the index path, or -1.
func (l *TermLink) IndexAt(i int) int {
	if i < 0 || i >= len(l.index) {
		return -1
	}
	return l.index[i]
}

func (l *TermLink) String() string { return l.budget.Brief() + " " + l.key }

// #endregion term-link

// #region task-link

// Recorded is a term-link key fired with a task-link and when.
type Recorded struct {
	Key  string `json:"key"`
	Time int64  `json:"time"`
}

// TaskLink points from a concept to a task.
type TaskLink struct {
	task      *entity.Task
	budget    nal.Budget
	typ       Type
	index     []int
	key       string
	recordLen int
	records   []Recorded
}

// NewTaskLink links to task through tmpl; a nil template makes a SELF link.
func NewTaskLink(task *entity.Task, tmpl *Template, b nal.Budget, recordLen int) *TaskLink {
	typ, index := Self, []int(nil)
	if tmpl != nil {
		typ, index = tmpl.Type, tmpl.Index
	}
	return RestoreTaskLink(task, typ, index, b, recordLen, nil)
}

// RestoreTaskLink rebuilds a task-link including its novelty record.
func RestoreTaskLink(task *entity.Task, typ Type, index []int, b nal.Budget, recordLen int, records []Recorded) *TaskLink {
	return &TaskLink{
		task:      task,
		budget:    b,
		typ:       typ,
		index:     index,
		key:       Key(typ, index, task.Key()),
		recordLen: recordLen,
		records:   records,
	}
}

func (l *TaskLink) Key() string         { return l.key }
func (l *TaskLink) Budget() *nal.Budget { return &l.budget }
func (l *TaskLink) Task() *entity.Task  { return l.task }
func (l *TaskLink) Type() Type          { return l.typ }
func (l *TaskLink) Index() []int        { return l.index }
func (l *TaskLink) Records() []Recorded { return l.records }

// IndexAt returns step i of the index path, or -1.
func (l *TaskLink) IndexAt(i int) int {
	if i < 0 || i >= len(l.index) {
		return -1
	}
	return l.index[i]
}

// Novel reports whether tl may fire with this task-link at time now. A
// term-link pointing at the task's own content never is; one fired within
// the last recordLen cycles is not either. A novel pairing is recorded.
func (l *TaskLink) Novel(tl *TermLink, now int64) bool {
	if tl.target.Equal(l.task.Sentence().Content()) {
		return false
	}
	for i := range l.records {
		if l.records[i].Key != tl.key {
			continue
		}
		if now < l.records[i].Time+int64(l.recordLen) {
			return false
		}
		l.records[i].Time = now
		return true
	}
	if l.recordLen > 0 && len(l.records) >= l.recordLen {
		l.records = append(l.records[:0:0], l.records[1:]...)
	}
	l.records = append(l.records, Recorded{Key: tl.key, Time: now})
	return true
}

func (l *TaskLink) String() string { return l.budget.Brief() + " " + l.key }

// #endregion task-link
