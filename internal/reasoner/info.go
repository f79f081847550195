package reasoner

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/navm"
)

// InfoTargets lists the reports INF can produce.
var InfoTargets = []string{"memory", "concepts", "tasks", "beliefs", "questions", "parameters", "status", "clock", "novel", "new", "links"}

// #region inform

// inform renders the report for target.
func (r *Reasoner) inform(target string) (string, error) {
	var sb strings.Builder
	switch target {
	case "memory":
		fmt.Fprintf(&sb, "memory: %d concepts, %d new tasks, %d novel tasks, clock %d", r.memory.Size(), len(r.newTasks), r.novelTasks.Size(), r.clock)
	case "concepts":
		sb.WriteString("concepts:")
		for _, c := range r.memory.Concepts().Items() {
			fmt.Fprintf(&sb, "\n  %s beliefs=%d questions=%d task-links=%d term-links=%d",
				c, len(c.Beliefs()), len(c.Questions()), c.TaskLinks().Size(), c.TermLinks().Size())
		}
	case "tasks":
		sb.WriteString("tasks:")
		for _, t := range r.Tasks() {
			sb.WriteString("\n  ")
			sb.WriteString(t.String())
		}
	case "beliefs":
		sb.WriteString("beliefs:")
		r.eachConcept(func(c *concept.Concept) {
			for _, b := range c.Beliefs() {
				sb.WriteString("\n  ")
				sb.WriteString(b.String())
			}
		})
	case "questions":
		sb.WriteString("questions:")
		r.eachConcept(func(c *concept.Concept) {
			for _, q := range c.Questions() {
				sb.WriteString("\n  ")
				sb.WriteString(q.String())
				if best := q.BestSolution(); best != nil {
					sb.WriteString(" best: ")
					sb.WriteString(best.Narsese())
				}
			}
		})
	case "parameters":
		data, err := json.MarshalIndent(r.params, "", "  ")
		if err != nil {
			return "", fmt.Errorf("inform parameters: %w", err)
		}
		sb.WriteString("parameters: ")
		sb.Write(data)
	case "status":
		fmt.Fprintf(&sb, "status: engine=%s clock=%d stamp_serial=%d volume=%d concepts=%d new=%d novel=%d terminated=%t",
			r.engine.Name, r.clock, r.stampSerial, r.silence, r.memory.Size(), len(r.newTasks), r.novelTasks.Size(), r.terminated)
	case "clock":
		fmt.Fprintf(&sb, "clock: %d", r.clock)
	case "novel":
		sb.WriteString("novel tasks:")
		for _, t := range r.novelTasks.Items() {
			sb.WriteString("\n  ")
			sb.WriteString(t.String())
		}
	case "new":
		sb.WriteString("new tasks:")
		for _, t := range r.newTasks {
			sb.WriteString("\n  ")
			sb.WriteString(t.String())
		}
	case "links":
		sb.WriteString("links:")
		r.eachConcept(func(c *concept.Concept) {
			fmt.Fprintf(&sb, "\n  %s", c.Key())
			for _, tl := range c.TaskLinks().Items() {
				sb.WriteString("\n    task ")
				sb.WriteString(tl.String())
			}
			for _, tl := range c.TermLinks().Items() {
				sb.WriteString("\n    term ")
				sb.WriteString(tl.String())
			}
		})
	default:
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownTarget, target, strings.Join(InfoTargets, ", "))
	}
	return sb.String(), nil
}

// eachConcept visits concepts in key order so reports are stable.
func (r *Reasoner) eachConcept(fn func(*concept.Concept)) {
	concepts := r.memory.Concepts().Items()
	slices.SortFunc(concepts, func(a, b *concept.Concept) int { return strings.Compare(a.Key(), b.Key()) })
	for _, c := range concepts {
		fn(c)
	}
}

// Tasks lists every task the reasoner holds: queued, novel, questions and
// task-link targets, each once, in a stable order.
func (r *Reasoner) Tasks() []*entity.Task {
	seen := make(map[*entity.Task]struct{})
	var out []*entity.Task
	add := func(t *entity.Task) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range r.newTasks {
		add(t)
	}
	for _, t := range r.novelTasks.Items() {
		add(t)
	}
	r.eachConcept(func(c *concept.Concept) {
		for _, q := range c.Questions() {
			add(q)
		}
		for _, tl := range c.TaskLinks().Items() {
			add(tl.Task())
		}
	})
	return out
}

// #endregion inform

// #region help

var helpTopics = map[navm.Verb]string{
	navm.NSE: "NSE <task>: input a Narsese judgement or question, e.g. NSE <robin --> bird>. %1.0;0.9%",
	navm.CYC: "CYC <n>: run n work cycles; a bare number does the same",
	navm.VOL: "VOL <0..100>: set the silence level; derived tasks quieter than it are not reported",
	navm.RES: "RES: reset memory, queues, clock, stamp serial and random generator",
	navm.INF: "INF <target>: report on " + strings.Join(InfoTargets, ", "),
	navm.HLP: "HLP [command]: list commands or describe one",
	navm.SAV: "SAV <memory|status> [path]: save as JSON; without a path the JSON is echoed",
	navm.LOA: "LOA <memory|status> <json|path>: replace the state from inline JSON or a saved path",
	navm.REM: "REM <text>: a comment, ignored",
	navm.EXI: "EXI [reason]: terminate the reasoner",
}

// help renders the command list or one command's description.
func help(topic string) (string, error) {
	if topic == "" {
		var sb strings.Builder
		sb.WriteString("commands:")
		for _, v := range navm.Verbs {
			sb.WriteString("\n  ")
			sb.WriteString(helpTopics[v])
		}
		return sb.String(), nil
	}
	if text, ok := helpTopics[navm.Verb(strings.ToUpper(topic))]; ok {
		return text, nil
	}
	names := make([]string, len(navm.Verbs))
	for i, v := range navm.Verbs {
		names[i] = string(v)
	}
	return "", fmt.Errorf("no help for %q (topics: %s)", topic, strings.Join(names, ", "))
}

// #endregion help
