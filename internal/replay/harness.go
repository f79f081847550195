// Package replay runs recorded command transcripts against a fresh session
// and compares the outputs with the expected ones.
package replay

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/eval"
	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/runtime"
)

// #region types

// LineResult is the outcome of one replayed command line.
type LineResult struct {
	Index   int
	Command string
	Outputs []navm.Output
	Eval    *eval.EvalResult
}

// Mismatch is an expectation no output satisfied.
type Mismatch struct {
	Expectation Expectation
	Command     string
	Reason      string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalLines        int
	TotalOutputs      int
	ByType            map[navm.OutputType]int
	Mismatches        int
	InvariantFailures int
}

// #endregion types

// #region replay

// Replay runs every line of f through a fresh session. It fails only when
// the session cannot be built; command errors are ordinary ERROR outputs.
func Replay(f *Fixture, logger *zap.Logger) ([]LineResult, error) {
	params, err := f.ReplayParameters()
	if err != nil {
		return nil, err
	}
	opts := runtime.Options{Logger: logger}
	if f.CheckInvariants {
		opts.Harness = eval.NewEvalHarness(eval.DefaultEvalConfig())
	}
	s, err := runtime.New(params, f.Engine, opts)
	if err != nil {
		return nil, fmt.Errorf("replay %q: %w", f.Description, err)
	}

	results := make([]LineResult, 0, len(f.Lines))
	for i, line := range f.Lines {
		res := s.Execute(line)
		results = append(results, LineResult{
			Index:   i,
			Command: line,
			Outputs: res.Outputs,
			Eval:    res.Eval,
		})
	}
	return results, nil
}

// #endregion replay

// #region compare

// Compare checks each expectation against the outputs of its line.
func Compare(results []LineResult, expected []Expectation) []Mismatch {
	cursor := make(map[int]int)
	var mismatches []Mismatch
	for _, want := range expected {
		if want.Line < 0 || want.Line >= len(results) {
			mismatches = append(mismatches, Mismatch{
				Expectation: want,
				Reason:      fmt.Sprintf("line %d was not replayed", want.Line),
			})
			continue
		}
		res := results[want.Line]
		found := -1
		for j := cursor[want.Line]; j < len(res.Outputs); j++ {
			if matches(res.Outputs[j], want) {
				found = j
				break
			}
		}
		if found < 0 {
			mismatches = append(mismatches, Mismatch{
				Expectation: want,
				Command:     res.Command,
				Reason:      describeMiss(res.Outputs[min(cursor[want.Line], len(res.Outputs)):], want),
			})
			continue
		}
		cursor[want.Line] = found + 1
	}
	return mismatches
}

func matches(o navm.Output, want Expectation) bool {
	return o.Type == want.Type &&
		strings.HasPrefix(o.Content, want.ContentPrefix) &&
		strings.HasPrefix(o.Narsese, want.NarsesePrefix)
}

func describeMiss(outs []navm.Output, want Expectation) string {
	prefix := want.ContentPrefix
	if want.NarsesePrefix != "" {
		prefix = want.NarsesePrefix
	}
	sameType := 0
	for _, o := range outs {
		if o.Type == want.Type {
			sameType++
		}
	}
	if sameType == 0 {
		return fmt.Sprintf("no %s output among %d", want.Type, len(outs))
	}
	return fmt.Sprintf("none of %d %s outputs starts with %q", sameType, want.Type, prefix)
}

// #endregion compare

// #region summarize

// Summarize computes aggregate stats from replay results.
func Summarize(results []LineResult, mismatches []Mismatch) ReplaySummary {
	s := ReplaySummary{
		TotalLines: len(results),
		ByType:     make(map[navm.OutputType]int),
		Mismatches: len(mismatches),
	}
	for _, r := range results {
		s.TotalOutputs += len(r.Outputs)
		for _, o := range r.Outputs {
			s.ByType[o.Type]++
		}
		if r.Eval != nil && !r.Eval.Passed {
			s.InvariantFailures++
		}
	}
	return s
}

// #endregion summarize
