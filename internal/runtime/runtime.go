// Package runtime wraps a reasoner in a session: it feeds command lines,
// fans the outputs out to channels, and keeps metrics and invariant checks
// current after every command.
package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/eval"
	"github.com/danielpatrickdp/narsvm/internal/inference"
	"github.com/danielpatrickdp/narsvm/internal/metrics"
	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
	"github.com/danielpatrickdp/narsvm/internal/snapshot"
)

// maxLine bounds one command line; LOA with an inline payload can be large.
const maxLine = 64 << 20

// EngineByName returns the engine registered under name.
func EngineByName(name string) (reasoner.Engine, error) {
	switch name {
	case inference.Name, "":
		return inference.Engine(), nil
	case reasoner.Echo.Name:
		return reasoner.Echo, nil
	case reasoner.Void.Name:
		return reasoner.Void, nil
	}
	return reasoner.Engine{}, fmt.Errorf("unknown engine %q", name)
}

// Options are the optional collaborators of a session.
type Options struct {
	Logger  *zap.Logger
	Store   *snapshot.Store
	Metrics *metrics.Metrics
	// Harness, when set, checks invariants after every command.
	Harness  *eval.EvalHarness
	Channels []Channel
}

// Result is what one command produced.
type Result struct {
	Command string
	Outputs []navm.Output
	// Eval is set when a harness is configured.
	Eval *eval.EvalResult
}

// #region session

// Session owns one reasoner. It is not safe for concurrent use.
type Session struct {
	id       string
	r        *reasoner.Reasoner
	logger   *zap.Logger
	store    *snapshot.Store
	metrics  *metrics.Metrics
	harness  *eval.EvalHarness
	channels []Channel
	seq      int
}

// New builds a session around a fresh reasoner.
func New(params reasoner.Parameters, engine string, opts Options) (*Session, error) {
	e, err := EngineByName(engine)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	logger = logger.With(zap.String("session", id))

	r, err := reasoner.New(params, e, logger)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s := &Session{
		id:       id,
		r:        r,
		logger:   logger,
		store:    opts.Store,
		metrics:  opts.Metrics,
		harness:  opts.Harness,
		channels: opts.Channels,
	}
	r.SetStorage(storage{session: s})
	return s, nil
}

func (s *Session) ID() string                   { return s.id }
func (s *Session) Reasoner() *reasoner.Reasoner { return s.r }
func (s *Session) Terminated() bool             { return s.r.Terminated() }

// AddChannel appends an output channel.
func (s *Session) AddChannel(c Channel) {
	s.channels = append(s.channels, c)
}

// #endregion session

// #region execute

// Execute runs one command line and emits its outputs. Channel failures are
// logged and do not stop the remaining channels.
func (s *Session) Execute(line string) Result {
	before := s.r.Clock()
	s.r.Execute(line)
	outs := s.r.TakeOutputs()
	res := Result{Command: line, Outputs: outs}

	for _, o := range outs {
		e := Emission{SessionID: s.id, Seq: s.seq, Clock: s.r.Clock(), Command: line, Output: o}
		s.seq++
		for _, c := range s.channels {
			if err := c.Emit(e); err != nil {
				s.logger.Warn("emit failed", zap.Int("seq", e.Seq), zap.Error(err))
			}
		}
	}

	if s.metrics != nil {
		verb := navm.Verb("invalid")
		if cmd, err := navm.Parse(line); err == nil {
			verb = cmd.Verb
		}
		s.metrics.ObserveCommand(verb, s.r.Clock()-before)
		s.metrics.ObserveOutputs(outs)
		s.metrics.ObserveState(s.r.Memory().Size(), len(s.r.NewTasks()), s.r.NovelTasks().Size())
	}

	if s.harness != nil {
		result := s.harness.Run(s.r)
		res.Eval = &result
		if !result.Passed {
			s.logger.Warn("invariant check failed",
				zap.String("command", line),
				zap.Int64("clock", s.r.Clock()),
				zap.String("reason", result.Reason),
			)
		}
	}

	s.logger.Debug("command",
		zap.String("line", line),
		zap.Int("outputs", len(outs)),
		zap.Int64("clock", s.r.Clock()),
	)
	return res
}

// Run executes every non-blank line of in until it ends, the reasoner
// terminates, or ctx is cancelled.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.Execute(line)
		if s.Terminated() {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// #endregion execute

func zapSnapshot(rec snapshot.Record) []zap.Field {
	return []zap.Field{
		zap.String("snapshot", rec.ID),
		zap.String("target", rec.Target),
		zap.String("label", rec.Label),
		zap.Int64("clock", rec.Clock),
	}
}
