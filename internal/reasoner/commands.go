package reasoner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
	"github.com/danielpatrickdp/narsvm/internal/navm"
)

func commentf(format string, args ...any) navm.Output {
	return navm.Comment(fmt.Sprintf(format, args...))
}

// #region execute

// Execute parses and runs one command line. Every failure becomes an ERROR
// output; the reasoner state is unchanged by a rejected command.
func (r *Reasoner) Execute(line string) {
	cmd, err := navm.Parse(line)
	if err != nil {
		if errors.Is(err, navm.ErrEmpty) {
			return
		}
		r.report(navm.Error(err.Error()))
		return
	}
	r.Input(cmd)
}

// Input runs one parsed command.
func (r *Reasoner) Input(cmd navm.Cmd) {
	if r.terminated {
		r.report(navm.Error("reasoner terminated"))
		return
	}
	r.logger.Debug("command", zap.String("verb", string(cmd.Verb)), zap.Int64("clock", r.clock))
	switch cmd.Verb {
	case navm.NSE:
		r.inputNarsese(cmd.Text)
	case navm.CYC:
		r.Cycle(cmd.N)
	case navm.VOL:
		old := r.silence
		r.silence = cmd.N
		r.report(navm.Info(fmt.Sprintf("volume: %d -> %d", old, r.silence)))
	case navm.RES:
		r.reset()
		r.report(navm.Info("reset"))
	case navm.INF:
		text, err := r.inform(cmd.Target)
		if err != nil {
			r.report(navm.Error(err.Error()))
			return
		}
		r.report(navm.Info(text))
	case navm.HLP:
		text, err := help(cmd.Text)
		if err != nil {
			r.report(navm.Error(err.Error()))
			return
		}
		r.report(navm.Info(text))
	case navm.SAV:
		r.save(cmd.Target, cmd.Text)
	case navm.LOA:
		r.load(cmd.Target, cmd.Text)
	case navm.REM:
	case navm.EXI:
		r.terminated = true
		r.report(navm.Output{Type: navm.OutTerminated, Content: cmd.Text})
	default:
		r.report(navm.Error(fmt.Sprintf("%v: %q", navm.ErrUnknownCommand, cmd.Verb)))
	}
}

// #endregion execute

// #region input

// inputNarsese parses a task and queues it as user input.
func (r *Reasoner) inputNarsese(text string) {
	parsed, err := narsese.Parse(text)
	if err != nil {
		r.report(navm.Error(err.Error()))
		return
	}
	task, err := r.inputTask(parsed)
	if err != nil {
		r.report(navm.Error(err.Error()))
		return
	}
	r.report(navm.Output{Type: navm.OutIn, Content: task.String(), Narsese: task.Sentence().Narsese()})
	r.newTasks = append(r.newTasks, task)
}

// inputTask fills in default truth and budget. A judgement repeating an
// earlier input's content and truth within the same reset epoch reuses its
// serial, so the two are recognized as the same evidence.
func (r *Reasoner) inputTask(p narsese.Task) (*entity.Task, error) {
	if !p.Term.CanNameConcept() {
		return nil, fmt.Errorf("input: %s cannot be a task content", p.Term.Name())
	}
	var s entity.Sentence
	var quality nal.ShortFloat
	switch p.Punctuation {
	case narsese.Judgement:
		f, c := r.params.DefaultJudgementFrequency, r.params.DefaultJudgementConfidence
		if len(p.Truth) > 0 {
			f = p.Truth[0]
		}
		if len(p.Truth) > 1 {
			c = p.Truth[1]
		}
		if f < 0 || f > 1 || c <= 0 || c >= 1 {
			return nil, fmt.Errorf("input: truth %%%v;%v%% out of range", f, c)
		}
		truth := nal.NewTruth(f, c, false)
		key := p.Term.Name() + string(p.Punctuation) + " " + truth.String()
		serial, ok := r.inputSerials[key]
		if !ok {
			r.stampSerial++
			serial = r.stampSerial
			r.inputSerials[key] = serial
		}
		s = entity.NewJudgement(p.Term, truth, nal.NewStamp(serial, r.clock))
		quality = nal.TruthToQuality(truth)
	default:
		r.stampSerial++
		s = entity.NewQuestion(p.Term, nal.NewStamp(r.stampSerial, r.clock))
		quality = nal.One
	}

	b := nal.Budget{Q: quality}
	if s.IsJudgement() {
		b.P, b.D = nal.SF(r.params.DefaultJudgementPriority), nal.SF(r.params.DefaultJudgementDurability)
	} else {
		b.P, b.D = nal.SF(r.params.DefaultQuestionPriority), nal.SF(r.params.DefaultQuestionDurability)
	}
	for i, v := range p.Budget {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("input: budget component %v out of range", v)
		}
		switch i {
		case 0:
			b.P = nal.SF(v)
		case 1:
			b.D = nal.SF(v)
		case 2:
			b.Q = nal.SF(v)
		}
	}
	return entity.NewInputTask(s, b), nil
}

// #endregion input

// #region persist

// save encodes target and either echoes it or hands it to storage.
func (r *Reasoner) save(target, path string) {
	data, err := r.MarshalTarget(target)
	if err != nil {
		r.report(navm.Error(err.Error()))
		return
	}
	if path == "" {
		r.report(navm.Output{Type: navm.OutInfo, Content: string(data)})
		return
	}
	if r.storage == nil {
		r.report(navm.Error(fmt.Sprintf("save %s: no storage for path %q", target, path)))
		return
	}
	if err := r.storage.Save(target, path, data); err != nil {
		r.report(navm.Error(fmt.Sprintf("save %s: %v", target, err)))
		return
	}
	r.report(navm.Info(fmt.Sprintf("saved %s to %s", target, path)))
}

// load reads an inline JSON payload or a path resolved through storage.
func (r *Reasoner) load(target, arg string) {
	var data []byte
	switch {
	case strings.HasPrefix(arg, "{"):
		data = []byte(arg)
	case arg == "":
		r.report(navm.Error(fmt.Sprintf("load %s: missing payload", target)))
		return
	case r.storage == nil:
		r.report(navm.Error(fmt.Sprintf("load %s: no storage for path %q", target, arg)))
		return
	default:
		var err error
		data, err = r.storage.Load(target, arg)
		if err != nil {
			r.report(navm.Error(fmt.Sprintf("load %s: %v", target, err)))
			return
		}
	}
	if err := r.UnmarshalTarget(target, data); err != nil {
		r.report(navm.Error(err.Error()))
		return
	}
	r.report(navm.Info(fmt.Sprintf("loaded %s at clock %s", target, strconv.FormatInt(r.clock, 10))))
}

// #endregion persist
