package reasoner_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/inference"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
)

func newReasoner(t *testing.T, engine reasoner.Engine, tune ...func(*reasoner.Parameters)) *reasoner.Reasoner {
	t.Helper()
	params := reasoner.DefaultParameters()
	for _, fn := range tune {
		fn(&params)
	}
	r, err := reasoner.New(params, engine, nil)
	require.NoError(t, err)
	return r
}

func run(r *reasoner.Reasoner, lines ...string) []navm.Output {
	for _, line := range lines {
		r.Execute(line)
	}
	return r.TakeOutputs()
}

func ofType(outs []navm.Output, typ navm.OutputType) []navm.Output {
	var sel []navm.Output
	for _, o := range outs {
		if o.Type == typ {
			sel = append(sel, o)
		}
	}
	return sel
}

func snapshot(t *testing.T, r *reasoner.Reasoner) string {
	t.Helper()
	data, err := r.MarshalTarget("memory")
	require.NoError(t, err)
	return string(data)
}

func beliefsOf(t *testing.T, r *reasoner.Reasoner, name string) []entity.Sentence {
	t.Helper()
	content, err := narsese.ParseTerm(name)
	require.NoError(t, err)
	c, ok := r.Memory().GetConcept(content)
	require.True(t, ok, "no concept for %s", name)
	return c.Beliefs()
}

// #region commands

func TestExecute_Errors(t *testing.T) {
	r := newReasoner(t, reasoner.Void)
	outs := run(r, "FOO", "NSE <a --> >.", "INF nothing", "HLP nothing", "LOA memory {broken", "SAV memory file:x")
	errs := ofType(outs, navm.OutError)
	require.Len(t, errs, 6)
	assert.Contains(t, errs[0].Content, "NSE, CYC")
	assert.Contains(t, errs[2].Content, "memory, concepts, tasks")
	assert.Contains(t, errs[3].Content, "NSE")
	assert.Equal(t, 0, r.Memory().Size())
	assert.Empty(t, r.NewTasks())
}

func TestExecute_InputDefaults(t *testing.T) {
	r := newReasoner(t, reasoner.Void)
	outs := run(r, "NSE <robin --> bird>.", "NSE $0.3;0.4$ <robin --> bird>? ")
	in := ofType(outs, navm.OutIn)
	require.Len(t, in, 2)
	assert.Equal(t, "<robin --> bird>. %1.0000;0.9000%", in[0].Narsese)
	assert.Equal(t, "<robin --> bird>?", in[1].Narsese)

	tasks := r.NewTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, nal.SF(0.8), tasks[0].Budget().P)
	assert.Equal(t, nal.SF(0.5), tasks[0].Budget().D)
	assert.Equal(t, nal.SF(0.3), tasks[1].Budget().P)
	assert.Equal(t, nal.SF(0.4), tasks[1].Budget().D)
	assert.Equal(t, nal.One, tasks[1].Budget().Q)
	assert.Equal(t, uint64(2), r.StampSerial())
}

func TestExecute_VolumeHelpInfo(t *testing.T) {
	r := newReasoner(t, reasoner.Void)
	outs := run(r, "VOL 40", "HLP", "HLP cyc", "INF clock", "REM nothing happens")
	require.Len(t, outs, 4)
	assert.Equal(t, "volume: 0 -> 40", outs[0].Content)
	assert.Equal(t, 40, r.Silence())
	assert.Contains(t, outs[1].Content, "EXI")
	assert.True(t, strings.HasPrefix(outs[2].Content, "CYC"))
	assert.Equal(t, "clock: 0", outs[3].Content)
}

func TestExecute_Exit(t *testing.T) {
	r := newReasoner(t, reasoner.Void)
	outs := run(r, "EXI done", "CYC 1")
	require.Len(t, outs, 2)
	assert.Equal(t, navm.OutTerminated, outs[0].Type)
	assert.Equal(t, navm.OutError, outs[1].Type)
	assert.True(t, r.Terminated())
	assert.Equal(t, int64(0), r.Clock())
}

func TestEcho_ReportsEachHook(t *testing.T) {
	r := newReasoner(t, reasoner.Echo)
	outs := run(r, "NSE <robin --> bird>.", "CYC 3")
	comments := ofType(outs, navm.OutComment)
	require.NotEmpty(t, comments)
	assert.True(t, strings.HasPrefix(comments[0].Content, "direct: "))
	assert.Equal(t, int64(3), r.Clock())

	transforms := 0
	for _, o := range comments {
		if strings.HasPrefix(o.Content, "transform: ") {
			transforms++
		}
	}
	assert.Positive(t, transforms, "transform hook runs on plain task-links too")
}

// #endregion commands

// #region laws

func TestCycleZero_IsNoOp(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	run(r, "NSE <bird --> animal>.", "NSE <robin --> bird>.", "CYC 3")
	before := snapshot(t, r)
	outs := run(r, "CYC 0")
	assert.Empty(t, outs)
	assert.Empty(t, cmp.Diff(before, snapshot(t, r)))
}

func TestReset_Idempotent(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	run(r, "NSE <bird --> animal>.", "CYC 4", "RES")
	once := snapshot(t, r)
	run(r, "RES")
	assert.Empty(t, cmp.Diff(once, snapshot(t, r)))

	fresh := newReasoner(t, inference.Engine())
	run(fresh, "RES")
	assert.Empty(t, cmp.Diff(once, snapshot(t, fresh)))
}

func TestSaveLoad_SameFutureOutputs(t *testing.T) {
	prefix := []string{"NSE <bird --> animal>.", "NSE <robin --> bird>.", "NSE <(*,robin,worm) --> eat>.", "CYC 6"}
	suffix := []string{"NSE <robin --> animal>?", "CYC 30", "INF tasks", "INF links"}

	a := newReasoner(t, inference.Engine())
	run(a, prefix...)
	saved := run(a, "SAV memory")
	require.Len(t, saved, 1)
	require.Equal(t, navm.OutInfo, saved[0].Type)

	b := newReasoner(t, inference.Engine())
	loaded := run(b, "LOA memory "+saved[0].Content)
	require.Len(t, loaded, 1)
	require.Equal(t, navm.OutInfo, loaded[0].Type, loaded[0].Content)
	assert.Equal(t, a.Clock(), b.Clock())
	require.NoError(t, b.Memory().Check())

	want := run(a, suffix...)
	got := run(b, suffix...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("outputs after load differ (-want +got):\n%s", diff)
	}
}

func TestLoad_FailureLeavesState(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	run(r, "NSE <bird --> animal>.", "CYC 2")
	before := snapshot(t, r)
	outs := run(r, `LOA memory {"parameters":{"concept_bag_size":0}}`)
	require.Len(t, outs, 1)
	assert.Equal(t, navm.OutError, outs[0].Type)
	assert.Empty(t, cmp.Diff(before, snapshot(t, r)))

	// budgets above 1.0 in the payload
	corrupt := regexp.MustCompile(`"p":\d+`).ReplaceAll([]byte(before), []byte(`"p":30000`))
	require.NotEqual(t, before, string(corrupt))
	fresh := newReasoner(t, inference.Engine())
	empty := snapshot(t, fresh)
	require.Error(t, fresh.UnmarshalTarget("memory", corrupt))
	assert.Empty(t, cmp.Diff(empty, snapshot(t, fresh)))
	require.Error(t, r.UnmarshalTarget("memory", corrupt))
	assert.Empty(t, cmp.Diff(before, snapshot(t, r)))
}

func TestStatus_RoundTrip(t *testing.T) {
	a := newReasoner(t, inference.Engine())
	run(a, "NSE <bird --> animal>.", "CYC 2")
	data, err := a.MarshalTarget("status")
	require.NoError(t, err)

	b := newReasoner(t, inference.Engine())
	require.NoError(t, b.UnmarshalTarget("status", data))
	assert.Empty(t, cmp.Diff(snapshot(t, a), snapshot(t, b)))

	_, err = a.MarshalTarget("everything")
	assert.ErrorIs(t, err, reasoner.ErrUnknownTarget)
}

// #endregion laws

// #region scenarios

func TestScenario_Deduction(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	outs := run(r, "RES", "VOL 0", "NSE <bird --> animal>.", "NSE <robin --> bird>.", "CYC 10")

	var derived []navm.Output
	for _, o := range ofType(outs, navm.OutOut) {
		if strings.HasPrefix(o.Narsese, "<robin --> animal>.") {
			derived = append(derived, o)
		}
	}
	require.NotEmpty(t, derived)
	assert.Equal(t, "<robin --> animal>. %1.0000;0.8100%", derived[0].Narsese)
}

func TestScenario_Revision(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	run(r, "RES", "NSE <A --> B>. %1.0;0.9%", "NSE <A --> B>. %0.0;0.9%", "CYC 5")

	var revised *entity.Sentence
	for _, b := range beliefsOf(t, r, "<A --> B>") {
		if f := b.Truth().Frequency(); f > 0 && f < 1 {
			revised = &b
			break
		}
	}
	require.NotNil(t, revised)
	assert.Greater(t, revised.Truth().Confidence(), 0.9)
	assert.ElementsMatch(t, []uint64{1, 2}, revised.Stamp().Base)
}

func TestScenario_SameSerialNoRevision(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	outs := run(r, "RES", "NSE <A --> B>. %1.0;0.9%", "CYC 1", "NSE <A --> B>. %1.0;0.9%", "CYC 5")

	in := ofType(outs, navm.OutIn)
	require.Len(t, in, 2)
	assert.Equal(t, uint64(1), r.StampSerial())

	beliefs := beliefsOf(t, r, "<A --> B>")
	require.Len(t, beliefs, 1)
	assert.Equal(t, 0.9, beliefs[0].Truth().Confidence())

	// Root inputs keep their priority when recognized as duplicates, so the
	// second input is not driven to zero here; only derived duplicates are.
	for _, o := range ofType(outs, navm.OutOut) {
		assert.False(t, strings.HasPrefix(o.Narsese, "<A --> B>."), "unexpected revision %s", o.Narsese)
	}
}

func TestDuplicate_DerivedFromQuestionLosesPriority(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	outs := run(r, "NSE <bird --> animal>.", "NSE <bird --> animal>?", "CYC 1")
	require.NotEmpty(t, ofType(outs, navm.OutAnswer))

	var dup *entity.Task
	for _, task := range r.NewTasks() {
		if task.IsJudgement() && task.Parent() != nil && task.Parent().IsQuestion() &&
			task.Sentence().Content().Name() == "<bird --> animal>" {
			dup = task
			break
		}
	}
	require.NotNil(t, dup, "the answer re-enters as a derived task")
	require.False(t, dup.IsInput())
	require.Positive(t, dup.Budget().P.Float())

	run(r, "CYC 1")
	assert.Equal(t, nal.Zero, dup.Budget().P)
	assert.Len(t, beliefsOf(t, r, "<bird --> animal>"), 1)
}

func TestScenario_QuestionAnswering(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	outs := run(r, "RES", "NSE <bird --> animal>.", "NSE <robin --> bird>.", "CYC 10", "NSE <robin --> animal>?", "CYC 5")

	answers := ofType(outs, navm.OutAnswer)
	require.NotEmpty(t, answers)
	assert.True(t, strings.HasPrefix(answers[0].Narsese, "<robin --> animal>. %1.0000;"), answers[0].Narsese)
}

// spawner derives n novel judgements from the seed input so the novel bag
// receives them all in one direct pass.
func spawner(n int) reasoner.Engine {
	return reasoner.Engine{
		Name: "spawner",
		Direct: func(ctx *reasoner.DirectContext) {
			if ctx.Task().Sentence().Content().Name() != "<seed --> input>" {
				return
			}
			truth := nal.NewTruth(1, 0.9, false)
			for i := range n {
				content, err := narsese.ParseTerm(fmt.Sprintf("<n%d --> m%d>", i, i))
				if err != nil {
					panic(err)
				}
				ctx.SinglePremiseTask(content, entity.Judgement, &truth, nal.NewBudget(0.5, 0.5, 0.5))
			}
		},
	}
}

func TestScenario_NovelOverflow(t *testing.T) {
	for _, tc := range []struct{ injected, overflowed int }{{2, 0}, {3, 1}, {4, 2}} {
		t.Run(fmt.Sprint(tc.injected), func(t *testing.T) {
			r := newReasoner(t, spawner(tc.injected), func(p *reasoner.Parameters) { p.NovelTaskBagSize = 2 })
			outs := run(r, "NSE <seed --> input>.", "CYC 2")
			assert.Len(t, ofType(outs, navm.OutOut), tc.injected)
			n := 0
			for _, o := range ofType(outs, navm.OutComment) {
				if strings.HasPrefix(o.Content, "!!! NovelTasks overflowed: ") {
					n++
				}
			}
			assert.Equal(t, tc.overflowed, n)
		})
	}
}

func TestScenario_Determinism(t *testing.T) {
	transcript := []string{
		"NSE <bird --> animal>.", "NSE <robin --> bird>.", "NSE <bird <-> swan>.",
		"NSE <(*,robin,worm) --> eat>.", "CYC 40", "NSE <swan --> ?x>?", "CYC 20", "INF concepts",
	}
	a := run(newReasoner(t, inference.Engine()), transcript...)
	b := run(newReasoner(t, inference.Engine()), transcript...)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("runs differ (-a +b):\n%s", diff)
	}
}

// #endregion scenarios

// #region invariants

func TestInvariants_HoldAfterRun(t *testing.T) {
	r := newReasoner(t, inference.Engine())
	run(r, "NSE <bird --> animal>.", "NSE <robin --> bird>.", "NSE <bird --> animal>. %0.2;0.8%",
		"NSE <(*,robin,worm) --> eat>.", "NSE <<$x --> bird> ==> <$x --> animal>>.", "CYC 60")
	require.NoError(t, r.Memory().Check())
	require.NoError(t, r.NovelTasks().Check())
	for _, task := range r.Tasks() {
		assert.True(t, task.ParentChainAcyclic(), task.String())
		base := task.Sentence().Stamp().Base
		seen := map[uint64]bool{}
		for _, s := range base {
			assert.False(t, seen[s], "duplicate serial in %s", task)
			seen[s] = true
		}
		assert.LessOrEqual(t, len(base), reasoner.DefaultParameters().MaximumStampLength)
	}
}

// #endregion invariants
