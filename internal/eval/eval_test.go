package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/narsvm/internal/bag"
	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/entity"
	"github.com/danielpatrickdp/narsvm/internal/inference"
	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
)

func runReasoner(t *testing.T, lines ...string) *reasoner.Reasoner {
	t.Helper()
	r, err := reasoner.New(reasoner.DefaultParameters(), inference.Engine(), nil)
	if err != nil {
		t.Fatalf("reasoner.New: %v", err)
	}
	for _, line := range lines {
		r.Execute(line)
	}
	return r
}

func TestEvalPassesOnFreshReasoner(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	result := h.Run(runReasoner(t))

	if !result.Passed {
		t.Fatalf("expected pass on fresh reasoner, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 6 {
		t.Fatalf("expected 6 metrics, got %d", len(result.Metrics))
	}
	if result.Reason != "all checks passed" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestEvalPassesAfterReasoning(t *testing.T) {
	r := runReasoner(t,
		"NSE <bird --> animal>.",
		"NSE <robin --> bird>.",
		"NSE <bird --> animal>. %0.3;0.8%",
		"NSE <(*,robin,worm) --> eat>.",
		"NSE <{tweety} --> (&,bird,[yellow])>.",
		"NSE <robin --> animal>?",
		"CYC 60",
	)
	result := NewEvalHarness(DefaultEvalConfig()).Run(r)
	if !result.Passed {
		t.Fatalf("expected invariants to hold: %s", result.Reason)
	}
	load, ok := result.Metric("concept_load")
	if !ok {
		t.Fatal("expected concept_load metric")
	}
	if load.Value <= 0 || !load.Pass {
		t.Errorf("unexpected load metric %+v", load)
	}
}

func TestEvalStampLimit(t *testing.T) {
	r := runReasoner(t, "NSE <bird --> animal>.", "NSE <robin --> bird>.", "CYC 50")
	config := DefaultEvalConfig()
	config.MaxStampLength = 1
	result := NewEvalHarness(config).Run(r)

	stamps, ok := result.Metric("stamp_bases")
	if !ok {
		t.Fatal("expected stamp_bases metric")
	}
	if stamps.Pass {
		t.Fatal("expected derived tasks with two serials to exceed a cap of 1")
	}
	if result.Passed || !strings.Contains(result.Reason, "stamp_bases") {
		t.Errorf("unexpected result: %s", result.Reason)
	}
}

func TestEvalLoadIsInformational(t *testing.T) {
	r := runReasoner(t, "NSE <bird --> animal>.", "CYC 1")
	config := DefaultEvalConfig()
	config.LoadWarning = 0
	result := NewEvalHarness(config).Run(r)

	if !result.Passed {
		t.Fatalf("load warning must not fail the run: %s", result.Reason)
	}
	load, _ := result.Metric("concept_load")
	if load.Pass {
		t.Error("expected load metric flagged")
	}
}

func TestBeliefTable_DetectsViolations(t *testing.T) {
	content, err := narsese.ParseTerm("<a --> b>")
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	cfg := concept.Config{
		MaxBeliefs: 7, MaxQuestions: 5,
		TaskLinkBagSize: 10, TaskLinkBagLevels: 10, TaskLinkForget: 10,
		TermLinkBagSize: 10, TermLinkBagLevels: 10, TermLinkForget: 10,
	}
	c := concept.New(content, nal.NewBudget(0.5, 0.5, 0.5), cfg, nil)

	weak := entity.NewJudgement(content, nal.NewTruth(1, 0.3, false), nal.NewStamp(1, 0))
	strong := entity.NewJudgement(content, nal.NewTruth(1, 0.9, false), nal.NewStamp(2, 0))
	beliefs := []entity.Sentence{weak, strong, strong}
	if err := c.Restore(beliefs, nil, nil, bag.Cursor{}, nil, bag.Cursor{}); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	problems := beliefTable(c)
	if len(problems) != 2 {
		t.Fatalf("expected rank and duplicate problems, got %v", problems)
	}
}

func TestStampBase(t *testing.T) {
	if p := stampBase(nal.Stamp{Base: []uint64{3, 1, 2}}, 8, "x"); len(p) != 0 {
		t.Errorf("expected clean base, got %v", p)
	}
	if p := stampBase(nal.Stamp{Base: []uint64{3, 1, 3}}, 8, "x"); len(p) != 1 {
		t.Errorf("expected one repeat, got %v", p)
	}
	if p := stampBase(nal.Stamp{Base: []uint64{1, 2, 3}}, 2, "x"); len(p) != 1 {
		t.Errorf("expected length problem, got %v", p)
	}
}

func TestNormalForm_ParsedTermsAreNormal(t *testing.T) {
	for _, s := range []string{
		"(&,c,b,a)",
		"<{z,y} <-> [b,a]>",
		"(&&,<b --> c>,<a --> b>)",
		"<(|,x,w) ==> <(*,b,a) --> r>>",
	} {
		term, err := narsese.ParseTerm(s)
		if err != nil {
			t.Fatalf("ParseTerm(%s): %v", s, err)
		}
		if p := normalForm(term); len(p) != 0 {
			t.Errorf("%s: unexpected problems %v", s, p)
		}
	}
}
