package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/narsvm/internal/logging"
	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
)

// #region fixture-tests

// TestFixtures replays every fixture under testdata and requires each
// expectation to be met without invariant failures.
func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) < 3 {
		t.Fatalf("expected at least 3 fixtures, found %d", len(paths))
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := LoadFixture(path)
			if err != nil {
				t.Fatalf("LoadFixture: %v", err)
			}
			results, err := Replay(f, nil)
			if err != nil {
				t.Fatalf("Replay: %v", err)
			}
			if len(results) != len(f.Lines) {
				t.Fatalf("expected %d results, got %d", len(f.Lines), len(results))
			}
			for _, m := range Compare(results, f.Expected) {
				t.Errorf("line %d (%s): %s", m.Expectation.Line, m.Command, m.Reason)
			}
			if s := Summarize(results, nil); s.InvariantFailures != 0 {
				t.Errorf("%d commands failed the invariant check", s.InvariantFailures)
			}
		})
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte(`{not valid json`), 0644)

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadFixture_LineOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "range.json")
	os.WriteFile(path, []byte(`{"lines":["HLP"],"expected":[{"line":1,"type":"INFO"}]}`), 0644)

	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for expectation beyond the last line")
	}
}

func TestReplayParameters(t *testing.T) {
	f := &Fixture{Parameters: []byte(`{"novel_task_bag_size": 2, "seed": 7}`)}
	params, err := f.ReplayParameters()
	if err != nil {
		t.Fatalf("ReplayParameters: %v", err)
	}
	want := reasoner.DefaultParameters()
	want.NovelTaskBagSize = 2
	want.Seed = 7
	if params != want {
		t.Errorf("params = %+v, want %+v", params, want)
	}

	f.Parameters = []byte(`{"novel_bag": 2}`)
	if _, err := f.ReplayParameters(); err == nil {
		t.Error("expected error for unknown parameter key")
	}

	empty := &Fixture{}
	if params, err := empty.ReplayParameters(); err != nil || params != reasoner.DefaultParameters() {
		t.Errorf("expected defaults, got %+v, %v", params, err)
	}
}

func TestFromOutputLog(t *testing.T) {
	entries := []logging.OutputEntry{
		{Seq: 0, Command: "NSE <a --> b>.", Type: "IN", Content: "x", Narsese: "<a --> b>. %1.0000;0.9000%"},
		{Seq: 1, Command: "CYC 5", Type: "OUT", Content: "y", Narsese: "<b --> a>. %1.0000;0.4475%"},
		{Seq: 2, Command: "CYC 5", Type: "COMMENT", Content: "z"},
		{Seq: 3, Command: "INF clock", Type: "INFO", Content: "clock: 5"},
	}
	f := FromOutputLog("exported", entries)

	if len(f.Lines) != 3 || f.Lines[1] != "CYC 5" {
		t.Fatalf("unexpected lines %v", f.Lines)
	}
	if len(f.Expected) != 4 {
		t.Fatalf("expected 4 expectations, got %d", len(f.Expected))
	}
	if f.Expected[2].Line != 1 || f.Expected[2].Type != navm.OutComment {
		t.Errorf("unexpected expectation %+v", f.Expected[2])
	}
	if f.Expected[3].ContentPrefix != "clock: 5" {
		t.Errorf("unexpected expectation %+v", f.Expected[3])
	}
}

// #endregion fixture-tests
