package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/narsvm/internal/logging"
	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string `json:"description"`
	Engine      string `json:"engine,omitempty"`
	// Parameters overrides individual keys of the default parameter block.
	Parameters      json.RawMessage `json:"parameters,omitempty"`
	CheckInvariants bool            `json:"check_invariants,omitempty"`
	Lines           []string        `json:"lines"`
	Expected        []Expectation   `json:"expected"`
}

// Expectation asks for an output of Type among those of line Line. Empty
// prefixes match anything. Expectations on the same line are matched in
// order against successive outputs.
type Expectation struct {
	Line          int             `json:"line"`
	Type          navm.OutputType `json:"type"`
	ContentPrefix string          `json:"content_prefix,omitempty"`
	NarsesePrefix string          `json:"narsese_prefix,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, e := range f.Expected {
		if e.Line < 0 || e.Line >= len(f.Lines) {
			return nil, fmt.Errorf("fixture %s: expectation %d refers to line %d of %d", path, i, e.Line, len(f.Lines))
		}
	}
	return &f, nil
}

// ReplayParameters applies the fixture's overrides to the defaults.
func (f *Fixture) ReplayParameters() (reasoner.Parameters, error) {
	params := reasoner.DefaultParameters()
	if len(f.Parameters) == 0 {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewReader(f.Parameters))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		return reasoner.Parameters{}, fmt.Errorf("fixture parameters: %w", err)
	}
	return params, nil
}

// #endregion fixture-loader

// #region export

// FromOutputLog rebuilds a fixture from one recorded session. Each run of
// rows with the same command becomes one line and every row an exact
// expectation. Commands that emitted nothing were never recorded and are
// absent from the result.
func FromOutputLog(description string, entries []logging.OutputEntry) *Fixture {
	f := &Fixture{Description: description, Lines: []string{}, Expected: []Expectation{}}
	for _, e := range entries {
		if len(f.Lines) == 0 || e.Command != f.Lines[len(f.Lines)-1] {
			f.Lines = append(f.Lines, e.Command)
		}
		f.Expected = append(f.Expected, Expectation{
			Line:          len(f.Lines) - 1,
			Type:          navm.OutputType(e.Type),
			ContentPrefix: e.Content,
			NarsesePrefix: e.Narsese,
		})
	}
	return f
}

// #endregion export
