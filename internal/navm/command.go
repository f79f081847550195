// Package navm defines the command lines a reasoner consumes and the tagged
// outputs it produces.
package navm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownCommand is returned for a verb outside the command set.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadArgument is returned when a known verb has malformed arguments.
	ErrBadArgument = errors.New("bad argument")
	// ErrEmpty is returned for a blank line.
	ErrEmpty = errors.New("empty command")
)

// Verb is a three-letter command name.
type Verb string

const (
	NSE Verb = "NSE"
	CYC Verb = "CYC"
	VOL Verb = "VOL"
	RES Verb = "RES"
	INF Verb = "INF"
	HLP Verb = "HLP"
	SAV Verb = "SAV"
	LOA Verb = "LOA"
	REM Verb = "REM"
	EXI Verb = "EXI"
)

// Verbs lists the command set in help order.
var Verbs = []Verb{NSE, CYC, VOL, RES, INF, HLP, SAV, LOA, REM, EXI}

// Cmd is one parsed command. Which fields are set depends on the verb.
type Cmd struct {
	Verb Verb
	// Text is the Narsese of NSE, the topic of HLP, the comment of REM, the
	// reason of EXI and the path or payload of SAV and LOA.
	Text string
	// N is the cycle count of CYC and the level of VOL.
	N int
	// Target is the target of INF, SAV and LOA.
	Target string
}

// #region parse

// Parse reads one command line. A line starting like a Narsese task is
// taken as NSE and a bare number as CYC.
func Parse(line string) (Cmd, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Cmd{}, ErrEmpty
	}
	if strings.ContainsRune("<($[{", rune(line[0])) {
		return Cmd{Verb: NSE, Text: line}, nil
	}
	if n, err := strconv.Atoi(line); err == nil {
		if n < 0 {
			return Cmd{}, fmt.Errorf("%w: negative cycle count %d", ErrBadArgument, n)
		}
		return Cmd{Verb: CYC, N: n}, nil
	}

	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	verb := Verb(strings.ToUpper(head))
	switch verb {
	case NSE:
		if rest == "" {
			return Cmd{}, fmt.Errorf("%w: NSE needs a task", ErrBadArgument)
		}
		return Cmd{Verb: NSE, Text: rest}, nil
	case CYC:
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return Cmd{}, fmt.Errorf("%w: CYC needs a cycle count, got %q", ErrBadArgument, rest)
		}
		return Cmd{Verb: CYC, N: n}, nil
	case VOL:
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 100 {
			return Cmd{}, fmt.Errorf("%w: VOL needs 0..100, got %q", ErrBadArgument, rest)
		}
		return Cmd{Verb: VOL, N: n}, nil
	case RES:
		return Cmd{Verb: RES}, nil
	case INF:
		return Cmd{Verb: INF, Target: strings.ToLower(rest)}, nil
	case HLP:
		return Cmd{Verb: HLP, Text: rest}, nil
	case SAV, LOA:
		target, arg, _ := strings.Cut(rest, " ")
		if target == "" {
			return Cmd{}, fmt.Errorf("%w: %s needs a target", ErrBadArgument, verb)
		}
		return Cmd{Verb: verb, Target: strings.ToLower(target), Text: strings.TrimSpace(arg)}, nil
	case REM:
		return Cmd{Verb: REM, Text: rest}, nil
	case EXI:
		return Cmd{Verb: EXI, Text: rest}, nil
	}
	return Cmd{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownCommand, head, verbList())
}

func verbList() string {
	names := make([]string, len(Verbs))
	for i, v := range Verbs {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// String renders the command the way Parse reads it.
func (c Cmd) String() string {
	switch c.Verb {
	case CYC, VOL:
		return string(c.Verb) + " " + strconv.Itoa(c.N)
	case RES:
		return string(c.Verb)
	case INF:
		return strings.TrimSpace(string(c.Verb) + " " + c.Target)
	case SAV, LOA:
		return strings.TrimSpace(string(c.Verb) + " " + c.Target + " " + c.Text)
	}
	return strings.TrimSpace(string(c.Verb) + " " + c.Text)
}

// #endregion parse
