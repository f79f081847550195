// Package narsese reads and writes the ASCII surface syntax of Narsese tasks:
// an optional budget, a term, punctuation and an optional truth value.
//
//	$0.8;0.5;0.9$ <robin --> bird>. %1.0;0.9%
package narsese

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("narsese syntax error")

// Punctuation marks.
const (
	Judgement byte = '.'
	Question  byte = '?'
)

// Task is a parsed line. Budget and truth hold only the components written
// in the source; the reasoner fills in defaults for the rest.
type Task struct {
	Budget      []float64
	Term        term.Term
	Punctuation byte
	Truth       []float64
}

// #region parse

// Parse reads one task.
func Parse(input string) (Task, error) {
	p := &parser{src: stripSpace(input)}
	var out Task
	if p.peek() == '$' {
		parts, err := p.values('$')
		if err != nil {
			return Task{}, err
		}
		if len(parts) > 3 {
			return Task{}, p.errorf("budget has %d components", len(parts))
		}
		out.Budget = parts
	}
	t, err := p.term()
	if err != nil {
		return Task{}, err
	}
	out.Term = t
	switch c := p.next(); c {
	case Judgement, Question:
		out.Punctuation = c
	case 0:
		return Task{}, p.errorf("missing punctuation")
	default:
		return Task{}, p.errorf("unsupported punctuation %q", c)
	}
	if p.peek() == '%' {
		if out.Punctuation != Judgement {
			return Task{}, p.errorf("truth value on a question")
		}
		parts, err := p.values('%')
		if err != nil {
			return Task{}, err
		}
		if len(parts) > 2 {
			return Task{}, p.errorf("truth has %d components", len(parts))
		}
		out.Truth = parts
	}
	if !p.done() {
		return Task{}, p.errorf("trailing input %q", p.src[p.pos:])
	}
	return out, nil
}

// ParseTerm reads a bare term.
func ParseTerm(input string) (term.Term, error) {
	p := &parser{src: stripSpace(input)}
	t, err := p.term()
	if err != nil {
		return term.Term{}, err
	}
	if !p.done() {
		return term.Term{}, p.errorf("trailing input %q", p.src[p.pos:])
	}
	return t, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d", ErrSyntax, fmt.Sprintf(format, args...), p.pos)
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) next() byte {
	c := p.peek()
	if c != 0 {
		p.pos++
	}
	return c
}

func (p *parser) expect(c byte) error {
	if got := p.next(); got != c {
		return p.errorf("expected %q, got %q", c, got)
	}
	return nil
}

// values reads delimited numbers such as $0.8;0.5$ or %1.0;0.9%.
func (p *parser) values(delim byte) ([]float64, error) {
	if err := p.expect(delim); err != nil {
		return nil, err
	}
	end := strings.IndexByte(p.src[p.pos:], delim)
	if end < 0 {
		return nil, p.errorf("unterminated %q", delim)
	}
	body := p.src[p.pos : p.pos+end]
	var out []float64
	for _, field := range strings.Split(body, ";") {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || v < 0 || v > 1 {
			return nil, p.errorf("bad value %q", field)
		}
		out = append(out, v)
	}
	p.pos += end + 1
	return out, nil
}

func (p *parser) term() (term.Term, error) {
	switch c := p.peek(); c {
	case '<':
		return p.statement()
	case '(':
		return p.compound()
	case '{':
		return p.set('{', '}', term.SetExt)
	case '[':
		return p.set('[', ']', term.SetInt)
	case '$', '#', '?':
		p.pos++
		id := p.word()
		if id == "" {
			return term.Term{}, p.errorf("variable without name")
		}
		return term.Variable(term.VarKind(c), id), nil
	case 0:
		return term.Term{}, p.errorf("unexpected end of input")
	}
	w := p.word()
	switch w {
	case "":
		return term.Term{}, p.errorf("unexpected %q", p.peek())
	case "_":
		return term.Placeholder(), nil
	}
	return term.Word(w), nil
}

func (p *parser) word() string {
	start := p.pos
	for !p.done() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

var copulas = []string{"-->", "<->", "==>", "<=>", "{--", "--]", "{-]"}

func (p *parser) statement() (term.Term, error) {
	if err := p.expect('<'); err != nil {
		return term.Term{}, err
	}
	subject, err := p.term()
	if err != nil {
		return term.Term{}, err
	}
	copula := ""
	for _, c := range copulas {
		if strings.HasPrefix(p.src[p.pos:], c) {
			copula = c
			break
		}
	}
	if copula == "" {
		return term.Term{}, p.errorf("expected copula")
	}
	p.pos += len(copula)
	predicate, err := p.term()
	if err != nil {
		return term.Term{}, err
	}
	if err := p.expect('>'); err != nil {
		return term.Term{}, err
	}
	return p.build(func() (term.Term, error) { return desugar(copula, subject, predicate) })
}

// desugar rewrites the instance and property copulas onto inheritance.
func desugar(copula string, s, p term.Term) (term.Term, error) {
	var err error
	switch copula {
	case "{--":
		if s, err = term.NewCompound(term.SetExt, s); err != nil {
			return term.Term{}, err
		}
		return term.Statement(term.Inheritance, s, p)
	case "--]":
		if p, err = term.NewCompound(term.SetInt, p); err != nil {
			return term.Term{}, err
		}
		return term.Statement(term.Inheritance, s, p)
	case "{-]":
		if s, err = term.NewCompound(term.SetExt, s); err != nil {
			return term.Term{}, err
		}
		if p, err = term.NewCompound(term.SetInt, p); err != nil {
			return term.Term{}, err
		}
		return term.Statement(term.Inheritance, s, p)
	}
	return term.Statement(term.Connector(copula), s, p)
}

var connectors = []term.Connector{
	term.Conjunction, term.Disjunction, term.Negation,
	term.Product, term.ImageExt, term.ImageInt,
	term.IntersectionExt, term.IntersectionInt,
	term.DifferenceExt, term.DifferenceInt,
}

func (p *parser) compound() (term.Term, error) {
	if err := p.expect('('); err != nil {
		return term.Term{}, err
	}
	var conn term.Connector
	for _, c := range connectors {
		if strings.HasPrefix(p.src[p.pos:], string(c)+",") {
			conn = c
			break
		}
	}
	if conn == "" {
		return term.Term{}, p.errorf("expected connector")
	}
	p.pos += len(conn) + 1
	comps, err := p.list(')')
	if err != nil {
		return term.Term{}, err
	}
	return p.build(func() (term.Term, error) { return term.NewCompound(conn, comps...) })
}

func (p *parser) set(open, close byte, conn term.Connector) (term.Term, error) {
	if err := p.expect(open); err != nil {
		return term.Term{}, err
	}
	comps, err := p.list(close)
	if err != nil {
		return term.Term{}, err
	}
	return p.build(func() (term.Term, error) { return term.NewCompound(conn, comps...) })
}

func (p *parser) list(close byte) ([]term.Term, error) {
	var comps []term.Term
	for {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		comps = append(comps, t)
		switch c := p.next(); c {
		case ',':
			continue
		case close:
			return comps, nil
		default:
			return nil, p.errorf("expected ',' or %q, got %q", close, c)
		}
	}
}

func (p *parser) build(f func() (term.Term, error)) (term.Term, error) {
	t, err := f()
	if err != nil {
		return term.Term{}, fmt.Errorf("%w: %v at %d", ErrSyntax, err, p.pos)
	}
	return t, nil
}

// #endregion parse

// #region format

// Format renders a task the way Parse reads it. Budget and truth are
// written in full when present.
func Format(t term.Term, punctuation byte, truth *nal.Truth, budget *nal.Budget) string {
	var sb strings.Builder
	if budget != nil {
		sb.WriteString(budget.String())
		sb.WriteString(" ")
	}
	sb.WriteString(t.Name())
	sb.WriteByte(punctuation)
	if truth != nil {
		sb.WriteString(" ")
		sb.WriteString(truth.String())
	}
	return sb.String()
}

// #endregion format
