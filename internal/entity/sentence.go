// Package entity holds sentences and tasks.
package entity

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/narsvm/internal/nal"
	"github.com/danielpatrickdp/narsvm/internal/narsese"
	"github.com/danielpatrickdp/narsvm/internal/term"
)

// Punctuation tags the sentence kind.
type Punctuation byte

const (
	Judgement Punctuation = Punctuation(narsese.Judgement)
	Question  Punctuation = Punctuation(narsese.Question)
)

// #region sentence

// Sentence is immutable once built. Only judgements carry truth and the
// revisable flag.
type Sentence struct {
	content     term.Term
	punctuation Punctuation
	truth       nal.Truth
	stamp       nal.Stamp
	revisable   bool
}

// NewJudgement normalizes the content's variables and builds a judgement.
// Conjunctions holding dependent variables are not revisable.
func NewJudgement(content term.Term, truth nal.Truth, stamp nal.Stamp) Sentence {
	content = term.Normalize(content)
	return Sentence{
		content:     content,
		punctuation: Judgement,
		truth:       truth,
		stamp:       stamp,
		revisable:   !(content.Is(term.Conjunction) && content.HasDependentVar()),
	}
}

// NewQuestion normalizes the content's variables and builds a question.
func NewQuestion(content term.Term, stamp nal.Stamp) Sentence {
	return Sentence{content: term.Normalize(content), punctuation: Question, stamp: stamp}
}

func (s Sentence) Content() term.Term { return s.content }
func (s Sentence) Punctuation() Punctuation { return s.punctuation }
func (s Sentence) Stamp() nal.Stamp { return s.stamp }
func (s Sentence) Revisable() bool { return s.revisable }
func (s Sentence) IsJudgement() bool { return s.punctuation == Judgement }
func (s Sentence) IsQuestion() bool { return s.punctuation == Question }

// Truth is the zero value for questions.
func (s Sentence) Truth() nal.Truth { return s.truth }

// Key identifies the sentence: content, punctuation and, for judgements,
// the brief truth.
func (s Sentence) Key() string {
	if s.punctuation == Judgement {
		return s.content.Name() + string(s.punctuation) + " " + s.truth.Brief()
	}
	return s.content.Name() + string(s.punctuation)
}

// EquivalentTo reports same content, same truth and same evidence.
func (s Sentence) EquivalentTo(o Sentence) bool {
	return s.content.Equal(o.content) &&
		s.punctuation == o.punctuation &&
		s.truth.Equal(o.truth) &&
		s.stamp.EvidentialEqual(o.stamp)
}

// Narsese renders the sentence without budget.
func (s Sentence) Narsese() string {
	if s.punctuation == Judgement {
		return narsese.Format(s.content, byte(s.punctuation), &s.truth, nil)
	}
	return narsese.Format(s.content, byte(s.punctuation), nil, nil)
}

// String adds the stamp.
func (s Sentence) String() string {
	return s.Narsese() + " " + s.stamp.String()
}

type sentenceJSON struct {
	Content     string     `json:"content"`
	Punctuation string     `json:"punctuation"`
	Truth       *nal.Truth `json:"truth,omitempty"`
	Stamp       nal.Stamp  `json:"stamp"`
	Revisable   bool       `json:"revisable,omitempty"`
}

// MarshalJSON writes the content as Narsese.
func (s Sentence) MarshalJSON() ([]byte, error) {
	out := sentenceJSON{
		Content:     s.content.Name(),
		Punctuation: string(s.punctuation),
		Stamp:       s.stamp,
		Revisable:   s.revisable,
	}
	if s.punctuation == Judgement {
		tv := s.truth
		out.Truth = &tv
	}
	return json.Marshal(out)
}

// UnmarshalJSON reparses the content.
func (s *Sentence) UnmarshalJSON(data []byte) error {
	var raw sentenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := narsese.ParseTerm(raw.Content)
	if err != nil {
		return fmt.Errorf("unmarshal sentence: %w", err)
	}
	if len(raw.Punctuation) != 1 {
		return fmt.Errorf("unmarshal sentence: bad punctuation %q", raw.Punctuation)
	}
	*s = Sentence{
		content:     content,
		punctuation: Punctuation(raw.Punctuation[0]),
		stamp:       raw.Stamp,
		revisable:   raw.Revisable,
	}
	switch s.punctuation {
	case Judgement:
		if raw.Truth == nil {
			return fmt.Errorf("unmarshal sentence: judgement %s without truth", raw.Content)
		}
		s.truth = *raw.Truth
	case Question:
	default:
		return fmt.Errorf("unmarshal sentence: bad punctuation %q", raw.Punctuation)
	}
	return nil
}

// #endregion sentence
