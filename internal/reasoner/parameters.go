package reasoner

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/danielpatrickdp/narsvm/internal/concept"
	"github.com/danielpatrickdp/narsvm/internal/memory"
	"github.com/danielpatrickdp/narsvm/internal/nal"
)

// DefaultSeed seeds the reasoner's random generator unless overridden.
const DefaultSeed = 0x4E415253

// Parameters is the tunable block. Field names follow the snapshot keys.
type Parameters struct {
	MaximumStampLength         int     `json:"maximum_stamp_length" yaml:"maximum_stamp_length"`
	MaximumBeliefLength        int     `json:"maximum_belief_length" yaml:"maximum_belief_length"`
	MaximumQuestionsLength     int     `json:"maximum_questions_length" yaml:"maximum_questions_length"`
	BudgetThreshold            float64 `json:"budget_threshold" yaml:"budget_threshold"`
	DefaultCreationExpectation float64 `json:"default_creation_expectation" yaml:"default_creation_expectation"`
	DefaultJudgementFrequency  float64 `json:"default_judgement_frequency" yaml:"default_judgement_frequency"`
	DefaultJudgementConfidence float64 `json:"default_judgement_confidence" yaml:"default_judgement_confidence"`
	DefaultJudgementPriority   float64 `json:"default_judgement_priority" yaml:"default_judgement_priority"`
	DefaultJudgementDurability float64 `json:"default_judgement_durability" yaml:"default_judgement_durability"`
	DefaultQuestionPriority    float64 `json:"default_question_priority" yaml:"default_question_priority"`
	DefaultQuestionDurability  float64 `json:"default_question_durability" yaml:"default_question_durability"`
	ConceptBagSize             int     `json:"concept_bag_size" yaml:"concept_bag_size"`
	ConceptBagLevels           int     `json:"concept_bag_levels" yaml:"concept_bag_levels"`
	TaskLinkBagSize            int     `json:"task_link_bag_size" yaml:"task_link_bag_size"`
	TaskLinkBagLevels          int     `json:"task_link_bag_levels" yaml:"task_link_bag_levels"`
	TermLinkBagSize            int     `json:"term_link_bag_size" yaml:"term_link_bag_size"`
	TermLinkBagLevels          int     `json:"term_link_bag_levels" yaml:"term_link_bag_levels"`
	NovelTaskBagSize           int     `json:"novel_task_bag_size" yaml:"novel_task_bag_size"`
	NovelTaskBagLevels         int     `json:"novel_task_bag_levels" yaml:"novel_task_bag_levels"`
	NewTaskForgettingCycle     int     `json:"new_task_forgetting_cycle" yaml:"new_task_forgetting_cycle"`
	ConceptForgettingCycle     int     `json:"concept_forgetting_cycle" yaml:"concept_forgetting_cycle"`
	TaskLinkForgettingCycle    int     `json:"task_link_forgetting_cycle" yaml:"task_link_forgetting_cycle"`
	TermLinkForgettingCycle    int     `json:"term_link_forgetting_cycle" yaml:"term_link_forgetting_cycle"`
	TermLinkRecordLength       int     `json:"term_link_record_length" yaml:"term_link_record_length"`
	MaxMatchedTermLink         int     `json:"max_matched_term_link" yaml:"max_matched_term_link"`
	MaxReasonedTermLink        int     `json:"max_reasoned_term_link" yaml:"max_reasoned_term_link"`
	ConceptInitialPriority     float64 `json:"concept_initial_priority" yaml:"concept_initial_priority"`
	ConceptInitialDurability   float64 `json:"concept_initial_durability" yaml:"concept_initial_durability"`
	ConceptInitialQuality      float64 `json:"concept_initial_quality" yaml:"concept_initial_quality"`
	Seed                       uint64  `json:"seed" yaml:"seed"`
}

// DefaultParameters returns the standard configuration.
func DefaultParameters() Parameters {
	return Parameters{
		MaximumStampLength:         8,
		MaximumBeliefLength:        7,
		MaximumQuestionsLength:     5,
		BudgetThreshold:            0.01,
		DefaultCreationExpectation: 0.66,
		DefaultJudgementFrequency:  1.0,
		DefaultJudgementConfidence: 0.9,
		DefaultJudgementPriority:   0.8,
		DefaultJudgementDurability: 0.5,
		DefaultQuestionPriority:    0.9,
		DefaultQuestionDurability:  0.9,
		ConceptBagSize:             1000,
		ConceptBagLevels:           100,
		TaskLinkBagSize:            20,
		TaskLinkBagLevels:          100,
		TermLinkBagSize:            100,
		TermLinkBagLevels:          100,
		NovelTaskBagSize:           1000,
		NovelTaskBagLevels:         100,
		NewTaskForgettingCycle:     5,
		ConceptForgettingCycle:     10,
		TaskLinkForgettingCycle:    20,
		TermLinkForgettingCycle:    50,
		TermLinkRecordLength:       10,
		MaxMatchedTermLink:         10,
		MaxReasonedTermLink:        3,
		ConceptInitialPriority:     0.01,
		ConceptInitialDurability:   0.01,
		ConceptInitialQuality:      0.01,
		Seed:                       DefaultSeed,
	}
}

// Validate rejects values the reasoner cannot run with.
func (p Parameters) Validate() error {
	var errs []error
	positive := map[string]int{
		"maximum_stamp_length":       p.MaximumStampLength,
		"maximum_belief_length":      p.MaximumBeliefLength,
		"maximum_questions_length":   p.MaximumQuestionsLength,
		"concept_bag_size":           p.ConceptBagSize,
		"concept_bag_levels":         p.ConceptBagLevels,
		"task_link_bag_size":         p.TaskLinkBagSize,
		"task_link_bag_levels":       p.TaskLinkBagLevels,
		"term_link_bag_size":         p.TermLinkBagSize,
		"term_link_bag_levels":       p.TermLinkBagLevels,
		"novel_task_bag_size":        p.NovelTaskBagSize,
		"novel_task_bag_levels":      p.NovelTaskBagLevels,
		"new_task_forgetting_cycle":  p.NewTaskForgettingCycle,
		"concept_forgetting_cycle":   p.ConceptForgettingCycle,
		"task_link_forgetting_cycle": p.TaskLinkForgettingCycle,
		"term_link_forgetting_cycle": p.TermLinkForgettingCycle,
		"max_matched_term_link":      p.MaxMatchedTermLink,
		"max_reasoned_term_link":     p.MaxReasonedTermLink,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] < 1 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, positive[name]))
		}
	}
	unit := map[string]float64{
		"budget_threshold":             p.BudgetThreshold,
		"default_creation_expectation": p.DefaultCreationExpectation,
		"default_judgement_frequency":  p.DefaultJudgementFrequency,
		"default_judgement_confidence": p.DefaultJudgementConfidence,
		"default_judgement_priority":   p.DefaultJudgementPriority,
		"default_judgement_durability": p.DefaultJudgementDurability,
		"default_question_priority":    p.DefaultQuestionPriority,
		"default_question_durability":  p.DefaultQuestionDurability,
		"concept_initial_priority":     p.ConceptInitialPriority,
		"concept_initial_durability":   p.ConceptInitialDurability,
		"concept_initial_quality":      p.ConceptInitialQuality,
	}
	for _, name := range sortedKeys(unit) {
		if v := unit[name]; v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", name, v))
		}
	}
	if p.DefaultJudgementConfidence >= 1 {
		errs = append(errs, errors.New("default_judgement_confidence must be below 1"))
	}
	if p.TermLinkRecordLength < 0 {
		errs = append(errs, fmt.Errorf("term_link_record_length must not be negative, got %d", p.TermLinkRecordLength))
	}
	return errors.Join(errs...)
}

func (p Parameters) threshold() nal.ShortFloat { return nal.SF(p.BudgetThreshold) }

func (p Parameters) memoryConfig() memory.Config {
	return memory.Config{
		BagSize:         p.ConceptBagSize,
		BagLevels:       p.ConceptBagLevels,
		ForgetCycles:    p.ConceptForgettingCycle,
		InitialBudget:   nal.NewBudget(p.ConceptInitialPriority, p.ConceptInitialDurability, p.ConceptInitialQuality),
		BudgetThreshold: p.threshold(),
		Concept: concept.Config{
			MaxBeliefs:        p.MaximumBeliefLength,
			MaxQuestions:      p.MaximumQuestionsLength,
			TaskLinkBagSize:   p.TaskLinkBagSize,
			TaskLinkBagLevels: p.TaskLinkBagLevels,
			TaskLinkForget:    p.TaskLinkForgettingCycle,
			TermLinkBagSize:   p.TermLinkBagSize,
			TermLinkBagLevels: p.TermLinkBagLevels,
			TermLinkForget:    p.TermLinkForgettingCycle,
			TermLinkRecordLen: p.TermLinkRecordLength,
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
