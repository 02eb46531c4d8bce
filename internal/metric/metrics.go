package metric

import "github.com/norvik-labs/promptctl/internal/llm"

// Canonical metric names, also used as aggregate score keys.
const (
	NameTone               = "tone"
	NameAcceptanceCriteria = "acceptance_criteria"
	NameStoryFormat        = "format"
	NameCompleteness       = "completeness"
)

// NewTone scores the professionalism and empathy of the generated text
// relative to its source.
func NewTone(provider llm.Provider) Metric {
	return &judgeMetric{
		name:     NameTone,
		provider: provider,
		criteria: "The generated text keeps a professional and empathetic tone toward the person who reported the source issue. It never blames, shames, or dismisses.",
		rubric: []string{
			"Professional register without slang or hostility",
			"Empathy toward the reporter and affected users",
			"Neutral, precise wording",
		},
	}
}

// NewAcceptanceCriteria scores the presence and quality of acceptance
// criteria in the generated text.
func NewAcceptanceCriteria(provider llm.Provider) Metric {
	return &judgeMetric{
		name:     NameAcceptanceCriteria,
		provider: provider,
		criteria: "The generated text contains explicit, testable acceptance criteria covering the behavior described in the source. Each criterion is verifiable and unambiguous.",
		rubric: []string{
			"Acceptance criteria section is present",
			"Criteria are individually testable",
			"Criteria cover the main scenario and obvious edge cases",
		},
	}
}

// NewStoryFormat scores adherence to the user story narrative template.
func NewStoryFormat(provider llm.Provider) Metric {
	return &judgeMetric{
		name:     NameStoryFormat,
		provider: provider,
		criteria: "The generated text follows the user story narrative template: \"As a <role>, I want <goal>, So that <benefit>\". All three clauses are present, in order, with meaningful content.",
		rubric: []string{
			"\"As a\" clause names a concrete role",
			"\"I want\" clause states the goal",
			"\"So that\" clause states the benefit",
		},
	}
}

// NewCompleteness scores technical completeness and context coverage.
func NewCompleteness(provider llm.Provider) Metric {
	return &judgeMetric{
		name:     NameCompleteness,
		provider: provider,
		criteria: "The generated text captures all technical detail and context from the source. Nothing material from the source report is dropped, and enough context is given for a developer to act.",
		rubric: []string{
			"All facts from the source appear in the output",
			"Technical context (components, errors, conditions) preserved",
			"Actionable without re-reading the source",
		},
	}
}

// DefaultRegistry returns the four shipped metrics registered in their
// reporting order.
func DefaultRegistry(provider llm.Provider) *Registry {
	r := NewRegistry()
	r.Register(NewTone(provider))
	r.Register(NewAcceptanceCriteria(provider))
	r.Register(NewStoryFormat(provider))
	r.Register(NewCompleteness(provider))
	return r
}
