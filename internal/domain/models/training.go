package models

// TrainingExample is a reading enriched with resolved feedback, used for
// prompt optimization and evaluation. Derived and immutable: each persistence
// target stores its own serialized copy.
type TrainingExample struct {
	Intent               *string         `json:"intent,omitempty"`
	SpreadType           string          `json:"spread_type"`
	Cards                []CardDraw      `json:"cards"`
	Overview             string          `json:"overview"`
	CardBreakdowns       []CardBreakdown `json:"card_breakdowns"`
	Synthesis            string          `json:"synthesis"`
	ActionableReflection string          `json:"actionable_reflection"`
	Tone                 string          `json:"tone"`
	FeedbackThumb        *int            `json:"feedback_thumb,omitempty"`
	FeedbackRationale    *string         `json:"feedback_rationale,omitempty"`
	PromptVersion        string          `json:"prompt_version"`
}

// NewTrainingExample derives a training example from a reading and the
// winning feedback row, or nil when the reading has none.
func NewTrainingExample(reading Reading, feedback *Feedback) TrainingExample {
	example := TrainingExample{
		Intent:               reading.Intent,
		SpreadType:           reading.SpreadType,
		Cards:                reading.Cards,
		Overview:             reading.Overview,
		CardBreakdowns:       reading.CardBreakdowns,
		Synthesis:            reading.Synthesis,
		ActionableReflection: reading.ActionableReflection,
		Tone:                 reading.Tone,
		PromptVersion:        reading.PromptVersion,
	}
	if feedback != nil {
		thumb := feedback.Thumb
		example.FeedbackThumb = &thumb
		example.FeedbackRationale = feedback.Rationale
	}
	return example
}

// HasFeedback reports whether any feedback row was resolved for this example.
func (e *TrainingExample) HasFeedback() bool {
	return e.FeedbackThumb != nil
}
