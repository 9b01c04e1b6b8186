// Package evaluate scores training examples against a multi-dimensional
// quality rubric.
package evaluate

import (
	"regexp"
	"strings"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// MetricFunc is a pure scoring function mapping one training example to a
// bounded score in [0,1].
type MetricFunc func(models.TrainingExample) float64

// Dimension names, used as metric result names and detailed-report keys.
const (
	DimensionCoverage      = "card_coverage"
	DimensionCoherence     = "coherence"
	DimensionActionability = "actionability"
	DimensionTone          = "tone_adherence"
	DimensionLength        = "length_window"
	DimensionDisclaimer    = "disclaimer"
	DimensionComposite     = "composite"
)

// The keyword lists below are deliberately simple heuristic configuration.
// They are literal data, not derived: changing them changes scores.
var (
	// antonymPairs flag internally contradictory readings when both members
	// of a pair occur in the same reading text.
	antonymPairs = [9][2]string{
		{"positive", "negative"},
		{"hope", "despair"},
		{"gain", "loss"},
		{"success", "failure"},
		{"joy", "sorrow"},
		{"strength", "weakness"},
		{"clarity", "confusion"},
		{"abundance", "scarcity"},
		{"beginning", "ending"},
	}

	questionPattern = regexp.MustCompile(`(?i)\b(what|how|when|where|why|which|who)\b`)

	actionPhrases = []string{
		"consider",
		"reflect on",
		"take a moment",
		"try",
		"notice",
		"write down",
		"ask yourself",
		"set an intention",
		"pay attention",
		"one small step",
	}

	prescriptiveWords = []string{
		"must",
		"should",
		"always",
		"never",
		"have to",
		"need to",
		"ought to",
	}

	supportiveWords = []string{
		"might",
		"could",
		"perhaps",
		"may",
		"consider",
		"possibly",
		"invite",
		"gently",
	}
)

// narrativeText concatenates the reading-level narrative fields.
func narrativeText(e models.TrainingExample) string {
	return e.Overview + " " + e.Synthesis + " " + e.ActionableReflection
}

// fullText extends narrativeText with every per-card breakdown summary.
func fullText(e models.TrainingExample) string {
	var b strings.Builder
	b.WriteString(narrativeText(e))
	for _, breakdown := range e.CardBreakdowns {
		b.WriteString(" ")
		b.WriteString(breakdown.Summary)
	}
	return b.String()
}

func countOccurrences(text string, terms []string) int {
	count := 0
	for _, term := range terms {
		count += strings.Count(text, term)
	}
	return count
}

// CardCoverage scores the fraction of card breakdowns whose card id appears,
// case-insensitively, anywhere in the reading narrative. An example with no
// breakdowns scores 0.0 rather than dividing by zero.
func CardCoverage(e models.TrainingExample) float64 {
	if len(e.CardBreakdowns) == 0 {
		return 0.0
	}
	text := strings.ToLower(narrativeText(e))
	mentioned := 0
	for _, breakdown := range e.CardBreakdowns {
		if strings.Contains(text, strings.ToLower(breakdown.CardID)) {
			mentioned++
		}
	}
	return float64(mentioned) / float64(len(e.CardBreakdowns))
}

// Coherence penalizes 0.2 per antonym pair whose members both occur in the
// case-folded reading text, floored at 0. A reading with no co-occurring
// pair scores 1.0.
func Coherence(e models.TrainingExample) float64 {
	text := strings.ToLower(fullText(e))
	contradictions := 0
	for _, pair := range antonymPairs {
		if strings.Contains(text, pair[0]) && strings.Contains(text, pair[1]) {
			contradictions++
		}
	}
	score := 1.0 - 0.2*float64(contradictions)
	if score < 0 {
		return 0.0
	}
	return score
}

// Actionability checks the actionable reflection for reflective questions
// and action-oriented phrasing: 1.0 with both, 0.7 with one, 0.3 with
// neither.
func Actionability(e models.TrainingExample) float64 {
	text := strings.ToLower(e.ActionableReflection)
	hasQuestion := questionPattern.MatchString(e.ActionableReflection)
	hasAction := false
	for _, phrase := range actionPhrases {
		if strings.Contains(text, phrase) {
			hasAction = true
			break
		}
	}

	switch {
	case hasQuestion && hasAction:
		return 1.0
	case hasQuestion || hasAction:
		return 0.7
	default:
		return 0.3
	}
}

// ToneAdherence weighs prescriptive against supportive wording in the
// reading narrative. Prescriptive-free text scores 1.0 with supportive
// wording present and 0.8 without; otherwise 0.7 when supportive wording
// outnumbers prescriptive, else 0.4.
func ToneAdherence(e models.TrainingExample) float64 {
	text := strings.ToLower(narrativeText(e))
	prescriptive := countOccurrences(text, prescriptiveWords)
	supportive := countOccurrences(text, supportiveWords)

	switch {
	case prescriptive == 0 && supportive >= 1:
		return 1.0
	case prescriptive == 0:
		return 0.8
	case supportive > prescriptive:
		return 0.7
	default:
		return 0.4
	}
}

// LengthWindow estimates tokens as len/4 over the reading narrative and
// scores 1.0 inside the spread-appropriate window, decaying linearly with
// the relative distance past the nearer bound, floored at 0.
func LengthWindow(e models.TrainingExample) float64 {
	tokens := float64(len(narrativeText(e))) / 4.0

	var low, high float64
	switch len(e.CardBreakdowns) {
	case 1:
		low, high = 100, 300
	case 3:
		low, high = 200, 500
	default:
		low, high = 400, 800
	}

	if tokens >= low && tokens <= high {
		return 1.0
	}

	var overshoot, bound float64
	if tokens < low {
		overshoot = low - tokens
		bound = low
	} else {
		overshoot = tokens - high
		bound = high
	}
	score := 1.0 - overshoot/bound
	if score < 0 {
		return 0.0
	}
	return score
}

// Disclaimer scores 1.0 only when both "entertainment" and "advice" appear,
// case-insensitively, in the actionable reflection or overview.
func Disclaimer(e models.TrainingExample) float64 {
	text := strings.ToLower(e.ActionableReflection + " " + e.Overview)
	if strings.Contains(text, "entertainment") && strings.Contains(text, "advice") {
		return 1.0
	}
	return 0.0
}
