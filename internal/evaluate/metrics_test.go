package evaluate

import (
	"math"
	"strings"
	"testing"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

func exampleWithBreakdowns(overview string, cardIDs ...string) models.TrainingExample {
	breakdowns := make([]models.CardBreakdown, len(cardIDs))
	cards := make([]models.CardDraw, len(cardIDs))
	for i, id := range cardIDs {
		cards[i] = models.CardDraw{CardID: id, Orientation: models.OrientationUpright, Position: "p"}
		breakdowns[i] = models.CardBreakdown{CardID: id, Orientation: models.OrientationUpright, Summary: "summary"}
	}
	return models.TrainingExample{
		SpreadType:     models.SpreadThreeCard,
		Cards:          cards,
		Overview:       overview,
		CardBreakdowns: breakdowns,
		PromptVersion:  "v1",
	}
}

func TestCardCoverage_TwoOfThree(t *testing.T) {
	example := exampleWithBreakdowns(
		"The-Fool and the-magician shape this spread.",
		"the-fool", "the-magician", "the-tower",
	)

	got := CardCoverage(example)
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("CardCoverage = %f, want %f", got, want)
	}
}

func TestCardCoverage_EmptyBreakdowns(t *testing.T) {
	example := models.TrainingExample{Overview: "anything at all"}
	if got := CardCoverage(example); got != 0.0 {
		t.Errorf("CardCoverage with no breakdowns = %f, want 0.0", got)
	}
}

func TestCardCoverage_InvariantUnderReordering(t *testing.T) {
	example := exampleWithBreakdowns(
		"the-fool appears beside the-tower.",
		"the-fool", "the-magician", "the-tower",
	)
	original := CardCoverage(example)

	reversed := example
	reversed.CardBreakdowns = []models.CardBreakdown{
		example.CardBreakdowns[2],
		example.CardBreakdowns[0],
		example.CardBreakdowns[1],
	}

	if got := CardCoverage(reversed); got != original {
		t.Errorf("CardCoverage changed under breakdown reordering: %f vs %f", got, original)
	}
}

func TestCardCoverage_ChecksAllNarrativeFields(t *testing.T) {
	example := exampleWithBreakdowns("", "the-fool")
	example.Synthesis = "the-fool ties it together"

	if got := CardCoverage(example); got != 1.0 {
		t.Errorf("CardCoverage over synthesis = %f, want 1.0", got)
	}
}

func TestCoherence_NoContradictions(t *testing.T) {
	example := models.TrainingExample{
		Overview:  "A gentle day of renewal.",
		Synthesis: "Momentum builds quietly.",
	}
	if got := Coherence(example); got != 1.0 {
		t.Errorf("Coherence = %f, want 1.0", got)
	}
}

func TestCoherence_PenalizesPerPair(t *testing.T) {
	example := models.TrainingExample{
		Overview:  "A positive turn hides a negative undertow.",
		Synthesis: "Hope wrestles with despair in this spread.",
	}
	got := Coherence(example)
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("Coherence with 2 contradictions = %f, want 0.6", got)
	}
}

func TestCoherence_ScansBreakdownSummaries(t *testing.T) {
	example := models.TrainingExample{
		Overview: "Strength carries you.",
		CardBreakdowns: []models.CardBreakdown{
			{CardID: "the-tower", Summary: "A moment of weakness passes."},
		},
	}
	got := Coherence(example)
	if math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Coherence over breakdown summaries = %f, want 0.8", got)
	}
}

func TestCoherence_FlooredAtZero(t *testing.T) {
	example := models.TrainingExample{
		Overview: "positive negative hope despair gain loss success failure joy sorrow strength weakness",
	}
	if got := Coherence(example); got != 0.0 {
		t.Errorf("Coherence floor = %f, want 0.0", got)
	}
}

func TestActionability(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		{"question and action", "What feels unfinished? Consider writing it down.", 1.0},
		{"question only", "Where does this leave you standing today, honestly speaking?", 0.7},
		{"action only", "Take a moment before replying to anyone.", 0.7},
		{"neither", "The cards have spoken.", 0.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			example := models.TrainingExample{ActionableReflection: tc.text}
			if got := Actionability(example); got != tc.want {
				t.Errorf("Actionability(%q) = %f, want %f", tc.text, got, tc.want)
			}
		})
	}
}

func TestToneAdherence(t *testing.T) {
	cases := []struct {
		name     string
		overview string
		want     float64
	}{
		{"supportive only", "You might find a gentler path; perhaps today.", 1.0},
		{"neutral", "The river meets the sea.", 0.8},
		{"supportive outweighs prescriptive", "You should rest. You might also walk, could read, perhaps write.", 0.7},
		{"prescriptive", "You must act now. Never hesitate.", 0.4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			example := models.TrainingExample{Overview: tc.overview}
			if got := ToneAdherence(example); got != tc.want {
				t.Errorf("ToneAdherence(%q) = %f, want %f", tc.overview, got, tc.want)
			}
		})
	}
}

func TestLengthWindow_InsideWindow(t *testing.T) {
	// One breakdown: window is [100, 300] estimated tokens, 4 chars/token.
	example := models.TrainingExample{
		Overview:       strings.Repeat("a", 800),
		CardBreakdowns: []models.CardBreakdown{{CardID: "the-fool"}},
	}
	if got := LengthWindow(example); got != 1.0 {
		t.Errorf("LengthWindow inside window = %f, want 1.0", got)
	}
}

func TestLengthWindow_DecaysBelowLowerBound(t *testing.T) {
	// 200 chars ~= 50 tokens against a lower bound of 100: half the bound
	// short, so the score decays to 0.5.
	example := models.TrainingExample{
		Overview:       strings.Repeat("a", 198),
		CardBreakdowns: []models.CardBreakdown{{CardID: "the-fool"}},
	}
	got := LengthWindow(example)
	if math.Abs(got-0.5) > 0.01 {
		t.Errorf("LengthWindow below window = %f, want ~0.5", got)
	}
}

func TestLengthWindow_FlooredAtZero(t *testing.T) {
	// 10 breakdowns: window is [400, 800]; far past the upper bound.
	breakdowns := make([]models.CardBreakdown, 10)
	example := models.TrainingExample{
		Overview:       strings.Repeat("a", 10000),
		CardBreakdowns: breakdowns,
	}
	if got := LengthWindow(example); got != 0.0 {
		t.Errorf("LengthWindow floor = %f, want 0.0", got)
	}
}

func TestLengthWindow_ThreeCardWindow(t *testing.T) {
	example := models.TrainingExample{
		Overview:       strings.Repeat("a", 1200), // 300 tokens
		CardBreakdowns: make([]models.CardBreakdown, 3),
	}
	if got := LengthWindow(example); got != 1.0 {
		t.Errorf("LengthWindow three-card = %f, want 1.0", got)
	}
}

func TestDisclaimer_Present(t *testing.T) {
	example := models.TrainingExample{
		ActionableReflection: "For reflection and entertainment; not medical or financial advice.",
	}
	if got := Disclaimer(example); got != 1.0 {
		t.Errorf("Disclaimer = %f, want 1.0", got)
	}
}

func TestDisclaimer_SplitAcrossFields(t *testing.T) {
	example := models.TrainingExample{
		Overview:             "Offered for entertainment only.",
		ActionableReflection: "This is not professional advice.",
	}
	if got := Disclaimer(example); got != 1.0 {
		t.Errorf("Disclaimer across fields = %f, want 1.0", got)
	}
}

func TestDisclaimer_Absent(t *testing.T) {
	example := models.TrainingExample{
		ActionableReflection: "Take what resonates.",
	}
	if got := Disclaimer(example); got != 0.0 {
		t.Errorf("Disclaimer = %f, want 0.0", got)
	}
}
