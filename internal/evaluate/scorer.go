package evaluate

import "github.com/dailytarot/tarotpipe/internal/domain/models"

// Weights configures the relative importance of each quality dimension.
// The fixed default sums to 1.0, making the composite a convex combination.
type Weights struct {
	Coverage      float64 `json:"coverage"`
	Coherence     float64 `json:"coherence"`
	Actionability float64 `json:"actionability"`
	Tone          float64 `json:"tone"`
	Length        float64 `json:"length"`
	Disclaimer    float64 `json:"disclaimer"`
}

// DefaultWeights returns the fixed rubric weights.
func DefaultWeights() Weights {
	return Weights{
		Coverage:      0.25,
		Coherence:     0.20,
		Actionability: 0.20,
		Tone:          0.20,
		Length:        0.10,
		Disclaimer:    0.05,
	}
}

// Scorer combines the metric suite into a composite score and a detailed
// per-dimension report.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the fixed default weights.
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// dimensionScores evaluates all six metrics for one example.
func (s *Scorer) dimensionScores(e models.TrainingExample) map[string]float64 {
	return map[string]float64{
		DimensionCoverage:      CardCoverage(e),
		DimensionCoherence:     Coherence(e),
		DimensionActionability: Actionability(e),
		DimensionTone:          ToneAdherence(e),
		DimensionLength:        LengthWindow(e),
		DimensionDisclaimer:    Disclaimer(e),
	}
}

// Score returns the weighted composite for one example.
func (s *Scorer) Score(e models.TrainingExample) float64 {
	d := s.dimensionScores(e)
	return d[DimensionCoverage]*s.weights.Coverage +
		d[DimensionCoherence]*s.weights.Coherence +
		d[DimensionActionability]*s.weights.Actionability +
		d[DimensionTone]*s.weights.Tone +
		d[DimensionLength]*s.weights.Length +
		d[DimensionDisclaimer]*s.weights.Disclaimer
}

// dimensionOrder gives detailed reports and metric results a stable shape.
var dimensionOrder = []string{
	DimensionCoverage,
	DimensionCoherence,
	DimensionActionability,
	DimensionTone,
	DimensionLength,
	DimensionDisclaimer,
}

// Detailed returns the mean of every dimension across the dataset, plus the
// "composite" mean of per-example composites. An empty dataset maps every
// dimension to 0.0 rather than dividing by zero.
func (s *Scorer) Detailed(examples []models.TrainingExample) map[string]float64 {
	report := make(map[string]float64, len(dimensionOrder)+1)
	for _, name := range dimensionOrder {
		report[name] = 0.0
	}
	report[DimensionComposite] = 0.0

	if len(examples) == 0 {
		return report
	}

	for _, example := range examples {
		d := s.dimensionScores(example)
		for _, name := range dimensionOrder {
			report[name] += d[name]
		}
		report[DimensionComposite] += s.Score(example)
	}

	n := float64(len(examples))
	for name := range report {
		report[name] /= n
	}
	return report
}

// Results renders a detailed report as ordered metric results, composite
// last, for recording on an evaluation run.
func (s *Scorer) Results(examples []models.TrainingExample) []models.MetricResult {
	report := s.Detailed(examples)
	results := make([]models.MetricResult, 0, len(dimensionOrder)+1)
	for _, name := range dimensionOrder {
		results = append(results, models.MetricResult{Name: name, Value: report[name]})
	}
	results = append(results, models.MetricResult{Name: DimensionComposite, Value: report[DimensionComposite]})
	return results
}
