package optimizer

import (
	"github.com/XiaoConstantine/dspy-go/pkg/core"
)

// ReadingSignature is the dspy signature for one tarot reading: the drawn
// spread goes in, the four narrative fields come out. The instruction text
// attached to this signature is what the optimizer evolves.
func ReadingSignature() core.Signature {
	inputs := []core.InputField{
		{Field: core.NewField("intent")},
		{Field: core.NewField("spread_type")},
		{Field: core.NewField("cards")},
	}
	outputs := []core.OutputField{
		{Field: core.NewField("overview")},
		{Field: core.NewField("card_breakdowns")},
		{Field: core.NewField("synthesis")},
		{Field: core.NewField("actionable_reflection")},
	}
	return core.NewSignature(inputs, outputs)
}
