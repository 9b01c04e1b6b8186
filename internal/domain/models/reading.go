package models

import (
	"strings"
	"time"

	"github.com/dailytarot/tarotpipe/internal/domain"
)

// Card orientations
const (
	OrientationUpright  = "upright"
	OrientationReversed = "reversed"
)

// Spread types
const (
	SpreadSingle      = "single"
	SpreadThreeCard   = "three-card"
	SpreadCelticCross = "celtic-cross"
)

// CardCountForSpread returns the expected number of drawn cards for a spread.
// Zero means the spread type is unknown.
func CardCountForSpread(spreadType string) int {
	switch spreadType {
	case SpreadSingle:
		return 1
	case SpreadThreeCard:
		return 3
	case SpreadCelticCross:
		return 10
	default:
		return 0
	}
}

// CardDraw identifies one drawn card within a reading
type CardDraw struct {
	CardID      string `json:"card_id"`
	Orientation string `json:"orientation"`
	Position    string `json:"position"`
}

// CardBreakdown is the per-card narrative produced for a reading.
// CardID must match a CardDraw in the same reading.
type CardBreakdown struct {
	CardID      string `json:"card_id"`
	Orientation string `json:"orientation"`
	Summary     string `json:"summary"`
}

// Reading is one LLM-generated tarot interpretation. Readings are created by
// the upstream serving system and are read-only to this pipeline.
type Reading struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	ISODate              string          `json:"iso_date"`
	SpreadType           string          `json:"spread_type"`
	IntegrityTag         string          `json:"integrity_tag"`
	Intent               *string         `json:"intent,omitempty"`
	Cards                []CardDraw      `json:"cards"`
	PromptVersion        string          `json:"prompt_version"`
	Overview             string          `json:"overview"`
	CardBreakdowns       []CardBreakdown `json:"card_breakdowns"`
	Synthesis            string          `json:"synthesis"`
	ActionableReflection string          `json:"actionable_reflection"`
	Tone                 string          `json:"tone"`
	ModelName            string          `json:"model_name"`
	CreatedAt            time.Time       `json:"created_at"`
}

func validOrientation(o string) bool {
	return o == OrientationUpright || o == OrientationReversed
}

// Validate checks the reading payload against the schema invariants.
// Malformed readings are rejected, never coerced.
func (r *Reading) Validate() error {
	if r.ID == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "reading id is empty")
	}
	if r.UserID == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "reading user id is empty")
	}
	if CardCountForSpread(r.SpreadType) == 0 {
		return domain.NewDomainError(domain.ErrInvalidSpreadType, "spread type "+r.SpreadType)
	}
	if len(r.Cards) != len(r.CardBreakdowns) {
		return domain.NewDomainError(domain.ErrCardCountMismatch, "reading "+r.ID)
	}
	drawn := make(map[string]bool, len(r.Cards))
	for _, card := range r.Cards {
		if !validOrientation(card.Orientation) {
			return domain.NewDomainError(domain.ErrInvalidOrientation, "card "+card.CardID)
		}
		drawn[strings.ToLower(card.CardID)] = true
	}
	for _, breakdown := range r.CardBreakdowns {
		if !validOrientation(breakdown.Orientation) {
			return domain.NewDomainError(domain.ErrInvalidOrientation, "breakdown "+breakdown.CardID)
		}
		if !drawn[strings.ToLower(breakdown.CardID)] {
			return domain.NewDomainError(domain.ErrBreakdownCardUnknown, "breakdown "+breakdown.CardID)
		}
	}
	return nil
}
