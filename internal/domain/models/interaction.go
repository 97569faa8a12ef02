package models

import (
	"fmt"
)

// PressureInteraction relates exactly two pressures. The pair is stored in
// sorted order and the id is derived from the type plus the sorted pair, so
// identical inputs always produce identical interactions.
type PressureInteraction struct {
	ID                       string          `json:"interaction_id"`
	PressureIDs              []string        `json:"pressures_involved"`
	Type                     InteractionType `json:"interaction_type"`
	InstabilityContribution  float64         `json:"instability_contribution"`
	Confidence               float64         `json:"confidence"`
	Explanation              string          `json:"explanation,omitempty"`
}

// NewPressureInteraction builds a validated interaction between two distinct
// pressures. The caller may pass the pair in any order.
func NewPressureInteraction(
	itype InteractionType,
	pressureA, pressureB string,
	contribution, confidence float64,
	explanation string,
) (PressureInteraction, error) {
	if pressureA == "" || pressureB == "" {
		return PressureInteraction{}, fmt.Errorf("interaction requires two pressure ids")
	}
	if pressureA == pressureB {
		return PressureInteraction{}, fmt.Errorf("interaction requires two distinct pressures, got %q twice", pressureA)
	}
	if pressureA > pressureB {
		pressureA, pressureB = pressureB, pressureA
	}

	var err error
	if contribution, err = unit("instability_contribution", contribution); err != nil {
		return PressureInteraction{}, err
	}
	if confidence, err = unit("confidence", confidence); err != nil {
		return PressureInteraction{}, err
	}

	return PressureInteraction{
		ID:                      fmt.Sprintf("ix_%s_%s_%s", itype, pressureA, pressureB),
		PressureIDs:             []string{pressureA, pressureB},
		Type:                    itype,
		InstabilityContribution: contribution,
		Confidence:              confidence,
		Explanation:             explanation,
	}, nil
}
