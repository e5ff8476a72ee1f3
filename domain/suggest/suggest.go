// Package suggest computes suggested reminder times for a batch from its
// stage, start time and optional target duration. It is pure: no I/O, no
// clock reads, and identical inputs always produce the identical list.
package suggest

import (
	"time"

	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
)

// Type tags a suggestion so the client can render and dedupe it.
type Type string

const (
	TypeMidpointCheck    Type = "midpoint_check"
	TypeStage1Complete   Type = "stage1_complete"
	TypeDailyCheck       Type = "daily_check"
	TypeReadyCheck       Type = "ready_check"
	TypeCarbonationCheck Type = "carbonation_check"
	TypeStage2Complete   Type = "stage2_complete"
	TypeRefrigerate      Type = "refrigerate"
)

// Suggestion is one candidate reminder for user confirmation.
type Suggestion struct {
	Type        Type   `json:"type"`
	SuggestedAt string `json:"suggestedAt"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Fallback offsets for stage one batches without a target duration, and the
// default second-fermentation duration. Policy values, not derived from data.
const (
	stage1DailyCheckHours = 24
	stage1ReadyCheckHours = 48
	stage2DefaultHours    = 24
	refrigerateGraceHours = 2
)

// Reminders computes the suggestion list for a batch. Unrecognized stages
// yield an empty list rather than an error.
func Reminders(stage entities.Stage, startTime time.Time, targetHours *float64) []Suggestion {
	switch stage {
	case entities.StageOneOpen:
		if targetHours != nil {
			d := *targetHours
			return []Suggestion{
				{
					Type:        TypeMidpointCheck,
					SuggestedAt: offsetISO(startTime, d/2),
					Message:     "Halfway there! Give your kefir a taste.",
					Description: "Check the flavor and look for grain growth.",
				},
				{
					Type:        TypeStage1Complete,
					SuggestedAt: offsetISO(startTime, d),
					Message:     "First fermentation should be done.",
					Description: "Strain the grains and bottle, or extend if it tastes too sweet.",
				},
			}
		}
		return []Suggestion{
			{
				Type:        TypeDailyCheck,
				SuggestedAt: offsetISO(startTime, stage1DailyCheckHours),
				Message:     "Daily check on your kefir.",
				Description: "Taste it and note how it is coming along.",
			},
			{
				Type:        TypeReadyCheck,
				SuggestedAt: offsetISO(startTime, stage1ReadyCheckHours),
				Message:     "Your kefir is probably ready.",
				Description: "Most first fermentations finish within 48 hours.",
			},
		}

	case entities.StageTwoBottled:
		d := float64(stage2DefaultHours)
		if targetHours != nil {
			d = *targetHours
		}
		return []Suggestion{
			{
				Type:        TypeCarbonationCheck,
				SuggestedAt: offsetISO(startTime, d/2),
				Message:     "Check the carbonation.",
				Description: "Burp the bottle if pressure is building fast.",
			},
			{
				Type:        TypeStage2Complete,
				SuggestedAt: offsetISO(startTime, d),
				Message:     "Second fermentation should be done.",
				Description: "Taste for fizz and flavor.",
			},
			{
				Type:        TypeRefrigerate,
				SuggestedAt: offsetISO(startTime, d+refrigerateGraceHours),
				Message:     "Move your bottles to the fridge.",
				Description: "Chilling stops fermentation and prevents over-carbonation.",
			},
		}
	}

	return nil
}

// offsetISO adds an hour offset to the start instant and renders it as
// ISO-8601 UTC. The offset goes through whole milliseconds so fractional
// hours land on the same instants regardless of host float behavior.
func offsetISO(start time.Time, hours float64) string {
	ms := int64(hours * 3_600_000)
	return start.Add(time.Duration(ms) * time.Millisecond).UTC().Format(time.RFC3339)
}
