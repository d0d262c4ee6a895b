package domain

import "time"

type SuggestionStatus string

const (
	SuggestionStatusSuggested SuggestionStatus = "SUGGESTED"
	SuggestionStatusAccepted  SuggestionStatus = "ACCEPTED"
	SuggestionStatusRejected  SuggestionStatus = "REJECTED"
	SuggestionStatusExpired   SuggestionStatus = "EXPIRED"
)

// SuggestionTTL bounds how long an unanswered suggestion stays actionable.
const SuggestionTTL = 48 * time.Hour

// MatchSuggestion is the engine's output unit: a scored pairing of a route
// and an announcement, ready for persistence and notification fan-out.
// The engine never mutates a suggestion after emission.
type MatchSuggestion struct {
	RouteID                string
	CandidateID            string
	CompatibilityScore     float64 // 0..100, 1 decimal
	DetourKm               float64
	EstimatedDeliveryTime  time.Time
	EstimatedFuelCostDelta float64
	EstimatedPrice         float64
	CapacityUnitsRequired  int
	Status                 SuggestionStatus
	CreatedAt              time.Time
	ExpiresAt              time.Time
}
