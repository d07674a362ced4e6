package tokens

import "fmt"

// Model custom type for our enum
type Model string

// Enum values for Model, ordered by tier
const (
	Tier1 Model = "tier1"
	Tier2 Model = "tier2"
	Tier3 Model = "tier3"
)

// Models in declaration order, used wherever a stable order is needed.
var Models = []Model{Tier1, Tier2, Tier3}

// Per-tier token rate per minute of generated audio.
var rates = map[Model]int{
	Tier1: 10,
	Tier2: 15,
	Tier3: 25,
}

// Per-tier maximum duration in seconds.
var maxDurations = map[Model]int{
	Tier1: 240,
	Tier2: 300,
	Tier3: 480,
}

func (m Model) Valid() bool {
	_, ok := rates[m]
	return ok
}

func (m Model) String() string {
	switch m {
	case Tier1:
		return "Tier 1 (Balanced)"
	case Tier2:
		return "Tier 2 (High Quality)"
	case Tier3:
		return "Tier 3 (Advanced)"
	default:
		return string(m)
	}
}

// Parse converts a user provided string into a Model.
func Parse(s string) (Model, error) {
	m := Model(s)
	if !m.Valid() {
		return "", fmt.Errorf("tokens: unknown model %q", s)
	}
	return m, nil
}

// Cost returns the token cost of generating durationSeconds of audio
// with the given model. Durations are billed in whole minutes, rounded
// up.
func Cost(model Model, durationSeconds int) int {
	minutes := (durationSeconds + 59) / 60
	return rates[model] * minutes
}

// MaxDuration returns the maximum allowed duration in seconds for the
// given model.
func MaxDuration(model Model) int {
	return maxDurations[model]
}

// ValidateDuration checks that durationSeconds is within the bounds of
// the given model.
func ValidateDuration(model Model, durationSeconds int) error {
	if !model.Valid() {
		return fmt.Errorf("tokens: unknown model %q", string(model))
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("tokens: duration must be positive, got %d", durationSeconds)
	}
	if max := maxDurations[model]; durationSeconds > max {
		return fmt.Errorf("tokens: duration %ds exceeds %s limit of %ds", durationSeconds, model, max)
	}
	return nil
}
