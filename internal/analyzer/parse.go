package analyzer

import (
	"alcyxob/snapfit/internal/domain"
	"encoding/json"
	"fmt"
	"strings"
)

// rawPlan mirrors the expected response shape with pointers, so absent
// structural keys are distinguishable from empty arrays.
type rawPlan struct {
	Equipment []string `json:"equipment"`
	Workout   *struct {
		Warmup   *[]domain.PhaseExercise `json:"warmup"`
		Main     *[]domain.MainExercise  `json:"main"`
		Cooldown *[]domain.PhaseExercise `json:"cooldown"`
	} `json:"workout"`
	Notes string `json:"notes"`
}

// ParsePlan validates the model's text payload into a fully-typed plan.
// The payload must be a single JSON object, optionally wrapped in markdown
// code fences (models add them despite instructions). Any deviation is a
// parse error, never a coercion: the result is either a complete plan or
// ErrAnalysisFailed.
func ParsePlan(payload string) (*domain.WorkoutPlan, error) {
	cleaned := stripCodeFences(payload)

	var raw rawPlan
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrAnalysisFailed, err)
	}

	if raw.Workout == nil {
		return nil, fmt.Errorf("%w: response missing 'workout' object", ErrAnalysisFailed)
	}
	if raw.Workout.Warmup == nil || raw.Workout.Main == nil || raw.Workout.Cooldown == nil {
		return nil, fmt.Errorf("%w: response missing a workout phase array", ErrAnalysisFailed)
	}

	plan := &domain.WorkoutPlan{
		Equipment: raw.Equipment,
		Workout: domain.WorkoutPhases{
			Warmup:   *raw.Workout.Warmup,
			Main:     *raw.Workout.Main,
			Cooldown: *raw.Workout.Cooldown,
		},
		Notes: raw.Notes,
	}
	// Equipment may legitimately be absent; the phases may not.
	if plan.Equipment == nil {
		plan.Equipment = []string{}
	}
	return plan, nil
}

// stripCodeFences removes surrounding ```json / ``` markers and whitespace.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
