package export

import (
	"alcyxob/snapfit/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		Equipment: []string{"dumbbells", "bench"},
		Workout: domain.WorkoutPhases{
			Warmup: []domain.PhaseExercise{
				{Name: "Jumping Jacks", Duration: "2 minutes", Description: "Steady pace"},
			},
			Main: []domain.MainExercise{
				{Name: "Bench Press", Sets: 3, Reps: "10 reps", Equipment: "bench, dumbbells", Tips: "Feet flat on the floor"},
				{Name: "Plank", Sets: 3, Reps: "45 seconds", Equipment: "floor", Tips: "Neutral spine"},
			},
			Cooldown: []domain.PhaseExercise{
				{Name: "Chest Stretch", Duration: "30 seconds", Description: "Each side"},
			},
		},
		Notes: "Hydrate between sets.",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	exporter := NewPDFExporter()

	data, err := exporter.Render(samplePlan(), 30, domain.LevelBeginner)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderNilPlan(t *testing.T) {
	exporter := NewPDFExporter()
	_, err := exporter.Render(nil, 30, domain.LevelBeginner)
	assert.ErrorIs(t, err, ErrMalformedPlan)
}

func TestRenderMissingMainPhase(t *testing.T) {
	exporter := NewPDFExporter()
	plan := samplePlan()
	plan.Workout.Main = nil

	_, err := exporter.Render(plan, 30, domain.LevelBeginner)
	assert.ErrorIs(t, err, ErrMalformedPlan)
}

func TestRenderToleratesMissingOptionalFields(t *testing.T) {
	exporter := NewPDFExporter()
	plan := &domain.WorkoutPlan{
		Workout: domain.WorkoutPhases{
			Warmup:   []domain.PhaseExercise{{Name: "March in place", Duration: "1 minute"}},
			Main:     []domain.MainExercise{{Name: "Squats", Sets: 3, Reps: "15 reps"}},
			Cooldown: []domain.PhaseExercise{{Name: "Breathe", Duration: "1 minute"}},
		},
	}

	data, err := exporter.Render(plan, 20, domain.LevelAdvanced)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderEmptyPhases(t *testing.T) {
	exporter := NewPDFExporter()
	plan := &domain.WorkoutPlan{
		Equipment: []string{},
		Workout: domain.WorkoutPhases{
			Warmup:   []domain.PhaseExercise{},
			Main:     []domain.MainExercise{},
			Cooldown: []domain.PhaseExercise{},
		},
	}

	// Degenerate but structurally complete documents still render.
	data, err := exporter.Render(plan, 15, domain.LevelIntermediate)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderLongPlanPaginates(t *testing.T) {
	exporter := NewPDFExporter()
	plan := samplePlan()
	for i := 0; i < 60; i++ {
		plan.Workout.Main = append(plan.Workout.Main, domain.MainExercise{
			Name: "Filler Exercise", Sets: 3, Reps: "12 reps", Equipment: "none", Tips: "Keep good form",
		})
	}

	data, err := exporter.Render(plan, 90, domain.LevelAdvanced)
	require.NoError(t, err)
	// A document this long must have broken onto additional pages.
	assert.Greater(t, len(data), 5000)
}
