package domain

// FitnessLevel is the requester's self-reported experience level.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

// Valid reports whether the level is one of the three known values.
func (l FitnessLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// WorkoutTypes are the category flags that filter generated exercises.
// At least one must be enabled before invoking the analyzer.
type WorkoutTypes struct {
	Strength    bool `json:"strength"`
	Cardio      bool `json:"cardio"`
	Bodyweight  bool `json:"bodyweight"`
	Flexibility bool `json:"flexibility"`
}

// Enabled returns the names of the enabled types, in a fixed order.
func (t WorkoutTypes) Enabled() []string {
	var names []string
	if t.Strength {
		names = append(names, "strength")
	}
	if t.Cardio {
		names = append(names, "cardio")
	}
	if t.Bodyweight {
		names = append(names, "bodyweight")
	}
	if t.Flexibility {
		names = append(names, "flexibility")
	}
	return names
}

// PhaseExercise is a warmup or cooldown entry: duration-based, no sets/reps.
type PhaseExercise struct {
	Name        string `bson:"name" json:"name"`
	Duration    string `bson:"duration" json:"duration"`
	Description string `bson:"description,omitempty" json:"description"`
}

// MainExercise is an entry of the main workout phase. Reps is free text and
// may express a repetition count or a time duration ("12 reps", "30 seconds").
type MainExercise struct {
	Name      string `bson:"name" json:"name"`
	Sets      int    `bson:"sets" json:"sets"`
	Reps      string `bson:"reps" json:"reps"`
	Equipment string `bson:"equipment,omitempty" json:"equipment"`
	Tips      string `bson:"tips,omitempty" json:"tips"`
}

// WorkoutPhases groups the three phases of a generated program. All three
// slices are always present, possibly empty; consumers must not assume
// non-empty.
type WorkoutPhases struct {
	Warmup   []PhaseExercise `bson:"warmup" json:"warmup"`
	Main     []MainExercise  `bson:"main" json:"main"`
	Cooldown []PhaseExercise `bson:"cooldown" json:"cooldown"`
}

// WorkoutPlan is the structured AI-generated workout document: detected
// equipment, three exercise phases, and optional safety notes.
type WorkoutPlan struct {
	Equipment []string      `bson:"equipment" json:"equipment"`
	Workout   WorkoutPhases `bson:"workout" json:"workout"`
	Notes     string        `bson:"notes,omitempty" json:"notes,omitempty"`
}
