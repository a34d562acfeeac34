package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHistoryEntry is a saved, owned workout plan. The share code is
// generated exactly once at creation time when the entry is public, and is
// immutable thereafter.
type WorkoutHistoryEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	Duration      int                `bson:"duration" json:"duration"` // requested length, minutes
	FitnessLevel  FitnessLevel       `bson:"fitnessLevel" json:"fitnessLevel"`
	Equipment     []string           `bson:"equipment" json:"equipment"`
	ExerciseCount int                `bson:"exercisesCount" json:"exercisesCount"` // len(plan.Workout.Main)
	Plan          WorkoutPlan        `bson:"plan" json:"plan"`
	IsPublic      bool               `bson:"isPublic" json:"isPublic"`
	ShareCode     string             `bson:"shareCode,omitempty" json:"shareCode,omitempty"` // set iff public
	PhotoKeys     []string           `bson:"photoKeys,omitempty" json:"-"`                   // archived environment photos
}

// SharedWorkout links a history entry to a recipient user. Append-only:
// shares are never updated or deleted.
type SharedWorkout struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	SharedBy   primitive.ObjectID `bson:"sharedBy" json:"sharedBy"`
	SharedWith primitive.ObjectID `bson:"sharedWith" json:"sharedWith"`
	SharedAt   time.Time          `bson:"sharedAt" json:"sharedAt"`
}

// SharedWorkoutEntry is a history entry joined with the sharer's username,
// as returned by the shared-with-me listing.
type SharedWorkoutEntry struct {
	WorkoutHistoryEntry
	SharedBy string    `json:"sharedBy"`
	SharedAt time.Time `json:"sharedAt"`
}

// PublicWorkout is a history entry resolved through a share code, joined
// with the owner's username.
type PublicWorkout struct {
	WorkoutHistoryEntry
	CreatedBy string `json:"createdBy"`
}

// WorkoutStats aggregates a user's saved workouts. All fields are zero when
// the user has no entries.
type WorkoutStats struct {
	TotalWorkouts  int `bson:"totalWorkouts" json:"totalWorkouts"`
	TotalExercises int `bson:"totalExercises" json:"totalExercises"`
	TotalMinutes   int `bson:"totalMinutes" json:"totalMinutes"`
}
