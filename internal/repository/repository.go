package repository

import (
	"alcyxob/snapfit/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound          = RepositoryError("not found")
	ErrDuplicateUsername = RepositoryError("username already taken")
	ErrConflict          = RepositoryError("storage constraint violated")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error
	// Search performs a case-insensitive substring match on usernames and
	// returns at most limit results in storage order (no defined sort).
	Search(ctx context.Context, query string, limit int) ([]domain.UserRef, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiry time.Time) error
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
}

// HistoryRepository defines the interface for saved workout entries and the
// sharing relationships between users.
type HistoryRepository interface {
	// Create persists a new entry. When entry.IsPublic is set, a globally
	// unique share code is generated (retrying on collision) and returned
	// on the stored entry.
	Create(ctx context.Context, entry *domain.WorkoutHistoryEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistoryEntry, error)
	// ListByOwner returns all entries owned by userID, newest first.
	ListByOwner(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error)
	// GetByShareCode resolves a public entry by its (case-normalized) code,
	// joined with the owner's username. Private entries do not resolve.
	GetByShareCode(ctx context.Context, code string) (*domain.PublicWorkout, error)
	// ShareWith inserts a share link. Returns false (no error) on any
	// storage constraint violation, e.g. a duplicate share.
	ShareWith(ctx context.Context, workoutID, fromUserID, toUserID primitive.ObjectID) (bool, error)
	// ListSharedWith returns entries shared with userID, joined with the
	// sharer's username, newest share first.
	ListSharedWith(ctx context.Context, userID primitive.ObjectID) ([]domain.SharedWorkoutEntry, error)
	// Delete removes the entry only when both identifiers match. Deleting
	// a non-owned or non-existent entry is a silent no-op.
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	// Stats aggregates workout count, exercise count and total minutes for
	// a user. Zero values when the user has no entries.
	Stats(ctx context.Context, userID primitive.ObjectID) (domain.WorkoutStats, error)
}
