package mongo

import (
	"alcyxob/snapfit/internal/domain"
	"alcyxob/snapfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	historyCollectionName = "workout_history"
	sharedCollectionName  = "shared_workouts"
)

// Share-code collisions are vanishingly rare (36^8-ish space), but the
// unique index makes them a hard failure, so Create retries a few times.
const maxShareCodeAttempts = 5

// mongoHistoryRepository implements repository.HistoryRepository using
// MongoDB. It also reads the users collection to join usernames into
// shared/public listings.
type mongoHistoryRepository struct {
	history *mongo.Collection
	shared  *mongo.Collection
	users   *mongo.Collection
}

// NewMongoHistoryRepository creates a new history repository.
func NewMongoHistoryRepository(db *mongo.Database) repository.HistoryRepository {
	return &mongoHistoryRepository{
		history: db.Collection(historyCollectionName),
		shared:  db.Collection(sharedCollectionName),
		users:   db.Collection(userCollectionName),
	}
}

// Create inserts a new history entry. For public entries a share code is
// drawn and the insert retried on the (unlikely) unique-index collision.
func (r *mongoHistoryRepository) Create(ctx context.Context, entry *domain.WorkoutHistoryEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("history entry requires userId")
	}

	entry.CreatedAt = time.Now().UTC()
	entry.ExerciseCount = len(entry.Plan.Workout.Main)
	entry.Equipment = entry.Plan.Equipment
	if entry.Equipment == nil {
		entry.Equipment = []string{}
	}

	attempts := 1
	if entry.IsPublic {
		attempts = maxShareCodeAttempts
	} else {
		entry.ShareCode = ""
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if entry.IsPublic {
			entry.ShareCode = domain.NewShareCode()
		}
		entry.ID = primitive.NewObjectID()

		result, err := r.history.InsertOne(ctx, entry)
		if err != nil {
			// The only unique index on this collection is the sparse
			// shareCode index, so a duplicate key means code collision.
			if entry.IsPublic && mongo.IsDuplicateKeyError(err) {
				lastErr = err
				continue
			}
			return primitive.NilObjectID, err
		}

		insertedID, ok := result.InsertedID.(primitive.ObjectID)
		if !ok {
			return primitive.NilObjectID, errors.New("failed to convert inserted entry ID")
		}
		return insertedID, nil
	}

	return primitive.NilObjectID, fmt.Errorf("%w: %v", repository.ErrConflict, lastErr)
}

// GetByID retrieves a single entry regardless of visibility or owner.
func (r *mongoHistoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistoryEntry, error) {
	var entry domain.WorkoutHistoryEntry
	err := r.history.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByOwner returns all entries owned by userID, newest first.
func (r *mongoHistoryRepository) ListByOwner(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.history.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.WorkoutHistoryEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByShareCode resolves a public entry by its normalized code and joins
// the owner's username.
func (r *mongoHistoryRepository) GetByShareCode(ctx context.Context, code string) (*domain.PublicWorkout, error) {
	filter := bson.M{
		"shareCode": domain.NormalizeShareCode(code),
		"isPublic":  true,
	}

	var entry domain.WorkoutHistoryEntry
	err := r.history.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var owner domain.UserRef
	if err := r.users.FindOne(ctx, bson.M{"_id": entry.UserID}).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Orphaned entry; treat the code as unresolvable.
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &domain.PublicWorkout{
		WorkoutHistoryEntry: entry,
		CreatedBy:           owner.Username,
	}, nil
}

// ShareWith inserts a share link. Any constraint violation (duplicate
// share, most likely) reports false without an error, per the contract:
// callers treat false as "not shared, reason unspecified".
func (r *mongoHistoryRepository) ShareWith(ctx context.Context, workoutID, fromUserID, toUserID primitive.ObjectID) (bool, error) {
	share := domain.SharedWorkout{
		ID:         primitive.NewObjectID(),
		WorkoutID:  workoutID,
		SharedBy:   fromUserID,
		SharedWith: toUserID,
		SharedAt:   time.Now().UTC(),
	}

	_, err := r.shared.InsertOne(ctx, share)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListSharedWith returns entries shared with userID, newest share first.
// The join is done with two $in queries and stitched in memory, preserving
// the share order.
func (r *mongoHistoryRepository) ListSharedWith(ctx context.Context, userID primitive.ObjectID) ([]domain.SharedWorkoutEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "sharedAt", Value: -1}})
	cursor, err := r.shared.Find(ctx, bson.M{"sharedWith": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shares []domain.SharedWorkout
	if err = cursor.All(ctx, &shares); err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return []domain.SharedWorkoutEntry{}, nil
	}

	workoutIDs := make([]primitive.ObjectID, 0, len(shares))
	sharerIDs := make([]primitive.ObjectID, 0, len(shares))
	for _, s := range shares {
		workoutIDs = append(workoutIDs, s.WorkoutID)
		sharerIDs = append(sharerIDs, s.SharedBy)
	}

	entryByID, err := r.findEntriesByID(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}
	usernameByID, err := r.findUsernamesByID(ctx, sharerIDs)
	if err != nil {
		return nil, err
	}

	results := []domain.SharedWorkoutEntry{}
	for _, s := range shares {
		entry, ok := entryByID[s.WorkoutID]
		if !ok {
			// Workout deleted by its owner after sharing; skip the link.
			continue
		}
		results = append(results, domain.SharedWorkoutEntry{
			WorkoutHistoryEntry: entry,
			SharedBy:            usernameByID[s.SharedBy],
			SharedAt:            s.SharedAt,
		})
	}
	return results, nil
}

func (r *mongoHistoryRepository) findEntriesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.WorkoutHistoryEntry, error) {
	cursor, err := r.history.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.WorkoutHistoryEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.WorkoutHistoryEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return byID, nil
}

func (r *mongoHistoryRepository) findUsernamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var refs []domain.UserRef
	if err = cursor.All(ctx, &refs); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]string, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref.Username
	}
	return byID, nil
}

// Delete removes an entry when both id and owner match. A non-matching pair
// deletes nothing and reports no error (idempotent delete).
func (r *mongoHistoryRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	_, err := r.history.DeleteOne(ctx, bson.M{"_id": id, "userId": ownerID})
	return err
}

// Stats aggregates count, exercise sum and minute sum for a user's entries.
func (r *mongoHistoryRepository) Stats(ctx context.Context, userID primitive.ObjectID) (domain.WorkoutStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"totalWorkouts":  bson.M{"$sum": 1},
			"totalExercises": bson.M{"$sum": "$exercisesCount"},
			"totalMinutes":   bson.M{"$sum": "$duration"},
		}}},
	}

	cursor, err := r.history.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.WorkoutStats{}, err
	}
	defer cursor.Close(ctx)

	var results []domain.WorkoutStats
	if err = cursor.All(ctx, &results); err != nil {
		return domain.WorkoutStats{}, err
	}
	if len(results) == 0 {
		// No entries: zeroes, never an error.
		return domain.WorkoutStats{}, nil
	}
	return results[0], nil
}

// EnsureHistoryIndexes creates indexes for the workout_history collection.
func EnsureHistoryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Sparse so private entries (no code) don't collide.
			Keys:    bson.D{{Key: "shareCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	// Index creation failure is non-fatal; logged by the caller if needed.
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// EnsureSharedIndexes creates indexes for the shared_workouts collection.
func EnsureSharedIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One share per (workout, recipient) pair.
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "sharedWith", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "sharedWith", Value: 1}, {Key: "sharedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
