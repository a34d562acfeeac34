package service

import (
	"alcyxob/snapfit/internal/domain"
	"alcyxob/snapfit/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository implementations backing the service tests. They
// mirror the storage-layer contract: unique usernames, owner-scoped
// deletes, share code generation at creation, duplicate shares swallowed.

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrDuplicateUsername
		}
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[id] = &stored
	return id, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) UpdateEmail(_ context.Context, id primitive.ObjectID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email = email
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) Search(_ context.Context, query string, limit int) ([]domain.UserRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(query)
	refs := []domain.UserRef{}
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			refs = append(refs, domain.UserRef{ID: u.ID, Username: u.Username})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Username < refs[j].Username })
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, id primitive.ObjectID, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetToken = token
	u.ResetExpiry = &expiry
	return nil
}

func (r *memUserRepo) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != "" && u.ResetToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) ClearResetToken(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetToken = ""
	u.ResetExpiry = nil
	return nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries map[primitive.ObjectID]*domain.WorkoutHistoryEntry
	shares  []domain.SharedWorkout
	users   *memUserRepo
	seq     int
}

func newMemHistoryRepo(users *memUserRepo) *memHistoryRepo {
	return &memHistoryRepo{
		entries: make(map[primitive.ObjectID]*domain.WorkoutHistoryEntry),
		users:   users,
	}
}

func (r *memHistoryRepo) Create(_ context.Context, entry *domain.WorkoutHistoryEntry) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *entry
	stored.ID = primitive.NewObjectID()
	r.seq++
	stored.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	stored.ExerciseCount = len(stored.Plan.Workout.Main)
	stored.Equipment = stored.Plan.Equipment
	if stored.Equipment == nil {
		stored.Equipment = []string{}
	}
	if stored.IsPublic {
		for {
			code := domain.NewShareCode()
			if !r.shareCodeTaken(code) {
				stored.ShareCode = code
				break
			}
		}
	}
	r.entries[stored.ID] = &stored

	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	entry.ExerciseCount = stored.ExerciseCount
	entry.Equipment = stored.Equipment
	entry.ShareCode = stored.ShareCode
	return stored.ID, nil
}

func (r *memHistoryRepo) shareCodeTaken(code string) bool {
	for _, e := range r.entries {
		if e.ShareCode == code {
			return true
		}
	}
	return false
}

func (r *memHistoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *memHistoryRepo) ListByOwner(_ context.Context, userID primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := []domain.WorkoutHistoryEntry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			list = append(list, *e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *memHistoryRepo) GetByShareCode(_ context.Context, code string) (*domain.PublicWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	normalized := domain.NormalizeShareCode(code)
	for _, e := range r.entries {
		if e.IsPublic && e.ShareCode == normalized {
			owner, ok := r.users.users[e.UserID]
			if !ok {
				return nil, repository.ErrNotFound
			}
			return &domain.PublicWorkout{WorkoutHistoryEntry: *e, CreatedBy: owner.Username}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memHistoryRepo) ShareWith(_ context.Context, workoutID, fromUserID, toUserID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shares {
		if s.WorkoutID == workoutID && s.SharedWith == toUserID {
			return false, nil
		}
	}
	r.seq++
	r.shares = append(r.shares, domain.SharedWorkout{
		ID:         primitive.NewObjectID(),
		WorkoutID:  workoutID,
		SharedBy:   fromUserID,
		SharedWith: toUserID,
		SharedAt:   time.Now().Add(time.Duration(r.seq) * time.Millisecond),
	})
	return true, nil
}

func (r *memHistoryRepo) ListSharedWith(_ context.Context, userID primitive.ObjectID) ([]domain.SharedWorkoutEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shares := []domain.SharedWorkout{}
	for _, s := range r.shares {
		if s.SharedWith == userID {
			shares = append(shares, s)
		}
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].SharedAt.After(shares[j].SharedAt) })

	list := []domain.SharedWorkoutEntry{}
	for _, s := range shares {
		entry, ok := r.entries[s.WorkoutID]
		if !ok {
			continue // workout deleted after sharing
		}
		sharer := ""
		if u, ok := r.users.users[s.SharedBy]; ok {
			sharer = u.Username
		}
		list = append(list, domain.SharedWorkoutEntry{
			WorkoutHistoryEntry: *entry,
			SharedBy:            sharer,
			SharedAt:            s.SharedAt,
		})
	}
	return list, nil
}

func (r *memHistoryRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.UserID == ownerID {
		delete(r.entries, id)
	}
	return nil
}

func (r *memHistoryRepo) Stats(_ context.Context, userID primitive.ObjectID) (domain.WorkoutStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats domain.WorkoutStats
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		stats.TotalWorkouts++
		stats.TotalExercises += e.ExerciseCount
		stats.TotalMinutes += e.Duration
	}
	return stats, nil
}
