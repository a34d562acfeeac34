package service

import (
	"alcyxob/snapfit/internal/analyzer"
	"alcyxob/snapfit/internal/domain"
	"alcyxob/snapfit/internal/export"
	"alcyxob/snapfit/internal/repository"
	"alcyxob/snapfit/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrRecipientNotFound  = errors.New("recipient user not found")
	ErrInvalidLevel       = errors.New("fitness level must be beginner, intermediate or advanced")
	ErrInvalidDuration    = errors.New("workout duration must be between 5 and 180 minutes")
	ErrShareCodeNotFound  = errors.New("no public workout with this share code")
	ErrPlanMissing        = errors.New("a workout plan is required")
	ErrArchiveUnavailable = errors.New("photo archive is not configured")
)

// SaveResult is what a successful save returns to the caller.
type SaveResult struct {
	ID        primitive.ObjectID `json:"id"`
	ShareCode string             `json:"shareCode,omitempty"`
}

// WorkoutService orchestrates the generation pipeline: analyze, save,
// list, share, delete, stats and export. Stateless apart from the
// repository's explicit storage writes.
type WorkoutService interface {
	Analyze(ctx context.Context, req analyzer.Request) (*domain.WorkoutPlan, error)
	Save(ctx context.Context, userID primitive.ObjectID, plan *domain.WorkoutPlan, level domain.FitnessLevel, durationMinutes int, makePublic bool, photos []analyzer.Image) (*SaveResult, error)
	ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error)
	Delete(ctx context.Context, userID, entryID primitive.ObjectID) error
	Stats(ctx context.Context, userID primitive.ObjectID) (domain.WorkoutStats, error)
	Share(ctx context.Context, ownerID, entryID primitive.ObjectID, recipientUsername string) (bool, error)
	SharedWithMe(ctx context.Context, userID primitive.ObjectID) ([]domain.SharedWorkoutEntry, error)
	GetByShareCode(ctx context.Context, code string) (*domain.PublicWorkout, error)
	ExportEntry(ctx context.Context, userID, entryID primitive.ObjectID) ([]byte, error)
	ExportShared(ctx context.Context, code string) ([]byte, error)
	ExportPlan(plan *domain.WorkoutPlan, durationMinutes int, level domain.FitnessLevel) ([]byte, error)
	PhotoURLs(ctx context.Context, userID, entryID primitive.ObjectID) ([]string, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	historyRepo repository.HistoryRepository
	userRepo    repository.UserRepository
	analyzer    analyzer.EnvironmentAnalyzer
	exporter    *export.PDFExporter
	archive     storage.PhotoArchive // nil when archiving is disabled
}

// NewWorkoutService creates a new instance of workoutService. archive may be
// nil; photo archiving is then skipped.
func NewWorkoutService(
	historyRepo repository.HistoryRepository,
	userRepo repository.UserRepository,
	envAnalyzer analyzer.EnvironmentAnalyzer,
	exporter *export.PDFExporter,
	archive storage.PhotoArchive,
) WorkoutService {
	return &workoutService{
		historyRepo: historyRepo,
		userRepo:    userRepo,
		analyzer:    envAnalyzer,
		exporter:    exporter,
		archive:     archive,
	}
}

// Analyze validates preferences and invokes the vision capability. Failures
// surface as a single error with no partial result and no side effects; the
// user retries manually.
func (s *workoutService) Analyze(ctx context.Context, req analyzer.Request) (*domain.WorkoutPlan, error) {
	if len(req.Images) == 0 {
		return nil, analyzer.ErrNoImages
	}
	if len(req.Types.Enabled()) == 0 {
		return nil, analyzer.ErrNoWorkoutTypes
	}
	if !req.FitnessLevel.Valid() {
		return nil, ErrInvalidLevel
	}
	if req.Duration < 5 || req.Duration > 180 {
		return nil, ErrInvalidDuration
	}
	return s.analyzer.Analyze(ctx, req)
}

// Save persists a plan as a history entry. Public entries get their share
// code inside the repository (generated once, immutable). When an archive is
// configured and photos are supplied, they are stored first and their keys
// recorded on the entry.
func (s *workoutService) Save(ctx context.Context, userID primitive.ObjectID, plan *domain.WorkoutPlan, level domain.FitnessLevel, durationMinutes int, makePublic bool, photos []analyzer.Image) (*SaveResult, error) {
	if plan == nil {
		return nil, ErrPlanMissing
	}
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	if durationMinutes < 5 || durationMinutes > 180 {
		return nil, ErrInvalidDuration
	}

	var photoKeys []string
	if s.archive != nil && len(photos) > 0 {
		batch := uuid.New().String()
		for i, photo := range photos {
			key := fmt.Sprintf("photos/%s/%d.jpg", batch, i)
			contentType := photo.MediaType
			if contentType == "" {
				contentType = "image/jpeg"
			}
			if err := s.archive.Put(ctx, key, contentType, photo.Data); err != nil {
				// Archiving is best effort; the workout still saves.
				log.Printf("ERROR: failed to archive photo %s: %v", key, err)
				continue
			}
			photoKeys = append(photoKeys, key)
		}
	}

	entry := &domain.WorkoutHistoryEntry{
		UserID:       userID,
		Duration:     durationMinutes,
		FitnessLevel: level,
		Plan:         *plan,
		IsPublic:     makePublic,
		PhotoKeys:    photoKeys,
	}

	id, err := s.historyRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	return &SaveResult{ID: id, ShareCode: entry.ShareCode}, nil
}

// ListMine returns the caller's saved workouts, newest first.
func (s *workoutService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error) {
	return s.historyRepo.ListByOwner(ctx, userID)
}

// Delete removes an owned entry and its archived photos. Deleting a
// non-owned or non-existent entry is a silent no-op, never an error:
// idempotent delete by design.
func (s *workoutService) Delete(ctx context.Context, userID, entryID primitive.ObjectID) error {
	entry, err := s.historyRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if entry.UserID != userID {
		return nil
	}

	if s.archive != nil {
		for _, key := range entry.PhotoKeys {
			if err := s.archive.DeleteObject(ctx, key); err != nil {
				log.Printf("ERROR: failed to delete archived photo %s: %v", key, err)
			}
		}
	}
	return s.historyRepo.Delete(ctx, entryID, userID)
}

// Stats aggregates the caller's workout history. All zeroes when empty.
func (s *workoutService) Stats(ctx context.Context, userID primitive.ObjectID) (domain.WorkoutStats, error) {
	return s.historyRepo.Stats(ctx, userID)
}

// Share grants another user (looked up by exact username) read access to an
// owned entry. A false return without error means "not shared, reason
// unspecified", typically a duplicate share.
func (s *workoutService) Share(ctx context.Context, ownerID, entryID primitive.ObjectID, recipientUsername string) (bool, error) {
	entry, err := s.historyRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrWorkoutNotFound
		}
		return false, err
	}
	if entry.UserID != ownerID {
		// Don't reveal whether the entry exists.
		return false, ErrWorkoutNotFound
	}

	recipient, err := s.userRepo.GetByUsername(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrRecipientNotFound
		}
		return false, err
	}

	return s.historyRepo.ShareWith(ctx, entryID, ownerID, recipient.ID)
}

// SharedWithMe lists entries other users shared with the caller, newest
// share first.
func (s *workoutService) SharedWithMe(ctx context.Context, userID primitive.ObjectID) ([]domain.SharedWorkoutEntry, error) {
	return s.historyRepo.ListSharedWith(ctx, userID)
}

// GetByShareCode resolves a public entry from its code, case-insensitively.
func (s *workoutService) GetByShareCode(ctx context.Context, code string) (*domain.PublicWorkout, error) {
	pub, err := s.historyRepo.GetByShareCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShareCodeNotFound
		}
		return nil, err
	}
	return pub, nil
}

// ExportEntry renders an owned entry to PDF.
func (s *workoutService) ExportEntry(ctx context.Context, userID, entryID primitive.ObjectID) ([]byte, error) {
	entry, err := s.historyRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	return s.exporter.Render(&entry.Plan, entry.Duration, entry.FitnessLevel)
}

// ExportShared renders a publicly shared entry to PDF.
func (s *workoutService) ExportShared(ctx context.Context, code string) ([]byte, error) {
	pub, err := s.GetByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(&pub.Plan, pub.Duration, pub.FitnessLevel)
}

// ExportPlan renders an unsaved plan to PDF (the try-before-you-register
// flow: generation and export need no account).
func (s *workoutService) ExportPlan(plan *domain.WorkoutPlan, durationMinutes int, level domain.FitnessLevel) ([]byte, error) {
	if plan == nil {
		return nil, ErrPlanMissing
	}
	return s.exporter.Render(plan, durationMinutes, level)
}

// PhotoURLs returns presigned download URLs for an owned entry's archived
// environment photos.
func (s *workoutService) PhotoURLs(ctx context.Context, userID, entryID primitive.ObjectID) ([]string, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}

	entry, err := s.historyRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrWorkoutNotFound
	}

	urls := make([]string, 0, len(entry.PhotoKeys))
	for _, key := range entry.PhotoKeys {
		url, err := s.archive.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
