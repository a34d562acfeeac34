package service

import (
	"alcyxob/snapfit/internal/analyzer"
	"alcyxob/snapfit/internal/domain"
	"alcyxob/snapfit/internal/export"
	"alcyxob/snapfit/internal/storage"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubAnalyzer returns a canned plan or error without any network calls.
type stubAnalyzer struct {
	plan *domain.WorkoutPlan
	err  error
}

func (s *stubAnalyzer) Analyze(context.Context, analyzer.Request) (*domain.WorkoutPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

// memArchive records puts and deletes in memory.
type memArchive struct {
	objects map[string][]byte
	deleted []string
}

func newMemArchive() *memArchive {
	return &memArchive{objects: make(map[string][]byte)}
}

func (a *memArchive) Put(_ context.Context, key, _ string, data []byte) error {
	a.objects[key] = data
	return nil
}

func (a *memArchive) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.test/" + key + "?signed=1", nil
}

func (a *memArchive) DeleteObject(_ context.Context, key string) error {
	delete(a.objects, key)
	a.deleted = append(a.deleted, key)
	return nil
}

type workoutFixture struct {
	svc     WorkoutService
	users   *memUserRepo
	history *memHistoryRepo
	archive *memArchive
}

func newWorkoutFixture(t *testing.T, a analyzer.EnvironmentAnalyzer, archive storage.PhotoArchive) *workoutFixture {
	t.Helper()
	users := newMemUserRepo()
	history := newMemHistoryRepo(users)
	var memArc *memArchive
	if arc, ok := archive.(*memArchive); ok {
		memArc = arc
	}
	return &workoutFixture{
		svc:     NewWorkoutService(history, users, a, export.NewPDFExporter(), archive),
		users:   users,
		history: history,
		archive: memArc,
	}
}

func (f *workoutFixture) addUser(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	id, err := f.users.Create(context.Background(), &domain.User{Username: username, PasswordHash: "x"})
	require.NoError(t, err)
	return id
}

func testPlan() *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		Equipment: []string{"dumbbells"},
		Workout: domain.WorkoutPhases{
			Warmup: []domain.PhaseExercise{{Name: "Arm Circles", Duration: "2 minutes"}},
			Main: []domain.MainExercise{
				{Name: "Goblet Squat", Sets: 3, Reps: "12 reps", Equipment: "dumbbell", Tips: "Chest up"},
				{Name: "Push-ups", Sets: 3, Reps: "10 reps", Equipment: "none", Tips: "Full range"},
			},
			Cooldown: []domain.PhaseExercise{{Name: "Quad Stretch", Duration: "30 seconds"}},
		},
		Notes: "Rest 60 seconds between sets.",
	}
}

func analyzeRequest() analyzer.Request {
	return analyzer.Request{
		Images:       []analyzer.Image{{MediaType: "image/jpeg", Data: []byte("jpeg")}},
		FitnessLevel: domain.LevelBeginner,
		Duration:     30,
		Types:        domain.WorkoutTypes{Strength: true},
	}
}

func TestAnalyzeValidation(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()

	req := analyzeRequest()
	req.Images = nil
	_, err := f.svc.Analyze(ctx, req)
	assert.ErrorIs(t, err, analyzer.ErrNoImages)

	req = analyzeRequest()
	req.Types = domain.WorkoutTypes{}
	_, err = f.svc.Analyze(ctx, req)
	assert.ErrorIs(t, err, analyzer.ErrNoWorkoutTypes)

	req = analyzeRequest()
	req.FitnessLevel = "expert"
	_, err = f.svc.Analyze(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	req = analyzeRequest()
	req.Duration = 3
	_, err = f.svc.Analyze(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	req = analyzeRequest()
	req.Duration = 200
	_, err = f.svc.Analyze(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestAnalyzeFailureHasNoSideEffects(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{err: analyzer.ErrAnalysisFailed}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	_, err := f.svc.Analyze(ctx, analyzeRequest())
	require.ErrorIs(t, err, analyzer.ErrAnalysisFailed)

	// A failed analysis never creates a history entry.
	list, err := f.svc.ListMine(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveAndListRoundTrip(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	plan := testPlan()
	result, err := f.svc.Save(ctx, userID, plan, domain.LevelIntermediate, 45, false, nil)
	require.NoError(t, err)
	assert.False(t, result.ID.IsZero())
	assert.Empty(t, result.ShareCode, "private saves have no share code")

	list, err := f.svc.ListMine(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	entry := list[0]
	assert.Equal(t, result.ID, entry.ID)
	assert.Equal(t, 45, entry.Duration)
	assert.Equal(t, domain.LevelIntermediate, entry.FitnessLevel)
	assert.Equal(t, 2, entry.ExerciseCount)
	assert.Equal(t, plan.Equipment, entry.Equipment)
	assert.Equal(t, *plan, entry.Plan, "the stored plan is structurally identical")
	assert.False(t, entry.IsPublic)
}

func TestSaveValidation(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	_, err := f.svc.Save(ctx, userID, nil, domain.LevelBeginner, 30, false, nil)
	assert.ErrorIs(t, err, ErrPlanMissing)

	_, err = f.svc.Save(ctx, userID, testPlan(), "expert", 30, false, nil)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 2, false, nil)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestPublicSavesGetDistinctShareCodes(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	codes := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, true, nil)
		require.NoError(t, err)
		require.Len(t, result.ShareCode, domain.ShareCodeLength)
		codes[result.ShareCode] = true
	}
	assert.Len(t, codes, 20, "every public save gets its own code")
}

func TestGetByShareCode(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	result, err := f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, true, nil)
	require.NoError(t, err)

	pub, err := f.svc.GetByShareCode(ctx, result.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, result.ID, pub.ID)
	assert.Equal(t, "alice", pub.CreatedBy)

	// Lookup is case-insensitive and tolerant of surrounding whitespace.
	pub, err = f.svc.GetByShareCode(ctx, "  "+strings.ToLower(result.ShareCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, result.ID, pub.ID)

	_, err = f.svc.GetByShareCode(ctx, "NOSUCH00")
	assert.ErrorIs(t, err, ErrShareCodeNotFound)
}

func TestPrivateEntryNotResolvableByCode(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	result, err := f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)
	assert.Empty(t, result.ShareCode)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	aliceID := f.addUser(t, "alice")
	bobID := f.addUser(t, "bob")

	result, err := f.svc.Save(ctx, aliceID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)

	// Someone else's delete is a silent no-op.
	require.NoError(t, f.svc.Delete(ctx, bobID, result.ID))
	list, err := f.svc.ListMine(ctx, aliceID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// The owner's delete removes the entry; repeating it stays silent.
	require.NoError(t, f.svc.Delete(ctx, aliceID, result.ID))
	require.NoError(t, f.svc.Delete(ctx, aliceID, result.ID))
	require.NoError(t, f.svc.Delete(ctx, aliceID, primitive.NewObjectID()))

	list, err = f.svc.ListMine(ctx, aliceID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStats(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	stats, err := f.svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkoutStats{}, stats)

	_, err = f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 45, false, nil)
	require.NoError(t, err)

	stats, err = f.svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalWorkouts)
	assert.Equal(t, 4, stats.TotalExercises)
	assert.Equal(t, 75, stats.TotalMinutes)
}

func TestShare(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	aliceID := f.addUser(t, "alice")
	bobID := f.addUser(t, "bob")

	result, err := f.svc.Save(ctx, aliceID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)

	shared, err := f.svc.Share(ctx, aliceID, result.ID, "bob")
	require.NoError(t, err)
	assert.True(t, shared)

	// Sharing the same workout with the same user again is swallowed.
	shared, err = f.svc.Share(ctx, aliceID, result.ID, "bob")
	require.NoError(t, err)
	assert.False(t, shared)

	list, err := f.svc.SharedWithMe(ctx, bobID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, result.ID, list[0].ID)
	assert.Equal(t, "alice", list[0].SharedBy)
}

func TestShareFailures(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	aliceID := f.addUser(t, "alice")
	bobID := f.addUser(t, "bob")

	result, err := f.svc.Save(ctx, aliceID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)

	_, err = f.svc.Share(ctx, aliceID, result.ID, "nobody")
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	_, err = f.svc.Share(ctx, aliceID, primitive.NewObjectID(), "bob")
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	// A non-owner gets the same error as a missing workout.
	_, err = f.svc.Share(ctx, bobID, result.ID, "bob")
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestExportEntry(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	aliceID := f.addUser(t, "alice")
	bobID := f.addUser(t, "bob")

	result, err := f.svc.Save(ctx, aliceID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)

	data, err := f.svc.ExportEntry(ctx, aliceID, result.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	_, err = f.svc.ExportEntry(ctx, bobID, result.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestExportShared(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	result, err := f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, true, nil)
	require.NoError(t, err)

	data, err := f.svc.ExportShared(ctx, result.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	_, err = f.svc.ExportShared(ctx, "NOSUCH00")
	assert.ErrorIs(t, err, ErrShareCodeNotFound)
}

func TestExportPlanWithoutAccount(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)

	data, err := f.svc.ExportPlan(testPlan(), 30, domain.LevelBeginner)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	_, err = f.svc.ExportPlan(nil, 30, domain.LevelBeginner)
	assert.ErrorIs(t, err, ErrPlanMissing)
}

func TestSaveArchivesPhotos(t *testing.T) {
	archive := newMemArchive()
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, archive)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	photos := []analyzer.Image{
		{MediaType: "image/jpeg", Data: []byte("one")},
		{MediaType: "image/png", Data: []byte("two")},
	}
	result, err := f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, false, photos)
	require.NoError(t, err)
	assert.Len(t, archive.objects, 2)

	urls, err := f.svc.PhotoURLs(ctx, userID, result.ID)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "https://archive.test/photos/")

	// Deleting the entry removes its archived photos too.
	require.NoError(t, f.svc.Delete(ctx, userID, result.ID))
	assert.Empty(t, archive.objects)
	assert.Len(t, archive.deleted, 2)
}

func TestPhotoURLsWithoutArchive(t *testing.T) {
	f := newWorkoutFixture(t, &stubAnalyzer{plan: testPlan()}, nil)
	ctx := context.Background()
	userID := f.addUser(t, "alice")

	result, err := f.svc.Save(ctx, userID, testPlan(), domain.LevelBeginner, 30, false, nil)
	require.NoError(t, err)

	_, err = f.svc.PhotoURLs(ctx, userID, result.ID)
	assert.ErrorIs(t, err, ErrArchiveUnavailable)
}
