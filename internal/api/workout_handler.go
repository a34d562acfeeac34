package api

import (
	"alcyxob/snapfit/internal/analyzer"
	"alcyxob/snapfit/internal/domain"
	"alcyxob/snapfit/internal/export"
	"alcyxob/snapfit/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxPhotos        = 5
	maxPhotoBytes    = 10 << 20 // 10 MiB per photo
	photosFormField  = "photos"
	payloadFormField = "payload"
)

// WorkoutHandler exposes the generation pipeline over HTTP.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type SaveWorkoutRequest struct {
	Plan         *domain.WorkoutPlan `json:"plan" binding:"required"`
	FitnessLevel domain.FitnessLevel `json:"fitnessLevel" binding:"required"`
	Duration     int                 `json:"duration" binding:"required"`
	IsPublic     bool                `json:"isPublic"`
}

type ExportPlanRequest struct {
	Plan         *domain.WorkoutPlan `json:"plan" binding:"required"`
	FitnessLevel domain.FitnessLevel `json:"fitnessLevel" binding:"required"`
	Duration     int                 `json:"duration" binding:"required"`
}

type ShareRequest struct {
	Username string `json:"username" binding:"required"`
}

type ShareResponse struct {
	Shared bool `json:"shared"`
}

// --- Handler Methods ---

// Analyze godoc
// @Summary Generate a workout plan from environment photos
// @Description Multipart form: 1-5 "photos" files plus fitness_level,
// @Description duration (minutes) and at least one enabled workout type
// @Description (strength/cardio/bodyweight/flexibility as "true"). The
// @Description external capability is invoked once; failures are reported
// @Description immediately and must be retried manually.
// @Tags Workouts
// @Accept mpfd
// @Produce json
// @Success 200 {object} domain.WorkoutPlan
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 502 {object} gin.H "Analysis failed"
// @Router /workouts/analyze [post]
func (h *WorkoutHandler) Analyze(c *gin.Context) {
	images, err := readPhotos(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	duration, err := strconv.Atoi(c.PostForm("duration"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "duration must be an integer number of minutes")
		return
	}

	req := analyzer.Request{
		Images:       images,
		FitnessLevel: domain.FitnessLevel(c.PostForm("fitness_level")),
		Duration:     duration,
		Types: domain.WorkoutTypes{
			Strength:    c.PostForm("strength") == "true",
			Cardio:      c.PostForm("cardio") == "true",
			Bodyweight:  c.PostForm("bodyweight") == "true",
			Flexibility: c.PostForm("flexibility") == "true",
		},
	}

	plan, err := h.workoutService.Analyze(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrNoImages),
			errors.Is(err, analyzer.ErrNoWorkoutTypes),
			errors.Is(err, service.ErrInvalidLevel),
			errors.Is(err, service.ErrInvalidDuration):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, analyzer.ErrAnalysisFailed):
			abortWithError(c, http.StatusBadGateway, "Workout generation failed. Please try again.")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Save godoc
// @Summary Save a generated workout plan
// @Description Accepts either a JSON body, or a multipart form with a
// @Description "payload" JSON field and optional "photos" files to archive
// @Description alongside the entry. Public entries receive an 8-character
// @Description share code, generated exactly once.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.SaveResult
// @Failure 400 {object} gin.H "Invalid input"
// @Router /workouts [post]
func (h *WorkoutHandler) Save(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SaveWorkoutRequest
	var photos []analyzer.Image

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		payload := c.PostForm(payloadFormField)
		if payload == "" {
			abortWithError(c, http.StatusBadRequest, "missing 'payload' form field")
			return
		}
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
			return
		}
		if photos, err = readPhotosOptional(c); err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.workoutService.Save(c.Request.Context(), userID, req.Plan, req.FitnessLevel, req.Duration, req.IsPublic, photos)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanMissing),
			errors.Is(err, service.ErrInvalidLevel),
			errors.Is(err, service.ErrInvalidDuration):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not save workout")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List godoc
// @Summary List my saved workouts, newest first
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutHistoryEntry
// @Router /workouts [get]
func (h *WorkoutHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	entries, err := h.workoutService.ListMine(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list workouts")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Delete godoc
// @Summary Delete one of my saved workouts
// @Description Idempotent: deleting a missing or non-owned entry succeeds
// @Description without effect.
// @Tags Workouts
// @Security BearerAuth
// @Success 204 "Deleted (or nothing to delete)"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) Delete(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		// Malformed IDs can't match anything; same no-op as a miss.
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), userID, entryID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not delete workout")
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats godoc
// @Summary Aggregate statistics over my saved workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.WorkoutStats
// @Router /workouts/stats [get]
func (h *WorkoutHandler) Stats(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	stats, err := h.workoutService.Stats(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Share godoc
// @Summary Share a saved workout with another user by username
// @Description A response of {"shared": false} means not shared, reason
// @Description unspecified (typically already shared with that user).
// @Tags Sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ShareRequest true "Recipient username"
// @Success 200 {object} ShareResponse
// @Failure 404 {object} gin.H "Workout or recipient not found"
// @Router /workouts/{id}/share [post]
func (h *WorkoutHandler) Share(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrWorkoutNotFound.Error())
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	shared, err := h.workoutService.Share(c.Request.Context(), userID, entryID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrRecipientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not share workout")
		}
		return
	}

	c.JSON(http.StatusOK, ShareResponse{Shared: shared})
}

// SharedWithMe godoc
// @Summary List workouts other users shared with me, newest share first
// @Tags Sharing
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.SharedWorkoutEntry
// @Router /workouts/shared-with-me [get]
func (h *WorkoutHandler) SharedWithMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	entries, err := h.workoutService.SharedWithMe(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list shared workouts")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetShared godoc
// @Summary Look up a public workout by share code
// @Description Codes resolve case-insensitively; private or unknown codes
// @Description are both "not found".
// @Tags Sharing
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} domain.PublicWorkout
// @Failure 404 {object} gin.H "Unknown or private code"
// @Router /shared/{code} [get]
func (h *WorkoutHandler) GetShared(c *gin.Context) {
	pub, err := h.workoutService.GetByShareCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrShareCodeNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not resolve share code")
		}
		return
	}
	c.JSON(http.StatusOK, pub)
}

// ExportEntry godoc
// @Summary Export one of my saved workouts as PDF
// @Tags Export
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id}/export [get]
func (h *WorkoutHandler) ExportEntry(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrWorkoutNotFound.Error())
		return
	}

	pdfBytes, err := h.workoutService.ExportEntry(c.Request.Context(), userID, entryID)
	if err != nil {
		h.exportError(c, err)
		return
	}
	servePDF(c, pdfBytes)
}

// ExportShared godoc
// @Summary Export a public workout as PDF by share code
// @Tags Export
// @Produce application/pdf
// @Param code path string true "Share code"
// @Success 200 {file} binary
// @Router /shared/{code}/export [get]
func (h *WorkoutHandler) ExportShared(c *gin.Context) {
	pdfBytes, err := h.workoutService.ExportShared(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.exportError(c, err)
		return
	}
	servePDF(c, pdfBytes)
}

// ExportPlan godoc
// @Summary Export an unsaved plan as PDF
// @Description No account needed; matches the try-it-free generation flow.
// @Tags Export
// @Accept json
// @Produce application/pdf
// @Param body body ExportPlanRequest true "Plan to render"
// @Success 200 {file} binary
// @Router /workouts/export [post]
func (h *WorkoutHandler) ExportPlan(c *gin.Context) {
	var req ExportPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	pdfBytes, err := h.workoutService.ExportPlan(req.Plan, req.Duration, req.FitnessLevel)
	if err != nil {
		h.exportError(c, err)
		return
	}
	servePDF(c, pdfBytes)
}

// Photos godoc
// @Summary Presigned download URLs for an entry's archived photos
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /workouts/{id}/photos [get]
func (h *WorkoutHandler) Photos(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrWorkoutNotFound.Error())
		return
	}

	urls, err := h.workoutService.PhotoURLs(c.Request.Context(), userID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrArchiveUnavailable):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not fetch photo URLs")
		}
		return
	}
	c.JSON(http.StatusOK, urls)
}

// --- Helpers ---

func (h *WorkoutHandler) exportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrShareCodeNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, export.ErrMalformedPlan), errors.Is(err, service.ErrPlanMissing):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Could not render PDF")
	}
}

func servePDF(c *gin.Context, pdfBytes []byte) {
	c.Header("Content-Disposition", `attachment; filename="workout_plan.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// readPhotos reads the multipart "photos" files; at least one is required.
func readPhotos(c *gin.Context) ([]analyzer.Image, error) {
	images, err := readPhotosOptional(c)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, analyzer.ErrNoImages
	}
	return images, nil
}

// readPhotosOptional reads zero or more "photos" files from the form.
func readPhotosOptional(c *gin.Context) ([]analyzer.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %v", err)
	}

	files := form.File[photosFormField]
	if len(files) > maxPhotos {
		return nil, fmt.Errorf("at most %d photos are accepted", maxPhotos)
	}

	images := make([]analyzer.Image, 0, len(files))
	for _, fh := range files {
		img, err := readPhoto(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readPhoto(fh *multipart.FileHeader) (analyzer.Image, error) {
	if fh.Size > maxPhotoBytes {
		return analyzer.Image{}, fmt.Errorf("photo %q exceeds the %d MiB limit", fh.Filename, maxPhotoBytes>>20)
	}

	file, err := fh.Open()
	if err != nil {
		return analyzer.Image{}, fmt.Errorf("could not open photo %q: %v", fh.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		return analyzer.Image{}, fmt.Errorf("could not read photo %q: %v", fh.Filename, err)
	}
	if len(data) > maxPhotoBytes {
		return analyzer.Image{}, fmt.Errorf("photo %q exceeds the %d MiB limit", fh.Filename, maxPhotoBytes>>20)
	}

	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/jpeg"
	}
	return analyzer.Image{MediaType: mediaType, Data: data}, nil
}
