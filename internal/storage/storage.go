package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// PhotoArchive defines the interface for archiving the environment photos a
// workout was generated from.
type PhotoArchive interface {
	// Put stores one photo under the given object key.
	Put(ctx context.Context, objectKey string, contentType string, data []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for viewing an archived photo directly from the provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an archived photo.
	DeleteObject(ctx context.Context, objectKey string) error
}
