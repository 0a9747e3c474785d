package port

import (
	"context"

	"mediarelay/internal/domain"
)

// UploadInput describes a staged file to forward to the media store.
type UploadInput struct {
	FilePath     string
	FileName     string
	ResourceType domain.ResourceType
}

// UploadOutput is the store's canonical reference for an uploaded file.
type UploadOutput struct {
	SecureURL    string
	PublicID     string
	ResourceType domain.ResourceType
	Bytes        int64
}

// DestroyInput addresses an asset for removal.
type DestroyInput struct {
	PublicID     string
	ResourceType domain.ResourceType
}

// MediaStore abstracts the third-party media host the relay forwards to.
type MediaStore interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Destroy(ctx context.Context, input DestroyInput) (*domain.DestroyResult, error)
	Ping(ctx context.Context) error
}
