// Package storage selects the media store backend named in configuration.
package storage

import (
	"fmt"

	"mediarelay/internal/config"
	"mediarelay/internal/port"
	cldstorage "mediarelay/internal/storage/cloudinary"
	s3storage "mediarelay/internal/storage/s3"
)

// New returns the MediaStore for cfg.Store.Provider.
func New(cfg *config.Config) (port.MediaStore, error) {
	switch cfg.Store.Provider {
	case config.ProviderCloudinary:
		return cldstorage.NewCloudinaryClient(&cfg.Cloudinary)
	case config.ProviderS3:
		return s3storage.NewS3Client(&cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store provider %q", cfg.Store.Provider)
	}
}
