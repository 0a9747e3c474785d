package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mediarelay/internal/assetref"
	"mediarelay/internal/config"
	"mediarelay/internal/domain"
	"mediarelay/internal/port"
	"mediarelay/internal/staging"
)

// RelayService forwards uploads and deletions to the media store.
type RelayService interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]domain.StoredAsset, error)
	Delete(ctx context.Context, assetURL string) (*domain.DestroyResult, error)
}

type relayService struct {
	store          port.MediaStore
	stager         *staging.Stager
	maxConcurrency int
	log            *zap.Logger
}

// NewRelayService creates a new RelayService implementation.
func NewRelayService(
	store port.MediaStore,
	stager *staging.Stager,
	cfg *config.UploadConfig,
	log *zap.Logger,
) RelayService {
	limit := cfg.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	return &relayService{
		store:          store,
		stager:         stager,
		maxConcurrency: limit,
		log:            log,
	}
}

// Upload stages every part, then forwards them concurrently with at most
// maxConcurrency store calls in flight. The result preserves input order. The first
// failure fails the whole batch; assets already stored are left in place.
func (s *relayService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]domain.StoredAsset, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFilesProvided
	}

	staged, err := s.stager.StageAll(files)
	if err != nil {
		s.log.Error("relayService.Upload: staging failed", zap.Error(err))
		if errors.Is(err, domain.ErrFileTooLarge) {
			return nil, err
		}
		return nil, domain.NewStoreError(domain.ErrUploadFailed, err)
	}
	// Release is idempotent; this catches files whose upload never started.
	defer s.release(staged...)

	s.log.Info("relayService.Upload: forwarding files",
		zap.Int("count", len(staged)), zap.Int("max_concurrency", s.maxConcurrency))

	assets := make([]domain.StoredAsset, len(staged))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, f := range staged {
		g.Go(func() error {
			defer s.release(f)
			if err := gctx.Err(); err != nil {
				return err
			}

			out, err := s.store.Upload(gctx, port.UploadInput{
				FilePath:     f.Path,
				FileName:     f.OriginalName,
				ResourceType: domain.ResourceTypeAuto,
			})
			if err != nil {
				s.log.Error("relayService.Upload: store upload failed",
					zap.String("file", f.OriginalName), zap.Error(err))
				return err
			}

			assets[i] = domain.StoredAsset{URL: out.SecureURL, PublicID: out.PublicID}
			s.log.Debug("relayService.Upload: stored",
				zap.String("file", f.OriginalName),
				zap.String("public_id", out.PublicID),
				zap.String("resource_type", string(out.ResourceType)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, domain.NewStoreError(domain.ErrUploadFailed, err)
	}
	return assets, nil
}

// Delete derives the public ID from assetURL and asks the store to destroy it. The
// resource type is always sent as auto.
func (s *relayService) Delete(ctx context.Context, assetURL string) (*domain.DestroyResult, error) {
	if strings.TrimSpace(assetURL) == "" {
		return nil, domain.ErrNoURLProvided
	}

	publicID, err := assetref.ExtractPublicID(assetURL)
	if err != nil {
		s.log.Warn("relayService.Delete: cannot derive public id", zap.String("url", assetURL), zap.Error(err))
		return nil, domain.NewStoreError(domain.ErrDeleteFailed, err)
	}
	s.log.Debug("relayService.Delete: extracted public id", zap.String("public_id", publicID))

	result, err := s.store.Destroy(ctx, port.DestroyInput{
		PublicID:     publicID,
		ResourceType: domain.ResourceTypeAuto,
	})
	if err != nil {
		s.log.Error("relayService.Delete: store destroy failed", zap.String("public_id", publicID), zap.Error(err))
		return nil, domain.NewStoreError(domain.ErrDeleteFailed, err)
	}

	s.log.Info("relayService.Delete: destroyed",
		zap.String("public_id", publicID), zap.String("result", result.Result))
	return result, nil
}

// release unlinks staged files. Cleanup failures are logged and never fail the request.
func (s *relayService) release(files ...*staging.StagedFile) {
	for _, f := range files {
		if err := f.Release(); err != nil {
			s.log.Warn("relayService.Upload: staged file cleanup failed",
				zap.String("path", f.Path), zap.Error(err))
		}
	}
}
