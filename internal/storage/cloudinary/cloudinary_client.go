package cloudinary

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"mediarelay/internal/config"
	"mediarelay/internal/domain"
	"mediarelay/internal/port"
)

// uploadAPI is the subset of the Cloudinary upload API the relay calls.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type adminAPI interface {
	Ping(ctx context.Context) (*admin.PingResult, error)
}

// destroyProbeOrder is tried in turn when a destroy call asks for auto detection;
// Cloudinary's destroy endpoint needs a concrete resource type.
var destroyProbeOrder = []domain.ResourceType{
	domain.ResourceTypeImage,
	domain.ResourceTypeVideo,
	domain.ResourceTypeRaw,
}

type cloudinaryClient struct {
	upload uploadAPI
	admin  adminAPI
	folder string
}

// NewCloudinaryClient creates a Cloudinary-backed MediaStore.
func NewCloudinaryClient(cfg *config.CloudinaryConfig) (port.MediaStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	return &cloudinaryClient{
		upload: &cld.Upload,
		admin:  &cld.Admin,
		folder: cfg.Folder,
	}, nil
}

func (c *cloudinaryClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	resourceType := input.ResourceType
	if resourceType == "" {
		resourceType = domain.ResourceTypeAuto
	}

	result, err := c.upload.Upload(ctx, input.FilePath, uploader.UploadParams{
		ResourceType: string(resourceType),
		Folder:       c.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}

	return &port.UploadOutput{
		SecureURL:    result.SecureURL,
		PublicID:     result.PublicID,
		ResourceType: domain.ResourceType(result.ResourceType),
		Bytes:        int64(result.Bytes),
	}, nil
}

func (c *cloudinaryClient) Destroy(ctx context.Context, input port.DestroyInput) (*domain.DestroyResult, error) {
	if input.ResourceType != "" && input.ResourceType != domain.ResourceTypeAuto {
		return c.destroy(ctx, input.PublicID, input.ResourceType)
	}

	for _, rt := range destroyProbeOrder {
		result, err := c.destroy(ctx, input.PublicID, rt)
		if err != nil {
			return nil, err
		}
		if result.Result != domain.DestroyResultNotFound {
			return result, nil
		}
	}
	return &domain.DestroyResult{Result: domain.DestroyResultNotFound}, nil
}

func (c *cloudinaryClient) destroy(ctx context.Context, publicID string, rt domain.ResourceType) (*domain.DestroyResult, error) {
	result, err := c.upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(rt),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}
	return &domain.DestroyResult{Result: result.Result}, nil
}

func (c *cloudinaryClient) Ping(ctx context.Context) error {
	result, err := c.admin.Ping(ctx)
	if err != nil {
		return fmt.Errorf("cloudinary ping: %w", err)
	}
	if result.Error.Message != "" {
		return errors.New(result.Error.Message)
	}
	return nil
}
