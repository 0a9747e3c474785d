package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"mediarelay/internal/config"
	"mediarelay/internal/domain"
	"mediarelay/internal/port"
)

// metadataResourceType is the object metadata key recording the detected media class.
const metadataResourceType = "resource-type"

type objectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type uploaderAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Client struct {
	client     objectAPI
	uploader   uploaderAPI
	bucket     string
	folder     string
	publicBase string
	newKey     func() string
}

// NewS3Client creates a MediaStore backed by an S3-compatible bucket. Objects are stored
// under <folder>/<uuid> without an extension so that the public URL's last two path
// segments are exactly the object key.
func NewS3Client(cfg *config.S3Config) (port.MediaStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return newS3Client(client, manager.NewUploader(client), cfg), nil
}

func newS3Client(client objectAPI, up uploaderAPI, cfg *config.S3Config) *s3Client {
	return &s3Client{
		client:     client,
		uploader:   up,
		bucket:     cfg.Bucket,
		folder:     strings.Trim(cfg.Folder, "/"),
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		newKey:     func() string { return uuid.New().String() },
	}
}

func (c *s3Client) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	f, err := os.Open(input.FilePath)
	if err != nil {
		return nil, fmt.Errorf("opening staged file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat staged file: %w", err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("detecting content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking staged file: %w", err)
	}

	resourceType := input.ResourceType
	if resourceType == "" || resourceType == domain.ResourceTypeAuto {
		resourceType = resourceTypeFor(mtype.String())
	}

	key := path.Join(c.folder, c.newKey())
	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(mtype.String()),
		Metadata: map[string]string{
			metadataResourceType: string(resourceType),
			"original-name":      input.FileName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	return &port.UploadOutput{
		SecureURL:    c.publicBase + "/" + key,
		PublicID:     key,
		ResourceType: resourceType,
		Bytes:        info.Size(),
	}, nil
}

// Destroy removes the object. S3 deletes are idempotent, so existence is checked first
// to report "not found" the same way Cloudinary does.
func (c *s3Client) Destroy(ctx context.Context, input port.DestroyInput) (*domain.DestroyResult, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(input.PublicID),
	})
	if err != nil {
		if isNotFound(err) {
			return &domain.DestroyResult{Result: domain.DestroyResultNotFound}, nil
		}
		return nil, fmt.Errorf("s3 head: %w", err)
	}

	_, err = c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(input.PublicID),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 delete: %w", err)
	}
	return &domain.DestroyResult{Result: domain.DestroyResultOK}, nil
}

func (c *s3Client) Ping(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("s3 head bucket: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

// resourceTypeFor maps a MIME type to the media class Cloudinary would assign.
func resourceTypeFor(mime string) domain.ResourceType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return domain.ResourceTypeImage
	case strings.HasPrefix(mime, "video/"), strings.HasPrefix(mime, "audio/"):
		return domain.ResourceTypeVideo
	default:
		return domain.ResourceTypeRaw
	}
}
