// Package storage provides object storage for contract files, call
// recordings, receipts, knowledge documents and tenant logos.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/agencycrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BlobStorage is the file storage surface the application works against
type BlobStorage interface {
	// List returns the objects under a key prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// SignedURL returns a time-limited download URL for a key
	SignedURL(ctx context.Context, key string) (string, time.Time, error)
	// Upload writes data under a key
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// Delete removes an object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// S3BlobStorage implements BlobStorage using the AWS SDK. It works
// against any S3-compatible endpoint.
type S3BlobStorage struct {
	client          *s3.Client
	presignClient   *s3.PresignClient
	bucket          string
	signedURLExpiry time.Duration
	logger          *zap.Logger
}

// S3BlobStorageOption is a functional option for configuring S3BlobStorage
type S3BlobStorageOption func(*S3BlobStorage)

// WithLogger sets a custom logger for S3BlobStorage
func WithLogger(logger *zap.Logger) S3BlobStorageOption {
	return func(s *S3BlobStorage) {
		s.logger = logger
	}
}

// WithSignedURLExpiry sets a custom signed URL lifetime
func WithSignedURLExpiry(d time.Duration) S3BlobStorageOption {
	return func(s *S3BlobStorage) {
		s.signedURLExpiry = d
	}
}

// NewS3BlobStorage creates blob storage from configuration
func NewS3BlobStorage(cfg *infraconfig.StorageConfig, opts ...S3BlobStorageOption) (*S3BlobStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "il-central-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	storage := &S3BlobStorage{
		client:          client,
		presignClient:   s3.NewPresignClient(client),
		bucket:          cfg.Bucket,
		signedURLExpiry: cfg.SignedURLExpiry,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.signedURLExpiry == 0 {
		storage.signedURLExpiry = time.Hour
	}

	return storage, nil
}

// EnsureBucket creates the bucket if it does not exist. Call during
// application startup.
func (s *S3BlobStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// List returns the objects under a key prefix, paging through the bucket
func (s *S3BlobStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if prefix == "" {
		return nil, errors.New("list prefix is required")
	}

	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// SignedURL returns a presigned GET URL for a key
func (s *S3BlobStorage) SignedURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.signedURLExpiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign URL: %w", err)
	}

	return presignReq.URL, time.Now().Add(s.signedURLExpiry), nil
}

// Upload writes data under a key
func (s *S3BlobStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Delete removes an object
func (s *S3BlobStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Ensure S3BlobStorage implements BlobStorage
var _ BlobStorage = (*S3BlobStorage)(nil)
