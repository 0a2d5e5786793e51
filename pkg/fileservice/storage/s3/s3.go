package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	Prefix          string // Optional key prefix acting as the base directory
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
}

// Backend is an S3-compatible implementation of the fileservice.BlobStore
// interface. A single PutObject replaces an object atomically, so readers
// never observe a partial upload.
type Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	prefix := strings.Trim(config.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &Backend{
		client: s3.NewFromConfig(awsCfg, s3Options...),
		bucket: config.Bucket,
		prefix: prefix,
	}, nil
}

func (b *Backend) objectKey(key string) string {
	return b.prefix + key
}

// Upload uploads content directly to S3
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	uploader := manager.NewUploader(b.client)

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.objectKey(key)),
		Body:        reader,
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", mapError(err))
	}
	return nil
}

// Download downloads content directly from S3
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, *fileservice.ObjectMeta, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download from S3: %w", mapError(err))
	}

	meta := &fileservice.ObjectMeta{
		Key:  key,
		Size: aws.ToInt64(result.ContentLength),
	}
	if result.LastModified != nil {
		meta.UpdatedAt = *result.LastModified
	}
	return result.Body, meta, nil
}

// Delete deletes content from S3. S3 deletes are idempotent, so the object
// is checked first to report a missing key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to stat S3 object: %w", mapError(err))
	}

	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", mapError(err))
	}
	return nil
}

// List returns the keys directly under the prefix
func (b *Backend) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(b.prefix),
		Delimiter: aws.String("/"),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", mapError(err))
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), b.prefix)
			if key == "" || strings.Contains(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// mapError translates S3 API errors into fs.ErrNotExist and fs.ErrPermission
// so the content store can classify them like filesystem errors.
func mapError(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", fs.ErrNotExist, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", fs.ErrNotExist, err)
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			return fmt.Errorf("%w: %v", fs.ErrPermission, err)
		}
	}
	return err
}
