package storage

import (
	"context"
	"fmt"
	"io"

	appconfig "stayhub/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps images in an S3 (or S3-compatible) bucket.
type S3ImageStore struct {
	client    objectAPI
	bucket    string
	publicURL string
	logger    *zerolog.Logger
}

func NewS3ImageStore(ctx context.Context, cfg appconfig.StorageConfig, logger *zerolog.Logger) (*S3ImageStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.S3Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	return newS3ImageStore(client, cfg.S3Bucket, publicURL, logger), nil
}

func newS3ImageStore(client objectAPI, bucket, publicURL string, logger *zerolog.Logger) *S3ImageStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &S3ImageStore{client: client, bucket: bucket, publicURL: publicURL, logger: logger}
}

func (s *S3ImageStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	name := objectName(originalName)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Debug().Str("bucket", s.bucket).Str("image", name).Msg("image uploaded")
	return name, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *S3ImageStore) URL(name string) string {
	return joinURL(s.publicURL, name)
}
