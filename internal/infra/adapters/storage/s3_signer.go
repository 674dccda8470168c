package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hemanthreddykoduru/StudentNotes/internal/config"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
)

var _ adapter.AssetSigner = (*S3Signer)(nil)

var ErrSignerNotConfigured = errors.New("object storage signer is not configured")

// S3Signer presigns GET requests against any S3-compatible store
// (Supabase storage, R2, AWS S3).
type S3Signer struct {
	presign *s3.PresignClient
}

// NewS3Signer builds a presign client. It returns a signer even when storage
// credentials are missing; PresignGet then fails and callers fall back.
func NewS3Signer(ctx context.Context, cfg config.StorageConfig) (*S3Signer, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return &S3Signer{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Signer{presign: s3.NewPresignClient(client)}, nil
}

func (s *S3Signer) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if s == nil || s.presign == nil {
		return "", ErrSignerNotConfigured
	}
	if bucket == "" || key == "" {
		return "", fmt.Errorf("presign: empty bucket or key")
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}
