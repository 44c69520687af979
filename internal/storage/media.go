package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config carries the object-store settings for message images.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PresignTTL bounds how long resolved URLs stay valid.
	PresignTTL time.Duration
}

// S3Resolver resolves stored image paths to presigned GET URLs. The actual
// upload pipeline lives outside this service; messages only reference keys.
type S3Resolver struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewS3Resolver builds the resolver. A custom endpoint (MinIO etc.) switches
// the client to path-style addressing.
func NewS3Resolver(cfg S3Config) *S3Resolver {
	opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, opts...)
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Resolver{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
	}
}

// ResolveURL presigns a GET for the stored key.
func (r *S3Resolver) ResolveURL(ctx context.Context, path string) (string, error) {
	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return req.URL, nil
}

// HealthCheck verifies the bucket is reachable.
func (r *S3Resolver) HealthCheck(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}

// BaseURLResolver derives public URLs by joining a static base with the
// stored path. Used when images are served straight from a CDN or disk.
type BaseURLResolver struct {
	base string
}

func NewBaseURLResolver(base string) *BaseURLResolver {
	return &BaseURLResolver{base: strings.TrimRight(base, "/")}
}

func (r *BaseURLResolver) ResolveURL(_ context.Context, path string) (string, error) {
	return r.base + "/" + strings.TrimLeft(path, "/"), nil
}
