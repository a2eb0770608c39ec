package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/clubtoros/toros-backend/internal/config"
)

// ObjectAPI is the subset of the S3 client used by S3Uploader.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Uploader stores files in an S3 bucket.
type S3Uploader struct {
	client  ObjectAPI
	bucket  string
	baseURL string
}

// NewS3Uploader creates an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return NewS3UploaderWithClient(client, cfg.Bucket, baseURL), nil
}

// NewS3UploaderWithClient wires an uploader around an existing client.
func NewS3UploaderWithClient(client ObjectAPI, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload puts data under destination and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, destination, mimeType string, onProgress ProgressFunc) (string, error) {
	body := newProgressReader(bytes.NewReader(data), int64(len(data)), onProgress)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(destination),
		Body:          body,
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	if onProgress != nil {
		onProgress(1)
	}
	return u.baseURL + "/" + destination, nil
}

// Delete removes the object behind url.
func (u *S3Uploader) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, u.baseURL+"/")
	if key == url || key == "" {
		return fmt.Errorf("invalid file URL: %s", url)
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return err
}
