package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Options configure the template bucket client. Empty fields fall back to the default
// AWS credential and region chain.
type S3Options struct {
	Region          string
	Endpoint        string // S3-compatible endpoint such as MinIO; enables path-style addressing
	AccessKeyID     string
	SecretAccessKey string
	Password        string // decrypts GCM3NCR0 envelopes
}

// S3Client reads and writes template objects in S3.
type S3Client struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	password   string
}

// NewS3Client creates a new S3 client
func NewS3Client(ctx context.Context, opts S3Options) (*S3Client, error) {
	var loadOpts []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Client{
		client:     cli,
		downloader: manager.NewDownloader(cli),
		uploader:   manager.NewUploader(cli),
		password:   opts.Password,
	}, nil
}

// Download fetches an object, decrypting it when it carries an encryption envelope.
func (s *S3Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	data := buf.Bytes()
	if IsEncrypted(data) {
		if s.password == "" {
			return nil, fmt.Errorf("s3://%s/%s is encrypted and no password is configured", bucket, key)
		}
		if data, err = Decrypt(data, s.password); err != nil {
			return nil, fmt.Errorf("failed to decrypt s3://%s/%s: %w", bucket, key, err)
		}
	}
	log.Info().Str("bucket", bucket).Str("key", key).Int64("size", n).Msg("downloaded template from S3")
	return data, nil
}

// Upload stores data under key, sealing it in an encryption envelope when a password is set.
func (s *S3Client) Upload(ctx context.Context, bucket, key string, data []byte) error {
	body := data
	contentType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	if s.password != "" {
		sealed, err := Encrypt(data, s.password)
		if err != nil {
			return fmt.Errorf("failed to encrypt upload: %w", err)
		}
		body = sealed
		contentType = "application/octet-stream"
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Int("size", len(body)).Bool("encrypted", s.password != "").Msg("uploaded template to S3")
	return nil
}

// Exists reports whether the object is present.
func (s *S3Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("head object failed: %w", err)
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *S3Client) Ping(ctx context.Context, bucket string) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", bucket, err)
	}
	return nil
}
