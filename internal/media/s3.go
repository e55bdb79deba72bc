package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	KeyPrefix       string
}

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	errMissingBucket        = errors.New("s3 bucket is required")
	errMissingRegion        = errors.New("s3 region is required")
	errMissingObjectAPI     = errors.New("s3 client is required")
	errMissingPublicBaseURL = errors.New("s3 public base url is required")
)

// S3Store uploads objects to a bucket and references them by public URL.
type S3Store struct {
	api           ObjectAPI
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Client builds an S3 client with static credentials. A custom endpoint
// switches to path-style addressing for S3-compatible providers.
func NewS3Client(cfg S3Config) (*s3.Client, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, errMissingRegion
	}
	awsConfig := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Store wraps api. When PublicBaseURL is empty the virtual-hosted AWS URL is used.
func NewS3Store(api ObjectAPI, cfg S3Config) (*S3Store, error) {
	if api == nil {
		return nil, errMissingObjectAPI
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errMissingBucket
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		if strings.TrimSpace(cfg.Region) == "" {
			return nil, errMissingPublicBaseURL
		}
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, strings.TrimSpace(cfg.Region))
	}
	return &S3Store{
		api:           api,
		bucket:        bucket,
		keyPrefix:     strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/"),
		publicBaseURL: baseURL,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	objectKey := clean
	if s.keyPrefix != "" {
		objectKey = path.Join(s.keyPrefix, clean)
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}
	return s.publicBaseURL + "/" + objectKey, nil
}

func (s *S3Store) Remove(ctx context.Context, ref string) error {
	objectKey, ok := s.objectKey(ref)
	if !ok {
		return nil
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3Store) Owns(ref string) bool {
	_, ok := s.objectKey(ref)
	return ok
}

func (s *S3Store) objectKey(ref string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	objectKey := strings.TrimPrefix(ref, prefix)
	if objectKey == "" {
		return "", false
	}
	return objectKey, true
}
