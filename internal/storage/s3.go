package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rotisserie/eris"

	apperrors "github.com/codeinsight/insight-agent/internal/errors"
)

// s3API is the subset of the S3 client the store touches
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// RemoteStore is the primary storage tier. Persist writes go here first;
// loads of remote locators are dispatched here exactly, with no fallback.
type RemoteStore interface {
	// Put stores body under key in the configured bucket and returns the
	// remote locator
	Put(ctx context.Context, key string, body []byte) (Location, error)

	// Get fetches the exact object named by bucket and key
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Store implements RemoteStore against an S3 bucket.
type S3Store struct {
	client s3API
	bucket string
}

// NewS3Store builds an S3-backed remote tier and probes the target bucket.
// A failed probe (no credentials, missing bucket, denied access) returns an
// error; the caller logs it and runs with the remote tier disabled.
func NewS3Store(ctx context.Context, bucket string) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "s3: load aws config")
	}
	client := s3.NewFromConfig(awsCfg)

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, eris.Wrapf(err, "s3: head bucket %s", bucket)
	}

	return &S3Store{client: client, bucket: bucket}, nil
}

// newS3StoreWithClient is used by tests to inject a fake client
func newS3StoreWithClient(client s3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put uploads body as application/json and returns its s3:// locator
func (s *S3Store) Put(ctx context.Context, key string, body []byte) (Location, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", apperrors.NewTransientBackendError("s3 put failed", err)
	}
	return Location(remoteScheme + s.bucket + "/" + key), nil
}

// Get fetches the exact object at bucket/key. A missing key maps to a
// NOT_FOUND AppError, everything else to a transient backend failure.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, apperrors.NewNotFoundError("object s3://" + bucket + "/" + key)
		}
		return nil, apperrors.NewTransientBackendError("s3 get failed", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.NewTransientBackendError("s3 read body failed", err)
	}
	return body, nil
}
