package publish

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound reports a key that does not exist in the registry.
var ErrNotFound = errors.New("publish: key not found")

// Registry is the storage a module registry is published into. Keys follow
// the GOPROXY layout, so any static file host that can serve them works as
// a module proxy.
type Registry interface {
	// Put stores an object under key.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get retrieves the object under key, or ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// S3Registry stores registry objects in an S3 bucket.
type S3Registry struct {
	client *s3.Client
	bucket string
}

// NewS3Registry creates a registry over an existing S3 client.
func NewS3Registry(client *s3.Client, bucket string) *S3Registry {
	return &S3Registry{client: client, bucket: bucket}
}

// NewS3Client builds an S3 client for the given region. A non-empty
// endpoint switches to path-style addressing for S3-compatible stores.
// Credentials come from the standard AWS environment variables.
func NewS3Client(region, endpoint string) *s3.Client {
	creds := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		}, nil
	})

	opts := s3.Options{
		Region:      region,
		Credentials: creds,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return s3.New(opts)
}

func (r *S3Registry) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (r *S3Registry) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (r *S3Registry) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Ping verifies the bucket is reachable with the current credentials.
func (r *S3Registry) Ping(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	return err
}
