package mediaforge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrObjectNotFound is returned by ObjectStore.Get when the key does not
// exist, distinguished from any other (transient) SDK error per §4.3.
var ErrObjectNotFound = errors.New("mediaforge: object not found")

// StoredObject is a stored preview's bytes and recorded content-type.
type StoredObject struct {
	Body        io.ReadCloser
	ContentType string
}

// ObjectStore is a thin capability over an S3-compatible bucket.
type ObjectStore struct {
	client *s3.Client
	bucket string
}

// NewObjectStore builds an ObjectStore from the given settings. When no
// access key is configured, it falls back to anonymous credentials rather
// than erroring, matching the original store's "public bucket is fine"
// posture.
func NewObjectStore(ctx context.Context, settings ObjectStoreSettings) (*ObjectStore, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if settings.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(settings.Region))
	}
	if settings.AccessKeyID != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				settings.AccessKeyID, settings.SecretAccessKey, settings.SessionToken,
			),
		))
	} else {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("mediaforge: loading object store config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{client: client, bucket: settings.BucketForMedia}, nil
}

// Put stores bytes under key, recording contentType as object metadata.
// Puts are idempotent: re-putting the same id overwrites in place.
func (s *ObjectStore) Put(ctx context.Context, id string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(StorageKey(id)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("mediaforge: put %s: %w", id, err)
	}
	return nil
}

// Get retrieves the object for id. The caller must Close the returned
// StoredObject.Body. Returns ErrObjectNotFound for a missing key and a
// wrapped SDK error for anything else (transient condition, per §4.3).
func (s *ObjectStore) Get(ctx context.Context, id string) (*StoredObject, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(StorageKey(id)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("mediaforge: get %s: %w", id, err)
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}
	return &StoredObject{Body: out.Body, ContentType: contentType}, nil
}
