// Package fsxs3 implements fsx.Storage against S3, probing s3://bucket/key
// locators with HeadObject.
package fsxs3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Abraxas-365/trainforge/pkg/errx"
)

// S3Storage probes object existence through an S3 client.
type S3Storage struct {
	client *s3.Client

	// defaultBucket serves locators that are bare keys instead of full
	// s3:// URLs. Optional.
	defaultBucket string
}

// New creates an S3-backed storage probe.
func New(client *s3.Client, defaultBucket string) *S3Storage {
	return &S3Storage{client: client, defaultBucket: defaultBucket}
}

// Exists reports whether the locator's object exists.
func (s *S3Storage) Exists(ctx context.Context, locator string) (bool, error) {
	bucket, key, err := s.resolve(locator)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errx.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe s3://%s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func (s *S3Storage) resolve(locator string) (bucket, key string, err error) {
	if rest, ok := strings.CutPrefix(locator, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return "", "", fmt.Errorf("malformed s3 locator %q", locator)
		}
		return bucket, key, nil
	}
	if s.defaultBucket == "" {
		return "", "", fmt.Errorf("locator %q is not an s3 url and no default bucket is set", locator)
	}
	return s.defaultBucket, strings.TrimPrefix(locator, "/"), nil
}
