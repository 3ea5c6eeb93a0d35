// internal/common/aws/s3.go
package aws

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPrefix is prepended to every report key inside the bucket.
const ObjectPrefix = "student_reports/"

// loadConfig resolves the default credential chain for the given region.
// All clients in this package share it.
func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

// S3Client stores finished reports. All objects land in a single bucket
// under ObjectPrefix.
type S3Client struct {
	client *s3.Client
	bucket string
}

func NewS3Client(ctx context.Context, region, bucket string) (*S3Client, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &S3Client{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// NewS3ClientFrom wraps an already-configured s3.Client; used by tests.
func NewS3ClientFrom(client *s3.Client, bucket string) *S3Client {
	return &S3Client{client: client, bucket: bucket}
}

// Put writes body under ObjectPrefix+key, overwriting any previous object
// at the same key.
func (s *S3Client) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ObjectPrefix + key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}
