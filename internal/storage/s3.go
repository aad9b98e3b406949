package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure S3Publisher implements model.Publisher.
var _ model.Publisher = (*S3Publisher)(nil)

// S3API is the subset of the S3 client the publisher needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
}

// S3Publisher uploads rendered documents to a bucket and returns their
// virtual-hosted URL.
type S3Publisher struct {
	client S3API
	bucket string
	logger *slog.Logger

	mu     sync.Mutex
	region string // cached after the first successful lookup
}

// NewS3Publisher creates a publisher for bucket.
func NewS3Publisher(client S3API, bucket string, logger *slog.Logger) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, logger: logger}
}

// Publish writes body under key and returns the object URL.
func (p *S3Publisher) Publish(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	p.logger.Info("uploading object", "bucket", p.bucket, "key", key, "bytes", len(body))

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noBucket) {
			return "", fmt.Errorf("bucket %s does not exist: %w", p.bucket, err)
		}
		return "", fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}

	region, err := p.bucketRegion(ctx)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, region, key)
	p.logger.Info("object uploaded", "url", url)
	return url, nil
}

func (p *S3Publisher) bucketRegion(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.region != "" {
		return p.region, nil
	}

	out, err := p.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(p.bucket),
	})
	if err != nil {
		return "", fmt.Errorf("get bucket location for %s: %w", p.bucket, err)
	}

	// Buckets in us-east-1 report an empty location constraint.
	region := string(out.LocationConstraint)
	if region == "" {
		region = "us-east-1"
	}
	p.region = region
	return region, nil
}
