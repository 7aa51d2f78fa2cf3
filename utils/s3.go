package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to a bucket and returns their CloudFront URL.
type S3Store struct {
	client  objectPutter
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Store(ctx context.Context, region, bucket, prefix, cloudFrontURL string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}
	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: strings.TrimRight(cloudFrontURL, "/"),
	}, nil
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.baseURL == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}
