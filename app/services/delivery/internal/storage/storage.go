// Package storage issues short-lived URLs for objects kept in the S3 compatible
// bucket (Backblaze B2) that holds ebook files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNoBucket = errors.New("no bucket configured for object")

// SignedURLer returns a URL that lets anyone holding it fetch the object until ttl elapses.
type SignedURLer interface {
	SignedDownloadURL(ctx context.Context, fileName, bucket string, ttl time.Duration, displayName string) (string, error)
}

type Conf struct {
	Endpoint string
	Region   string
	KeyID    string
	AppKey   string
	Bucket   string
}

type S3Presigner struct {
	presign *s3.PresignClient
	bucket  string
}

func NewS3Presigner(ctx context.Context, c Conf) (*S3Presigner, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.KeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.KeyID, c.AppKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Presigner{
		presign: s3.NewPresignClient(client),
		bucket:  c.Bucket,
	}, nil
}

// SignedDownloadURL presigns a GET for fileName. The configured bucket always
// wins; bucket is a per-product B2 identifier and is only used as the bucket
// name when none is configured.
func (p *S3Presigner) SignedDownloadURL(ctx context.Context, fileName, bucket string, ttl time.Duration, displayName string) (string, error) {
	if p.bucket != "" {
		bucket = p.bucket
	}
	if bucket == "" {
		return "", ErrNoBucket
	}
	if displayName == "" {
		displayName = path.Base(fileName)
	}

	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(fileName),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", displayName)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, fileName, err)
	}
	return req.URL, nil
}
