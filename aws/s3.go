// Package aws defines functions used to interact with the object store
package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	v "github.com/spf13/viper"
)

// Uploads above this size go through the multipart manager
const multipartLimit = 32 << 20

type S3Client struct {
	C         *s3.Client
	Bucket    *string
	publicURL string
}

func NewS3() (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			v.GetString("s3.access_key_id"),
			v.GetString("s3.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(v.GetString("s3.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = v.GetString("s3.region")

		if endpoint := v.GetString("s3.endpoint"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:         client,
		Bucket:    bucket,
		publicURL: strings.TrimSuffix(v.GetString("s3.public_url"), "/"),
	}, nil
}

// Upload writes an object and returns the public URL it will be
// served from. Large bodies are split into concurrent parts.
func (s *S3Client) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}

	if size > multipartLimit {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		if _, err := u.Upload(ctx, in); err != nil {
			return "", fmt.Errorf("failed to upload object, %w", err)
		}
	} else {
		if _, err := s.C.PutObject(ctx, in); err != nil {
			return "", fmt.Errorf("failed to upload object, %w", err)
		}
	}

	return s.publicURL + "/" + key, nil
}

func (s *S3Client) Delete(ctx context.Context, key string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object, %w", err)
	}

	return nil
}
