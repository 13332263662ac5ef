package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	imagePrefix    = "imagenes/"
	documentPrefix = "libros/pdfs/"
	resolveExpiry  = 15 * time.Minute
)

type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("media bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Store puts the file under the kind's prefix with a uuid-based key. Returns
// the object key.
func (s *S3Store) Store(ctx context.Context, kind Kind, filename string, body io.Reader, contentType string) (string, error) {
	prefix := documentPrefix
	if kind == KindImage {
		prefix = imagePrefix
	}
	key := prefix + uuid.New().String() + filepath.Ext(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// ResolveURL returns a temporary download URL for the key, or "" when the key
// is empty or presigning fails. Failures are logged and swallowed so reads
// never break on a missing media backend.
func (s *S3Store) ResolveURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = resolveExpiry
	})
	if err != nil {
		log.Printf("media: resolve %s: %v", key, err)
		return ""
	}
	return req.URL
}

// Delete removes the object. Best-effort on entity deletion.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
