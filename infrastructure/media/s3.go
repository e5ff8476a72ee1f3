// Package media stores batch photos in S3 and hands out presigned URLs so
// the API never proxies image bytes.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
)

const presignTTL = 15 * time.Minute

// S3MediaStore implements ports.MediaStore on an S3 bucket.
type S3MediaStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewS3MediaStore creates a media store backed by the given bucket.
func NewS3MediaStore(client *s3.Client, bucket string, logger *zap.Logger) ports.MediaStore {
	return &S3MediaStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}
}

// PresignUpload returns a URL the client can PUT the photo to directly.
func (m *S3MediaStore) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := m.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignDownload returns a URL the client can GET the photo from directly.
func (m *S3MediaStore) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := m.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes a photo object.
func (m *S3MediaStore) Delete(ctx context.Context, key string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	m.logger.Debug("Photo deleted", zap.String("key", key))
	return nil
}
