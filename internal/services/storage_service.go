// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/javajoker/digital-original/internal/config"
)

// StorageService writes archive objects to S3, or to a local directory when no
// AWS credentials are configured.
type StorageService struct {
	s3Client s3iface.S3API
	bucket   string
	region   string
	localDir string
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Local development
		return &StorageService{localDir: config.Events.LocalDir}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewStorageServiceWithClient(s3.New(sess), config.AWS.S3Bucket, config.AWS.Region), nil
}

func NewStorageServiceWithClient(client s3iface.S3API, bucket, region string) *StorageService {
	return &StorageService{
		s3Client: client,
		bucket:   bucket,
		region:   region,
	}
}

func NewLocalStorageService(dir string) *StorageService {
	return &StorageService{localDir: dir}
}

func (s *StorageService) PutObject(key string, body []byte, contentType string) (*UploadResult, error) {
	if s.s3Client != nil {
		return s.uploadToS3(body, key, contentType)
	}
	return s.uploadToLocal(body, key, contentType)
}

func (s *StorageService) uploadToS3(body []byte, key, contentType string) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		Key:      key,
		Size:     int64(len(body)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(body []byte, key, contentType string) (*UploadResult, error) {
	dest := filepath.Join(s.localDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write archive object: %w", err)
	}

	return &UploadResult{
		URL:      "file://" + dest,
		Key:      key,
		Size:     int64(len(body)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteObject(key string) error {
	if s.s3Client == nil {
		if err := os.Remove(filepath.Join(s.localDir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete archive object: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// ArchiveKey names an event batch object: prefix/2006/01/02/150405.000000_<id>.json
func ArchiveKey(prefix string, at time.Time) string {
	at = at.UTC()
	name := fmt.Sprintf("%s_%s.json", at.Format("150405.000000"), uuid.New().String()[:8])
	return path.Join(prefix, at.Format("2006/01/02"), name)
}
