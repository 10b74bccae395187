package services

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StorageService provides file storage functionality for shop photos
type StorageService struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
}

// NewStorageService creates a new storage service
func NewStorageService() (*StorageService, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := os.Getenv("S3_BUCKET")

	if accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("S3 configuration missing")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("us-east-1"),
		Endpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(
			accessKey,
			secretKey,
			"",
		),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s3Client := s3.New(sess)

	baseURL := fmt.Sprintf("https://%s", bucket)

	return &StorageService{
		s3Client: s3Client,
		bucket:   bucket,
		baseURL:  baseURL,
	}, nil
}

// UploadShopPhoto uploads a shop photo and returns the public URL and S3 key
func (s *StorageService) UploadShopPhoto(fileHeader *multipart.FileHeader, shopID uuid.UUID) (string, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Detect content type from the first bytes
	buffer := make([]byte, 512)
	_, err = file.Read(buffer)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file for content type detection: %w", err)
	}
	file.Seek(0, 0)

	contentType := http.DetectContentType(buffer)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", fmt.Errorf("unsupported content type: %s", contentType)
	}

	fileID := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	s3Key := fmt.Sprintf("shops/%s/photos/%s%s", shopID, fileID, ext)

	// Upload without ACL, the bucket carries a public read policy
	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s", s.baseURL, s3Key)

	log.Info().Str("shop_id", shopID.String()).Str("key", s3Key).Msg("shop photo uploaded")
	return publicURL, s3Key, nil
}

// DeleteFile removes an object from S3
func (s *StorageService) DeleteFile(s3Key string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}
