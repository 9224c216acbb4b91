package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DocumentStore presigns read access to uploaded documents held in an
// S3-compatible bucket (AWS S3 or MinIO).
type DocumentStore struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for MinIO
	PathStyle bool
	URLTTL    time.Duration
}

func NewDocumentStore(ctx context.Context, cfg Config) (*DocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("document bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &DocumentStore{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
	}, nil
}

// SignDocumentURL returns a time-limited GET URL for one document. Object
// keys follow patients/{patient}/samples/{sample}/{type}/{filename}.
func (s *DocumentStore) SignDocumentURL(ctx context.Context, patientUID, sampleUID uuid.UUID, documentType, filename string) (string, time.Time, error) {
	key := documentKey(patientUID, sampleUID, documentType, filename)
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = s.ttl
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return out.URL, time.Now().Add(s.ttl), nil
}

func documentKey(patientUID, sampleUID uuid.UUID, documentType, filename string) string {
	return path.Join(
		"patients", patientUID.String(),
		"samples", sampleUID.String(),
		documentType, filename,
	)
}
