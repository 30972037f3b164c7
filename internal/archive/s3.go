package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sadanews/sada/internal/models"
)

// Config contains the S3-compatible storage settings (CloudFlare R2 in
// production).
type Config struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Archive writes articles removed by the retention trim to object
// storage so editorial history survives the cap.
type S3Archive struct {
	client *s3.Client
	bucket string
}

func NewS3Archive(ctx context.Context, cfg Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket name is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("archive credentials are required")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Archive stores one JSON object per batch under archive/YYYY/MM/DD/.
func (a *S3Archive) Archive(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal archived articles: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("archive/%s/%d.json", now.Format("2006/01/02"), now.UnixNano())

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put archive object: %w", err)
	}
	return nil
}
