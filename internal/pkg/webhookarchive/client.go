package webhookarchive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// objectAPI is the part of the S3 client the archive uses.
type objectAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client stores raw billing webhook payloads in an S3 bucket.
type Client struct {
	api    objectAPI
	config *Config
	log    logrus.FieldLogger
}

// NewClient creates the S3 client and checks that the bucket is reachable.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("webhook archive is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible stores (MinIO, B2) want path-style URLs
			o.UsePathStyle = true
		}
	})

	client := newClient(s3Client, cfg)
	if _, err := client.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", cfg.BucketName, err)
	}

	client.log.WithField("bucket", cfg.BucketName).Info("webhook archive initialised")
	return client, nil
}

func newClient(api objectAPI, cfg *Config) *Client {
	return &Client{api: api, config: cfg, log: logging.Component("webhookarchive")}
}

// ArchiveWebhook uploads one raw payload. Keys are derived from the event id,
// so redelivered events overwrite the same object.
func (c *Client) ArchiveWebhook(ctx context.Context, provider, eventID string, receivedAt time.Time, payload []byte) error {
	key := c.config.ObjectKey(provider, eventID, receivedAt)

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(payload))),
		Metadata: map[string]string{
			"provider":    provider,
			"event-id":    eventID,
			"received-at": receivedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload webhook payload: %w", err)
	}

	c.log.WithFields(logrus.Fields{"bucket": c.config.BucketName, "key": key}).Debug("webhook payload archived")
	return nil
}
