// Package archive uploads rendered report documents to an S3-compatible
// bucket so they outlive the local database.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the settings needed to connect to an S3-compatible store.
type Config struct {
	Endpoint  string // custom endpoint URL (e.g. http://localhost:3900)
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string // key prefix inside the bucket, e.g. "reports"
}

// Client wraps an S3 client scoped to a single bucket.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates an archive Client from the given Config.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "reports"
	}

	return &Client{
		s3:     s3.NewFromConfig(awsCfg, opts...),
		bucket: cfg.Bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Store uploads one rendered document under the configured prefix and
// returns its object key.
func (c *Client) Store(ctx context.Context, filename string, pdf []byte) (string, error) {
	key := path.Join(c.prefix, filename)
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	c.logger.Info("report archived", "key", key, "bytes", len(pdf))
	return key, nil
}
