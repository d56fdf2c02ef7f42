package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dealer_sync/config"
)

// ObjectPutter is the subset of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher mirrors each written snapshot to S3-compatible storage so other
// tools can read it without access to the local disk.
type S3Publisher struct {
	client ObjectPutter
	bucket string
	key    string
}

func NewS3Publisher(ctx context.Context, cfg config.S3Config) (*S3Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return NewS3PublisherWithClient(client, cfg.Bucket, cfg.Key), nil
}

func NewS3PublisherWithClient(client ObjectPutter, bucket, key string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, key: key}
}

// Publish uploads the encoded snapshot under the configured key.
func (p *S3Publisher) Publish(ctx context.Context, data []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", p.bucket, p.key, err)
	}
	return nil
}

func (p *S3Publisher) Location() string {
	return fmt.Sprintf("s3://%s/%s", p.bucket, p.key)
}
