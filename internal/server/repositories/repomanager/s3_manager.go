package repomanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/pakegate/internal/server/config"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/users"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) users.ObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3RepositoryManager stores accounts as objects in one bucket.
type S3RepositoryManager struct {
	users *users.S3Repository
}

// NewS3RepositoryManager builds an S3 client. Static credentials are used
// when configured, otherwise the default AWS chain applies. A base endpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3RepositoryManager(ctx context.Context, cfg *config.Config) (*S3RepositoryManager, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3RepositoryManager{users: users.NewS3Repository(client, cfg.S3Bucket, cfg.S3Prefix)}, nil
}

func (m *S3RepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *S3RepositoryManager) Users() users.Repository            { return m.users }
func (m *S3RepositoryManager) Close() error                       { return nil }
