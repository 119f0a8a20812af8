package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pakegate/internal/server/config"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/users"
)

func withSQLMock(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" {
			return nil, errors.New("unexpected driver")
		}
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })
	return mock
}

func TestNew_Memory(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background()))
	assert.IsType(t, &users.MemoryRepository{}, m.Users())
	assert.Same(t, m.Users(), m.Users())
	assert.NoError(t, m.Close())
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), &config.Config{Storage: "tape"})
	assert.Error(t, err)
}

func TestNew_Postgres(t *testing.T) {
	mock := withSQLMock(t)
	mock.ExpectPing()

	cfg := &config.Config{Storage: config.StoragePostgres, DatabaseDSN: "postgres://x"}
	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &users.PostgresRepository{}, m.Users())

	mock.ExpectClose()
	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_PingFails(t *testing.T) {
	mock := withSQLMock(t)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	_, err := NewPostgresRepositoryManager(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
}

func TestRunMigrations(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}

	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if got != db || dir != "." || len(opts) != 0 {
			return errors.New("unexpected arguments")
		}
		return nil
	}
	require.NoError(t, m.RunMigrations(context.Background()))

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, m.RunMigrations(context.Background()), "boom")
}

func TestNew_S3(t *testing.T) {
	origLoad, origClient := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origClient })

	var gotRegion string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		gotRegion = lo.Region
		assert.NotNil(t, lo.Credentials, "static credentials expected")
		return aws.Config{Region: lo.Region}, nil
	}
	var gotOpts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) users.ObjectAPI {
		for _, fn := range optFns {
			fn(&gotOpts)
		}
		return &s3.Client{}
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Storage = config.StorageS3
	cfg.S3AccessKey = "admin"
	cfg.S3SecretKey = "secret"

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &users.S3Repository{}, m.Users())
	assert.Equal(t, "us-east-1", gotRegion)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(gotOpts.BaseEndpoint))
	assert.True(t, gotOpts.UsePathStyle)
	assert.NoError(t, m.RunMigrations(context.Background()))
	assert.NoError(t, m.Close())
}

func TestNew_S3ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewS3RepositoryManager(context.Background(), &config.Config{S3Bucket: "b"})
	assert.Error(t, err)
}
