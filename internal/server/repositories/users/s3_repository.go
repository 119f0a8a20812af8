package users

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/server/models"
)

// ObjectAPI is the subset of *s3.Client the repository uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Repository stores one JSON object per account. Writes are create-only
// (If-None-Match: *), so a second registration of the same username loses.
type S3Repository struct {
	client ObjectAPI
	bucket string
	prefix string
}

func NewS3Repository(client ObjectAPI, bucket, prefix string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, prefix: prefix}
}

type s3UserDocument struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Suite      string    `json:"suite"`
	Credential []byte    `json:"credential"`
	Wallet     string    `json:"wallet"`
	Salt       string    `json:"salt"`
	CreatedAt  time.Time `json:"created_at"`
}

// objectKey hex-encodes the username so any byte sequence maps to a safe key.
func (r *S3Repository) objectKey(username string) string {
	return path.Join(r.prefix, hex.EncodeToString([]byte(username))+".json")
}

func (r *S3Repository) FindByUsername(ctx context.Context, username string) (*models.UserRecord, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(username)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("s3 error: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 error: %w", err)
	}

	var doc s3UserDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}

	return &models.UserRecord{
		ID:         doc.ID,
		Username:   doc.Username,
		Suite:      doc.Suite,
		Credential: doc.Credential,
		Wallet:     doc.Wallet,
		Salt:       doc.Salt,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (r *S3Repository) Save(ctx context.Context, rec *models.UserRecord) error {
	body, err := json.Marshal(s3UserDocument{
		ID:         rec.ID,
		Username:   rec.Username,
		Suite:      rec.Suite,
		Credential: rec.Credential,
		Wallet:     rec.Wallet,
		Salt:       rec.Salt,
		CreatedAt:  rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode user document: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.objectKey(rec.Username)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isS3AlreadyExists(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("s3 error: %w", err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isS3AlreadyExists(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}
