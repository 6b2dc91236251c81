// Package storage issues pre-signed object storage URLs.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/gostones/s3relay/internal/config"
)

// PutObjectInput names the object a presigned PUT is issued for.
type PutObjectInput struct {
	Bucket      string
	Key         string
	ContentType string
	MD5         string // base64 coded MD5 checksum
}

// Signer issues a time-bounded URL authorizing a single PUT.
type Signer interface {
	PresignPut(ctx context.Context, input *PutObjectInput, expire time.Duration) (string, error)
}

// SignerFactory builds a Signer from storage settings.
type SignerFactory func(cfg config.Storage) (Signer, error)

// S3Signer presigns requests with static credentials.
type S3Signer struct {
	svc *s3.S3
}

// NewS3Signer returns a signer for cfg. Region "auto" is passed through to
// the SDK unchanged.
func NewS3Signer(cfg config.Storage) (Signer, error) {
	creds := credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	awsCfg := &aws.Config{
		Credentials:      creds,
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage session: %w", err)
	}
	return &S3Signer{svc: s3.New(sess)}, nil
}

// PresignPut returns the signed URL for input, valid for expire.
func (s *S3Signer) PresignPut(ctx context.Context, input *PutObjectInput, expire time.Duration) (string, error) {
	if expire <= 0 || expire > config.MaxExpiry {
		return "", fmt.Errorf("presign %s/%s: expiry %v out of range", input.Bucket, input.Key, expire)
	}

	put := &s3.PutObjectInput{
		Bucket: aws.String(input.Bucket),
		Key:    aws.String(input.Key),
	}
	if input.ContentType != "" {
		put.ContentType = aws.String(input.ContentType)
	}
	if input.MD5 != "" {
		put.ContentMD5 = aws.String(input.MD5)
	}

	req, _ := s.svc.PutObjectRequest(put)
	req.SetContext(ctx)

	url, err := req.Presign(expire)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", input.Bucket, input.Key, err)
	}
	return url, nil
}
