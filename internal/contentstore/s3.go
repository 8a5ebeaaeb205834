package contentstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const objectPrefix = "content/"

// S3Store pins content into an S3-compatible bucket (R2 in production),
// keyed by the SHA-256 of the bytes. Pinning the same content twice writes
// the same key, so the store naturally deduplicates across users.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds a store client for an R2 bucket using static credentials
// and the account-scoped endpoint.
func NewS3Store(accessKey, secretKey, accountID, bucket, region, publicBaseURL string) *S3Store {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		Region:      region,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Println("Successfully initialized content store client")

	return &S3Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
	}
}

// Pin uploads the bytes under their content hash and returns the hash along
// with a public retrieval URL.
func (s *S3Store) Pin(ctx context.Context, data []byte, fileName, mimeType string) (PinResult, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	key := objectPrefix + hash

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
		Metadata: map[string]string{
			"original-name": fileName,
		},
	})
	if err != nil {
		return PinResult{}, &PinError{Reason: classify(err), Err: err}
	}

	return PinResult{
		ContentHash:  hash,
		RetrievalURL: s.publicBaseURL + "/" + key,
	}, nil
}

// Unpin removes the object for the given hash. A hash that is already gone
// is treated as success.
func (s *S3Store) Unpin(ctx context.Context, contentHash string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPrefix + contentHash),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		return &PinError{Reason: classify(err), Err: err}
	}
	return nil
}

// classify maps S3 error codes onto the failure taxonomy. Anything
// unrecognized counts as transient and is safe for callers to retry.
func classify(err error) FailureReason {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return ReasonTransient
	}

	switch apiErr.ErrorCode() {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return ReasonAuth
	case "EntityTooLarge", "MaxMessageLengthExceeded":
		return ReasonSize
	case "QuotaExceeded", "ServiceQuotaExceededException":
		return ReasonQuota
	}
	return ReasonTransient
}
