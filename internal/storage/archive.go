package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archiver stores a run report and returns where it went.
type Archiver interface {
	Archive(ctx context.Context, kind, date string, report any) (string, error)
}

// S3Config holds the connection settings of an S3-compatible store.
type S3Config struct {
	Region   string
	Endpoint string // empty for AWS
	Key      string
	Secret   string
}

// NewS3Client creates an S3 client. Static credentials are used when Key is
// set, otherwise the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// PutObjectAPI is the part of the S3 client the archive needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes reports as JSON objects keyed
// <prefix><kind>/<date>/<run id>.json.
type S3Archive struct {
	client PutObjectAPI
	bucket string
	prefix string
	newID  func() string
	now    func() time.Time
}

// NewS3Archive creates an archive in bucket.
func NewS3Archive(client PutObjectAPI, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

type envelope struct {
	Kind       string `json:"kind"`
	Date       string `json:"date"`
	RunID      string `json:"runId"`
	ArchivedAt string `json:"archivedAt"`
	Report     any    `json:"report"`
}

// Archive implements Archiver.
func (a *S3Archive) Archive(ctx context.Context, kind, date string, report any) (string, error) {
	id := a.newID()
	data, err := json.MarshalIndent(envelope{
		Kind:       kind,
		Date:       date,
		RunID:      id,
		ArchivedAt: a.now().UTC().Format(time.RFC3339),
		Report:     report,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s report: %w", kind, err)
	}

	key := a.prefix + path.Join(kind, date, id+".json")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading s3://%s/%s: %w", a.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
