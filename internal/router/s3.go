package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 routing errors.
var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrUploadFailed   = errors.New("upload failed")
)

// S3Client is the subset of the S3 API used by the router.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds the settings for the S3 routing backend.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKeyID    string
	SecretKey      string
	ForcePathStyle bool
	Prefix         string
}

// S3Option configures an S3 router.
type S3Option func(*S3)

// WithS3Client sets a custom S3 client, bypassing AWS config loading.
func WithS3Client(client S3Client) S3Option {
	return func(r *S3) {
		r.client = client
	}
}

// WithS3RouterOptions applies common router options.
func WithS3RouterOptions(opts ...Option) S3Option {
	return func(r *S3) {
		r.opts = buildOptions(opts)
	}
}

// S3 uploads routed batches to a bucket and removes the local file.
// Objects land under "<prefix>/processed/" or "<prefix>/quarantine/".
type S3 struct {
	client S3Client
	bucket string
	prefix string
	opts   options
}

// NewS3 creates an S3 router. Without WithS3Client the client is built from
// the default AWS config chain, using static credentials when both keys are set.
func NewS3(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	r := &S3{
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		opts:   buildOptions(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client != nil {
		return r, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return r, nil
}

// Key returns the object key for a destination file name.
func (r *S3) Key(outcome Outcome, name string) string {
	area := "processed"
	if outcome == Quarantine {
		area = "quarantine"
	}
	return path.Join(r.prefix, area, name)
}

// Route implements Router. The returned destination is an s3:// URI.
func (r *S3) Route(ctx context.Context, src string, outcome Outcome) (string, error) {
	if err := checkSource(src); err != nil {
		return "", err
	}

	key := r.Key(outcome, DestName(src, outcome, r.opts.now()))

	f, err := os.Open(src) //nolint:gosec // src is the configured batch file
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(src)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	_, err = r.client.PutObject(ctx, input)
	_ = f.Close()
	if err != nil {
		return "", classifyS3Error(err)
	}

	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove uploaded source: %w", err)
	}

	dest := fmt.Sprintf("s3://%s/%s", r.bucket, key)
	r.opts.logger.Info("batch routed",
		slog.String("outcome", string(outcome)),
		slog.String("from", src),
		slog.String("to", dest))
	return dest, nil
}

func classifyS3Error(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}
	}

	return errors.Join(ErrUploadFailed, err)
}
