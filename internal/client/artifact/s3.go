package artifact

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetObjectAPI is the part of *s3.Client the fetcher uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) GetObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// S3Fetcher reads results from the configured bucket. It accepts
// s3://bucket/key and https://bucket.<endpoint host>/key references, the
// latter being how Spaces CDN URLs look.
type S3Fetcher struct {
	bucket string
	api    GetObjectAPI
}

func NewS3Fetcher(ctx context.Context, cfg S3Config) (*S3Fetcher, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Fetcher{bucket: cfg.Bucket, api: api}, nil
}

// Match returns the object key when ref points into the bucket.
func (f *S3Fetcher) Match(ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", false
	}
	host := u.Hostname()
	switch {
	case u.Scheme == "s3" && host == f.bucket:
		return key, true
	case (u.Scheme == "http" || u.Scheme == "https") && strings.HasPrefix(host, f.bucket+"."):
		return key, true
	default:
		return "", false
	}
}

func (f *S3Fetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	key, ok := f.Match(ref)
	if !ok {
		return nil, fmt.Errorf("%q is not in bucket %s", ref, f.bucket)
	}
	out, err := f.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}
