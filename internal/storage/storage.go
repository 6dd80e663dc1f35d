// Package storage wraps an S3-compatible object store for gated product
// files. The storefront never serves file bytes itself; it mints time-limited
// signed URLs and probes object existence.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultSignedURLExpiry bounds download links to one hour unless the caller
// asks otherwise.
const DefaultSignedURLExpiry = 3600 * time.Second

// Config contains object storage configuration.
type Config struct {
	Bucket         string        `env:"STORAGE_BUCKET,required"`
	Region         string        `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"STORAGE_ACCESS_KEY_ID"`
	SecretKey      string        `env:"STORAGE_SECRET_KEY"`
	Endpoint       string        `env:"STORAGE_ENDPOINT"`
	ForcePathStyle bool          `env:"STORAGE_FORCE_PATH_STYLE" envDefault:"true"`
	SignedURLTTL   time.Duration `env:"STORAGE_SIGNED_URL_TTL" envDefault:"1h"`
}

// Client is the S3 surface the storage layer uses. Satisfied by *s3.Client
// and by mocks in tests.
type Client interface {
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3aws.ListObjectsV2Input, optFns ...func(*s3aws.Options)) (*s3aws.ListObjectsV2Output, error)
}

// Presigner mints presigned GET requests. Satisfied by *s3.PresignClient.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Storage provides signed-URL and existence operations against one bucket.
type Storage struct {
	client    Client
	presigner Presigner
	bucket    string
}

// Option configures Storage construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	client     Client
	presigner  Presigner
}

// WithClient sets a pre-configured S3 client, primarily for tests.
func WithClient(c Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithPresigner sets a custom presign client, primarily for tests.
func WithPresigner(p Presigner) Option {
	return func(o *options) {
		o.presigner = p
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// New creates a Storage instance for the configured bucket.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretKey, "",
				)),
			)
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, awsconfig.WithHTTPClient(o.httpClient))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}

		client = s3aws.NewFromConfig(awsCfg, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	presigner := o.presigner
	if presigner == nil {
		if real, ok := client.(*s3aws.Client); ok {
			presigner = s3aws.NewPresignClient(real)
		} else {
			// Mock clients must provide their own presigner.
			return nil, fmt.Errorf("%w: presigner required for custom client", ErrInvalidConfig)
		}
	}

	return &Storage{
		client:    client,
		presigner: presigner,
		bucket:    cfg.Bucket,
	}, nil
}

// SignedURL mints a presigned GET URL for a single object. The expiry bounds
// how long the capability remains valid; zero or negative falls back to the
// default hour.
func (s *Storage) SignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	objectPath, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = DefaultSignedURLExpiry
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	}, func(po *s3aws.PresignOptions) {
		po.Expires = expiry
	})
	if err != nil {
		return "", classifyError(err, "presign object")
	}
	return req.URL, nil
}

// Exists reports whether the object is present. Provider errors degrade to
// false.
func (s *Storage) Exists(ctx context.Context, objectPath string) bool {
	objectPath, err := cleanPath(objectPath)
	if err != nil {
		return false
	}

	_, err = s.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	})
	return err == nil
}

// List returns the object names directly under dir. When search is non-empty
// only exact filename matches are returned, mirroring the provider's
// list-with-search probe.
func (s *Storage) List(ctx context.Context, dir, search string) ([]string, error) {
	dir, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}

	prefix := dir
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	resp, err := s.client.ListObjectsV2(ctx, &s3aws.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, classifyError(err, "list directory")
	}

	var names []string
	for _, obj := range resp.Contents {
		key := aws.ToString(obj.Key)
		if key == prefix {
			continue
		}
		name := strings.TrimPrefix(key, prefix)
		if strings.Contains(name, "/") {
			continue
		}
		if search != "" && name != search {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if strings.Contains(p, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	if p == "" {
		return "", nil
	}
	return path.Clean(p), nil
}
