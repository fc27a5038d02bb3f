// ABOUTME: Resolves document locations: local files, doublestar globs, stdin and s3:// objects
// ABOUTME: The S3 client is built lazily from config on first use

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/nainya/spdxtv/internal/config"
)

const (
	// Stdin is the location that reads standard input
	Stdin    = "-"
	s3Scheme = "s3://"
)

var (
	ErrNoMatch     = errors.New("source: pattern matched no files")
	ErrBadLocation = errors.New("source: malformed s3 location")
)

// Expand turns patterns into concrete locations. Stdin and s3:// locations
// pass through; everything else is matched as a doublestar glob. Each
// location appears once, in first-seen order.
func Expand(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if p == Stdin || strings.HasPrefix(p, s3Scheme) {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("source: %s: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, p)
		}
		for _, m := range matches {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// ParseS3 splits s3://bucket/key
func ParseS3(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrBadLocation, location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrBadLocation, location)
	}
	return bucket, key, nil
}

// ObjectGetter is the part of the S3 client the opener uses
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener opens locations produced by Expand
type Opener struct {
	cfg   config.S3Config
	stdin io.Reader

	once   sync.Once
	client ObjectGetter
	err    error
}

func NewOpener(cfg config.S3Config) *Opener {
	return &Opener{cfg: cfg, stdin: os.Stdin}
}

// WithClient replaces the lazily built S3 client
func (o *Opener) WithClient(c ObjectGetter) *Opener {
	o.once.Do(func() {})
	o.client = c
	return o
}

// WithStdin replaces standard input
func (o *Opener) WithStdin(r io.Reader) *Opener {
	o.stdin = r
	return o
}

func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch {
	case location == Stdin:
		return io.NopCloser(o.stdin), nil
	case strings.HasPrefix(location, s3Scheme):
		return o.openS3(ctx, location)
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		return f, nil
	}
}

func (o *Opener) openS3(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", location, err)
	}
	return out.Body, nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.once.Do(func() {
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.cfg.Region)}
		if o.cfg.Endpoint != "" {
			opts = append(opts, awsconfig.WithBaseEndpoint(o.cfg.Endpoint))
		}
		if o.cfg.AccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(o.cfg.AccessKey, o.cfg.SecretKey, ""),
			))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			o.err = fmt.Errorf("source: aws config: %w", err)
			return
		}
		o.client = s3.NewFromConfig(cfg, func(so *s3.Options) {
			so.UsePathStyle = o.cfg.PathStyle
		})
	})
	return o.client, o.err
}
