package store

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
)

const (
	maxRetries     = 4
	defaultBackoff = 500 * time.Millisecond
)

// error codes for which retrying cannot help
var permanent = map[string]bool{
	"NoSuchKey":    true,
	"NoSuchBucket": true,
	"AccessDenied": true,
}

// retryable reports whether a failed request may succeed if repeated
func retryable(err error) bool {
	var missing *types.NoSuchKey
	if errors.As(err, &missing) {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return !permanent[apiErr.ErrorCode()]
	}

	return true
}

type Config struct {
	// "http://127.0.0.1:9000"
	Endpoint string
	// "us-east-1"
	Region    string
	AccessKey string
	SecretKey string
}

// Connect returns a client for the S3 (or S3-compatible) endpoint. If no endpoint is given, the
// default AWS endpoint for the region is used. Without an access key, credentials and any unset
// region come from the SDK's default chain (environment, shared config files, instance roles).
func Connect(ctx context.Context, config Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load AWS configuration\n")
	}

	return s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ObjectGetter is the part of *s3.Client that Bucket uses
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type bucket struct {
	client ObjectGetter
	name   string
	prefix string

	backoff time.Duration
}

// Bucket returns a Store of the objects in the named bucket whose keys start with prefix.
//
// Failed requests are retried with a Fibonacci backoff, up to 4 times. Missing keys, missing
// buckets and denied requests are not retried.
func Bucket(client ObjectGetter, name, prefix string) Store {
	return &bucket{
		client:  client,
		name:    name,
		prefix:  prefix,
		backoff: defaultBackoff,
	}
}

func (b *bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(b.prefix, name)

	var body io.ReadCloser
	err := retry.Do(ctx, retry.WithMaxRetries(maxRetries, retry.NewFibonacci(b.backoff)), func(ctx context.Context) error {
		out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.name),
			Key:    aws.String(key),
		})
		if err != nil {
			if !retryable(err) {
				return err
			}

			log.Warn(fmt.Sprintf("get s3://%s/%s: %v, will retry", b.name, key, err))
			return retry.RetryableError(err)
		}

		body = out.Body
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get s3://%s/%s\n", b.name, key)
	}

	return body, nil
}
