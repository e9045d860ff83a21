package cache

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Endpoint overrides the SDK's default endpoint resolution, the same
// way the teacher's S3ClipStorageOpts.Endpoint/ForcePathStyle point the
// client at an S3-compatible bucket (localstack, MinIO) instead of AWS
// proper. Empty means "use the SDK default".
type S3Endpoint struct {
	URL            string
	ForcePathStyle bool
}

// parseS3URL splits an "s3://bucket/key" source identifier, the scheme
// used for content-library mirrors served off an S3-backed CDN bucket.
func parseS3URL(raw string) (bucket, key string, ok bool) {
	const prefix = "s3://"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", false
	}
	rest := raw[len(prefix):]
	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

// fetchS3 downloads a full object, the same aws-sdk-go-v2 GetObject call
// the teacher's pkg/storage/s3.go uses for range reads, minus the Range
// header since the Cache Manager always wants the whole archive.
func fetchS3(ctx context.Context, bucket, key string, endpoint S3Endpoint) ([]byte, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if endpoint.URL != "" {
		optFns = append(optFns, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint.URL, SigningRegion: region}, nil
			}),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, ErrMiss
	}

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint.ForcePathStyle
	})
	out, err := svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ErrMiss
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, ErrMiss
	}
	return buf.Bytes(), nil
}
