package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/gradekeeper/internal/server/config"
)

const s3Scheme = "s3://"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}

	openFile = os.Open
)

// Fetcher resolves an import source string to a readable stream. Local paths
// are opened directly; "s3://bucket/key" sources are fetched from the object
// store configured for the server (MinIO in the default deployment).
type Fetcher struct {
	config *sc.Config
}

func NewFetcher(config *sc.Config) *Fetcher {
	return &Fetcher{config: config}
}

// Fetch opens the source for reading. The caller closes the returned stream.
func (f *Fetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, s3Scheme) {
		return f.fetchS3(ctx, source)
	}
	file, err := openFile(source)
	if err != nil {
		return nil, fmt.Errorf("error opening import file: %w", err)
	}
	return file, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, source string) (io.ReadCloser, error) {
	bucket, key, err := splitS3URI(source)
	if err != nil {
		return nil, err
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(f.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			f.config.S3RootUser,     // MINIO_ROOT_USER
			f.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("error loading s3 config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(f.config.S3BaseEndpoint)
	})

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching s3 object: %w", err)
	}
	return out.Body, nil
}

func splitS3URI(source string) (bucket string, key string, err error) {
	rest := strings.TrimPrefix(source, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 source %q, want s3://bucket/key", source)
	}
	return bucket, key, nil
}
