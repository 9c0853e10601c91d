package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/gradekeeper/internal/server/config"
)

func testFetcher() *Fetcher {
	return NewFetcher(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
	})
}

func TestSplitS3URI(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		bucket  string
		key     string
		wantErr bool
	}{
		{"ok", "s3://imports/2026/students.csv", "imports", "2026/students.csv", false},
		{"no key", "s3://imports", "", "", true},
		{"no bucket", "s3:///students.csv", "", "", true},
		{"empty key", "s3://imports/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := splitS3URI(tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.source)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitS3URI error: %v", err)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Fatalf("got %q/%q, want %q/%q", bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func TestFetch_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	if err := os.WriteFile(path, []byte(validCSV), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	rc, err := testFetcher().Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if string(data) != validCSV {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestFetch_LocalFileMissing(t *testing.T) {
	_, err := testFetcher().Fetch(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFetch_S3Object(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origGet := getObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		getObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var capturedBaseEndpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil {
			t.Fatalf("BaseEndpoint not set")
		}
		capturedBaseEndpoint = *opts.BaseEndpoint
		return &s3.Client{}
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		if *in.Bucket != "imports" || *in.Key != "students.csv" {
			t.Fatalf("unexpected object: %s/%s", *in.Bucket, *in.Key)
		}
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(validCSV))}, nil
	}

	rc, err := testFetcher().Fetch(context.Background(), "s3://imports/students.csv")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	defer rc.Close()

	if capturedBaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint mismatch: %q", capturedBaseEndpoint)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != validCSV {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestFetch_S3Errors(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origGet := getObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		getObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	if _, err := testFetcher().Fetch(context.Background(), "s3://imports/students.csv"); err == nil {
		t.Fatalf("expected config load error")
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, errors.New("no such key")
	}
	if _, err := testFetcher().Fetch(context.Background(), "s3://imports/students.csv"); err == nil {
		t.Fatalf("expected get object error")
	}

	if _, err := testFetcher().Fetch(context.Background(), "s3://bad"); err == nil {
		t.Fatalf("expected invalid uri error")
	}
}
