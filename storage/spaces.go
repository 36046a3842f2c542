package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nijaru/yt-transcript/errors"
	pkgerrors "github.com/pkg/errors"
)

const remoteScheme = "s3://"

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	PathStyle bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SpacesWriter uploads transcripts to an S3-compatible bucket such as
// DigitalOcean Spaces.
type SpacesWriter struct {
	client putObjectAPI
}

func NewSpacesWriter(ctx context.Context, cfg SpacesConfig) (*SpacesWriter, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &SpacesWriter{client: client}, nil
}

func (s *SpacesWriter) Write(ctx context.Context, dest, text string) error {
	const op = "SpacesWriter.Write"

	bucket, key, err := ParseRemote(dest)
	if err != nil {
		return errors.WriteFailed(op, dest, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(strings.ToValidUTF8(text, "\uFFFD"))),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return errors.WriteFailed(op, dest, pkgerrors.Wrap(err, "failed to save to Spaces"))
	}
	return nil
}

func IsRemote(dest string) bool {
	return strings.HasPrefix(dest, remoteScheme)
}

// ParseRemote splits s3://bucket/key into its bucket and key.
func ParseRemote(dest string) (bucket, key string, err error) {
	if !IsRemote(dest) {
		return "", "", pkgerrors.Errorf("not an %s destination: %s", remoteScheme, dest)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(dest, remoteScheme), "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", pkgerrors.Errorf("destination must look like %sbucket/key: %s", remoteScheme, dest)
	}
	return bucket, key, nil
}
