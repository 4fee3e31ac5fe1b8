package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cavaliergopher/grab/v3"
	cfg "github.com/maheshrc27/igscheduler/configs"
)

// R2Service stores cached images as objects in a Cloudflare R2 bucket. Paths it hands out
// are object keys.
type R2Service struct {
	config  cfg.Config
	client  *s3.Client
	grab    *grab.Client
	prefix  string
	scratch string
}

func NewR2Service(ctx context.Context, c cfg.Config) (*R2Service, error) {
	client, err := R2Client(ctx, c.R2)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "igscheduler-r2-")
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &R2Service{
		config:  c,
		client:  client,
		grab:    grab.NewClient(),
		prefix:  path.Base(c.CacheImageFolder),
		scratch: scratch,
	}, nil
}

func R2Client(ctx context.Context, r2 cfg.R2) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	}), nil
}

func (r *R2Service) Fetch(ctx context.Context, url, name string) (string, error) {
	local := filepath.Join(r.scratch, name)
	if err := download(ctx, r.grab, url, local); err != nil {
		return "", err
	}
	defer removeQuietly(local)

	file, err := os.Open(local)
	if err != nil {
		return "", err
	}
	defer file.Close()

	head := make([]byte, 261)
	n, _ := io.ReadFull(file, head)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := path.Join(r.prefix, name)
	if err := r.UploadToR2(ctx, key, file, DetectContentType(head[:n])); err != nil {
		return "", err
	}
	return key, nil
}

// UploadToR2 puts body under key in the configured bucket.
func (r *R2Service) UploadToR2(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	_, err := r.client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *R2Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	})
	var missing *types.NoSuchKey
	if errors.As(err, &missing) {
		return nil, fmt.Errorf("%s: %w", key, fs.ErrNotExist)
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return out.Body, nil
}

func (r *R2Service) Remove(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
