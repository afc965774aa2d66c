package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"floorplan-studio/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

type BucketConfig struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// BucketWriter stores saved results in an S3-compatible bucket.
type BucketWriter struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func NewBucketWriter(cfg BucketConfig) *BucketWriter {
	s3Opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	awsCfg := aws.Config{Region: cfg.Region}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	logger.WithFields(logrus.Fields{
		"bucket":   cfg.Bucket,
		"endpoint": cfg.Endpoint,
	}).Info("Results bucket configured")

	return newBucketWriter(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, cfg.Prefix)
}

func newBucketWriter(client manager.UploadAPIClient, bucket, prefix string) *BucketWriter {
	return &BucketWriter{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// Save uploads content under prefix/filename and returns its s3:// location.
func (bw *BucketWriter) Save(ctx context.Context, filename, content string) (string, error) {
	key := path.Join(bw.prefix, path.Base(filename))

	_, err := bw.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bw.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload result: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", bw.bucket, key)
	logger.WithFields(logrus.Fields{
		"location": location,
		"bytes":    len(content),
	}).Info("Uploaded result file")

	return location, nil
}
