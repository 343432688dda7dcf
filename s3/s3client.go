package s3client

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vessel-works-backend/config"
)

var Instance Provider

type Provider interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

func NewClient() (Provider, error) {
	minioClient, err := minio.New(config.Conf.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Conf.S3.AccessKeyID, config.Conf.S3.SecretAccessKey, ""),
		Secure: config.Conf.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &s3client{minioClient: minioClient}, nil
}

type s3client struct {
	minioClient *minio.Client
}

func (s s3client) EnsureBucket(ctx context.Context) error {
	bucketName := config.Conf.S3.BucketName
	exists, err := s.minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: config.Conf.S3.Region})
}

func (s s3client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.minioClient.PutObject(ctx, config.Conf.S3.BucketName, key, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s s3client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.minioClient.GetObject(ctx, config.Conf.S3.BucketName, key, minio.GetObjectOptions{})
}

func (s s3client) Remove(ctx context.Context, key string) error {
	return s.minioClient.RemoveObject(ctx, config.Conf.S3.BucketName, key, minio.RemoveObjectOptions{})
}
