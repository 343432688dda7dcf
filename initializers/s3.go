package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"

	s3client "vessel-works-backend/s3"
)

func InitS3(ctx context.Context) {
	client, err := s3client.NewClient()
	if err != nil {
		log.WithError(err).Error("failed to initialize s3 client")
		return
	}
	if err = client.EnsureBucket(ctx); err != nil {
		log.WithError(err).Error("failed to ensure media bucket")
	}
	s3client.Instance = client
	log.Info("s3 client initialized")
}
