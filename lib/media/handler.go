package mediahandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/db"
	"vessel-works-backend/lib/apperr"
	mediastore "vessel-works-backend/lib/media/store"
	dbmodels "vessel-works-backend/models/db"
	s3client "vessel-works-backend/s3"
)

type Provider interface {
	// StoreDataURL decodes a base64 data URL (the screenshot wire
	// format), uploads the bytes and returns the media record id.
	StoreDataURL(ctx context.Context, organisationID, workOrderID, entryID, userID, dataURL string) (id string, err error)
	Upload(ctx context.Context, organisationID, workOrderID, userID, fileName, contentType string, reader io.Reader, size int64) (id string, err error)
	Download(ctx context.Context, id string) (rec *dbmodels.Media, body io.ReadCloser, err error)
	Delete(ctx context.Context, id string) error
	ListByEntry(entryID string) ([]dbmodels.Media, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:  mediastore.NewInstance(db.DB),
		client: s3client.Instance,
	}
}

func NewHandlerWithDeps(store mediastore.Provider, client s3client.Provider) Provider {
	return impl{
		store:  store,
		client: client,
	}
}

type impl struct {
	store  mediastore.Provider
	client s3client.Provider
}

var extByContentType = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// parseDataURL splits "data:image/png;base64,<payload>" into content
// type and raw bytes.
func parseDataURL(dataURL string) (contentType string, body []byte, err error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, apperr.Validation("not a data URL")
	}
	meta, payload, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", nil, apperr.Validation("malformed data URL")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	if contentType == meta {
		return "", nil, apperr.Validation("only base64 data URLs are supported")
	}
	body, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperr.Validation("invalid base64 payload")
	}
	return contentType, body, nil
}

func (i impl) StoreDataURL(ctx context.Context, organisationID, workOrderID, entryID, userID, dataURL string) (string, error) {
	contentType, body, err := parseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	ext, ok := extByContentType[contentType]
	if !ok {
		ext = "bin"
	}
	rec := dbmodels.Media{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrganisationID: organisationID,
		},
		WorkOrderID: &workOrderID,
		EntryID:     &entryID,
		ContentType: contentType,
		Size:        int64(len(body)),
		UploadedBy:  userID,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("work-orders/%v/entries/%v/%v.%v", workOrderID, entryID, id, ext)
	err = i.client.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), contentType)
	if err != nil {
		log.
			WithField("media_id", id).
			WithError(err).
			Error("failed to upload screenshot")
		if delErr := i.store.Delete(id); delErr != nil {
			log.WithField("media_id", id).WithError(delErr).Error("failed to clean up media record")
		}
		return "", errors.Wrap(err, "failed to upload screenshot")
	}
	err = i.store.Update(id, key, fmt.Sprintf("%v.%v", id, ext))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (i impl) Upload(ctx context.Context, organisationID, workOrderID, userID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	rec := dbmodels.Media{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrganisationID: organisationID,
		},
		WorkOrderID: &workOrderID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  userID,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("work-orders/%v/media/%v", workOrderID, id)
	err = i.client.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		log.
			WithField("media_id", id).
			WithError(err).
			Error("failed to upload media file")
		if delErr := i.store.Delete(id); delErr != nil {
			log.WithField("media_id", id).WithError(delErr).Error("failed to clean up media record")
		}
		return "", errors.Wrap(err, "failed to upload media file")
	}
	err = i.store.Update(id, key, fileName)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (i impl) Download(ctx context.Context, id string) (*dbmodels.Media, io.ReadCloser, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, apperr.NotFound("media not found")
	}
	body, err := i.client.Download(ctx, rec.BucketKey)
	if err != nil {
		return nil, nil, err
	}
	return rec, body, nil
}

func (i impl) Delete(ctx context.Context, id string) error {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return apperr.NotFound("media not found")
	}
	if err = i.client.Remove(ctx, rec.BucketKey); err != nil {
		log.
			WithField("media_id", id).
			WithError(err).
			Error("failed to remove media object")
		return err
	}
	return i.store.Delete(id)
}

func (i impl) ListByEntry(entryID string) ([]dbmodels.Media, error) {
	return i.store.ListByEntry(entryID)
}
