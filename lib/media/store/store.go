package mediastore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Media) (id string, err error)
	// Update stamps the object key and final file name once the upload
	// has landed.
	Update(id, bucketKey, fileName string) error
	GetByID(id string) (*dbmodels.Media, error)
	Delete(id string) error
	ListByEntry(entryID string) ([]dbmodels.Media, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Media) (id string, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Update(id, bucketKey, fileName string) error {
	return i.db.
		Model(&dbmodels.Media{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"bucket_key": bucketKey,
			"file_name":  fileName,
		}).
		Error
}

func (i impl) GetByID(id string) (*dbmodels.Media, error) {
	rec := dbmodels.Media{}
	err := i.db.
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Delete(id string) error {
	return i.db.
		Where("id = ?", id).
		Delete(&dbmodels.Media{}).
		Error
}

func (i impl) ListByEntry(entryID string) ([]dbmodels.Media, error) {
	list := []dbmodels.Media{}
	err := i.db.
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
