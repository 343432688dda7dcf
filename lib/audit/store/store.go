package auditstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.AuditEntry) (id string, err error)
	// Last returns the entry with the highest sequence, nil when the
	// chain is empty.
	Last() (*dbmodels.AuditEntry, error)
	ListByEntity(entityType, entityID string, limit int) ([]dbmodels.AuditEntry, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.AuditEntry) (id string, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Last() (*dbmodels.AuditEntry, error) {
	rec := dbmodels.AuditEntry{}
	err := i.db.
		Order("sequence DESC").
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

func (i impl) ListByEntity(entityType, entityID string, limit int) ([]dbmodels.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list := []dbmodels.AuditEntry{}
	err := i.db.
		Where("entity_type = ?", entityType).
		Where("entity_id = ?", entityID).
		Order("sequence DESC").
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
