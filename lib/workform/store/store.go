package workformstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.WorkFormEntry) (id string, err error)
	GetByID(id string) (*dbmodels.WorkFormEntry, error)
	// ListByWorkOrder returns entries sorted by the owning component's
	// sort order.
	ListByWorkOrder(workOrderID string) ([]dbmodels.WorkFormEntry, error)
	Update(id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.WorkFormEntry) (id string, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.WorkFormEntry, error) {
	rec := dbmodels.WorkFormEntry{}
	err := i.db.
		Where("id = ?", id).
		Preload("VesselComponent").
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

func (i impl) ListByWorkOrder(workOrderID string) ([]dbmodels.WorkFormEntry, error) {
	list := []dbmodels.WorkFormEntry{}
	err := i.db.
		Joins("JOIN vessel_components ON vessel_components.id = work_form_entries.vessel_component_id").
		Where("work_form_entries.work_order_id = ?", workOrderID).
		Order("vessel_components.sort_order ASC").
		Preload("VesselComponent").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.WorkFormEntry{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}
