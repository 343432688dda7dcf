package vesselstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Vessel) (id string, err error)
	GetByID(organisationID, id string) (*dbmodels.Vessel, error)
	Update(organisationID, id string, updMap map[string]interface{}) error
	SoftDelete(organisationID, id string) error
	List(organisationID string) ([]dbmodels.Vessel, error)
	AddComponent(rec dbmodels.VesselComponent) (id string, err error)
	DeleteComponent(vesselID, componentID string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Vessel) (id string, err error) {
	err = i.db.Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(organisationID, id string) (*dbmodels.Vessel, error) {
	rec := dbmodels.Vessel{}
	err := i.db.
		Where("id = ?", id).
		Where("organisation_id = ?", organisationID).
		Where("is_deleted = false").
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
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

func (i impl) Update(organisationID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.Vessel{}).
		Where("id = ?", id).
		Where("organisation_id = ?", organisationID).
		Where("is_deleted = false").
		Updates(updMap)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.New("record not found")
	}
	return nil
}

func (i impl) SoftDelete(organisationID, id string) error {
	return i.Update(organisationID, id, map[string]interface{}{"is_deleted": true})
}

func (i impl) List(organisationID string) ([]dbmodels.Vessel, error) {
	list := []dbmodels.Vessel{}
	err := i.db.
		Where("organisation_id = ?", organisationID).
		Where("is_deleted = false").
		Order("name ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) AddComponent(rec dbmodels.VesselComponent) (id string, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) DeleteComponent(vesselID, componentID string) error {
	return i.db.
		Where("id = ?", componentID).
		Where("vessel_id = ?", vesselID).
		Delete(&dbmodels.VesselComponent{}).
		Error
}
