package userstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	GetByEmail(email string) (*dbmodels.User, error)
	GetByID(id string) (*dbmodels.User, error)
	ListByIDs(ids []string) ([]dbmodels.User, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByEmail(email string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
	err := i.db.
		Where("email = ?", email).
		Where("is_active = true").
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

func (i impl) GetByID(id string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
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

func (i impl) ListByIDs(ids []string) ([]dbmodels.User, error) {
	list := []dbmodels.User{}
	if len(ids) == 0 {
		return list, nil
	}
	err := i.db.
		Where("id IN (?)", ids).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
