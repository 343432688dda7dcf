package assignmentstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vessel-works-backend/models"
	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	// Upsert creates the assignment or updates the role of an existing
	// one; unique per (workOrderId, userId).
	Upsert(workOrderID, userID string, role models.AssignmentRole) error
	Delete(workOrderID, userID string) error
	GetRole(workOrderID, userID string) (*models.AssignmentRole, error)
	ListByWorkOrder(workOrderID string) ([]dbmodels.WorkOrderAssignment, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Upsert(workOrderID, userID string, role models.AssignmentRole) error {
	rec := dbmodels.WorkOrderAssignment{
		WorkOrderID: workOrderID,
		UserID:      userID,
		Role:        role,
	}
	return i.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "work_order_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&rec).
		Error
}

func (i impl) Delete(workOrderID, userID string) error {
	return i.db.
		Where("work_order_id = ?", workOrderID).
		Where("user_id = ?", userID).
		Delete(&dbmodels.WorkOrderAssignment{}).
		Error
}

func (i impl) GetRole(workOrderID, userID string) (*models.AssignmentRole, error) {
	rec := dbmodels.WorkOrderAssignment{}
	err := i.db.
		Where("work_order_id = ?", workOrderID).
		Where("user_id = ?", userID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec.Role, nil
}

func (i impl) ListByWorkOrder(workOrderID string) ([]dbmodels.WorkOrderAssignment, error) {
	list := []dbmodels.WorkOrderAssignment{}
	err := i.db.
		Where("work_order_id = ?", workOrderID).
		Preload("User").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
