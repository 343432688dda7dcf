package workflowstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	// GetByID loads a workflow with its steps and tasks, both sorted
	// ascending by order.
	GetByID(id string) (*dbmodels.Workflow, error)
	ListTemplates() ([]dbmodels.Workflow, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func orderSteps(db *gorm.DB) *gorm.DB {
	return db.Order("step_order ASC")
}

func orderTasks(db *gorm.DB) *gorm.DB {
	return db.Order("task_order ASC")
}

func (i impl) GetByID(id string) (*dbmodels.Workflow, error) {
	rec := dbmodels.Workflow{}
	err := i.db.
		Where("id = ?", id).
		Preload("Steps", orderSteps).
		Preload("Steps.Tasks", orderTasks).
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

func (i impl) ListTemplates() ([]dbmodels.Workflow, error) {
	list := []dbmodels.Workflow{}
	err := i.db.
		Where("is_template = true").
		Where("is_active = true").
		Preload("Steps", orderSteps).
		Preload("Steps.Tasks", orderTasks).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
