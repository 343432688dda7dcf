package submissionstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"vessel-works-backend/models"
	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.TaskSubmission) (id string, err error)
	// LatestSubmitted returns the most recently created submission with
	// status SUBMITTED for the task/work-order pair, nil when none is
	// pending.
	LatestSubmitted(taskID, workOrderID string) (*dbmodels.TaskSubmission, error)
	Update(id string, updMap map[string]interface{}) error
	ListByWorkOrder(workOrderID string) ([]dbmodels.TaskSubmission, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.TaskSubmission) (id string, err error) {
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) LatestSubmitted(taskID, workOrderID string) (*dbmodels.TaskSubmission, error) {
	rec := dbmodels.TaskSubmission{}
	err := i.db.
		Where("task_id = ?", taskID).
		Where("work_order_id = ?", workOrderID).
		Where("status = ?", models.SubmissionSubmitted).
		Order("created_at DESC").
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

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.TaskSubmission{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

func (i impl) ListByWorkOrder(workOrderID string) ([]dbmodels.TaskSubmission, error) {
	list := []dbmodels.TaskSubmission{}
	err := i.db.
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
