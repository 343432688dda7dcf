package workorderstore

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vessel-works-backend/models"
	workorderapimodels "vessel-works-backend/models/api/workorder"
	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.WorkOrder) (id string, err error)
	GetByID(organisationID, id string) (rec *dbmodels.WorkOrder, err error)
	// GetForAdvance loads the work order with its workflow (steps and
	// tasks order-sorted) and every task submission, unscoped by
	// organisation. The workflow engine reads a fresh snapshot on every
	// invocation.
	GetForAdvance(id string) (rec *dbmodels.WorkOrder, err error)
	Update(organisationID, id string, updMap map[string]interface{}) error
	// UpdateByID mutates without the organisation filter; used by the
	// workflow engine which operates on an already resolved work order.
	UpdateByID(id string, updMap map[string]interface{}) error
	SoftDelete(organisationID, id string) error
	List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (list []dbmodels.WorkOrder, err error)
	ListCount(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (int64, error)
	// LastReferenceSuffix returns the numeric suffix of the highest
	// reference number carrying the day prefix, 0 when none exists.
	LastReferenceSuffix(prefix string) (int, error)
	// HasAccess reports whether the user can see the work order: an
	// assignment row, or (when orgScope) membership of the owning
	// organisation.
	HasAccess(id, userID, organisationID string, orgScope bool) (bool, error)
	// ListOverdue returns non-terminal work orders whose scheduled end
	// lies before the given moment.
	ListOverdue(before time.Time) ([]dbmodels.WorkOrder, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.WorkOrder) (id string, err error) {
	err = i.db.Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(organisationID, id string) (*dbmodels.WorkOrder, error) {
	rec := dbmodels.WorkOrder{}
	err := i.db.
		Where("id = ?", id).
		Where("organisation_id = ?", organisationID).
		Where("is_deleted = false").
		Preload("Vessel").
		Preload("Assignments.User").
		Preload("Workflow.Steps", orderSteps).
		Preload("Workflow.Steps.Tasks", orderTasks).
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

func (i impl) GetForAdvance(id string) (*dbmodels.WorkOrder, error) {
	rec := dbmodels.WorkOrder{}
	err := i.db.
		Where("id = ?", id).
		Where("is_deleted = false").
		Preload("Workflow.Steps", orderSteps).
		Preload("Workflow.Steps.Tasks", orderTasks).
		Preload("TaskSubmissions").
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

func orderSteps(db *gorm.DB) *gorm.DB {
	return db.Order("step_order ASC")
}

func orderTasks(db *gorm.DB) *gorm.DB {
	return db.Order("task_order ASC")
}

func (i impl) Update(organisationID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.WorkOrder{}).
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

func (i impl) UpdateByID(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.WorkOrder{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

func (i impl) SoftDelete(organisationID, id string) error {
	return i.Update(organisationID, id, map[string]interface{}{"is_deleted": true})
}

func (i impl) listQuery(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) *gorm.DB {
	tx := i.db.
		Model(&dbmodels.WorkOrder{}).
		Where("is_deleted = false").
		Where("(organisation_id = ? OR id IN (?))",
			organisationID,
			i.db.Model(&dbmodels.WorkOrderAssignment{}).
				Select("work_order_id").
				Where("user_id = ?", userID),
		)
	if filter.Search != "" {
		pattern := fmt.Sprintf("%%%v%%", filter.Search)
		tx = tx.Where("(title ILIKE ? OR reference_number ILIKE ?)", pattern, pattern)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		tx = tx.Where("type = ?", filter.Type)
	}
	if filter.VesselID != "" {
		tx = tx.Where("vessel_id = ?", filter.VesselID)
	}
	if filter.Priority != "" {
		tx = tx.Where("priority = ?", filter.Priority)
	}
	return tx
}

func (i impl) List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (list []dbmodels.WorkOrder, err error) {
	list = []dbmodels.WorkOrder{}
	page, limit := filter.GetPage()
	err = i.listQuery(organisationID, userID, filter).
		Preload("Vessel").
		Preload("Assignments.User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListCount(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (int64, error) {
	var count int64
	err := i.listQuery(organisationID, userID, filter).
		Count(&count).
		Error
	return count, err
}

func (i impl) LastReferenceSuffix(prefix string) (int, error) {
	rec := dbmodels.WorkOrder{}
	err := i.db.
		Where("reference_number LIKE ?", prefix+"%").
		Order("reference_number DESC").
		Select("reference_number").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var suffix int
	_, err = fmt.Sscanf(rec.ReferenceNumber, prefix+"%04d", &suffix)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed reference number %v", rec.ReferenceNumber)
	}
	return suffix, nil
}

func (i impl) ListOverdue(before time.Time) ([]dbmodels.WorkOrder, error) {
	list := []dbmodels.WorkOrder{}
	err := i.db.
		Where("is_deleted = false").
		Where("scheduled_end IS NOT NULL AND scheduled_end < ?", before).
		Where("status NOT IN ?", []models.WorkOrderStatus{models.WOStatusCompleted, models.WOStatusCancelled}).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) HasAccess(id, userID, organisationID string, orgScope bool) (bool, error) {
	tx := i.db.
		Model(&dbmodels.WorkOrder{}).
		Where("id = ?", id).
		Where("is_deleted = false")
	assigned := i.db.Model(&dbmodels.WorkOrderAssignment{}).
		Select("work_order_id").
		Where("user_id = ?", userID)
	if orgScope {
		tx = tx.Where("(organisation_id = ? OR id IN (?))", organisationID, assigned)
	} else {
		tx = tx.Where("id IN (?)", assigned)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
