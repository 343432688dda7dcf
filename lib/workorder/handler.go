package workorderhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/db"
	"vessel-works-backend/lib/apperr"
	audithandler "vessel-works-backend/lib/audit"
	"vessel-works-backend/lib/utils/lock"
	assignmentstore "vessel-works-backend/lib/workorder/assignment-store"
	workorderstore "vessel-works-backend/lib/workorder/store"
	"vessel-works-backend/models"
	workorderapimodels "vessel-works-backend/models/api/workorder"
	dbmodels "vessel-works-backend/models/db"
)

// updateFieldAllowlist bounds what Update may touch; unknown keys are
// dropped silently.
var updateFieldAllowlist = map[string]bool{
	"vessel_id":            true,
	"workflow_id":          true,
	"title":                true,
	"description":          true,
	"type":                 true,
	"priority":             true,
	"location":             true,
	"latitude":             true,
	"longitude":            true,
	"scheduled_start":      true,
	"scheduled_end":        true,
	"regulatory_ref":       true,
	"compliance_framework": true,
	"metadata":             true,
}

type Provider interface {
	Create(organisationID, userID string, data workorderapimodels.WorkOrderCreateData) (id string, err error)
	GetByID(organisationID, id string) (workorderapimodels.WorkOrderView, error)
	List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (list []workorderapimodels.WorkOrderView, rowCount int64, err error)
	Update(organisationID, id, userID string, data workorderapimodels.WorkOrderUpdateData) error
	ChangeStatus(organisationID, id, userID string, newStatus models.WorkOrderStatus, reason string) error
	Assign(organisationID, workOrderID, userID string, role models.AssignmentRole, actorID string) error
	Unassign(organisationID, workOrderID, userID, actorID string) error
	SoftDelete(organisationID, id, userID string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:           workorderstore.NewInstance(db.DB),
		assignmentStore: assignmentstore.NewInstance(db.DB),
		audit:           audithandler.Instance,
	}
}

func NewHandlerWithDeps(store workorderstore.Provider, assignments assignmentstore.Provider, audit audithandler.Provider) Provider {
	return impl{
		store:           store,
		assignmentStore: assignments,
		audit:           audit,
	}
}

type impl struct {
	store           workorderstore.Provider
	assignmentStore assignmentstore.Provider
	audit           audithandler.Provider
}

const referenceTimeLayout = "20060102"

// nextReferenceNumber allocates WO-<YYYYMMDD>-<seq>. The max-suffix
// scan is serialized per day prefix through the keyed in-process lock;
// cross-process collisions fall on the unique index.
func (i impl) nextReferenceNumber() (ref string, err error) {
	prefix := fmt.Sprintf("WO-%v-", time.Now().Format(referenceTimeLayout))
	locked, err := lock.WithDelay(context.Background(), "wo-ref-"+prefix, 5*time.Second, func() error {
		suffix, scanErr := i.store.LastReferenceSuffix(prefix)
		if scanErr != nil {
			return scanErr
		}
		ref = fmt.Sprintf("%v%04d", prefix, suffix+1)
		return nil
	})
	if err != nil {
		return "", err
	}
	if !locked {
		return "", errors.New("reference number allocation timed out")
	}
	return ref, nil
}

func (i impl) Create(organisationID, userID string, data workorderapimodels.WorkOrderCreateData) (id string, err error) {
	logger := log.WithField("organisation_id", organisationID)

	referenceNumber, err := i.nextReferenceNumber()
	if err != nil {
		logger.WithError(err).Error("failed to allocate work order reference")
		return "", err
	}

	rec := dbmodels.WorkOrder{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrganisationID: organisationID,
		},
		ReferenceNumber: referenceNumber,
		VesselID:        data.VesselID,
		Title:           data.Title,
		Type:            data.Type,
		Priority:        data.Priority,
		// A new work order always starts in DRAFT, whatever the payload
		// claims.
		Status:         models.WOStatusDraft,
		Description:    data.Description,
		Location:       data.Location,
		Latitude:       data.Latitude,
		Longitude:      data.Longitude,
		RegulatoryRef:  data.RegulatoryRef,
		ScheduledStart: data.ScheduledStart,
		ScheduledEnd:   data.ScheduledEnd,
	}
	if rec.Priority == "" {
		rec.Priority = models.WOPriorityNormal
	}
	if data.WorkflowID != "" {
		rec.WorkflowID = &data.WorkflowID
	}
	framework := data.ComplianceFramework
	if framework == nil {
		framework = []string{}
	}
	rawFramework, err := json.Marshal(framework)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize compliance framework")
	}
	rec.ComplianceFramework = string(rawFramework)
	if data.Metadata != nil {
		rawMeta, err := json.Marshal(data.Metadata)
		if err != nil {
			return "", errors.Wrap(err, "failed to serialize metadata")
		}
		meta := string(rawMeta)
		rec.Metadata = &meta
	}

	id, err = i.store.Create(rec)
	if err != nil {
		logger.
			WithField("request", fmt.Sprintf("%+v", data)).
			WithError(err).
			Error("failed to create work order")
		return "", err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     userID,
		EntityType:  "WorkOrder",
		EntityID:    id,
		Action:      audithandler.ActionCreate,
		Description: fmt.Sprintf("Created work order %v: %q", referenceNumber, data.Title),
	})
	logger.
		WithField("rec_id", id).
		WithField("reference_number", referenceNumber).
		Info("work order created")
	return id, nil
}

func (i impl) GetByID(organisationID, id string) (workorderapimodels.WorkOrderView, error) {
	rec, err := i.getRec(organisationID, id)
	if err != nil {
		return workorderapimodels.WorkOrderView{}, err
	}
	return workorderapimodels.WorkOrderConvert(*rec), nil
}

func (i impl) List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (list []workorderapimodels.WorkOrderView, rowCount int64, err error) {
	logger := log.WithField("organisation_id", organisationID)
	rowCount, err = i.store.ListCount(organisationID, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	recList, err := i.store.List(organisationID, userID, filter)
	if err != nil {
		logger.WithError(err).Error("failed to list work orders")
		return nil, 0, err
	}
	result := make([]workorderapimodels.WorkOrderView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, workorderapimodels.WorkOrderConvert(rec))
	}
	return result, rowCount, nil
}

func (i impl) Update(organisationID, id, userID string, data workorderapimodels.WorkOrderUpdateData) error {
	logger := log.
		WithField("organisation_id", organisationID).
		WithField("rec_id", id)
	rec, err := i.getRec(organisationID, id)
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{}
	changed := make([]string, 0, len(data))
	for key, value := range data {
		if !updateFieldAllowlist[key] {
			continue
		}
		if key == "compliance_framework" || key == "metadata" {
			raw, err := json.Marshal(value)
			if err != nil {
				return apperr.Validation(fmt.Sprintf("field %v is not serializable", key))
			}
			value = string(raw)
		}
		updMap[key] = value
		changed = append(changed, key)
	}
	if len(updMap) == 0 {
		return nil
	}
	err = i.store.Update(organisationID, id, updMap)
	if err != nil {
		logger.WithError(err).Error("failed to update work order")
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:       userID,
		EntityType:    "WorkOrder",
		EntityID:      id,
		Action:        audithandler.ActionUpdate,
		Description:   fmt.Sprintf("Updated work order %v", rec.ReferenceNumber),
		ChangedFields: changed,
	})
	logger.Info("work order updated")
	return nil
}

func (i impl) ChangeStatus(organisationID, id, userID string, newStatus models.WorkOrderStatus, reason string) error {
	logger := log.
		WithField("organisation_id", organisationID).
		WithField("rec_id", id).
		WithField("new_status", newStatus)
	rec, err := i.getRec(organisationID, id)
	if err != nil {
		return err
	}
	if !rec.Status.IsAllowChange(newStatus) {
		return apperr.InvalidTransition(fmt.Sprintf("cannot transition from %v to %v", rec.Status, newStatus))
	}

	now := time.Now()
	updMap := map[string]interface{}{
		"status": newStatus,
	}
	if newStatus == models.WOStatusInProgress && rec.ActualStart == nil {
		updMap["actual_start"] = now
	}
	if newStatus == models.WOStatusCompleted {
		updMap["completed_at"] = now
		updMap["actual_end"] = now
	}
	err = i.store.Update(organisationID, id, updMap)
	if err != nil {
		logger.WithError(err).Error("failed to change work order status")
		return err
	}
	description := fmt.Sprintf("Changed status of %v from %v to %v", rec.ReferenceNumber, rec.Status, newStatus)
	if reason != "" {
		description = fmt.Sprintf("%v: %v", description, reason)
	}
	i.audit.Log(audithandler.LogData{
		ActorID:      userID,
		EntityType:   "WorkOrder",
		EntityID:     id,
		Action:       audithandler.ActionStatusChange,
		Description:  description,
		PreviousData: map[string]interface{}{"status": rec.Status},
		NewData:      map[string]interface{}{"status": newStatus},
	})
	logger.Info("work order status changed")
	return nil
}

// Assign deliberately does not check that the user belongs to the
// organisation; cross-organisation collaborators are invited this way.
func (i impl) Assign(organisationID, workOrderID, userID string, role models.AssignmentRole, actorID string) error {
	logger := log.
		WithField("organisation_id", organisationID).
		WithField("rec_id", workOrderID).
		WithField("user_id", userID)
	rec, err := i.getRec(organisationID, workOrderID)
	if err != nil {
		return err
	}
	err = i.assignmentStore.Upsert(workOrderID, userID, role)
	if err != nil {
		logger.WithError(err).Error("failed to assign user to work order")
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     actorID,
		EntityType:  "WorkOrder",
		EntityID:    workOrderID,
		Action:      audithandler.ActionAssignment,
		Description: fmt.Sprintf("Assigned user %v as %v to %v", userID, role, rec.ReferenceNumber),
	})
	return nil
}

func (i impl) Unassign(organisationID, workOrderID, userID, actorID string) error {
	logger := log.
		WithField("organisation_id", organisationID).
		WithField("rec_id", workOrderID).
		WithField("user_id", userID)
	rec, err := i.getRec(organisationID, workOrderID)
	if err != nil {
		return err
	}
	err = i.assignmentStore.Delete(workOrderID, userID)
	if err != nil {
		logger.WithError(err).Error("failed to unassign user from work order")
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     actorID,
		EntityType:  "WorkOrder",
		EntityID:    workOrderID,
		Action:      audithandler.ActionAssignment,
		Description: fmt.Sprintf("Unassigned user %v from %v", userID, rec.ReferenceNumber),
	})
	return nil
}

func (i impl) SoftDelete(organisationID, id, userID string) error {
	logger := log.
		WithField("organisation_id", organisationID).
		WithField("rec_id", id)
	rec, err := i.getRec(organisationID, id)
	if err != nil {
		return err
	}
	err = i.store.SoftDelete(organisationID, id)
	if err != nil {
		logger.WithError(err).Error("failed to delete work order")
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     userID,
		EntityType:  "WorkOrder",
		EntityID:    id,
		Action:      audithandler.ActionDelete,
		Description: fmt.Sprintf("Soft-deleted work order %v", rec.ReferenceNumber),
	})
	logger.Info("work order deleted")
	return nil
}

func (i impl) getRec(organisationID, id string) (*dbmodels.WorkOrder, error) {
	rec, err := i.store.GetByID(organisationID, id)
	if err != nil {
		log.
			WithField("organisation_id", organisationID).
			WithField("rec_id", id).
			WithError(err).
			Error("failed to load work order")
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound("work order not found")
	}
	return rec, nil
}
