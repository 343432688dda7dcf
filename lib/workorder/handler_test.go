package workorderhandler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vessel-works-backend/lib/apperr"
	audithandler "vessel-works-backend/lib/audit"
	"vessel-works-backend/models"
	workorderapimodels "vessel-works-backend/models/api/workorder"
	dbmodels "vessel-works-backend/models/db"
)

type fakeStore struct {
	rec        *dbmodels.WorkOrder
	lastSuffix int
	created    []dbmodels.WorkOrder
	updates    []map[string]interface{}
}

func (f *fakeStore) Create(rec dbmodels.WorkOrder) (string, error) {
	f.created = append(f.created, rec)
	return fmt.Sprintf("wo-%d", len(f.created)), nil
}

func (f *fakeStore) GetByID(organisationID, id string) (*dbmodels.WorkOrder, error) {
	if f.rec == nil || f.rec.ID != id || f.rec.OrganisationID != organisationID {
		return nil, nil
	}
	clone := *f.rec
	return &clone, nil
}

func (f *fakeStore) GetForAdvance(id string) (*dbmodels.WorkOrder, error) { return f.rec, nil }

func (f *fakeStore) Update(organisationID, id string, updMap map[string]interface{}) error {
	f.updates = append(f.updates, updMap)
	return nil
}

func (f *fakeStore) UpdateByID(id string, updMap map[string]interface{}) error {
	f.updates = append(f.updates, updMap)
	return nil
}

func (f *fakeStore) SoftDelete(organisationID, id string) error { return nil }

func (f *fakeStore) List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) ([]dbmodels.WorkOrder, error) {
	return nil, nil
}

func (f *fakeStore) ListCount(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (int64, error) {
	return 0, nil
}

func (f *fakeStore) LastReferenceSuffix(prefix string) (int, error) { return f.lastSuffix, nil }

func (f *fakeStore) HasAccess(id, userID, organisationID string, orgScope bool) (bool, error) {
	return true, nil
}

func (f *fakeStore) ListOverdue(before time.Time) ([]dbmodels.WorkOrder, error) { return nil, nil }

type fakeAssignments struct {
	upserts []string
	deletes []string
}

func (f *fakeAssignments) Upsert(workOrderID, userID string, role models.AssignmentRole) error {
	f.upserts = append(f.upserts, userID)
	return nil
}

func (f *fakeAssignments) Delete(workOrderID, userID string) error {
	f.deletes = append(f.deletes, userID)
	return nil
}

func (f *fakeAssignments) GetRole(workOrderID, userID string) (*models.AssignmentRole, error) {
	return nil, nil
}

func (f *fakeAssignments) ListByWorkOrder(workOrderID string) ([]dbmodels.WorkOrderAssignment, error) {
	return nil, nil
}

type fakeAudit struct {
	entries []audithandler.LogData
}

func (f *fakeAudit) Log(data audithandler.LogData) { f.entries = append(f.entries, data) }

func (f *fakeAudit) History(entityType, entityID string, limit int) ([]dbmodels.AuditEntry, error) {
	return nil, nil
}

func existingRec(status models.WorkOrderStatus) *dbmodels.WorkOrder {
	rec := &dbmodels.WorkOrder{
		ReferenceNumber: "WO-20260110-0007",
		Title:           "Hull clean aft section",
		Status:          status,
	}
	rec.ID = "wo-1"
	rec.OrganisationID = "org-1"
	return rec
}

func TestCreate(t *testing.T) {
	t.Run("reference number continues the day sequence", func(t *testing.T) {
		store := &fakeStore{lastSuffix: 41}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		_, err := handler.Create("org-1", "user-1", workorderapimodels.WorkOrderCreateData{
			VesselID: "vessel-1",
			Title:    "Propeller polish",
			Type:     models.WOTypeMaintenance,
		})
		require.NoError(t, err)
		require.Len(t, store.created, 1)
		expected := fmt.Sprintf("WO-%v-0042", time.Now().Format("20060102"))
		require.Equal(t, expected, store.created[0].ReferenceNumber)
	})

	t.Run("status is forced to draft and priority defaulted", func(t *testing.T) {
		store := &fakeStore{}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		_, err := handler.Create("org-1", "user-1", workorderapimodels.WorkOrderCreateData{
			VesselID: "vessel-1",
			Title:    "Inspection",
			Type:     models.WOTypeInspection,
		})
		require.NoError(t, err)
		rec := store.created[0]
		require.Equal(t, models.WOStatusDraft, rec.Status)
		require.Equal(t, models.WOPriorityNormal, rec.Priority)
		require.Equal(t, "[]", rec.ComplianceFramework)
	})

	t.Run("audit entry is written", func(t *testing.T) {
		audit := &fakeAudit{}
		handler := NewHandlerWithDeps(&fakeStore{}, &fakeAssignments{}, audit)

		_, err := handler.Create("org-1", "user-1", workorderapimodels.WorkOrderCreateData{
			VesselID: "vessel-1",
			Title:    "Survey",
			Type:     models.WOTypeSurvey,
		})
		require.NoError(t, err)
		require.Len(t, audit.entries, 1)
		require.Equal(t, audithandler.ActionCreate, audit.entries[0].Action)
		require.Equal(t, "user-1", audit.entries[0].ActorID)
	})
}

func TestChangeStatus(t *testing.T) {
	t.Run("valid transition updates and audits", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusDraft)}
		audit := &fakeAudit{}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, audit)

		err := handler.ChangeStatus("org-1", "wo-1", "user-1", models.WOStatusPendingApproval, "")
		require.NoError(t, err)
		require.Len(t, store.updates, 1)
		require.Equal(t, models.WOStatusPendingApproval, store.updates[0]["status"])
		require.Len(t, audit.entries, 1)
		require.Equal(t, audithandler.ActionStatusChange, audit.entries[0].Action)
	})

	t.Run("invalid transition is rejected without a write", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusDraft)}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		err := handler.ChangeStatus("org-1", "wo-1", "user-1", models.WOStatusCompleted, "")
		require.Error(t, err)
		appErr, ok := apperr.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperr.CodeInvalidTransition, appErr.Code)
		require.Empty(t, store.updates)
	})

	t.Run("entering in progress stamps actual start once", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusApproved)}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		err := handler.ChangeStatus("org-1", "wo-1", "user-1", models.WOStatusInProgress, "")
		require.NoError(t, err)
		require.Contains(t, store.updates[0], "actual_start")

		started := time.Now().Add(-time.Hour)
		store.rec.Status = models.WOStatusOnHold
		store.rec.ActualStart = &started
		err = handler.ChangeStatus("org-1", "wo-1", "user-1", models.WOStatusInProgress, "")
		require.NoError(t, err)
		require.NotContains(t, store.updates[1], "actual_start")
	})

	t.Run("completion stamps completed at and actual end", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusUnderReview)}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		err := handler.ChangeStatus("org-1", "wo-1", "user-1", models.WOStatusCompleted, "passed")
		require.NoError(t, err)
		require.Contains(t, store.updates[0], "completed_at")
		require.Contains(t, store.updates[0], "actual_end")
	})

	t.Run("unknown work order is not found", func(t *testing.T) {
		handler := NewHandlerWithDeps(&fakeStore{}, &fakeAssignments{}, &fakeAudit{})
		err := handler.ChangeStatus("org-1", "missing", "user-1", models.WOStatusApproved, "")
		require.True(t, apperr.IsNotFound(err))
	})
}

func TestUpdateFieldFiltering(t *testing.T) {
	t.Run("unknown fields are dropped silently", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusDraft)}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		err := handler.Update("org-1", "wo-1", "user-1", workorderapimodels.WorkOrderUpdateData{
			"title":            "New title",
			"status":           "COMPLETED",
			"reference_number": "WO-99999999-0001",
			"is_deleted":       true,
		})
		require.NoError(t, err)
		require.Len(t, store.updates, 1)
		require.Equal(t, map[string]interface{}{"title": "New title"}, store.updates[0])
	})

	t.Run("an update of only unknown fields writes nothing", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusDraft)}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		err := handler.Update("org-1", "wo-1", "user-1", workorderapimodels.WorkOrderUpdateData{
			"status": "COMPLETED",
		})
		require.NoError(t, err)
		require.Empty(t, store.updates)
	})

	t.Run("compliance framework is serialized", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusDraft)}
		handler := NewHandlerWithDeps(store, &fakeAssignments{}, &fakeAudit{})

		err := handler.Update("org-1", "wo-1", "user-1", workorderapimodels.WorkOrderUpdateData{
			"compliance_framework": []interface{}{"IMO-BFMP", "AS-4005"},
		})
		require.NoError(t, err)
		require.Equal(t, `["IMO-BFMP","AS-4005"]`, store.updates[0]["compliance_framework"])
	})
}

func TestAssignments(t *testing.T) {
	t.Run("assign and unassign are audited", func(t *testing.T) {
		store := &fakeStore{rec: existingRec(models.WOStatusInProgress)}
		assignments := &fakeAssignments{}
		audit := &fakeAudit{}
		handler := NewHandlerWithDeps(store, assignments, audit)

		require.NoError(t, handler.Assign("org-1", "wo-1", "user-2", models.RoleReviewer, "user-1"))
		require.NoError(t, handler.Unassign("org-1", "wo-1", "user-2", "user-1"))

		require.Equal(t, []string{"user-2"}, assignments.upserts)
		require.Equal(t, []string{"user-2"}, assignments.deletes)
		require.Len(t, audit.entries, 2)
		require.Equal(t, audithandler.ActionAssignment, audit.entries[0].Action)
	})

	t.Run("assignment on a missing work order fails", func(t *testing.T) {
		handler := NewHandlerWithDeps(&fakeStore{}, &fakeAssignments{}, &fakeAudit{})
		err := handler.Assign("org-1", "missing", "user-2", models.RoleObserver, "user-1")
		require.True(t, apperr.IsNotFound(err))
	})
}
