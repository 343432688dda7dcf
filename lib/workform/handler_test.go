package workformhandler

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vessel-works-backend/lib/apperr"
	"vessel-works-backend/models"
	workorderapimodels "vessel-works-backend/models/api/workorder"
	dbmodels "vessel-works-backend/models/db"
)

type fakeFormStore struct {
	entries map[string]*dbmodels.WorkFormEntry
	order   []string
	updates map[string][]map[string]interface{}
}

func newFakeFormStore() *fakeFormStore {
	return &fakeFormStore{
		entries: map[string]*dbmodels.WorkFormEntry{},
		updates: map[string][]map[string]interface{}{},
	}
}

func (f *fakeFormStore) Create(rec dbmodels.WorkFormEntry) (string, error) {
	rec.ID = fmt.Sprintf("entry-%d", len(f.entries)+1)
	f.entries[rec.ID] = &rec
	f.order = append(f.order, rec.ID)
	return rec.ID, nil
}

func (f *fakeFormStore) GetByID(id string) (*dbmodels.WorkFormEntry, error) {
	rec, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeFormStore) ListByWorkOrder(workOrderID string) ([]dbmodels.WorkFormEntry, error) {
	result := []dbmodels.WorkFormEntry{}
	for _, id := range f.order {
		if f.entries[id].WorkOrderID == workOrderID {
			result = append(result, *f.entries[id])
		}
	}
	return result, nil
}

func (f *fakeFormStore) Update(id string, updMap map[string]interface{}) error {
	f.updates[id] = append(f.updates[id], updMap)
	rec := f.entries[id]
	if v, ok := updMap["status"]; ok {
		switch s := v.(type) {
		case models.FormEntryStatus:
			rec.Status = s
		case string:
			rec.Status = models.FormEntryStatus(s)
		}
	}
	if v, ok := updMap["attachments"]; ok {
		rec.Attachments = v.(string)
	}
	if v, ok := updMap["notes"]; ok {
		rec.Notes = v.(string)
	}
	if v, ok := updMap["completed_at"]; ok {
		ts := v.(time.Time)
		rec.CompletedAt = &ts
	}
	if v, ok := updMap["completed_by"]; ok {
		by := v.(string)
		rec.CompletedBy = &by
	}
	return nil
}

type fakeWorkOrderStore struct {
	rec *dbmodels.WorkOrder
}

func (f *fakeWorkOrderStore) Create(rec dbmodels.WorkOrder) (string, error) { return rec.ID, nil }

func (f *fakeWorkOrderStore) GetByID(organisationID, id string) (*dbmodels.WorkOrder, error) {
	if f.rec == nil || f.rec.ID != id {
		return nil, nil
	}
	return f.rec, nil
}

func (f *fakeWorkOrderStore) GetForAdvance(id string) (*dbmodels.WorkOrder, error) {
	return f.rec, nil
}

func (f *fakeWorkOrderStore) Update(organisationID, id string, updMap map[string]interface{}) error {
	return nil
}

func (f *fakeWorkOrderStore) UpdateByID(id string, updMap map[string]interface{}) error { return nil }

func (f *fakeWorkOrderStore) SoftDelete(organisationID, id string) error { return nil }

func (f *fakeWorkOrderStore) List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) ([]dbmodels.WorkOrder, error) {
	return nil, nil
}

func (f *fakeWorkOrderStore) ListCount(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (int64, error) {
	return 0, nil
}

func (f *fakeWorkOrderStore) LastReferenceSuffix(prefix string) (int, error) { return 0, nil }

func (f *fakeWorkOrderStore) HasAccess(id, userID, organisationID string, orgScope bool) (bool, error) {
	return true, nil
}

func (f *fakeWorkOrderStore) ListOverdue(before time.Time) ([]dbmodels.WorkOrder, error) {
	return nil, nil
}

type fakeVesselStore struct {
	vessel *dbmodels.Vessel
}

func (f *fakeVesselStore) Create(rec dbmodels.Vessel) (string, error) { return rec.ID, nil }

func (f *fakeVesselStore) GetByID(organisationID, id string) (*dbmodels.Vessel, error) {
	if f.vessel == nil || f.vessel.ID != id {
		return nil, nil
	}
	return f.vessel, nil
}

func (f *fakeVesselStore) Update(organisationID, id string, updMap map[string]interface{}) error {
	return nil
}

func (f *fakeVesselStore) SoftDelete(organisationID, id string) error { return nil }

func (f *fakeVesselStore) List(organisationID string) ([]dbmodels.Vessel, error) { return nil, nil }

func (f *fakeVesselStore) AddComponent(rec dbmodels.VesselComponent) (string, error) {
	return rec.ID, nil
}

func (f *fakeVesselStore) DeleteComponent(vesselID, componentID string) error { return nil }

type fakeMedia struct {
	stored  []string
	deleted []string
	nextID  int
}

func (f *fakeMedia) StoreDataURL(ctx context.Context, organisationID, workOrderID, entryID, userID, dataURL string) (string, error) {
	f.nextID++
	id := fmt.Sprintf("media-%d", f.nextID)
	f.stored = append(f.stored, id)
	return id, nil
}

func (f *fakeMedia) Upload(ctx context.Context, organisationID, workOrderID, userID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	return "", nil
}

func (f *fakeMedia) Download(ctx context.Context, id string) (*dbmodels.Media, io.ReadCloser, error) {
	return nil, nil, apperr.NotFound("media not found")
}

func (f *fakeMedia) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMedia) ListByEntry(entryID string) ([]dbmodels.Media, error) { return nil, nil }

func testVessel() *dbmodels.Vessel {
	vessel := &dbmodels.Vessel{Name: "MV Coral Bay"}
	vessel.ID = "vessel-1"
	vessel.OrganisationID = "org-1"
	hull := dbmodels.VesselComponent{VesselID: "vessel-1", Name: "Hull port side", SortOrder: 1}
	hull.ID = "comp-1"
	propeller := dbmodels.VesselComponent{VesselID: "vessel-1", Name: "Propeller", SortOrder: 2}
	propeller.ID = "comp-2"
	vessel.Components = []dbmodels.VesselComponent{hull, propeller}
	return vessel
}

func testWorkOrder() *dbmodels.WorkOrder {
	rec := &dbmodels.WorkOrder{VesselID: "vessel-1"}
	rec.ID = "wo-1"
	rec.OrganisationID = "org-1"
	return rec
}

func newTestHandler() (Provider, *fakeFormStore, *fakeMedia) {
	store := newFakeFormStore()
	media := &fakeMedia{}
	handler := NewHandlerWithDeps(
		store,
		&fakeWorkOrderStore{rec: testWorkOrder()},
		&fakeVesselStore{vessel: testVessel()},
		media,
	)
	return handler, store, media
}

func TestGenerateForm(t *testing.T) {
	t.Run("one pending entry per component", func(t *testing.T) {
		handler, store, _ := newTestHandler()

		views, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)
		require.Len(t, views, 2)
		for _, view := range views {
			require.Equal(t, models.FormEntryPending, view.Status)
			require.Empty(t, view.Attachments)
		}
		require.Len(t, store.entries, 2)
	})

	t.Run("regeneration returns existing entries untouched", func(t *testing.T) {
		handler, store, _ := newTestHandler()

		first, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)
		again, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)
		require.Equal(t, first, again)
		require.Len(t, store.entries, 2)
	})

	t.Run("missing work order is not found", func(t *testing.T) {
		handler, _, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "missing")
		require.True(t, apperr.IsNotFound(err))
	})
}

func TestUpdateField(t *testing.T) {
	t.Run("unknown field is rejected", func(t *testing.T) {
		handler, _, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		err = handler.UpdateField("entry-1", "hullColour", "red", "user-1")
		require.Error(t, err)
		appErr, ok := apperr.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperr.CodeInvalidField, appErr.Code)
	})

	t.Run("first edit moves the entry into progress", func(t *testing.T) {
		handler, store, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		err = handler.UpdateField("entry-1", "notes", "light slime layer", "user-1")
		require.NoError(t, err)
		upd := store.updates["entry-1"][0]
		require.Equal(t, "light slime layer", upd["notes"])
		require.Equal(t, models.FormEntryInProgress, upd["status"])

		err = handler.UpdateField("entry-1", "notes", "second pass", "user-1")
		require.NoError(t, err)
		require.NotContains(t, store.updates["entry-1"][1], "status")
	})

	t.Run("setting status to completed stamps completion", func(t *testing.T) {
		handler, store, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		err = handler.UpdateField("entry-1", "status", string(models.FormEntryCompleted), "user-1")
		require.NoError(t, err)
		upd := store.updates["entry-1"][0]
		require.Contains(t, upd, "completed_at")
		require.Equal(t, "user-1", upd["completed_by"])
	})

	t.Run("re-completing keeps the original stamp", func(t *testing.T) {
		handler, store, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		err = handler.UpdateField("entry-1", "status", string(models.FormEntryCompleted), "user-1")
		require.NoError(t, err)
		first := *store.entries["entry-1"].CompletedAt

		err = handler.UpdateField("entry-1", "status", string(models.FormEntryCompleted), "user-2")
		require.NoError(t, err)
		second := store.updates["entry-1"][1]
		require.NotContains(t, second, "completed_at")
		require.NotContains(t, second, "completed_by")
		require.Equal(t, first, *store.entries["entry-1"].CompletedAt)
		require.Equal(t, "user-1", *store.entries["entry-1"].CompletedBy)
	})

	t.Run("camelCase wire names map to columns", func(t *testing.T) {
		handler, store, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		err = handler.UpdateField("entry-1", "foulingRating", 3, "user-1")
		require.NoError(t, err)
		require.Contains(t, store.updates["entry-1"][0], "fouling_rating")
	})

	t.Run("missing entry is not found", func(t *testing.T) {
		handler, _, _ := newTestHandler()
		err := handler.UpdateField("missing", "notes", "x", "user-1")
		require.True(t, apperr.IsNotFound(err))
	})
}

func TestScreenshots(t *testing.T) {
	t.Run("add appends the media id to attachments", func(t *testing.T) {
		handler, store, media := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		mediaID, err := handler.AddScreenshot(context.Background(), "org-1", "wo-1", "entry-1", "user-1", "data:image/png;base64,AAAA")
		require.NoError(t, err)
		require.Equal(t, "media-1", mediaID)
		require.Equal(t, []string{"media-1"}, media.stored)
		require.JSONEq(t, `["media-1"]`, store.entries["entry-1"].Attachments)
	})

	t.Run("remove deletes the media and drops the reference", func(t *testing.T) {
		handler, store, media := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)
		_, err = handler.AddScreenshot(context.Background(), "org-1", "wo-1", "entry-1", "user-1", "data:image/png;base64,AAAA")
		require.NoError(t, err)
		_, err = handler.AddScreenshot(context.Background(), "org-1", "wo-1", "entry-1", "user-1", "data:image/png;base64,BBBB")
		require.NoError(t, err)

		err = handler.RemoveScreenshot(context.Background(), "entry-1", "media-1")
		require.NoError(t, err)
		require.Equal(t, []string{"media-1"}, media.deleted)
		require.JSONEq(t, `["media-2"]`, store.entries["entry-1"].Attachments)
	})

	t.Run("removing an unattached screenshot is not found", func(t *testing.T) {
		handler, _, _ := newTestHandler()
		_, err := handler.GenerateForm("org-1", "wo-1")
		require.NoError(t, err)

		err = handler.RemoveScreenshot(context.Background(), "entry-1", "media-9")
		require.True(t, apperr.IsNotFound(err))
	})
}

func TestComplete(t *testing.T) {
	handler, store, _ := newTestHandler()
	_, err := handler.GenerateForm("org-1", "wo-1")
	require.NoError(t, err)

	require.NoError(t, handler.Complete("entry-1", "user-1"))
	upd := store.updates["entry-1"][0]
	require.Equal(t, models.FormEntryCompleted, upd["status"])
	require.Contains(t, upd, "completed_at")
	require.Equal(t, "user-1", upd["completed_by"])
}
