package workformhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/db"
	"vessel-works-backend/lib/apperr"
	mediahandler "vessel-works-backend/lib/media"
	vesselstore "vessel-works-backend/lib/vessel/store"
	workformstore "vessel-works-backend/lib/workform/store"
	workorderstore "vessel-works-backend/lib/workorder/store"
	"vessel-works-backend/models"
	formapimodels "vessel-works-backend/models/api/form"
	dbmodels "vessel-works-backend/models/db"
)

// fieldColumns maps editable wire field names to their columns. A field
// outside this map is rejected, unlike the work order allow-list which
// drops silently; collaborative edits need the explicit error event.
var fieldColumns = map[string]string{
	"condition":         "condition",
	"foulingRating":     "fouling_rating",
	"foulingType":       "fouling_type",
	"coverage":          "coverage",
	"coatingCondition":  "coating_condition",
	"corrosionType":     "corrosion_type",
	"corrosionSeverity": "corrosion_severity",
	"notes":             "notes",
	"recommendation":    "recommendation",
	"actionRequired":    "action_required",
	"status":            "status",
	"measurementType":   "measurement_type",
	"measurementValue":  "measurement_value",
	"measurementUnit":   "measurement_unit",
}

type Provider interface {
	// GenerateForm creates one PENDING entry per vessel component.
	// Idempotent: when entries already exist for the work order it
	// returns them untouched.
	GenerateForm(organisationID, workOrderID string) ([]formapimodels.FormEntryView, error)
	ListByWorkOrder(workOrderID string) ([]formapimodels.FormEntryView, error)
	GetByID(entryID string) (formapimodels.FormEntryView, error)
	UpdateField(entryID, field string, value interface{}, userID string) error
	Complete(entryID, userID string) error
	AddScreenshot(ctx context.Context, organisationID, workOrderID, entryID, userID, dataURL string) (mediaID string, err error)
	RemoveScreenshot(ctx context.Context, entryID, mediaID string) error
	// FormDataJSON serializes the form as one document, the payload
	// format archived alongside generated reports.
	FormDataJSON(workOrderID string) (string, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:          workformstore.NewInstance(db.DB),
		workOrderStore: workorderstore.NewInstance(db.DB),
		vesselStore:    vesselstore.NewInstance(db.DB),
		media:          mediahandler.Instance,
	}
}

func NewHandlerWithDeps(
	store workformstore.Provider,
	workOrders workorderstore.Provider,
	vessels vesselstore.Provider,
	media mediahandler.Provider,
) Provider {
	return impl{
		store:          store,
		workOrderStore: workOrders,
		vesselStore:    vessels,
		media:          media,
	}
}

type impl struct {
	store          workformstore.Provider
	workOrderStore workorderstore.Provider
	vesselStore    vesselstore.Provider
	media          mediahandler.Provider
}

func (i impl) GenerateForm(organisationID, workOrderID string) ([]formapimodels.FormEntryView, error) {
	logger := log.WithField("rec_id", workOrderID)
	existing, err := i.store.ListByWorkOrder(workOrderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return convertAll(existing), nil
	}
	workOrder, err := i.workOrderStore.GetByID(organisationID, workOrderID)
	if err != nil {
		return nil, err
	}
	if workOrder == nil {
		return nil, apperr.NotFound("work order not found")
	}
	vessel, err := i.vesselStore.GetByID(organisationID, workOrder.VesselID)
	if err != nil {
		return nil, err
	}
	if vessel == nil {
		return nil, apperr.NotFound("vessel not found")
	}
	for _, component := range vessel.Components {
		_, err = i.store.Create(dbmodels.WorkFormEntry{
			WorkOrderID:       workOrderID,
			VesselComponentID: component.ID,
			Status:            models.FormEntryPending,
			Attachments:       "[]",
		})
		if err != nil {
			logger.WithError(err).Error("failed to generate form entry")
			return nil, err
		}
	}
	created, err := i.store.ListByWorkOrder(workOrderID)
	if err != nil {
		return nil, err
	}
	logger.
		WithField("entry_count", len(created)).
		Info("work form generated")
	return convertAll(created), nil
}

func (i impl) ListByWorkOrder(workOrderID string) ([]formapimodels.FormEntryView, error) {
	recList, err := i.store.ListByWorkOrder(workOrderID)
	if err != nil {
		return nil, err
	}
	return convertAll(recList), nil
}

func (i impl) GetByID(entryID string) (formapimodels.FormEntryView, error) {
	rec, err := i.getRec(entryID)
	if err != nil {
		return formapimodels.FormEntryView{}, err
	}
	return formapimodels.FormEntryConvert(*rec), nil
}

func (i impl) UpdateField(entryID, field string, value interface{}, userID string) error {
	column, ok := fieldColumns[field]
	if !ok {
		return apperr.InvalidField(fmt.Sprintf("field %q is not editable", field))
	}
	rec, err := i.getRec(entryID)
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{
		column: value,
	}
	if field == "status" {
		status, ok := value.(string)
		if !ok {
			return apperr.InvalidField("status must be a string")
		}
		// The first completion wins; re-completing keeps the original stamp.
		if models.FormEntryStatus(status) == models.FormEntryCompleted && rec.CompletedAt == nil {
			updMap["completed_at"] = time.Now()
			updMap["completed_by"] = userID
		}
	} else if rec.Status == models.FormEntryPending {
		// First touched field moves the entry out of PENDING.
		updMap["status"] = models.FormEntryInProgress
	}
	err = i.store.Update(entryID, updMap)
	if err != nil {
		log.
			WithField("entry_id", entryID).
			WithField("field", field).
			WithError(err).
			Error("failed to update form field")
		return err
	}
	return nil
}

func (i impl) Complete(entryID, userID string) error {
	rec, err := i.getRec(entryID)
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{
		"status": models.FormEntryCompleted,
	}
	if rec.CompletedAt == nil {
		updMap["completed_at"] = time.Now()
		updMap["completed_by"] = userID
	}
	return i.store.Update(entryID, updMap)
}

func (i impl) AddScreenshot(ctx context.Context, organisationID, workOrderID, entryID, userID, dataURL string) (string, error) {
	rec, err := i.getRec(entryID)
	if err != nil {
		return "", err
	}
	mediaID, err := i.media.StoreDataURL(ctx, organisationID, workOrderID, entryID, userID, dataURL)
	if err != nil {
		return "", err
	}
	attachments, err := decodeAttachments(rec.Attachments)
	if err != nil {
		return "", err
	}
	attachments = append(attachments, mediaID)
	if err = i.saveAttachments(entryID, attachments); err != nil {
		return "", err
	}
	return mediaID, nil
}

func (i impl) RemoveScreenshot(ctx context.Context, entryID, mediaID string) error {
	rec, err := i.getRec(entryID)
	if err != nil {
		return err
	}
	attachments, err := decodeAttachments(rec.Attachments)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(attachments))
	found := false
	for _, id := range attachments {
		if id == mediaID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		return apperr.NotFound("screenshot not attached to this entry")
	}
	if err = i.media.Delete(ctx, mediaID); err != nil && !apperr.IsNotFound(err) {
		return err
	}
	return i.saveAttachments(entryID, kept)
}

func (i impl) saveAttachments(entryID string, attachments []string) error {
	raw, err := json.Marshal(attachments)
	if err != nil {
		return errors.Wrap(err, "failed to serialize attachments")
	}
	return i.store.Update(entryID, map[string]interface{}{
		"attachments": string(raw),
	})
}

func decodeAttachments(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	attachments := []string{}
	if err := json.Unmarshal([]byte(raw), &attachments); err != nil {
		return nil, errors.Wrap(err, "malformed attachments payload")
	}
	return attachments, nil
}

func (i impl) FormDataJSON(workOrderID string) (string, error) {
	views, err := i.ListByWorkOrder(workOrderID)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(views)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize form data")
	}
	return string(raw), nil
}

func (i impl) getRec(entryID string) (*dbmodels.WorkFormEntry, error) {
	rec, err := i.store.GetByID(entryID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound("form entry not found")
	}
	return rec, nil
}

func convertAll(recList []dbmodels.WorkFormEntry) []formapimodels.FormEntryView {
	result := make([]formapimodels.FormEntryView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, formapimodels.FormEntryConvert(rec))
	}
	return result
}
