package vesselhandler

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"vessel-works-backend/db"
	"vessel-works-backend/lib/apperr"
	audithandler "vessel-works-backend/lib/audit"
	vesselstore "vessel-works-backend/lib/vessel/store"
	vesselapimodels "vessel-works-backend/models/api/vessel"
	dbmodels "vessel-works-backend/models/db"
)

type Provider interface {
	Create(organisationID, userID string, data vesselapimodels.VesselData) (id string, err error)
	GetByID(organisationID, id string) (vesselapimodels.VesselView, error)
	List(organisationID string) ([]vesselapimodels.VesselView, error)
	Update(organisationID, id, userID string, data vesselapimodels.VesselData) error
	SoftDelete(organisationID, id, userID string) error
	AddComponent(organisationID, vesselID string, data vesselapimodels.ComponentData) (id string, err error)
	DeleteComponent(organisationID, vesselID, componentID string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: vesselstore.NewInstance(db.DB),
		audit: audithandler.Instance,
	}
}

type impl struct {
	store vesselstore.Provider
	audit audithandler.Provider
}

func (i impl) Create(organisationID, userID string, data vesselapimodels.VesselData) (id string, err error) {
	rec := dbmodels.Vessel{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrganisationID: organisationID,
		},
		Name:          data.Name,
		VesselType:    data.VesselType,
		IMONumber:     data.IMONumber,
		HomePort:      data.HomePort,
		LengthOverall: data.LengthOverall,
		Beam:          data.Beam,
		MaxDraft:      data.MaxDraft,
		GrossTonnage:  data.GrossTonnage,
		YearBuilt:     data.YearBuilt,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		log.
			WithField("organisation_id", organisationID).
			WithError(err).
			Error("failed to create vessel")
		return "", err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     userID,
		EntityType:  "Vessel",
		EntityID:    id,
		Action:      audithandler.ActionCreate,
		Description: fmt.Sprintf("Created vessel %q", data.Name),
	})
	return id, nil
}

func (i impl) GetByID(organisationID, id string) (vesselapimodels.VesselView, error) {
	rec, err := i.store.GetByID(organisationID, id)
	if err != nil {
		return vesselapimodels.VesselView{}, err
	}
	if rec == nil {
		return vesselapimodels.VesselView{}, apperr.NotFound("vessel not found")
	}
	return vesselapimodels.VesselConvert(*rec), nil
}

func (i impl) List(organisationID string) ([]vesselapimodels.VesselView, error) {
	recList, err := i.store.List(organisationID)
	if err != nil {
		return nil, err
	}
	result := make([]vesselapimodels.VesselView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, vesselapimodels.VesselConvert(rec))
	}
	return result, nil
}

func (i impl) Update(organisationID, id, userID string, data vesselapimodels.VesselData) error {
	err := i.store.Update(organisationID, id, map[string]interface{}{
		"name":           data.Name,
		"vessel_type":    data.VesselType,
		"imo_number":     data.IMONumber,
		"home_port":      data.HomePort,
		"length_overall": data.LengthOverall,
		"beam":           data.Beam,
		"max_draft":      data.MaxDraft,
		"gross_tonnage":  data.GrossTonnage,
		"year_built":     data.YearBuilt,
	})
	if err != nil {
		log.
			WithField("rec_id", id).
			WithError(err).
			Error("failed to update vessel")
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     userID,
		EntityType:  "Vessel",
		EntityID:    id,
		Action:      audithandler.ActionUpdate,
		Description: fmt.Sprintf("Updated vessel %q", data.Name),
	})
	return nil
}

func (i impl) SoftDelete(organisationID, id, userID string) error {
	err := i.store.SoftDelete(organisationID, id)
	if err != nil {
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     userID,
		EntityType:  "Vessel",
		EntityID:    id,
		Action:      audithandler.ActionDelete,
		Description: "Soft-deleted vessel",
	})
	return nil
}

func (i impl) AddComponent(organisationID, vesselID string, data vesselapimodels.ComponentData) (string, error) {
	rec, err := i.store.GetByID(organisationID, vesselID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", apperr.NotFound("vessel not found")
	}
	return i.store.AddComponent(dbmodels.VesselComponent{
		VesselID:  vesselID,
		Name:      data.Name,
		Category:  data.Category,
		Location:  data.Location,
		SortOrder: data.SortOrder,
	})
}

func (i impl) DeleteComponent(organisationID, vesselID, componentID string) error {
	rec, err := i.store.GetByID(organisationID, vesselID)
	if err != nil {
		return err
	}
	if rec == nil {
		return apperr.NotFound("vessel not found")
	}
	return i.store.DeleteComponent(vesselID, componentID)
}
