package vesselapimodels

import (
	"github.com/pkg/errors"

	dbmodels "vessel-works-backend/models/db"
)

type VesselData struct {
	Name          string  `json:"name"`
	VesselType    string  `json:"vessel_type"`
	IMONumber     string  `json:"imo_number"`
	HomePort      string  `json:"home_port"`
	LengthOverall float64 `json:"length_overall"`
	Beam          float64 `json:"beam"`
	MaxDraft      float64 `json:"max_draft"`
	GrossTonnage  float64 `json:"gross_tonnage"`
	YearBuilt     int     `json:"year_built"`
}

func (d VesselData) Validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type ComponentData struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Location  string `json:"location"`
	SortOrder int    `json:"sort_order"`
}

func (d ComponentData) Validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type ComponentView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Location  string `json:"location"`
	SortOrder int    `json:"sort_order"`
}

type VesselView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	VesselType    string          `json:"vessel_type"`
	IMONumber     string          `json:"imo_number"`
	HomePort      string          `json:"home_port"`
	LengthOverall float64         `json:"length_overall"`
	Beam          float64         `json:"beam"`
	MaxDraft      float64         `json:"max_draft"`
	GrossTonnage  float64         `json:"gross_tonnage"`
	YearBuilt     int             `json:"year_built"`
	Components    []ComponentView `json:"components,omitempty"`
}

func VesselConvert(rec dbmodels.Vessel) VesselView {
	view := VesselView{
		ID:            rec.ID,
		Name:          rec.Name,
		VesselType:    rec.VesselType,
		IMONumber:     rec.IMONumber,
		HomePort:      rec.HomePort,
		LengthOverall: rec.LengthOverall,
		Beam:          rec.Beam,
		MaxDraft:      rec.MaxDraft,
		GrossTonnage:  rec.GrossTonnage,
		YearBuilt:     rec.YearBuilt,
	}
	for _, component := range rec.Components {
		view.Components = append(view.Components, ComponentView{
			ID:        component.ID,
			Name:      component.Name,
			Category:  component.Category,
			Location:  component.Location,
			SortOrder: component.SortOrder,
		})
	}
	return view
}
