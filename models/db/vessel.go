package dbmodels

type Vessel struct {
	BaseOrgModel
	Name          string            `json:"name"`
	VesselType    string            `json:"vessel_type"`
	IMONumber     string            `json:"imo_number"`
	HomePort      string            `json:"home_port"`
	LengthOverall float64           `json:"length_overall"`
	Beam          float64           `json:"beam"`
	MaxDraft      float64           `json:"max_draft"`
	GrossTonnage  float64           `json:"gross_tonnage"`
	YearBuilt     int               `json:"year_built"`
	IsDeleted     bool              `gorm:"default:false" json:"is_deleted"`
	Components    []VesselComponent `gorm:"foreignKey:VesselID" json:"components,omitempty"`
}

// VesselComponent is one element of the vessel's general arrangement
// (hull section, propeller, sea chest, ...). Work forms generate one
// entry per component.
type VesselComponent struct {
	BaseModel
	VesselID  string `gorm:"index" json:"vessel_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Location  string `json:"location"`
	SortOrder int    `json:"sort_order"`
}
