package dbmodels

type Organisation struct {
	BaseModel
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Country      string `json:"country"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
