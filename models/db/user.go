package dbmodels

import (
	"fmt"
	"vessel-works-backend/models"
)

type User struct {
	BaseOrgModel
	Email        string          `gorm:"uniqueIndex" json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	PasswordHash string          `json:"-"`
	Role         models.UserRole `json:"role"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	Organisation *Organisation   `json:"organisation,omitempty"`
}

func (u User) GetFullName() string {
	return fmt.Sprintf("%v %v", u.FirstName, u.LastName)
}
