package models

type UserRole string

const (
	OrgAdminRole       UserRole = "ORG_ADMIN_ROLE"
	OrgUserRole        UserRole = "ORG_USER_ROLE"
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
)

var roleHumanName = map[UserRole]string{
	OrgAdminRole:       "Organisation administrator",
	OrgUserRole:        "Operator",
	UserRoleSuperAdmin: "System administrator",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsOrgAdmin() bool {
	return r == OrgAdminRole
}

const SystemUser = "system"
