package models

// AssignmentRole is the per-work-order collaborator role. It grants
// access independent of organisation membership, which is how
// cross-organisation collaborators are invited.
type AssignmentRole string

const (
	RoleLead       AssignmentRole = "LEAD"
	RoleTeamMember AssignmentRole = "TEAM_MEMBER"
	RoleReviewer   AssignmentRole = "REVIEWER"
	RoleObserver   AssignmentRole = "OBSERVER"
)

type Capability string

const (
	CapView    Capability = "VIEW"
	CapWrite   Capability = "WRITE"
	CapApprove Capability = "APPROVE"
	CapAdmin   Capability = "ADMIN"
)

// roleCapabilities is the single place collaborator roles map to
// capabilities. Call sites check capabilities, never role names.
var roleCapabilities = map[AssignmentRole][]Capability{
	RoleLead:       {CapView, CapWrite, CapApprove, CapAdmin},
	RoleTeamMember: {CapView, CapWrite},
	RoleReviewer:   {CapView, CapWrite, CapApprove},
	RoleObserver:   {CapView},
}

func (r AssignmentRole) Has(cap Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == cap {
			return true
		}
	}
	return false
}

func (r AssignmentRole) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}
