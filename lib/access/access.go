package access

import (
	"vessel-works-backend/db"
	assignmentstore "vessel-works-backend/lib/workorder/assignment-store"
	workorderstore "vessel-works-backend/lib/workorder/store"
	"vessel-works-backend/models"
)

// Provider answers every "may this user act on this work order"
// question in one place. Any member of the owning organisation may
// view; org admins additionally write and administer everything in
// their organisation; everyone else goes through assignment roles and
// the static role capability table.
type Provider interface {
	CanView(workOrderID, userID, organisationID string, role models.UserRole) (bool, error)
	CanWrite(workOrderID, userID, organisationID string, role models.UserRole) (bool, error)
	CanApprove(workOrderID, userID, organisationID string, role models.UserRole) (bool, error)
	CanAdmin(workOrderID, userID, organisationID string, role models.UserRole) (bool, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		workOrderStore:  workorderstore.NewInstance(db.DB),
		assignmentStore: assignmentstore.NewInstance(db.DB),
	}
}

func NewHandlerWithDeps(workOrders workorderstore.Provider, assignments assignmentstore.Provider) Provider {
	return impl{
		workOrderStore:  workOrders,
		assignmentStore: assignments,
	}
}

type impl struct {
	workOrderStore  workorderstore.Provider
	assignmentStore assignmentstore.Provider
}

func (i impl) CanView(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	// Membership of the owning organisation is enough to view; write and
	// admin still go through assignments or the admin roles.
	return i.workOrderStore.HasAccess(workOrderID, userID, organisationID, true)
}

func (i impl) CanWrite(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return i.hasCapability(workOrderID, userID, organisationID, role, models.CapWrite)
}

func (i impl) CanApprove(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return i.hasCapability(workOrderID, userID, organisationID, role, models.CapApprove)
}

func (i impl) CanAdmin(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return i.hasCapability(workOrderID, userID, organisationID, role, models.CapAdmin)
}

func (i impl) hasCapability(workOrderID, userID, organisationID string, role models.UserRole, capability models.Capability) (bool, error) {
	if role == models.OrgAdminRole || role == models.UserRoleSuperAdmin {
		// Admin capability still requires the work order to exist inside
		// the caller's organisation.
		return i.workOrderStore.HasAccess(workOrderID, userID, organisationID, true)
	}
	assignmentRole, err := i.assignmentStore.GetRole(workOrderID, userID)
	if err != nil {
		return false, err
	}
	if assignmentRole == nil {
		return false, nil
	}
	return assignmentRole.Has(capability), nil
}
