package notificationhandler

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"vessel-works-backend/config"
	"vessel-works-backend/db"
	"vessel-works-backend/lib/smtp"
	assignmentstore "vessel-works-backend/lib/workorder/assignment-store"
	"vessel-works-backend/models"
	dbmodels "vessel-works-backend/models/db"
)

// Provider implements the workflow engine's notifier. Mail failures
// are logged and swallowed; advancement must never stall on smtp.
type Provider interface {
	StepEntered(workOrder dbmodels.WorkOrder, step dbmodels.WorkflowStep)
	WorkflowCompleted(workOrder dbmodels.WorkOrder)
	// OverdueNotice alerts lead assignees that a work order slipped past
	// its scheduled end.
	OverdueNotice(workOrder dbmodels.WorkOrder)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		assignmentStore: assignmentstore.NewInstance(db.DB),
		smtpClient:      smtp.Instance,
		sender:          config.Conf.Smtp.Sender,
	}
}

func NewHandlerWithDeps(assignments assignmentstore.Provider, smtpClient smtp.Provider, sender string) Provider {
	return impl{
		assignmentStore: assignments,
		smtpClient:      smtpClient,
		sender:          sender,
	}
}

type impl struct {
	assignmentStore assignmentstore.Provider
	smtpClient      smtp.Provider
	sender          string
}

func (i impl) StepEntered(workOrder dbmodels.WorkOrder, step dbmodels.WorkflowStep) {
	if !step.Type.IsReview() {
		return
	}
	subject := fmt.Sprintf("Review required: %v", workOrder.ReferenceNumber)
	message := fmt.Sprintf(
		"Work order %v (%v) has reached step %q and is waiting for review.",
		workOrder.ReferenceNumber, workOrder.Title, step.Name)
	i.mailByRole(workOrder.ID, models.RoleReviewer, subject, message)
}

func (i impl) WorkflowCompleted(workOrder dbmodels.WorkOrder) {
	subject := fmt.Sprintf("Completed: %v", workOrder.ReferenceNumber)
	message := fmt.Sprintf(
		"Work order %v (%v) has completed all workflow steps.",
		workOrder.ReferenceNumber, workOrder.Title)
	i.mailByRole(workOrder.ID, models.RoleLead, subject, message)
}

func (i impl) OverdueNotice(workOrder dbmodels.WorkOrder) {
	subject := fmt.Sprintf("Overdue: %v", workOrder.ReferenceNumber)
	message := fmt.Sprintf(
		"Work order %v (%v) is past its scheduled end and is still %v.",
		workOrder.ReferenceNumber, workOrder.Title, workOrder.Status)
	i.mailByRole(workOrder.ID, models.RoleLead, subject, message)
}

func (i impl) mailByRole(workOrderID string, role models.AssignmentRole, subject, message string) {
	logger := log.
		WithField("rec_id", workOrderID).
		WithField("role", role)
	assignments, err := i.assignmentStore.ListByWorkOrder(workOrderID)
	if err != nil {
		logger.WithError(err).Error("failed to load assignments for notification")
		return
	}
	for _, assignment := range assignments {
		if assignment.Role != role || assignment.User == nil || assignment.User.Email == "" {
			continue
		}
		if err = i.smtpClient.SendEMail(i.sender, assignment.User.Email, message, subject); err != nil {
			logger.
				WithField("recipient", assignment.User.Email).
				WithError(err).
				Error("failed to send notification mail")
		}
	}
}
