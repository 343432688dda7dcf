package reporthandler

import (
	"bytes"

	log "github.com/sirupsen/logrus"

	pdfreport "vessel-works-backend/lib/report/pdf"
	xlsreport "vessel-works-backend/lib/report/xls"
	workformhandler "vessel-works-backend/lib/workform"
	workorderhandler "vessel-works-backend/lib/workorder"
	workorderapimodels "vessel-works-backend/models/api/workorder"
)

type Provider interface {
	// InspectionPDF renders the full inspection report for one work
	// order from its form entries.
	InspectionPDF(organisationID, workOrderID string) (fileName string, pdfFile []byte, err error)
	InspectionXLSX(organisationID, workOrderID string) (fileName string, file *bytes.Buffer, err error)
	RegisterXLSX(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (fileName string, file *bytes.Buffer, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

func (i impl) InspectionPDF(organisationID, workOrderID string) (string, []byte, error) {
	workOrder, err := workorderhandler.Instance.GetByID(organisationID, workOrderID)
	if err != nil {
		return "", nil, err
	}
	entries, err := workformhandler.Instance.ListByWorkOrder(workOrderID)
	if err != nil {
		return "", nil, err
	}
	pdfFile, err := pdfreport.Generate(workOrder, entries)
	if err != nil {
		log.
			WithField("rec_id", workOrderID).
			WithError(err).
			Error("failed to generate inspection pdf")
		return "", nil, err
	}
	return workOrder.ReferenceNumber + ".pdf", pdfFile, nil
}

func (i impl) InspectionXLSX(organisationID, workOrderID string) (string, *bytes.Buffer, error) {
	workOrder, err := workorderhandler.Instance.GetByID(organisationID, workOrderID)
	if err != nil {
		return "", nil, err
	}
	entries, err := workformhandler.Instance.ListByWorkOrder(workOrderID)
	if err != nil {
		return "", nil, err
	}
	file, err := xlsreport.GenerateInspection(entries)
	if err != nil {
		log.
			WithField("rec_id", workOrderID).
			WithError(err).
			Error("failed to generate inspection xlsx")
		return "", nil, err
	}
	return workOrder.ReferenceNumber + ".xlsx", file, nil
}

func (i impl) RegisterXLSX(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (string, *bytes.Buffer, error) {
	list, _, err := workorderhandler.Instance.List(organisationID, userID, filter)
	if err != nil {
		return "", nil, err
	}
	file, err := xlsreport.GenerateRegister(list)
	if err != nil {
		log.
			WithField("organisation_id", organisationID).
			WithError(err).
			Error("failed to generate work order register xlsx")
		return "", nil, err
	}
	return "work-orders.xlsx", file, nil
}
