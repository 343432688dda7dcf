package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	dbmodels "vessel-works-backend/models/db"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("running migrations")
	entities := []struct {
		name  string
		model interface{}
	}{
		{"Organisation", &dbmodels.Organisation{}},
		{"User", &dbmodels.User{}},
		{"Vessel", &dbmodels.Vessel{}},
		{"VesselComponent", &dbmodels.VesselComponent{}},
		{"Workflow", &dbmodels.Workflow{}},
		{"WorkflowStep", &dbmodels.WorkflowStep{}},
		{"Task", &dbmodels.Task{}},
		{"WorkOrder", &dbmodels.WorkOrder{}},
		{"WorkOrderAssignment", &dbmodels.WorkOrderAssignment{}},
		{"TaskSubmission", &dbmodels.TaskSubmission{}},
		{"WorkFormEntry", &dbmodels.WorkFormEntry{}},
		{"Media", &dbmodels.Media{}},
		{"AuditEntry", &dbmodels.AuditEntry{}},
	}
	for _, entity := range entities {
		if err := DB.AutoMigrate(entity.model); err != nil {
			return errors.Wrapf(err, "failed to migrate %v", entity.name)
		}
	}
	log.Info("migrations finished")
	return nil
}
