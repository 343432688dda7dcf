package initializers

import (
	"context"

	"vessel-works-backend/config"
	"vessel-works-backend/fiberlog"
	accesshandler "vessel-works-backend/lib/access"
	audithandler "vessel-works-backend/lib/audit"
	authhandler "vessel-works-backend/lib/auth"
	collabhandler "vessel-works-backend/lib/collab"
	mediahandler "vessel-works-backend/lib/media"
	notificationhandler "vessel-works-backend/lib/notification"
	reporthandler "vessel-works-backend/lib/report"
	initchecker "vessel-works-backend/lib/utils/init-checker"
	vesselhandler "vessel-works-backend/lib/vessel"
	workflowhandler "vessel-works-backend/lib/workflow"
	workformhandler "vessel-works-backend/lib/workform"
	workorderhandler "vessel-works-backend/lib/workorder"
	overdueworker "vessel-works-backend/lib/workorder/overdue-worker"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	audithandler.NewHandler()
	authhandler.NewHandler()
	accesshandler.NewHandler()
	mediahandler.NewHandler()
	vesselhandler.NewHandler()
	workorderhandler.NewHandler()
	notificationhandler.NewHandler()
	workflowhandler.NewHandler(notificationhandler.Instance)
	workformhandler.NewHandler()
	reporthandler.NewHandler()
	collabhandler.NewHandler()

	initchecker.CheckInit(
		"audit", audithandler.Instance,
		"auth", authhandler.Instance,
		"access", accesshandler.Instance,
		"media", mediahandler.Instance,
		"vessel", vesselhandler.Instance,
		"work order", workorderhandler.Instance,
		"notification", notificationhandler.Instance,
		"workflow", workflowhandler.Instance,
		"work form", workformhandler.Instance,
		"report", reporthandler.Instance,
		"collaboration", collabhandler.Manager,
	)

	overdueworker.StartWorker(ctx)
}
