package overdueworker

import (
	"context"
	"time"

	"vessel-works-backend/db"
	notificationhandler "vessel-works-backend/lib/notification"
	baseworker "vessel-works-backend/lib/utils/base-worker"
	"vessel-works-backend/lib/utils/helpers"
	workorderstore "vessel-works-backend/lib/workorder/store"
)

func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl:       *baseworker.NewInstance("OverdueWorkOrderWorker", 30*time.Second, 60*time.Minute),
		workOrderStore: workorderstore.NewInstance(db.DB),
		notifier:       notificationhandler.Instance,
		noticed:        map[string]bool{},
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	workOrderStore workorderstore.Provider
	notifier       notificationhandler.Provider
	// noticed keeps one notice per work order per process lifetime.
	noticed map[string]bool
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.workOrderStore.ListOverdue(time.Now())
	if err != nil {
		logger.WithError(err).Error("failed to list overdue work orders")
		return
	}
	for _, rec := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		if i.noticed[rec.ID] {
			continue
		}
		logger.
			WithField("rec_id", rec.ID).
			WithField("reference_number", rec.ReferenceNumber).
			WithField("status", rec.Status).
			Warn("work order is past its scheduled end")
		i.notifier.OverdueNotice(rec)
		i.noticed[rec.ID] = true
	}
}
