package audithandler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/db"
	auditstore "vessel-works-backend/lib/audit/store"
	dbmodels "vessel-works-backend/models/db"
)

type LogData struct {
	ActorID       string
	ActorEmail    string
	EntityType    string
	EntityID      string
	Action        string
	Description   string
	PreviousData  interface{}
	NewData       interface{}
	ChangedFields []string
	IPAddress     string
	UserAgent     string
}

const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionStatusChange = "STATUS_CHANGE"
	ActionAssignment   = "ASSIGNMENT"
	ActionSubmission   = "SUBMISSION"
	ActionApproval     = "APPROVAL"
	ActionRejection    = "REJECTION"
)

type Provider interface {
	// Log appends an entry to the hash chain. Failures are logged, not
	// returned; auditing must never fail the audited operation.
	Log(data LogData)
	History(entityType, entityID string, limit int) ([]dbmodels.AuditEntry, error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		store: auditstore.NewInstance(db.DB),
	}
}

func NewHandlerWithStore(store auditstore.Provider) Provider {
	return &impl{
		store: store,
	}
}

type impl struct {
	store auditstore.Provider
	// chainMu serializes appends so sequence numbers and previous-hash
	// links stay consistent within this process.
	chainMu sync.Mutex
}

func (i *impl) Log(data LogData) {
	if err := i.append(data); err != nil {
		log.
			WithField("entity_type", data.EntityType).
			WithField("entity_id", data.EntityID).
			WithError(err).
			Error("failed to append audit entry")
	}
}

func (i *impl) append(data LogData) error {
	i.chainMu.Lock()
	defer i.chainMu.Unlock()

	last, err := i.store.Last()
	if err != nil {
		return errors.Wrap(err, "failed to read audit chain head")
	}
	var previousHash *string
	var sequence int64 = 1
	if last != nil {
		previousHash = &last.Hash
		sequence = last.Sequence + 1
	}

	now := time.Now()
	rec := dbmodels.AuditEntry{
		Sequence:      sequence,
		ActorEmail:    data.ActorEmail,
		EntityType:    data.EntityType,
		EntityID:      data.EntityID,
		Action:        data.Action,
		Description:   data.Description,
		ChangedFields: marshalOrEmpty(data.ChangedFields, "[]"),
		PreviousHash:  previousHash,
		IPAddress:     data.IPAddress,
		UserAgent:     data.UserAgent,
		CreatedAt:     now,
	}
	if data.ActorID != "" {
		rec.ActorID = &data.ActorID
	}
	if data.PreviousData != nil {
		serialized := marshalOrEmpty(data.PreviousData, "null")
		rec.PreviousData = &serialized
	}
	if data.NewData != nil {
		serialized := marshalOrEmpty(data.NewData, "null")
		rec.NewData = &serialized
	}
	rec.Hash = ComputeHash(rec)

	_, err = i.store.Create(rec)
	return err
}

func (i *impl) History(entityType, entityID string, limit int) ([]dbmodels.AuditEntry, error) {
	return i.store.ListByEntity(entityType, entityID, limit)
}

func marshalOrEmpty(v interface{}, fallback string) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(raw)
}
