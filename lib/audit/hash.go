package audithandler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	dbmodels "vessel-works-backend/models/db"
)

// hashProjection is the canonical subset of an entry covered by its
// hash. Field order is fixed by the struct, timestamps are RFC3339 UTC.
type hashProjection struct {
	Sequence     int64   `json:"sequence"`
	ActorID      *string `json:"actorId"`
	EntityType   string  `json:"entityType"`
	EntityID     string  `json:"entityId"`
	Action       string  `json:"action"`
	Description  string  `json:"description"`
	PreviousHash *string `json:"previousHash"`
	CreatedAt    string  `json:"createdAt"`
}

func ComputeHash(rec dbmodels.AuditEntry) string {
	projection := hashProjection{
		Sequence:     rec.Sequence,
		ActorID:      rec.ActorID,
		EntityType:   rec.EntityType,
		EntityID:     rec.EntityID,
		Action:       rec.Action,
		Description:  rec.Description,
		PreviousHash: rec.PreviousHash,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	raw, _ := json.Marshal(projection)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// VerifyChain walks entries in ascending sequence order and reports the
// first break, if any.
func VerifyChain(entries []dbmodels.AuditEntry) (ok bool, brokenAt int64) {
	var prevHash *string
	for _, entry := range entries {
		if entry.PreviousHash == nil != (prevHash == nil) {
			return false, entry.Sequence
		}
		if prevHash != nil && *entry.PreviousHash != *prevHash {
			return false, entry.Sequence
		}
		if ComputeHash(entry) != entry.Hash {
			return false, entry.Sequence
		}
		h := entry.Hash
		prevHash = &h
	}
	return true, 0
}
