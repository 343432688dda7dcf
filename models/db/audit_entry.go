package dbmodels

import "time"

// AuditEntry is an append-only, hash-chained record of a mutating
// operation. Hash covers the entry's canonical projection plus the
// previous entry's hash.
type AuditEntry struct {
	ID            string    `gorm:"primaryKey;default:uuid_generate_v4()" json:"id"`
	Sequence      int64     `gorm:"uniqueIndex" json:"sequence"`
	ActorID       *string   `gorm:"index" json:"actor_id,omitempty"`
	ActorEmail    string    `json:"actor_email"`
	EntityType    string    `gorm:"index" json:"entity_type"`
	EntityID      string    `gorm:"index" json:"entity_id"`
	Action        string    `json:"action"`
	Description   string    `json:"description"`
	PreviousData  *string   `json:"previous_data,omitempty"`
	NewData       *string   `json:"new_data,omitempty"`
	ChangedFields string    `json:"changed_fields"`
	PreviousHash  *string   `json:"previous_hash,omitempty"`
	Hash          string    `json:"hash"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}
