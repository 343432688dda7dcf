package wsmodels

import "encoding/json"

// Envelope is the wire frame for every collaboration message, both
// directions: {"event": "...", "data": {...}}. Event names are part of
// the client contract and must not change.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type OutEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Inbound events.
const (
	EvRoomJoin             = "room:join"
	EvRoomLeave            = "room:leave"
	EvRoomStatus           = "room:status"
	EvSignalOffer          = "signal:offer"
	EvSignalAnswer         = "signal:answer"
	EvSignalICECandidate   = "signal:ice-candidate"
	EvFormJoin             = "form:join"
	EvFormLeave            = "form:leave"
	EvFormLock             = "form:lock"
	EvFormUnlock           = "form:unlock"
	EvFormUpdate           = "form:update"
	EvFormScreenshot       = "form:screenshot"
	EvFormScreenshotRemove = "form:screenshot-remove"
	EvFormComplete         = "form:complete"
)

// Outbound events.
const (
	EvPeerJoined            = "peer:joined"
	EvPeerLeft              = "peer:left"
	EvRoomState             = "room:state"
	EvRoomCount             = "room:count"
	EvRoomError             = "room:error"
	EvFormLockState         = "form:lock-state"
	EvFormLocked            = "form:locked"
	EvFormLockDenied        = "form:lock-denied"
	EvFormUnlocked          = "form:unlocked"
	EvFormUpdated           = "form:updated"
	EvFormScreenshotAdded   = "form:screenshot-added"
	EvFormScreenshotRemoved = "form:screenshot-removed"
	EvFormCompleted         = "form:completed"
	EvFormError             = "form:error"
)

type RoomRef struct {
	WorkOrderID string `json:"workOrderId"`
}

type SignalPayload struct {
	TargetSocketID string          `json:"targetSocketId"`
	Offer          json.RawMessage `json:"offer,omitempty"`
	Answer         json.RawMessage `json:"answer,omitempty"`
	Candidate      json.RawMessage `json:"candidate,omitempty"`
}

type SignalRelay struct {
	FromSocketID string          `json:"fromSocketId"`
	UserID       string          `json:"userId,omitempty"`
	UserName     string          `json:"userName,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

type PeerInfo struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type RoomStatePayload struct {
	RoomID       string     `json:"roomId"`
	Participants []PeerInfo `json:"participants"`
	Count        int        `json:"count"`
}

type RoomCountPayload struct {
	WorkOrderID string `json:"workOrderId"`
	Count       int    `json:"count"`
}

type RoomStatusPayload struct {
	WorkOrderID  string            `json:"workOrderId"`
	Count        int               `json:"count"`
	Participants []ParticipantInfo `json:"participants"`
	IsActive     bool              `json:"isActive"`
}

type ParticipantInfo struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type FieldRef struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
	Field       string `json:"field"`
}

type FieldUpdate struct {
	WorkOrderID string      `json:"workOrderId"`
	EntryID     string      `json:"entryId"`
	Field       string      `json:"field"`
	Value       interface{} `json:"value"`
}

type FieldUpdated struct {
	FieldUpdate
	UserID string `json:"userId"`
}

type LockInfo struct {
	EntryID  string `json:"entryId"`
	Field    string `json:"field"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type LockStatePayload struct {
	WorkOrderID string     `json:"workOrderId"`
	Locks       []LockInfo `json:"locks"`
}

type LockedPayload struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
	Field       string `json:"field"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
}

type LockDeniedPayload struct {
	EntryID  string          `json:"entryId"`
	Field    string          `json:"field"`
	LockedBy ParticipantInfo `json:"lockedBy"`
}

type UnlockedPayload struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
	Field       string `json:"field"`
}

type ScreenshotPayload struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
	DataURL     string `json:"dataUrl"`
}

type ScreenshotRemovePayload struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
	Index       int    `json:"index"`
}

type ScreenshotChanged struct {
	WorkOrderID string   `json:"workOrderId"`
	EntryID     string   `json:"entryId"`
	Attachments []string `json:"attachments"`
	UserID      string   `json:"userId"`
}

type EntryRef struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
}

type CompletedPayload struct {
	WorkOrderID string `json:"workOrderId"`
	EntryID     string `json:"entryId"`
	UserID      string `json:"userId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
