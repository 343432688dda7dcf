package collabsession

import (
	"fmt"
	"sync"

	"github.com/gofiber/contrib/websocket"

	wsmodels "vessel-works-backend/models/ws"
)

// Manager owns every piece of in-memory collaboration state: video
// presence rooms, form rooms, advisory field locks and the reverse
// index used for disconnect cleanup. All maps live behind one mutex;
// nothing outside this package touches them. Durable state never lives
// here.
type Provider interface {
	Register(socketID string, peer wsmodels.PeerInfo, conn *websocket.Conn)
	// Unregister releases everything the connection held: video
	// presence, form membership and field locks, with the matching
	// broadcasts.
	Unregister(socketID string)

	JoinVideo(socketID, workOrderID string)
	LeaveVideo(socketID, workOrderID string)

	JoinForm(socketID, workOrderID string)
	LeaveForm(socketID, workOrderID string)

	// Lock is a single-owner advisory check-and-set. Re-locking an
	// already held key by the same connection is idempotent success.
	Lock(socketID, workOrderID, entryID, field string) (granted bool)
	Unlock(socketID, workOrderID, entryID, field string) (released bool)
	// ReleaseEntryLocks drops every lock on the entry regardless of
	// holder; entry completion uses it.
	ReleaseEntryLocks(workOrderID, entryID string)
	Locks(workOrderID string) []wsmodels.LockInfo

	SendTo(socketID, event string, data interface{})
	// Relay forwards a signaling frame to one target connection.
	Relay(targetSocketID, event string, data interface{}) bool
	// BroadcastForm fans out to the form room, skipping
	// excludeSocketID when non-empty.
	BroadcastForm(workOrderID, event string, data interface{}, excludeSocketID string)

	PeerIdentity(socketID string) (wsmodels.PeerInfo, bool)
	RoomStatus(workOrderID string) wsmodels.RoomStatusPayload
}

func NewManager() Provider {
	return &manager{
		sessions:   map[string]clientSession{},
		peers:      map[string]wsmodels.PeerInfo{},
		videoRooms: map[string]map[string]bool{},
		formRooms:  map[string]map[string]bool{},
		locks:      map[string]map[string]lockOwner{},
		joined:     map[string]map[string]bool{},
	}
}

type lockOwner struct {
	SocketID string
	Info     wsmodels.LockInfo
}

type manager struct {
	mu         sync.Mutex
	sessions   map[string]clientSession        // socketID
	peers      map[string]wsmodels.PeerInfo    // socketID
	videoRooms map[string]map[string]bool      // workOrderID -> socketIDs
	formRooms  map[string]map[string]bool      // workOrderID -> socketIDs
	locks      map[string]map[string]lockOwner // workOrderID -> "entryId:field"
	joined     map[string]map[string]bool      // socketID -> form workOrderIDs
}

func lockKey(entryID, field string) string {
	return entryID + ":" + field
}

func (m *manager) Register(socketID string, peer wsmodels.PeerInfo, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[socketID]; ok {
		old.stop()
	}
	m.sessions[socketID] = newSession(conn)
	m.peers[socketID] = peer
}

func (m *manager) Unregister(socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for workOrderID, room := range m.videoRooms {
		if room[socketID] {
			m.leaveVideoLocked(socketID, workOrderID)
		}
	}
	for workOrderID := range m.joined[socketID] {
		m.releaseConnectionLocksLocked(socketID, workOrderID)
		m.leaveFormLocked(socketID, workOrderID)
	}
	delete(m.joined, socketID)
	delete(m.peers, socketID)
	if sess, ok := m.sessions[socketID]; ok {
		delete(m.sessions, socketID)
		sess.stop()
		close(sess.sendCh)
	}
}

func (m *manager) JoinVideo(socketID, workOrderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.videoRooms[workOrderID]
	if room == nil {
		room = map[string]bool{}
		m.videoRooms[workOrderID] = room
	}
	peer := m.peers[socketID]
	for member := range room {
		m.sendLocked(member, wsmodels.EvPeerJoined, peer)
	}
	room[socketID] = true

	participants := make([]wsmodels.PeerInfo, 0, len(room))
	for member := range room {
		participants = append(participants, m.peers[member])
	}
	m.sendLocked(socketID, wsmodels.EvRoomState, wsmodels.RoomStatePayload{
		RoomID:       fmt.Sprintf("wo-%v", workOrderID),
		Participants: participants,
		Count:        len(room),
	})
	m.broadcastCountLocked(workOrderID)
}

func (m *manager) LeaveVideo(socketID, workOrderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveVideoLocked(socketID, workOrderID)
}

func (m *manager) leaveVideoLocked(socketID, workOrderID string) {
	room := m.videoRooms[workOrderID]
	if room == nil || !room[socketID] {
		return
	}
	delete(room, socketID)
	if len(room) == 0 {
		delete(m.videoRooms, workOrderID)
	} else {
		for member := range room {
			m.sendLocked(member, wsmodels.EvPeerLeft, wsmodels.PeerInfo{SocketID: socketID})
		}
	}
	m.broadcastCountLocked(workOrderID)
}

// broadcastCountLocked pushes the video presence count to both room
// families so form-only collaborators see it too.
func (m *manager) broadcastCountLocked(workOrderID string) {
	payload := wsmodels.RoomCountPayload{
		WorkOrderID: workOrderID,
		Count:       len(m.videoRooms[workOrderID]),
	}
	for member := range m.videoRooms[workOrderID] {
		m.sendLocked(member, wsmodels.EvRoomCount, payload)
	}
	for member := range m.formRooms[workOrderID] {
		m.sendLocked(member, wsmodels.EvRoomCount, payload)
	}
}

func (m *manager) JoinForm(socketID, workOrderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.formRooms[workOrderID]
	if room == nil {
		room = map[string]bool{}
		m.formRooms[workOrderID] = room
	}
	room[socketID] = true
	if m.joined[socketID] == nil {
		m.joined[socketID] = map[string]bool{}
	}
	m.joined[socketID][workOrderID] = true

	// The joiner alone gets the lock snapshot; everyone else already
	// has it.
	if held := m.locks[workOrderID]; len(held) > 0 {
		snapshot := make([]wsmodels.LockInfo, 0, len(held))
		for _, owner := range held {
			snapshot = append(snapshot, owner.Info)
		}
		m.sendLocked(socketID, wsmodels.EvFormLockState, wsmodels.LockStatePayload{
			WorkOrderID: workOrderID,
			Locks:       snapshot,
		})
	}
}

func (m *manager) LeaveForm(socketID, workOrderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseConnectionLocksLocked(socketID, workOrderID)
	m.leaveFormLocked(socketID, workOrderID)
	if joined := m.joined[socketID]; joined != nil {
		delete(joined, workOrderID)
	}
}

func (m *manager) leaveFormLocked(socketID, workOrderID string) {
	room := m.formRooms[workOrderID]
	if room == nil {
		return
	}
	delete(room, socketID)
	if len(room) == 0 {
		delete(m.formRooms, workOrderID)
	}
}

func (m *manager) Lock(socketID, workOrderID, entryID, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.locks[workOrderID]
	if held == nil {
		held = map[string]lockOwner{}
		m.locks[workOrderID] = held
	}
	key := lockKey(entryID, field)
	if owner, exists := held[key]; exists && owner.SocketID != socketID {
		m.sendLocked(socketID, wsmodels.EvFormLockDenied, wsmodels.LockDeniedPayload{
			EntryID: entryID,
			Field:   field,
			LockedBy: wsmodels.ParticipantInfo{
				UserID:   owner.Info.UserID,
				UserName: owner.Info.UserName,
			},
		})
		return false
	}
	peer := m.peers[socketID]
	held[key] = lockOwner{
		SocketID: socketID,
		Info: wsmodels.LockInfo{
			EntryID:  entryID,
			Field:    field,
			UserID:   peer.UserID,
			UserName: peer.UserName,
		},
	}
	m.broadcastFormLocked(workOrderID, wsmodels.EvFormLocked, wsmodels.LockedPayload{
		WorkOrderID: workOrderID,
		EntryID:     entryID,
		Field:       field,
		UserID:      peer.UserID,
		UserName:    peer.UserName,
	}, "")
	return true
}

func (m *manager) Unlock(socketID, workOrderID, entryID, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.locks[workOrderID]
	key := lockKey(entryID, field)
	owner, exists := held[key]
	// Only the holder may release; a third party's unlock is ignored.
	if !exists || owner.SocketID != socketID {
		return false
	}
	m.releaseLocked(workOrderID, key, owner)
	return true
}

func (m *manager) Locks(workOrderID string) []wsmodels.LockInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.locks[workOrderID]
	snapshot := make([]wsmodels.LockInfo, 0, len(held))
	for _, owner := range held {
		snapshot = append(snapshot, owner.Info)
	}
	return snapshot
}

func (m *manager) ReleaseEntryLocks(workOrderID, entryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, owner := range m.locks[workOrderID] {
		if owner.Info.EntryID == entryID {
			m.releaseLocked(workOrderID, key, owner)
		}
	}
}

func (m *manager) releaseConnectionLocksLocked(socketID, workOrderID string) {
	for key, owner := range m.locks[workOrderID] {
		if owner.SocketID == socketID {
			m.releaseLocked(workOrderID, key, owner)
		}
	}
}

func (m *manager) releaseLocked(workOrderID, key string, owner lockOwner) {
	delete(m.locks[workOrderID], key)
	if len(m.locks[workOrderID]) == 0 {
		delete(m.locks, workOrderID)
	}
	m.broadcastFormLocked(workOrderID, wsmodels.EvFormUnlocked, wsmodels.UnlockedPayload{
		WorkOrderID: workOrderID,
		EntryID:     owner.Info.EntryID,
		Field:       owner.Info.Field,
	}, "")
}

func (m *manager) SendTo(socketID, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendLocked(socketID, event, data)
}

func (m *manager) Relay(targetSocketID, event string, data interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[targetSocketID]; !ok {
		return false
	}
	m.sendLocked(targetSocketID, event, data)
	return true
}

func (m *manager) BroadcastForm(workOrderID, event string, data interface{}, excludeSocketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastFormLocked(workOrderID, event, data, excludeSocketID)
}

func (m *manager) broadcastFormLocked(workOrderID, event string, data interface{}, excludeSocketID string) {
	for member := range m.formRooms[workOrderID] {
		if member == excludeSocketID {
			continue
		}
		m.sendLocked(member, event, data)
	}
}

func (m *manager) sendLocked(socketID, event string, data interface{}) {
	sess, ok := m.sessions[socketID]
	if !ok {
		return
	}
	sess.enqueue(wsmodels.OutEnvelope{Event: event, Data: data})
}

func (m *manager) PeerIdentity(socketID string) (wsmodels.PeerInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	peer, ok := m.peers[socketID]
	return peer, ok
}

func (m *manager) RoomStatus(workOrderID string) wsmodels.RoomStatusPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.videoRooms[workOrderID]
	participants := make([]wsmodels.ParticipantInfo, 0, len(room))
	for member := range room {
		peer := m.peers[member]
		participants = append(participants, wsmodels.ParticipantInfo{
			UserID:   peer.UserID,
			UserName: peer.UserName,
		})
	}
	return wsmodels.RoomStatusPayload{
		WorkOrderID:  workOrderID,
		Count:        len(room),
		Participants: participants,
		IsActive:     len(room) > 0,
	}
}
