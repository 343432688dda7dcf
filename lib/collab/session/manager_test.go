package collabsession

import (
	"testing"

	"github.com/stretchr/testify/require"

	wsmodels "vessel-works-backend/models/ws"
)

func register(m Provider, socketID, userID, userName string) {
	m.Register(socketID, wsmodels.PeerInfo{
		SocketID: socketID,
		UserID:   userID,
		UserName: userName,
	}, nil)
}

func TestFieldLocks(t *testing.T) {
	t.Run("grant and deny", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinForm("sock-a", "wo-1")
		m.JoinForm("sock-b", "wo-1")

		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "foulingRating"))
		require.False(t, m.Lock("sock-b", "wo-1", "entry-1", "foulingRating"))

		locks := m.Locks("wo-1")
		require.Len(t, locks, 1)
		require.Equal(t, "user-a", locks[0].UserID)
		require.Equal(t, "Alice", locks[0].UserName)
	})

	t.Run("re-lock by the holder is idempotent", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		m.JoinForm("sock-a", "wo-1")

		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))
		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))
		require.Len(t, m.Locks("wo-1"), 1)
	})

	t.Run("distinct fields lock independently", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinForm("sock-a", "wo-1")
		m.JoinForm("sock-b", "wo-1")

		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))
		require.True(t, m.Lock("sock-b", "wo-1", "entry-1", "foulingRating"))
		require.True(t, m.Lock("sock-b", "wo-1", "entry-2", "notes"))
		require.Len(t, m.Locks("wo-1"), 3)
	})

	t.Run("only the holder can unlock", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinForm("sock-a", "wo-1")
		m.JoinForm("sock-b", "wo-1")
		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))

		require.False(t, m.Unlock("sock-b", "wo-1", "entry-1", "notes"))
		require.Len(t, m.Locks("wo-1"), 1)

		require.True(t, m.Unlock("sock-a", "wo-1", "entry-1", "notes"))
		require.Empty(t, m.Locks("wo-1"))
	})

	t.Run("unlock without a lock is a no-op", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		require.False(t, m.Unlock("sock-a", "wo-1", "entry-1", "notes"))
	})

	t.Run("entry completion releases every lock on the entry", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinForm("sock-a", "wo-1")
		m.JoinForm("sock-b", "wo-1")
		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))
		require.True(t, m.Lock("sock-b", "wo-1", "entry-1", "foulingRating"))
		require.True(t, m.Lock("sock-a", "wo-1", "entry-2", "notes"))

		m.ReleaseEntryLocks("wo-1", "entry-1")

		locks := m.Locks("wo-1")
		require.Len(t, locks, 1)
		require.Equal(t, "entry-2", locks[0].EntryID)
	})
}

func TestDisconnectCleanup(t *testing.T) {
	t.Run("unregister releases locks and presence", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinVideo("sock-a", "wo-1")
		m.JoinVideo("sock-b", "wo-1")
		m.JoinForm("sock-a", "wo-1")
		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))

		m.Unregister("sock-a")

		require.Empty(t, m.Locks("wo-1"))
		status := m.RoomStatus("wo-1")
		require.Equal(t, 1, status.Count)
		require.Len(t, status.Participants, 1)
		require.Equal(t, "user-b", status.Participants[0].UserID)

		_, ok := m.PeerIdentity("sock-a")
		require.False(t, ok)
	})

	t.Run("a freed field can be locked by another connection", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinForm("sock-a", "wo-1")
		m.JoinForm("sock-b", "wo-1")
		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))
		require.False(t, m.Lock("sock-b", "wo-1", "entry-1", "notes"))

		m.Unregister("sock-a")
		require.True(t, m.Lock("sock-b", "wo-1", "entry-1", "notes"))
	})

	t.Run("leaving the form room frees that room's locks only", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		m.JoinForm("sock-a", "wo-1")
		m.JoinForm("sock-a", "wo-2")
		require.True(t, m.Lock("sock-a", "wo-1", "entry-1", "notes"))
		require.True(t, m.Lock("sock-a", "wo-2", "entry-9", "notes"))

		m.LeaveForm("sock-a", "wo-1")

		require.Empty(t, m.Locks("wo-1"))
		require.Len(t, m.Locks("wo-2"), 1)
	})
}

func TestVideoPresence(t *testing.T) {
	t.Run("room status reflects joins and leaves", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")

		status := m.RoomStatus("wo-1")
		require.False(t, status.IsActive)
		require.Equal(t, 0, status.Count)

		m.JoinVideo("sock-a", "wo-1")
		m.JoinVideo("sock-b", "wo-1")
		status = m.RoomStatus("wo-1")
		require.True(t, status.IsActive)
		require.Equal(t, 2, status.Count)

		m.LeaveVideo("sock-a", "wo-1")
		status = m.RoomStatus("wo-1")
		require.Equal(t, 1, status.Count)

		m.LeaveVideo("sock-b", "wo-1")
		status = m.RoomStatus("wo-1")
		require.False(t, status.IsActive)
		require.Empty(t, status.Participants)
	})

	t.Run("rooms are isolated per work order", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		register(m, "sock-b", "user-b", "Bob")
		m.JoinVideo("sock-a", "wo-1")
		m.JoinVideo("sock-b", "wo-2")

		require.Equal(t, 1, m.RoomStatus("wo-1").Count)
		require.Equal(t, 1, m.RoomStatus("wo-2").Count)
	})

	t.Run("relay to a vanished peer reports failure", func(t *testing.T) {
		m := NewManager()
		register(m, "sock-a", "user-a", "Alice")
		require.True(t, m.Relay("sock-a", wsmodels.EvSignalOffer, nil))
		m.Unregister("sock-a")
		require.False(t, m.Relay("sock-a", wsmodels.EvSignalOffer, nil))
	})
}
