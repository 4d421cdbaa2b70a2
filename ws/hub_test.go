package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient, gerçek websocket bağlantısı olmadan Hub'a takılabilen
// client. ReadPump/WritePump çalışmaz; testler send channel'ını
// doğrudan okur.
func newTestClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed unexpectedly")
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.register <- alice
	hub.register <- bob

	// register channel unbuffered — iki gönderim de işlendiğinde
	// kullanıcılar online listesindedir.
	require.Eventually(t, func() bool {
		return len(hub.GetOnlineUserIDs()) == 2
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToAll(Event{Op: OpPostCreate, Data: map[string]any{"id": "p1"}})

	evA := recvEvent(t, alice)
	evB := recvEvent(t, bob)
	assert.Equal(t, OpPostCreate, evA.Op)
	assert.Equal(t, OpPostCreate, evB.Op)
	assert.Equal(t, evA.Seq, evB.Seq, "a single broadcast carries one sequence number")
}

func TestHub_BroadcastToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.register <- alice
	hub.register <- bob

	require.Eventually(t, func() bool {
		return len(hub.GetOnlineUserIDs()) == 2
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToUser("alice", Event{Op: OpFriendRequest})

	ev := recvEvent(t, alice)
	assert.Equal(t, OpFriendRequest, ev.Op)

	select {
	case data := <-bob.send:
		t.Fatalf("bob should not receive a targeted event, got: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastToAllExcept(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.register <- alice
	hub.register <- bob

	require.Eventually(t, func() bool {
		return len(hub.GetOnlineUserIDs()) == 2
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToAllExcept("alice", Event{Op: OpTypingStart})

	ev := recvEvent(t, bob)
	assert.Equal(t, OpTypingStart, ev.Op)

	select {
	case data := <-alice.send:
		t.Fatalf("excluded user received the event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PresenceCallbacks(t *testing.T) {
	hub := NewHub()

	var mu sync.Mutex
	var connects, disconnects []string
	hub.SetPresenceCallbacks(
		func(userID string) { mu.Lock(); connects = append(connects, userID); mu.Unlock() },
		func(userID string) { mu.Lock(); disconnects = append(disconnects, userID); mu.Unlock() },
		nil,
	)
	go hub.Run()

	tab1 := newTestClient(hub, "alice")
	tab2 := newTestClient(hub, "alice")
	hub.register <- tab1
	hub.register <- tab2

	// Callback yalnızca İLK bağlantıda tetiklenir.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(connects) == 1 && connects[0] == "alice"
	}, time.Second, 10*time.Millisecond)

	// İlk sekme kapanır: kullanıcı hâlâ online, disconnect yok.
	hub.unregister <- tab1
	require.Eventually(t, func() bool {
		return len(hub.GetOnlineUserIDs()) == 1
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Empty(t, disconnects)
	mu.Unlock()

	// Son sekme de kapanınca disconnect tetiklenir.
	hub.unregister <- tab2
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(disconnects) == 1 && disconnects[0] == "alice"
	}, time.Second, 10*time.Millisecond)

	assert.Empty(t, hub.GetOnlineUserIDs())
}

func TestHub_SeqMonotonic(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, "alice")
	hub.register <- alice

	require.Eventually(t, func() bool {
		return len(hub.GetOnlineUserIDs()) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToAll(Event{Op: OpPostCreate})
	hub.BroadcastToAll(Event{Op: OpPostUpdate})
	hub.BroadcastToAll(Event{Op: OpPostDelete})

	first := recvEvent(t, alice)
	second := recvEvent(t, alice)
	third := recvEvent(t, alice)
	assert.Less(t, first.Seq, second.Seq)
	assert.Less(t, second.Seq, third.Seq)
}
