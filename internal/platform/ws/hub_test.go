package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testEvent struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

// drain waits until Run has taken every queued broadcast. Run handles one
// message at a time, so anything registered afterwards sees its effects.
func drain(t *testing.T, hub *Hub) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for len(hub.broadcast) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("broadcast queue was not drained")
		}
		time.Sleep(time.Millisecond)
	}
}

func dial(t *testing.T, srv *httptest.Server, slot string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/watch/" + slot
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) failed: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, testEvent) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() failed: %v", err)
	}

	var msg struct {
		Slot  string    `json:"slot"`
		Event testEvent `json:"event"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("cannot decode %s: %v", data, err)
	}
	return msg.Slot, msg.Event
}

func TestHubRetainedThenLive(t *testing.T) {
	hub, srv := startHub(t)

	hub.Publish("alice", testEvent{Type: "moved", Value: 1}, true)
	hub.Publish("alice", testEvent{Type: "score", Value: 4}, false)

	drain(t, hub)

	conn := dial(t, srv, "alice")
	slot, ev := readMessage(t, conn)
	if slot != "alice" || ev.Type != "moved" || ev.Value != 1 {
		t.Errorf("first message = %s %+v, want alice moved/1", slot, ev)
	}

	hub.Publish("alice", testEvent{Type: "score", Value: 8}, false)
	_, ev = readMessage(t, conn)
	if ev.Type != "score" || ev.Value != 8 {
		t.Errorf("live message = %+v, want score/8", ev)
	}
}

func TestHubSlotsAreIsolated(t *testing.T) {
	hub, srv := startHub(t)

	hub.Publish("alice", testEvent{Type: "moved", Value: 1}, true)
	hub.Publish("bob", testEvent{Type: "moved", Value: 2}, true)
	drain(t, hub)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	readMessage(t, alice)
	readMessage(t, bob)

	hub.Publish("bob", testEvent{Type: "score", Value: 16}, false)
	hub.Publish("alice", testEvent{Type: "score", Value: 32}, false)

	if _, ev := readMessage(t, alice); ev.Value != 32 {
		t.Errorf("alice received %+v, want the alice score", ev)
	}
	if _, ev := readMessage(t, bob); ev.Value != 16 {
		t.Errorf("bob received %+v, want the bob score", ev)
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	c := &client{hub: hub, slot: "carol", send: make(chan []byte, 1)}

	hub.retained["carol"] = []byte("board")
	hub.registerClient(c)
	if !hub.slots["carol"][c] {
		t.Fatal("client was not registered")
	}
	if got := <-c.send; string(got) != "board" {
		t.Errorf("retained message = %q, want board", got)
	}

	hub.unregisterClient(c)
	if _, ok := hub.slots["carol"]; ok {
		t.Error("empty slot should be removed")
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}

	// A second unregister is a no-op.
	hub.unregisterClient(c)
}

func TestHubDropsSlowWatcher(t *testing.T) {
	hub := NewHub(nil)
	c := &client{hub: hub, slot: "dave", send: make(chan []byte)}
	hub.slots["dave"] = map[*client]bool{c: true}

	hub.broadcastMessage(outbound{slot: "dave", data: []byte("x")})

	if _, ok := hub.slots["dave"]; ok {
		t.Error("watcher with a full buffer should be disconnected")
	}
}

func TestPublishAfterShutdown(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	done := make(chan struct{})
	go func() {
		for range broadcastBuffer + 10 {
			hub.Publish("eve", testEvent{Type: "moved"}, false)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked after shutdown")
	}
}

// waitLive polls until the live slot list equals want.
func waitLive(t *testing.T, hub *Hub, want ...string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := hub.Live(context.Background())
		if strings.Join(got, ",") == strings.Join(want, ",") {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("got live slots %v, want %v", got, want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHubForget(t *testing.T) {
	hub, srv := startHub(t)

	hub.Publish("alice", testEvent{Type: "moved", Value: 1}, true)
	hub.Publish("bob", testEvent{Type: "moved", Value: 2}, true)
	waitLive(t, hub, "alice", "bob")

	// Forget is queued behind the publish before it.
	hub.Publish("alice", testEvent{Type: "moved", Value: 3}, true)
	hub.Forget("alice")
	waitLive(t, hub, "bob")

	// A watcher of the finished slot never sees its last board. The next
	// game's board arrives first whether it is sent live or retained.
	conn := dial(t, srv, "alice")
	hub.Publish("alice", testEvent{Type: "moved", Value: 4}, true)
	if _, ev := readMessage(t, conn); ev.Type != "moved" || ev.Value != 4 {
		t.Errorf("got %+v, want moved/4", ev)
	}
}

func TestHubForgetDirect(t *testing.T) {
	hub := NewHub(nil)
	hub.broadcastMessage(outbound{slot: "carol", data: []byte("board"), retain: true})
	hub.broadcastMessage(outbound{slot: "carol", forget: true})

	if _, ok := hub.retained["carol"]; ok {
		t.Error("got a retained board after forget, want none")
	}
}

func TestHubLiveIndex(t *testing.T) {
	hub, srv := startHub(t)

	hub.Publish("zoe", testEvent{Type: "moved"}, true)
	hub.Publish("amir", testEvent{Type: "moved"}, true)
	hub.Publish("quiet", testEvent{Type: "score"}, false)
	waitLive(t, hub, "amir", "zoe")

	resp, err := http.Get(srv.URL + "/watch")
	if err != nil {
		t.Fatalf("GET /watch failed: %v", err)
	}
	defer resp.Body.Close()

	var got []string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("cannot decode slot list: %v", err)
	}
	if strings.Join(got, ",") != "amir,zoe" {
		t.Errorf("got %v, want [amir zoe]", got)
	}
}

func TestLiveAfterShutdown(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	if got := hub.Live(context.Background()); got != nil {
		t.Errorf("got %v, want nil from a stopped hub", got)
	}
	hub.Forget("alice")
}
