package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, postID int64) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		postID: postID,
	}
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got, true
	case <-time.After(50 * time.Millisecond):
		return Message{}, false
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 0)
	c2 := mockClient(hub, 0)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 0)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 0)
	c2 := mockClient(hub, 0)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(NewMessage("comment", "created", 42, 7, map[string]any{"author_id": float64(1)}))

	for _, c := range []*Client{c1, c2} {
		got, ok := receive(t, c)
		if !ok {
			t.Fatal("timeout waiting for message")
		}
		if got.Type != "comment_created" {
			t.Errorf("expected type comment_created, got %s", got.Type)
		}
		if got.ID != 42 || got.PostID != 7 {
			t.Errorf("got id %d post %d, want 42 and 7", got.ID, got.PostID)
		}
	}
}

func TestBroadcastFiltersByPost(t *testing.T) {
	hub := NewHub(slog.Default())

	all := mockClient(hub, 0)
	watching := mockClient(hub, 7)
	other := mockClient(hub, 8)
	for _, c := range []*Client{all, watching, other} {
		hub.Register(c)
	}

	hub.Broadcast(NewMessage("like", "created", 1, 7, nil))

	if _, ok := receive(t, all); !ok {
		t.Error("unfiltered client should receive the message")
	}
	if _, ok := receive(t, watching); !ok {
		t.Error("client watching post 7 should receive the message")
	}
	if _, ok := receive(t, other); ok {
		t.Error("client watching post 8 should not receive the message")
	}
}

func TestBroadcastNilHub(t *testing.T) {
	var hub *Hub
	// Should not panic
	hub.Broadcast(NewMessage("post", "created", 1, 1, nil))
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(NewMessage("post", "removed", 1, 1, nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 0)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", int64(i), 0, nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(NewMessage("test", "dropped", 999, 0, nil))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("post", "updated", 5, 5, nil)
	if msg.Type != "post_updated" {
		t.Errorf("expected type post_updated, got %s", msg.Type)
	}
	if msg.Entity != "post" {
		t.Errorf("expected entity post, got %s", msg.Entity)
	}
	if msg.Action != "updated" {
		t.Errorf("expected action updated, got %s", msg.Action)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, int64(i%3))
			hub.Register(c)
			hub.Broadcast(NewMessage("test", "concurrent", 0, int64(i%3), nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketRejectsBadPostID(t *testing.T) {
	h := HandleWebSocket(NewHub(slog.Default()), nil, slog.Default())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/ws?post=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "invalid post id") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
