package server

import (
	"encoding/json"
	"testing"
)

func TestHubSendToUser(t *testing.T) {
	h := NewHub()
	a := &client{userID: 1, send: make(chan []byte, 1)}
	b := &client{userID: 2, send: make(chan []byte, 1)}
	h.register(a)
	h.register(b)

	h.SendToUser(1, map[string]string{"event": "notification"})

	select {
	case msg := <-a.send:
		var got map[string]string
		if err := json.Unmarshal(msg, &got); err != nil || got["event"] != "notification" {
			t.Errorf("message = %s", msg)
		}
	default:
		t.Fatal("user 1 received nothing")
	}
	if len(b.send) != 0 {
		t.Error("user 2 received another user's event")
	}

	// a full buffer drops instead of blocking
	h.SendToUser(2, "one")
	h.SendToUser(2, "two")
	if len(b.send) != 1 {
		t.Errorf("buffered = %d, want 1", len(b.send))
	}

	h.unregister(a)
	if h.Online(1) != 0 {
		t.Error("user 1 still online after unregister")
	}
	if _, ok := <-a.send; ok {
		t.Error("send channel left open")
	}
	h.unregister(a)
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	c := &client{userID: 5, send: make(chan []byte, 1)}
	h.register(c)
	h.Close()

	if _, ok := <-c.send; ok {
		t.Error("send channel left open after Close")
	}
	if h.register(&client{userID: 6, send: make(chan []byte)}) {
		t.Error("closed hub accepted a client")
	}
	h.unregister(c)
}
