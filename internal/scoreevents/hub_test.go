package scoreevents_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/p-n-ai/pai-quiz/internal/scoreevents"
)

func dialHub(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func waitSubscribers(t *testing.T, hub *scoreevents.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Subscribers() = %d, want %d", hub.Subscribers(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_DeliversEvents(t *testing.T) {
	hub := scoreevents.NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	all := dialHub(t, srv, "")
	cardio := dialHub(t, srv, "?component=cardio")
	waitSubscribers(t, hub, 2)

	ctx := context.Background()
	hub.Emit(ctx, scoreevents.Event{LearnerID: "alice", Points: 3, Component: "renal"})
	hub.Emit(ctx, scoreevents.Event{LearnerID: "bob", Points: 5, Component: "cardio"})

	read := func(conn *websocket.Conn) scoreevents.Event {
		t.Helper()
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_, data, err := conn.Read(rctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		var e scoreevents.Event
		if err := json.Unmarshal(data, &e); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		return e
	}

	if e := read(all); e.LearnerID != "alice" {
		t.Errorf("first event = %+v, want alice", e)
	}
	if e := read(all); e.LearnerID != "bob" {
		t.Errorf("second event = %+v, want bob", e)
	}
	if e := read(cardio); e.LearnerID != "bob" || e.Points != 5 {
		t.Errorf("filtered event = %+v, want bob with 5 points", e)
	}
}

func TestHub_RemovesClosedSubscribers(t *testing.T) {
	hub := scoreevents.NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv, "")
	waitSubscribers(t, hub, 1)

	conn.Close(websocket.StatusNormalClosure, "")
	waitSubscribers(t, hub, 0)
}
