package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    int
		wantErr bool
	}{
		{"single", `{"type":"arc","data":{"startLat":1,"startLng":2,"endLat":3,"endLng":4}}`, 1, false},
		{"batch", `{"type":"arcs","data":[{"startLat":1},{"startLat":2}]}`, 2, false},
		{"empty batch", `{"type":"arcs","data":[]}`, 0, false},
		{"server error", `{"type":"error","data":"rate limited"}`, 0, true},
		{"unknown", `{"type":"ping"}`, 0, true},
		{"garbage", `not json`, 0, true},
		{"bad arc", `{"type":"arc","data":[1,2]}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arcs, err := Decode([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(arcs) != tt.want {
				t.Errorf("got %d arcs; want %d", len(arcs), tt.want)
			}
		})
	}

	_, err := Decode([]byte(`{"type":"ping"}`))
	if !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("unknown type error = %v; want ErrUnknownMessage", err)
	}
}

func TestDecodeFields(t *testing.T) {
	arcs, err := Decode([]byte(`{"type":"arc","data":{"startLat":48.85,"startLng":2.35,"endLat":40.71,"endLng":-74,"color":"#ff0000","name":"CDG-JFK"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a := arcs[0]
	if a.StartLat != 48.85 || a.EndLng != -74 || a.Color != "#ff0000" || a.Name != "CDG-JFK" {
		t.Errorf("decoded arc = %+v", a)
	}
}

var upgrader = websocket.Upgrader{}

// newServer answers every connection by waiting for the subscribe message
// and then sending messages, closing afterwards when hangUp is set.
func newServer(t *testing.T, messages []string, hangUp bool, conns *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		conns.Add(1)

		if _, sub, err := conn.ReadMessage(); err != nil || !strings.Contains(string(sub), "subscribe") {
			return
		}
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		if hangUp {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientDeliversArcs(t *testing.T) {
	var conns atomic.Int32
	srv := newServer(t, []string{
		`{"type":"arc","data":{"startLat":1,"endLat":2}}`,
		`{"type":"ping"}`,
		`{"type":"arcs","data":[{"startLat":3},{"startLat":4}]}`,
	}, false, &conns)
	defer srv.Close()

	c := New(wsURL(srv), 8)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	var got []float64
	timeout := time.After(5 * time.Second)
	for len(got) < 3 {
		select {
		case a := <-c.Arcs():
			got = append(got, a.StartLat)
		case <-timeout:
			t.Fatalf("received %v before timeout", got)
		}
	}
	if got[0] != 1 || got[1] != 3 || got[2] != 4 {
		t.Errorf("arcs in order %v; want [1 3 4]", got)
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v; want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if c.Received() != 3 || c.Dropped() != 0 {
		t.Errorf("received %d dropped %d; want 3 and 0", c.Received(), c.Dropped())
	}
}

func TestClientDropsWhenFull(t *testing.T) {
	var conns atomic.Int32
	srv := newServer(t, []string{
		`{"type":"arcs","data":[{"startLat":1},{"startLat":2},{"startLat":3}]}`,
	}, false, &conns)
	defer srv.Close()

	c := New(wsURL(srv), 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitFor(t, "drops", func() bool { return c.Dropped() == 2 })
	a := <-c.Arcs()
	if a.StartLat != 1 {
		t.Errorf("kept arc %v; want the first one", a.StartLat)
	}
}

func TestClientReconnects(t *testing.T) {
	var conns atomic.Int32
	srv := newServer(t, []string{`{"type":"arc","data":{"startLat":1}}`}, true, &conns)
	defer srv.Close()

	c := New(wsURL(srv), 16)
	c.MinBackoff = 10 * time.Millisecond
	c.MaxBackoff = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitFor(t, "reconnect", func() bool { return conns.Load() >= 2 && c.Sessions() >= 2 })
}

func TestClientDialFailureStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	c := New(url, 1)
	c.MinBackoff = 10 * time.Millisecond
	c.MaxBackoff = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := c.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v; want context.DeadlineExceeded", err)
	}
	if c.Sessions() != 0 {
		t.Errorf("sessions = %d; want 0", c.Sessions())
	}
}
