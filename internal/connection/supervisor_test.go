package connection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/terris/internal/actor"
	"github.com/rickgao/terris/internal/session"
)

const testSession = session.ID("550E8400-E29B-41D4-A716-446655440000")

// harness runs a Supervisor behind an httptest server.
type harness struct {
	server  *httptest.Server
	sups    chan *Supervisor
	reasons chan StopReason
}

func newHarness(t *testing.T, cfg Config, handler actor.Address) *harness {
	t.Helper()
	h := &harness{
		sups:    make(chan *Supervisor, 4),
		reasons: make(chan StopReason, 4),
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		sup := New(conn, testSession, "/", handler, cfg, nil)
		h.sups <- sup
		h.reasons <- sup.Run(context.Background())
	}))
	t.Cleanup(h.server.Close)
	return h
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (h *harness) supervisor(t *testing.T) *Supervisor {
	t.Helper()
	select {
	case sup := <-h.sups:
		return sup
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for supervisor")
		return nil
	}
}

func waitLive(t *testing.T, sup *Supervisor) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for sup.State() != StateLive {
		if time.Now().After(deadline) {
			t.Fatalf("supervisor never went live, state = %s", sup.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (h *harness) reason(t *testing.T, within time.Duration) StopReason {
	t.Helper()
	select {
	case r := <-h.reasons:
		return r
	case <-time.After(within):
		t.Fatal("timeout waiting for supervisor to stop")
		return ""
	}
}

// inbox spawns a handler that forwards every envelope to a channel.
func inbox(t *testing.T) (*actor.Ref, chan actor.Envelope) {
	t.Helper()
	ch := make(chan actor.Envelope, 64)
	ref := actor.Spawn(context.Background(), actor.HandlerFunc(func(ctx context.Context, env actor.Envelope) {
		ch <- env
	}), actor.DefaultOptions())
	t.Cleanup(ref.Stop)
	return ref, ch
}

// next returns the next envelope whose message has type T.
func next[T any](t *testing.T, ch chan actor.Envelope) (T, actor.Envelope) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case env := <-ch:
			if m, ok := env.Message.(T); ok {
				return m, env
			}
		case <-deadline:
			var zero T
			t.Fatalf("timeout waiting for %T", zero)
			return zero, actor.Envelope{}
		}
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = time.Second
	cfg.ClientTimeout = 2 * time.Second
	return cfg
}

func TestSupervisor_JoinRelayReply(t *testing.T) {
	handler, ch := inbox(t)
	h := newHarness(t, testConfig(), handler)
	client := h.dial(t)
	sup := h.supervisor(t)

	joined, _ := next[Joined](t, ch)
	if joined.Session != testSession || joined.Route != "/" {
		t.Errorf("Joined = %+v", joined)
	}
	if joined.Outbox == nil {
		t.Fatal("Joined.Outbox is nil")
	}

	if err := client.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	frame, env := next[Frame](t, ch)
	if string(frame.Data) != "hello" || frame.Type != websocket.TextMessage {
		t.Errorf("Frame = %+v", frame)
	}
	if frame.Session != testSession {
		t.Errorf("Frame.Session = %q", frame.Session)
	}
	if frame.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should not be zero")
	}
	if env.Sender != joined.Outbox {
		t.Error("frame sender should be the connection outbox")
	}

	env.Sender.Send(actor.Envelope{Message: Outbound{Type: websocket.TextMessage, Data: []byte("world")}})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "world" {
		t.Errorf("reply = %q, want world", data)
	}

	if sup.State() != StateLive {
		t.Errorf("State = %s, want live", sup.State())
	}
	if got := sup.Stats().FramesRelayed; got != 1 {
		t.Errorf("FramesRelayed = %d, want 1", got)
	}
}

func TestSupervisor_BinaryFrameRelayed(t *testing.T) {
	handler, ch := inbox(t)
	h := newHarness(t, testConfig(), handler)
	client := h.dial(t)

	client.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})

	frame, _ := next[Frame](t, ch)
	if frame.Type != websocket.BinaryMessage || len(frame.Data) != 3 {
		t.Errorf("Frame = %+v", frame)
	}
}

func TestSupervisor_EchoMode(t *testing.T) {
	handler, ch := inbox(t)
	cfg := testConfig()
	cfg.RelayMode = RelayEcho
	h := newHarness(t, cfg, handler)
	client := h.dial(t)

	client.WriteMessage(websocket.TextMessage, []byte("echo me"))

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "echo me" {
		t.Errorf("echo = %q", data)
	}

	next[Joined](t, ch)
	select {
	case env := <-ch:
		if _, ok := env.Message.(Frame); ok {
			t.Error("echo mode should not forward frames to the handler")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSupervisor_PingGetsPong(t *testing.T) {
	handler, _ := inbox(t)
	h := newHarness(t, testConfig(), handler)
	client := h.dial(t)

	pong := make(chan string, 1)
	client.SetPongHandler(func(data string) error {
		pong <- data
		return nil
	})
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := client.WriteControl(websocket.PingMessage, []byte("are you there"), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	select {
	case data := <-pong:
		if data != "are you there" {
			t.Errorf("pong payload = %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for pong")
	}
}

func TestSupervisor_HeartbeatTimeout(t *testing.T) {
	handler, ch := inbox(t)
	cfg := testConfig()
	cfg.HeartbeatInterval = 20 * time.Millisecond
	cfg.ClientTimeout = 60 * time.Millisecond
	h := newHarness(t, cfg, handler)

	// The quiet client never reads, so it never answers pings.
	h.dial(t)
	quiet := h.supervisor(t)

	// The healthy client reads, so gorilla answers pings with pongs.
	healthy := h.dial(t)
	go func() {
		for {
			if _, _, err := healthy.ReadMessage(); err != nil {
				return
			}
		}
	}()
	alive := h.supervisor(t)

	if got := h.reason(t, time.Second); got != ReasonHeartbeatTimeout {
		t.Fatalf("reason = %s, want %s", got, ReasonHeartbeatTimeout)
	}

	select {
	case <-quiet.Done():
	case <-time.After(time.Second):
		t.Fatal("quiet supervisor did not stop")
	}
	if quiet.State() != StateStopped {
		t.Errorf("quiet State = %s, want stopped", quiet.State())
	}

	left, _ := next[Left](t, ch)
	if left.Reason != ReasonHeartbeatTimeout {
		t.Errorf("Left.Reason = %s", left.Reason)
	}

	// The other connection and the shared handler are unaffected.
	time.Sleep(150 * time.Millisecond)
	if alive.State() != StateLive {
		t.Errorf("healthy State = %s, want live", alive.State())
	}
	if !handler.Send(actor.Envelope{Message: "still here"}) {
		t.Error("shared handler should still accept messages")
	}
}

func TestSupervisor_PeerClose(t *testing.T) {
	handler, ch := inbox(t)
	h := newHarness(t, testConfig(), handler)
	client := h.dial(t)
	h.supervisor(t)

	client.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second),
	)

	if got := h.reason(t, time.Second); got != ReasonPeerClosed {
		t.Errorf("reason = %s, want %s", got, ReasonPeerClosed)
	}
	left, _ := next[Left](t, ch)
	if left.Session != testSession {
		t.Errorf("Left.Session = %q", left.Session)
	}
}

func TestSupervisor_Close(t *testing.T) {
	handler, _ := inbox(t)
	h := newHarness(t, testConfig(), handler)
	h.dial(t)
	sup := h.supervisor(t)
	waitLive(t, sup)

	sup.Close()
	sup.Close()

	if got := h.reason(t, time.Second); got != ReasonShutdown {
		t.Errorf("reason = %s, want %s", got, ReasonShutdown)
	}
	if sup.Outbox().Send(actor.Envelope{Message: "late"}) {
		t.Error("outbox should reject sends after stop")
	}
}

func TestSupervisor_ReadLimit(t *testing.T) {
	handler, _ := inbox(t)
	cfg := testConfig()
	cfg.MaxFrameSize = 8
	h := newHarness(t, cfg, handler)
	client := h.dial(t)

	client.WriteMessage(websocket.TextMessage, []byte("this frame is far too large"))

	if got := h.reason(t, time.Second); got != ReasonProtocolError {
		t.Errorf("reason = %s, want %s", got, ReasonProtocolError)
	}
}

func TestSupervisor_RateLimitDrops(t *testing.T) {
	handler, ch := inbox(t)
	cfg := testConfig()
	cfg.FramesPerSecond = 1
	h := newHarness(t, cfg, handler)
	client := h.dial(t)
	sup := h.supervisor(t)

	for i := 0; i < 5; i++ {
		client.WriteMessage(websocket.TextMessage, []byte("spam"))
	}
	next[Frame](t, ch)

	deadline := time.Now().Add(time.Second)
	for sup.Stats().FramesReceived < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stats := sup.Stats()
	if stats.FramesDropped < 3 {
		t.Errorf("FramesDropped = %d, want >= 3", stats.FramesDropped)
	}
	if sup.State() != StateLive {
		t.Errorf("dropping frames must not stop the connection, state = %s", sup.State())
	}
}

func TestValidateTiming(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		timeout  time.Duration
		wantErr  bool
	}{
		{"defaults", 5 * time.Second, 10 * time.Second, false},
		{"generous", time.Second, time.Minute, false},
		{"too tight", 5 * time.Second, 9 * time.Second, true},
		{"zero interval", 0, time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiming(tt.interval, tt.timeout)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTiming() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.name == "too tight" && !errors.Is(err, ErrTimingInvalid) {
				t.Errorf("err = %v, want ErrTimingInvalid", err)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StateLive.String() != "live" || StateStopped.String() != "stopped" {
		t.Error("unexpected state names")
	}
	if State(42).String() != "state(42)" {
		t.Errorf("unknown state = %q", State(42).String())
	}
}
