package notification

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/jwt"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestHubDeliversOnlyToTargetMerchant(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	target := &Connection{MerchantID: uuid.New(), Send: make(chan []byte, 1)}
	other := &Connection{MerchantID: uuid.New(), Send: make(chan []byte, 1)}
	hub.Register(target)
	hub.Register(other)
	waitFor(t, func() bool { return hub.ConnectionCount() == 2 })

	if err := hub.SendToMerchantJSON(target.MerchantID, map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-target.Send:
		if !strings.Contains(string(msg), `"ping"`) {
			t.Fatalf("unexpected message %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("target did not receive message")
	}
	select {
	case msg := <-other.Send:
		t.Fatalf("other merchant received %s", msg)
	default:
	}

	hub.Unregister(target)
	waitFor(t, func() bool { return hub.ConnectionCount() == 1 })
	if _, open := <-target.Send; open {
		t.Fatal("expected send channel closed after unregister")
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	conn := &Connection{MerchantID: uuid.New(), Send: make(chan []byte, 1)}
	hub.Register(conn)
	waitFor(t, func() bool { return hub.ConnectionCount() == 1 })

	_ = hub.SendToMerchantJSON(conn.MerchantID, "first")
	_ = hub.SendToMerchantJSON(conn.MerchantID, "second")
	if got := <-conn.Send; string(got) != `"first"` {
		t.Fatalf("expected first message kept, got %s", got)
	}
}

func TestHubIgnoresOwnRemoteEcho(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	conn := &Connection{MerchantID: uuid.New(), Send: make(chan []byte, 2)}
	hub.Register(conn)
	waitFor(t, func() bool { return hub.ConnectionCount() == 1 })

	own, _ := json.Marshal(merchantEvent{MerchantID: conn.MerchantID.String(), Payload: []byte(`"x"`), SenderInstanceID: hub.instanceID})
	hub.handleRemoteEvent(string(own))
	remote, _ := json.Marshal(merchantEvent{MerchantID: conn.MerchantID.String(), Payload: []byte(`"y"`), SenderInstanceID: "other"})
	hub.handleRemoteEvent(string(remote))

	if got := <-conn.Send; string(got) != `"y"` {
		t.Fatalf("expected only remote event, got %s", got)
	}
}

func TestWebSocketReceivesNotification(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	merchantID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(merchantID, "+221770000000")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	server := httptest.NewServer(middleware.Auth(jwtSvc)(NewWSHandler(hub, nil)))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	waitFor(t, func() bool { return hub.ConnectionCount() == 1 })

	svc := NewService(&fakeRepo{}, hub)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	n, err := svc.Create(ctx, merchantID, TypeReminderDueSoon, "Échéance demain", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), n.ID.String()) {
		t.Fatalf("expected notification %s in %s", n.ID, msg)
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	hub := NewHub(nil)
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	server := httptest.NewServer(middleware.Auth(jwtSvc)(NewWSHandler(hub, nil)))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail without token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %+v", resp)
	}
}
