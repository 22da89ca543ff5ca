package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wstypes "crm-service/internal/domain/websocket"
	"crm-service/internal/pkg/jwt"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, *jwt.Manager) {
	t.Helper()

	mgr, err := jwt.NewManager(jwt.Config{Secret: "hub-secret", Issuer: "crm-test", TTL: time.Hour})
	require.NoError(t, err)

	hub := NewHub(mgr.Verifier, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, mgr
}

func serve(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, err := hub.AuthenticateClient(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, auth)
		if !hub.Attach(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *wstypes.WSMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := wstypes.ParseMessage(data)
	require.NoError(t, err)
	return msg
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub, mgr := newTestHub(t)
	srv := serve(t, hub)

	tokenA, _, err := mgr.Generator.Generate("user-a", "a@example.com", "user")
	require.NoError(t, err)
	tokenB, _, err := mgr.Generator.Generate("user-b", "b@example.com", "admin")
	require.NoError(t, err)

	a := dial(t, srv, tokenA)
	b := dial(t, srv, tokenB)

	// the welcome message is sent after registration
	assert.Equal(t, wstypes.EventTypeConnected, readMessage(t, a).Type)
	assert.Equal(t, wstypes.EventTypeConnected, readMessage(t, b).Type)
	assert.Equal(t, 2, hub.TotalClients())

	hub.Broadcast(wstypes.NewMessage(wstypes.EventTypeCustomerCreated, map[string]string{"id": "c1"}))

	assert.Equal(t, wstypes.EventTypeCustomerCreated, readMessage(t, a).Type)
	assert.Equal(t, wstypes.EventTypeCustomerCreated, readMessage(t, b).Type)
}

func TestHub_PingPong(t *testing.T) {
	hub, mgr := newTestHub(t)
	srv := serve(t, hub)

	token, _, err := mgr.Generator.Generate("user-a", "a@example.com", "user")
	require.NoError(t, err)
	conn := dial(t, srv, token)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, wstypes.EventTypePong, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	assert.Equal(t, wstypes.EventTypeError, readMessage(t, conn).Type)
}

func TestHub_RejectsBadToken(t *testing.T) {
	hub, _ := newTestHub(t)

	_, err := hub.AuthenticateClient("")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = hub.AuthenticateClient("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, mgr := newTestHub(t)
	srv := serve(t, hub)

	token, _, err := mgr.Generator.Generate("user-a", "a@example.com", "user")
	require.NoError(t, err)
	conn := dial(t, srv, token)
	readMessage(t, conn)
	require.Equal(t, 1, hub.TotalClients())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.TotalClients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())

	// Run is not started, so the queue fills and later events are dropped.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Broadcast(wstypes.NewMessage(wstypes.EventTypeCustomerCreated, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked")
	}
}
