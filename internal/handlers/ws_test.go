package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, server *httptest.Server, cookies []*http.Cookie) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"

	header := http.Header{}
	header.Set("Origin", "http://localhost:3000")
	for _, cookie := range cookies {
		header.Add("Cookie", cookie.Name+"="+cookie.Value)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return conn
}

func readWSMessage(t *testing.T, conn *websocket.Conn) map[string]string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func requireWSSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))

	var msg map[string]string
	assert.Error(t, conn.ReadJSON(&msg), "expected no message, got %v", msg)
}

func TestWebSocketRequiresAuthentication(t *testing.T) {
	r := setupRouter(t)
	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"

	header := http.Header{}
	header.Set("Origin", "http://localhost:3000")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketPushesRefreshOnTaskMutations(t *testing.T) {
	r := setupRouter(t)
	server := httptest.NewServer(r)
	defer server.Close()

	register(t, r, "alice", "alice@example.com", "supersecret")
	cookies := login(t, r, "alice@example.com", "supersecret")

	conn := dialWS(t, server, cookies)
	defer conn.Close()

	msg := readWSMessage(t, conn)
	assert.Equal(t, "connected", msg["type"])

	w := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "Buy milk"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh", readWSMessage(t, conn)["type"])

	w = doJSON(t, r, http.MethodPut, "/api/tasks/1", gin.H{"completed": true}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh", readWSMessage(t, conn)["type"])

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/1", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh", readWSMessage(t, conn)["type"])
}

func TestWebSocketRefreshIsScopedToOwner(t *testing.T) {
	r := setupRouter(t)
	server := httptest.NewServer(r)
	defer server.Close()

	register(t, r, "alice", "alice@example.com", "supersecret")
	register(t, r, "bob", "bob@example.com", "hunter2two")

	aliceCookies := login(t, r, "alice@example.com", "supersecret")
	bobCookies := login(t, r, "bob@example.com", "hunter2two")

	aliceConn := dialWS(t, server, aliceCookies)
	defer aliceConn.Close()
	bobConn := dialWS(t, server, bobCookies)
	defer bobConn.Close()

	assert.Equal(t, "connected", readWSMessage(t, aliceConn)["type"])
	assert.Equal(t, "connected", readWSMessage(t, bobConn)["type"])

	w := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "alice's"}, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "refresh", readWSMessage(t, aliceConn)["type"])
	requireWSSilence(t, bobConn)
}

func TestWebSocketGoroutinesExitAfterClose(t *testing.T) {
	r := setupRouter(t)
	server := httptest.NewServer(r)
	defer server.Close()

	register(t, r, "alice", "alice@example.com", "supersecret")
	cookies := login(t, r, "alice@example.com", "supersecret")

	// Warm-up connection so lazily started server goroutines are part of
	// the baseline.
	warm := dialWS(t, server, cookies)
	readWSMessage(t, warm)
	require.NoError(t, warm.Close())
	time.Sleep(100 * time.Millisecond)

	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		conn := dialWS(t, server, cookies)
		readWSMessage(t, conn)
		require.NoError(t, conn.Close())
	}

	// The ping loop of each closed connection must exit; a leak here grows
	// by one goroutine per connection.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, 3*time.Second, 50*time.Millisecond)
}
