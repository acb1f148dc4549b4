package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/selamgames/bingo-server/game"
)

// dialTestConn builds a real websocket pair and returns both ends.
func dialTestConn(t *testing.T) (server, peer *websocket.Conn) {
	t.Helper()
	serverCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })
	return <-serverCh, peer
}

func testLobbyConfig() game.Config {
	return game.Config{
		Stake:               10,
		TotalCards:          400,
		MaxCardsPerPlayer:   4,
		SelectionSeconds:    300,
		DrawIntervalSeconds: 3,
		DrawBound:           75,
		RestartDelaySeconds: 10,
	}
}

// A reconnect replaces the player's connection. The stale pump's deferred
// teardown must not kick the replacement or release the player's cards.
func TestLobbyReconnectKeepsClientAndCards(t *testing.T) {
	lobby := NewLobby(10, testLobbyConfig(), nil)

	first, firstPeer := dialTestConn(t)
	lobby.addClient(&Client{playerID: 1, name: "a", conn: first, lobby: lobby, send: make(chan []byte, 32)})

	if err := lobby.lifecycle.SelectCard(1, 7, time.Now()); err != nil {
		t.Fatalf("select: %v", err)
	}

	second, _ := dialTestConn(t)
	lobby.addClient(&Client{playerID: 1, name: "a", conn: second, lobby: lobby, send: make(chan []byte, 32)})

	// Drain the old peer until the kick's close surfaces, then give the
	// stale pump's deferred teardown time to run.
	firstPeer.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := firstPeer.ReadMessage(); err != nil {
			break
		}
	}
	time.Sleep(200 * time.Millisecond)

	if got := lobby.clientCount(); got != 1 {
		t.Fatalf("clientCount after reconnect = %d, want 1", got)
	}
	if owned := lobby.registry.OwnedBy(1); len(owned) != 1 || owned[0] != 7 {
		t.Fatalf("player 1 owns %v after reconnect, want [7]", owned)
	}
	if got := lobby.lifecycle.Status().Players; got != 1 {
		t.Fatalf("lifecycle players = %d, want 1", got)
	}

	// A genuine disconnect of the live connection still tears down.
	second.Close()
	deadline := time.Now().Add(2 * time.Second)
	for lobby.clientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := lobby.clientCount(); got != 0 {
		t.Fatalf("clientCount after disconnect = %d, want 0", got)
	}
}
