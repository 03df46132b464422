package transport

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

func startTestServer(t *testing.T, config ServerConfig) *Server {
	t.Helper()

	config.Address = "127.0.0.1:0"
	server := NewServer(config)
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		server.Stop()
	})
	return server
}

func TestServerStartStop(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	if server.Addr() == nil {
		t.Fatal("Addr returned nil after Start")
	}
	if server.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount = %d, want 0", server.ConnectionCount())
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Stop is idempotent
	if err := server.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}

func TestServerDoubleStart(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	if err := server.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestServerClientExchange(t *testing.T) {
	type received struct {
		connID string
		data   []byte
	}

	msgCh := make(chan received, 1)
	connectCh := make(chan string, 1)
	disconnectCh := make(chan string, 1)

	server := startTestServer(t, ServerConfig{
		OnConnect: func(conn *ServerConn) {
			connectCh <- conn.ConnID()
		},
		OnDisconnect: func(conn *ServerConn) {
			disconnectCh <- conn.ConnID()
		},
		OnMessage: func(conn *ServerConn, msg []byte) {
			msgCh <- received{connID: conn.ConnID(), data: msg}
			// Echo back
			if err := conn.Send(append([]byte("ack:"), msg...)); err != nil {
				t.Errorf("Send failed: %v", err)
			}
		},
	})

	client := NewClient(ClientConfig{})
	conn, err := client.Connect(server.Addr().String())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	var connID string
	select {
	case connID = <-connectCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnConnect")
	}
	if connID == "" {
		t.Error("connection ID is empty")
	}

	payload := []byte("read testunit test_value")
	if err := conn.Send(payload); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case got := <-msgCh:
		if !bytes.Equal(got.data, payload) {
			t.Errorf("server received %q, want %q", got.data, payload)
		}
		if got.connID != connID {
			t.Errorf("message connID = %q, want %q", got.connID, connID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnMessage")
	}

	reply, err := conn.Receive(2 * time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	want := append([]byte("ack:"), payload...)
	if !bytes.Equal(reply, want) {
		t.Errorf("reply = %q, want %q", reply, want)
	}

	conn.Close()

	select {
	case gone := <-disconnectCh:
		if gone != connID {
			t.Errorf("disconnect connID = %q, want %q", gone, connID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnDisconnect")
	}
}

func TestServerMultipleClients(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)

	server := startTestServer(t, ServerConfig{
		OnMessage: func(conn *ServerConn, msg []byte) {
			mu.Lock()
			seen[conn.ConnID()]++
			mu.Unlock()
			conn.Send(msg)
		},
	})

	client := NewClient(ClientConfig{})

	const clients = 3
	conns := make([]*ClientConn, 0, clients)
	for i := 0; i < clients; i++ {
		conn, err := client.Connect(server.Addr().String())
		if err != nil {
			t.Fatalf("Connect %d failed: %v", i, err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		if err := conn.Send([]byte("ping")); err != nil {
			t.Fatalf("Send %d failed: %v", i, err)
		}
		if _, err := conn.Receive(2 * time.Second); err != nil {
			t.Fatalf("Receive %d failed: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != clients {
		t.Errorf("distinct connection IDs = %d, want %d", len(seen), clients)
	}
}

func TestClientConnectFailure(t *testing.T) {
	client := NewClient(ClientConfig{ConnectTimeout: 500 * time.Millisecond})

	// Port 1 should refuse connections
	_, err := client.Connect("127.0.0.1:1")
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClientSendAfterClose(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	client := NewClient(ClientConfig{})
	conn, err := client.Connect(server.Addr().String())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := conn.Send([]byte("late")); err != ErrConnectionClosed {
		t.Errorf("Send after close = %v, want ErrConnectionClosed", err)
	}
	if _, err := conn.Receive(time.Second); err != ErrConnectionClosed {
		t.Errorf("Receive after close = %v, want ErrConnectionClosed", err)
	}
}

func TestServerStopClosesConnections(t *testing.T) {
	server := startTestServer(t, ServerConfig{})

	client := NewClient(ClientConfig{})
	conn, err := client.Connect(server.Addr().String())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the connection
	deadline := time.Now().Add(2 * time.Second)
	for server.ConnectionCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if server.ConnectionCount() != 1 {
		t.Fatalf("ConnectionCount = %d, want 1", server.ConnectionCount())
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// The client read should fail once the server side is gone
	if _, err := conn.Receive(2 * time.Second); err == nil {
		t.Error("expected error reading from closed server")
	}
}
