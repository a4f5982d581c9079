package client

import (
	"errors"
	"net"
	"testing"

	"dollartrack/internal/models"
	"dollartrack/internal/protocol"
)

func TestNilSessionFailsLocally(t *testing.T) {
	// Nothing is listening here; the guard must fire before any dial.
	c := New("127.0.0.1", 1)

	if err := c.AddBill(nil, protocol.AddBill{FaceValue: 20, SerialNumber: "AB12345678"}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("AddBill: expected ErrNotLoggedIn, got %v", err)
	}
	if _, err := c.SearchBills(nil, models.SearchCriteria{}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("SearchBills: expected ErrNotLoggedIn, got %v", err)
	}
	if err := c.UpdateBill(nil, "AB12345678", models.BillPatch{}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("UpdateBill: expected ErrNotLoggedIn, got %v", err)
	}
	if _, err := c.MyBills(nil); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("MyBills: expected ErrNotLoggedIn, got %v", err)
	}
}

func TestConnectFailureIsTransportError(t *testing.T) {
	// Grab a port and close it again so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := New("127.0.0.1", port)
	_, err = c.Login("alice", "pw1")

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if cerr.Kind != KindTransport {
		t.Errorf("Expected transport error, got %s: %v", cerr.Kind, cerr)
	}
}

func TestPeerCloseDropsConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()

	// Accept one connection and close it without answering.
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	c := New("127.0.0.1", ln.Addr().(*net.TCPAddr).Port)
	_, err = c.Login("alice", "pw1")

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindTransport {
		t.Fatalf("Expected transport error on peer close, got %v", err)
	}

	// The dead connection must have been dropped so a later call redials
	// instead of reusing it.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		t.Error("Expected connection to be dropped after transport error")
	}
}
