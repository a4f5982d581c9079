// Package client implements the tracker's network client. A client holds at
// most one connection, dialed lazily on the first call, and performs one
// blocking request/response exchange per call.
package client

import (
	"encoding/json"
	"net"
	"strconv"
	"sync"

	"dollartrack/internal/models"
	"dollartrack/internal/protocol"
)

// Session is the proof of a successful login. Bill-scoped calls take it
// explicitly; there is no implicit logged-in state inside the client.
type Session struct {
	UserID int64
}

// Client talks to a tracker server over a single TCP connection.
type Client struct {
	addr string

	mu   sync.Mutex
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// New creates a client for the server at host:port. No connection is made
// until the first call.
func New(host string, port int) *Client {
	return &Client{addr: net.JoinHostPort(host, strconv.Itoa(port))}
}

// Connect dials the server if no connection is open.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return &Error{Kind: KindTransport, Message: "Could not connect to server: " + err.Error()}
	}
	c.conn = conn
	c.enc = json.NewEncoder(conn)
	c.dec = json.NewDecoder(conn)
	return nil
}

// Close drops the connection, if any. The client can be reused; the next call
// reconnects.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.enc = nil
		c.dec = nil
	}
}

// send performs one request/response exchange. Transport failures drop the
// connection so the next call redials.
func (c *Client) send(action protocol.Action, data any) (*protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Message: err.Error()}
	}

	if err := c.enc.Encode(protocol.Request{Action: action, Data: raw}); err != nil {
		c.dropLocked()
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}

	var resp protocol.Response
	if err := c.dec.Decode(&resp); err != nil {
		c.dropLocked()
		return nil, &Error{Kind: KindTransport, Message: err.Error()}
	}
	return &resp, nil
}

// Register creates a new account on the server.
func (c *Client) Register(username, password string) error {
	resp, err := c.send(protocol.ActionCreateUser, protocol.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return &Error{Kind: KindServer, Message: resp.Error}
		}
		return &Error{Kind: KindDuplicate, Message: "username already exists"}
	}
	return nil
}

// Login authenticates and returns the session for subsequent calls.
func (c *Client) Login(username, password string) (*Session, error) {
	resp, err := c.send(protocol.ActionLogin, protocol.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &Error{Kind: KindInvalidCredentials, Message: resp.Error}
	}
	return &Session{UserID: resp.UserID}, nil
}

// AddBill records a new bill owned by the session's user.
func (c *Client) AddBill(sess *Session, bill protocol.AddBill) error {
	if sess == nil {
		return ErrNotLoggedIn
	}
	bill.UserID = sess.UserID

	resp, err := c.send(protocol.ActionAddBill, bill)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return &Error{Kind: KindServer, Message: resp.Error}
		}
		return &Error{Kind: KindDuplicate, Message: "serial number already recorded"}
	}
	return nil
}

// SearchBills queries the shared collection with the given filters.
func (c *Client) SearchBills(sess *Session, criteria models.SearchCriteria) ([]models.Bill, error) {
	if sess == nil {
		return nil, ErrNotLoggedIn
	}

	resp, err := c.send(protocol.ActionSearchBills, criteria)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &Error{Kind: KindServer, Message: resp.Error}
	}
	return resp.Results, nil
}

// UpdateBill patches a bill the session's user recorded. A refusal does not
// say whether the serial is unknown or owned by someone else.
func (c *Client) UpdateBill(sess *Session, serialNumber string, patch models.BillPatch) error {
	if sess == nil {
		return ErrNotLoggedIn
	}

	resp, err := c.send(protocol.ActionUpdateBill, protocol.UpdateBill{
		SerialNumber: serialNumber,
		UserID:       sess.UserID,
		Updates:      patch,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return &Error{Kind: KindServer, Message: resp.Error}
		}
		return &Error{Kind: KindRejected, Message: "update refused"}
	}
	return nil
}

// MyBills lists every bill the session's user recorded.
func (c *Client) MyBills(sess *Session) ([]models.Bill, error) {
	if sess == nil {
		return nil, ErrNotLoggedIn
	}

	resp, err := c.send(protocol.ActionUserBills, protocol.UserBills{UserID: sess.UserID})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &Error{Kind: KindServer, Message: resp.Error}
	}
	return resp.Results, nil
}
