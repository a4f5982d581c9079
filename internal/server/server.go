// Package server implements the tracker's TCP server: one goroutine per
// accepted connection, one JSON request and one JSON response per exchange.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"dollartrack/internal/auth"
	"dollartrack/internal/protocol"
	"dollartrack/internal/storage"
)

// Server accepts tracker connections and dispatches requests to the store.
type Server struct {
	store   storage.Store
	authn   *auth.PasswordAuthenticator
	logger  *slog.Logger
	metrics *Metrics

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// New creates a server over the given store. metrics may be nil.
func New(store storage.Store, logger *slog.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:   store,
		authn:   auth.NewPasswordAuthenticator(store),
		logger:  logger,
		metrics: metrics,
	}
}

// ListenAndServe listens on addr and serves until Close is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, spawning one handler goroutine per
// connection. It returns after Close, or on an accept error.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("Server listening", "address", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.logger.Info("New connection", "remote_addr", conn.RemoteAddr().String())
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting connections and waits for in-flight handlers to
// finish their current exchange.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

// handleConn services one connection: read a request, dispatch it, write the
// response, repeat. Request-level failures produce an error response and keep
// the connection open; transport or parse failures end only this connection.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.metrics.connOpened()
	defer s.metrics.connClosed()

	remote := conn.RemoteAddr().String()
	logger := s.logger.With("remote_addr", remote)

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	ctx := context.Background()

	for {
		var req protocol.Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("Connection closed by peer")
			} else {
				logger.Warn("Connection error", "error", err)
			}
			return
		}

		resp := s.dispatch(ctx, logger, &req)
		if err := enc.Encode(resp); err != nil {
			logger.Warn("Failed to write response", "error", err)
			return
		}
	}
}

// dispatch routes one request to the store and converts the outcome into a
// response. Every failure is absorbed here; nothing escapes the request
// boundary.
func (s *Server) dispatch(ctx context.Context, logger *slog.Logger, req *protocol.Request) (resp protocol.Response) {
	start := time.Now()
	defer func() {
		// A broken handler must cost one response, not the process.
		if r := recover(); r != nil {
			logger.Error("Panic in request handler", "action", req.Action, "panic", r)
			resp = protocol.Fail(fmt.Sprint(r))
		}
		s.metrics.observeRequest(string(req.Action), resp.Success, time.Since(start))
		logger.Info("Request handled",
			"action", req.Action,
			"success", resp.Success,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	payload, err := protocol.DecodePayload(req)
	if err != nil {
		return protocol.Fail(err.Error())
	}

	switch p := payload.(type) {
	case *protocol.Credentials:
		if p.Action == protocol.ActionLogin {
			return s.login(ctx, p)
		}
		return s.createUser(ctx, p)
	case *protocol.AddBill:
		return s.addBill(ctx, p)
	case *protocol.SearchBills:
		bills, err := s.store.SearchBills(ctx, p.SearchCriteria)
		if err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.WithResults(bills)
	case *protocol.UpdateBill:
		changed, err := s.store.UpdateBill(ctx, p.SerialNumber, p.UserID, p.Updates)
		if err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.Bool(changed)
	case *protocol.UserBills:
		bills, err := s.store.BillsByOwner(ctx, p.UserID)
		if err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.WithResults(bills)
	default:
		return protocol.Fail(protocol.ErrInvalidAction)
	}
}

func (s *Server) login(ctx context.Context, creds *protocol.Credentials) protocol.Response {
	userID, err := s.authn.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return protocol.Fail("Invalid credentials")
		}
		return protocol.Fail(err.Error())
	}
	return protocol.LoggedIn(userID)
}

func (s *Server) createUser(ctx context.Context, creds *protocol.Credentials) protocol.Response {
	_, err := s.authn.Register(ctx, creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			// Duplicate registration is a plain boolean failure on the wire.
			return protocol.Bool(false)
		}
		return protocol.Fail(err.Error())
	}
	return protocol.Bool(true)
}

func (s *Server) addBill(ctx context.Context, p *protocol.AddBill) protocol.Response {
	err := s.store.CreateBill(ctx, p.Bill())
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateSerial) {
			return protocol.Bool(false)
		}
		return protocol.Fail(err.Error())
	}
	return protocol.Bool(true)
}
