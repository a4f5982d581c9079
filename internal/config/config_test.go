package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenCreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "confdir")
	cfg, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, name := range []string{"server.json", "invitations.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	serverCfg, err := cfg.ServerConfig()
	if err != nil {
		t.Fatalf("ServerConfig failed: %v", err)
	}
	if serverCfg.Host != "localhost" || serverCfg.Port != 5000 {
		t.Errorf("Unexpected defaults: %+v", serverCfg)
	}
	if len(serverCfg.Token) != 64 {
		t.Errorf("Expected 32-byte hex token, got %q", serverCfg.Token)
	}
	if serverCfg.IsServer {
		t.Error("Expected client mode by default")
	}

	t.Run("Reopen keeps the token", func(t *testing.T) {
		again, err := Open(dir)
		if err != nil {
			t.Fatalf("Reopen failed: %v", err)
		}
		reloaded, err := again.ServerConfig()
		if err != nil {
			t.Fatalf("ServerConfig failed: %v", err)
		}
		if reloaded.Token != serverCfg.Token {
			t.Error("Expected server token to survive reopen")
		}
	})
}

func TestEnvOverridesServerConfig(t *testing.T) {
	cfg, err := Open(filepath.Join(t.TempDir(), "confdir"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	t.Setenv("DOLLARTRACK_HOST", "tracker.example.com")
	t.Setenv("DOLLARTRACK_PORT", "6000")

	serverCfg, err := cfg.ServerConfig()
	if err != nil {
		t.Fatalf("ServerConfig failed: %v", err)
	}
	if serverCfg.Host != "tracker.example.com" || serverCfg.Port != 6000 {
		t.Errorf("Expected env overrides to apply, got %+v", serverCfg)
	}
}

func TestInvitations(t *testing.T) {
	cfg, err := Open(filepath.Join(t.TempDir(), "confdir"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := cfg.AddInvitation(Invitation{Host: "a.example.com", Port: 5000, Token: "tok-a"}); err != nil {
		t.Fatalf("AddInvitation failed: %v", err)
	}
	if err := cfg.AddInvitation(Invitation{Host: "b.example.com", Port: 5001, Token: "tok-b"}); err != nil {
		t.Fatalf("AddInvitation failed: %v", err)
	}

	t.Run("FindInvitation by token", func(t *testing.T) {
		inv, err := cfg.FindInvitation("tok-b")
		if err != nil {
			t.Fatalf("FindInvitation failed: %v", err)
		}
		if inv == nil || inv.Host != "b.example.com" {
			t.Fatalf("Unexpected invitation: %+v", inv)
		}
		if inv.ID == "" {
			t.Error("Expected an ID to be assigned")
		}
	})

	t.Run("Unknown token finds nothing", func(t *testing.T) {
		inv, err := cfg.FindInvitation("tok-z")
		if err != nil {
			t.Fatalf("FindInvitation failed: %v", err)
		}
		if inv != nil {
			t.Errorf("Expected nil, got %+v", inv)
		}
	})

	t.Run("RemoveInvitation deletes by token", func(t *testing.T) {
		if err := cfg.RemoveInvitation("tok-a"); err != nil {
			t.Fatalf("RemoveInvitation failed: %v", err)
		}
		invitations, err := cfg.Invitations()
		if err != nil {
			t.Fatalf("Invitations failed: %v", err)
		}
		if len(invitations) != 1 || invitations[0].Token != "tok-b" {
			t.Errorf("Expected only tok-b to remain, got %+v", invitations)
		}
	})
}

func TestInviteTokens(t *testing.T) {
	secret, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	token, err := CreateInvite(secret, "tracker.example.com", 5000, time.Hour)
	if err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	t.Run("Round trip", func(t *testing.T) {
		claims, err := ParseInvite(secret, token)
		if err != nil {
			t.Fatalf("ParseInvite failed: %v", err)
		}
		if claims.Host != "tracker.example.com" || claims.Port != 5000 {
			t.Errorf("Unexpected claims: %+v", claims)
		}
	})

	t.Run("Wrong secret is rejected", func(t *testing.T) {
		other, _ := NewToken()
		if _, err := ParseInvite(other, token); !errors.Is(err, ErrInvalidInvite) {
			t.Fatalf("Expected ErrInvalidInvite, got %v", err)
		}
	})

	t.Run("Expired invitation is rejected", func(t *testing.T) {
		stale, err := CreateInvite(secret, "tracker.example.com", 5000, -time.Hour)
		if err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		if _, err := ParseInvite(secret, stale); !errors.Is(err, ErrInvalidInvite) {
			t.Fatalf("Expected ErrInvalidInvite, got %v", err)
		}
	})
}
