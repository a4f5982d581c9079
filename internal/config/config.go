// Package config manages the per-installation configuration directory
// (~/.dollartrack): the server settings file and the list of invitations to
// other installations. Files are plain JSON; environment variables override
// individual server settings.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
)

const dirName = ".dollartrack"

// Server holds the settings the tracker reads at startup.
type Server struct {
	IsServer bool   `json:"is_server" env:"DOLLARTRACK_IS_SERVER"`
	Host     string `json:"server_host" env:"DOLLARTRACK_HOST" env-default:"localhost"`
	Port     int    `json:"server_port" env:"DOLLARTRACK_PORT" env-default:"5000"`
	Token    string `json:"server_token"`
}

// Invitation is a saved pointer to another installation's server.
type Invitation struct {
	ID    string `json:"id"`
	Host  string `json:"server_host"`
	Port  int    `json:"server_port"`
	Token string `json:"server_token"`
}

// Config is a handle on the configuration directory.
type Config struct {
	dir string
}

// Open prepares the configuration directory, creating it and default files on
// first use. An empty dir means ~/.dollartrack.
func Open(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	c := &Config{dir: dir}

	if _, err := os.Stat(c.serverFile()); os.IsNotExist(err) {
		token, err := NewToken()
		if err != nil {
			return nil, err
		}
		defaults := Server{Host: "localhost", Port: 5000, Token: token}
		if err := c.SaveServer(defaults); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(c.invitationsFile()); os.IsNotExist(err) {
		if err := c.saveInvitations([]Invitation{}); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Config) serverFile() string      { return filepath.Join(c.dir, "server.json") }
func (c *Config) invitationsFile() string { return filepath.Join(c.dir, "invitations.json") }

// ServerConfig loads the server settings, applying environment overrides.
func (c *Config) ServerConfig() (Server, error) {
	var cfg Server
	if err := cleanenv.ReadConfig(c.serverFile(), &cfg); err != nil {
		return Server{}, fmt.Errorf("failed to read server config: %w", err)
	}
	return cfg, nil
}

// SaveServer writes the server settings file.
func (c *Config) SaveServer(cfg Server) error {
	return c.writeJSON(c.serverFile(), cfg)
}

// Invitations returns the saved invitation records.
func (c *Config) Invitations() ([]Invitation, error) {
	data, err := os.ReadFile(c.invitationsFile())
	if err != nil {
		return nil, fmt.Errorf("failed to read invitations: %w", err)
	}
	var invitations []Invitation
	if err := json.Unmarshal(data, &invitations); err != nil {
		return nil, fmt.Errorf("failed to parse invitations: %w", err)
	}
	return invitations, nil
}

// AddInvitation appends an invitation record, assigning it an ID if it has
// none.
func (c *Config) AddInvitation(inv Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	invitations, err := c.Invitations()
	if err != nil {
		return err
	}
	return c.saveInvitations(append(invitations, inv))
}

// RemoveInvitation deletes every invitation carrying the given token.
func (c *Config) RemoveInvitation(token string) error {
	invitations, err := c.Invitations()
	if err != nil {
		return err
	}
	kept := invitations[:0]
	for _, inv := range invitations {
		if inv.Token != token {
			kept = append(kept, inv)
		}
	}
	return c.saveInvitations(kept)
}

// FindInvitation returns the invitation carrying the given token, or nil.
func (c *Config) FindInvitation(token string) (*Invitation, error) {
	invitations, err := c.Invitations()
	if err != nil {
		return nil, err
	}
	for _, inv := range invitations {
		if inv.Token == token {
			return &inv, nil
		}
	}
	return nil, nil
}

func (c *Config) saveInvitations(invitations []Invitation) error {
	return c.writeJSON(c.invitationsFile(), invitations)
}

func (c *Config) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// NewToken produces a 32-byte random installation secret, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
