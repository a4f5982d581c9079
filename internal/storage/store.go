// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"dollartrack/internal/models"
)

var (
	// ErrDuplicateUsername is returned by CreateUser when the username is
	// already registered.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateSerial is returned by CreateBill when a bill with the same
	// serial number is already recorded, by any user.
	ErrDuplicateSerial = errors.New("serial number already recorded")
)

// Store defines the interface for user and bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the server layer.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated by the
	// store. Returns ErrDuplicateUsername if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by login name.
	// Returns (nil, nil) when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// CreateBill persists a new bill and populates bill.ID.
	// Returns ErrDuplicateSerial if the serial number is already recorded.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// SearchBills returns bills matching every present filter, in insertion
	// order, with the owner's username joined in.
	SearchBills(ctx context.Context, criteria models.SearchCriteria) ([]models.Bill, error)

	// UpdateBill applies patch to the bill with the given serial number,
	// provided userID is the recording owner. Returns false when the patch is
	// empty, the serial is unknown, or the requester is not the owner; the
	// three cases are deliberately indistinguishable to the caller.
	UpdateBill(ctx context.Context, serialNumber string, userID int64, patch models.BillPatch) (bool, error)

	// BillsByOwner returns every bill recorded by the given user, in
	// insertion order.
	BillsByOwner(ctx context.Context, userID int64) ([]models.Bill, error)

	// Close releases any resources held by the store.
	Close() error
}
