// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/sharely/internal/models"
)

var (
	// ErrNotFound is returned when a bill does not exist.
	ErrNotFound = errors.New("bill not found")

	// ErrConflict is returned by UpdateBill when the stored bill has moved on
	// since the snapshot was read.
	ErrConflict = errors.New("bill was modified concurrently")
)

// BillSummary is a lightweight listing entry.
type BillSummary struct {
	ID          string
	Title       string
	PeopleCount int
	ItemCount   int
	UpdatedAt   int64

	// GrandTotalCents is the bill's computed total as of its last write.
	GrandTotalCents int64
}

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateBill persists a new bill.
	// The bill's ID, Version and timestamps are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a complete bill snapshot by its ID.
	// Returns ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces the stored snapshot with bill.
	// bill.Version must match the stored version; on success it is
	// incremented. Returns ErrNotFound or ErrConflict.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and everything on it.
	// Returns ErrNotFound if the bill does not exist.
	DeleteBill(ctx context.Context, billID string) error

	// ListBills returns summaries of all bills, most recently updated first,
	// without loading their people or items.
	ListBills(ctx context.Context) ([]BillSummary, error)

	// Close releases any resources held by the store.
	Close() error
}
