// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/sharely/internal/models"
	"github.com/mmynk/sharely/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		// Create parent directory if it doesn't exist
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps PRAGMAs and
	// in-memory databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	altered, err := runMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if altered {
		if err := store.backfillTotals(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store, nil
}

// backfillTotals recomputes the stored grand total of every bill.
func (s *SQLiteStore) backfillTotals(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM bills")
	if err != nil {
		return fmt.Errorf("failed to list bills: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate bills: %w", err)
	}

	for _, id := range ids {
		bill, err := s.GetBill(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, "UPDATE bills SET grand_total_cents = ? WHERE id = ?",
			bill.Compute().GrandTotalCents, id); err != nil {
			return fmt.Errorf("failed to backfill total for %s: %w", id, err)
		}
	}
	slog.Info("Backfilled bill totals", "count", len(ids))
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate ID if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	now := s.now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now
	bill.Version = 1
	if bill.Title == "" {
		bill.Title = generateTitle(s.now())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	discount, vat, service := bill.Discount.Normalized(), bill.VAT.Normalized(), bill.Service.Normalized()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, discount_kind, discount_value, vat_kind, vat_value,
		    service_kind, service_value, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, discount.Kind, discount.Value, vat.Kind, vat.Value,
		service.Kind, service.Value, bill.Version, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}
	if err := storeTotal(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateBill replaces a bill's snapshot if its version still matches.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	discount, vat, service := bill.Discount.Normalized(), bill.VAT.Normalized(), bill.Service.Normalized()
	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, discount_kind = ?, discount_value = ?, vat_kind = ?, vat_value = ?,
		    service_kind = ?, service_value = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		bill.Title, discount.Kind, discount.Value, vat.Kind, vat.Value,
		service.Kind, service.Value, now, bill.ID, bill.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM bills WHERE id = ?", bill.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, bill.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to check bill: %w", err)
		}
		return fmt.Errorf("%w: %s", storage.ErrConflict, bill.ID)
	}

	for _, table := range []string{"item_participants", "items", "people"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE bill_id = ?", bill.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}
	if err := storeTotal(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	bill.Version++
	bill.UpdatedAt = now
	return nil
}

// storeTotal caches the bill's grand total so listings need not load it.
func storeTotal(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	_, err := tx.ExecContext(ctx, "UPDATE bills SET grand_total_cents = ? WHERE id = ?",
		bill.Compute().GrandTotalCents, bill.ID)
	if err != nil {
		return fmt.Errorf("failed to store bill total: %w", err)
	}
	return nil
}

// insertChildren writes people, items and participant links for a bill.
// Participant references to people not on the bill, or repeated, are
// dropped from the snapshot as well as the database, so the caller's copy
// computes the same totals as a reloaded one.
func insertChildren(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	known := make(map[string]bool, len(bill.People))
	for i, p := range bill.People {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO people (bill_id, id, name, color, position) VALUES (?, ?, ?, ?, ?)",
			bill.ID, p.ID, p.Name, p.Color, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
		known[p.ID] = true
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, id, name, price_cents, position) VALUES (?, ?, ?, ?, ?)",
			bill.ID, item.ID, item.Name, item.PriceCents, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		var kept []string
		linked := make(map[string]bool, len(item.ParticipantIDs))
		for j, personID := range item.ParticipantIDs {
			if !known[personID] || linked[personID] {
				continue
			}
			linked[personID] = true
			kept = append(kept, personID)
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_participants (bill_id, item_id, person_id, position) VALUES (?, ?, ?, ?)",
				bill.ID, item.ID, personID, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item participant: %w", err)
			}
		}
		item.ParticipantIDs = kept
	}

	return nil
}

// GetBill retrieves a bill by ID, including all people and items.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, discount_kind, discount_value, vat_kind, vat_value,
		    service_kind, service_value, version, created_at, updated_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.Title,
		&bill.Discount.Kind, &bill.Discount.Value,
		&bill.VAT.Kind, &bill.VAT.Value,
		&bill.Service.Kind, &bill.Service.Value,
		&bill.Version, &bill.CreatedAt, &bill.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if bill.People, err = s.getPeople(ctx, billID); err != nil {
		return nil, err
	}
	if bill.Items, err = s.getItems(ctx, billID); err != nil {
		return nil, err
	}

	return bill, nil
}

func (s *SQLiteStore) getPeople(ctx context.Context, billID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color FROM people WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

// getItems loads items and their participants. Each result set is drained
// before the next query runs, since the store holds a single connection.
func (s *SQLiteStore) getItems(ctx context.Context, billID string) ([]models.Item, error) {
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price_cents FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	var items []models.Item
	index := make(map[string]int)
	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.PriceCents); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	linkRows, err := s.db.QueryContext(ctx,
		"SELECT item_id, person_id FROM item_participants WHERE bill_id = ? ORDER BY item_id, position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item participants: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var itemID, personID string
		if err := linkRows.Scan(&itemID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan item participant: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].ParticipantIDs = append(items[i].ParticipantIDs, personID)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item participants: %w", err)
	}

	return items, nil
}

// DeleteBill removes a bill; people, items and links cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	return nil
}

// ListBills returns a summary of every bill, most recently updated first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]storage.BillSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.updated_at, b.grand_total_cents,
		    (SELECT COUNT(*) FROM people p WHERE p.bill_id = b.id),
		    (SELECT COUNT(*) FROM items i WHERE i.bill_id = b.id)
		FROM bills b
		ORDER BY b.updated_at DESC, b.created_at DESC, b.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var summaries []storage.BillSummary
	for rows.Next() {
		var sum storage.BillSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.UpdatedAt, &sum.GrandTotalCents, &sum.PeopleCount, &sum.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return summaries, nil
}

// generateTitle creates an auto-generated title from the creation date.
func generateTitle(now time.Time) string {
	return fmt.Sprintf("Bill - %s", now.Format("Jan 2, 2006"))
}
