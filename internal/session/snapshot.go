package session

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/storefront/internal/model"
)

// Snapshot is the last cart the client synchronised, as written by the CLI
// after every cart change.
type Snapshot struct {
	Lines   []model.CartLine
	SavedAt time.Time
}

// SaveCartSnapshot replaces the stored snapshot with lines, keeping their order.
func (s *Store) SaveCartSnapshot(ctx context.Context, lines []model.CartLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return fmt.Errorf("reset cart snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cart_lines (position, product_id, name, description, price, stock, category_id, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare cart snapshot: %w", err)
	}
	defer stmt.Close()

	for i, l := range lines {
		price, _ := l.Price.MarshalJSON()
		if _, err := stmt.ExecContext(ctx, i, l.ID, l.Name, l.Description, string(price), l.Stock, l.CategoryID, l.Quantity); err != nil {
			return fmt.Errorf("write cart line %d: %w", l.ID, err)
		}
	}

	if err := s.put(ctx, tx, keyCartSavedAt, s.stamp()); err != nil {
		return err
	}
	return tx.Commit()
}

// CartSnapshot returns the stored snapshot. Lines is empty (not nil) and
// SavedAt is zero when nothing was saved.
func (s *Store) CartSnapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, description, price, stock, category_id, quantity
		FROM cart_lines
		ORDER BY position ASC
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read cart snapshot: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{Lines: []model.CartLine{}}
	for rows.Next() {
		var (
			l     model.CartLine
			price string
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &price, &l.Stock, &l.CategoryID, &l.Quantity); err != nil {
			return Snapshot{}, fmt.Errorf("scan cart line: %w", err)
		}
		if l.Price, err = model.ParsePrice(price); err != nil {
			return Snapshot{}, fmt.Errorf("cart line %d: %w", l.ID, err)
		}
		snap.Lines = append(snap.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("read cart snapshot: %w", err)
	}

	saved, ok, err := s.get(ctx, keyCartSavedAt)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		if snap.SavedAt, err = time.Parse(time.RFC3339Nano, saved); err != nil {
			return Snapshot{}, fmt.Errorf("parse %s: %w", keyCartSavedAt, err)
		}
	}
	return snap, nil
}
