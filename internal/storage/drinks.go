package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const drinkColumns = "id, title, recipe, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDrink(row rowScanner) (*Drink, error) {
	var (
		d     Drink
		title sql.NullString
	)
	if err := row.Scan(&d.ID, &title, &d.Recipe, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if title.Valid {
		d.Title = &title.String
	}
	return &d, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func nullTitle(title *string) sql.NullString {
	if title == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *title, Valid: true}
}

// ListDrinks returns all drinks ordered by id.
// Returns empty slice if no drinks exist.
func (s *SQLiteStorage) ListDrinks(ctx context.Context) ([]*Drink, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+drinkColumns+" FROM drinks ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query drinks: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	drinks := make([]*Drink, 0)
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drink row: %w", err)
		}
		drinks = append(drinks, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drinks: %w", err)
	}

	return drinks, nil
}

// GetDrink retrieves a drink by ID.
// Returns ErrNotFound if the drink doesn't exist.
func (s *SQLiteStorage) GetDrink(ctx context.Context, id int64) (*Drink, error) {
	d, err := scanDrink(s.db.QueryRowContext(ctx,
		"SELECT "+drinkColumns+" FROM drinks WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get drink: %w", err)
	}
	return d, nil
}

// CreateDrink inserts a new drink and returns it with its assigned ID.
// Returns ErrDuplicate if the title is already taken.
func (s *SQLiteStorage) CreateDrink(ctx context.Context, d *Drink) (*Drink, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO drinks (title, recipe) VALUES (?, ?)",
		nullTitle(d.Title), d.Recipe)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create drink: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return s.GetDrink(ctx, id)
}

// UpdateDrink persists the title and recipe of an existing drink.
// Returns ErrNotFound if the drink doesn't exist and ErrDuplicate if the new
// title is already taken.
func (s *SQLiteStorage) UpdateDrink(ctx context.Context, d *Drink) (*Drink, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE drinks SET title = ?, recipe = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		nullTitle(d.Title), d.Recipe, d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update drink: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return s.GetDrink(ctx, d.ID)
}

// DeleteDrink removes a drink by ID.
// Returns ErrNotFound if the drink doesn't exist.
func (s *SQLiteStorage) DeleteDrink(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM drinks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete drink: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
