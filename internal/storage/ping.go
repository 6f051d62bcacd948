package storage

import (
	"context"
	"errors"
	"fmt"
)

// Ping reports whether the menu can be served: the database must answer and
// the drinks table must exist. A reachable database whose schema was dropped
// (for instance by an interrupted Reset) is not ready.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	var tables int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'drinks'",
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if tables != 1 {
		return errors.New("database ping failed: drinks table missing")
	}
	return nil
}
