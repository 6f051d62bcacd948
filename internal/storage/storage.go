// Package storage provides SQLite persistence for the drinks menu.
package storage

import (
	"context"
)

// Storage defines the interface for SQLite persistence operations.
type Storage interface {
	// Drink operations
	ListDrinks(ctx context.Context) ([]*Drink, error)
	GetDrink(ctx context.Context, id int64) (*Drink, error)
	CreateDrink(ctx context.Context, d *Drink) (*Drink, error)
	UpdateDrink(ctx context.Context, d *Drink) (*Drink, error)
	DeleteDrink(ctx context.Context, id int64) error

	// Maintenance
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error

	// Lifecycle
	Close() error
}

var _ Storage = (*SQLiteStorage)(nil)
