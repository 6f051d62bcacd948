// Package mockstore provides a configurable mock implementation of storage interfaces for testing.
//
// The MockStorage type uses function fields for each method, allowing tests to customize behavior
// as needed while providing sensible defaults for methods that aren't customized.
package mockstore

import (
	"context"

	"github.com/coffeeshop/menu-api/internal/storage"
)

// MockStorage is a configurable mock implementation of storage.Storage.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a sensible default value.
type MockStorage struct {
	// Drink operations
	ListDrinksFunc  func(ctx context.Context) ([]*storage.Drink, error)
	GetDrinkFunc    func(ctx context.Context, id int64) (*storage.Drink, error)
	CreateDrinkFunc func(ctx context.Context, d *storage.Drink) (*storage.Drink, error)
	UpdateDrinkFunc func(ctx context.Context, d *storage.Drink) (*storage.Drink, error)
	DeleteDrinkFunc func(ctx context.Context, id int64) error

	// Maintenance
	PingFunc  func(ctx context.Context) error
	ResetFunc func(ctx context.Context) error

	// Lifecycle
	CloseFunc func() error
}

// ListDrinks returns all drinks.
func (m *MockStorage) ListDrinks(ctx context.Context) ([]*storage.Drink, error) {
	if m.ListDrinksFunc != nil {
		return m.ListDrinksFunc(ctx)
	}
	return []*storage.Drink{}, nil
}

// GetDrink retrieves a drink by ID.
func (m *MockStorage) GetDrink(ctx context.Context, id int64) (*storage.Drink, error) {
	if m.GetDrinkFunc != nil {
		return m.GetDrinkFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// CreateDrink stores a new drink. By default it echoes the drink back with ID 1.
func (m *MockStorage) CreateDrink(ctx context.Context, d *storage.Drink) (*storage.Drink, error) {
	if m.CreateDrinkFunc != nil {
		return m.CreateDrinkFunc(ctx, d)
	}
	created := *d
	created.ID = 1
	return &created, nil
}

// UpdateDrink persists changes to a drink. By default it echoes the drink back.
func (m *MockStorage) UpdateDrink(ctx context.Context, d *storage.Drink) (*storage.Drink, error) {
	if m.UpdateDrinkFunc != nil {
		return m.UpdateDrinkFunc(ctx, d)
	}
	updated := *d
	return &updated, nil
}

// DeleteDrink removes a drink.
func (m *MockStorage) DeleteDrink(ctx context.Context, id int64) error {
	if m.DeleteDrinkFunc != nil {
		return m.DeleteDrinkFunc(ctx, id)
	}
	return storage.ErrNotFound
}

// Ping checks database connectivity.
func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Reset drops and reseeds the database.
func (m *MockStorage) Reset(ctx context.Context) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx)
	}
	return nil
}

// Close closes the storage.
func (m *MockStorage) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
