package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// Ingredient is a single entry of a drink recipe.
type Ingredient struct {
	Name  string  `json:"name" validate:"required"`
	Color string  `json:"color" validate:"required"`
	Parts float64 `json:"parts" validate:"gt=0"`
}

// Recipe is the ordered list of ingredients making up a drink.
type Recipe []Ingredient

// Drink is a menu entry. Recipe holds the serialized JSON recipe exactly as
// it is persisted; use DecodeRecipe to read it.
type Drink struct {
	ID        int64
	Title     *string
	Recipe    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShortIngredient is an ingredient with its name omitted.
type ShortIngredient struct {
	Color string  `json:"color"`
	Parts float64 `json:"parts"`
}

// ShortDrink is the public representation of a drink.
type ShortDrink struct {
	ID     int64             `json:"id"`
	Title  *string           `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// LongDrink is the detailed representation of a drink, ingredient names included.
type LongDrink struct {
	ID     int64   `json:"id"`
	Title  *string `json:"title"`
	Recipe Recipe  `json:"recipe"`
}

// EncodeRecipe serializes a recipe for storage. A nil recipe encodes as "null".
func EncodeRecipe(r Recipe) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode recipe: %w", err)
	}
	return string(b), nil
}

// DecodeRecipe parses the stored recipe. A stored "null" yields a nil Recipe.
func (d *Drink) DecodeRecipe() (Recipe, error) {
	var r Recipe
	if err := json.Unmarshal([]byte(d.Recipe), &r); err != nil {
		return nil, fmt.Errorf("%w: drink %d: %v", ErrMalformedRecipe, d.ID, err)
	}
	return r, nil
}

// Short returns the public view of the drink.
func (d *Drink) Short() (ShortDrink, error) {
	r, err := d.DecodeRecipe()
	if err != nil {
		return ShortDrink{}, err
	}

	parts := make([]ShortIngredient, 0, len(r))
	for _, ing := range r {
		parts = append(parts, ShortIngredient{Color: ing.Color, Parts: ing.Parts})
	}

	return ShortDrink{ID: d.ID, Title: d.Title, Recipe: parts}, nil
}

// Long returns the detailed view of the drink.
func (d *Drink) Long() (LongDrink, error) {
	r, err := d.DecodeRecipe()
	if err != nil {
		return LongDrink{}, err
	}
	return LongDrink{ID: d.ID, Title: d.Title, Recipe: r}, nil
}
