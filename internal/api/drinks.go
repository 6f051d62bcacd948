package api

import (
	"net/http"

	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/metrics"
	"github.com/coffeeshop/menu-api/internal/middleware"
	"github.com/coffeeshop/menu-api/internal/storage"
)

// HandleListDrinks lists every drink in its short form.
// GET /drinks
func (h *Handler) HandleListDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, ok := h.listDrinks(w, r)
	if !ok {
		return
	}

	views := make([]storage.ShortDrink, 0, len(drinks))
	for _, d := range drinks {
		v, err := d.Short()
		if err != nil {
			h.storeError(w, r, "list", err)
			return
		}
		views = append(views, v)
	}

	httpapi.Write(w, http.StatusOK, drinksResponse{Success: true, Drinks: views})
}

// HandleListDrinksDetail lists every drink including ingredient names.
// GET /drinks-detail (get:drinks-detail)
func (h *Handler) HandleListDrinksDetail(w http.ResponseWriter, r *http.Request) {
	drinks, ok := h.listDrinks(w, r)
	if !ok {
		return
	}

	views := make([]storage.LongDrink, 0, len(drinks))
	for _, d := range drinks {
		v, err := d.Long()
		if err != nil {
			h.storeError(w, r, "list", err)
			return
		}
		views = append(views, v)
	}

	httpapi.Write(w, http.StatusOK, drinksResponse{Success: true, Drinks: views})
}

func (h *Handler) listDrinks(w http.ResponseWriter, r *http.Request) ([]*storage.Drink, bool) {
	drinks, err := h.store.ListDrinks(r.Context())
	if err != nil {
		h.storeError(w, r, "list", err)
		return nil, false
	}
	if len(drinks) == 0 && h.emptyListNotFound {
		httpapi.NotFound(w)
		return nil, false
	}
	return drinks, true
}

// HandleCreateDrink creates a drink. A missing title is stored as NULL and
// a missing recipe as JSON null.
// POST /drinks (post:drinks)
// Body: {"title": "latte", "recipe": [{"name": "milk", "color": "white", "parts": 3}]}
func (h *Handler) HandleCreateDrink(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readDrinkRequest(w, r)
	if !ok {
		return
	}

	recipe, err := storage.EncodeRecipe(req.Recipe)
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}

	created, err := h.store.CreateDrink(r.Context(), &storage.Drink{Title: req.Title, Recipe: recipe})
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}

	view, err := created.Long()
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}

	metrics.RecordDrinkMutation("create")
	middleware.Logger(r.Context(), h.logger).Info("drink created", "drink_id", created.ID)

	httpapi.Write(w, http.StatusOK, drinksResponse{Success: true, Drinks: view})
}

// HandleUpdateDrink applies a non-empty title and/or a non-empty recipe to
// an existing drink. Other fields are left untouched.
// PATCH /drinks/{drinkID} (patch:drinks)
func (h *Handler) HandleUpdateDrink(w http.ResponseWriter, r *http.Request) {
	id, err := drinkID(r)
	if err != nil {
		httpapi.NotFound(w)
		return
	}

	drink, err := h.store.GetDrink(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "update", err)
		return
	}

	req, ok := h.readDrinkRequest(w, r)
	if !ok {
		return
	}

	if req.Title != nil && *req.Title != "" {
		drink.Title = req.Title
	}
	if len(req.Recipe) > 0 {
		recipe, err := storage.EncodeRecipe(req.Recipe)
		if err != nil {
			h.storeError(w, r, "update", err)
			return
		}
		drink.Recipe = recipe
	}

	updated, err := h.store.UpdateDrink(r.Context(), drink)
	if err != nil {
		h.storeError(w, r, "update", err)
		return
	}

	view, err := updated.Long()
	if err != nil {
		h.storeError(w, r, "update", err)
		return
	}

	metrics.RecordDrinkMutation("update")
	middleware.Logger(r.Context(), h.logger).Info("drink updated", "drink_id", updated.ID)

	httpapi.Write(w, http.StatusOK, drinksResponse{Success: true, Drinks: []storage.LongDrink{view}})
}

// HandleDeleteDrink removes a drink.
// DELETE /drinks/{drinkID} (delete:drinks)
func (h *Handler) HandleDeleteDrink(w http.ResponseWriter, r *http.Request) {
	id, err := drinkID(r)
	if err != nil {
		httpapi.NotFound(w)
		return
	}

	if err := h.store.DeleteDrink(r.Context(), id); err != nil {
		h.storeError(w, r, "delete", err)
		return
	}

	metrics.RecordDrinkMutation("delete")
	middleware.Logger(r.Context(), h.logger).Info("drink deleted", "drink_id", id)

	httpapi.Write(w, http.StatusOK, deleteResponse{Success: true, Deleted: id})
}
