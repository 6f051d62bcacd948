package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeeshop/menu-api/internal/auth"
	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/storage"
	"github.com/coffeeshop/menu-api/internal/testutil/mockidp"
)

// menuFixture is a router backed by an in-memory database and a local token issuer.
type menuFixture struct {
	t      *testing.T
	store  *storage.SQLiteStorage
	idp    *mockidp.Provider
	router http.Handler
}

func newMenuFixture(t *testing.T, opts ...HandlerOption) *menuFixture {
	t.Helper()

	store, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	idp, err := mockidp.NewProvider("https://coffeeshop.test.auth0.com/", "coffeeshop")
	require.NoError(t, err)

	verifier := auth.NewVerifier(auth.Config{
		Issuer:   idp.Issuer,
		Audience: "coffeeshop",
		KeySet:   idp.KeySet(),
	})

	router := NewRouter(NewHandler(store, testLogger(), opts...), RouterConfig{
		Verifier:     verifier,
		Logger:       testLogger(),
		MaxBodyBytes: 1 << 10,
	})

	return &menuFixture{t: t, store: store, idp: idp, router: router}
}

// seed inserts the two drinks the original test suite starts with.
func (f *menuFixture) seed() {
	f.t.Helper()
	for _, body := range []string{
		`{"title":"green-belt","recipe":[{"name":"matcha","color":"green","parts":1}]}`,
		`{"title":"water7","recipe":[{"name":"water","color":"blue","parts":1}]}`,
	} {
		rec := f.do(http.MethodPost, "/drinks", body, auth.PermPostDrinks)
		require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

// do sends a request carrying a token with the given permissions. A nil
// permission list sends no Authorization header at all.
func (f *menuFixture) do(method, target, body string, perms ...auth.Permission) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if perms != nil {
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			names = append(names, string(p))
		}
		req.Header.Set("Authorization", "Bearer "+f.idp.MustToken(names...))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type listResponse struct {
	Success bool                `json:"success"`
	Drinks  []storage.LongDrink `json:"drinks"`
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listResponse {
	t.Helper()
	var resp listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func drinkIDs(drinks []storage.LongDrink) []int64 {
	ids := make([]int64, 0, len(drinks))
	for _, d := range drinks {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestRouter_PublicListing(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	rec := f.do(http.MethodGet, "/drinks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	f.seed()

	rec = f.do(http.MethodGet, "/drinks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Drinks  []map[string]any
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Drinks, 2)
	for _, d := range resp.Drinks {
		for _, ing := range d["recipe"].([]any) {
			assert.NotContains(t, ing.(map[string]any), "name", "short view must hide ingredient names")
		}
	}
}

func TestRouter_EmptyListingAllowed(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t, WithEmptyListNotFound(false))

	rec := f.do(http.MethodGet, "/drinks-detail", "", auth.PermGetDrinksDetail)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"drinks":[]}`, rec.Body.String())
}

func TestRouter_DrinksDetailAuthorization(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)
	f.seed()

	rec := f.do(http.MethodGet, "/drinks-detail", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":401,"message":"Unauthorized"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/drinks-detail", "", auth.PermPostDrinks)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":403,"message":"Forbidden"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/drinks-detail", "", auth.PermGetDrinksDetail)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeList(t, rec)
	assert.True(t, resp.Success)
	require.Len(t, resp.Drinks, 2)
	assert.Equal(t, "matcha", resp.Drinks[0].Recipe[0].Name)
}

func TestRouter_TokenWithoutPermissionsClaim(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	claims := f.idp.Claims()
	delete(claims, "permissions")
	token, err := f.idp.Sign(claims)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CreateAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)
	f.seed()

	before := decodeList(t, f.do(http.MethodGet, "/drinks-detail", "", auth.PermGetDrinksDetail))
	maxID := slices.Max(drinkIDs(before.Drinks))

	// Deleting the newest drink must not let its id be reissued.
	rec := f.do(http.MethodDelete, "/drinks/2", "", auth.PermDeleteDrinks)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/drinks", `{"title":"espresso","recipe":[{"name":"coffee","color":"black","parts":1}]}`, auth.PermPostDrinks)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Drinks  storage.LongDrink `json:"drinks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.Drinks.ID, maxID)
	require.NotNil(t, resp.Drinks.Title)
	assert.Equal(t, "espresso", *resp.Drinks.Title)
}

func TestRouter_CreateRejections(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)
	f.seed()

	rec := f.do(http.MethodPost, "/drinks", `{"title":"water7"}`, auth.PermPostDrinks)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":422,"message":"unprocessable"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/drinks", `{"title":"new"}`, auth.PermPatchDrinks)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/drinks", `{"title":"`+strings.Repeat("a", 2048)+`"}`, auth.PermPostDrinks)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":413,"message":"request entity too large"}`, rec.Body.String())
}

func TestRouter_PatchTitleOnly(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)
	f.seed()

	rec := f.do(http.MethodPatch, "/drinks/999", `{"title":"X"}`, auth.PermPatchDrinks)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":404,"message":"resource not found"}`, rec.Body.String())

	rec = f.do(http.MethodPatch, "/drinks/1", `{"title":"X"}`, auth.PermPatchDrinks)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeList(t, rec)
	require.Len(t, resp.Drinks, 1)
	assert.Equal(t, int64(1), resp.Drinks[0].ID)
	assert.Equal(t, "X", *resp.Drinks[0].Title)
	assert.Equal(t, storage.Recipe{{Name: "matcha", Color: "green", Parts: 1}}, resp.Drinks[0].Recipe)
}

func TestRouter_PatchDuplicateTitle(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)
	f.seed()

	rec := f.do(http.MethodPatch, "/drinks/1", `{"title":"water7"}`, auth.PermPatchDrinks)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_Delete(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)
	f.seed()

	rec := f.do(http.MethodDelete, "/drinks/1", "", auth.PermDeleteDrinks)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"deleted":1}`, rec.Body.String())

	list := decodeList(t, f.do(http.MethodGet, "/drinks-detail", "", auth.PermGetDrinksDetail))
	assert.NotContains(t, drinkIDs(list.Drinks), int64(1))

	rec = f.do(http.MethodDelete, "/drinks/1", "", auth.PermDeleteDrinks)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AuthorizationBeforeLookup(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/drinks/999", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/drinks/999", "", auth.PermPatchDrinks).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPatch, "/drinks/999", `{"title":"x"}`).Code)
}

func TestRouter_RecipeRoundTrip(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	rec := f.do(http.MethodPost, "/drinks", `{"title":"hot","recipe":[{"name":"chilli","color":"red","parts":1}]}`, auth.PermPostDrinks)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeList(t, f.do(http.MethodGet, "/drinks-detail", "", auth.PermGetDrinksDetail))
	require.Len(t, list.Drinks, 1)
	assert.Equal(t, storage.Recipe{{Name: "chilli", Color: "red", Parts: 1}}, list.Drinks[0].Recipe)
}

func TestRouter_MalformedStoredRecipe(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	_, err := f.store.CreateDrink(t.Context(), &storage.Drink{Title: strPtr("broken"), Recipe: "{oops"})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/drinks", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":500,"message":"internal server error"}`, rec.Body.String())
}

func TestRouter_UnmatchedRoutes(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	tests := []struct {
		method     string
		target     string
		wantStatus int
		wantMsg    string
	}{
		{http.MethodGet, "/coffee", http.StatusNotFound, httpapi.MsgNotFound},
		{http.MethodDelete, "/drinks/abc", http.StatusNotFound, httpapi.MsgNotFound},
		{http.MethodPatch, "/drinks/-1", http.StatusNotFound, httpapi.MsgNotFound},
		{http.MethodPut, "/drinks", http.StatusMethodNotAllowed, httpapi.MsgMethodNotAllowed},
		{http.MethodGet, "/drinks/1", http.StatusMethodNotAllowed, httpapi.MsgMethodNotAllowed},
	}

	for _, tt := range tests {
		rec := f.do(tt.method, tt.target, "", auth.PermDeleteDrinks, auth.PermPatchDrinks)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.target, rec.Code, tt.wantStatus)
			continue
		}
		var resp httpapi.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, tt.wantMsg, resp.Message, "%s %s", tt.method, tt.target)
	}
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/drinks", nil)
	req.Header.Set("Origin", "http://localhost:8100")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(http.MethodGet, "/drinks", "")
	assert.Equal(t, "Content-Type,Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET,PATCH,POST,DELETE,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	t.Parallel()
	f := newMenuFixture(t)

	rec := f.do(http.MethodGet, "/drinks", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

// endlessBody streams 'a' bytes until remaining hits zero and records how
// many bytes were pulled from it.
type endlessBody struct {
	remaining int64
	consumed  int64
}

func (b *endlessBody) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		return 0, io.EOF
	}
	n := min(int64(len(p)), b.remaining)
	for i := range p[:n] {
		p[i] = 'a'
	}
	b.remaining -= n
	b.consumed += n
	return int(n), nil
}

func TestRouter_OversizedChunkedBodyAtDebug(t *testing.T) {
	t.Parallel()

	store, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	idp, err := mockidp.NewProvider("https://coffeeshop.test.auth0.com/", "coffeeshop")
	require.NoError(t, err)

	debugLogger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	const limit = 1024
	router := NewRouter(NewHandler(store, debugLogger), RouterConfig{
		Verifier: auth.NewVerifier(auth.Config{
			Issuer:   idp.Issuer,
			Audience: "coffeeshop",
			KeySet:   idp.KeySet(),
		}),
		Logger:       debugLogger,
		MaxBodyBytes: limit,
	})

	body := &endlessBody{remaining: 8 << 20}
	req := httptest.NewRequest(http.MethodPost, "/drinks", body)
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+idp.MustToken(string(auth.PermPostDrinks)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":413,"message":"request entity too large"}`, rec.Body.String())
	assert.LessOrEqual(t, body.consumed, int64(2*limit), "body was buffered past the limit")
}
