package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/app"
	"stockledger/internal/domain/auth"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/metrics"
	"stockledger/internal/infrastructure/storage/memory"
)

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newAPI(t *testing.T, cfg v1.RouterConfig) *apiClient {
	t.Helper()
	if cfg.Services == nil {
		cfg.Services = app.NewServices(memory.New().Repositories(), app.Options{})
	}
	return &apiClient{t: t, router: v1.NewRouter(cfg)}
}

func (a *apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "clerk-1")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func (a *apiClient) create(path string, body any) string {
	a.t.Helper()
	rec, out := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return out["id"].(string)
}

func seed(a *apiClient) (warehouse, product string) {
	warehouse = a.create("/api/v1/warehouses", map[string]any{"code": "W1", "name": "Main"})
	product = a.create("/api/v1/products", map[string]any{"sku": "SKU-1", "name": "Bolt", "unit": "pcs", "minQuantity": "5"})
	return warehouse, product
}

func items(product, qty string) []map[string]any {
	return []map[string]any{{"productId": product, "quantity": qty}}
}

func TestRouter_StockInLifecycle(t *testing.T) {
	api := newAPI(t, v1.RouterConfig{})
	w, p := seed(api)

	rec, doc := api.do(http.MethodPost, "/api/v1/stock-ins", map[string]any{
		"code": "IN-1", "warehouseId": w, "items": items(p, "10"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "draft", doc["status"])
	assert.Equal(t, "clerk-1", doc["createdBy"])
	docID := doc["id"].(string)

	rec, doc = api.do(http.MethodPost, "/api/v1/stock-ins/"+docID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", doc["status"])

	rec, bal := api.do(http.MethodGet, "/api/v1/balances/"+w+"/"+p, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", bal["quantity"])

	rec, body := api.do(http.MethodPost, "/api/v1/stock-ins/"+docID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", body["code"])

	rec, body = api.do(http.MethodDelete, "/api/v1/stock-ins/"+docID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "soft_deleted", body["outcome"])

	rec, _ = api.do(http.MethodGet, "/api/v1/stock-ins/"+docID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(http.MethodGet, "/api/v1/stock-ins/"+docID+"?includeDeleted=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(http.MethodDelete, "/api/v1/stock-ins/"+docID+"/permanent", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	_, bal = api.do(http.MethodGet, "/api/v1/balances/"+w+"/"+p, nil)
	assert.Equal(t, "0", bal["quantity"])
}

func TestRouter_StockOutRejectsShortage(t *testing.T) {
	api := newAPI(t, v1.RouterConfig{})
	w, p := seed(api)

	outID := api.create("/api/v1/stock-outs", map[string]any{
		"code": "OUT-1", "warehouseId": w, "items": items(p, "3"),
	})

	rec, body := api.do(http.MethodPost, "/api/v1/stock-outs/"+outID+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	_, doc := api.do(http.MethodGet, "/api/v1/stock-outs/"+outID, nil)
	assert.Equal(t, "draft", doc["status"])
}

func TestRouter_DraftRemoveIsHardDelete(t *testing.T) {
	api := newAPI(t, v1.RouterConfig{})
	w, p := seed(api)

	docID := api.create("/api/v1/stock-transfers", map[string]any{
		"code": "TR-1", "fromWarehouseId": w,
		"toWarehouseId": api.create("/api/v1/warehouses", map[string]any{"code": "W2", "name": "Overflow"}),
		"items":         items(p, "1"),
	})

	rec, body := api.do(http.MethodDelete, "/api/v1/stock-transfers/"+docID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hard_deleted", body["outcome"])

	rec, _ = api.do(http.MethodGet, "/api/v1/stock-transfers/"+docID+"?includeDeleted=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ListAndValidation(t *testing.T) {
	api := newAPI(t, v1.RouterConfig{})
	w, p := seed(api)
	api.create("/api/v1/stock-ins", map[string]any{"code": "IN-1", "warehouseId": w, "items": items(p, "1")})
	api.create("/api/v1/stock-ins", map[string]any{"code": "IN-2", "warehouseId": w, "items": items(p, "2")})

	rec, body := api.do(http.MethodGet, "/api/v1/stock-ins?code=in-2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, body["totalCount"])

	rec, body = api.do(http.MethodGet, "/api/v1/stock-ins?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	rec, _ = api.do(http.MethodGet, "/api/v1/stock-ins/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = api.do(http.MethodPost, "/api/v1/stock-ins", map[string]any{"code": "IN-1", "warehouseId": w, "items": items(p, "1")})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", body["code"])

	rec, _ = api.do(http.MethodPost, "/api/v1/warehouses", map[string]any{"code": "W1", "name": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_StockTakeVariance(t *testing.T) {
	api := newAPI(t, v1.RouterConfig{})
	w, p := seed(api)

	inID := api.create("/api/v1/stock-ins", map[string]any{"code": "IN-1", "warehouseId": w, "items": items(p, "10")})
	rec, _ := api.do(http.MethodPost, "/api/v1/stock-ins/"+inID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	takeID := api.create("/api/v1/stock-takes", map[string]any{
		"code": "ST-1", "warehouseId": w,
		"items": []map[string]any{{"productId": p, "actualQuantity": "7"}},
	})

	rec, variance := api.do(http.MethodGet, "/api/v1/stock-takes/"+takeID+"/variance", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3", variance["shortage"])
	assert.Equal(t, "0", variance["surplus"])
}

func TestRouter_Reports(t *testing.T) {
	api := newAPI(t, v1.RouterConfig{})
	w, p := seed(api)

	inID := api.create("/api/v1/stock-ins", map[string]any{"code": "IN-1", "warehouseId": w, "items": items(p, "2")})
	rec, _ := api.do(http.MethodPost, "/api/v1/stock-ins/"+inID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, recon := api.do(http.MethodGet, "/api/v1/reports/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 0, recon["mismatches"])

	rec, low := api.do(http.MethodGet, "/api/v1/reports/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, low["items"], 1)

	now := time.Now().UTC()
	rec, summary := api.do(http.MethodGet,
		"/api/v1/reports/summary/stock_in?type=year&year="+now.Format("2006"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, summary["documentCount"])
	assert.Len(t, summary["buckets"], 12)

	rec, _ = api.do(http.MethodGet, "/api/v1/reports/summary/bogus?type=year&year=2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AuthRequiredWhenValidatorSet(t *testing.T) {
	jwt := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "stockledger", AccessTokenTTL: time.Hour})
	api := newAPI(t, v1.RouterConfig{JWTValidator: jwt})

	rec, body := api.do(http.MethodGet, "/api/v1/warehouses", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	token, _, err := jwt.GenerateAccessToken("user-7", "u7@example.com", nil)
	require.NoError(t, err)
	api.token = token

	rec, _ = api.do(http.MethodGet, "/api/v1/warehouses", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	w, p := seed(api)
	_, doc := api.do(http.MethodPost, "/api/v1/stock-ins", map[string]any{"code": "IN-9", "warehouseId": w, "items": items(p, "1")})
	assert.Equal(t, "user-7", doc["createdBy"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	m := metrics.New(metrics.DefaultConfig("test"))
	api := newAPI(t, v1.RouterConfig{
		Metrics: m,
		Health:  handlers.NewHealthHandler(nil, "memory", "test"),
	})

	rec, body := api.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	api.do(http.MethodGet, "/api/v1/warehouses", nil)

	rec, _ = api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockledger_http_requests_total")
}
