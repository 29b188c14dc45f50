package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/gocart/internal/cart/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCartService is a mock implementation of the CartService interface
type mockCartService struct {
	cart    *service.CartDto
	summary *service.CartSummaryDto
	cleared bool

	lastProductID string
	lastColorID   string
	lastQuantity  int
}

func (m *mockCartService) GetCart(_ context.Context, _, _ string) *service.CartDto {
	return m.cart
}

func (m *mockCartService) Summary(_ context.Context, _, _ string) *service.CartSummaryDto {
	return m.summary
}

func (m *mockCartService) AddItem(_ context.Context, _, _ string, payload service.AddItemDto) *service.CartDto {
	m.lastProductID = payload.ProductID
	m.lastQuantity = payload.Quantity
	return m.cart
}

func (m *mockCartService) UpdateQuantity(_ context.Context, _, _, productID, colorID string, quantity int) *service.CartDto {
	m.lastProductID = productID
	m.lastColorID = colorID
	m.lastQuantity = quantity
	return m.cart
}

func (m *mockCartService) RemoveItem(_ context.Context, _, _, productID, colorID string) *service.CartDto {
	m.lastProductID = productID
	m.lastColorID = colorID
	return m.cart
}

func (m *mockCartService) Clear(_ context.Context, _, _ string) {
	m.cleared = true
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func newTestRouter(svc service.CartService) *chi.Mux {
	mux := chi.NewRouter()
	NewHandler(svc, slog.Default()).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, target, body string, withHeaders bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if withHeaders {
		req.Header.Set("X-Tenant-Id", "acme")
		req.Header.Set("X-Session-Id", "sess-1")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func sampleCart() *service.CartDto {
	return &service.CartDto{
		Items: []service.CartItemDto{{
			ProductID:   "mug-01",
			Name:        "Mug",
			Price:       1050,
			Currency:    "EUR",
			Quantity:    1,
			MaxQuantity: 2,
		}},
		TotalItems: 1,
		TotalPrice: 1050,
	}
}

func Test_CartAPI_MissingStorefrontHeaders(t *testing.T) {
	mux := newTestRouter(&mockCartService{cart: sampleCart()})

	testCases := []struct {
		name   string
		method string
		target string
	}{
		{name: "get cart", method: http.MethodGet, target: "/api/v1/cart"},
		{name: "summary", method: http.MethodGet, target: "/api/v1/cart/summary"},
		{name: "add item", method: http.MethodPost, target: "/api/v1/cart/items"},
		{name: "clear", method: http.MethodDelete, target: "/api/v1/cart"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, mux, tc.method, tc.target, "", false)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func Test_CartAPI_GetCart(t *testing.T) {
	mux := newTestRouter(&mockCartService{cart: sampleCart()})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/cart", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, toJSON(t, sampleCart()), rec.Body.String())
}

func Test_CartAPI_Summary(t *testing.T) {
	mux := newTestRouter(&mockCartService{summary: &service.CartSummaryDto{TotalItems: 3, TotalPrice: 4200}})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/cart/summary", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_items":3,"total_price":4200}`, rec.Body.String())
}

func Test_CartAPI_AddItem(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedCode int
		expectedRule string
	}{
		{
			name: "Success - item added",
			body: toJSON(t, service.AddItemDto{
				ProductID:   "mug-01",
				Name:        "Mug",
				Price:       1050,
				Currency:    "EUR",
				Quantity:    1,
				MaxQuantity: 2,
			}),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - malformed body",
			body:         `{"product_id": `,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing product id",
			body:         `{"name":"Mug","price":1050,"currency":"EUR","max_quantity":2}`,
			expectedCode: http.StatusBadRequest,
			expectedRule: "ProductID",
		},
		{
			name:         "Error - missing max quantity",
			body:         `{"product_id":"mug-01","name":"Mug","price":1050,"currency":"EUR"}`,
			expectedCode: http.StatusBadRequest,
			expectedRule: "MaxQuantity",
		},
		{
			name:         "Error - bad currency code",
			body:         `{"product_id":"mug-01","name":"Mug","price":1050,"currency":"EURO","max_quantity":2}`,
			expectedCode: http.StatusBadRequest,
			expectedRule: "Currency",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockCartService{cart: sampleCart()}
			mux := newTestRouter(mock)

			rec := doRequest(t, mux, http.MethodPost, "/api/v1/cart/items", tc.body, true)

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedRule != "" {
				var resp struct {
					ValidationErrors map[string]string `json:"validation_errors"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Contains(t, resp.ValidationErrors, tc.expectedRule)
			}
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, "mug-01", mock.lastProductID)
			}
		})
	}
}

func Test_CartAPI_UpdateQuantity(t *testing.T) {
	testCases := []struct {
		name         string
		target       string
		body         string
		expectedCode int
		expectedQty  int
		expectedCol  string
	}{
		{
			name:         "Success - quantity set",
			target:       "/api/v1/cart/items/mug-01",
			body:         `{"quantity": 2}`,
			expectedCode: http.StatusOK,
			expectedQty:  2,
		},
		{
			name:         "Success - explicit zero requests removal",
			target:       "/api/v1/cart/items/mug-01",
			body:         `{"quantity": 0}`,
			expectedCode: http.StatusOK,
			expectedQty:  0,
		},
		{
			name:         "Success - color variant addressed",
			target:       "/api/v1/cart/items/shirt-02?color=red",
			body:         `{"quantity": 1}`,
			expectedCode: http.StatusOK,
			expectedQty:  1,
			expectedCol:  "red",
		},
		{
			name:         "Error - missing quantity",
			target:       "/api/v1/cart/items/mug-01",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockCartService{cart: sampleCart()}
			mux := newTestRouter(mock)

			rec := doRequest(t, mux, http.MethodPut, tc.target, tc.body, true)

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedQty, mock.lastQuantity)
				assert.Equal(t, tc.expectedCol, mock.lastColorID)
			}
		})
	}
}

func Test_CartAPI_RemoveItem(t *testing.T) {
	mock := &mockCartService{cart: sampleCart()}
	mux := newTestRouter(mock)

	rec := doRequest(t, mux, http.MethodDelete, "/api/v1/cart/items/shirt-02?color=blue", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shirt-02", mock.lastProductID)
	assert.Equal(t, "blue", mock.lastColorID)
}

func Test_CartAPI_Clear(t *testing.T) {
	mock := &mockCartService{cart: sampleCart()}
	mux := newTestRouter(mock)

	rec := doRequest(t, mux, http.MethodDelete, "/api/v1/cart", "", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, mock.cleared)
}

func Test_CartAPI_HealthCheck(t *testing.T) {
	mux := newTestRouter(&mockCartService{})

	rec := doRequest(t, mux, http.MethodGet, "/healthz", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
}
