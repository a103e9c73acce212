package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, meta map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{
		"success": status < 400,
		"code":    status,
		"message": http.StatusText(status),
		"meta":    meta,
	}
	if status < 400 {
		body["data"] = data
	} else {
		body["error"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_ListProducts(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products", r.URL.Path)
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, 200, []map[string]interface{}{
			{"id": 1, "title": "Maths G3", "price": "300.00", "grade_name": "Grade 3"},
		}, map[string]interface{}{
			"pagination": map[string]int{"page": 1, "limit": 2, "totalItems": 3, "totalPages": 2},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	page, err := c.ListProducts(context.Background(), ProductQuery{GradeIDs: []int{3, 4}, Sort: "price_low", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, "grade_ids=3%2C4&limit=2&sort=price_low", gotQuery)
	require.Len(t, page.Products, 1)
	assert.True(t, page.Products[0].Price.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 404, map[string]string{"code": "NOT_FOUND", "message": "NOT_FOUND: product 9"}, nil)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetProduct(context.Background(), 9)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestClient_Checkout_ClearsCartOnSuccess(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/checkout", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(w, 200, map[string]interface{}{
			"success":      true,
			"order_id":     12,
			"total_amount": "1200",
			"status":       "pending",
			"payment_acknowledgement": map[string]string{
				"CheckoutRequestID": "ws_CO_1",
				"ResponseCode":      "0",
			},
		}, nil)
	}))
	defer srv.Close()

	cart := NewCart()
	cart.Add(book(1, "500"))
	cart.Add(book(1, "500"))

	res, err := NewClient(srv.URL).Checkout(context.Background(), cart, CheckoutDetails{
		CustomerName:   "Wanjiku",
		Phone:          "+254 712-345-678",
		Location:       "Nakuru",
		DeliveryOption: DeliveryDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, res.OrderID)
	assert.Equal(t, "ws_CO_1", res.PaymentAcknowledgement.CheckoutRequestID)
	assert.True(t, cart.Empty())

	assert.Equal(t, "254712345678", got["phone"])
	assert.Equal(t, "1200", got["amount"])
	items := got["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]interface{})["quantity"])
}

func TestClient_Checkout_KeepsCartOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 500, map[string]string{"code": "QUERY_FAILURE", "message": "db down"}, nil)
	}))
	defer srv.Close()

	cart := NewCart()
	cart.Add(book(1, "500"))

	_, err := NewClient(srv.URL).Checkout(context.Background(), cart, CheckoutDetails{
		CustomerName: "Wanjiku",
		Phone:        "0712345678",
	})
	require.Error(t, err)
	assert.Equal(t, 1, cart.Count())
}

func TestClient_Checkout_LocalValidation(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeEnvelope(w, 200, nil, nil)
	}))
	defer srv.Close()
	c := NewClient(srv.URL)

	full := NewCart()
	full.Add(book(1, "500"))

	cases := []struct {
		cart    *Cart
		details CheckoutDetails
	}{
		{full, CheckoutDetails{Phone: "0712"}},
		{full, CheckoutDetails{CustomerName: "A", Phone: "abc"}},
		{full, CheckoutDetails{CustomerName: "A", Phone: "0712", DeliveryOption: DeliveryDelivery}},
		{full, CheckoutDetails{CustomerName: "A", Phone: "0712", DeliveryOption: "drone"}},
		{NewCart(), CheckoutDetails{CustomerName: "A", Phone: "0712"}},
	}
	for _, tc := range cases {
		_, err := c.Checkout(context.Background(), tc.cart, tc.details)
		assert.ErrorIs(t, err, ErrInvalidCheckout)
	}
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, full.Count())
}

func TestClient_CheckoutAmount(t *testing.T) {
	cart := NewCart()
	cart.Add(book(1, "0.10"))
	cart.Add(book(1, "0.10"))
	cart.Add(book(2, "0.10"))

	c := NewClient("http://unused", WithDeliveryFee(decimal.RequireFromString("150")))
	assert.Equal(t, "0.30", c.CheckoutAmount(cart, DeliveryPickup).StringFixed(2))
	assert.Equal(t, "150.30", c.CheckoutAmount(cart, DeliveryDelivery).StringFixed(2))
}
