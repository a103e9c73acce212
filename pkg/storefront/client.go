package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/cbc_bookstore/pkg/mpesa"
)

// DefaultDeliveryFee is the KES fee added to delivery orders.
var DefaultDeliveryFee = decimal.NewFromInt(200)

// ErrInvalidCheckout is returned when checkout details fail local validation;
// nothing is sent to the API.
var ErrInvalidCheckout = errors.New("invalid checkout")

// Client is a minimal HTTP client for the bookstore API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	deliveryFee decimal.Decimal
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDeliveryFee overrides the delivery fee used to compute checkout amounts.
func WithDeliveryFee(fee decimal.Decimal) Option {
	return func(c *Client) { c.deliveryFee = fee }
}

// NewClient constructs a client for the API served at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		deliveryFee: DefaultDeliveryFee,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProductQuery are the catalog listing criteria. Zero values mean "no
// constraint".
type ProductQuery struct {
	GradeIDs    []int
	SubjectIDs  []int
	CategoryIDs []int
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Search      string
	Sort        string // price_low, price_high or empty for newest
	Page        int
	Limit       int
}

// Values encodes the query as listing parameters.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	setIDs := func(key string, ids []int) {
		if len(ids) == 0 {
			return
		}
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		v.Set(key, strings.Join(parts, ","))
	}
	setIDs("grade_ids", q.GradeIDs)
	setIDs("subject_ids", q.SubjectIDs)
	setIDs("category_ids", q.CategoryIDs)
	if q.MinPrice != nil {
		v.Set("min_price", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("max_price", q.MaxPrice.String())
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// GetGrades returns all grades.
func (c *Client) GetGrades(ctx context.Context) ([]Lookup, error) {
	var out []Lookup
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/grades", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSubjects returns all subjects.
func (c *Client) GetSubjects(ctx context.Context) ([]Lookup, error) {
	var out []Lookup
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/subjects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategories returns all categories.
func (c *Client) GetCategories(ctx context.Context) ([]Lookup, error) {
	var out []Lookup
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts returns one page of the catalog.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	path := "/api/products"
	if enc := q.Values().Encode(); enc != "" {
		path += "?" + enc
	}

	page := &ProductPage{}
	meta, err := c.doRequest(ctx, http.MethodGet, path, nil, &page.Products)
	if err != nil {
		return nil, err
	}
	if meta.Pagination != nil {
		page.Pagination = *meta.Pagination
	}
	return page, nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	var p Product
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CheckoutAmount returns the cart total plus the delivery fee when the
// option is delivery.
func (c *Client) CheckoutAmount(cart *Cart, deliveryOption string) decimal.Decimal {
	total := cart.Total()
	if deliveryOption == DeliveryDelivery {
		total = total.Add(c.deliveryFee)
	}
	return total
}

// Checkout places an order for the cart. The cart is cleared only when the
// order is accepted; on any error it is left untouched for a retry.
func (c *Client) Checkout(ctx context.Context, cart *Cart, details CheckoutDetails) (*CheckoutResult, error) {
	req, err := c.buildCheckout(cart, details)
	if err != nil {
		return nil, err
	}

	var result CheckoutResult
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/checkout", req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Code: "CHECKOUT_FAILED", Message: "order was not accepted"}
	}

	cart.Clear()
	return &result, nil
}

func (c *Client) buildCheckout(cart *Cart, details CheckoutDetails) (*checkoutRequest, error) {
	name := strings.TrimSpace(details.CustomerName)
	phone := mpesa.NormalizePhone(details.Phone)
	location := strings.TrimSpace(details.Location)
	option := details.DeliveryOption
	if option == "" {
		option = DeliveryPickup
	}

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCheckout)
	case phone == "":
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidCheckout)
	case option != DeliveryPickup && option != DeliveryDelivery:
		return nil, fmt.Errorf("%w: unknown delivery option %q", ErrInvalidCheckout, option)
	case option == DeliveryDelivery && location == "":
		return nil, fmt.Errorf("%w: location is required for delivery", ErrInvalidCheckout)
	case cart.Empty():
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidCheckout)
	}

	lines := cart.Lines()
	items := make([]checkoutItem, len(lines))
	for i, l := range lines {
		items[i] = checkoutItem{ProductID: l.Product.ID, Quantity: l.Quantity, Price: l.Product.Price}
	}

	return &checkoutRequest{
		CustomerName:   name,
		Phone:          phone,
		Location:       location,
		DeliveryOption: option,
		Amount:         c.CheckoutAmount(cart, option),
		Items:          items,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID  string      `json:"requestId"`
		Pagination *Pagination `json:"pagination"`
	} `json:"meta"`
}

type responseMeta struct {
	Pagination *Pagination
}

// doRequest sends body as JSON (when non-nil), unwraps the response envelope
// and decodes its data into result.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) (*responseMeta, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: "INVALID_RESPONSE", Message: err.Error()}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		log.Debug().
			Str("path", path).
			Int("status_code", resp.StatusCode).
			Str("request_id", env.Meta.RequestID).
			Str("code", apiErr.Code).
			Msg("storefront request rejected")
		return nil, apiErr
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return &responseMeta{Pagination: env.Meta.Pagination}, nil
}
