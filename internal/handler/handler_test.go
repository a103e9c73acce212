package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/cbc_bookstore/internal/middleware"
	"github.com/GTDGit/cbc_bookstore/internal/repository"
	"github.com/GTDGit/cbc_bookstore/internal/service"
	"github.com/GTDGit/cbc_bookstore/internal/sse"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
	"github.com/GTDGit/cbc_bookstore/pkg/mpesa"
)

const testAdminPassword = "s3cret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	hub    *sse.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "postgres")

	productRepo := repository.NewProductRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	hub := sse.NewHub()

	adminSvc := service.NewProductAdminService(productRepo, testAdminPassword)
	handlers := &Handlers{
		Health:       NewHealthHandler(db),
		Catalog:      NewCatalogHandler(service.NewCatalogService(productRepo, lookupRepo, nil)),
		AdminProduct: NewAdminProductHandler(adminSvc),
		Checkout:     NewCheckoutHandler(service.NewCheckoutService(orderRepo, mpesa.NewSimulator(), sse.NewHubNotifier(hub), decimal.NewFromInt(200))),
		Order:        NewOrderHandler(service.NewOrderService(orderRepo)),
		SSE:          NewSSEHandler(hub),
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	SetupRoutes(router, handlers, middleware.NewAdminMiddleware(adminSvc, nil))

	return &testServer{router: router, mock: mock, hub: hub}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool             `json:"success"`
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *utils.ErrorInfo `json:"error"`
	Meta    utils.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

var productColumns = []string{
	"id", "title", "grade_id", "subject_id", "category_id", "price",
	"image", "publisher", "isbn", "description", "stock",
	"created_at", "updated_at", "grade_name", "subject_name", "category_name",
}
