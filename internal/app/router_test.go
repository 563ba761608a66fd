package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/storefront/internal/events"
	"example.com/storefront/internal/model"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
)

type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	token  string
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	dsn := filepath.Join(s.T().TempDir(), "api.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })
	s.Require().NoError(db.AutoMigrate(model.All()...))
	s.db = db

	mr := miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	svc := NewServices(db, "router-test-secret", events.Nop{}, rdb, time.Minute)
	cfg := Config{AdminEmail: adminEmail, AdminPassword: adminPassword, SeedDemo: true}
	s.Require().NoError(bootstrap(context.Background(), cfg, svc))
	s.router = NewRouter(false, svc)

	code, body := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": adminEmail, "password": adminPassword}, "")
	s.Require().Equal(http.StatusOK, code, body)
	s.token = body["token"].(string)
}

func (s *RouterTestSuite) do(method, path string, payload any, token string) (int, map[string]any) {
	code, raw := s.doRaw(method, path, payload, token)
	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &body))
	}
	return code, body
}

func (s *RouterTestSuite) doRaw(method, path string, payload any, token string) (int, []byte) {
	var buf bytes.Buffer
	if payload != nil {
		switch p := payload.(type) {
		case string:
			buf.WriteString(p)
		default:
			s.Require().NoError(json.NewEncoder(&buf).Encode(p))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func (s *RouterTestSuite) newCart() string {
	code, body := s.do(http.MethodPost, "/api/carts", nil, "")
	s.Require().Equal(http.StatusCreated, code)
	return body["id"].(string)
}

func (s *RouterTestSuite) TestHealthAndUnknownRoute() {
	code, body := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["ok"])

	code, body = s.do(http.MethodGet, "/api/nope", nil, "")
	s.Equal(http.StatusNotFound, code)
	s.Equal("not found", body["detail"])
}

func (s *RouterTestSuite) TestLoginFailureIs401() {
	code, body := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": adminEmail, "password": "nope"}, "")
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("invalid credentials", body["detail"])
}

func (s *RouterTestSuite) TestRequestBodyValidation() {
	cases := []struct {
		path    string
		payload map[string]any
		field   string
		detail  string
	}{
		{"/api/auth/login", map[string]any{"email": adminEmail}, "password", "this field is required"},
		{"/api/categories", map[string]any{"description": "no title"}, "title", "this field is required"},
		{"/api/customers", map[string]any{"first_name": "Ann", "last_name": "Lee", "email": "Ann <ann@example.com>"}, "email", "enter a valid email address"},
		{"/api/customers", map[string]any{"last_name": "Lee", "email": "ann@example.com"}, "first_name", "this field is required"},
		{"/api/addresses", map[string]any{"customer": 1, "city": "Daytona", "province": "FL"}, "street", "this field is required"},
	}
	for _, tc := range cases {
		code, body := s.do(http.MethodPost, tc.path, tc.payload, s.token)
		s.Equal(http.StatusBadRequest, code, tc.payload)
		s.Equal(tc.field, body["field"], tc.payload)
		s.Equal(tc.detail, body["detail"], tc.payload)
	}
}

func (s *RouterTestSuite) TestAddItemFlow() {
	cart := s.newCart()
	path := "/api/carts/" + cart + "/add_item"

	code, body := s.do(http.MethodPost, path, map[string]any{"product_id": 2, "quantity": 3}, "")
	s.Require().Equal(http.StatusOK, code, body)
	s.EqualValues(3, body["quantity"])
	itemID := body["item_id"]

	code, body = s.do(http.MethodPost, path, map[string]any{"product_id": "2", "quantity": "2"}, "")
	s.Require().Equal(http.StatusOK, code, body)
	s.EqualValues(5, body["quantity"])
	s.Equal(itemID, body["item_id"])
	cartBody := body["cart"].(map[string]any)
	s.EqualValues(5, cartBody["total_items"])
	s.Equal("172.45", cartBody["total_price"])
	s.Len(cartBody["items"], 1)

	code, body = s.do(http.MethodPost, path, map[string]any{"product_id": 2}, "")
	s.Require().Equal(http.StatusOK, code)
	s.EqualValues(6, body["quantity"])
}

func (s *RouterTestSuite) TestAddItemErrors() {
	cart := s.newCart()
	path := "/api/carts/" + cart + "/add_item"

	cases := []struct {
		payload any
		status  int
		detail  string
	}{
		{map[string]any{"product_id": 1, "quantity": 0}, http.StatusBadRequest, "quantity must be > 0"},
		{map[string]any{"product_id": 1, "quantity": -4}, http.StatusBadRequest, "quantity must be > 0"},
		{map[string]any{"product_id": 1, "quantity": 1.5}, http.StatusBadRequest, "quantity must be an integer"},
		{map[string]any{"product_id": 1, "quantity": "many"}, http.StatusBadRequest, "quantity must be an integer"},
		{map[string]any{"quantity": 1}, http.StatusBadRequest, "product_id is required"},
		{map[string]any{"product_id": 999, "quantity": 1}, http.StatusNotFound, "product not found"},
		{"{not json", http.StatusBadRequest, "malformed request body"},
	}
	for _, tc := range cases {
		code, body := s.do(http.MethodPost, path, tc.payload, "")
		s.Equal(tc.status, code, tc.payload)
		s.Equal(tc.detail, body["detail"], tc.payload)
	}

	code, body := s.do(http.MethodPost, "/api/carts/not-a-uuid/add_item", map[string]any{"product_id": 1}, "")
	s.Equal(http.StatusNotFound, code)
	s.Equal("cart not found", body["detail"])

	code, _ = s.do(http.MethodPost, "/api/carts/00000000-0000-0000-0000-000000000001/add_item", map[string]any{"product_id": 1}, "")
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterTestSuite) TestCatalogReadsAndAdminWrites() {
	code, raw := s.doRaw(http.MethodGet, "/api/categories", nil, "")
	s.Require().Equal(http.StatusOK, code)
	var cats []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &cats))
	s.Require().Len(cats, 3)
	s.Equal("Apparel", cats[0]["title"])
	s.Equal("14.50", cats[0]["min_price"])
	s.Equal("26.83", cats[0]["avg_price"])
	s.Nil(cats[2]["price_range"])

	code, body := s.do(http.MethodGet, "/api/categories?ordering=bogus", nil, "")
	s.Equal(http.StatusBadRequest, code)
	s.Equal("ordering", body["field"])

	newCat := map[string]any{"title": "Bags"}
	code, _ = s.do(http.MethodPost, "/api/categories", newCat, "")
	s.Equal(http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/api/categories", newCat, s.token)
	s.Equal(http.StatusCreated, code)

	code, raw = s.doRaw(http.MethodGet, "/api/categories", nil, "")
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(raw, &cats))
	s.Len(cats, 4)

	code, body = s.do(http.MethodPost, "/api/products", map[string]any{
		"name": "Canvas tote", "unit_price": "12.00", "inventory": 4, "category": 1,
	}, s.token)
	s.Require().Equal(http.StatusCreated, code, body)
	s.Equal("canvas-tote", body["slug"])

	code, _ = s.do(http.MethodGet, "/api/products?price_min=abc", nil, "")
	s.Equal(http.StatusBadRequest, code)

	code, raw = s.doRaw(http.MethodGet, "/api/products?price_min=40&price_max=130&ordering=unit_price", nil, "")
	s.Require().Equal(http.StatusOK, code)
	var products []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &products))
	s.Require().Len(products, 3)
	s.Equal("Red Hoodie", products[0]["name"])

	code, raw = s.doRaw(http.MethodGet, "/api/discounts?base_price=100", nil, "")
	s.Require().Equal(http.StatusOK, code)
	var discounts []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &discounts))
	s.Require().Len(discounts, 1)
	s.Equal("-25%", discounts[0]["label"])
	s.Equal("75.00", discounts[0]["discounted_price_preview"])
}

func (s *RouterTestSuite) TestModerationAndCheckout() {
	code, body := s.do(http.MethodPost, "/api/comments", map[string]any{"product": 1, "name": "Ann", "body": "Great", "status": "approved"}, "")
	s.Require().Equal(http.StatusCreated, code, body)
	s.Equal("waiting", body["status"])
	commentPath := fmt.Sprintf("/api/comments/%v", body["id"])

	code, _ = s.do(http.MethodPost, commentPath+"/approve", nil, "")
	s.Equal(http.StatusForbidden, code)
	code, body = s.do(http.MethodPost, commentPath+"/approve", nil, s.token)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("approved", body["status"])
	code, _ = s.do(http.MethodPost, commentPath+"/reject", nil, s.token)
	s.Equal(http.StatusConflict, code)

	code, body = s.do(http.MethodPost, "/api/customers", map[string]any{
		"first_name": "Bob", "last_name": "Ross", "email": "bob@example.com", "birth_date": "1942-10-29",
	}, "")
	s.Require().Equal(http.StatusCreated, code, body)
	s.Equal("Bob Ross", body["full_name"])
	customerID := body["id"]

	code, _ = s.do(http.MethodPost, "/api/customers", map[string]any{"first_name": "B", "last_name": "R", "email": "bob@example.com"}, "")
	s.Equal(http.StatusConflict, code)

	addr := map[string]any{"customer": customerID, "city": "Daytona", "province": "FL", "street": "Main 1"}
	code, _ = s.do(http.MethodPost, "/api/addresses", addr, "")
	s.Equal(http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/addresses", addr, "")
	s.Equal(http.StatusConflict, code)

	cart := s.newCart()
	code, _ = s.do(http.MethodPost, "/api/carts/"+cart+"/add_item", map[string]any{"product_id": 1, "quantity": 2}, "")
	s.Require().Equal(http.StatusOK, code)

	code, body = s.do(http.MethodPost, "/api/carts/"+cart+"/checkout", map[string]any{"customer_id": customerID}, "")
	s.Require().Equal(http.StatusCreated, code, body)
	s.Equal("unpaid", body["status"])
	orderPath := fmt.Sprintf("/api/orders/%v", body["id"])

	code, _ = s.do(http.MethodPost, orderPath+"/pay", nil, "")
	s.Equal(http.StatusForbidden, code)
	code, body = s.do(http.MethodPost, orderPath+"/pay", nil, s.token)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("paid", body["status"])

	code, body = s.do(http.MethodGet, "/api/products/1", nil, "")
	s.Require().Equal(http.StatusOK, code)
	s.EqualValues(2, body["total_sold"])
	s.EqualValues(1, body["approved_comments_count"])
}

func (s *RouterTestSuite) TestDeleteCart() {
	cart := s.newCart()
	code, _ := s.doRaw(http.MethodDelete, "/api/carts/"+cart, nil, "")
	s.Equal(http.StatusNoContent, code)
	code, _ = s.doRaw(http.MethodGet, "/api/carts/"+cart, nil, "")
	s.Equal(http.StatusNotFound, code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/store")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CATALOG_CACHE_TTL", "45s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 45*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "storefront.events", cfg.Kafka.Topic)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.IsProd())
}

func TestLoadConfigRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := LoadConfig()
	assert.Error(t, err)
}
