package router

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"brass-inventory/internal/model"
	"brass-inventory/pkg/config"
	"brass-inventory/pkg/database"
	appjwt "brass-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const secret = "router-test-secret"

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newClient(t *testing.T, privileges ...string) *client {
	t.Helper()
	cfg := &config.Config{
		AppName:        "brass-test",
		DBDriver:       "sqlite",
		DatabaseURL:    filepath.Join(t.TempDir(), "api.db"),
		AllowedOrigins: "*",
		BodyLimitBytes: 1 << 20,
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}

	appjwt.SetSecret(secret)
	claims := &appjwt.Claims{
		Email:      "clerk@brass.test",
		Name:       "Clerk",
		Privileges: privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "clerk-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return &client{t: t, app: New(Deps{Config: cfg, DB: db}), token: tok}
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *client) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		r = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, 5000)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealthAndAuth(t *testing.T) {
	c := newClient(t)

	if status := c.do("GET", "/health", nil, nil); status != 200 {
		t.Fatalf("health = %d", status)
	}

	anon := *c
	anon.token = ""
	var e apiError
	if status := anon.do("GET", "/api/v1/products", nil, &e); status != 401 || e.Code != "UNAUTHORIZED" {
		t.Fatalf("anonymous = %d %+v", status, e)
	}
	if status := c.do("GET", "/api/v1/products", nil, &e); status != 403 || e.Code != "FORBIDDEN" {
		t.Fatalf("no privileges = %d %+v", status, e)
	}

	var me map[string]interface{}
	if status := c.do("GET", "/api/v1/auth/me", nil, &me); status != 200 || me["userId"] != "clerk-1" {
		t.Fatalf("me = %d %v", status, me)
	}
	var valid map[string]interface{}
	if status := anon.do("POST", "/api/v1/auth/validate-token", map[string]string{"token": c.token}, &valid); status != 200 || valid["valid"] != true {
		t.Fatalf("validate-token = %d %v", status, valid)
	}
}

func TestInvoiceFlowOverHTTP(t *testing.T) {
	c := newClient(t, model.AllPrivileges...)

	var created struct {
		Data model.Product `json:"data"`
	}
	status := c.do("POST", "/api/v1/products", map[string]interface{}{
		"sku": "BV-100", "name": "Brass valve", "category": "Valves",
		"purchasePrice": 300, "sellingPrice": 500, "gstPercent": 18, "openingStock": 3,
	}, &created)
	if status != 201 {
		t.Fatalf("create product = %d", status)
	}
	productID := created.Data.ID.String()

	var e apiError
	if status := c.do("POST", "/api/v1/products", map[string]interface{}{
		"sku": "BV-100", "name": "Again", "purchasePrice": 1, "sellingPrice": 1, "gstPercent": 0,
	}, &e); status != 409 || e.Code != "CONFLICT" {
		t.Fatalf("duplicate sku = %d %+v", status, e)
	}

	var customer struct {
		Data model.Customer `json:"data"`
	}
	if status := c.do("POST", "/api/v1/customers", map[string]interface{}{"name": "Shree Traders", "phone": "9876543210"}, &customer); status != 201 {
		t.Fatalf("create customer = %d", status)
	}

	if status := c.do("POST", "/api/v1/invoices", map[string]interface{}{
		"customerId": customer.Data.ID,
		"items":      []map[string]interface{}{{"productId": productID, "quantity": 5}},
	}, &e); status != 400 || e.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("oversell = %d %+v", status, e)
	}

	var inv model.Invoice
	if status := c.do("POST", "/api/v1/invoices", map[string]interface{}{
		"customerId":      customer.Data.ID,
		"date":            "2026-03-01",
		"discountPercent": 10,
		"items":           []map[string]interface{}{{"productId": productID, "quantity": 2}},
	}, &inv); status != 201 {
		t.Fatalf("create invoice = %d", status)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(1062)) {
		t.Fatalf("invoice total = %s", inv.TotalAmount)
	}

	var product model.Product
	c.do("GET", "/api/v1/products/"+productID, nil, &product)
	if product.CurrentStock != 1 {
		t.Fatalf("stock = %d, want 1", product.CurrentStock)
	}

	if status := c.do("PATCH", "/api/v1/invoices/"+inv.ID.String(), map[string]interface{}{"totalAmount": 1}, &e); status != 400 || e.Code != "VALIDATION_ERROR" {
		t.Fatalf("patch total = %d %+v", status, e)
	}

	if status := c.do("DELETE", "/api/v1/invoices/"+inv.ID.String(), nil, nil); status != 200 {
		t.Fatalf("delete invoice = %d", status)
	}
	c.do("GET", "/api/v1/products/"+productID, nil, &product)
	if product.CurrentStock != 3 {
		t.Fatalf("stock after delete = %d, want 3", product.CurrentStock)
	}
	if status := c.do("GET", "/api/v1/products/"+productID+"/verify-ledger", nil, nil); status != 200 {
		t.Fatalf("verify-ledger = %d", status)
	}

	if status := c.do("GET", "/api/v1/invoices/"+inv.ID.String(), nil, &e); status != 404 || e.Code != "NOT_FOUND" {
		t.Fatalf("deleted invoice = %d %+v", status, e)
	}
	if status := c.do("GET", "/api/v1/products/not-a-uuid", nil, &e); status != 400 {
		t.Fatalf("bad id = %d", status)
	}
}

func TestReportsOverHTTP(t *testing.T) {
	c := newClient(t, model.PrivReportView)

	var e apiError
	if status := c.do("GET", "/api/v1/reports/gst?from=2026-03-01&to=2026-03-31", nil, nil); status != 200 {
		t.Fatalf("gst = %d", status)
	}
	if status := c.do("GET", "/api/v1/reports/profit-loss?from=03/01/2026", nil, &e); status != 400 {
		t.Fatalf("bad date = %d %+v", status, e)
	}
	if status := c.do("GET", "/api/v1/reports/stock-valuation", nil, nil); status != 200 {
		t.Fatalf("valuation = %d", status)
	}
	if status := c.do("GET", "/api/v1/dashboard/stats", nil, nil); status != 200 {
		t.Fatalf("dashboard = %d", status)
	}
	if status := c.do("POST", "/api/v1/inventory/stock-in", map[string]interface{}{}, nil); status != 403 {
		t.Fatalf("stock-in without inventory:manage = %d", status)
	}
}
