package devapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	testSigningKey    = "test-signing-key"
	testAdminEmail    = "admin@urmart.com"
	testAdminPassword = "admin123"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(duration time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(duration)
}

func newTestServer(test *testing.T, options ...ServerOption) (*Server, *httptest.Server) {
	test.Helper()
	gin.SetMode(gin.TestMode)
	server, err := NewServer(Config{SigningKey: testSigningKey, TokenTTL: time.Hour}, options...)
	if err != nil {
		test.Fatalf("new server: %v", err)
	}
	httpServer := httptest.NewServer(server.Router())
	test.Cleanup(httpServer.Close)
	return server, httpServer
}

func send(test *testing.T, baseURL string, method string, path string, token string, body any) (int, testEnvelope) {
	test.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			test.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	request, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		test.Fatalf("request: %v", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := http.DefaultClient.Do(request)
	if err != nil {
		test.Fatalf("do: %v", err)
	}
	defer response.Body.Close()
	var decoded testEnvelope
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		test.Fatalf("decode: %v", err)
	}
	return response.StatusCode, decoded
}

func login(test *testing.T, baseURL string, email string, password string) string {
	test.Helper()
	status, envelope := send(test, baseURL, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK || !envelope.Success {
		test.Fatalf("login failed: %d %s", status, envelope.Message)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		test.Fatalf("decode auth: %v", err)
	}
	return result.Token
}

func TestConfigValidateRequiresSigningKey(test *testing.T) {
	test.Parallel()
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		test.Fatalf("expected missing signing key error")
	}
	cfg.SigningKey = testSigningKey
	if err := cfg.Validate(); err != nil {
		test.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr || cfg.TokenTTL != defaultTokenTTL || len(cfg.AllowedOrigins) != 1 {
		test.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestParseAllowedOrigins(test *testing.T) {
	test.Parallel()
	origins := ParseAllowedOrigins(" http://a.test , ,http://b.test")
	if len(origins) != 2 || origins[0] != "http://a.test" || origins[1] != "http://b.test" {
		test.Fatalf("unexpected origins %v", origins)
	}
}

func TestLoginRejectsBadCredentials(test *testing.T) {
	_, httpServer := newTestServer(test)
	status, envelope := send(test, httpServer.URL, http.MethodPost, "/api/auth/login", "", map[string]string{"email": testAdminEmail, "password": "wrong"})
	if status != http.StatusUnauthorized || envelope.Success {
		test.Fatalf("expected 401 failure, got %d %+v", status, envelope)
	}
	if envelope.Message != "Invalid email or password" {
		test.Fatalf("unexpected message %q", envelope.Message)
	}
}

func TestMeRejectsExpiredToken(test *testing.T) {
	clock := &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	_, httpServer := newTestServer(test, WithClock(clock.Now))
	token := login(test, httpServer.URL, testAdminEmail, testAdminPassword)

	status, envelope := send(test, httpServer.URL, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK || !envelope.Success {
		test.Fatalf("expected fresh token to be accepted, got %d %s", status, envelope.Message)
	}

	clock.Advance(2 * time.Hour)
	status, envelope = send(test, httpServer.URL, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusUnauthorized || envelope.Message != "Token expired" {
		test.Fatalf("expected Token expired, got %d %q", status, envelope.Message)
	}

	status, envelope = send(test, httpServer.URL, http.MethodGet, "/api/auth/me", "garbage", nil)
	if status != http.StatusUnauthorized || envelope.Message != "Invalid token" {
		test.Fatalf("expected Invalid token, got %d %q", status, envelope.Message)
	}
}

func TestCartTotalsFollowServerRules(test *testing.T) {
	_, httpServer := newTestServer(test)
	token := login(test, httpServer.URL, testAdminEmail, testAdminPassword)

	status, envelope := send(test, httpServer.URL, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p2", "qty": 2})
	if status != http.StatusOK || !envelope.Success {
		test.Fatalf("add failed: %d %s", status, envelope.Message)
	}
	_, envelope = send(test, httpServer.URL, http.MethodGet, "/api/cart", token, nil)
	var snapshot struct {
		Count       int    `json:"count"`
		Subtotal    string `json:"subtotal"`
		DeliveryFee string `json:"delivery_fee"`
		Total       string `json:"total"`
	}
	if err := json.Unmarshal(envelope.Data, &snapshot); err != nil {
		test.Fatalf("decode cart: %v", err)
	}
	// 2 x 89 = 178, below the free delivery threshold; 5% loyalty rounds to 9.
	if snapshot.Count != 2 || snapshot.Subtotal != "178" || snapshot.DeliveryFee != "49" || snapshot.Total != "218" {
		test.Fatalf("unexpected snapshot %+v", snapshot)
	}

	status, envelope = send(test, httpServer.URL, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p2", "qty": 100})
	if status != http.StatusBadRequest || envelope.Message != "Only 30 in stock" {
		test.Fatalf("expected stock rejection, got %d %q", status, envelope.Message)
	}
}

func TestProductsListPaginates(test *testing.T) {
	_, httpServer := newTestServer(test)
	status, envelope := send(test, httpServer.URL, http.MethodGet, "/api/products?category=fruits&sort=price_asc&page=1&per_page=2", "", nil)
	if status != http.StatusOK {
		test.Fatalf("unexpected status %d", status)
	}
	var products []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(envelope.Data, &products); err != nil {
		test.Fatalf("decode: %v", err)
	}
	if envelope.Total != 4 || envelope.Page != 1 || envelope.PerPage != 2 || len(products) != 2 {
		test.Fatalf("unexpected page %+v (%d products)", envelope, len(products))
	}
	if products[0].ID != "p2" {
		test.Fatalf("expected cheapest fruit first, got %s", products[0].ID)
	}
}

func TestAdminRoutesRequireAdminRole(test *testing.T) {
	_, httpServer := newTestServer(test)
	status, envelope := send(test, httpServer.URL, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Shopper", "email": "shopper@example.com", "password": "secret1"})
	if status != http.StatusOK || !envelope.Success {
		test.Fatalf("register failed: %d %s", status, envelope.Message)
	}
	token := login(test, httpServer.URL, "shopper@example.com", "secret1")
	status, envelope = send(test, httpServer.URL, http.MethodGet, "/api/admin/stats", token, nil)
	if status != http.StatusForbidden || envelope.Message != "Forbidden" {
		test.Fatalf("expected 403 Forbidden, got %d %q", status, envelope.Message)
	}
}

func TestRequestCountAndHook(test *testing.T) {
	server, httpServer := newTestServer(test)
	token := login(test, httpServer.URL, testAdminEmail, testAdminPassword)

	var hookCalls atomic.Int32
	server.SetHook(http.MethodGet, "/api/cart", func(ctx context.Context) {
		hookCalls.Add(1)
	})
	send(test, httpServer.URL, http.MethodGet, "/api/cart", token, nil)
	send(test, httpServer.URL, http.MethodGet, "/api/cart", "", nil)
	if count := server.RequestCount(http.MethodGet, "/api/cart"); count != 2 {
		test.Fatalf("expected 2 cart requests, got %d", count)
	}
	if hookCalls.Load() != 2 {
		test.Fatalf("expected hook to run twice, got %d", hookCalls.Load())
	}
	server.SetHook(http.MethodGet, "/api/cart", nil)
	send(test, httpServer.URL, http.MethodGet, "/api/cart", token, nil)
	if hookCalls.Load() != 2 {
		test.Fatalf("expected hook removal")
	}
}

func TestPlaceOrderEmptiesCart(test *testing.T) {
	server, httpServer := newTestServer(test)
	token := login(test, httpServer.URL, testAdminEmail, testAdminPassword)
	send(test, httpServer.URL, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p1", "qty": 1})

	status, envelope := send(test, httpServer.URL, http.MethodPost, "/api/orders", token, map[string]any{
		"address":        map[string]string{"line1": "1 Main St", "city": "Pune", "pincode": "411001", "phone": "9000000000"},
		"payment_method": "cod",
		"coupon_code":    "save50",
	})
	if status != http.StatusOK || !envelope.Success {
		test.Fatalf("place order failed: %d %s", status, envelope.Message)
	}
	var order struct {
		ID       string `json:"id"`
		Discount string `json:"discount"`
		Total    string `json:"total"`
	}
	if err := json.Unmarshal(envelope.Data, &order); err != nil {
		test.Fatalf("decode order: %v", err)
	}
	// 349 subtotal, free delivery, 17 loyalty + 50 coupon.
	if order.Discount != "67" || order.Total != "282" {
		test.Fatalf("unexpected order totals %+v", order)
	}
	snapshot := server.data.cartSnapshot(adminUserID)
	if len(snapshot.Items) != 0 {
		test.Fatalf("expected cart to be emptied")
	}
}

func TestCouponRules(test *testing.T) {
	_, httpServer := newTestServer(test)
	token := login(test, httpServer.URL, testAdminEmail, testAdminPassword)

	testCases := []struct {
		name             string
		code             string
		subtotal         string
		expectedStatus   int
		expectedMessage  string
		expectedDiscount string
	}{
		{name: "percent coupon rounds", code: "welcome10", subtotal: "178", expectedStatus: http.StatusOK, expectedDiscount: "18"},
		{name: "flat coupon", code: "SAVE50", subtotal: "349", expectedStatus: http.StatusOK, expectedDiscount: "50"},
		{name: "below minimum order", code: "SAVE50", subtotal: "178", expectedStatus: http.StatusBadRequest, expectedMessage: "Minimum order ₹299 required for this coupon"},
		{name: "unknown code", code: "NOPE", subtotal: "500", expectedStatus: http.StatusBadRequest, expectedMessage: "Invalid or expired coupon"},
		{name: "blank code", code: "  ", subtotal: "500", expectedStatus: http.StatusBadRequest, expectedMessage: "Coupon code required"},
	}

	for _, testCase := range testCases {
		test.Run(testCase.name, func(test *testing.T) {
			status, envelope := send(test, httpServer.URL, http.MethodPost, "/api/coupons/apply", token, map[string]string{"code": testCase.code, "subtotal": testCase.subtotal})
			if status != testCase.expectedStatus {
				test.Fatalf("expected status %d, got %d (%s)", testCase.expectedStatus, status, envelope.Message)
			}
			if testCase.expectedMessage != "" {
				if envelope.Message != testCase.expectedMessage {
					test.Fatalf("expected message %q, got %q", testCase.expectedMessage, envelope.Message)
				}
				return
			}
			var result struct {
				Discount string `json:"discount"`
			}
			if err := json.Unmarshal(envelope.Data, &result); err != nil {
				test.Fatalf("decode coupon: %v", err)
			}
			if result.Discount != testCase.expectedDiscount {
				test.Fatalf("expected discount %s, got %s", testCase.expectedDiscount, result.Discount)
			}
		})
	}
}

func TestAdminStatsCountOrders(test *testing.T) {
	_, httpServer := newTestServer(test)
	token := login(test, httpServer.URL, testAdminEmail, testAdminPassword)
	send(test, httpServer.URL, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p1", "qty": 1})
	status, envelope := send(test, httpServer.URL, http.MethodPost, "/api/orders", token, map[string]any{
		"address":        map[string]string{"line1": "1 Main St", "city": "Pune", "pincode": "411001", "phone": "9000000000"},
		"payment_method": "cod",
	})
	if status != http.StatusOK || !envelope.Success {
		test.Fatalf("place order failed: %d %s", status, envelope.Message)
	}

	status, envelope = send(test, httpServer.URL, http.MethodGet, "/api/admin/stats", token, nil)
	if status != http.StatusOK {
		test.Fatalf("unexpected status %d", status)
	}
	var stats struct {
		Orders      int    `json:"orders"`
		Revenue     string `json:"revenue"`
		TopProducts []struct {
			Name string `json:"name"`
			Sold int    `json:"sold"`
		} `json:"top_products"`
		OrdersByStatus []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"orders_by_status"`
	}
	if err := json.Unmarshal(envelope.Data, &stats); err != nil {
		test.Fatalf("decode stats: %v", err)
	}
	// 349 less 17 loyalty, delivery free.
	if stats.Orders != 1 || stats.Revenue != "332" {
		test.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.TopProducts) != 1 || stats.TopProducts[0].Name != "Organic Avocados" || stats.TopProducts[0].Sold != 1 {
		test.Fatalf("unexpected top products %+v", stats.TopProducts)
	}
	if len(stats.OrdersByStatus) != 1 || stats.OrdersByStatus[0].Status != "confirmed" || stats.OrdersByStatus[0].Count != 1 {
		test.Fatalf("unexpected status breakdown %+v", stats.OrdersByStatus)
	}
}
