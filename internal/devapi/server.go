// Package devapi is an in-memory development backend that speaks the
// storefront REST contract. It exists to exercise the client locally and in
// tests; pricing, stock and coupon rules are deliberately simple.
package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contextKeyUserID = "user_id"
	contextKeyRole   = "role"
	shutdownTimeout  = 5 * time.Second
)

// ServerOption configures a Server instance.
type ServerOption func(*Server)

// WithClock overrides the time source used for timestamps and token expiry.
func WithClock(now func() time.Time) ServerOption {
	return func(server *Server) {
		if now != nil {
			server.now = now
		}
	}
}

// WithLogger wires a zap logger for request and error logging.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(server *Server) {
		if logger != nil {
			server.logger = logger
		}
	}
}

// Server holds the in-memory data and the request instrumentation.
type Server struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	data   *state
	tokens *tokenIssuer

	instrumentMu sync.Mutex
	requests     map[string]int
	hooks        map[string]func(context.Context)
}

// NewServer validates cfg and seeds a fresh data set.
func NewServer(cfg Config, options ...ServerOption) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	server := &Server{
		cfg:      cfg,
		logger:   zap.NewNop(),
		now:      time.Now,
		requests: map[string]int{},
		hooks:    map[string]func(context.Context){},
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	data, err := newState(cfg, server.now)
	if err != nil {
		return nil, err
	}
	server.data = data
	server.tokens = newTokenIssuer(cfg.SigningKey, cfg.TokenTTL, server.now)
	return server, nil
}

// Run boots the development backend and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	server, err := NewServer(cfg, WithLogger(logger))
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:    server.cfg.ListenAddr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devapi listening", zap.String("addr", server.cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// RequestCount reports how many requests reached the route, e.g. RequestCount("GET", "/api/cart").
func (server *Server) RequestCount(method string, route string) int {
	server.instrumentMu.Lock()
	defer server.instrumentMu.Unlock()
	return server.requests[routeKey(method, route)]
}

// SetHook installs fn to run before the handler of a route. A nil fn removes it.
func (server *Server) SetHook(method string, route string, fn func(context.Context)) {
	server.instrumentMu.Lock()
	defer server.instrumentMu.Unlock()
	if fn == nil {
		delete(server.hooks, routeKey(method, route))
		return
	}
	server.hooks[routeKey(method, route)] = fn
}

// IssueToken mints a token for an existing user.
func (server *Server) IssueToken(userID string) (string, error) {
	user, err := server.data.userByID(userID)
	if err != nil {
		return "", err
	}
	return server.tokens.issue(user.ID, string(user.Role))
}

func routeKey(method string, route string) string {
	return strings.ToUpper(method) + " " + route
}

func (server *Server) instrument(ctx *gin.Context) {
	route := ctx.FullPath()
	if route == "" {
		ctx.Next()
		return
	}
	key := routeKey(ctx.Request.Method, route)
	server.instrumentMu.Lock()
	server.requests[key]++
	hook := server.hooks[key]
	server.instrumentMu.Unlock()
	if hook != nil {
		hook(ctx.Request.Context())
	}
	ctx.Next()
}

// Router builds the gin engine serving every storefront endpoint.
func (server *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Origin", "Accept", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(server.instrument)

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/auth/login", server.handleLogin)
	api.POST("/auth/register", server.handleRegister)
	api.GET("/auth/me", server.requireAuth, server.handleMe)

	api.PUT("/users/profile", server.requireAuth, server.handleUpdateProfile)
	api.PUT("/users/change-password", server.requireAuth, server.handleChangePassword)

	api.GET("/addresses", server.requireAuth, server.handleListAddresses)
	api.POST("/addresses", server.requireAuth, server.handleAddAddress)
	api.DELETE("/addresses/:id", server.requireAuth, server.handleDeleteAddress)
	api.PUT("/addresses/:id/default", server.requireAuth, server.handleDefaultAddress)

	api.GET("/categories", server.handleCategories)

	api.GET("/products", server.handleListProducts)
	api.GET("/products/featured", server.handleFeatured)
	api.GET("/products/trending", server.handleTrending)
	api.GET("/products/:id", server.handleProduct)
	api.POST("/products/:id/reviews", server.requireAuth, server.handleAddReview)

	api.GET("/cart", server.requireAuth, server.handleCart)
	api.POST("/cart", server.requireAuth, server.handleAddToCart)
	api.DELETE("/cart/clear", server.requireAuth, server.handleClearCart)
	api.POST("/cart/sync", server.requireAuth, server.handleSyncCart)
	api.PUT("/cart/:id", server.requireAuth, server.handleUpdateCart)
	api.DELETE("/cart/:id", server.requireAuth, server.handleRemoveFromCart)

	api.GET("/wishlist", server.requireAuth, server.handleWishlist)
	api.POST("/wishlist/:id", server.requireAuth, server.handleToggleWishlist)

	api.POST("/coupons/apply", server.requireAuth, server.handleApplyCoupon)

	api.POST("/orders", server.requireAuth, server.handlePlaceOrder)
	api.GET("/orders", server.requireAuth, server.handleListOrders)
	api.GET("/orders/:id", server.requireAuth, server.handleOrder)

	admin := api.Group("/admin", server.requireAuth, server.requireAdmin)
	admin.GET("/stats", server.handleAdminStats)
	admin.GET("/users", server.handleAdminUsers)
	admin.GET("/products", server.handleAdminProducts)
	admin.POST("/products", server.handleAdminAddProduct)
	admin.PUT("/products/:id", server.handleAdminUpdateProduct)
	admin.DELETE("/products/:id", server.handleAdminDeleteProduct)
	admin.GET("/orders", server.handleAdminOrders)
	admin.PUT("/orders/:id/status", server.handleAdminOrderStatus)

	return router
}

func (server *Server) requireAuth(ctx *gin.Context) {
	raw := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer "))
	if raw == "" {
		respondError(ctx, &failure{status: http.StatusUnauthorized, message: "Missing token"})
		ctx.Abort()
		return
	}
	claims, err := server.tokens.parse(raw)
	if err != nil {
		message := "Invalid token"
		if errors.Is(err, errTokenExpired) {
			message = "Token expired"
		}
		respondError(ctx, &failure{status: http.StatusUnauthorized, message: message})
		ctx.Abort()
		return
	}
	ctx.Set(contextKeyUserID, claims.UserID)
	ctx.Set(contextKeyRole, claims.Role)
	ctx.Next()
}

func (server *Server) requireAdmin(ctx *gin.Context) {
	if ctx.GetString(contextKeyRole) != "admin" {
		respondError(ctx, &failure{status: http.StatusForbidden, message: "Forbidden"})
		ctx.Abort()
		return
	}
	ctx.Next()
}

const defaultSuccessMessage = "Success"

func respondOK(ctx *gin.Context, data any, message string) {
	body := gin.H{"success": true, "message": defaultIfEmpty(message, defaultSuccessMessage)}
	if data != nil {
		body["data"] = data
	}
	ctx.JSON(http.StatusOK, body)
}

func respondError(ctx *gin.Context, err error) {
	var rejection *failure
	if errors.As(err, &rejection) {
		ctx.JSON(rejection.status, gin.H{"success": false, "message": rejection.message})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}
