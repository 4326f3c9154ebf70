// Package apiclient is a typed wrapper over the storefront REST backend.
//
// Every call issues exactly one HTTP request, attaches the bearer token when
// one is available and normalizes the {success, message, data} envelope into
// a *storefront.Error. There are no retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is used when Config.BaseURL is empty.
	DefaultBaseURL = "http://localhost:5000"

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
	bearerPrefix        = "Bearer "
	maxResponseBytes    = 8 << 20
)

var (
	errBaseURLScheme = errors.New("base url must use http or https")
	errBaseURLHost   = errors.New("base url must include a host")
)

// TokenSource supplies the bearer token for outgoing requests. An empty token
// means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the wrapped value.
func (token StaticToken) Token() string {
	return string(token)
}

// Config aggregates transport settings for the client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds each request when positive. Zero leaves cancellation to ctx.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Validate applies defaults and checks the base URL.
func (cfg *Config) Validate() error {
	cfg.BaseURL = strings.TrimRight(defaultIfEmpty(cfg.BaseURL, DefaultBaseURL), "/")
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: %q", errBaseURLScheme, cfg.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: %q", errBaseURLHost, cfg.BaseURL)
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// Option configures optional client collaborators.
type Option func(*Client)

// WithMetrics records request counts and latencies.
func WithMetrics(metrics *Metrics) Option {
	return func(client *Client) {
		client.metrics = metrics
	}
}

// WithRateLimiter makes every request wait for a limiter token first.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(client *Client) {
		client.limiter = limiter
	}
}

// WithTokenSource sets the initial token source.
func WithTokenSource(source TokenSource) Option {
	return func(client *Client) {
		client.tokens = source
	}
}

// Client talks to the storefront backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *Metrics
	limiter    *rate.Limiter

	tokenMu sync.RWMutex
	tokens  TokenSource

	Auth       AuthAPI
	Users      UsersAPI
	Addresses  AddressesAPI
	Categories CategoriesAPI
	Products   ProductsAPI
	Cart       CartAPI
	Wishlist   WishlistAPI
	Coupons    CouponsAPI
	Orders     OrdersAPI
	Admin      AdminAPI
}

// New constructs a Client from cfg.
func New(cfg Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
	}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	client.Auth = AuthAPI{client: client}
	client.Users = UsersAPI{client: client}
	client.Addresses = AddressesAPI{client: client}
	client.Categories = CategoriesAPI{client: client}
	client.Products = ProductsAPI{client: client}
	client.Cart = CartAPI{client: client}
	client.Wishlist = WishlistAPI{client: client}
	client.Coupons = CouponsAPI{client: client}
	client.Orders = OrdersAPI{client: client}
	client.Admin = AdminAPI{client: client, Products: AdminProductsAPI{client: client}, Orders: AdminOrdersAPI{client: client}}
	return client, nil
}

// BaseURL returns the normalized backend address.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// SetTokenSource swaps the bearer token provider.
func (client *Client) SetTokenSource(source TokenSource) {
	client.tokenMu.Lock()
	defer client.tokenMu.Unlock()
	client.tokens = source
}

func (client *Client) token() string {
	client.tokenMu.RLock()
	source := client.tokens
	client.tokenMu.RUnlock()
	if source == nil {
		return ""
	}
	return strings.TrimSpace(source.Token())
}

// envelope is the response wrapper every backend endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

type call struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any
}

// do performs one request and decodes the envelope data into out when out is non-nil.
func (client *Client) do(ctx context.Context, request call, out any) (envelope, error) {
	started := time.Now()
	result, status, err := client.roundTrip(ctx, request, out)
	client.observe(request, status, started, err)
	return result, err
}

func (client *Client) roundTrip(ctx context.Context, request call, out any) (envelope, int, error) {
	if client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.timeout)
		defer cancel()
	}
	if client.limiter != nil {
		if err := client.limiter.Wait(ctx); err != nil {
			return envelope{}, 0, storefront.NewError(storefront.KindNetwork, request.operation, 0, "", err)
		}
	}

	httpRequest, err := client.newRequest(ctx, request)
	if err != nil {
		return envelope{}, 0, storefront.NewError(storefront.KindNetwork, request.operation, 0, "", err)
	}
	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return envelope{}, 0, storefront.NewError(storefront.KindNetwork, request.operation, 0, "", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, response.StatusCode, storefront.NewError(storefront.KindNetwork, request.operation, response.StatusCode, "", err)
	}
	var decoded envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return envelope{}, response.StatusCode, storefront.NewError(storefront.KindNetwork, request.operation, response.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	if !decoded.Success {
		return decoded, response.StatusCode, storefront.NewError(failureKind(response.StatusCode), request.operation, response.StatusCode, decoded.Message, nil)
	}
	if out != nil && len(decoded.Data) > 0 && string(decoded.Data) != "null" {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return decoded, response.StatusCode, storefront.NewError(storefront.KindNetwork, request.operation, response.StatusCode, "", fmt.Errorf("decode data: %w", err))
		}
	}
	return decoded, response.StatusCode, nil
}

func (client *Client) newRequest(ctx context.Context, request call) (*http.Request, error) {
	target := client.baseURL + request.path
	if len(request.query) > 0 {
		target += "?" + request.query.Encode()
	}
	var body io.Reader
	if request.body != nil {
		payload, err := json.Marshal(request.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, request.method, target, body)
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set(headerContentType, contentTypeJSON)
	httpRequest.Header.Set(headerAccept, contentTypeJSON)
	httpRequest.Header.Set(headerRequestID, uuid.NewString())
	if token := client.token(); token != "" {
		httpRequest.Header.Set(headerAuthorization, bearerPrefix+token)
	}
	return httpRequest, nil
}

func (client *Client) observe(request call, status int, started time.Time, err error) {
	elapsed := time.Since(started)
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFor(err)
	}
	if client.metrics != nil {
		client.metrics.observe(request.operation, outcome, elapsed)
	}
	fields := []zap.Field{
		zap.String("operation", request.operation),
		zap.String("method", request.method),
		zap.String("path", request.path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		client.logger.Debug("api request failed", append(fields, zap.String("outcome", outcome), zap.Error(err))...)
		return
	}
	client.logger.Debug("api request", fields...)
}

// failureKind maps an unsuccessful envelope to an error kind by HTTP status.
func failureKind(status int) storefront.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return storefront.KindAuth
	case status >= http.StatusInternalServerError:
		return storefront.KindServer
	default:
		return storefront.KindValidation
	}
}

func pathID(raw string) string {
	return url.PathEscape(raw)
}

func validationFailure(operation string, err error) error {
	return storefront.ValidationError(operation, err)
}
