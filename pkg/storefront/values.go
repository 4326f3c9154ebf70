package storefront

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	minRating = 1
	maxRating = 5
)

// ProductID identifies a catalog product.
type ProductID struct {
	value string
}

// CartItemID identifies a line in the server-side cart.
type CartItemID struct {
	value string
}

// Quantity is a strictly positive item count.
type Quantity int

// Rating is a review score in the 1..5 range.
type Rating int

// CouponCode is a trimmed, upper-cased coupon code.
type CouponCode struct {
	value string
}

// NewProductID validates and normalizes a product id.
func NewProductID(raw string) (ProductID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ProductID{}, fmt.Errorf("%w: empty value", ErrInvalidProductID)
	}
	return ProductID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ProductID) String() string {
	return id.value
}

// NewCartItemID validates and normalizes a cart item id.
func NewCartItemID(raw string) (CartItemID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CartItemID{}, fmt.Errorf("%w: empty value", ErrInvalidCartItemID)
	}
	return CartItemID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id CartItemID) String() string {
	return id.value
}

// NewQuantity ensures the quantity is at least one.
func NewQuantity(raw int) (Quantity, error) {
	if raw < 1 {
		return 0, fmt.Errorf("%w: must be at least 1", ErrInvalidQuantity)
	}
	return Quantity(raw), nil
}

// Int returns the raw count.
func (quantity Quantity) Int() int {
	return int(quantity)
}

// NewRating ensures a review score lies in 1..5.
func NewRating(raw int) (Rating, error) {
	if raw < minRating || raw > maxRating {
		return 0, fmt.Errorf("%w: must be between %d and %d", ErrInvalidRating, minRating, maxRating)
	}
	return Rating(raw), nil
}

// Int returns the raw score.
func (rating Rating) Int() int {
	return int(rating)
}

// NewEmail trims, lower-cases and syntax-checks an email address.
func NewEmail(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidEmail)
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return normalized, nil
}

// NewCouponCode trims and upper-cases a coupon code.
func NewCouponCode(raw string) (CouponCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return CouponCode{}, fmt.Errorf("%w: empty value", ErrInvalidCouponCode)
	}
	return CouponCode{value: normalized}, nil
}

// String returns the normalized code.
func (code CouponCode) String() string {
	return code.value
}

// NewIdentifier validates a generic path identifier (address, order, user ids).
func NewIdentifier(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidIdentifier)
	}
	return trimmed, nil
}

// SortKey selects the catalog ordering applied by the backend.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortDiscount  SortKey = "discount"
	SortNewest    SortKey = "newest"
)

// ParseSortKey accepts an empty string (backend default) or one of the known keys.
func ParseSortKey(raw string) (SortKey, error) {
	normalized := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case "", SortDefault, SortPriceAsc, SortPriceDesc, SortRating, SortDiscount, SortNewest:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, raw)
	}
}

// ProductParams filters and pages the catalog listing. Zero values are omitted from the query.
type ProductParams struct {
	Category string
	Search   string
	Sort     SortKey
	Page     int
	PerPage  int
}

// Validate rejects unknown sort keys and negative pagination.
func (params ProductParams) Validate() error {
	if _, err := ParseSortKey(string(params.Sort)); err != nil {
		return err
	}
	if params.Page < 0 || params.PerPage < 0 {
		return fmt.Errorf("%w: page and per_page must be non-negative", ErrInvalidPagination)
	}
	return nil
}

// OrderStatus is the fulfilment state the backend reports for an order.
type OrderStatus string

const (
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPacked         OrderStatus = "packed"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in fulfilment order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderConfirmed, OrderPacked, OrderOutForDelivery, OrderDelivered, OrderCancelled}
}

// ParseOrderStatus validates a status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range OrderStatuses() {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, raw)
}

// String returns the wire value.
func (status OrderStatus) String() string {
	return string(status)
}
