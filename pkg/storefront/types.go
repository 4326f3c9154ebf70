package storefront

import "github.com/shopspring/decimal"

// Role distinguishes customers from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the account returned by the auth and admin endpoints.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"created_at"`
}

// IsAdmin reports whether the user may call admin endpoints.
func (user User) IsAdmin() bool {
	return user.Role == RoleAdmin
}

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileInput updates the caller's display details.
type ProfileInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	SortOrder int    `json:"sort_order"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Emoji       string          `json:"emoji"`
	Brand       string          `json:"brand"`
	Weight      string          `json:"weight"`
	Price       decimal.Decimal `json:"price"`
	MRP         decimal.Decimal `json:"mrp"`
	Discount    int             `json:"discount"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	ReviewCount int             `json:"review_count"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at"`
	Reviews     []Review        `json:"reviews,omitempty"`
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products []Product
	Total    int
	Page     int
	PerPage  int
}

// ProductInput is the admin create/update payload; nil fields are left to the backend.
type ProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Emoji       *string          `json:"emoji,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	Weight      *string          `json:"weight,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	MRP         *decimal.Decimal `json:"mrp,omitempty"`
	Discount    *int             `json:"discount,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type Review struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// CartItem is one line of the server-side cart.
type CartItem struct {
	ID        string          `json:"id"`
	Qty       int             `json:"qty"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Emoji     string          `json:"emoji"`
	Weight    string          `json:"weight"`
	Price     decimal.Decimal `json:"price"`
	MRP       decimal.Decimal `json:"mrp"`
	Discount  int             `json:"discount"`
	Stock     int             `json:"stock"`
	Brand     string          `json:"brand"`
	AddedAt   string          `json:"added_at"`
}

// CartSnapshot is the authoritative, server-computed cart. Clients never recompute it.
type CartSnapshot struct {
	Items           []CartItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	LoyaltyDiscount decimal.Decimal `json:"loyalty_discount"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
}

// CartLine is a product/quantity pair used to merge a guest cart after login.
type CartLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// WishlistItem is a wishlisted product as listed by the backend.
type WishlistItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Emoji       string          `json:"emoji"`
	Weight      string          `json:"weight"`
	Price       decimal.Decimal `json:"price"`
	MRP         decimal.Decimal `json:"mrp"`
	Discount    int             `json:"discount"`
	Brand       string          `json:"brand"`
	Rating      float64         `json:"rating"`
	ReviewCount int             `json:"review_count"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category_id"`
	AddedAt     string          `json:"added_at"`
}

type Address struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Label     string `json:"label"`
	Line1     string `json:"line1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	IsDefault int    `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// Default reports whether this is the user's default delivery address.
func (address Address) Default() bool {
	return address.IsDefault != 0
}

type AddressInput struct {
	Label   string `json:"label,omitempty"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Coupon struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	MinOrder  decimal.Decimal `json:"min_order"`
	MaxUses   int             `json:"max_uses"`
	UsedCount int             `json:"used_count"`
	ExpiresAt *string         `json:"expires_at"`
	IsActive  int             `json:"is_active"`
}

// CouponResult is the backend's quote for a coupon against a subtotal.
type CouponResult struct {
	Discount decimal.Decimal `json:"discount"`
	Coupon   Coupon          `json:"coupon"`
	Message  string          `json:"-"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Emoji     string          `json:"emoji"`
	Weight    string          `json:"weight"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	AddressLine   string          `json:"address_line"`
	City          string          `json:"city"`
	Pincode       string          `json:"pincode"`
	Phone         string          `json:"phone"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Status        OrderStatus     `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
	Items         []OrderItem     `json:"items"`
	UserName      string          `json:"user_name,omitempty"`
	UserEmail     string          `json:"user_email,omitempty"`
}

// DeliveryAddress is the address block of an order placement.
type DeliveryAddress struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

type OrderInput struct {
	Address       DeliveryAddress `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// TopProduct is a best-seller row on the admin dashboard.
type TopProduct struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Sold  int    `json:"sold"`
}

// StatusCount is an order count for one status.
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int         `json:"count"`
}

type AdminStats struct {
	Users          int             `json:"users"`
	Orders         int             `json:"orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	Products       int             `json:"products"`
	RecentOrders   []Order         `json:"recent_orders"`
	TopProducts    []TopProduct    `json:"top_products"`
	OrdersByStatus []StatusCount   `json:"orders_by_status"`
}
