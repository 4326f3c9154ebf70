package devapi

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	couponPercent       = "percent"
	couponFlat          = "flat"
	defaultPage         = 1
	defaultPerPage      = 50
	featuredLimit       = 8
	featuredMinDiscount = 15
	trendingLimit       = 12
	reviewLimit         = 20
	recentOrdersLimit   = 5
	topProductsLimit    = 5
	paymentCOD          = "cod"
)

var (
	freeDeliveryThreshold = decimal.NewFromInt(299)
	deliveryFee           = decimal.NewFromInt(49)
	loyaltyRate           = decimal.NewFromFloat(0.05)
	hundred               = decimal.NewFromInt(100)
)

// failure is a business rejection rendered as {success:false, message}.
type failure struct {
	status  int
	message string
}

func (rejection *failure) Error() string {
	return rejection.message
}

func rejected(message string) *failure {
	return &failure{status: http.StatusBadRequest, message: message}
}

func notFound(message string) *failure {
	return &failure{status: http.StatusNotFound, message: message}
}

type userRecord struct {
	user         storefront.User
	passwordHash []byte
}

type cartRecord struct {
	id        string
	userID    string
	productID string
	qty       int
	addedAt   string
}

type wishlistRecord struct {
	id        string
	userID    string
	productID string
	addedAt   string
}

// state is the in-memory backing data of the development backend.
type state struct {
	mu  sync.Mutex
	now func() time.Time

	users      []*userRecord
	addresses  []*storefront.Address
	categories []storefront.Category
	products   []*storefront.Product
	reviews    []storefront.Review
	cart       []*cartRecord
	wishlist   []*wishlistRecord
	coupons    []*storefront.Coupon
	orders     []*storefront.Order
}

func newState(cfg Config, now func() time.Time) (*state, error) {
	data := &state{now: now, categories: seedCategories()}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	created := data.timestamp()
	data.users = append(data.users, &userRecord{
		user: storefront.User{
			ID:        adminUserID,
			Name:      "Admin",
			Email:     cfg.AdminEmail,
			Phone:     "9999999999",
			Role:      storefront.RoleAdmin,
			CreatedAt: created,
		},
		passwordHash: adminHash,
	})
	for _, seed := range seedProducts() {
		data.products = append(data.products, &storefront.Product{
			ID:          seed.id,
			Name:        seed.name,
			Description: seed.description,
			CategoryID:  seed.categoryID,
			Emoji:       seed.emoji,
			Brand:       seed.brand,
			Weight:      seed.weight,
			Price:       decimal.NewFromInt(seed.price),
			MRP:         decimal.NewFromInt(seed.mrp),
			Discount:    seed.discount,
			Stock:       seed.stock,
			Rating:      seed.rating,
			ReviewCount: seed.reviewCount,
			IsActive:    true,
			CreatedAt:   created,
		})
	}
	for _, coupon := range seedCoupons() {
		coupon := coupon
		data.coupons = append(data.coupons, &coupon)
	}
	return data, nil
}

func (data *state) timestamp() string {
	return data.now().UTC().Format(time.RFC3339Nano)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func (data *state) register(input storefront.RegisterInput) (storefront.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return storefront.User{}, rejected("Name, email and password are required")
	}
	if len(input.Password) < minPasswordLength {
		return storefront.User{}, rejected(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return storefront.User{}, err
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	if data.userByEmail(email) != nil {
		return storefront.User{}, rejected("Email already registered")
	}
	record := &userRecord{
		user: storefront.User{
			ID:        newID(),
			Name:      name,
			Email:     email,
			Phone:     strings.TrimSpace(input.Phone),
			Role:      storefront.RoleUser,
			CreatedAt: data.timestamp(),
		},
		passwordHash: hash,
	}
	data.users = append(data.users, record)
	return record.user, nil
}

func (data *state) authenticate(email string, password string) (storefront.User, error) {
	data.mu.Lock()
	record := data.userByEmail(strings.ToLower(strings.TrimSpace(email)))
	data.mu.Unlock()
	if record == nil || bcrypt.CompareHashAndPassword(record.passwordHash, []byte(password)) != nil {
		return storefront.User{}, &failure{status: http.StatusUnauthorized, message: "Invalid email or password"}
	}
	return record.user, nil
}

func (data *state) userByID(userID string) (storefront.User, error) {
	data.mu.Lock()
	defer data.mu.Unlock()
	record := data.userRecord(userID)
	if record == nil {
		return storefront.User{}, notFound("User not found")
	}
	return record.user, nil
}

func (data *state) updateProfile(userID string, input storefront.ProfileInput) (storefront.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return storefront.User{}, rejected("Name is required")
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	record := data.userRecord(userID)
	if record == nil {
		return storefront.User{}, notFound("User not found")
	}
	record.user.Name = name
	record.user.Phone = strings.TrimSpace(input.Phone)
	return record.user, nil
}

func (data *state) changePassword(userID string, oldPassword string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return rejected(fmt.Sprintf("New password must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	record := data.userRecord(userID)
	if record == nil || bcrypt.CompareHashAndPassword(record.passwordHash, []byte(oldPassword)) != nil {
		return &failure{status: http.StatusUnauthorized, message: "Old password is incorrect"}
	}
	record.passwordHash = hash
	return nil
}

func (data *state) userByEmail(email string) *userRecord {
	for _, record := range data.users {
		if record.user.Email == email {
			return record
		}
	}
	return nil
}

func (data *state) userRecord(userID string) *userRecord {
	for _, record := range data.users {
		if record.user.ID == userID {
			return record
		}
	}
	return nil
}

func (data *state) listAddresses(userID string) []storefront.Address {
	data.mu.Lock()
	defer data.mu.Unlock()
	addresses := []storefront.Address{}
	for _, address := range data.addresses {
		if address.UserID == userID {
			addresses = append(addresses, *address)
		}
	}
	sort.SliceStable(addresses, func(left, right int) bool {
		return addresses[left].IsDefault > addresses[right].IsDefault
	})
	return addresses
}

func (data *state) addAddress(userID string, input storefront.AddressInput) (storefront.Address, error) {
	required := []struct {
		field string
		value string
	}{
		{"line1", input.Line1},
		{"city", input.City},
		{"state", input.State},
		{"pincode", input.Pincode},
	}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			return storefront.Address{}, rejected(entry.field + " is required")
		}
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	isDefault := 1
	for _, address := range data.addresses {
		if address.UserID == userID {
			isDefault = 0
			break
		}
	}
	address := &storefront.Address{
		ID:        newID(),
		UserID:    userID,
		Label:     defaultIfEmpty(input.Label, "Home"),
		Line1:     input.Line1,
		City:      input.City,
		State:     input.State,
		Pincode:   input.Pincode,
		IsDefault: isDefault,
		CreatedAt: data.timestamp(),
	}
	data.addresses = append(data.addresses, address)
	return *address, nil
}

func (data *state) deleteAddress(userID string, addressID string) {
	data.mu.Lock()
	defer data.mu.Unlock()
	kept := data.addresses[:0]
	for _, address := range data.addresses {
		if address.ID == addressID && address.UserID == userID {
			continue
		}
		kept = append(kept, address)
	}
	data.addresses = kept
}

func (data *state) setDefaultAddress(userID string, addressID string) {
	data.mu.Lock()
	defer data.mu.Unlock()
	for _, address := range data.addresses {
		if address.UserID != userID {
			continue
		}
		address.IsDefault = 0
		if address.ID == addressID {
			address.IsDefault = 1
		}
	}
}

type productQuery struct {
	category string
	search   string
	sort     string
	page     int
	perPage  int
}

func (data *state) listCategories() []storefront.Category {
	data.mu.Lock()
	defer data.mu.Unlock()
	categories := append([]storefront.Category{}, data.categories...)
	sort.SliceStable(categories, func(left, right int) bool {
		return categories[left].SortOrder < categories[right].SortOrder
	})
	return categories
}

func (data *state) listProducts(query productQuery) ([]storefront.Product, int, int, int) {
	if query.page < 1 {
		query.page = defaultPage
	}
	if query.perPage < 1 {
		query.perPage = defaultPerPage
	}
	search := strings.ToLower(strings.TrimSpace(query.search))

	data.mu.Lock()
	matched := []storefront.Product{}
	for _, product := range data.products {
		if !product.IsActive {
			continue
		}
		if query.category != "" && product.CategoryID != query.category {
			continue
		}
		if search != "" && !containsAny(search, product.Name, product.Brand, product.Description) {
			continue
		}
		matched = append(matched, *product)
	}
	data.mu.Unlock()

	sortProducts(matched, query.sort)
	total := len(matched)
	start := (query.page - 1) * query.perPage
	if start > total {
		start = total
	}
	end := start + query.perPage
	if end > total {
		end = total
	}
	return matched[start:end], total, query.page, query.perPage
}

func containsAny(needle string, haystacks ...string) bool {
	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

func sortProducts(products []storefront.Product, key string) {
	var less func(left, right storefront.Product) bool
	switch storefront.SortKey(key) {
	case storefront.SortPriceAsc:
		less = func(left, right storefront.Product) bool { return left.Price.LessThan(right.Price) }
	case storefront.SortPriceDesc:
		less = func(left, right storefront.Product) bool { return left.Price.GreaterThan(right.Price) }
	case storefront.SortRating:
		less = func(left, right storefront.Product) bool { return left.Rating > right.Rating }
	case storefront.SortDiscount:
		less = func(left, right storefront.Product) bool { return left.Discount > right.Discount }
	case storefront.SortNewest:
		less = func(left, right storefront.Product) bool { return left.CreatedAt > right.CreatedAt }
	default:
		less = func(left, right storefront.Product) bool { return left.ReviewCount > right.ReviewCount }
	}
	sort.SliceStable(products, func(left, right int) bool {
		return less(products[left], products[right])
	})
}

func (data *state) productDetail(productID string) (storefront.Product, error) {
	data.mu.Lock()
	defer data.mu.Unlock()
	product := data.product(productID)
	if product == nil || !product.IsActive {
		return storefront.Product{}, notFound("Product not found")
	}
	detail := *product
	for _, category := range data.categories {
		if category.ID == product.CategoryID {
			category := category
			detail.Category = &category
		}
	}
	detail.Reviews = []storefront.Review{}
	for index := len(data.reviews) - 1; index >= 0 && len(detail.Reviews) < reviewLimit; index-- {
		if data.reviews[index].ProductID == productID {
			detail.Reviews = append(detail.Reviews, data.reviews[index])
		}
	}
	return detail, nil
}

func (data *state) featuredProducts() []storefront.Product {
	products, _, _, _ := data.listProducts(productQuery{sort: string(storefront.SortDiscount), perPage: math.MaxInt32})
	featured := []storefront.Product{}
	for _, product := range products {
		if product.Discount >= featuredMinDiscount && len(featured) < featuredLimit {
			featured = append(featured, product)
		}
	}
	return featured
}

func (data *state) trendingProducts() []storefront.Product {
	products, _, _, _ := data.listProducts(productQuery{perPage: trendingLimit})
	return products
}

func (data *state) addReview(userID string, productID string, rating int, comment string) (storefront.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return storefront.Review{}, rejected("Comment is required")
	}
	if _, err := storefront.NewRating(rating); err != nil {
		return storefront.Review{}, rejected("Rating must be 1-5")
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	product := data.product(productID)
	if product == nil {
		return storefront.Review{}, notFound("Product not found")
	}
	userName := ""
	if record := data.userRecord(userID); record != nil {
		userName = record.user.Name
	}
	review := storefront.Review{
		ID:        newID(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: data.timestamp(),
	}
	data.reviews = append(data.reviews, review)
	sum, count := 0, 0
	for _, existing := range data.reviews {
		if existing.ProductID == productID {
			sum += existing.Rating
			count++
		}
	}
	product.Rating = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count))).Round(1).InexactFloat64()
	product.ReviewCount = count
	return review, nil
}

func (data *state) product(productID string) *storefront.Product {
	for _, product := range data.products {
		if product.ID == productID {
			return product
		}
	}
	return nil
}

func (data *state) cartSnapshot(userID string) storefront.CartSnapshot {
	data.mu.Lock()
	defer data.mu.Unlock()
	snapshot := storefront.CartSnapshot{Items: []storefront.CartItem{}}
	subtotal := decimal.Zero
	for _, line := range data.cart {
		if line.userID != userID {
			continue
		}
		product := data.product(line.productID)
		if product == nil {
			continue
		}
		snapshot.Items = append(snapshot.Items, storefront.CartItem{
			ID:        line.id,
			Qty:       line.qty,
			ProductID: product.ID,
			Name:      product.Name,
			Emoji:     product.Emoji,
			Weight:    product.Weight,
			Price:     product.Price,
			MRP:       product.MRP,
			Discount:  product.Discount,
			Stock:     product.Stock,
			Brand:     product.Brand,
			AddedAt:   line.addedAt,
		})
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.qty))))
		snapshot.Count += line.qty
	}
	snapshot.Subtotal = subtotal
	snapshot.DeliveryFee = deliveryFor(subtotal)
	snapshot.LoyaltyDiscount = subtotal.Mul(loyaltyRate).Round(0)
	snapshot.Total = subtotal.Add(snapshot.DeliveryFee).Sub(snapshot.LoyaltyDiscount)
	return snapshot
}

func deliveryFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeDeliveryThreshold) {
		return decimal.Zero
	}
	return deliveryFee
}

func (data *state) addToCart(userID string, productID string, qty int) error {
	if strings.TrimSpace(productID) == "" {
		return rejected("product_id required")
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	product := data.product(productID)
	if product == nil || !product.IsActive {
		return notFound("Product not found")
	}
	if line := data.cartLine(userID, productID); line != nil {
		if line.qty+qty > product.Stock {
			return rejected(fmt.Sprintf("Only %d in stock", product.Stock))
		}
		line.qty += qty
		return nil
	}
	data.cart = append([]*cartRecord{{id: newID(), userID: userID, productID: productID, qty: qty, addedAt: data.timestamp()}}, data.cart...)
	return nil
}

func (data *state) updateCartItem(userID string, itemID string, qty int) error {
	if qty < 1 {
		return rejected("qty must be >= 1")
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	for _, line := range data.cart {
		if line.id == itemID && line.userID == userID {
			line.qty = qty
		}
	}
	return nil
}

func (data *state) removeCartItem(userID string, itemID string) {
	data.mu.Lock()
	defer data.mu.Unlock()
	data.removeCartWhere(func(line *cartRecord) bool {
		return line.id == itemID && line.userID == userID
	})
}

func (data *state) clearCart(userID string) {
	data.mu.Lock()
	defer data.mu.Unlock()
	data.removeCartWhere(func(line *cartRecord) bool {
		return line.userID == userID
	})
}

func (data *state) syncCart(userID string, lines []storefront.CartLine) {
	data.mu.Lock()
	defer data.mu.Unlock()
	for _, entry := range lines {
		if strings.TrimSpace(entry.ProductID) == "" || data.product(entry.ProductID) == nil {
			continue
		}
		qty := entry.Qty
		if qty <= 0 {
			qty = 1
		}
		if line := data.cartLine(userID, entry.ProductID); line != nil {
			line.qty += qty
			continue
		}
		data.cart = append([]*cartRecord{{id: newID(), userID: userID, productID: entry.ProductID, qty: qty, addedAt: data.timestamp()}}, data.cart...)
	}
}

func (data *state) cartLine(userID string, productID string) *cartRecord {
	for _, line := range data.cart {
		if line.userID == userID && line.productID == productID {
			return line
		}
	}
	return nil
}

func (data *state) removeCartWhere(match func(*cartRecord) bool) {
	kept := data.cart[:0]
	for _, line := range data.cart {
		if !match(line) {
			kept = append(kept, line)
		}
	}
	data.cart = kept
}

func (data *state) listWishlist(userID string) []storefront.WishlistItem {
	data.mu.Lock()
	defer data.mu.Unlock()
	items := []storefront.WishlistItem{}
	for _, entry := range data.wishlist {
		if entry.userID != userID {
			continue
		}
		product := data.product(entry.productID)
		if product == nil {
			continue
		}
		items = append(items, storefront.WishlistItem{
			ID:          product.ID,
			Name:        product.Name,
			Emoji:       product.Emoji,
			Weight:      product.Weight,
			Price:       product.Price,
			MRP:         product.MRP,
			Discount:    product.Discount,
			Brand:       product.Brand,
			Rating:      product.Rating,
			ReviewCount: product.ReviewCount,
			Stock:       product.Stock,
			CategoryID:  product.CategoryID,
			AddedAt:     entry.addedAt,
		})
	}
	return items
}

func (data *state) toggleWishlist(userID string, productID string) bool {
	data.mu.Lock()
	defer data.mu.Unlock()
	for index, entry := range data.wishlist {
		if entry.userID == userID && entry.productID == productID {
			data.wishlist = append(data.wishlist[:index], data.wishlist[index+1:]...)
			return false
		}
	}
	data.wishlist = append([]*wishlistRecord{{id: newID(), userID: userID, productID: productID, addedAt: data.timestamp()}}, data.wishlist...)
	return true
}

func (data *state) applyCoupon(rawCode string, subtotal decimal.Decimal) (storefront.CouponResult, error) {
	code, err := storefront.NewCouponCode(rawCode)
	if err != nil {
		return storefront.CouponResult{}, rejected("Coupon code required")
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	coupon := data.activeCoupon(code.String())
	if coupon == nil {
		return storefront.CouponResult{}, rejected("Invalid or expired coupon")
	}
	if subtotal.LessThan(coupon.MinOrder) {
		return storefront.CouponResult{}, rejected(fmt.Sprintf("Minimum order ₹%s required for this coupon", coupon.MinOrder.String()))
	}
	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return storefront.CouponResult{}, rejected("Coupon usage limit reached")
	}
	return storefront.CouponResult{
		Discount: couponDiscount(*coupon, subtotal),
		Coupon:   *coupon,
	}, nil
}

func couponDiscount(coupon storefront.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.Type {
	case couponPercent:
		return subtotal.Mul(coupon.Value).Div(hundred).Round(0)
	case couponFlat:
		return coupon.Value
	default:
		return decimal.Zero
	}
}

func (data *state) activeCoupon(code string) *storefront.Coupon {
	for _, coupon := range data.coupons {
		if coupon.Code == code && coupon.IsActive == 1 {
			return coupon
		}
	}
	return nil
}

func (data *state) placeOrder(userID string, input storefront.OrderInput) (storefront.Order, error) {
	required := []struct {
		field string
		value string
	}{
		{"line1", input.Address.Line1},
		{"city", input.Address.City},
		{"pincode", input.Address.Pincode},
		{"phone", input.Address.Phone},
	}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			return storefront.Order{}, rejected("Address " + entry.field + " is required")
		}
	}
	payment := defaultIfEmpty(input.PaymentMethod, paymentCOD)

	data.mu.Lock()
	defer data.mu.Unlock()
	orderID := "ORD" + strings.ToUpper(newID()[:8])
	items := []storefront.OrderItem{}
	subtotal := decimal.Zero
	for _, line := range data.cart {
		if line.userID != userID {
			continue
		}
		product := data.product(line.productID)
		if product == nil {
			continue
		}
		if line.qty > product.Stock {
			return storefront.Order{}, rejected(fmt.Sprintf("Only %d units of %s available", product.Stock, product.Name))
		}
		items = append(items, storefront.OrderItem{
			ID:        newID(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			Emoji:     product.Emoji,
			Weight:    product.Weight,
			Price:     product.Price,
			Qty:       line.qty,
		})
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.qty))))
	}
	if len(items) == 0 {
		return storefront.Order{}, rejected("Cart is empty")
	}

	discount := subtotal.Mul(loyaltyRate).Round(0)
	if input.CouponCode != "" {
		if coupon := data.activeCoupon(strings.ToUpper(strings.TrimSpace(input.CouponCode))); coupon != nil && subtotal.GreaterThanOrEqual(coupon.MinOrder) {
			discount = discount.Add(couponDiscount(*coupon, subtotal))
			coupon.UsedCount++
		}
	}
	fee := deliveryFor(subtotal)
	paymentStatus := "paid"
	if payment == paymentCOD {
		paymentStatus = "pending"
	}
	now := data.timestamp()
	order := &storefront.Order{
		ID:            orderID,
		UserID:        userID,
		AddressLine:   input.Address.Line1,
		City:          input.Address.City,
		Pincode:       input.Address.Pincode,
		Phone:         input.Address.Phone,
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Discount:      discount,
		Total:         subtotal.Add(fee).Sub(discount),
		PaymentMethod: payment,
		PaymentStatus: paymentStatus,
		Status:        storefront.OrderConfirmed,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         items,
	}
	for _, item := range items {
		if product := data.product(item.ProductID); product != nil {
			product.Stock -= item.Qty
		}
	}
	data.orders = append(data.orders, order)
	data.removeCartWhere(func(line *cartRecord) bool {
		return line.userID == userID
	})
	return *order, nil
}

func (data *state) listOrders(userID string) []storefront.Order {
	data.mu.Lock()
	defer data.mu.Unlock()
	orders := []storefront.Order{}
	for index := len(data.orders) - 1; index >= 0; index-- {
		if data.orders[index].UserID == userID {
			orders = append(orders, *data.orders[index])
		}
	}
	return orders
}

func (data *state) orderFor(orderID string, userID string, role string) (storefront.Order, error) {
	data.mu.Lock()
	defer data.mu.Unlock()
	for _, order := range data.orders {
		if order.ID != orderID {
			continue
		}
		if order.UserID != userID && role != string(storefront.RoleAdmin) {
			return storefront.Order{}, &failure{status: http.StatusForbidden, message: "Forbidden"}
		}
		return *order, nil
	}
	return storefront.Order{}, notFound("Order not found")
}

func (data *state) adminUsers() []storefront.User {
	data.mu.Lock()
	defer data.mu.Unlock()
	users := make([]storefront.User, 0, len(data.users))
	for index := len(data.users) - 1; index >= 0; index-- {
		users = append(users, data.users[index].user)
	}
	return users
}

func (data *state) adminProducts() []storefront.Product {
	data.mu.Lock()
	defer data.mu.Unlock()
	products := make([]storefront.Product, 0, len(data.products))
	for index := len(data.products) - 1; index >= 0; index-- {
		products = append(products, *data.products[index])
	}
	return products
}

func (data *state) addProduct(input storefront.ProductInput) (storefront.Product, error) {
	switch {
	case input.Name == nil || strings.TrimSpace(*input.Name) == "":
		return storefront.Product{}, rejected("name is required")
	case input.CategoryID == nil || strings.TrimSpace(*input.CategoryID) == "":
		return storefront.Product{}, rejected("category_id is required")
	case input.Price == nil || input.Price.IsZero():
		return storefront.Product{}, rejected("price is required")
	case input.MRP == nil || input.MRP.IsZero():
		return storefront.Product{}, rejected("mrp is required")
	case input.Emoji == nil || strings.TrimSpace(*input.Emoji) == "":
		return storefront.Product{}, rejected("emoji is required")
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	product := &storefront.Product{
		ID:        newID(),
		Stock:     100,
		Rating:    4.0,
		IsActive:  true,
		CreatedAt: data.timestamp(),
	}
	applyProductInput(product, input)
	product.IsActive = true
	data.products = append(data.products, product)
	return *product, nil
}

func (data *state) updateProduct(productID string, input storefront.ProductInput) (storefront.Product, error) {
	data.mu.Lock()
	defer data.mu.Unlock()
	product := data.product(productID)
	if product == nil {
		return storefront.Product{}, notFound("Not found")
	}
	applyProductInput(product, input)
	return *product, nil
}

func applyProductInput(product *storefront.Product, input storefront.ProductInput) {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.Emoji != nil {
		product.Emoji = *input.Emoji
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Weight != nil {
		product.Weight = *input.Weight
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.MRP != nil {
		product.MRP = *input.MRP
	}
	if input.Discount != nil {
		product.Discount = *input.Discount
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}

func (data *state) deactivateProduct(productID string) {
	data.mu.Lock()
	defer data.mu.Unlock()
	if product := data.product(productID); product != nil {
		product.IsActive = false
	}
}

func (data *state) adminOrders(status string) []storefront.Order {
	data.mu.Lock()
	defer data.mu.Unlock()
	orders := []storefront.Order{}
	for index := len(data.orders) - 1; index >= 0; index-- {
		order := *data.orders[index]
		if status != "" && string(order.Status) != status {
			continue
		}
		if record := data.userRecord(order.UserID); record != nil {
			order.UserName = record.user.Name
			order.UserEmail = record.user.Email
		}
		orders = append(orders, order)
	}
	return orders
}

func (data *state) updateOrderStatus(orderID string, rawStatus string) (storefront.OrderStatus, error) {
	status, err := storefront.ParseOrderStatus(rawStatus)
	if err != nil {
		return "", rejected(fmt.Sprintf("Status must be one of: %v", storefront.OrderStatuses()))
	}
	data.mu.Lock()
	defer data.mu.Unlock()
	for _, order := range data.orders {
		if order.ID == orderID {
			order.Status = status
			order.UpdatedAt = data.timestamp()
		}
	}
	return status, nil
}

func (data *state) adminStats() storefront.AdminStats {
	data.mu.Lock()
	defer data.mu.Unlock()
	stats := storefront.AdminStats{
		Revenue:        decimal.Zero,
		RecentOrders:   []storefront.Order{},
		TopProducts:    []storefront.TopProduct{},
		OrdersByStatus: []storefront.StatusCount{},
	}
	for _, record := range data.users {
		if record.user.Role == storefront.RoleUser {
			stats.Users++
		}
	}
	for _, product := range data.products {
		if product.IsActive {
			stats.Products++
		}
	}
	stats.Orders = len(data.orders)
	sold := map[string]int{}
	byStatus := map[storefront.OrderStatus]int{}
	for _, order := range data.orders {
		if order.Status != storefront.OrderCancelled {
			stats.Revenue = stats.Revenue.Add(order.Total)
		}
		byStatus[order.Status]++
		for _, item := range order.Items {
			sold[item.ProductID] += item.Qty
		}
	}
	for index := len(data.orders) - 1; index >= 0 && len(stats.RecentOrders) < recentOrdersLimit; index-- {
		order := *data.orders[index]
		if record := data.userRecord(order.UserID); record != nil {
			order.UserName = record.user.Name
		}
		stats.RecentOrders = append(stats.RecentOrders, order)
	}
	for productID, count := range sold {
		if product := data.product(productID); product != nil {
			stats.TopProducts = append(stats.TopProducts, storefront.TopProduct{Name: product.Name, Emoji: product.Emoji, Sold: count})
		}
	}
	sort.SliceStable(stats.TopProducts, func(left, right int) bool {
		if stats.TopProducts[left].Sold == stats.TopProducts[right].Sold {
			return stats.TopProducts[left].Name < stats.TopProducts[right].Name
		}
		return stats.TopProducts[left].Sold > stats.TopProducts[right].Sold
	})
	if len(stats.TopProducts) > topProductsLimit {
		stats.TopProducts = stats.TopProducts[:topProductsLimit]
	}
	for _, status := range storefront.OrderStatuses() {
		if count := byStatus[status]; count > 0 {
			stats.OrdersByStatus = append(stats.OrdersByStatus, storefront.StatusCount{Status: status, Count: count})
		}
	}
	return stats
}
