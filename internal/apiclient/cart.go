package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
)

// CartAPI manages the server-side cart of the authenticated user.
type CartAPI struct {
	client *Client
}

type addCartRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type updateCartRequest struct {
	Qty int `json:"qty"`
}

type syncCartRequest struct {
	Items []storefront.CartLine `json:"items"`
}

// Get returns the authoritative cart snapshot.
func (api CartAPI) Get(ctx context.Context) (storefront.CartSnapshot, error) {
	snapshot := storefront.CartSnapshot{Items: []storefront.CartItem{}}
	_, err := api.client.do(ctx, call{
		operation: "cart.get",
		method:    http.MethodGet,
		path:      "/api/cart",
	}, &snapshot)
	return snapshot, err
}

func (api CartAPI) Add(ctx context.Context, productID storefront.ProductID, quantity storefront.Quantity) error {
	_, err := api.client.do(ctx, call{
		operation: "cart.add",
		method:    http.MethodPost,
		path:      "/api/cart",
		body:      addCartRequest{ProductID: productID.String(), Qty: quantity.Int()},
	}, nil)
	return err
}

func (api CartAPI) Update(ctx context.Context, itemID storefront.CartItemID, quantity storefront.Quantity) error {
	_, err := api.client.do(ctx, call{
		operation: "cart.update",
		method:    http.MethodPut,
		path:      "/api/cart/" + pathID(itemID.String()),
		body:      updateCartRequest{Qty: quantity.Int()},
	}, nil)
	return err
}

func (api CartAPI) Remove(ctx context.Context, itemID storefront.CartItemID) error {
	_, err := api.client.do(ctx, call{
		operation: "cart.remove",
		method:    http.MethodDelete,
		path:      "/api/cart/" + pathID(itemID.String()),
	}, nil)
	return err
}

func (api CartAPI) Clear(ctx context.Context) error {
	_, err := api.client.do(ctx, call{
		operation: "cart.clear",
		method:    http.MethodDelete,
		path:      "/api/cart/clear",
	}, nil)
	return err
}

// Sync merges product/quantity pairs into the server cart.
func (api CartAPI) Sync(ctx context.Context, lines []storefront.CartLine) error {
	if lines == nil {
		lines = []storefront.CartLine{}
	}
	_, err := api.client.do(ctx, call{
		operation: "cart.sync",
		method:    http.MethodPost,
		path:      "/api/cart/sync",
		body:      syncCartRequest{Items: lines},
	}, nil)
	return err
}

// WishlistAPI reads and toggles wishlisted products.
type WishlistAPI struct {
	client *Client
}

type wishlistToggleResponse struct {
	Wishlisted bool `json:"wishlisted"`
}

func (api WishlistAPI) Get(ctx context.Context) ([]storefront.WishlistItem, error) {
	items := []storefront.WishlistItem{}
	_, err := api.client.do(ctx, call{
		operation: "wishlist.get",
		method:    http.MethodGet,
		path:      "/api/wishlist",
	}, &items)
	return items, err
}

// Toggle adds or removes a product and reports whether it is now wishlisted.
func (api WishlistAPI) Toggle(ctx context.Context, productID storefront.ProductID) (bool, error) {
	var response wishlistToggleResponse
	_, err := api.client.do(ctx, call{
		operation: "wishlist.toggle",
		method:    http.MethodPost,
		path:      "/api/wishlist/" + pathID(productID.String()),
	}, &response)
	return response.Wishlisted, err
}

// CouponsAPI quotes coupon discounts.
type CouponsAPI struct {
	client *Client
}

type applyCouponRequest struct {
	Code     string      `json:"code"`
	Subtotal json.Number `json:"subtotal"`
}

// Apply asks the backend to price code against subtotal. The backend message is kept on the result.
func (api CouponsAPI) Apply(ctx context.Context, code storefront.CouponCode, subtotal decimal.Decimal) (storefront.CouponResult, error) {
	var result storefront.CouponResult
	response, err := api.client.do(ctx, call{
		operation: "coupons.apply",
		method:    http.MethodPost,
		path:      "/api/coupons/apply",
		body:      applyCouponRequest{Code: code.String(), Subtotal: json.Number(subtotal.String())},
	}, &result)
	if err != nil {
		return storefront.CouponResult{}, err
	}
	result.Message = response.Message
	return result, nil
}
