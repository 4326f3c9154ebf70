package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
)

// OrdersAPI places and reads the caller's orders.
type OrdersAPI struct {
	client *Client
}

// Place checks out the current server cart. The backend empties the cart on success.
func (api OrdersAPI) Place(ctx context.Context, input storefront.OrderInput) (storefront.Order, error) {
	var order storefront.Order
	_, err := api.client.do(ctx, call{
		operation: "orders.place",
		method:    http.MethodPost,
		path:      "/api/orders",
		body:      input,
	}, &order)
	return order, err
}

func (api OrdersAPI) List(ctx context.Context) ([]storefront.Order, error) {
	orders := []storefront.Order{}
	_, err := api.client.do(ctx, call{
		operation: "orders.list",
		method:    http.MethodGet,
		path:      "/api/orders",
	}, &orders)
	return orders, err
}

func (api OrdersAPI) Get(ctx context.Context, orderID string) (storefront.Order, error) {
	const operation = "orders.get"
	id, err := storefront.NewIdentifier(orderID)
	if err != nil {
		return storefront.Order{}, validationFailure(operation, err)
	}
	var order storefront.Order
	_, err = api.client.do(ctx, call{
		operation: operation,
		method:    http.MethodGet,
		path:      "/api/orders/" + pathID(id),
	}, &order)
	return order, err
}

// AdminAPI groups the admin-only endpoints.
type AdminAPI struct {
	client *Client

	Products AdminProductsAPI
	Orders   AdminOrdersAPI
}

func (api AdminAPI) Stats(ctx context.Context) (storefront.AdminStats, error) {
	var stats storefront.AdminStats
	_, err := api.client.do(ctx, call{
		operation: "admin.stats",
		method:    http.MethodGet,
		path:      "/api/admin/stats",
	}, &stats)
	return stats, err
}

func (api AdminAPI) Users(ctx context.Context) ([]storefront.User, error) {
	users := []storefront.User{}
	_, err := api.client.do(ctx, call{
		operation: "admin.users",
		method:    http.MethodGet,
		path:      "/api/admin/users",
	}, &users)
	return users, err
}

// AdminProductsAPI manages the full catalog including inactive products.
type AdminProductsAPI struct {
	client *Client
}

func (api AdminProductsAPI) List(ctx context.Context) ([]storefront.Product, error) {
	products := []storefront.Product{}
	_, err := api.client.do(ctx, call{
		operation: "admin.products.list",
		method:    http.MethodGet,
		path:      "/api/admin/products",
	}, &products)
	return products, err
}

func (api AdminProductsAPI) Add(ctx context.Context, input storefront.ProductInput) (storefront.Product, error) {
	var product storefront.Product
	_, err := api.client.do(ctx, call{
		operation: "admin.products.add",
		method:    http.MethodPost,
		path:      "/api/admin/products",
		body:      input,
	}, &product)
	return product, err
}

func (api AdminProductsAPI) Update(ctx context.Context, productID storefront.ProductID, input storefront.ProductInput) (storefront.Product, error) {
	var product storefront.Product
	_, err := api.client.do(ctx, call{
		operation: "admin.products.update",
		method:    http.MethodPut,
		path:      "/api/admin/products/" + pathID(productID.String()),
		body:      input,
	}, &product)
	return product, err
}

// Delete deactivates a product. The backend keeps the row.
func (api AdminProductsAPI) Delete(ctx context.Context, productID storefront.ProductID) error {
	_, err := api.client.do(ctx, call{
		operation: "admin.products.delete",
		method:    http.MethodDelete,
		path:      "/api/admin/products/" + pathID(productID.String()),
	}, nil)
	return err
}

// AdminOrdersAPI lists every order and moves them through fulfilment.
type AdminOrdersAPI struct {
	client *Client
}

type orderStatusRequest struct {
	Status storefront.OrderStatus `json:"status"`
}

// List returns all orders, filtered by status when one is given.
func (api AdminOrdersAPI) List(ctx context.Context, status storefront.OrderStatus) ([]storefront.Order, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{status.String()}}
	}
	orders := []storefront.Order{}
	_, err := api.client.do(ctx, call{
		operation: "admin.orders.list",
		method:    http.MethodGet,
		path:      "/api/admin/orders",
		query:     query,
	}, &orders)
	return orders, err
}

func (api AdminOrdersAPI) UpdateStatus(ctx context.Context, orderID string, status storefront.OrderStatus) error {
	const operation = "admin.orders.update_status"
	id, err := storefront.NewIdentifier(orderID)
	if err != nil {
		return validationFailure(operation, err)
	}
	if _, err := storefront.ParseOrderStatus(status.String()); err != nil {
		return validationFailure(operation, err)
	}
	_, err = api.client.do(ctx, call{
		operation: operation,
		method:    http.MethodPut,
		path:      "/api/admin/orders/" + pathID(id) + "/status",
		body:      orderStatusRequest{Status: status},
	}, nil)
	return err
}
