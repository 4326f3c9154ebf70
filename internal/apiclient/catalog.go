package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
)

// CategoriesAPI lists catalog categories.
type CategoriesAPI struct {
	client *Client
}

func (api CategoriesAPI) List(ctx context.Context) ([]storefront.Category, error) {
	categories := []storefront.Category{}
	_, err := api.client.do(ctx, call{
		operation: "categories.list",
		method:    http.MethodGet,
		path:      "/api/categories",
	}, &categories)
	return categories, err
}

// ProductsAPI reads the public catalog and posts reviews.
type ProductsAPI struct {
	client *Client
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// List returns one page of the catalog. Only non-zero params are sent.
func (api ProductsAPI) List(ctx context.Context, params storefront.ProductParams) (storefront.ProductPage, error) {
	const operation = "products.list"
	if err := params.Validate(); err != nil {
		return storefront.ProductPage{}, validationFailure(operation, err)
	}
	products := []storefront.Product{}
	result, err := api.client.do(ctx, call{
		operation: operation,
		method:    http.MethodGet,
		path:      "/api/products",
		query:     productQuery(params),
	}, &products)
	if err != nil {
		return storefront.ProductPage{}, err
	}
	return storefront.ProductPage{
		Products: products,
		Total:    result.Total,
		Page:     result.Page,
		PerPage:  result.PerPage,
	}, nil
}

func productQuery(params storefront.ProductParams) url.Values {
	query := url.Values{}
	if params.Category != "" {
		query.Set("category", params.Category)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Sort != "" {
		query.Set("sort", string(params.Sort))
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}
	return query
}

// Get returns a product with its category and latest reviews.
func (api ProductsAPI) Get(ctx context.Context, productID storefront.ProductID) (storefront.Product, error) {
	var product storefront.Product
	_, err := api.client.do(ctx, call{
		operation: "products.get",
		method:    http.MethodGet,
		path:      "/api/products/" + pathID(productID.String()),
	}, &product)
	return product, err
}

func (api ProductsAPI) Featured(ctx context.Context) ([]storefront.Product, error) {
	products := []storefront.Product{}
	_, err := api.client.do(ctx, call{
		operation: "products.featured",
		method:    http.MethodGet,
		path:      "/api/products/featured",
	}, &products)
	return products, err
}

func (api ProductsAPI) Trending(ctx context.Context) ([]storefront.Product, error) {
	products := []storefront.Product{}
	_, err := api.client.do(ctx, call{
		operation: "products.trending",
		method:    http.MethodGet,
		path:      "/api/products/trending",
	}, &products)
	return products, err
}

func (api ProductsAPI) AddReview(ctx context.Context, productID storefront.ProductID, rating storefront.Rating, comment string) (storefront.Review, error) {
	var review storefront.Review
	_, err := api.client.do(ctx, call{
		operation: "products.add_review",
		method:    http.MethodPost,
		path:      "/api/products/" + pathID(productID.String()) + "/reviews",
		body:      reviewRequest{Rating: rating.Int(), Comment: comment},
	}, &review)
	return review, err
}
