package session

import (
	"context"

	"github.com/MarkoPoloResearchLab/storefront/internal/apiclient"
	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
)

// clientAPI exposes the endpoint groups of an apiclient.Client as an API.
type clientAPI struct {
	client *apiclient.Client
}

// NewClientStore builds a Store over client and makes the store the client's
// token source, so every request carries the current session token.
func NewClientStore(client *apiclient.Client, tokens tokenstore.Store, options ...StoreOption) (*Store, error) {
	if client == nil {
		return nil, ErrInvalidStoreConfig
	}
	store, err := NewStore(clientAPI{client: client}, tokens, options...)
	if err != nil {
		return nil, err
	}
	client.SetTokenSource(store)
	return store, nil
}

func (api clientAPI) Login(ctx context.Context, email string, password string) (storefront.AuthResult, error) {
	return api.client.Auth.Login(ctx, email, password)
}

func (api clientAPI) Register(ctx context.Context, input storefront.RegisterInput) (storefront.AuthResult, error) {
	return api.client.Auth.Register(ctx, input)
}

func (api clientAPI) Me(ctx context.Context) (storefront.User, error) {
	return api.client.Auth.Me(ctx)
}

func (api clientAPI) GetCart(ctx context.Context) (storefront.CartSnapshot, error) {
	return api.client.Cart.Get(ctx)
}

func (api clientAPI) AddToCart(ctx context.Context, productID storefront.ProductID, quantity storefront.Quantity) error {
	return api.client.Cart.Add(ctx, productID, quantity)
}

func (api clientAPI) UpdateCartItem(ctx context.Context, itemID storefront.CartItemID, quantity storefront.Quantity) error {
	return api.client.Cart.Update(ctx, itemID, quantity)
}

func (api clientAPI) RemoveCartItem(ctx context.Context, itemID storefront.CartItemID) error {
	return api.client.Cart.Remove(ctx, itemID)
}

func (api clientAPI) ClearCart(ctx context.Context) error {
	return api.client.Cart.Clear(ctx)
}

func (api clientAPI) SyncCart(ctx context.Context, lines []storefront.CartLine) error {
	return api.client.Cart.Sync(ctx, lines)
}
