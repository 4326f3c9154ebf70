package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
)

// FetchCart loads the server cart. Anonymous sessions return an empty
// snapshot without a request. Concurrent callers share one request and
// receive the same snapshot; a failed fetch leaves the current cart in place.
func (store *Store) FetchCart(ctx context.Context) (storefront.CartSnapshot, error) {
	generation, userID, authenticated := store.authenticatedGeneration()
	if !authenticated {
		store.logOperation(ctx, OperationLog{Operation: operationFetchCart, Status: operationStatusSkipped})
		return storefront.CartSnapshot{}, nil
	}
	snapshot, err := store.fetchShared(ctx, generation)
	store.logOperation(ctx, OperationLog{Operation: operationFetchCart, UserID: userID, Error: err, Status: statusFor(err)})
	return snapshot, err
}

// AddToCart adds quantity of productID, refreshes the cart and opens the drawer.
// A non-positive quantity adds one.
func (store *Store) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	entry := OperationLog{Operation: operationAddToCart, ProductID: productID, Quantity: quantity}
	generation, userID, authenticated := store.authenticatedGeneration()
	if !authenticated {
		return store.reject(ctx, entry, MessageLoginToAdd)
	}
	entry.UserID = userID
	id, err := storefront.NewProductID(productID)
	if err != nil {
		return store.invalid(ctx, entry, err)
	}
	count, err := storefront.NewQuantity(quantity)
	if err != nil {
		return store.invalid(ctx, entry, err)
	}

	err = store.api.AddToCart(ctx, id, count)
	store.refreshAfter(ctx, operationAddToCart, generation)
	if err == nil {
		store.update(func(state *State) bool {
			if store.generation != generation || state.CartOpen {
				return false
			}
			state.CartOpen = true
			return true
		})
	}
	entry.Error = err
	store.logOperation(ctx, entry)
	return err
}

// UpdateCartItem sets the quantity of a cart line and refreshes the cart.
func (store *Store) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	entry := OperationLog{Operation: operationUpdateCart, ItemID: itemID, Quantity: quantity}
	generation, userID, authenticated := store.authenticatedGeneration()
	if !authenticated {
		return store.reject(ctx, entry, MessageLoginToManage)
	}
	entry.UserID = userID
	id, err := storefront.NewCartItemID(itemID)
	if err != nil {
		return store.invalid(ctx, entry, err)
	}
	count, err := storefront.NewQuantity(quantity)
	if err != nil {
		return store.invalid(ctx, entry, err)
	}
	return store.mutate(ctx, entry, generation, func() error {
		return store.api.UpdateCartItem(ctx, id, count)
	})
}

// RemoveFromCart deletes a cart line and refreshes the cart.
func (store *Store) RemoveFromCart(ctx context.Context, itemID string) error {
	entry := OperationLog{Operation: operationRemoveFromCart, ItemID: itemID}
	generation, userID, authenticated := store.authenticatedGeneration()
	if !authenticated {
		return store.reject(ctx, entry, MessageLoginToManage)
	}
	entry.UserID = userID
	id, err := storefront.NewCartItemID(itemID)
	if err != nil {
		return store.invalid(ctx, entry, err)
	}
	return store.mutate(ctx, entry, generation, func() error {
		return store.api.RemoveCartItem(ctx, id)
	})
}

// ClearCart empties the server cart and refreshes.
func (store *Store) ClearCart(ctx context.Context) error {
	entry := OperationLog{Operation: operationClearCart}
	generation, userID, authenticated := store.authenticatedGeneration()
	if !authenticated {
		return store.reject(ctx, entry, MessageLoginToManage)
	}
	entry.UserID = userID
	return store.mutate(ctx, entry, generation, func() error {
		return store.api.ClearCart(ctx)
	})
}

// SyncCart merges lines into the server cart, for example a cart built before login.
func (store *Store) SyncCart(ctx context.Context, lines []storefront.CartLine) error {
	entry := OperationLog{Operation: operationSyncCart, Quantity: len(lines)}
	generation, userID, authenticated := store.authenticatedGeneration()
	if !authenticated {
		return store.reject(ctx, entry, MessageLoginToManage)
	}
	entry.UserID = userID
	for _, line := range lines {
		if _, err := storefront.NewProductID(line.ProductID); err != nil {
			return store.invalid(ctx, entry, err)
		}
		if _, err := storefront.NewQuantity(line.Qty); err != nil {
			return store.invalid(ctx, entry, err)
		}
	}
	return store.mutate(ctx, entry, generation, func() error {
		return store.api.SyncCart(ctx, lines)
	})
}

// OpenCart shows the cart drawer.
func (store *Store) OpenCart() {
	store.setCartOpen(true)
}

// CloseCart hides the cart drawer.
func (store *Store) CloseCart() {
	store.setCartOpen(false)
}

// ToggleCart flips the cart drawer.
func (store *Store) ToggleCart() {
	store.update(func(state *State) bool {
		state.CartOpen = !state.CartOpen
		return true
	})
}

func (store *Store) setCartOpen(open bool) {
	store.update(func(state *State) bool {
		if state.CartOpen == open {
			return false
		}
		state.CartOpen = open
		return true
	})
}

// mutate runs call and then refreshes the cart whatever the outcome.
func (store *Store) mutate(ctx context.Context, entry OperationLog, generation uint64, call func() error) error {
	err := call()
	store.refreshAfter(ctx, entry.Operation, generation)
	entry.Error = err
	store.logOperation(ctx, entry)
	return err
}

func (store *Store) reject(ctx context.Context, entry OperationLog, message string) error {
	failure := storefront.NewError(storefront.KindAuth, entry.Operation, 0, message, ErrAnonymous)
	entry.Status = operationStatusRejected
	entry.Error = failure
	store.logOperation(ctx, entry)
	return failure
}

func (store *Store) invalid(ctx context.Context, entry OperationLog, cause error) error {
	failure := storefront.ValidationError(entry.Operation, cause)
	entry.Status = operationStatusRejected
	entry.Error = failure
	store.logOperation(ctx, entry)
	return failure
}

// refreshAfter starts a fetch that cannot join one issued before the caller's
// change. Failures are logged; the previous cart stays in place.
func (store *Store) refreshAfter(ctx context.Context, operation string, generation uint64) {
	store.flight.Forget(flightKey(generation))
	if _, err := store.fetchShared(ctx, generation); err != nil {
		store.logOperation(ctx, OperationLog{Operation: operationFetchCart, Status: statusFor(err), Error: fmt.Errorf("refresh after %s: %w", operation, err)})
	}
}

// fetchShared joins or starts the cart request for generation. The shared
// request outlives a caller whose context ends first.
func (store *Store) fetchShared(ctx context.Context, generation uint64) (storefront.CartSnapshot, error) {
	results := store.flight.DoChan(flightKey(generation), func() (any, error) {
		return store.fetch(context.WithoutCancel(ctx), generation)
	})
	select {
	case <-ctx.Done():
		return storefront.CartSnapshot{}, storefront.NewError(storefront.KindNetwork, operationFetchCart, 0, "", ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return storefront.CartSnapshot{}, result.Err
		}
		return result.Val.(storefront.CartSnapshot), nil
	}
}

// fetch issues one GET and applies it when it is the newest response of the
// current generation. An older response yields the cart already applied.
func (store *Store) fetch(ctx context.Context, generation uint64) (storefront.CartSnapshot, error) {
	store.mu.Lock()
	store.issuedSeq++
	sequence := store.issuedSeq
	store.mu.Unlock()

	snapshot, err := store.api.GetCart(ctx)
	if err != nil {
		return storefront.CartSnapshot{}, err
	}

	var (
		result     = snapshot
		superseded bool
	)
	store.update(func(state *State) bool {
		if store.generation != generation || !state.Authenticated() {
			superseded = true
			return false
		}
		if sequence <= store.appliedSeq {
			if state.Cart != nil {
				result = *state.clone().Cart
			}
			return false
		}
		store.appliedSeq = sequence
		applied := snapshot
		applied.Items = append([]storefront.CartItem(nil), snapshot.Items...)
		state.Cart = &applied
		return true
	})
	if superseded {
		return storefront.CartSnapshot{}, ErrSuperseded
	}
	return result, nil
}

func flightKey(generation uint64) string {
	return fmt.Sprintf(cartFlightKeyFormat, generation)
}

func statusFor(err error) string {
	switch {
	case err == nil:
		return operationStatusOK
	case errors.Is(err, ErrSuperseded):
		return operationStatusDiscarded
	default:
		return operationStatusError
	}
}
