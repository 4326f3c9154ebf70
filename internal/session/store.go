// Package session holds the client-side session and cart state: who is
// signed in and what the server-side cart currently contains.
//
// The Store is an explicit container; create one per client and pass it to
// the views that need it. Every cart change is a backend mutation followed by
// a fresh fetch, so the cart snapshot is always a server response.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidStoreConfig indicates a missing dependency.
	ErrInvalidStoreConfig = errors.New("invalid session store configuration")
	// ErrAnonymous is the cause attached to rejections of anonymous cart actions.
	ErrAnonymous = errors.New("no authenticated session")
	// ErrSuperseded reports a response that arrived after the session changed.
	ErrSuperseded = errors.New("session changed while the request was in flight")
	// ErrMissingToken reports an auth response without a token.
	ErrMissingToken = errors.New("auth response did not include a token")
)

const (
	errorOperationSession = "session"
	errorSubjectToken     = "token"
	errorCodePersist      = "persist"
	errorCodeLoad         = "load"
)

// API is the subset of the backend the Store depends on.
type API interface {
	Login(ctx context.Context, email string, password string) (storefront.AuthResult, error)
	Register(ctx context.Context, input storefront.RegisterInput) (storefront.AuthResult, error)
	Me(ctx context.Context) (storefront.User, error)
	GetCart(ctx context.Context) (storefront.CartSnapshot, error)
	AddToCart(ctx context.Context, productID storefront.ProductID, quantity storefront.Quantity) error
	UpdateCartItem(ctx context.Context, itemID storefront.CartItemID, quantity storefront.Quantity) error
	RemoveCartItem(ctx context.Context, itemID storefront.CartItemID) error
	ClearCart(ctx context.Context) error
	SyncCart(ctx context.Context, lines []storefront.CartLine) error
}

// Store is the session and cart state container. It is safe for concurrent use.
type Store struct {
	api    API
	tokens tokenstore.Store
	logger OperationLogger

	mu         sync.Mutex
	state      State
	generation uint64
	issuedSeq  uint64
	appliedSeq uint64

	subscribers    map[uint64]func(State)
	nextSubscriber uint64

	// persistMu orders token persistence against logout and failed restores.
	persistMu sync.Mutex
	flight    singleflight.Group
}

// NewStore wires a Store over api and the token persistence.
func NewStore(api API, tokens tokenstore.Store, options ...StoreOption) (*Store, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: api dependency is nil", ErrInvalidStoreConfig)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: token store dependency is nil", ErrInvalidStoreConfig)
	}
	store := &Store{
		api:         api,
		tokens:      tokens,
		state:       State{Phase: PhaseAnonymous, Loading: true},
		subscribers: map[uint64]func(State){},
	}
	for _, option := range options {
		if option != nil {
			option(store)
		}
	}
	return store, nil
}

// Snapshot returns a copy of the current state.
func (store *Store) Snapshot() State {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.clone()
}

// Token returns the bearer token of the current session, if any.
func (store *Store) Token() string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.Token
}

// Subscribe registers observer for every state change and returns a function that removes it.
// A nil observer is ignored.
func (store *Store) Subscribe(observer func(State)) func() {
	if observer == nil {
		return func() {}
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	identifier := store.nextSubscriber
	store.nextSubscriber++
	store.subscribers[identifier] = observer
	return func() {
		store.mu.Lock()
		defer store.mu.Unlock()
		delete(store.subscribers, identifier)
	}
}

// update applies mutate under the lock and notifies observers outside it.
// mutate returns false to signal that nothing changed.
func (store *Store) update(mutate func(state *State) bool) bool {
	store.mu.Lock()
	if !mutate(&store.state) {
		store.mu.Unlock()
		return false
	}
	store.state.Version++
	snapshot := store.state.clone()
	observers := make([]func(State), 0, len(store.subscribers))
	for _, observer := range store.subscribers {
		observers = append(observers, observer)
	}
	store.mu.Unlock()
	for _, observer := range observers {
		observer(snapshot)
	}
	return true
}

// Login authenticates with email and password, persists the token and loads the cart.
func (store *Store) Login(ctx context.Context, email string, password string) error {
	generation := store.beginAuthentication("")
	result, err := store.api.Login(ctx, email, password)
	if err != nil {
		store.failAuthentication(generation)
		store.logOperation(ctx, OperationLog{Operation: operationLogin, Error: err})
		return err
	}
	return store.establish(ctx, operationLogin, generation, result)
}

// Register creates an account and signs it in.
func (store *Store) Register(ctx context.Context, input storefront.RegisterInput) error {
	generation := store.beginAuthentication("")
	result, err := store.api.Register(ctx, input)
	if err != nil {
		store.failAuthentication(generation)
		store.logOperation(ctx, OperationLog{Operation: operationRegister, Error: err})
		return err
	}
	return store.establish(ctx, operationRegister, generation, result)
}

// RestoreSession validates a persisted token. A rejected token is removed and
// the session stays anonymous; that failure is logged, not returned.
func (store *Store) RestoreSession(ctx context.Context) error {
	token, err := store.tokens.Load(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		store.finishLoading()
		store.logOperation(ctx, OperationLog{Operation: operationRestore, Status: operationStatusSkipped})
		return nil
	}
	if err != nil {
		store.finishLoading()
		wrapped := storefront.WrapError(errorOperationSession, errorSubjectToken, errorCodeLoad, err)
		store.logOperation(ctx, OperationLog{Operation: operationRestore, Error: wrapped})
		return wrapped
	}

	generation := store.beginAuthentication(token)
	user, err := store.api.Me(ctx)
	if err != nil {
		store.discardCredential(ctx, generation)
		store.logOperation(ctx, OperationLog{Operation: operationRestore, Status: operationStatusRejected, Error: err})
		return nil
	}
	if !store.applyAuthentication(generation, user, token) {
		store.logOperation(ctx, OperationLog{Operation: operationRestore, UserID: user.ID, Status: operationStatusDiscarded, Error: ErrSuperseded})
		return nil
	}
	store.logOperation(ctx, OperationLog{Operation: operationRestore, UserID: user.ID})
	store.refreshAfter(ctx, operationRestore, generation)
	return nil
}

// Logout clears the session and cart without a network call. A failure to
// delete the persisted token is logged.
func (store *Store) Logout(ctx context.Context) {
	var userID string
	store.update(func(state *State) bool {
		store.generation++
		userID = state.UserID()
		state.Phase = PhaseAnonymous
		state.User = nil
		state.Token = ""
		state.Cart = nil
		state.Loading = false
		return true
	})
	store.persistMu.Lock()
	err := store.tokens.Delete(ctx)
	store.persistMu.Unlock()
	if err != nil {
		err = storefront.WrapError(errorOperationSession, errorSubjectToken, "delete", err)
	}
	store.logOperation(ctx, OperationLog{Operation: operationLogout, UserID: userID, Error: err})
}

// beginAuthentication starts a new session generation. Responses tagged with
// an older generation are discarded from here on.
func (store *Store) beginAuthentication(token string) uint64 {
	var generation uint64
	store.update(func(state *State) bool {
		store.generation++
		generation = store.generation
		state.Phase = PhaseAuthenticating
		if token != "" {
			state.Token = token
			state.Loading = true
		}
		return true
	})
	return generation
}

func (store *Store) failAuthentication(generation uint64) {
	store.update(func(state *State) bool {
		if store.generation != generation {
			return false
		}
		state.Loading = false
		if state.User != nil {
			state.Phase = PhaseAuthenticated
			return true
		}
		state.Phase = PhaseAnonymous
		state.Token = ""
		return true
	})
}

func (store *Store) finishLoading() {
	store.update(func(state *State) bool {
		if !state.Loading && state.Phase != PhaseAuthenticating {
			return false
		}
		state.Loading = false
		if state.User == nil {
			state.Phase = PhaseAnonymous
		}
		return true
	})
}

// establish persists the token of a successful login and applies the session.
func (store *Store) establish(ctx context.Context, operation string, generation uint64, result storefront.AuthResult) error {
	token := strings.TrimSpace(result.Token)
	if token == "" {
		store.failAuthentication(generation)
		failure := storefront.NewError(storefront.KindServer, operation, 0, "", ErrMissingToken)
		store.logOperation(ctx, OperationLog{Operation: operation, UserID: result.User.ID, Error: failure})
		return failure
	}

	store.persistMu.Lock()
	if !store.isCurrent(generation) {
		store.persistMu.Unlock()
		store.logOperation(ctx, OperationLog{Operation: operation, UserID: result.User.ID, Status: operationStatusDiscarded, Error: ErrSuperseded})
		return ErrSuperseded
	}
	if err := store.tokens.Save(ctx, token); err != nil {
		store.persistMu.Unlock()
		store.failAuthentication(generation)
		wrapped := storefront.WrapError(errorOperationSession, errorSubjectToken, errorCodePersist, err)
		store.logOperation(ctx, OperationLog{Operation: operation, UserID: result.User.ID, Error: wrapped})
		return wrapped
	}
	applied := store.applyAuthentication(generation, result.User, token)
	store.persistMu.Unlock()
	if !applied {
		store.logOperation(ctx, OperationLog{Operation: operation, UserID: result.User.ID, Status: operationStatusDiscarded, Error: ErrSuperseded})
		return ErrSuperseded
	}

	store.logOperation(ctx, OperationLog{Operation: operation, UserID: result.User.ID})
	store.refreshAfter(ctx, operation, generation)
	return nil
}

// applyAuthentication installs user and token when generation is still current.
// A different user than before drops the previous cart.
func (store *Store) applyAuthentication(generation uint64, user storefront.User, token string) bool {
	return store.update(func(state *State) bool {
		if store.generation != generation {
			return false
		}
		if state.User == nil || state.User.ID != user.ID {
			state.Cart = nil
		}
		signedIn := user
		state.User = &signedIn
		state.Token = token
		state.Phase = PhaseAuthenticated
		state.Loading = false
		return true
	})
}

// discardCredential forgets a rejected persisted token unless the session moved on.
func (store *Store) discardCredential(ctx context.Context, generation uint64) {
	store.persistMu.Lock()
	defer store.persistMu.Unlock()
	current := store.update(func(state *State) bool {
		if store.generation != generation {
			return false
		}
		state.Phase = PhaseAnonymous
		state.User = nil
		state.Token = ""
		state.Cart = nil
		state.Loading = false
		return true
	})
	if !current {
		return
	}
	if err := store.tokens.Delete(ctx); err != nil {
		store.logOperation(ctx, OperationLog{
			Operation: operationRestore,
			Error:     storefront.WrapError(errorOperationSession, errorSubjectToken, "delete", err),
		})
	}
}

func (store *Store) isCurrent(generation uint64) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.generation == generation
}

// authenticatedGeneration returns the current generation when a user is signed in.
func (store *Store) authenticatedGeneration() (uint64, string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.state.Authenticated() {
		return 0, "", false
	}
	return store.generation, store.state.User.ID, true
}

func (store *Store) logOperation(ctx context.Context, entry OperationLog) {
	if store.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	store.logger.LogOperation(ctx, entry)
}
