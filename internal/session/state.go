package session

import "github.com/MarkoPoloResearchLab/storefront/pkg/storefront"

// Phase is the authentication state of a session.
type Phase string

const (
	PhaseAnonymous      Phase = "anonymous"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
)

// State is an immutable view of the session. Values handed out by the Store
// are copies; mutating them has no effect on the Store.
type State struct {
	Phase    Phase
	User     *storefront.User
	Token    string
	Cart     *storefront.CartSnapshot
	CartOpen bool
	Loading  bool
	// Version increases with every change. Observers may receive
	// notifications concurrently and can drop ones older than the last seen.
	Version uint64
}

// CartCount is the item count of the current cart, zero when none is loaded.
func (state State) CartCount() int {
	if state.Cart == nil {
		return 0
	}
	return state.Cart.Count
}

// Authenticated reports whether a user is signed in.
func (state State) Authenticated() bool {
	return state.Phase == PhaseAuthenticated && state.User != nil
}

// UserID returns the signed-in user's id or an empty string.
func (state State) UserID() string {
	if state.User == nil {
		return ""
	}
	return state.User.ID
}

func (state State) clone() State {
	copied := state
	if state.User != nil {
		user := *state.User
		copied.User = &user
	}
	if state.Cart != nil {
		cart := *state.Cart
		cart.Items = append([]storefront.CartItem(nil), state.Cart.Items...)
		copied.Cart = &cart
	}
	return copied
}
