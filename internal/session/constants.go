package session

const (
	operationLogin          = "login"
	operationRegister       = "register"
	operationRestore        = "restore_session"
	operationLogout         = "logout"
	operationFetchCart      = "cart.fetch"
	operationAddToCart      = "cart.add"
	operationUpdateCart     = "cart.update"
	operationRemoveFromCart = "cart.remove"
	operationClearCart      = "cart.clear"
	operationSyncCart       = "cart.sync"

	operationStatusOK        = "ok"
	operationStatusError     = "error"
	operationStatusRejected  = "rejected"
	operationStatusDiscarded = "discarded"
	operationStatusSkipped   = "skipped"

	// MessageLoginToAdd is returned when an anonymous session adds to the cart.
	MessageLoginToAdd = "Please login to add to cart"
	// MessageLoginToManage is returned when an anonymous session edits the cart.
	MessageLoginToManage = "Please login to manage your cart"

	cartFlightKeyFormat = "cart:%d"
)
