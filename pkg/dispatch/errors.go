package dispatch

// ErrNoCapacity is returned when a provider refuses to dispatch a
// transaction because too many are already running.
type ErrNoCapacity struct{}

func (e ErrNoCapacity) Error() string {
	return "insufficient capacity"
}

// ErrUnknownProvider is returned when a provider factory is requested
// that has not been registered.
type ErrUnknownProvider struct {
	attempted string
}

// NewErrUnknownProvider returns a new error specialized to the
// attempted provider.
func NewErrUnknownProvider(s string) ErrUnknownProvider {
	return ErrUnknownProvider{s}
}

func (e ErrUnknownProvider) Error() string {
	return "no factory with name " + e.attempted + " exists"
}

// ErrAlreadyDispatched is returned when a handoff with the same
// identity has already been handed to the provider.
type ErrAlreadyDispatched struct {
	id string
}

// NewErrAlreadyDispatched returns a new error for the given handoff
// id.
func NewErrAlreadyDispatched(id string) ErrAlreadyDispatched {
	return ErrAlreadyDispatched{id}
}

func (e ErrAlreadyDispatched) Error() string {
	return "transaction " + e.id + " was already dispatched"
}
