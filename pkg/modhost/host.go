package modhost

// Host is one host session: a registry with the dispatcher and controller
// that operate on it. The zero value is not usable; call New.
type Host struct {
	Registry   *Registry
	Dispatcher *Dispatcher
	Controller *Controller
}

// New creates a session whose controller loads modules from factories.
// The options apply to all three components.
func New(factories []Factory, opts ...Option) *Host {
	reg := NewRegistry(opts...)
	return &Host{
		Registry:   reg,
		Dispatcher: NewDispatcher(reg, opts...),
		Controller: NewController(reg, factories, opts...),
	}
}
