package registry

import "sync"

// Handle is the scoped reference returned by Open. Deferring
// Close guarantees the suite is completed however the enclosing
// function exits.
type Handle struct {
	reg  *Registry
	name string
	once sync.Once
	err  error
}

// Name returns the suite name the handle is bound to.
func (h *Handle) Name() string {
	return h.name
}

// Close completes the suite if it is still open. It is safe to
// call more than once and after an explicit Registry.Close.
func (h *Handle) Close() error {
	h.once.Do(func() {
		h.err = h.reg.Close(h.name)
	})
	return h.err
}
