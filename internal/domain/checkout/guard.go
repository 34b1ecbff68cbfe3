package checkout

import (
	"errors"
	"sync"
)

var ErrGuardNotConfigured = errors.New("checkout: handoff guard has no interceptor")

// Interceptor is the navigation boundary the guard installs itself into while
// a payment handoff is in flight. Install returns the remover for the
// interception it set up.
type Interceptor interface {
	Install(reason string) (remove func(), err error)
}

// HandoffGuard blocks navigation out of the checkout for exactly the window
// between "payment session obtained" and "control left the process". It is a
// scoped resource: armed at most once at a time, released on every exit path.
type HandoffGuard struct {
	mu          sync.Mutex
	interceptor Interceptor
	remove      func()
}

func NewHandoffGuard(interceptor Interceptor) *HandoffGuard {
	return &HandoffGuard{interceptor: interceptor}
}

// Arm installs the interceptor. Arming an already-armed guard is a no-op so a
// retried handoff cannot stack interceptors.
func (g *HandoffGuard) Arm(reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.remove != nil {
		return nil
	}
	if g.interceptor == nil {
		return ErrGuardNotConfigured
	}
	remove, err := g.interceptor.Install(reason)
	if err != nil {
		return err
	}
	g.remove = remove
	return nil
}

// Disarm removes the interceptor. Idempotent: the remover runs exactly once
// no matter how many exit paths call Disarm.
func (g *HandoffGuard) Disarm() {
	g.mu.Lock()
	remove := g.remove
	g.remove = nil
	g.mu.Unlock()
	if remove != nil {
		remove()
	}
}

// Armed reports whether the interceptor is currently installed.
func (g *HandoffGuard) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remove != nil
}
