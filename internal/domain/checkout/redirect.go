package checkout

// RedirectIntent describes where control is being handed off. It exists only
// between "session created" and "navigation performed" and is never persisted.
type RedirectIntent struct {
	PaymentSessionID string
	RedirectURL      string
}
