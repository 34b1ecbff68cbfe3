package checkout

import (
	"context"
	"time"

	domaincheckout "drively/internal/domain/checkout"
)

// Clock lets tests pin time; nil means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// loadOwnedSession fetches a session and enforces that the caller owns it.
func loadOwnedSession(ctx context.Context, repo domaincheckout.Repository, id domaincheckout.SessionID, guestID string) (*domaincheckout.Session, error) {
	sess, err := repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.GuestID != guestID {
		return nil, domaincheckout.ErrNotSessionOwner
	}
	return sess, nil
}
