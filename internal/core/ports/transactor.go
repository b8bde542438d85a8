package ports

import "context"

// Transactor runs fn atomically while holding a mutual-exclusion lock scoped
// to one clinic. Repositories called with the ctx passed to fn take part in
// the same transaction.
type Transactor interface {
	WithinClinicLock(ctx context.Context, clinicID int64, fn func(ctx context.Context) error) error
}
