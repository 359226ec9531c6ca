package treasury

import (
	"context"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementFilter holds the query options for listing movements
type MovementFilter struct {
	shared.Filter
	AccountID    uuid.UUID
	Direction    *Direction
	SourceType   string
	PostedAfter  *time.Time
	PostedBefore *time.Time
}

// AccountRepository defines the persistence interface for treasury accounts
type AccountRepository interface {
	// Save persists a new account
	Save(ctx context.Context, acc *Account) error
	// SaveWithLock updates an account with optimistic locking
	SaveWithLock(ctx context.Context, acc *Account, expectedVersion int) error
	// FindByID retrieves an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindByCode retrieves an account by its code
	FindByCode(ctx context.Context, code string) (*Account, error)
	// List retrieves accounts, paginated
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Account], error)
}

// MovementRepository defines the persistence interface for movements
type MovementRepository interface {
	// Save appends a movement to the trail
	Save(ctx context.Context, m *Movement) error
	// List retrieves movements matching the filter, paginated
	List(ctx context.Context, filter MovementFilter) (shared.Paginated[*Movement], error)
}
