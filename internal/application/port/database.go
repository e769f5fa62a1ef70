package port

import (
	"context"
	"database/sql"
)

// DatabaseProvider provides access to the usage database. Implementations
// may open it lazily so commands that never record usage skip the cost.
type DatabaseProvider interface {
	// DB returns the database connection, initializing it if necessary.
	DB(ctx context.Context) (*sql.DB, error)

	// Close closes the database connection if it was initialized.
	Close() error

	// IsInitialized returns true if the database has been initialized.
	IsInitialized() bool
}
