// Package repomanager opens the configured storage backend, brings its schema
// up to date and vends the user store bound to it.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	// Conn is the underlying connection pool, nil for in-memory storage.
	Conn() *sql.DB
	// Users returns the user store. Postgres managers bind it to db when
	// given, so it can run inside a transaction; nil means the pool.
	Users(db dbx.DBTX) users.Repository
	Close() error
}

// New picks the Postgres manager for a non-empty dsn and the in-memory one
// otherwise.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewInMemoryRepositoryManager(), nil
	}
	m, err := NewPostgresRepositoryManager(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return m, nil
}

var (
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
	_ RepositoryManager = (*InMemoryRepositoryManager)(nil)
)
