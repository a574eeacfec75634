package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/client/migrations"
	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

const (
	keyToken     = "token"
	keyUsername  = "username"
	keyEmail     = "email"
	keyExpiresAt = "expires_at"
)

// Session is what the CLI remembers after a successful login.
type Session struct {
	Token     string
	Username  string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now)
}

// Store keeps a single Session in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dsn and applies
// migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session db migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored session atomically.
func (s *Store) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		values := map[string]string{
			keyToken:     sess.Token,
			keyUsername:  sess.Username,
			keyEmail:     sess.Email,
			keyExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
		}
		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the stored session or ErrNoSession.
func (s *Store) Load(ctx context.Context) (Session, error) {
	repo := NewSQLiteRepository(s.db)

	token, ok, err := repo.Get(ctx, keyToken)
	if err != nil {
		return Session{}, err
	}
	if !ok || token == "" {
		return Session{}, ErrNoSession
	}

	sess := Session{Token: token}
	if sess.Username, _, err = repo.Get(ctx, keyUsername); err != nil {
		return Session{}, err
	}
	if sess.Email, _, err = repo.Get(ctx, keyEmail); err != nil {
		return Session{}, err
	}

	raw, ok, err := repo.Get(ctx, keyExpiresAt)
	if err != nil {
		return Session{}, err
	}
	if ok && raw != "" {
		if sess.ExpiresAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return Session{}, fmt.Errorf("stored expiry %q: %w", raw, err)
		}
	}

	return sess, nil
}

// Clear forgets the stored session. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	return NewSQLiteRepository(s.db).Clear(ctx)
}
