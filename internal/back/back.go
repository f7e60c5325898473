package back

import (
	"astroduel/internal/trueskill"
	"astroduel/internal/util"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a player or match does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a submission is rejected before any
	// state is touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDanglingReference means a match references a player that no longer
	// exists. Rating skips such slots (or whole team matches) instead of
	// failing.
	ErrDanglingReference = errors.New("dangling player reference")
)

// Back is the rating ledger: it owns the Player and Match tables and keeps
// ratings consistent with the match history.
type Back struct {
	db  *sqlx.DB
	env trueskill.Env

	// writeLock serializes every mutation so a match application can never
	// interleave with a full replay.
	writeLock sync.Mutex
}

func New(sqlDriver string, sqlDSN string, env trueskill.Env) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	return &Back{
		db:  db,
		env: env,
	}, nil
}

func (b *Back) Close() error {
	return b.db.Close()
}

// Env returns the rating parameters used by this Back.
func (b *Back) Env() trueskill.Env {
	return b.env
}

// transaction runs a read-only or self-contained callback in a transaction.
// Callers must not use b.db from within cb.
func (b *Back) transaction(cb util.TransactionCallback) error {
	return util.Transaction(context.Background(), b.db, cb)
}

// mutate is transaction with exclusive write access.
func (b *Back) mutate(cb util.TransactionCallback) error {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	return b.transaction(cb)
}
