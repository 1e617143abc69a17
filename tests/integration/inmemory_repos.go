package integration

import (
	"context"
	"sync"

	"bank-ledger/internal/core/domain"
	"bank-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

// inMemoryAccountRepo implements ports.AccountRepository with the same
// locking semantics as the Postgres adapter: GetByNameForUpdate acquires a
// per-account lock that is held by the transaction until commit/rollback.
type inMemoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	rowLocks map[string]*sync.Mutex
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{
		accounts: make(map[string]*domain.Account),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.Name]; ok {
		return ports.ErrDuplicateName
	}
	cp := *a
	r.accounts[a.Name] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[name]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, name string) (*domain.Account, error) {
	if lt, ok := tx.(*lockingTx); ok {
		lt.acquire(r.rowLock(name))
	}
	return r.GetByName(ctx, name)
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, name string, newBalance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[name]
	if !ok {
		return ports.ErrNameNotFound
	}
	a.Balance = newBalance
	return nil
}

func (r *inMemoryAccountRepo) VerifyPIN(ctx context.Context, name string, pin int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[name]
	return ok && a.PIN == pin, nil
}

// rowLock returns the mutex guarding one account's read-modify-write pairs.
func (r *inMemoryAccountRepo) rowLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rowLocks[name]
	if !ok {
		l = &sync.Mutex{}
		r.rowLocks[name] = l
	}
	return l
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &lockingTx{}, nil
}

// lockingTx is a pgx.Tx stand-in that holds row locks acquired during the
// transaction and releases them exactly once on commit or rollback,
// mirroring SELECT ... FOR UPDATE semantics.
type lockingTx struct {
	mu    sync.Mutex
	locks []*sync.Mutex
	done  bool
}

func (t *lockingTx) acquire(l *sync.Mutex) {
	l.Lock()
	t.mu.Lock()
	t.locks = append(t.locks, l)
	t.mu.Unlock()
}

func (t *lockingTx) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	for _, l := range t.locks {
		l.Unlock()
	}
	t.locks = nil
}

func (t *lockingTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockingTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *lockingTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *lockingTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockingTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockingTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockingTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockingTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockingTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockingTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockingTx) Conn() *pgx.Conn { return nil }
