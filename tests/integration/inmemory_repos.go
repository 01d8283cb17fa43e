package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Kind < result[j].Kind })
	return result, nil
}

func (r *inMemoryWalletRepo) ExistsByUserAndKind(ctx context.Context, userID uuid.UUID, kind domain.WalletKind) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	w.Balance = balance
	return nil
}

// --- In-Memory Person Repo ---

type inMemoryPersonRepo struct {
	mu     sync.RWMutex
	people map[uuid.UUID]*domain.Person
}

func newInMemoryPersonRepo() *inMemoryPersonRepo {
	return &inMemoryPersonRepo{people: make(map[uuid.UUID]*domain.Person)}
}

func (r *inMemoryPersonRepo) Create(ctx context.Context, p *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.people[p.ID] = &cp
	return nil
}

func (r *inMemoryPersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.people[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPersonRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Person
	for _, p := range r.people {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryPersonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.people[id]; !ok {
		return fmt.Errorf("person not found: %s", id)
	}
	delete(r.people, id)
	return nil
}

// --- In-Memory Entry Repo ---

type inMemoryEntryRepo struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*domain.Entry
	wallets *inMemoryWalletRepo // for wallet-kind filtering in Search
}

func newInMemoryEntryRepo(wallets *inMemoryWalletRepo) *inMemoryEntryRepo {
	return &inMemoryEntryRepo{entries: make(map[uuid.UUID]*domain.Entry), wallets: wallets}
}

func (r *inMemoryEntryRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries[e.ID] = &cp
	return nil
}

func (r *inMemoryEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEntryRepo) MarkReversed(ctx context.Context, tx pgx.Tx, originalID, reversalID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[originalID]
	if !ok || e.ReversedByID != nil {
		return false, nil
	}
	e.ReversedByID = &reversalID
	return true, nil
}

func (r *inMemoryEntryRepo) Search(ctx context.Context, params ports.EntrySearchParams) ([]domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Entry
	for _, e := range r.entries {
		if e.UserID != params.UserID {
			continue
		}
		if params.Kind != nil && e.Kind != *params.Kind {
			continue
		}
		if params.WalletKind != nil && !r.touchesWalletKind(e, *params.WalletKind) {
			continue
		}
		if params.DateFrom != nil && e.EffectiveDate.Before(*params.DateFrom) {
			continue
		}
		if params.DateTo != nil && !e.EffectiveDate.Before(*params.DateTo) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EffectiveDate.After(result[j].EffectiveDate)
	})
	return result, nil
}

func (r *inMemoryEntryRepo) touchesWalletKind(e *domain.Entry, kind domain.WalletKind) bool {
	for _, id := range []*uuid.UUID{e.FromWalletID, e.ToWalletID} {
		if id == nil {
			continue
		}
		w, _ := r.wallets.GetByID(context.Background(), *id)
		if w != nil && w.Kind == kind {
			return true
		}
	}
	return false
}

func (r *inMemoryEntryRepo) ExistsByPerson(ctx context.Context, personID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.PersonID != nil && *e.PersonID == personID {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryEntryRepo) SumByPersonAndKind(ctx context.Context, userID, personID uuid.UUID, kind domain.EntryKind) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for _, e := range r.entries {
		if e.UserID == userID && e.PersonID != nil && *e.PersonID == personID && e.Kind == kind {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// --- In-Memory Transactor ---

// lockingTransactor serializes transactions with a single mutex, standing in
// for row-level locks. Commit or Rollback releases the lock.
type lockingTransactor struct {
	mu sync.Mutex
}

func newLockingTransactor() *lockingTransactor {
	return &lockingTransactor{}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx is a pgx.Tx that releases the transactor's lock exactly once.
type serialTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *serialTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
