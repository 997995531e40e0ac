package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// Table names, also used as lock namespaces
const (
	tableUsers        = "users"
	tableWallets      = "wallets"
	tableLoans        = "loans"
	tableAdjustments  = "loan_adjustments"
	tableTransactions = "transactions"
)

type rowKey struct {
	table string
	id    uint64
}

type table[T any] struct {
	name  string
	seq   uint64
	rows  map[uint64]*T
	clone func(*T) *T
}

func newTable[T any](name string, clone func(*T) *T) *table[T] {
	return &table[T]{name: name, rows: make(map[uint64]*T), clone: clone}
}

// Store is a process-local database with the same transactional contract as the
// PostgreSQL adapter: row locks held until commit, writes visible to other units
// of work only after commit, rollback discards everything.
type Store struct {
	mu           sync.RWMutex
	users        *table[entity.User]
	wallets      *table[entity.Wallet]
	loans        *table[entity.Loan]
	adjustments  *table[entity.LoanAdjustment]
	transactions *table[entity.Transaction]

	locks *lockManager
	txSeq atomic.Uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:        newTable(tableUsers, cloneUser),
		wallets:      newTable(tableWallets, cloneWallet),
		loans:        newTable(tableLoans, cloneLoan),
		adjustments:  newTable(tableAdjustments, cloneAdjustment),
		transactions: newTable(tableTransactions, cloneTransaction),
		locks:        newLockManager(),
	}
}

// stagedRow is a write buffered by a unit of work
type stagedRow struct {
	value any
	check func() error
	apply func()
}

// tx is an open unit of work
type tx struct {
	id          uint64
	mu          sync.Mutex
	staged      map[rowKey]*stagedRow
	order       []rowKey
	afterCommit []func()
	done        bool
}

func (s *Store) begin() *tx {
	return &tx{
		id:     s.txSeq.Add(1),
		staged: make(map[rowKey]*stagedRow),
	}
}

// commit validates then applies every staged row atomically and releases the tx's locks
func (s *Store) commit(t *tx) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer s.locks.releaseAll(t.id)
	t.done = true

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range t.order {
		if check := t.staged[key].check; check != nil {
			if err := check(); err != nil {
				return err
			}
		}
	}
	for _, key := range t.order {
		t.staged[key].apply()
	}
	return nil
}

func (s *Store) rollback(t *tx) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	t.staged = nil
	t.order = nil
	t.afterCommit = nil
	s.locks.releaseAll(t.id)
}

// nextID allocates a primary key. Like a database sequence it is not rolled back.
func nextID[T any](s *Store, tbl *table[T]) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl.seq++
	return tbl.seq
}

// load reads a row, preferring the unit of work's own staged version
func load[T any](s *Store, t *tx, tbl *table[T], id uint64) (*T, bool) {
	if t != nil {
		t.mu.Lock()
		row, ok := t.staged[rowKey{tbl.name, id}]
		t.mu.Unlock()
		if ok {
			return tbl.clone(row.value.(*T)), true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := tbl.rows[id]
	if !ok {
		return nil, false
	}
	return tbl.clone(row), true
}

// save writes a row. Inside a unit of work the row is locked and the write buffered;
// outside one it is applied immediately after check passes.
func save[T any](ctx context.Context, s *Store, t *tx, tbl *table[T], id uint64, row *T, check func() error) error {
	value := tbl.clone(row)
	apply := func() { tbl.rows[id] = value }

	if t == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if check != nil {
			if err := check(); err != nil {
				return err
			}
		}
		apply()
		return nil
	}

	key := rowKey{tbl.name, id}
	if err := s.locks.acquire(ctx, key, t.id); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("%w: unit of work already finished", errs.ErrInternalServer)
	}
	if _, ok := t.staged[key]; !ok {
		t.order = append(t.order, key)
	}
	t.staged[key] = &stagedRow{value: value, check: check, apply: apply}
	return nil
}

// scan returns the rows matching keep as seen by the unit of work, ordered by id
func scan[T any](s *Store, t *tx, tbl *table[T], keep func(*T) bool) []*T {
	s.mu.RLock()
	merged := make(map[uint64]*T, len(tbl.rows))
	for id, row := range tbl.rows {
		merged[id] = row
	}
	s.mu.RUnlock()

	if t != nil {
		t.mu.Lock()
		for key, row := range t.staged {
			if key.table == tbl.name {
				merged[key.id] = row.value.(*T)
			}
		}
		t.mu.Unlock()
	}

	ids := make([]uint64, 0, len(merged))
	for id, row := range merged {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, tbl.clone(merged[id]))
	}
	return out
}

// committedRows iterates committed rows; callers hold s.mu
func committedRows[T any](tbl *table[T], fn func(id uint64, row *T) bool) {
	for id, row := range tbl.rows {
		if !fn(id, row) {
			return
		}
	}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func cloneWallet(w *entity.Wallet) *entity.Wallet {
	return entity.RestoreWallet(w.ID, w.UserID, w.Balance(), w.CreatedAt, w.UpdatedAt)
}

func cloneLoan(l *entity.Loan) *entity.Loan {
	var lenderID *uint64
	if l.LenderID != nil {
		id := *l.LenderID
		lenderID = &id
	}
	return entity.RestoreLoan(l.ID, l.BorrowerID, lenderID, l.Amount, l.InterestRate, l.State(), l.CreatedAt, l.UpdatedAt)
}

func cloneAdjustment(a *entity.LoanAdjustment) *entity.LoanAdjustment {
	c := *a
	if a.AdjustedAmount != nil {
		v := *a.AdjustedAmount
		c.AdjustedAmount = &v
	}
	if a.AdjustedInterestRate != nil {
		v := *a.AdjustedInterestRate
		c.AdjustedInterestRate = &v
	}
	return &c
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	return &c
}
