package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches question-bank content from a backing store (file,
// Postgres, etc).
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// BankRepository keeps recently loaded banks in process memory. A bank is
// read at most once per session start, but repeated start commands against
// the control endpoint must not each hit the store; entries stay fresh for
// ttl plus a small random spread so banks cached together do not all expire
// in the same instant.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	banks map[string]entry
}

type entry struct {
	bank    domain.Bank
	staleAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		banks:  make(map[string]entry),
	}
}

// GetBank returns the cached bank for bankID, loading it through the
// backing store on a miss. Concurrent misses for the same bank collapse
// into a single load.
func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.Bank, error) {
	if bank, ok := r.fresh(bankID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		if bank, ok := r.fresh(bankID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.Bank{}, err
		}

		r.mu.Lock()
		r.banks[bankID] = entry{bank: bank, staleAt: r.clock().Add(r.spreadTTL())}
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.Bank{}, err
	}
	return result.(domain.Bank), nil
}

func (r *BankRepository) fresh(bankID string) (domain.Bank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.banks[bankID]
	if !ok || !e.staleAt.After(r.clock()) {
		return domain.Bank{}, false
	}
	return e.bank, true
}

// spreadTTL widens the configured ttl by up to 10%.
func (r *BankRepository) spreadTTL() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	return r.ttl + time.Duration(r.rnd.Int63n(int64(r.ttl)/10+1))
}

// StaticBankLoader is a loader backed by an in-memory map (tests/demos).
type StaticBankLoader struct {
	banks map[string]domain.Bank
}

func NewStaticBankLoader(banks map[string]domain.Bank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, bankID string) (domain.Bank, error) {
	if bank, ok := l.banks[bankID]; ok {
		return bank, nil
	}
	return domain.Bank{}, domain.ErrBankNotFound
}
