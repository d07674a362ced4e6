package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/sandlovubiz-ctrl/mureza/pkg/storage"
)

// memStore implements Store in memory with the same atomicity
// guarantees the real store provides.
type memStore struct {
	lck      sync.Mutex
	profiles map[string]*storage.Profile
	txs      []*storage.TokenTransaction
}

func newMemStore(profiles ...*storage.Profile) *memStore {
	m := &memStore{
		profiles: map[string]*storage.Profile{},
	}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memStore) GetProfile(ctx context.Context, id string) (*storage.Profile, error) {
	m.lck.Lock()
	defer m.lck.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ReserveTokens(ctx context.Context, userID string, amount int, generationID string) error {
	m.lck.Lock()
	defer m.lck.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return storage.ErrNotFound
	}
	if p.TokenBalance < amount {
		return storage.ErrInsufficientBalance
	}
	p.TokenBalance -= amount
	p.TotalTokensUsed += amount
	v := &storage.TokenTransaction{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Type:        storage.TxUsage,
		TokenAmount: -amount,
	}
	if generationID != "" {
		v.GenerationID = &generationID
	}
	m.txs = append(m.txs, v)
	return nil
}

func (m *memStore) CreditTokens(ctx context.Context, v *storage.TokenTransaction) error {
	m.lck.Lock()
	defer m.lck.Unlock()
	p, ok := m.profiles[v.UserID]
	if !ok {
		return storage.ErrNotFound
	}
	p.TokenBalance += v.TokenAmount
	if v.Type == storage.TxPurchase {
		p.TotalTokensPurchased += v.TokenAmount
	}
	if v.ID == "" {
		v.ID = ulid.Make().String()
	}
	m.txs = append(m.txs, v)
	return nil
}

func (m *memStore) sum(userID string) int {
	m.lck.Lock()
	defer m.lck.Unlock()
	var sum int
	for _, tx := range m.txs {
		if tx.UserID == userID {
			sum += tx.TokenAmount
		}
	}
	return sum
}

func TestReserveInsufficient(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(&storage.Profile{ID: "u1", TokenBalance: 5})
	l := New(store)

	err := l.Reserve(ctx, "u1", 10, "g1")
	if !errors.Is(err, storage.ErrInsufficientBalance) {
		t.Fatalf("Reserve() err = %v; want ErrInsufficientBalance", err)
	}
	balance, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("Balance() err = %v; want nil", err)
	}
	if balance != 5 {
		t.Fatalf("Balance() = %d; want 5", balance)
	}
	if len(store.txs) != 0 {
		t.Fatalf("transactions = %d; want 0", len(store.txs))
	}
}

func TestReserveAndRefund(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(&storage.Profile{ID: "u1", TokenBalance: 100})
	l := New(store)

	if err := l.Reserve(ctx, "u1", 10, "g1"); err != nil {
		t.Fatalf("Reserve() err = %v; want nil", err)
	}
	if err := l.Refund(ctx, "u1", 10, "g1"); err != nil {
		t.Fatalf("Refund() err = %v; want nil", err)
	}
	balance, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("Balance() err = %v; want nil", err)
	}
	if balance != 100 {
		t.Fatalf("Balance() = %d; want 100", balance)
	}
	if len(store.txs) != 2 {
		t.Fatalf("transactions = %d; want 2", len(store.txs))
	}
	if got := store.txs[0].TokenAmount; got != -10 {
		t.Fatalf("usage amount = %d; want -10", got)
	}
	if got := store.txs[1].TokenAmount; got != 10 {
		t.Fatalf("refund amount = %d; want 10", got)
	}
	if got := store.txs[1].Type; got != storage.TxRefund {
		t.Fatalf("refund type = %v; want %v", got, storage.TxRefund)
	}
	// The used total stays monotonic even after a refund.
	if got := store.profiles["u1"].TotalTokensUsed; got != 10 {
		t.Fatalf("total used = %d; want 10", got)
	}
}

func TestConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(&storage.Profile{ID: "u1", TokenBalance: 100})
	l := New(store)

	const n = 10
	errC := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errC <- l.Reserve(ctx, "u1", 60, "")
		}()
	}
	wg.Wait()
	close(errC)

	var ok, insufficient int
	for err := range errC {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, storage.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("Reserve() err = %v; want nil or ErrInsufficientBalance", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successful reserves = %d; want 1", ok)
	}
	if insufficient != n-1 {
		t.Fatalf("rejected reserves = %d; want %d", insufficient, n-1)
	}
	balance, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("Balance() err = %v; want nil", err)
	}
	if balance != 40 {
		t.Fatalf("Balance() = %d; want 40", balance)
	}
	if balance < 0 {
		t.Fatalf("Balance() = %d; want >= 0", balance)
	}
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(&storage.Profile{ID: "u1"})
	l := New(store)

	pack := &storage.TokenPackage{Name: "starter", TokenAmount: 500, PriceUSD: 4.99}
	if err := l.Purchase(ctx, "u1", pack, ""); err != nil {
		t.Fatalf("Purchase() err = %v; want nil", err)
	}
	balance, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("Balance() err = %v; want nil", err)
	}
	if balance != 500 {
		t.Fatalf("Balance() = %d; want 500", balance)
	}
	if got := store.profiles["u1"].TotalTokensPurchased; got != 500 {
		t.Fatalf("total purchased = %d; want 500", got)
	}
	tx := store.txs[0]
	if tx.Type != storage.TxPurchase {
		t.Fatalf("transaction type = %v; want %v", tx.Type, storage.TxPurchase)
	}
	if tx.PackageName != "starter" {
		t.Fatalf("package name = %q; want %q", tx.PackageName, "starter")
	}
	if tx.PriceUSD != 4.99 {
		t.Fatalf("price = %v; want 4.99", tx.PriceUSD)
	}
	if !strings.HasPrefix(tx.PaymentID, "sim_") {
		t.Fatalf("payment id = %q; want sim_ prefix", tx.PaymentID)
	}
}

func TestInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(&storage.Profile{ID: "u1", TokenBalance: 100})
	l := New(store)

	if err := l.Reserve(ctx, "u1", 0, ""); err == nil {
		t.Fatal("Reserve(0) err = nil; want error")
	}
	if err := l.Reserve(ctx, "u1", -5, ""); err == nil {
		t.Fatal("Reserve(-5) err = nil; want error")
	}
	if err := l.Refund(ctx, "u1", 0, ""); err == nil {
		t.Fatal("Refund(0) err = nil; want error")
	}
	if len(store.txs) != 0 {
		t.Fatalf("transactions = %d; want 0", len(store.txs))
	}
}

func TestTransactionSumMatchesBalance(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(&storage.Profile{ID: "u1"})
	l := New(store)

	pack := &storage.TokenPackage{Name: "starter", TokenAmount: 100, PriceUSD: 4.99}
	if err := l.Purchase(ctx, "u1", pack, "sim_1"); err != nil {
		t.Fatalf("Purchase() err = %v; want nil", err)
	}
	if err := l.Reserve(ctx, "u1", 30, "g1"); err != nil {
		t.Fatalf("Reserve() err = %v; want nil", err)
	}
	if err := l.Reserve(ctx, "u1", 25, "g2"); err != nil {
		t.Fatalf("Reserve() err = %v; want nil", err)
	}
	if err := l.Refund(ctx, "u1", 25, "g2"); err != nil {
		t.Fatalf("Refund() err = %v; want nil", err)
	}
	balance, err := l.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("Balance() err = %v; want nil", err)
	}
	if sum := store.sum("u1"); sum != balance {
		t.Fatalf("transaction sum = %d; want balance %d", sum, balance)
	}
	if balance != 70 {
		t.Fatalf("Balance() = %d; want 70", balance)
	}
}
