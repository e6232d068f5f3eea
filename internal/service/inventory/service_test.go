package inventory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/featherpost/courier/internal/domain"
)

// mockRepo is an in-memory ledger repository. Mutations hold one mutex so
// the atomicity contract matches what a real store's conditional updates
// provide.
type mockRepo struct {
	mu        sync.Mutex
	gold      map[string]int
	stamps    map[string]map[string]int
	envelopes map[string]map[string]bool
	catalog   map[string]domain.Stamp
	envCat    map[string]domain.Envelope
}

func newMockRepo() *mockRepo {
	m := &mockRepo{
		gold:      make(map[string]int),
		stamps:    make(map[string]map[string]int),
		envelopes: make(map[string]map[string]bool),
		catalog:   make(map[string]domain.Stamp),
		envCat:    make(map[string]domain.Envelope),
	}
	for _, s := range domain.DefaultStamps {
		m.catalog[s.ID] = s
	}
	for _, e := range domain.DefaultEnvelopes {
		m.envCat[e.ID] = e
	}
	return m
}

func (m *mockRepo) addAccount(id string, gold int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gold[id] = gold
	m.stamps[id] = make(map[string]int)
	m.envelopes[id] = make(map[string]bool)
}

func (m *mockRepo) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gold, ok := m.gold[id]
	if !ok {
		return nil, ErrNotFound
	}
	acct := &domain.Account{ID: id, Gold: gold}
	for stampID, qty := range m.stamps[id] {
		acct.Stamps = append(acct.Stamps, domain.StampHolding{StampID: stampID, Quantity: qty})
	}
	for envID := range m.envelopes[id] {
		acct.Envelopes = append(acct.Envelopes, envID)
	}
	return acct, nil
}

func (m *mockRepo) GetStamp(_ context.Context, id string) (*domain.Stamp, error) {
	s, ok := m.catalog[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *mockRepo) GetEnvelope(_ context.Context, id string) (*domain.Envelope, error) {
	e, ok := m.envCat[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *mockRepo) PurchaseStamp(_ context.Context, accountID, stampID string, quantity, totalPrice int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	gold, ok := m.gold[accountID]
	if !ok {
		return ErrNotFound
	}
	if gold < totalPrice {
		return InsufficientFundsError{Need: totalPrice, Have: gold}
	}
	m.gold[accountID] = gold - totalPrice
	m.stamps[accountID][stampID] += quantity
	return nil
}

func (m *mockRepo) PurchaseEnvelope(_ context.Context, accountID, envelopeID string, price int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	gold, ok := m.gold[accountID]
	if !ok {
		return ErrNotFound
	}
	if m.envelopes[accountID][envelopeID] {
		return ErrAlreadyOwned
	}
	if gold < price {
		return InsufficientFundsError{Need: price, Have: gold}
	}
	m.gold[accountID] = gold - price
	m.envelopes[accountID][envelopeID] = true
	return nil
}

func (m *mockRepo) ConsumeStamps(_ context.Context, accountID string, stampIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.stamps[accountID]
	if !ok {
		return ErrNotFound
	}
	need := make(map[string]int)
	for _, id := range stampIDs {
		need[id]++
	}
	for id, n := range need {
		if inv[id] < n {
			return ErrOutOfStock
		}
	}
	for id, n := range need {
		inv[id] -= n
	}
	return nil
}

func (m *mockRepo) GrantStamp(_ context.Context, accountID, stampID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stamps[accountID]; !ok {
		return ErrNotFound
	}
	m.stamps[accountID][stampID] += quantity
	return nil
}

func (m *mockRepo) GrantEnvelope(_ context.Context, accountID, envelopeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.envelopes[accountID]; !ok {
		return ErrNotFound
	}
	m.envelopes[accountID][envelopeID] = true
	return nil
}

func TestBuyStampScenario(t *testing.T) {
	// Account with 250 gold buys a 75-gold stamp twice (quantity 2),
	// then a third single purchase fails leaving the balance untouched.
	repo := newMockRepo()
	repo.addAccount("acct-1", 250)
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.BuyStamp(ctx, "acct-1", "eternal-flame", 2)
	if err != nil {
		t.Fatalf("BuyStamp() error: %v", err)
	}
	if p.Account.Gold != 100 {
		t.Errorf("gold = %d, want 100", p.Account.Gold)
	}
	if got := p.Account.StampQuantity("eternal-flame"); got != 2 {
		t.Errorf("quantity = %d, want 2", got)
	}

	// A further purchase the balance cannot cover fails without movement.
	_, err = svc.BuyStamp(ctx, "acct-1", "eternal-flame", 2)
	var ife InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatalf("error = %v, want InsufficientFundsError", err)
	}
	if ife.Need != 150 || ife.Have != 100 {
		t.Errorf("shortfall detail = %+v, want need 150 have 100", ife)
	}

	acct, _ := repo.GetAccount(ctx, "acct-1")
	if acct.Gold != 100 {
		t.Errorf("failed purchase moved gold: %d", acct.Gold)
	}
}

func TestBuyStampValidation(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", 250)
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.BuyStamp(ctx, "acct-1", "eternal-flame", 0); err == nil {
		t.Error("zero quantity should fail")
	}
	if _, err := svc.BuyStamp(ctx, "acct-1", "no-such-stamp", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := svc.BuyStamp(ctx, "ghost", "eternal-flame", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestBuyStampQuantityCapped(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", 100)
	svc := NewService(repo)
	ctx := context.Background()

	// A quantity this large wraps price * quantity negative; without the cap
	// the conditional debit would pass and credit the account.
	huge := math.MaxInt / 70
	_, err := svc.BuyStamp(ctx, "acct-1", "eternal-flame", huge)
	var ve domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "quantity" {
		t.Fatalf("error = %v, want quantity ValidationError", err)
	}

	if _, err := svc.BuyStamp(ctx, "acct-1", "eternal-flame", domain.MaxPurchaseQuantity+1); err == nil {
		t.Error("quantity above the cap should fail")
	}

	acct, _ := repo.GetAccount(ctx, "acct-1")
	if acct.Gold != 100 {
		t.Errorf("rejected purchase moved gold: %d", acct.Gold)
	}
}

func TestBuyStampFreeStamp(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", 0)
	svc := NewService(repo)

	p, err := svc.BuyStamp(context.Background(), "acct-1", "golden-sol", 5)
	if err != nil {
		t.Fatalf("BuyStamp() error: %v", err)
	}
	if p.Account.Gold != 0 || p.Account.StampQuantity("golden-sol") != 5 {
		t.Errorf("free stamp purchase: gold=%d qty=%d", p.Account.Gold, p.Account.StampQuantity("golden-sol"))
	}
}

func TestBuyEnvelopeExclusivity(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", 250)
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.BuyEnvelope(ctx, "acct-1", "royal-velvet")
	if err != nil {
		t.Fatalf("BuyEnvelope() error: %v", err)
	}
	if p.Account.Gold != 150 {
		t.Errorf("gold = %d, want 150", p.Account.Gold)
	}
	if !p.Account.OwnsEnvelope("royal-velvet") {
		t.Error("envelope should be owned after purchase")
	}

	// Second purchase: AlreadyOwned, gold debited exactly once total.
	_, err = svc.BuyEnvelope(ctx, "acct-1", "royal-velvet")
	if !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("error = %v, want ErrAlreadyOwned", err)
	}
	acct, _ := repo.GetAccount(ctx, "acct-1")
	if acct.Gold != 150 {
		t.Errorf("gold = %d after repeat purchase, want 150", acct.Gold)
	}
}

func TestBuyEnvelopeInsufficientFunds(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", 40)
	svc := NewService(repo)

	_, err := svc.BuyEnvelope(context.Background(), "acct-1", "airmail")
	var ife InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatalf("error = %v, want InsufficientFundsError", err)
	}
	if ife.Need != 50 || ife.Have != 40 {
		t.Errorf("shortfall detail = %+v", ife)
	}
}

func TestConcurrentPurchasesNeverOverdraw(t *testing.T) {
	// Funds safety: any interleaving of purchases leaves gold >= 0 and the
	// sum of successful debits equal to the balance drop.
	repo := newMockRepo()
	repo.addAccount("acct-1", 250)
	svc := NewService(repo)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.BuyStamp(ctx, "acct-1", "eternal-flame", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	acct, _ := repo.GetAccount(ctx, "acct-1")
	if acct.Gold < 0 {
		t.Fatalf("gold went negative: %d", acct.Gold)
	}
	if succeeded != 3 {
		t.Errorf("successful purchases = %d, want 3 (250 gold / 75 each)", succeeded)
	}
	if want := 250 - succeeded*75; acct.Gold != want {
		t.Errorf("gold = %d, want %d", acct.Gold, want)
	}
	if got := acct.StampQuantity("eternal-flame"); got != succeeded {
		t.Errorf("stamps credited = %d, want %d", got, succeeded)
	}
}

func TestConsumeStamps(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", 0)
	_ = repo.GrantStamp(context.Background(), "acct-1", "golden-sol", 2)
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.ConsumeStamps(ctx, "acct-1", []string{"golden-sol", "golden-sol"}); err != nil {
		t.Fatalf("ConsumeStamps() error: %v", err)
	}
	if err := svc.ConsumeStamps(ctx, "acct-1", []string{"golden-sol"}); !errors.Is(err, ErrOutOfStock) {
		t.Errorf("error = %v, want ErrOutOfStock", err)
	}
	// Consuming nothing is a no-op.
	if err := svc.ConsumeStamps(ctx, "acct-1", nil); err != nil {
		t.Errorf("empty consume error: %v", err)
	}
}

func TestGrantDefaults(t *testing.T) {
	repo := newMockRepo()
	repo.addAccount("acct-1", domain.StarterGold)
	svc := NewService(repo)

	if err := svc.GrantDefaults(context.Background(), "acct-1"); err != nil {
		t.Fatalf("GrantDefaults() error: %v", err)
	}
	acct, _ := repo.GetAccount(context.Background(), "acct-1")
	if got := acct.StampQuantity("golden-sol"); got != domain.DefaultStampQuantity {
		t.Errorf("default stamp quantity = %d, want %d", got, domain.DefaultStampQuantity)
	}
	if acct.StampQuantity("eternal-flame") != 0 {
		t.Error("non-default stamp should not be granted")
	}
	if !acct.OwnsEnvelope("classic-parchment") {
		t.Error("default envelope should be granted")
	}
	if acct.OwnsEnvelope("royal-velvet") {
		t.Error("non-default envelope should not be granted")
	}
	if acct.Gold != domain.StarterGold {
		t.Errorf("grants moved gold: %d", acct.Gold)
	}
}
