// Package memory provides an in-process store implementing every service
// repository contract. It backs local development and the API tests; the
// postgres package is the production implementation of the same contracts.
//
// One Store holds all state behind a single lock; the facet types
// (Accounts, Letters, Drafts, Notes, Catalog) expose the per-service
// contracts.
// All methods copy on the way in and out, so callers can never mutate the
// store's state through a returned value.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/featherpost/courier/internal/service/draft"
	"github.com/featherpost/courier/internal/service/inventory"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/featherpost/courier/internal/service/note"
)

// Store is a mutex-guarded in-memory database.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*domain.Account
	addresses map[string]string // address -> account id, the uniqueness constraint
	letters   map[string]*domain.Letter
	drafts    map[string]*domain.Draft
	notes     map[string]*domain.Note
	stamps    map[string]domain.Stamp
	envelopes map[string]domain.Envelope
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*domain.Account),
		addresses: make(map[string]string),
		letters:   make(map[string]*domain.Letter),
		drafts:    make(map[string]*domain.Draft),
		notes:     make(map[string]*domain.Note),
		stamps:    make(map[string]domain.Stamp),
		envelopes: make(map[string]domain.Envelope),
	}
}

// Accounts returns the account facet, implementing the directory and
// inventory repository contracts.
func (s *Store) Accounts() *AccountStore { return &AccountStore{s: s} }

// Letters returns the letter facet, implementing the letter and delivery
// repository contracts.
func (s *Store) Letters() *LetterStore { return &LetterStore{s: s} }

// Drafts returns the draft facet.
func (s *Store) Drafts() *DraftStore { return &DraftStore{s: s} }

// Notes returns the note facet.
func (s *Store) Notes() *NoteStore { return &NoteStore{s: s} }

// Catalog returns the catalog facet.
func (s *Store) Catalog() *CatalogStore { return &CatalogStore{s: s} }

func cloneAccount(a *domain.Account) *domain.Account {
	cp := *a
	cp.Addresses = append([]domain.AccountAddress(nil), a.Addresses...)
	cp.Stamps = append([]domain.StampHolding(nil), a.Stamps...)
	cp.Envelopes = append([]string(nil), a.Envelopes...)
	cp.Bird.Colors = append([]string(nil), a.Bird.Colors...)
	return &cp
}

func cloneLetter(l *domain.Letter) *domain.Letter {
	cp := *l
	cp.StampIDs = append([]string(nil), l.StampIDs...)
	cp.Images = append([]string(nil), l.Images...)
	cp.Tags = append([]string(nil), l.Tags...)
	if l.ScheduledAt != nil {
		t := *l.ScheduledAt
		cp.ScheduledAt = &t
	}
	if l.ResolvedAt != nil {
		t := *l.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

func cloneDraft(d *domain.Draft) *domain.Draft {
	cp := *d
	cp.StampIDs = append([]string(nil), d.StampIDs...)
	if d.ScheduledAt != nil {
		t := *d.ScheduledAt
		cp.ScheduledAt = &t
	}
	return &cp
}

// AccountStore is the account facet of a Store.
type AccountStore struct {
	s *Store
}

func (r *AccountStore) CreateAccount(_ context.Context, acct *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, addr := range acct.Addresses {
		if _, taken := r.s.addresses[addr.Address]; taken {
			return directory.ErrAddressClaimed
		}
	}
	for _, addr := range acct.Addresses {
		r.s.addresses[addr.Address] = acct.ID
	}
	r.s.accounts[acct.ID] = cloneAccount(acct)
	return nil
}

func (r *AccountStore) AddAddress(_ context.Context, accountID string, addr domain.AccountAddress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return directory.ErrNotFound
	}
	if _, taken := r.s.addresses[addr.Address]; taken {
		return directory.ErrAddressClaimed
	}
	r.s.addresses[addr.Address] = accountID
	a.Addresses = append(a.Addresses, addr)
	return nil
}

func (r *AccountStore) GetByAddress(_ context.Context, address string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.addresses[address]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return cloneAccount(r.s.accounts[id]), nil
}

func (r *AccountStore) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountStore) GetStamp(_ context.Context, id string) (*domain.Stamp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stamps[id]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return &st, nil
}

func (r *AccountStore) GetEnvelope(_ context.Context, id string) (*domain.Envelope, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.envelopes[id]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return &e, nil
}

func (r *AccountStore) PurchaseStamp(_ context.Context, accountID, stampID string, quantity, totalPrice int) error {
	// A negative total means the caller's price arithmetic overflowed; the
	// debit below would turn into a credit.
	if totalPrice < 0 {
		return fmt.Errorf("purchase stamp %s: negative total %d", stampID, totalPrice)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return inventory.ErrNotFound
	}
	if a.Gold < totalPrice {
		return inventory.InsufficientFundsError{Need: totalPrice, Have: a.Gold}
	}
	a.Gold -= totalPrice
	addStamps(a, stampID, quantity)
	return nil
}

func (r *AccountStore) PurchaseEnvelope(_ context.Context, accountID, envelopeID string, price int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return inventory.ErrNotFound
	}
	if a.OwnsEnvelope(envelopeID) {
		return inventory.ErrAlreadyOwned
	}
	if a.Gold < price {
		return inventory.InsufficientFundsError{Need: price, Have: a.Gold}
	}
	a.Gold -= price
	a.Envelopes = append(a.Envelopes, envelopeID)
	return nil
}

func (r *AccountStore) ConsumeStamps(_ context.Context, accountID string, stampIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return inventory.ErrNotFound
	}
	// Tally first so a failure leaves the inventory untouched.
	need := make(map[string]int, len(stampIDs))
	for _, id := range stampIDs {
		need[id]++
	}
	for id, n := range need {
		if a.StampQuantity(id) < n {
			return inventory.ErrOutOfStock
		}
	}
	for id, n := range need {
		addStamps(a, id, -n)
	}
	return nil
}

func (r *AccountStore) GrantStamp(_ context.Context, accountID, stampID string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return inventory.ErrNotFound
	}
	addStamps(a, stampID, quantity)
	return nil
}

func (r *AccountStore) GrantEnvelope(_ context.Context, accountID, envelopeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return inventory.ErrNotFound
	}
	if !a.OwnsEnvelope(envelopeID) {
		a.Envelopes = append(a.Envelopes, envelopeID)
	}
	return nil
}

func addStamps(a *domain.Account, stampID string, delta int) {
	for i := range a.Stamps {
		if a.Stamps[i].StampID == stampID {
			a.Stamps[i].Quantity += delta
			return
		}
	}
	a.Stamps = append(a.Stamps, domain.StampHolding{StampID: stampID, Quantity: delta})
}

// LetterStore is the letter facet of a Store.
type LetterStore struct {
	s *Store
}

func (r *LetterStore) Create(_ context.Context, l *domain.Letter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.letters[l.ID] = cloneLetter(l)
	return nil
}

func (r *LetterStore) Get(_ context.Context, id string) (*domain.Letter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.letters[id]
	if !ok {
		return nil, letter.ErrNotFound
	}
	return cloneLetter(l), nil
}

func (r *LetterStore) ListIncoming(_ context.Context, address string, now time.Time) ([]domain.Letter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Letter
	for _, l := range r.s.letters {
		if l.RecipientAddress == address && l.Status == domain.LetterSending && l.VisibleAt(now) {
			out = append(out, *cloneLetter(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AvailableAt.After(out[j].AvailableAt) })
	return out, nil
}

func (r *LetterStore) ListPending(_ context.Context, address string, now time.Time) ([]domain.Letter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Letter
	for _, l := range r.s.letters {
		if l.RecipientAddress == address && l.Status == domain.LetterSending && !l.VisibleAt(now) {
			out = append(out, *cloneLetter(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AvailableAt.Before(out[j].AvailableAt) })
	return out, nil
}

func (r *LetterStore) ListByStatus(_ context.Context, address string, status domain.LetterStatus) ([]domain.Letter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Letter
	for _, l := range r.s.letters {
		if l.RecipientAddress == address && l.Status == status {
			out = append(out, *cloneLetter(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AvailableAt.After(out[j].AvailableAt) })
	return out, nil
}

func (r *LetterStore) ListBySender(_ context.Context, senderID string) ([]domain.Letter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Letter
	for _, l := range r.s.letters {
		if l.SenderID == senderID {
			out = append(out, *cloneLetter(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

func (r *LetterStore) Resolve(_ context.Context, id string, status domain.LetterStatus, tags []string, resolvedAt time.Time) (*domain.Letter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.letters[id]
	if !ok {
		return nil, letter.ErrNotFound
	}
	if l.Status != domain.LetterSending {
		return nil, letter.ErrInvalidState
	}
	l.Status = status
	l.Tags = append([]string(nil), tags...)
	l.ResolvedAt = &resolvedAt
	return cloneLetter(l), nil
}

func (r *LetterStore) LastSentAt(_ context.Context, senderID, recipientAddress string) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last *time.Time
	for _, l := range r.s.letters {
		if l.SenderID != senderID || l.RecipientAddress != recipientAddress {
			continue
		}
		if last == nil || l.SentAt.After(*last) {
			t := l.SentAt
			last = &t
		}
	}
	return last, nil
}

// DraftStore is the draft facet of a Store.
type DraftStore struct {
	s *Store
}

func (r *DraftStore) Upsert(_ context.Context, d *domain.Draft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.drafts[d.ID] = cloneDraft(d)
	return nil
}

func (r *DraftStore) Get(_ context.Context, id string) (*domain.Draft, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.drafts[id]
	if !ok {
		return nil, draft.ErrNotFound
	}
	return cloneDraft(d), nil
}

func (r *DraftStore) ListBySender(_ context.Context, senderID string) ([]domain.Draft, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Draft
	for _, d := range r.s.drafts {
		if d.SenderID == senderID {
			out = append(out, *cloneDraft(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *DraftStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.drafts[id]; !ok {
		return draft.ErrNotFound
	}
	delete(r.s.drafts, id)
	return nil
}

// NoteStore is the note facet of a Store.
type NoteStore struct {
	s *Store
}

func (r *NoteStore) Create(_ context.Context, n *domain.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *n
	r.s.notes[n.ID] = &cp
	return nil
}

func (r *NoteStore) Get(_ context.Context, id string) (*domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notes[id]
	if !ok {
		return nil, note.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *NoteStore) ListByAccount(_ context.Context, accountID string) ([]domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Note
	for _, n := range r.s.notes {
		if n.AccountID == accountID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NoteStore) Update(_ context.Context, n *domain.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notes[n.ID]; !ok {
		return note.ErrNotFound
	}
	cp := *n
	r.s.notes[n.ID] = &cp
	return nil
}

func (r *NoteStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notes[id]; !ok {
		return note.ErrNotFound
	}
	delete(r.s.notes, id)
	return nil
}

// CatalogStore is the catalog facet of a Store.
type CatalogStore struct {
	s *Store
}

// EnsureStamp inserts the stamp if absent. Catalog rows are immutable once
// seeded.
func (r *CatalogStore) EnsureStamp(_ context.Context, st domain.Stamp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stamps[st.ID]; ok {
		return nil
	}
	r.s.stamps[st.ID] = st
	return nil
}

// EnsureEnvelope inserts the envelope if absent.
func (r *CatalogStore) EnsureEnvelope(_ context.Context, e domain.Envelope) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.envelopes[e.ID]; ok {
		return nil
	}
	r.s.envelopes[e.ID] = e
	return nil
}

func (r *CatalogStore) ListStamps(_ context.Context) ([]domain.Stamp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Stamp, 0, len(r.s.stamps))
	for _, st := range r.s.stamps {
		out = append(out, st)
	}
	return out, nil
}

func (r *CatalogStore) ListEnvelopes(_ context.Context) ([]domain.Envelope, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Envelope, 0, len(r.s.envelopes))
	for _, e := range r.s.envelopes {
		out = append(out, e)
	}
	return out, nil
}
