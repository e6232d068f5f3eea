package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/google/uuid"
)

// Granter seeds a new account's starter inventory (default stamps and
// envelopes). Implemented by the inventory service.
type Granter interface {
	GrantDefaults(ctx context.Context, accountID string) error
}

// Service implements the address directory business logic. It is safe for
// concurrent use.
type Service struct {
	repo    Repository
	granter Granter
}

// NewService creates a directory service backed by the given repository.
// granter may be nil, in which case new accounts start with an empty
// inventory.
func NewService(repo Repository, granter Granter) *Service {
	return &Service{repo: repo, granter: granter}
}

// RegisterInput is the onboarding request.
type RegisterInput struct {
	FullName    string   `json:"full_name"`
	BirthDate   string   `json:"birth_date"` // YYYY-MM-DD
	Address     string   `json:"address"`
	BirdName    string   `json:"bird_name"`
	BirdSpecies string   `json:"bird_species"`
	BirdColors  []string `json:"bird_colors"`
}

// Register creates an account holding the requested address, seeds starter
// gold, and grants the default catalog items. Returns ErrAddressClaimed if
// the address is already held.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	if err := domain.ValidateFullName(in.FullName); err != nil {
		return nil, err
	}
	birthDate, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return nil, domain.ValidationError{Field: "birth_date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	if err := domain.ValidateAddress(in.Address); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.BirdName) == "" {
		return nil, domain.ValidationError{Field: "bird_name", Reason: "is required"}
	}
	species := domain.BirdSpecies(in.BirdSpecies)
	if !species.Valid() {
		return nil, domain.ValidationError{Field: "bird_species", Reason: "must be one of owl, raven, dove, falcon"}
	}

	colors := in.BirdColors
	if len(colors) == 0 {
		colors = []string{"#d4af37"}
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		ID:        uuid.NewString(),
		FullName:  strings.TrimSpace(in.FullName),
		BirthDate: birthDate,
		Addresses: []domain.AccountAddress{{Address: in.Address, Label: "Primary", CreatedAt: now}},
		Bird: domain.Bird{
			Name:    strings.TrimSpace(in.BirdName),
			Species: species,
			Colors:  colors,
		},
		Gold:      domain.StarterGold,
		CreatedAt: now,
	}

	if err := s.repo.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}

	if s.granter != nil {
		if err := s.granter.GrantDefaults(ctx, acct.ID); err != nil {
			return nil, fmt.Errorf("grant starter inventory: %w", err)
		}
		// Reload so the response reflects the granted items.
		return s.repo.GetByID(ctx, acct.ID)
	}
	return acct, nil
}

// AddressExists reports whether any account holds the given address.
func (s *Service) AddressExists(ctx context.Context, address string) (bool, error) {
	_, err := s.repo.GetByAddress(ctx, address)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Resolve returns the account holding the given address.
func (s *Service) Resolve(ctx context.Context, address string) (*domain.Account, error) {
	if err := domain.ValidateAddress(address); err != nil {
		return nil, err
	}
	return s.repo.GetByAddress(ctx, address)
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// AddAddress claims an additional address for an existing account.
func (s *Service) AddAddress(ctx context.Context, accountID, address, label string) (*domain.Account, error) {
	if err := domain.ValidateAddress(address); err != nil {
		return nil, err
	}
	addr := domain.AccountAddress{Address: address, Label: label, CreatedAt: time.Now().UTC()}
	if err := s.repo.AddAddress(ctx, accountID, addr); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, accountID)
}
