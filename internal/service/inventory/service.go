package inventory

import (
	"context"
	"fmt"

	"github.com/featherpost/courier/internal/domain"
)

// Service implements the ledger business logic. It is safe for concurrent use.
type Service struct {
	repo Repository
}

// NewService creates an inventory ledger backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Purchase is the result of a successful buy: the updated account and the
// catalog item bought.
type Purchase struct {
	Account  *domain.Account  `json:"account"`
	Stamp    *domain.Stamp    `json:"stamp,omitempty"`
	Envelope *domain.Envelope `json:"envelope,omitempty"`
}

// BuyStamp purchases quantity units of a stamp. The debit and the inventory
// credit are one atomic update; on a stale balance the conditional update
// simply does not apply and the purchase fails without movement.
func (s *Service) BuyStamp(ctx context.Context, accountID, stampID string, quantity int) (*Purchase, error) {
	if quantity <= 0 {
		return nil, domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if quantity > domain.MaxPurchaseQuantity {
		return nil, domain.ValidationError{Field: "quantity", Reason: fmt.Sprintf("at most %d per purchase", domain.MaxPurchaseQuantity)}
	}

	stamp, err := s.repo.GetStamp(ctx, stampID)
	if err != nil {
		return nil, err
	}
	totalPrice := stamp.Price * quantity

	if err := s.repo.PurchaseStamp(ctx, accountID, stampID, quantity, totalPrice); err != nil {
		return nil, err
	}

	acct, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("reload account after purchase: %w", err)
	}
	return &Purchase{Account: acct, Stamp: stamp}, nil
}

// BuyEnvelope unlocks an envelope. Envelopes are owned at most once; a
// repeat purchase fails with ErrAlreadyOwned before any gold moves.
func (s *Service) BuyEnvelope(ctx context.Context, accountID, envelopeID string) (*Purchase, error) {
	env, err := s.repo.GetEnvelope(ctx, envelopeID)
	if err != nil {
		return nil, err
	}

	// Fail fast on ownership before touching the balance. The repository
	// enforces the same rule atomically in case of a concurrent unlock.
	acct, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.OwnsEnvelope(envelopeID) {
		return nil, ErrAlreadyOwned
	}

	if err := s.repo.PurchaseEnvelope(ctx, accountID, envelopeID, env.Price); err != nil {
		return nil, err
	}

	acct, err = s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("reload account after purchase: %w", err)
	}
	return &Purchase{Account: acct, Envelope: env}, nil
}

// ConsumeStamps spends one unit of each selected stamp. Called at letter
// submission; the decrement is conditional so a raced-out send cannot push
// a quantity negative.
func (s *Service) ConsumeStamps(ctx context.Context, accountID string, stampIDs []string) error {
	if len(stampIDs) == 0 {
		return nil
	}
	return s.repo.ConsumeStamps(ctx, accountID, stampIDs)
}

// GrantDefaults seeds a new account with the free catalog items: every
// default stamp at the starter quantity, every default envelope unlocked.
func (s *Service) GrantDefaults(ctx context.Context, accountID string) error {
	for _, stamp := range domain.DefaultStamps {
		if !stamp.IsDefault {
			continue
		}
		if err := s.repo.GrantStamp(ctx, accountID, stamp.ID, domain.DefaultStampQuantity); err != nil {
			return fmt.Errorf("grant stamp %s: %w", stamp.ID, err)
		}
	}
	for _, env := range domain.DefaultEnvelopes {
		if !env.IsDefault {
			continue
		}
		if err := s.repo.GrantEnvelope(ctx, accountID, env.ID); err != nil {
			return fmt.Errorf("grant envelope %s: %w", env.ID, err)
		}
	}
	return nil
}
