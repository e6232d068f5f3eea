package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// StarterGold is the balance seeded into every new account at onboarding.
// It is never renegotiated afterward except through ledger operations.
const StarterGold = 100

// DefaultStampQuantity is how many of each default stamp a new account receives.
const DefaultStampQuantity = 3

// MaxPurchaseQuantity caps a single stamp purchase. The cap keeps
// price * quantity far from int overflow, so the conditional debit is never
// handed a negative charge.
const MaxPurchaseQuantity = 100

// BirdSpecies enumerates the courier companions available at onboarding.
type BirdSpecies string

const (
	BirdOwl    BirdSpecies = "owl"
	BirdRaven  BirdSpecies = "raven"
	BirdDove   BirdSpecies = "dove"
	BirdFalcon BirdSpecies = "falcon"
)

// Valid reports whether the species is one of the known companions.
func (s BirdSpecies) Valid() bool {
	switch s {
	case BirdOwl, BirdRaven, BirdDove, BirdFalcon:
		return true
	}
	return false
}

// Bird is the account's courier companion. Purely cosmetic.
type Bird struct {
	Name    string      `json:"name" db:"bird_name"`
	Species BirdSpecies `json:"species" db:"bird_species"`
	Colors  []string    `json:"colors" db:"bird_colors"`
}

// AccountAddress is one of the unique address strings owned by an account.
type AccountAddress struct {
	Address   string    `json:"address" db:"address"`
	Label     string    `json:"label" db:"label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StampHolding is one entry in an account's stamp inventory.
type StampHolding struct {
	StampID  string `json:"stamp_id" db:"stamp_id"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// Account is a courier service identity: display name, addresses, companion
// bird, gold balance, and consumable inventory.
type Account struct {
	ID        string           `json:"id" db:"id"`
	FullName  string           `json:"full_name" db:"full_name"`
	BirthDate time.Time        `json:"birth_date" db:"birth_date"`
	Addresses []AccountAddress `json:"addresses"`
	Bird      Bird             `json:"bird"`
	Gold      int              `json:"gold" db:"gold"`
	Stamps    []StampHolding   `json:"stamps"`
	Envelopes []string         `json:"envelopes"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// StampQuantity returns how many of the given stamp the account owns.
func (a *Account) StampQuantity(stampID string) int {
	for _, h := range a.Stamps {
		if h.StampID == stampID {
			return h.Quantity
		}
	}
	return 0
}

// OwnsEnvelope reports whether the envelope is in the account's owned set.
func (a *Account) OwnsEnvelope(envelopeID string) bool {
	for _, id := range a.Envelopes {
		if id == envelopeID {
			return true
		}
	}
	return false
}

// HasAddress reports whether the account owns the given address string.
func (a *Account) HasAddress(address string) bool {
	for _, addr := range a.Addresses {
		if addr.Address == address {
			return true
		}
	}
	return false
}

const (
	MinAddressLen = 3
	MaxAddressLen = 64
	MaxNameLen    = 100
)

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidateAddress checks the address format: non-empty, alphanumeric plus
// hyphens, length bounds. It does not check uniqueness; that is a storage
// constraint.
func ValidateAddress(address string) error {
	if l := len(address); l < MinAddressLen || l > MaxAddressLen {
		return ValidationError{Field: "address", Reason: fmt.Sprintf("must be %d-%d characters", MinAddressLen, MaxAddressLen)}
	}
	if !addressPattern.MatchString(address) {
		return ValidationError{Field: "address", Reason: "may only contain letters, digits, and hyphens"}
	}
	return nil
}

// ValidateFullName checks the display name bounds.
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "full_name", Reason: "is required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return ValidationError{Field: "full_name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLen)}
	}
	return nil
}

// ValidationError reports a malformed input caught before business logic runs.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
