package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/featherpost/courier/internal/service/inventory"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// AccountRepo implements directory.Repository and inventory.Repository
// against PostgreSQL.
type AccountRepo struct{ db *sql.DB }

// NewAccountRepo creates a Postgres-backed account repository.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

func (r *AccountRepo) CreateAccount(ctx context.Context, acct *domain.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create account: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, full_name, birth_date, bird_name, bird_species, bird_colors, gold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, acct.ID, acct.FullName, acct.BirthDate, acct.Bird.Name, acct.Bird.Species, pq.Array(acct.Bird.Colors), acct.Gold, acct.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	for _, addr := range acct.Addresses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO account_addresses (address, account_id, label, created_at)
			VALUES ($1, $2, $3, $4)
		`, addr.Address, acct.ID, addr.Label, addr.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return directory.ErrAddressClaimed
			}
			return fmt.Errorf("insert address: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return directory.ErrAddressClaimed
		}
		return fmt.Errorf("commit create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) AddAddress(ctx context.Context, accountID string, addr domain.AccountAddress) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, accountID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return directory.ErrNotFound
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_addresses (address, account_id, label, created_at)
		VALUES ($1, $2, $3, $4)
	`, addr.Address, accountID, addr.Label, addr.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return directory.ErrAddressClaimed
		}
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetByAddress(ctx context.Context, address string) (*domain.Account, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM account_addresses WHERE address = $1`, address,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up address: %w", err)
	}
	return r.load(ctx, id, directory.ErrNotFound)
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.load(ctx, id, directory.ErrNotFound)
}

func (r *AccountRepo) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return r.load(ctx, id, inventory.ErrNotFound)
}

func (r *AccountRepo) load(ctx context.Context, id string, notFound error) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, birth_date, bird_name, bird_species, bird_colors, gold, created_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.FullName, &a.BirthDate, &a.Bird.Name, &a.Bird.Species, pq.Array(&a.Bird.Colors), &a.Gold, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT address, label, created_at FROM account_addresses
		WHERE account_id = $1 ORDER BY created_at
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load addresses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var addr domain.AccountAddress
		if err := rows.Scan(&addr.Address, &addr.Label, &addr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		a.Addresses = append(a.Addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}

	stampRows, err := r.db.QueryContext(ctx, `
		SELECT stamp_id, quantity FROM account_stamps
		WHERE account_id = $1 ORDER BY stamp_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load stamps: %w", err)
	}
	defer stampRows.Close()
	for stampRows.Next() {
		var h domain.StampHolding
		if err := stampRows.Scan(&h.StampID, &h.Quantity); err != nil {
			return nil, fmt.Errorf("scan stamp holding: %w", err)
		}
		a.Stamps = append(a.Stamps, h)
	}
	if err := stampRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stamps: %w", err)
	}

	envRows, err := r.db.QueryContext(ctx, `
		SELECT envelope_id FROM account_envelopes
		WHERE account_id = $1 ORDER BY envelope_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load envelopes: %w", err)
	}
	defer envRows.Close()
	for envRows.Next() {
		var envID string
		if err := envRows.Scan(&envID); err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		a.Envelopes = append(a.Envelopes, envID)
	}
	if err := envRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate envelopes: %w", err)
	}

	return &a, nil
}

func (r *AccountRepo) GetStamp(ctx context.Context, id string) (*domain.Stamp, error) {
	var s domain.Stamp
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, icon, color, price, is_default, description FROM stamps WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Icon, &s.Color, &s.Price, &s.IsDefault, &s.Description)
	if err == sql.ErrNoRows {
		return nil, inventory.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load stamp: %w", err)
	}
	return &s, nil
}

func (r *AccountRepo) GetEnvelope(ctx context.Context, id string) (*domain.Envelope, error) {
	var e domain.Envelope
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, is_default, style_class, layout, description FROM envelopes WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Price, &e.IsDefault, &e.StyleClass, &e.Layout, &e.Description)
	if err == sql.ErrNoRows {
		return nil, inventory.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load envelope: %w", err)
	}
	return &e, nil
}

// PurchaseStamp debits gold and credits stamps in one transaction. The funds
// check is the WHERE clause of the debit, so two concurrent purchases can
// never both spend the same gold.
func (r *AccountRepo) PurchaseStamp(ctx context.Context, accountID, stampID string, quantity, totalPrice int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback()

	if err := r.debit(ctx, tx, accountID, totalPrice); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account_stamps (account_id, stamp_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, stamp_id) DO UPDATE SET quantity = account_stamps.quantity + $3
	`, accountID, stampID, quantity)
	if err != nil {
		return fmt.Errorf("credit stamps: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purchase: %w", err)
	}
	return nil
}

func (r *AccountRepo) PurchaseEnvelope(ctx context.Context, accountID, envelopeID string, price int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback()

	// The primary key on (account_id, envelope_id) makes the unlock
	// exclusive; a second concurrent unlock conflicts and pays nothing.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO account_envelopes (account_id, envelope_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, envelope_id) DO NOTHING
	`, accountID, envelopeID)
	if err != nil {
		return fmt.Errorf("grant envelope: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return inventory.ErrAlreadyOwned
	}

	if err := r.debit(ctx, tx, accountID, price); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purchase: %w", err)
	}
	return nil
}

func (r *AccountRepo) debit(ctx context.Context, tx *sql.Tx, accountID string, amount int) error {
	// A negative amount means the caller's price arithmetic overflowed; the
	// gold >= $2 predicate would pass and the update would credit the account.
	if amount < 0 {
		return fmt.Errorf("debit gold: negative amount %d", amount)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET gold = gold - $2 WHERE id = $1 AND gold >= $2`,
		accountID, amount,
	)
	if err != nil {
		return fmt.Errorf("debit gold: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var have int
		err := tx.QueryRowContext(ctx, `SELECT gold FROM accounts WHERE id = $1`, accountID).Scan(&have)
		if err == sql.ErrNoRows {
			return inventory.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		return inventory.InsufficientFundsError{Need: amount, Have: have}
	}
	return nil
}

// ConsumeStamps decrements each listed stamp, failing the whole transaction
// if any quantity would go negative.
func (r *AccountRepo) ConsumeStamps(ctx context.Context, accountID string, stampIDs []string) error {
	if len(stampIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin consume: %w", err)
	}
	defer tx.Rollback()

	need := make(map[string]int, len(stampIDs))
	for _, id := range stampIDs {
		need[id]++
	}
	for _, id := range stampIDs {
		n, pending := need[id]
		if !pending {
			continue
		}
		delete(need, id)
		res, err := tx.ExecContext(ctx, `
			UPDATE account_stamps SET quantity = quantity - $3
			WHERE account_id = $1 AND stamp_id = $2 AND quantity >= $3
		`, accountID, id, n)
		if err != nil {
			return fmt.Errorf("consume stamp %s: %w", id, err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return inventory.ErrOutOfStock
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consume: %w", err)
	}
	return nil
}

func (r *AccountRepo) GrantStamp(ctx context.Context, accountID, stampID string, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_stamps (account_id, stamp_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, stamp_id) DO UPDATE SET quantity = account_stamps.quantity + $3
	`, accountID, stampID, quantity)
	if err != nil {
		return fmt.Errorf("grant stamp: %w", err)
	}
	return nil
}

func (r *AccountRepo) GrantEnvelope(ctx context.Context, accountID, envelopeID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_envelopes (account_id, envelope_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, envelope_id) DO NOTHING
	`, accountID, envelopeID)
	if err != nil {
		return fmt.Errorf("grant envelope: %w", err)
	}
	return nil
}
