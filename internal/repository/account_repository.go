package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
)

const accountColumns = `id, workspace_id, phone_number_id, waba_id, display_phone_number, graph_api_version, is_active, created_at`

// AccountRepository reads active provider accounts.
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByPhoneNumberID returns nil, nil when no active account owns phoneNumberID.
func (r *AccountRepository) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM wa_accounts
		WHERE phone_number_id = ? AND is_active = 1
		LIMIT 1`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, phoneNumberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by phone number id: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM wa_accounts
		WHERE id = ? AND is_active = 1
		LIMIT 1`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}
