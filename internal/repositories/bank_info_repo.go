package repositories

import (
	"context"
	"fmt"
	"strings"

	"invoicehub/internal/common"
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bankInfoColumns = `id, account_name, bank_name, account_number, branch, ifsc_code, account_type, is_primary, status, created_at, updated_at`

type BankInfoRepository interface {
	Create(ctx context.Context, bank *models.BankInfo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BankInfo, error)
	GetPrimary(ctx context.Context) (*models.BankInfo, error)
	List(ctx context.Context, query models.BankInfoListQuery) ([]*models.BankInfo, int, error)
	Update(ctx context.Context, bank *models.BankInfo) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bankInfoRepo struct {
	db Database
}

func NewBankInfoRepo(db Database) BankInfoRepository {
	return &bankInfoRepo{db: db}
}

func scanBankInfo(row scanner) (*models.BankInfo, error) {
	b := &models.BankInfo{}
	if err := row.Scan(&b.ID, &b.AccountName, &b.BankName, &b.AccountNumber, &b.Branch, &b.IFSCCode,
		&b.AccountType, &b.IsPrimary, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// unsetPrimaries clears the primary flag on every account except keep.
func unsetPrimaries(ctx context.Context, q Querier, keep uuid.UUID) error {
	_, err := q.Exec(ctx, `UPDATE bank_info SET is_primary = false, updated_at = NOW() WHERE is_primary = true AND id <> $1`, keep)
	if err != nil {
		return fmt.Errorf("unset primary bank accounts: %w", err)
	}
	return nil
}

func (r *bankInfoRepo) Create(ctx context.Context, bank *models.BankInfo) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if bank.IsPrimary {
			if err := unsetPrimaries(ctx, tx, bank.ID); err != nil {
				return err
			}
		}
		query := `
			INSERT INTO bank_info (id, account_name, bank_name, account_number, branch, ifsc_code, account_type, is_primary, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query, bank.ID, bank.AccountName, bank.BankName, bank.AccountNumber, bank.Branch,
			bank.IFSCCode, bank.AccountType, bank.IsPrimary, bank.Status).Scan(&bank.CreatedAt, &bank.UpdatedAt)
		return mapError(err, "Bank account")
	})
}

func (r *bankInfoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BankInfo, error) {
	query := `SELECT ` + bankInfoColumns + ` FROM bank_info WHERE id = $1`
	b, err := scanBankInfo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Bank information")
	}
	return b, nil
}

func (r *bankInfoRepo) GetPrimary(ctx context.Context) (*models.BankInfo, error) {
	query := `SELECT ` + bankInfoColumns + ` FROM bank_info WHERE is_primary = true AND status = $1 LIMIT 1`
	b, err := scanBankInfo(r.db.QueryRow(ctx, query, models.BankStatusActive))
	if err != nil {
		return nil, mapError(err, "Primary bank account")
	}
	return b, nil
}

func buildBankInfoFilter(q models.BankInfoListQuery) (string, []any) {
	var conds []string
	var args []any

	if q.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.IsPrimary != nil {
		args = append(args, *q.IsPrimary)
		conds = append(conds, fmt.Sprintf("is_primary = $%d", len(args)))
	}
	if search := common.EscapeLike(q.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(account_name ILIKE $%[1]d OR bank_name ILIKE $%[1]d OR account_number ILIKE $%[1]d OR ifsc_code ILIKE $%[1]d OR branch ILIKE $%[1]d)", n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *bankInfoRepo) List(ctx context.Context, q models.BankInfoListQuery) ([]*models.BankInfo, int, error) {
	where, args := buildBankInfoFilter(q)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bank_info`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bank accounts: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM bank_info%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bankInfoColumns, where, n+1, n+2)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	banks := []*models.BankInfo{}
	for rows.Next() {
		b, err := scanBankInfo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bank account: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, total, rows.Err()
}

func (r *bankInfoRepo) Update(ctx context.Context, bank *models.BankInfo) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if bank.IsPrimary {
			if err := unsetPrimaries(ctx, tx, bank.ID); err != nil {
				return err
			}
		}
		query := `
			UPDATE bank_info
			SET account_name = $2, bank_name = $3, account_number = $4, branch = $5, ifsc_code = $6,
				account_type = $7, is_primary = $8, status = $9, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		err := tx.QueryRow(ctx, query, bank.ID, bank.AccountName, bank.BankName, bank.AccountNumber, bank.Branch,
			bank.IFSCCode, bank.AccountType, bank.IsPrimary, bank.Status).Scan(&bank.UpdatedAt)
		return mapError(err, "Bank information")
	})
}

func (r *bankInfoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bank_info WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "Bank information")
	}
	return nil
}
