package repositories

import (
	"context"
	"errors"

	"invoicehub/internal/common"
	"invoicehub/internal/models"

	"github.com/jackc/pgx/v5"
)

const gstInfoColumns = `id, gst_number, status, gst_data, requested_at, completed_at, created_at, updated_at`

type GSTInfoRepository interface {
	GetByNumber(ctx context.Context, gstNumber string) (*models.GSTInfo, error)
	// CreateRequested inserts a pending record. When another caller already
	// inserted the same number the existing row is returned instead.
	CreateRequested(ctx context.Context, info *models.GSTInfo) (*models.GSTInfo, error)
}

type gstInfoRepo struct {
	db Database
}

func NewGSTInfoRepo(db Database) GSTInfoRepository {
	return &gstInfoRepo{db: db}
}

func scanGSTInfo(row scanner) (*models.GSTInfo, error) {
	g := &models.GSTInfo{}
	if err := row.Scan(&g.ID, &g.GSTNumber, &g.Status, &g.GSTData, &g.RequestedAt, &g.CompletedAt,
		&g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *gstInfoRepo) GetByNumber(ctx context.Context, gstNumber string) (*models.GSTInfo, error) {
	query := `SELECT ` + gstInfoColumns + ` FROM gst_info WHERE gst_number = $1`
	g, err := scanGSTInfo(r.db.QueryRow(ctx, query, gstNumber))
	if err != nil {
		return nil, mapError(err, "GST record")
	}
	return g, nil
}

func (r *gstInfoRepo) CreateRequested(ctx context.Context, info *models.GSTInfo) (*models.GSTInfo, error) {
	query := `
		INSERT INTO gst_info (id, gst_number, status, requested_at, created_at, updated_at)
		VALUES ($1, $2, FALSE, NOW(), NOW(), NOW())
		ON CONFLICT (gst_number) DO NOTHING
		RETURNING ` + gstInfoColumns
	g, err := scanGSTInfo(r.db.QueryRow(ctx, query, info.ID, info.GSTNumber))
	if err == nil {
		return g, nil
	}
	if errors.Is(err, pgx.ErrNoRows) || IsUniqueViolation(err) {
		existing, getErr := r.GetByNumber(ctx, info.GSTNumber)
		if getErr != nil {
			return nil, getErr
		}
		return existing, nil
	}
	return nil, common.Internal("create GST record", err)
}
