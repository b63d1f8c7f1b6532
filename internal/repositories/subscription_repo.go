package repositories

import (
	"context"
	"fmt"

	"invoicehub/internal/models"
)

const planColumns = `id, uuid, name, price, period, metadata, status, created_at, updated_at, deleted_at`

type SubscriptionPlanRepository interface {
	ListActive(ctx context.Context) ([]*models.SubscriptionPlan, error)
	GetByUUID(ctx context.Context, uuid string) (*models.SubscriptionPlan, error)
	GetByID(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
}

type subscriptionPlanRepo struct {
	db Database
}

func NewSubscriptionPlanRepo(db Database) SubscriptionPlanRepository {
	return &subscriptionPlanRepo{db: db}
}

func scanPlan(row scanner) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.UUID, &p.Name, &p.Price, &p.Period, &p.Metadata, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *subscriptionPlanRepo) ListActive(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM subscription_plans
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY price ASC
	`
	rows, err := r.db.Query(ctx, query, models.PlanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list subscription plans: %w", err)
	}
	defer rows.Close()

	plans := []*models.SubscriptionPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *subscriptionPlanRepo) GetByUUID(ctx context.Context, uuid string) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE uuid = $1 AND status = $2 AND deleted_at IS NULL`
	p, err := scanPlan(r.db.QueryRow(ctx, query, uuid, models.PlanStatusActive))
	if err != nil {
		return nil, mapError(err, "Subscription plan")
	}
	return p, nil
}

func (r *subscriptionPlanRepo) GetByID(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Subscription plan")
	}
	return p, nil
}
