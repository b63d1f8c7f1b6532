package services

import (
	"context"
	"strings"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"
)

// SubscriptionPlanService exposes the sellable plans an invoice can reference.
type SubscriptionPlanService interface {
	ListActive(ctx context.Context) ([]*models.SubscriptionPlan, error)
	GetByUUID(ctx context.Context, planUUID string) (*models.SubscriptionPlan, error)
}

type subscriptionPlanService struct {
	repo repositories.SubscriptionPlanRepository
}

func NewSubscriptionPlanService(repo repositories.SubscriptionPlanRepository) SubscriptionPlanService {
	return &subscriptionPlanService{repo: repo}
}

func (s *subscriptionPlanService) ListActive(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*models.SubscriptionPlan{}
	}
	return plans, nil
}

// GetByUUID returns the plan only while it is active.
func (s *subscriptionPlanService) GetByUUID(ctx context.Context, planUUID string) (*models.SubscriptionPlan, error) {
	planUUID = strings.TrimSpace(planUUID)
	if planUUID == "" {
		return nil, common.ValidationField("uuid", "Plan uuid is required")
	}
	plan, err := s.repo.GetByUUID(ctx, planUUID)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanStatusActive || plan.DeletedAt != nil {
		return nil, common.NotFound("Subscription plan")
	}
	return plan, nil
}
