package services

import (
	"context"
	"strings"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultBankLimit = 10
	maxBankLimit     = 100
)

// BankInfoService manages the seller's bank accounts shown on proformas.
type BankInfoService interface {
	Create(ctx context.Context, req models.CreateBankInfoRequest) (*models.BankInfo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.BankInfo, error)
	GetPrimary(ctx context.Context) (*models.BankInfo, error)
	List(ctx context.Context, query models.BankInfoListQuery) (*models.BankInfoList, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateBankInfoRequest) (*models.BankInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bankInfoService struct {
	repo repositories.BankInfoRepository
	log  zerolog.Logger
}

func NewBankInfoService(repo repositories.BankInfoRepository) BankInfoService {
	return &bankInfoService{repo: repo, log: logger.WithComponent("bank-info-service")}
}

func validAccountType(t string) bool {
	switch t {
	case models.AccountTypeSavings, models.AccountTypeCurrent, models.AccountTypeSalary, models.AccountTypeOther:
		return true
	}
	return false
}

func validBankStatus(s string) bool {
	switch s {
	case models.BankStatusActive, models.BankStatusInactive, models.BankStatusClosed:
		return true
	}
	return false
}

func (s *bankInfoService) Create(ctx context.Context, req models.CreateBankInfoRequest) (*models.BankInfo, error) {
	ifsc, err := common.NormalizeIFSC(req.IFSCCode)
	if err != nil {
		return nil, err
	}
	account, err := common.NormalizeAccountNumber(req.AccountNumber)
	if err != nil {
		return nil, err
	}

	bank := &models.BankInfo{
		ID:            uuid.New(),
		AccountName:   strings.TrimSpace(req.AccountName),
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: account,
		Branch:        strings.TrimSpace(req.Branch),
		IFSCCode:      ifsc,
		AccountType:   orDefault(req.AccountType, models.AccountTypeSavings),
		IsPrimary:     req.IsPrimary,
		Status:        orDefault(req.Status, models.BankStatusActive),
	}
	if len(bank.AccountName) < 2 {
		return nil, common.ValidationField("account_name", "Account name must be at least 2 characters")
	}
	if bank.BankName == "" {
		return nil, common.ValidationField("bank_name", "Bank name is required")
	}
	if bank.Branch == "" {
		return nil, common.ValidationField("branch", "Branch is required")
	}
	if !validAccountType(bank.AccountType) {
		return nil, common.ValidationField("account_type", "Invalid account type")
	}
	if !validBankStatus(bank.Status) {
		return nil, common.ValidationField("status", "Invalid status")
	}

	if err := s.repo.Create(ctx, bank); err != nil {
		return nil, err
	}
	s.log.Info().Str("bank_info_id", bank.ID.String()).Bool("primary", bank.IsPrimary).Msg("bank account created")
	return bank, nil
}

func (s *bankInfoService) GetByID(ctx context.Context, id uuid.UUID) (*models.BankInfo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bankInfoService) GetPrimary(ctx context.Context) (*models.BankInfo, error) {
	return s.repo.GetPrimary(ctx)
}

func (s *bankInfoService) List(ctx context.Context, q models.BankInfoListQuery) (*models.BankInfoList, error) {
	q.Page, q.Limit = common.ValidatePaginationParams(q.Page, q.Limit, defaultBankLimit, maxBankLimit)
	q.Search = strings.TrimSpace(q.Search)

	banks, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.BankInfoList{
		Data: banks,
		Pagination: models.Pagination{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: common.TotalPages(total, q.Limit),
		},
	}, nil
}

func (s *bankInfoService) Update(ctx context.Context, id uuid.UUID, req models.UpdateBankInfoRequest) (*models.BankInfo, error) {
	bank, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IFSCCode != nil {
		if bank.IFSCCode, err = common.NormalizeIFSC(*req.IFSCCode); err != nil {
			return nil, err
		}
	}
	if req.AccountNumber != nil {
		if bank.AccountNumber, err = common.NormalizeAccountNumber(*req.AccountNumber); err != nil {
			return nil, err
		}
	}
	if err := applyText(&bank.AccountName, req.AccountName, "account_name"); err != nil {
		return nil, err
	}
	if err := applyText(&bank.BankName, req.BankName, "bank_name"); err != nil {
		return nil, err
	}
	if err := applyText(&bank.Branch, req.Branch, "branch"); err != nil {
		return nil, err
	}
	if req.AccountType != nil {
		if !validAccountType(*req.AccountType) {
			return nil, common.ValidationField("account_type", "Invalid account type")
		}
		bank.AccountType = *req.AccountType
	}
	if req.Status != nil {
		if !validBankStatus(*req.Status) {
			return nil, common.ValidationField("status", "Invalid status")
		}
		bank.Status = *req.Status
	}
	if req.IsPrimary != nil {
		bank.IsPrimary = *req.IsPrimary
	}

	if err := s.repo.Update(ctx, bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func (s *bankInfoService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("bank_info_id", id.String()).Msg("bank account deleted")
	return nil
}
