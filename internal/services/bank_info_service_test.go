package services

import (
	"context"
	"testing"

	"invoicehub/internal/common"
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func bankRequest() models.CreateBankInfoRequest {
	return models.CreateBankInfoRequest{
		AccountName:   " Complia Services ",
		BankName:      "HDFC Bank",
		AccountNumber: " 50200012345678 ",
		Branch:        "Paschim Vihar",
		IFSCCode:      "hdfc0001234",
		IsPrimary:     true,
	}
}

func TestBankInfoService_CreateNormalizesAndDefaults(t *testing.T) {
	repo := new(MockBankInfoRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *models.BankInfo) bool {
		return b.IFSCCode == "HDFC0001234" &&
			b.AccountNumber == "50200012345678" &&
			b.AccountName == "Complia Services" &&
			b.AccountType == models.AccountTypeSavings &&
			b.Status == models.BankStatusActive &&
			b.IsPrimary
	})).Return(nil).Once()

	bank, err := NewBankInfoService(repo).Create(context.Background(), bankRequest())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, bank.ID)
	repo.AssertExpectations(t)
}

func TestBankInfoService_CreateRejectsBadIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*models.CreateBankInfoRequest)
		field string
	}{
		{"short ifsc", func(r *models.CreateBankInfoRequest) { r.IFSCCode = "HDFC001" }, "ifsc_code"},
		{"ifsc fifth char", func(r *models.CreateBankInfoRequest) { r.IFSCCode = "HDFC1001234" }, "ifsc_code"},
		{"account letters", func(r *models.CreateBankInfoRequest) { r.AccountNumber = "12345ABC90" }, "account_number"},
		{"account short", func(r *models.CreateBankInfoRequest) { r.AccountNumber = "12345678" }, "account_number"},
		{"account type", func(r *models.CreateBankInfoRequest) { r.AccountType = "joint" }, "account_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBankInfoRepository)
			req := bankRequest()
			tt.edit(&req)

			_, err := NewBankInfoService(repo).Create(context.Background(), req)
			require.Error(t, err)
			appErr := common.AsAppError(err)
			assert.Equal(t, common.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Details, tt.field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestBankInfoService_ListPagination(t *testing.T) {
	repo := new(MockBankInfoRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(q models.BankInfoListQuery) bool {
		return q.Page == 2 && q.Limit == 10 && q.Search == "hdfc"
	})).Return([]*models.BankInfo{{ID: uuid.New()}}, 11, nil).Once()

	list, err := NewBankInfoService(repo).List(context.Background(), models.BankInfoListQuery{Page: 2, Search: " hdfc "})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, models.Pagination{Total: 11, Page: 2, Limit: 10, TotalPages: 2}, list.Pagination)
}

func TestBankInfoService_UpdatePromotesAndValidates(t *testing.T) {
	id := uuid.New()
	existing := &models.BankInfo{ID: id, AccountName: "Old", IFSCCode: "HDFC0001234", AccountType: models.AccountTypeSavings, Status: models.BankStatusActive}
	repo := new(MockBankInfoRepository)
	repo.On("GetByID", mock.Anything, id).Return(existing, nil).Once()
	repo.On("Update", mock.Anything, existing).Return(nil).Once()

	primary := true
	ifsc := " icic0000001 "
	bank, err := NewBankInfoService(repo).Update(context.Background(), id, models.UpdateBankInfoRequest{IsPrimary: &primary, IFSCCode: &ifsc})
	require.NoError(t, err)
	assert.True(t, bank.IsPrimary)
	assert.Equal(t, "ICIC0000001", bank.IFSCCode)
	repo.AssertExpectations(t)
}

func TestBankInfoService_GetPrimaryNotFound(t *testing.T) {
	repo := new(MockBankInfoRepository)
	repo.On("GetPrimary", mock.Anything).Return(nil, common.NotFound("Primary bank account")).Once()

	_, err := NewBankInfoService(repo).GetPrimary(context.Background())
	assert.True(t, common.IsKind(err, common.KindNotFound))
}
