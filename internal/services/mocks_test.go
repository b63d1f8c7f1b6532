package services

import (
	"context"
	"time"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, query models.InvoiceListQuery) ([]*models.Invoice, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepository) IssueProforma(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, payment models.PaymentDetails) (bool, error) {
	args := m.Called(ctx, id, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) MarkExpired(ctx context.Context, id uuid.UUID, linkID string) (bool, error) {
	args := m.Called(ctx, id, linkID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) SetDocumentURL(ctx context.Context, id uuid.UUID, pdfType models.PDFType, url string) error {
	args := m.Called(ctx, id, pdfType, url)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ListExpiredPaymentLinks(ctx context.Context, before time.Time, limit int) ([]models.LapsedPaymentLink, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LapsedPaymentLink), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockDocumentStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL("https://cdn.test/invoices", url)
}

func (m *MockDocumentStore) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockRazorpayService struct {
	mock.Mock
}

func (m *MockRazorpayService) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*models.PaymentLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentLink), args.Error(1)
}

func (m *MockRazorpayService) CancelPaymentLink(ctx context.Context, paymentLinkID string) error {
	args := m.Called(ctx, paymentLinkID)
	return args.Error(0)
}

func (m *MockRazorpayService) FetchPayment(ctx context.Context, paymentID string) (*PaymentEntity, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentEntity), args.Error(1)
}

func (m *MockRazorpayService) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return VerifyHMACSignature("whsec_test", rawBody, signature)
}

type MockGSTInfoRepository struct {
	mock.Mock
}

func (m *MockGSTInfoRepository) GetByNumber(ctx context.Context, gstNumber string) (*models.GSTInfo, error) {
	args := m.Called(ctx, gstNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GSTInfo), args.Error(1)
}

func (m *MockGSTInfoRepository) CreateRequested(ctx context.Context, info *models.GSTInfo) (*models.GSTInfo, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GSTInfo), args.Error(1)
}

type MockBankInfoRepository struct {
	mock.Mock
}

func (m *MockBankInfoRepository) Create(ctx context.Context, bank *models.BankInfo) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockBankInfoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BankInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankInfo), args.Error(1)
}

func (m *MockBankInfoRepository) GetPrimary(ctx context.Context) (*models.BankInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankInfo), args.Error(1)
}

func (m *MockBankInfoRepository) List(ctx context.Context, query models.BankInfoListQuery) ([]*models.BankInfo, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.BankInfo), args.Int(1), args.Error(2)
}

func (m *MockBankInfoRepository) Update(ctx context.Context, bank *models.BankInfo) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockBankInfoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSubscriptionPlanRepository struct {
	mock.Mock
}

func (m *MockSubscriptionPlanRepository) ListActive(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionPlan), args.Error(1)
}

func (m *MockSubscriptionPlanRepository) GetByUUID(ctx context.Context, planUUID string) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, planUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *MockSubscriptionPlanRepository) GetByID(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}
