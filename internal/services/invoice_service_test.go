package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/calculator"
	"invoicehub/internal/common"
	"invoicehub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type InvoiceServiceTestSuite struct {
	suite.Suite
	repo     *MockInvoiceRepository
	razorpay *MockRazorpayService
	store    *MockDocumentStore
	service  InvoiceService
	ctx      context.Context
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.repo = new(MockInvoiceRepository)
	suite.razorpay = new(MockRazorpayService)
	suite.store = new(MockDocumentStore)
	suite.service = NewInvoiceService(suite.repo, suite.razorpay, suite.store, caching.NewNoopCache(), NewKeyedMutex(),
		InvoiceOptions{Now: func() time.Time { return fixedNow }})
	suite.ctx = context.Background()
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.razorpay.AssertExpectations(suite.T())
	suite.store.AssertExpectations(suite.T())
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func createRequest() models.CreateInvoiceRequest {
	return models.CreateInvoiceRequest{
		CompanyName:    " Acme Corp ",
		ContactPerson:  "Jane Doe",
		Phone:          "09876543210",
		Email:          "Jane@Acme.test",
		Address:        "12 Main Road",
		PlatformCharge: 1000,
		WalletRecharge: 500,
		AdditionalFee:  []calculator.Fee{{Description: "Onboarding", Amount: 500}},
		Discount:       10,
		GST:            18,
	}
}

func proformaInvoice() *models.Invoice {
	return &models.Invoice{
		ID:              uuid.New(),
		ContactPerson:   "Jane Doe",
		Email:           "jane@acme.test",
		Phone:           "9876543210",
		Total:           2124,
		QuotationNumber: "QI1710498600000123",
		Status:          models.StatusProformaIssued,
		PaymentStatus:   models.PaymentUnpaid,
		PaymentURL:      &models.PaymentLink{PaymentLinkID: "plink_1", ShortURL: "https://rzp.io/i/x"},
	}
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceCalculatesAndDefaults() {
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil).Once()

	inv, err := suite.service.CreateInvoice(suite.ctx, createRequest(), models.CreatedBy{ID: "u1", Name: "Ops"})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Acme Corp", inv.CompanyName)
	assert.Equal(suite.T(), "jane@acme.test", inv.Email)
	assert.Equal(suite.T(), DefaultSignature, inv.Signature)
	assert.Equal(suite.T(), DefaultDesignation, inv.Designation)
	assert.Equal(suite.T(), 2000.0, inv.SubTotal)
	assert.Equal(suite.T(), 200.0, inv.DiscountAmount)
	assert.Equal(suite.T(), 1800.0, inv.AmountAfterDiscount)
	assert.Equal(suite.T(), 324.0, inv.GSTAmount)
	assert.Equal(suite.T(), 2124.0, inv.Total)
	assert.True(suite.T(), strings.HasPrefix(inv.QuotationNumber, "QI1710498600000"))
	assert.Equal(suite.T(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), inv.QuotationDate)
	assert.Equal(suite.T(), time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC), inv.QuotationValidUntilDate)
	assert.Equal(suite.T(), models.StatusQuotation, inv.Status)
	assert.Equal(suite.T(), models.PaymentUnpaid, inv.PaymentStatus)
	assert.Equal(suite.T(), "u1", inv.CreatedBy.ID)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceUsesCallerValidity() {
	req := createRequest()
	req.QuotationValidUntilDate = "2024-05-01"
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(nil).Once()

	inv, err := suite.service.CreateInvoice(suite.ctx, req, models.CreatedBy{ID: "u1"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), inv.QuotationValidUntilDate)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceRejectsMissingFields() {
	req := createRequest()
	req.Address = "  "

	_, err := suite.service.CreateInvoice(suite.ctx, req, models.CreatedBy{ID: "u1"})
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceRetriesOnNumberCollision() {
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(common.Conflict("Quotation number already exists")).Once()
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.CreateInvoice(suite.ctx, createRequest(), models.CreatedBy{ID: "u1"})
	assert.NoError(suite.T(), err)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceSurfacesSecondCollision() {
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(common.Conflict("Quotation number already exists")).Twice()

	_, err := suite.service.CreateInvoice(suite.ctx, createRequest(), models.CreatedBy{ID: "u1"})
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *InvoiceServiceTestSuite) TestListInvoicesNormalizesPaging() {
	suite.repo.On("List", suite.ctx, mock.MatchedBy(func(q models.InvoiceListQuery) bool {
		return q.Page == 1 && q.Limit == 100
	})).Return([]*models.Invoice{{ID: uuid.New()}}, 250, nil).Once()

	list, err := suite.service.ListInvoices(suite.ctx, models.InvoiceListQuery{Page: -2, Limit: 500})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, list.TotalPages)
	assert.Equal(suite.T(), 1, list.CurrentPage)
	assert.Equal(suite.T(), 250, list.TotalInvoices)
}

func (suite *InvoiceServiceTestSuite) TestUpdateRecalculatesFinancials() {
	inv := &models.Invoice{ID: uuid.New(), PlatformCharge: 1000, GST: 18, Status: models.StatusQuotation, PaymentStatus: models.PaymentUnpaid}
	discount := calculator.Number(250)
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.repo.On("Update", suite.ctx, inv).Return(nil).Once()

	updated, err := suite.service.UpdateInvoice(suite.ctx, inv.ID, models.UpdateInvoiceRequest{Discount: &discount})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 250.0, updated.DiscountAmount)
	assert.Equal(suite.T(), 750.0, updated.AmountAfterDiscount)
	assert.Equal(suite.T(), 135.0, updated.GSTAmount)
	assert.Equal(suite.T(), 885.0, updated.Total)
}

func (suite *InvoiceServiceTestSuite) TestUpdateRefusesChargeEditOnPaidInvoice() {
	inv := &models.Invoice{ID: uuid.New(), Status: models.StatusPaid, PaymentStatus: models.PaymentPaid}
	charge := calculator.Number(10)
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()

	_, err := suite.service.UpdateInvoice(suite.ctx, inv.ID, models.UpdateInvoiceRequest{SetupFee: &charge})
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
	suite.repo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestUpdateAllowsContactEditOnPaidInvoice() {
	inv := &models.Invoice{ID: uuid.New(), Status: models.StatusPaid, PaymentStatus: models.PaymentPaid, Total: 100}
	address := "New address"
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.repo.On("Update", suite.ctx, inv).Return(nil).Once()

	updated, err := suite.service.UpdateInvoice(suite.ctx, inv.ID, models.UpdateInvoiceRequest{Address: &address})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New address", updated.Address)
	assert.Equal(suite.T(), 100.0, updated.Total)
}

func (suite *InvoiceServiceTestSuite) TestDeleteCancelsLinkAndRemovesDocuments() {
	inv := proformaInvoice()
	quote := "https://cdn.test/invoices/invoices/quotation/" + inv.ID.String() + "/a.pdf"
	inv.QuotationInvoicePDFURL = &quote

	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.razorpay.On("CancelPaymentLink", suite.ctx, "plink_1").Return(errors.New("already cancelled")).Once()
	suite.repo.On("Delete", suite.ctx, inv.ID).Return(nil).Once()
	suite.store.On("Delete", suite.ctx, "invoices/quotation/"+inv.ID.String()+"/a.pdf").Return(nil).Once()

	assert.NoError(suite.T(), suite.service.DeleteInvoice(suite.ctx, inv.ID))
}

func (suite *InvoiceServiceTestSuite) TestDeleteMissingInvoice() {
	id := uuid.New()
	suite.repo.On("GetByID", suite.ctx, id).Return(nil, common.NotFound("Invoice")).Once()

	err := suite.service.DeleteInvoice(suite.ctx, id)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *InvoiceServiceTestSuite) TestGenerateProformaIssuesLink() {
	inv := proformaInvoice()
	inv.Status = models.StatusQuotation
	inv.PaymentURL = nil
	expires := fixedNow.Add(DefaultLinkExpiry)
	link := &models.PaymentLink{PaymentLinkID: "plink_new", ShortURL: "https://rzp.io/i/new", ReferenceID: inv.ID.String(), Amount: 212400, ExpiresAt: expires}

	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.razorpay.On("CreatePaymentLink", suite.ctx, mock.MatchedBy(func(req PaymentLinkRequest) bool {
		return req.InvoiceID == inv.ID.String() &&
			req.Amount == 2124 &&
			req.Currency == "INR" &&
			req.CustomerPhone == "+919876543210" &&
			req.ExpireBy.Equal(expires) &&
			req.Notes["quotation_number"] == inv.QuotationNumber
	})).Return(link, nil).Once()
	suite.repo.On("IssueProforma", suite.ctx, inv).Return(nil).Once()

	issued, err := suite.service.GenerateProforma(suite.ctx, inv.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), strings.HasPrefix(*issued.ProformaNumber, "PI"))
	assert.Equal(suite.T(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *issued.ProformaDate)
	assert.Equal(suite.T(), expires, *issued.ProformaValidUntilDate)
	assert.Equal(suite.T(), "plink_new", issued.PaymentURL.PaymentLinkID)
}

func (suite *InvoiceServiceTestSuite) TestGenerateProformaGatewayFailurePersistsNothing() {
	inv := proformaInvoice()
	inv.Status = models.StatusQuotation
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.razorpay.On("CreatePaymentLink", suite.ctx, mock.Anything).Return(nil, common.Gateway("Payment gateway error", nil)).Once()

	_, err := suite.service.GenerateProforma(suite.ctx, inv.ID)
	assert.True(suite.T(), common.IsKind(err, common.KindGateway))
	suite.repo.AssertNotCalled(suite.T(), "IssueProforma", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestGenerateProformaPersistenceFailureCancelsLink() {
	inv := proformaInvoice()
	inv.Status = models.StatusExpired
	link := &models.PaymentLink{PaymentLinkID: "plink_orphan", ShortURL: "https://rzp.io/i/o", ExpiresAt: fixedNow}

	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.razorpay.On("CreatePaymentLink", suite.ctx, mock.Anything).Return(link, nil).Once()
	suite.repo.On("IssueProforma", suite.ctx, inv).Return(errors.New("connection reset")).Once()
	suite.razorpay.On("CancelPaymentLink", mock.Anything, "plink_orphan").Return(nil).Once()

	_, err := suite.service.GenerateProforma(suite.ctx, inv.ID)
	assert.Error(suite.T(), err)
}

func (suite *InvoiceServiceTestSuite) TestGenerateProformaRejectsPaidInvoice() {
	inv := proformaInvoice()
	inv.Status = models.StatusPaid
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()

	_, err := suite.service.GenerateProforma(suite.ctx, inv.ID)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *InvoiceServiceTestSuite) TestGenerateProformaRejectsBadPhone() {
	inv := proformaInvoice()
	inv.Status = models.StatusQuotation
	inv.Phone = "12"
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()

	_, err := suite.service.GenerateProforma(suite.ctx, inv.ID)
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
	suite.razorpay.AssertNotCalled(suite.T(), "CreatePaymentLink", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestMarkPaidRecordsPayment() {
	inv := proformaInvoice()
	paid := *inv
	paid.Status = models.StatusPaid
	paid.PaymentStatus = models.PaymentPaid
	paymentID := "pay_1"
	paid.PaymentID = &paymentID

	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()
	suite.repo.On("MarkPaid", suite.ctx, inv.ID, mock.MatchedBy(func(p models.PaymentDetails) bool {
		return p.PaymentID == "pay_1" && p.PaidAt.Equal(fixedNow)
	})).Return(true, nil).Once()
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(&paid, nil).Once()

	updated, changed, err := suite.service.MarkPaid(suite.ctx, inv.ID, models.PaymentDetails{PaymentID: "pay_1", RazorpayPaymentID: "pay_1", Method: "upi"})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), changed)
	assert.Equal(suite.T(), models.StatusPaid, updated.Status)
}

func (suite *InvoiceServiceTestSuite) TestMarkPaidIsIdempotent() {
	inv := proformaInvoice()
	paymentID := "pay_1"
	inv.Status = models.StatusPaid
	inv.PaymentStatus = models.PaymentPaid
	inv.PaymentID = &paymentID
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Twice()

	for _, incoming := range []string{"pay_1", "pay_other"} {
		got, changed, err := suite.service.MarkPaid(suite.ctx, inv.ID, models.PaymentDetails{PaymentID: incoming})
		require.NoError(suite.T(), err)
		assert.False(suite.T(), changed)
		assert.Equal(suite.T(), "pay_1", *got.PaymentID)
	}
	suite.repo.AssertNotCalled(suite.T(), "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestMarkPaidAfterExpiry() {
	inv := proformaInvoice()
	inv.Status = models.StatusExpired
	inv.PaymentStatus = models.PaymentExpired
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Twice()
	suite.repo.On("MarkPaid", suite.ctx, inv.ID, mock.Anything).Return(true, nil).Once()

	_, changed, err := suite.service.MarkPaid(suite.ctx, inv.ID, models.PaymentDetails{PaymentID: "pay_late"})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), changed)
}

func (suite *InvoiceServiceTestSuite) TestMarkPaidRejectsQuotation() {
	inv := proformaInvoice()
	inv.Status = models.StatusQuotation
	suite.repo.On("GetByID", suite.ctx, inv.ID).Return(inv, nil).Once()

	_, _, err := suite.service.MarkPaid(suite.ctx, inv.ID, models.PaymentDetails{PaymentID: "pay_1"})
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *InvoiceServiceTestSuite) TestExpireOverdueLinksContinuesPastFailures() {
	first, second, third := uuid.New(), uuid.New(), uuid.New()
	suite.repo.On("ListExpiredPaymentLinks", suite.ctx, fixedNow, 50).Return([]models.LapsedPaymentLink{
		{InvoiceID: first, PaymentLinkID: "plink_a"},
		{InvoiceID: second, PaymentLinkID: "plink_b"},
		{InvoiceID: third, PaymentLinkID: "plink_c"},
	}, nil).Once()
	suite.repo.On("MarkExpired", suite.ctx, first, "plink_a").Return(true, nil).Once()
	suite.repo.On("MarkExpired", suite.ctx, second, "plink_b").Return(false, errors.New("deadlock")).Once()
	suite.repo.On("MarkExpired", suite.ctx, third, "plink_c").Return(false, nil).Once()

	n, err := suite.service.ExpireOverdueLinks(suite.ctx, fixedNow, 50)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, n)
}

func (suite *InvoiceServiceTestSuite) TestMarkExpiredRequiresLinkID() {
	_, err := suite.service.MarkExpired(suite.ctx, uuid.New(), "")
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
	suite.repo.AssertNotCalled(suite.T(), "MarkExpired", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateProformaInvalidatesAnalytics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	cache := caching.NewRedisCacheService(client, time.Minute)
	statsKey := caching.AnalyticsKey("dashboard", "all")
	cache.SetJSON(ctx, statsKey, map[string]int{"proforma_issued": 0}, time.Minute)
	require.True(t, mr.Exists(statsKey))

	inv := proformaInvoice()
	inv.Status = models.StatusQuotation
	inv.PaymentURL = nil
	repo := new(MockInvoiceRepository)
	razorpay := new(MockRazorpayService)
	repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil).Once()
	razorpay.On("CreatePaymentLink", mock.Anything, mock.Anything).
		Return(&models.PaymentLink{PaymentLinkID: "plink_new", ExpiresAt: fixedNow.Add(DefaultLinkExpiry)}, nil).Once()
	repo.On("IssueProforma", mock.Anything, inv).Return(nil).Once()

	svc := NewInvoiceService(repo, razorpay, new(MockDocumentStore), cache, NewKeyedMutex(),
		InvoiceOptions{Now: func() time.Time { return fixedNow }})
	_, err := svc.GenerateProforma(ctx, inv.ID)
	require.NoError(t, err)

	assert.False(t, mr.Exists(statsKey))
	repo.AssertExpectations(t)
	razorpay.AssertExpectations(t)
}
