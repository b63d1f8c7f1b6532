package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	minPDFBytes           = 100
	maxFilenameLength     = 200
)

var (
	pdfMagic          = []byte("%PDF-")
	unsafeFilename    = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	repeatedUnderline = regexp.MustCompile(`_{2,}`)
	pdfSuffix         = regexp.MustCompile(`(?i)\.pdf$`)
)

// UploadInput is a PDF destined for one of an invoice's document slots.
type UploadInput struct {
	InvoiceID uuid.UUID
	PDFType   models.PDFType
	Filename  string
	Data      []byte
}

type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*models.UploadResult, error)
}

type uploadService struct {
	invoices repositories.InvoiceRepository
	store    DocumentStore
	cache    caching.CacheService
	locks    *KeyedMutex
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadService(invoices repositories.InvoiceRepository, store DocumentStore, cache caching.CacheService, locks *KeyedMutex, maxBytes int64) UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &uploadService{
		invoices: invoices,
		store:    store,
		cache:    cache,
		locks:    locks,
		maxBytes: maxBytes,
		log:      logger.WithComponent("upload-service"),
	}
}

// ValidatePDF checks the signature and size bounds of a PDF payload.
func ValidatePDF(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return common.ValidationField("file", "PDF file is required")
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return common.ValidationField("file", "File is not a valid PDF")
	}
	if int64(len(data)) > maxBytes {
		return common.ValidationField("file", fmt.Sprintf("File size exceeds maximum allowed size of %.2fMB", float64(maxBytes)/1024/1024))
	}
	if len(data) < minPDFBytes {
		return common.ValidationField("file", "File is too small to be a valid PDF")
	}
	return nil
}

// SanitizeFilename strips directories and unsafe characters and forces a .pdf suffix.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		name = ""
	}
	name = unsafeFilename.ReplaceAllString(name, "_")
	name = repeatedUnderline.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	base := pdfSuffix.ReplaceAllString(name, "")
	if base == "" {
		base = "document"
	}
	return base + ".pdf"
}

// ObjectKey is the storage key of an invoice document.
func ObjectKey(pdfType models.PDFType, invoiceID uuid.UUID, filename string) string {
	return fmt.Sprintf("invoices/%s/%s/%s-%s", pdfType, invoiceID, uuid.New(), filename)
}

func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*models.UploadResult, error) {
	if in.InvoiceID == uuid.Nil {
		return nil, common.ValidationField("id", "Invoice id is required")
	}
	if !in.PDFType.Valid() {
		return nil, common.ValidationField("pdf_type", "Invalid PDF type. Must be quotation, proforma, or payment")
	}
	if err := ValidatePDF(in.Data, s.maxBytes); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(in.InvoiceID.String())
	defer unlock()

	invoice, err := s.invoices.GetByID(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	previous := common.SafeString(in.PDFType.CurrentURL(invoice))

	filename := SanitizeFilename(in.Filename)
	key := ObjectKey(in.PDFType, in.InvoiceID, filename)
	url, err := s.store.Put(ctx, key, in.Data)
	if err != nil {
		return nil, common.Internal("Failed to save PDF file", err)
	}

	if err := s.invoices.SetDocumentURL(ctx, in.InvoiceID, in.PDFType, url); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", key).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}

	if previous != "" && previous != url {
		if oldKey, ok := s.store.KeyFromURL(previous); ok {
			if err := s.store.Delete(ctx, oldKey); err != nil {
				s.log.Warn().Err(err).Str("key", oldKey).Msg("failed to remove replaced document")
			}
		}
	}

	setDocumentURL(invoice, in.PDFType, url)
	invoice.UpdatedAt = time.Now()
	s.cache.DeleteInvoice(ctx, in.InvoiceID)

	s.log.Info().
		Str("invoice_id", in.InvoiceID.String()).
		Str("pdf_type", string(in.PDFType)).
		Int("bytes", len(in.Data)).
		Msg("document stored")

	return &models.UploadResult{
		Invoice: invoice,
		File: models.StoredFile{
			URL:      url,
			Key:      key,
			Filename: filename,
			Size:     int64(len(in.Data)),
		},
	}, nil
}

func setDocumentURL(inv *models.Invoice, pdfType models.PDFType, url string) {
	switch pdfType {
	case models.PDFQuotation:
		inv.QuotationInvoicePDFURL = &url
	case models.PDFProforma:
		inv.ProformaInvoicePDFURL = &url
	case models.PDFPayment:
		inv.PaymentInvoicePDFURL = &url
	}
}
