package models

import (
	"time"

	"github.com/google/uuid"
)

// Bank account types and statuses.
const (
	AccountTypeSavings = "savings"
	AccountTypeCurrent = "current"
	AccountTypeSalary  = "salary"
	AccountTypeOther   = "other"

	BankStatusActive   = "active"
	BankStatusInactive = "inactive"
	BankStatusClosed   = "closed"
)

type BankInfo struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AccountName   string    `json:"account_name" db:"account_name"`
	BankName      string    `json:"bank_name" db:"bank_name"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	Branch        string    `json:"branch" db:"branch"`
	IFSCCode      string    `json:"ifsc_code" db:"ifsc_code"`
	AccountType   string    `json:"account_type" db:"account_type"`
	IsPrimary     bool      `json:"is_primary" db:"is_primary"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type CreateBankInfoRequest struct {
	AccountName   string `json:"account_name" validate:"required,min=2,max=100"`
	BankName      string `json:"bank_name" validate:"required,max=100"`
	AccountNumber string `json:"account_number" validate:"required"`
	Branch        string `json:"branch" validate:"required,max=100"`
	IFSCCode      string `json:"ifsc_code" validate:"required"`
	AccountType   string `json:"account_type" validate:"omitempty,oneof=savings current salary other"`
	IsPrimary     bool   `json:"is_primary"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive closed"`
}

type UpdateBankInfoRequest struct {
	AccountName   *string `json:"account_name" validate:"omitempty,min=2,max=100"`
	BankName      *string `json:"bank_name" validate:"omitempty,max=100"`
	AccountNumber *string `json:"account_number"`
	Branch        *string `json:"branch" validate:"omitempty,max=100"`
	IFSCCode      *string `json:"ifsc_code"`
	AccountType   *string `json:"account_type" validate:"omitempty,oneof=savings current salary other"`
	IsPrimary     *bool   `json:"is_primary"`
	Status        *string `json:"status" validate:"omitempty,oneof=active inactive closed"`
}

type BankInfoListQuery struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Status    string `query:"status"`
	IsPrimary *bool
	Search    string `query:"search"`
}

// Pagination describes a page of results.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type BankInfoList struct {
	Data       []*BankInfo `json:"data"`
	Pagination Pagination  `json:"pagination"`
}
