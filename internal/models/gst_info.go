package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GSTInfo is a GST verification record. The external verifier flips Status
// and fills GSTData once; this service only creates and reads rows.
type GSTInfo struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	GSTNumber   string          `json:"gst_number" db:"gst_number"`
	Status      bool            `json:"status" db:"status"`
	GSTData     json.RawMessage `json:"gst_data" db:"gst_data"`
	RequestedAt time.Time       `json:"requested_at" db:"requested_at"`
	CompletedAt *time.Time      `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the verifier has populated the record.
func (g *GSTInfo) Completed() bool {
	return g != nil && g.Status && len(g.GSTData) > 0 && string(g.GSTData) != "null"
}

type GSTVerifyRequest struct {
	GSTNumber string `json:"gst_number" validate:"required"`
}
