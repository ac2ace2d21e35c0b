package models

import (
	"time"

	"settlement-pipeline/internal/model"
)

// MergedRow is one settlement period of the merged table.
// Generation and Demand are null where interpolation could not reach.
type MergedRow struct {
	SettlementDate   model.Date `json:"settlement_date"`
	SettlementPeriod int        `json:"settlement_period"`
	Generation       *float64   `json:"generation"`
	Demand           *float64   `json:"demand"`
}

// MergedResponse is returned by GET /api/v1/merged.
type MergedResponse struct {
	Rows []MergedRow `json:"rows"`
	// Count is len(Rows); Total is the number of rows matching the range
	// before the limit was applied.
	Count int `json:"count"`
	Total int `json:"total"`
}

// DatasetInfo describes one configured input or output file.
type DatasetInfo struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"` // "input" or "output"
	Path       string     `json:"path"`
	Exists     bool       `json:"exists"`
	SizeBytes  int64      `json:"size_bytes,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
