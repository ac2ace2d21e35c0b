package models

// MergedQuery are the query parameters of GET /api/v1/merged.
// Start and End are inclusive YYYY-MM-DD dates; Limit 0 means no limit.
type MergedQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
	Limit int    `form:"limit" binding:"omitempty,min=0"`
}
