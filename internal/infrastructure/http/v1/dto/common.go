// Package dto provides request bodies for the API. Responses are the
// domain entities themselves: their json tags are the wire contract.
package dto

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetDeletionMarkRequest toggles the deletion mark.
type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}

// AdvanceRequest moves a document to its next lifecycle status.
type AdvanceRequest struct {
	Status string `json:"status" binding:"required"`
}
