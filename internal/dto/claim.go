package dto

import (
	"io"
	"time"

	"github.com/claimsys/claim_management_app/internal/core/domain"
)

// SubmitClaimForm is the multipart form shape bound by the request surface.
// Hours and rate arrive as raw strings so the original input can be echoed
// back on validation failure; the service parses them into decimals.
type SubmitClaimForm struct {
	LecturerName string `form:"lecturerName" binding:"required,max=120"`
	Month        string `form:"month" binding:"required,max=40"`
	HoursWorked  string `form:"hoursWorked" binding:"required"`
	HourlyRate   string `form:"hourlyRate" binding:"required"`
	Notes        string `form:"notes" binding:"max=500"`
}

// AttachmentUpload carries an optional supporting document into the service.
type AttachmentUpload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// SubmitClaimRequest is the service-level submission input.
type SubmitClaimRequest struct {
	LecturerName string
	Month        string
	HoursWorked  string
	HourlyRate   string
	Notes        string
	Attachment   *AttachmentUpload
}

// SubmitClaimResult reports a persisted claim. Warning is non-empty when the
// claim was stored but its attachment could not be saved.
type SubmitClaimResult struct {
	ClaimID int64
	Warning string
}

// ClaimResponse is the full projection used by the HTML views.
type ClaimResponse struct {
	ClaimID            int64     `json:"claimID"`
	LecturerName       string    `json:"lecturerName"`
	Month              string    `json:"month"`
	HoursWorked        string    `json:"hoursWorked"`
	HourlyRate         string    `json:"hourlyRate"`
	TotalAmount        string    `json:"totalAmount"`
	Notes              string    `json:"notes"`
	AttachmentFileName string    `json:"attachmentFileName"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ClaimStatusJSONResponse is the minimal JSON projection of a claim.
type ClaimStatusJSONResponse struct {
	ID       int64  `json:"id"`
	Lecturer string `json:"lecturer"`
	Month    string `json:"month"`
	Status   string `json:"status"`
}

// ToClaimResponse converts a domain.Claim to its view projection.
// Amounts are rounded to two places for display only.
func ToClaimResponse(c *domain.Claim) ClaimResponse {
	return ClaimResponse{
		ClaimID:            c.ClaimID,
		LecturerName:       c.LecturerName,
		Month:              c.Month,
		HoursWorked:        c.HoursWorked.StringFixed(2),
		HourlyRate:         c.HourlyRate.StringFixed(2),
		TotalAmount:        c.CalculateTotalAmount().StringFixed(2),
		Notes:              c.Notes,
		AttachmentFileName: c.AttachmentFileName,
		Status:             c.Status.String(),
		CreatedAt:          c.CreatedAt,
	}
}

// ToListClaimResponse converts a slice of domain.Claim to view projections.
func ToListClaimResponse(claims []domain.Claim) []ClaimResponse {
	res := make([]ClaimResponse, len(claims))
	for i := range claims {
		res[i] = ToClaimResponse(&claims[i])
	}
	return res
}

// ToClaimStatusJSONResponse converts a domain.Claim to the JSON projection.
func ToClaimStatusJSONResponse(c *domain.Claim) ClaimStatusJSONResponse {
	return ClaimStatusJSONResponse{
		ID:       c.ClaimID,
		Lecturer: c.LecturerName,
		Month:    c.Month,
		Status:   c.Status.String(),
	}
}
