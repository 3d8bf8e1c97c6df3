package domain

import (
	"github.com/shopspring/decimal"
)

// ClaimStatus is the lifecycle state of a claim. The zero value is Draft,
// which only exists on in-memory claims that have not been submitted yet.
type ClaimStatus int16

const (
	Draft ClaimStatus = iota
	Submitted
	PendingReview
	Approved
	Rejected
)

func (s ClaimStatus) String() string {
	switch s {
	case Draft:
		return "Draft"
	case Submitted:
		return "Submitted"
	case PendingReview:
		return "PendingReview"
	case Approved:
		return "Approved"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition can leave this status.
func (s ClaimStatus) IsTerminal() bool {
	return s == Approved || s == Rejected
}

// Claim represents a lecturer's monthly hours-and-rate submission within the
// core domain. This is the primary representation used by services.
type Claim struct {
	ClaimID              int64           `json:"claimID"` // Assigned by the repository on insert
	LecturerName         string          `json:"lecturerName"`
	Month                string          `json:"month"` // Human label such as "March 2025", not parsed
	HoursWorked          decimal.Decimal `json:"hoursWorked"`
	HourlyRate           decimal.Decimal `json:"hourlyRate"`
	Notes                string          `json:"notes"`                // Empty means no notes
	AttachmentFileName   string          `json:"attachmentFileName"`   // As uploaded, display only
	AttachmentStoredName string          `json:"attachmentStoredName"` // Opaque on-disk name
	Status               ClaimStatus     `json:"status"`
	AuditFields
}

// HasAttachment reports whether attachment metadata is present.
// Both names are set together or not at all.
func (c *Claim) HasAttachment() bool {
	return c.AttachmentFileName != "" && c.AttachmentStoredName != ""
}

// CalculateTotalAmount returns hoursWorked multiplied by hourlyRate exactly.
// Rounding to two places is a display concern and happens in the DTO layer.
func (c *Claim) CalculateTotalAmount() decimal.Decimal {
	return c.HoursWorked.Mul(c.HourlyRate)
}
