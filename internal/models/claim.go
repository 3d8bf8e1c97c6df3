package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus mirrors the domain status as the small integer stored in the
// claims table: 0 Draft, 1 Submitted, 2 PendingReview, 3 Approved, 4 Rejected.
type ClaimStatus int16

// Claim is the database-facing shape of a claim row.
type Claim struct {
	ClaimID              int64           `db:"claim_id"`
	LecturerName         string          `db:"lecturer_name"`
	Month                string          `db:"month"`
	HoursWorked          decimal.Decimal `db:"hours_worked"`
	HourlyRate           decimal.Decimal `db:"hourly_rate"`
	Notes                string          `db:"notes"`                  // Nullable
	AttachmentFileName   string          `db:"attachment_file_name"`   // Nullable
	AttachmentStoredName string          `db:"attachment_stored_name"` // Nullable
	Status               ClaimStatus     `db:"status"`
	CreatedAt            time.Time       `db:"created_at"`
	LastUpdatedAt        time.Time       `db:"last_updated_at"`
}
