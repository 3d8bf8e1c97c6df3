package repositories

import (
	"context"

	"github.com/claimsys/claim_management_app/internal/core/domain"
)

// ClaimReader defines read operations for claim data.
type ClaimReader interface {
	// FindClaimByID retrieves a specific claim by its identifier.
	// Returns apperrors.ErrNotFound when no such claim exists.
	FindClaimByID(ctx context.Context, claimID int64) (*domain.Claim, error)

	// ExistsActiveClaim reports whether any stored claim matches the trimmed
	// lecturer name and month and is not Rejected.
	ExistsActiveClaim(ctx context.Context, lecturerName, month string) (bool, error)

	// ListClaimsByStatus retrieves up to limit claims in the given status,
	// newest first (descending claim id).
	ListClaimsByStatus(ctx context.Context, status domain.ClaimStatus, limit int) ([]domain.Claim, error)

	// ListRecentClaims retrieves up to limit claims regardless of status,
	// newest first.
	ListRecentClaims(ctx context.Context, limit int) ([]domain.Claim, error)
}

// ClaimWriter defines write operations for claim data.
type ClaimWriter interface {
	// SaveClaim persists a new claim and returns the assigned identifier.
	SaveClaim(ctx context.Context, claim domain.Claim) (int64, error)

	// UpdateClaimStatus writes newStatus only if the stored status still
	// equals expectedFrom. It reports whether the write occurred and must be
	// atomic with respect to concurrent callers.
	UpdateClaimStatus(ctx context.Context, claimID int64, expectedFrom, newStatus domain.ClaimStatus) (bool, error)

	// UpdateClaimAttachment sets both attachment names together.
	// Returns apperrors.ErrNotFound when the claim is absent.
	UpdateClaimAttachment(ctx context.Context, claimID int64, originalName, storedName string) error
}

// ClaimRepositoryFacade combines all claim repository interfaces.
type ClaimRepositoryFacade interface {
	ClaimReader
	ClaimWriter
}
