package services

import (
	"context"

	"github.com/claimsys/claim_management_app/internal/core/domain"
	"github.com/claimsys/claim_management_app/internal/dto"
)

// ClaimSubmitterSvc accepts new claims.
type ClaimSubmitterSvc interface {
	// SubmitClaim validates, deduplicates and persists a claim, then attaches
	// the optional supporting document. An attachment IO fault does not fail
	// the submission; it surfaces as a warning on the result.
	SubmitClaim(ctx context.Context, req dto.SubmitClaimRequest) (*dto.SubmitClaimResult, error)
}

// ClaimReviewerSvc performs the guarded status transitions.
type ClaimReviewerSvc interface {
	// CoordinatorApprove moves Submitted to PendingReview.
	CoordinatorApprove(ctx context.Context, claimID int64) error
	// CoordinatorReject moves Submitted to Rejected.
	CoordinatorReject(ctx context.Context, claimID int64) error
	// ManagerApprove moves PendingReview to Approved.
	ManagerApprove(ctx context.Context, claimID int64) error
	// ManagerReject moves PendingReview to Rejected.
	ManagerReject(ctx context.Context, claimID int64) error
}

// ClaimReaderSvc exposes the read-only projections.
type ClaimReaderSvc interface {
	// GetClaimStatus loads a claim by id; apperrors.ErrNotFound when absent.
	GetClaimStatus(ctx context.Context, claimID int64) (*domain.Claim, error)
	// ListForCoordinator lists Submitted claims, newest first.
	ListForCoordinator(ctx context.Context) ([]domain.Claim, error)
	// ListForManager lists PendingReview claims, newest first.
	ListForManager(ctx context.Context) ([]domain.Claim, error)
	// ListRecent lists the latest claims regardless of status.
	ListRecent(ctx context.Context) ([]domain.Claim, error)
}

// ClaimSvcFacade combines all claim service interfaces.
type ClaimSvcFacade interface {
	ClaimSubmitterSvc
	ClaimReviewerSvc
	ClaimReaderSvc
}
