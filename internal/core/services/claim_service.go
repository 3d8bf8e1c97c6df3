package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claimsys/claim_management_app/internal/apperrors"
	"github.com/claimsys/claim_management_app/internal/core/domain"
	portsrepo "github.com/claimsys/claim_management_app/internal/core/ports/repositories"
	portssvc "github.com/claimsys/claim_management_app/internal/core/ports/services"
	"github.com/claimsys/claim_management_app/internal/dto"
	"github.com/claimsys/claim_management_app/internal/middleware"
	"github.com/claimsys/claim_management_app/internal/utils/docrules"
	"github.com/shopspring/decimal"
)

const recentClaimsLimit = 100

// Bounds from the claim data model. Hours and rate are fixed-point with two
// fractional digits.
var (
	minHours = decimal.RequireFromString("0.5")
	maxHours = decimal.RequireFromString("9999.5")
	minRate  = decimal.NewFromInt(1)
	maxRate  = decimal.NewFromInt(1_000_000)
)

// transitionEdge describes one guarded move in the claim lifecycle. The
// failure message names the only prior state the edge accepts.
type transitionEdge struct {
	name       string
	from       domain.ClaimStatus
	to         domain.ClaimStatus
	failureMsg string
}

var (
	edgeCoordinatorApprove = transitionEdge{
		name: "coordinatorApprove", from: domain.Submitted, to: domain.PendingReview,
		failureMsg: "Only newly submitted claims can be forwarded for manager review.",
	}
	edgeCoordinatorReject = transitionEdge{
		name: "coordinatorReject", from: domain.Submitted, to: domain.Rejected,
		failureMsg: "Only newly submitted claims can be rejected by the coordinator.",
	}
	edgeManagerApprove = transitionEdge{
		name: "managerApprove", from: domain.PendingReview, to: domain.Approved,
		failureMsg: "Only claims pending review can be approved by the manager.",
	}
	edgeManagerReject = transitionEdge{
		name: "managerReject", from: domain.PendingReview, to: domain.Rejected,
		failureMsg: "Only claims pending review can be rejected by the manager.",
	}
)

// ClaimService coordinates claim submission and the review workflow.
type ClaimService struct {
	claimRepo       portsrepo.ClaimRepositoryFacade
	attachmentStore portsrepo.AttachmentStore
}

// NewClaimService creates the workflow service.
func NewClaimService(repo portsrepo.ClaimRepositoryFacade, store portsrepo.AttachmentStore) *ClaimService {
	return &ClaimService{claimRepo: repo, attachmentStore: store}
}

var _ portssvc.ClaimSvcFacade = (*ClaimService)(nil)

// SubmitClaim runs the submission pipeline: validate, normalize, duplicate
// check, insert, then the optional attach phase. The claim is committed
// before the attachment is touched; an IO fault while attaching leaves the
// claim in place and comes back as a warning on the result.
func (s *ClaimService) SubmitClaim(ctx context.Context, req dto.SubmitClaimRequest) (*dto.SubmitClaimResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claim, fieldErrs := buildClaim(req)
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError(fieldErrs)
	}

	exists, err := s.claimRepo.ExistsActiveClaim(ctx, claim.LecturerName, claim.Month)
	if err != nil {
		logger.Error("Failed to check for duplicate claim", slog.String("error", err.Error()))
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: active claim for this lecturer and month", apperrors.ErrDuplicate)
	}

	claim.Status = domain.Submitted
	claimID, err := s.claimRepo.SaveClaim(ctx, claim)
	if err != nil {
		// A concurrent submitter can win the race past ExistsActiveClaim; the
		// partial unique index turns the losing insert into ErrDuplicate.
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save claim in repository", slog.String("error", err.Error()))
		}
		return nil, err
	}
	logger = logger.With(slog.Int64("claim_id", claimID))
	logger.Info("Claim persisted")

	result := &dto.SubmitClaimResult{ClaimID: claimID}

	if req.Attachment != nil && req.Attachment.Size > 0 {
		if !docrules.IsAllowed(req.Attachment.FileName) {
			return nil, apperrors.NewValidationError(map[string]string{
				"file": "Only .pdf, .docx, or .xlsx files are allowed.",
			})
		}
		if docrules.IsTooLarge(req.Attachment.Size) {
			return nil, apperrors.NewValidationError(map[string]string{
				"file": "File too large (max 10 MB).",
			})
		}

		storedName, err := s.attachmentStore.SaveAttachment(ctx, claimID, req.Attachment.FileName, req.Attachment.Content)
		if err != nil {
			logger.Error("Failed to store attachment; claim kept without it", slog.String("error", err.Error()))
			result.Warning = "Your claim was submitted, but the supporting document could not be saved."
			return result, nil
		}
		if err := s.claimRepo.UpdateClaimAttachment(ctx, claimID, req.Attachment.FileName, storedName); err != nil {
			logger.Error("Failed to record attachment metadata; claim kept without it", slog.String("error", err.Error()))
			result.Warning = "Your claim was submitted, but the supporting document could not be saved."
			return result, nil
		}
		logger.Info("Attachment stored", slog.String("stored_name", storedName))
	}

	return result, nil
}

// buildClaim validates and normalizes the submission input. It returns the
// claim to persist (still Draft) or the per-field error map.
func buildClaim(req dto.SubmitClaimRequest) (domain.Claim, map[string]string) {
	fieldErrs := map[string]string{}

	lecturer := strings.TrimSpace(req.LecturerName)
	if lecturer == "" {
		fieldErrs["lecturerName"] = "Lecturer name is required."
	} else if len(lecturer) > 120 {
		fieldErrs["lecturerName"] = "Lecturer name must be at most 120 characters."
	}

	month := strings.TrimSpace(req.Month)
	if month == "" {
		fieldErrs["month"] = "Month is required."
	} else if len(month) > 40 {
		fieldErrs["month"] = "Month must be at most 40 characters."
	}

	hours := parseAmount(req.HoursWorked, "hoursWorked", minHours, maxHours,
		"Hours must be between 0.5 and 9999.5.", fieldErrs)
	rate := parseAmount(req.HourlyRate, "hourlyRate", minRate, maxRate,
		"Rate must be between 1 and 1000000.", fieldErrs)

	notes := strings.TrimSpace(req.Notes)
	if len(notes) > 500 {
		fieldErrs["notes"] = "Notes must be at most 500 characters."
	}

	if len(fieldErrs) > 0 {
		return domain.Claim{}, fieldErrs
	}

	return domain.Claim{
		LecturerName: lecturer,
		Month:        month,
		HoursWorked:  hours,
		HourlyRate:   rate,
		Notes:        notes,
	}, nil
}

func parseAmount(raw, field string, min, max decimal.Decimal, rangeMsg string, fieldErrs map[string]string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		fieldErrs[field] = "Enter a valid number."
		return decimal.Zero
	}
	if !d.Round(2).Equal(d) {
		fieldErrs[field] = "Use at most 2 decimal places."
		return decimal.Zero
	}
	if d.LessThan(min) || d.GreaterThan(max) {
		fieldErrs[field] = rangeMsg
		return decimal.Zero
	}
	return d
}

// CoordinatorApprove forwards a submitted claim to the manager queue.
func (s *ClaimService) CoordinatorApprove(ctx context.Context, claimID int64) error {
	return s.transition(ctx, claimID, edgeCoordinatorApprove)
}

// CoordinatorReject rejects a submitted claim at first review.
func (s *ClaimService) CoordinatorReject(ctx context.Context, claimID int64) error {
	return s.transition(ctx, claimID, edgeCoordinatorReject)
}

// ManagerApprove gives final approval to a claim pending review.
func (s *ClaimService) ManagerApprove(ctx context.Context, claimID int64) error {
	return s.transition(ctx, claimID, edgeManagerApprove)
}

// ManagerReject rejects a claim pending review.
func (s *ClaimService) ManagerReject(ctx context.Context, claimID int64) error {
	return s.transition(ctx, claimID, edgeManagerReject)
}

// transition performs one guarded edge. The repository's conditional update
// is the arbiter: of two racing reviewers exactly one write succeeds, and the
// loser gets IllegalTransitionError carrying the status found on re-read.
func (s *ClaimService) transition(ctx context.Context, claimID int64, edge transitionEdge) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.Int64("claim_id", claimID), slog.String("edge", edge.name))

	if _, err := s.claimRepo.FindClaimByID(ctx, claimID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load claim for transition", slog.String("error", err.Error()))
		}
		return err
	}

	ok, err := s.claimRepo.UpdateClaimStatus(ctx, claimID, edge.from, edge.to)
	if err != nil {
		logger.Error("Failed to update claim status", slog.String("error", err.Error()))
		return err
	}
	if !ok {
		current, err := s.claimRepo.FindClaimByID(ctx, claimID)
		if err != nil {
			return err
		}
		return apperrors.NewIllegalTransitionError(current.Status.String(), edge.name, edge.failureMsg)
	}

	logger.Info("Claim status updated", slog.String("status", edge.to.String()))
	return nil
}

// GetClaimStatus loads a claim by id.
func (s *ClaimService) GetClaimStatus(ctx context.Context, claimID int64) (*domain.Claim, error) {
	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find claim by ID", slog.Int64("claim_id", claimID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return claim, nil
}

// ListForCoordinator lists claims awaiting first review.
func (s *ClaimService) ListForCoordinator(ctx context.Context) ([]domain.Claim, error) {
	return s.listByStatus(ctx, domain.Submitted)
}

// ListForManager lists claims awaiting final review.
func (s *ClaimService) ListForManager(ctx context.Context) ([]domain.Claim, error) {
	return s.listByStatus(ctx, domain.PendingReview)
}

func (s *ClaimService) listByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	claims, err := s.claimRepo.ListClaimsByStatus(ctx, status, recentClaimsLimit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list claims by status", slog.String("status", status.String()), slog.String("error", err.Error()))
		return nil, err
	}
	return claims, nil
}

// ListRecent lists the latest claims regardless of status.
func (s *ClaimService) ListRecent(ctx context.Context) ([]domain.Claim, error) {
	claims, err := s.claimRepo.ListRecentClaims(ctx, recentClaimsLimit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list recent claims", slog.String("error", err.Error()))
		return nil, err
	}
	return claims, nil
}
