package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claimsys/claim_management_app/internal/apperrors"
	"github.com/claimsys/claim_management_app/internal/core/domain"
	portsrepo "github.com/claimsys/claim_management_app/internal/core/ports/repositories"
	"github.com/claimsys/claim_management_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const claimColumns = `claim_id, lecturer_name, month, hours_worked, hourly_rate, notes, attachment_file_name, attachment_stored_name, status, created_at, last_updated_at`

type PgxClaimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository creates a new repository for claim data.
func NewClaimRepository(pool *pgxpool.Pool) portsrepo.ClaimRepositoryFacade {
	return &PgxClaimRepository{pool: pool}
}

// Ensure PgxClaimRepository implements portsrepo.ClaimRepositoryFacade
var _ portsrepo.ClaimRepositoryFacade = (*PgxClaimRepository)(nil)

// Helper to convert models.Claim from DB to domain.Claim
func toDomainClaim(m models.Claim) domain.Claim {
	return domain.Claim{
		ClaimID:              m.ClaimID,
		LecturerName:         m.LecturerName,
		Month:                m.Month,
		HoursWorked:          m.HoursWorked,
		HourlyRate:           m.HourlyRate,
		Notes:                m.Notes,
		AttachmentFileName:   m.AttachmentFileName,
		AttachmentStoredName: m.AttachmentStoredName,
		Status:               domain.ClaimStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// nullIfEmpty maps an empty string to a NULL column value.
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func scanClaim(row pgx.Row) (models.Claim, error) {
	var m models.Claim
	var notes, fileName, storedName sql.NullString
	err := row.Scan(
		&m.ClaimID,
		&m.LecturerName,
		&m.Month,
		&m.HoursWorked,
		&m.HourlyRate,
		&notes,
		&fileName,
		&storedName,
		&m.Status,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return models.Claim{}, err
	}
	m.Notes = notes.String
	m.AttachmentFileName = fileName.String
	m.AttachmentStoredName = storedName.String
	return m, nil
}

// SaveClaim inserts a new claim and returns the assigned id.
// A unique violation on the active (lecturer, month) index maps to ErrDuplicate.
func (r *PgxClaimRepository) SaveClaim(ctx context.Context, claim domain.Claim) (int64, error) {
	query := `
		INSERT INTO claims (lecturer_name, month, hours_worked, hourly_rate, notes, attachment_file_name, attachment_stored_name, status, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING claim_id;
	`
	now := time.Now().UTC()

	var claimID int64
	err := r.pool.QueryRow(ctx, query,
		claim.LecturerName,
		claim.Month,
		claim.HoursWorked,
		claim.HourlyRate,
		nullIfEmpty(claim.Notes),
		nullIfEmpty(claim.AttachmentFileName),
		nullIfEmpty(claim.AttachmentStoredName),
		int16(claim.Status),
		now,
		now,
	).Scan(&claimID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation on the active-claim index
				return 0, fmt.Errorf("%w: active claim for %s / %s already exists", apperrors.ErrDuplicate, claim.LecturerName, claim.Month)
			}
		}
		return 0, apperrors.NewAppError(500, "failed to save claim", err)
	}
	return claimID, nil
}

// FindClaimByID retrieves a claim by its ID.
func (r *PgxClaimRepository) FindClaimByID(ctx context.Context, claimID int64) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = $1;`

	m, err := scanClaim(r.pool.QueryRow(ctx, query, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find claim %d", claimID), err)
	}

	domainClaim := toDomainClaim(m)
	return &domainClaim, nil
}

// ExistsActiveClaim reports whether a non-Rejected claim exists for the
// lecturer and month pair.
func (r *PgxClaimRepository) ExistsActiveClaim(ctx context.Context, lecturerName, month string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM claims
			WHERE lecturer_name = $1 AND month = $2 AND status <> $3
		);
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, lecturerName, month, int16(domain.Rejected)).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check for active claim", err)
	}
	return exists, nil
}

// UpdateClaimStatus conditionally moves a claim from expectedFrom to
// newStatus. The WHERE clause on the stored status makes the update a
// compare-and-set: of two racing reviewers exactly one sees a row affected.
func (r *PgxClaimRepository) UpdateClaimStatus(ctx context.Context, claimID int64, expectedFrom, newStatus domain.ClaimStatus) (bool, error) {
	query := `
		UPDATE claims
		SET status = $3,
		    last_updated_at = $4
		WHERE claim_id = $1 AND status = $2;
	`
	cmdTag, err := r.pool.Exec(ctx, query, claimID, int16(expectedFrom), int16(newStatus), time.Now().UTC())
	if err != nil {
		return false, apperrors.NewAppError(500, fmt.Sprintf("failed to update status for claim %d", claimID), err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// UpdateClaimAttachment sets both attachment names together.
func (r *PgxClaimRepository) UpdateClaimAttachment(ctx context.Context, claimID int64, originalName, storedName string) error {
	query := `
		UPDATE claims
		SET attachment_file_name = $2,
		    attachment_stored_name = $3,
		    last_updated_at = $4
		WHERE claim_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query, claimID, originalName, storedName, time.Now().UTC())
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to update attachment for claim %d", claimID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("claim %d not found for attachment update", claimID))
	}
	return nil
}

// ListClaimsByStatus retrieves up to limit claims in the given status, newest first.
func (r *PgxClaimRepository) ListClaimsByStatus(ctx context.Context, status domain.ClaimStatus, limit int) ([]domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE status = $1
		ORDER BY claim_id DESC
		LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, int16(status), limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list claims by status", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// ListRecentClaims retrieves up to limit claims regardless of status, newest first.
func (r *PgxClaimRepository) ListRecentClaims(ctx context.Context, limit int) ([]domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		ORDER BY claim_id DESC
		LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list recent claims", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

func collectClaims(rows pgx.Rows) ([]domain.Claim, error) {
	claims := []domain.Claim{}
	for rows.Next() {
		m, err := scanClaim(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan claim row", err)
		}
		claims = append(claims, toDomainClaim(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed while iterating claim rows", err)
	}
	return claims, nil
}
