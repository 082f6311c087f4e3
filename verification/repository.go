package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRequestNotFound signals the request id does not resolve.
var ErrRequestNotFound = errors.New("verification: request not found")

// Repository defines the data access the state machine needs. Mutating
// methods take a pgx.Tx so the service controls the transaction boundary.
type Repository interface {
	EnsureProfile(ctx context.Context, tx pgx.Tx, landlordID int64) error
	InsertRequest(ctx context.Context, tx pgx.Tx, params InsertRequestParams) (Request, error)
	ClearVerified(ctx context.Context, tx pgx.Tx, landlordID int64) error
	SetDecision(ctx context.Context, tx pgx.Tx, requestID int64, decision Decision, reviewerID int64) error
	SetVerified(ctx context.Context, tx pgx.Tx, landlordID int64, verified bool, at *time.Time) error
	GetRequest(ctx context.Context, requestID int64) (Request, error)
	LatestSummary(ctx context.Context, landlordID int64) (RequestSummary, error)
	ProfileStatus(ctx context.Context, landlordID int64) (bool, *time.Time, error)
	ListByDecision(ctx context.Context, decision Decision) ([]RequestSummary, error)
}

// InsertRequestParams contains write parameters for a new request.
type InsertRequestParams struct {
	LandlordID   int64
	DocumentType string
	Evidence     []byte
	FilePath     string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// EnsureProfile creates the landlord profile row (empty name, unverified)
// when absent. The row is a referential prerequisite for requests and
// listings, not a business decision.
func (r *PGRepository) EnsureProfile(ctx context.Context, tx pgx.Tx, landlordID int64) error {
	const insertSQL = `
		INSERT INTO landlord_profiles (account_id, full_name, verified)
		VALUES ($1, '', false)
		ON CONFLICT (account_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertSQL, landlordID); err != nil {
		return fmt.Errorf("verification: ensure profile: %w", err)
	}
	return nil
}

func (r *PGRepository) InsertRequest(ctx context.Context, tx pgx.Tx, params InsertRequestParams) (Request, error) {
	const insertSQL = `
		INSERT INTO verification_requests (landlord_id, document_type, evidence, status, reviewer_id, submitted_at, file_path)
		VALUES ($1, $2, $3, 0, NULL, now(), $4)
		RETURNING id, landlord_id, document_type, status, reviewer_id, submitted_at, file_path
	`

	var req Request
	err := tx.QueryRow(ctx, insertSQL, params.LandlordID, params.DocumentType, params.Evidence, params.FilePath).Scan(
		&req.ID,
		&req.LandlordID,
		&req.DocumentType,
		&req.Decision,
		&req.ReviewerID,
		&req.SubmittedAt,
		&req.FilePath,
	)
	if err != nil {
		return Request{}, fmt.Errorf("verification: insert request: %w", err)
	}
	return req, nil
}

// ClearVerified drops the profile's trust flags. A fresh submission always
// supersedes prior trust until re-approved.
func (r *PGRepository) ClearVerified(ctx context.Context, tx pgx.Tx, landlordID int64) error {
	const updateSQL = `
		UPDATE landlord_profiles
		SET verified = false, verified_at = NULL
		WHERE account_id = $1
	`
	if _, err := tx.Exec(ctx, updateSQL, landlordID); err != nil {
		return fmt.Errorf("verification: clear verified: %w", err)
	}
	return nil
}

func (r *PGRepository) SetDecision(ctx context.Context, tx pgx.Tx, requestID int64, decision Decision, reviewerID int64) error {
	const updateSQL = `
		UPDATE verification_requests
		SET status = $2, reviewer_id = $3
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, updateSQL, requestID, decision, reviewerID)
	if err != nil {
		return fmt.Errorf("verification: set decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *PGRepository) SetVerified(ctx context.Context, tx pgx.Tx, landlordID int64, verified bool, at *time.Time) error {
	const updateSQL = `
		UPDATE landlord_profiles
		SET verified = $2, verified_at = $3
		WHERE account_id = $1
	`
	if _, err := tx.Exec(ctx, updateSQL, landlordID, verified, at); err != nil {
		return fmt.Errorf("verification: set verified: %w", err)
	}
	return nil
}

func (r *PGRepository) GetRequest(ctx context.Context, requestID int64) (Request, error) {
	const selectSQL = `
		SELECT id, landlord_id, document_type, status, reviewer_id, submitted_at, file_path
		FROM verification_requests
		WHERE id = $1
	`

	var req Request
	err := r.pool.QueryRow(ctx, selectSQL, requestID).Scan(
		&req.ID,
		&req.LandlordID,
		&req.DocumentType,
		&req.Decision,
		&req.ReviewerID,
		&req.SubmittedAt,
		&req.FilePath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("verification: get request: %w", err)
	}
	return req, nil
}

// LatestSummary returns the authoritative "current" request: the row with
// the highest id for the landlord. Id assignment is serialized by the
// database, so latest is well-defined under concurrent submissions.
func (r *PGRepository) LatestSummary(ctx context.Context, landlordID int64) (RequestSummary, error) {
	const selectSQL = `
		SELECT v.id, v.landlord_id, a.email, lp.full_name, lp.contact_address,
		       v.document_type, v.status, v.reviewer_id, v.submitted_at, v.file_path
		FROM verification_requests v
		JOIN landlord_profiles lp ON lp.account_id = v.landlord_id
		JOIN accounts a ON a.id = v.landlord_id
		WHERE v.landlord_id = $1
		ORDER BY v.id DESC
		LIMIT 1
	`

	sum, err := scanSummary(r.pool.QueryRow(ctx, selectSQL, landlordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequestSummary{}, ErrRequestNotFound
		}
		return RequestSummary{}, fmt.Errorf("verification: latest summary: %w", err)
	}
	return sum, nil
}

// ProfileStatus reads the gatekeeping ground truth off the profile row.
// A missing profile reads as unverified.
func (r *PGRepository) ProfileStatus(ctx context.Context, landlordID int64) (bool, *time.Time, error) {
	const selectSQL = `
		SELECT verified, verified_at
		FROM landlord_profiles
		WHERE account_id = $1
	`

	var (
		verified   bool
		verifiedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, selectSQL, landlordID).Scan(&verified, &verifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("verification: profile status: %w", err)
	}
	return verified, verifiedAt, nil
}

func (r *PGRepository) ListByDecision(ctx context.Context, decision Decision) ([]RequestSummary, error) {
	const selectSQL = `
		SELECT v.id, v.landlord_id, a.email, lp.full_name, lp.contact_address,
		       v.document_type, v.status, v.reviewer_id, v.submitted_at, v.file_path
		FROM verification_requests v
		JOIN landlord_profiles lp ON lp.account_id = v.landlord_id
		JOIN accounts a ON a.id = v.landlord_id
		WHERE v.status = $1
		ORDER BY v.id DESC
	`

	rows, err := r.pool.Query(ctx, selectSQL, decision)
	if err != nil {
		return nil, fmt.Errorf("verification: list by decision: %w", err)
	}
	defer rows.Close()

	summaries := []RequestSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("verification: scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("verification: iterate summaries: %w", err)
	}
	return summaries, nil
}

func scanSummary(row pgx.Row) (RequestSummary, error) {
	var sum RequestSummary
	err := row.Scan(
		&sum.ID,
		&sum.LandlordID,
		&sum.LandlordEmail,
		&sum.LandlordName,
		&sum.ContactAddress,
		&sum.DocumentType,
		&sum.Decision,
		&sum.ReviewerID,
		&sum.SubmittedAt,
		&sum.FilePath,
	)
	return sum, err
}
