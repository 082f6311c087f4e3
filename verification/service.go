package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"roomflow/account"
)

var (
	// ErrAccountNotFound signals the email does not resolve to an account.
	ErrAccountNotFound = errors.New("verification: account not found")
	// ErrMissingDocumentType signals a blank document type on submission.
	ErrMissingDocumentType = errors.New("verification: document type required")
)

const (
	documentTypeLimit = 100
	rejectReasonLimit = 500
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountResolver resolves request emails to accounts.
type AccountResolver interface {
	Lookup(ctx context.Context, email string) (account.Account, error)
}

// DocumentStore persists evidence files and returns a stable reference.
type DocumentStore interface {
	Store(ownerID int64, data []byte, ext string) (string, error)
}

// Notifier is the fire-and-forget message sink for decision outcomes.
type Notifier interface {
	Emit(ctx context.Context, accountID int64, kind, title, body string)
}

// Service owns the landlord trust lifecycle: submission, pending,
// approval, rejection, resubmission.
type Service struct {
	pool     TxBeginner
	repo     Repository
	accounts AccountResolver
	store    DocumentStore
	notifier Notifier
	now      func() time.Time
}

func NewService(pool TxBeginner, repo Repository, accounts AccountResolver, store DocumentStore, notifier Notifier) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		accounts: accounts,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates and persists a new evidence document, appends a pending
// request, and unconditionally clears the profile's verified flags: a new
// submission always supersedes prior trust until re-approved. Resubmission
// after rejection follows the same path with no restriction.
func (s *Service) Submit(ctx context.Context, email, documentType string, evidence []byte, mediaTypeHint string) (Request, error) {
	documentType = strings.TrimSpace(documentType)
	if documentType == "" {
		return Request{}, ErrMissingDocumentType
	}
	documentType = truncate(documentType, documentTypeLimit)

	acc, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return Request{}, ErrAccountNotFound
		}
		return Request{}, err
	}

	format, err := ValidateEvidence(evidence, mediaTypeHint)
	if err != nil {
		return Request{}, err
	}

	// The file lands on disk before the transaction; an aborted insert
	// leaves an orphan file, never a dangling reference.
	filePath, err := s.store.Store(acc.ID, evidence, format.Ext())
	if err != nil {
		return Request{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("verification: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.EnsureProfile(ctx, tx, acc.ID); err != nil {
		return Request{}, err
	}
	req, err := s.repo.InsertRequest(ctx, tx, InsertRequestParams{
		LandlordID:   acc.ID,
		DocumentType: documentType,
		Evidence:     evidence,
		FilePath:     filePath,
	})
	if err != nil {
		return Request{}, err
	}
	if err := s.repo.ClearVerified(ctx, tx, acc.ID); err != nil {
		return Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("verification: commit submit: %w", err)
	}

	return req, nil
}

// Approve marks the request approved and flips the owning profile to
// verified as of now. Calling it twice re-sets the same values; each call
// still emits a notification, which is acceptable because notifications
// are informational, not a ledger. Two concurrent decisions on the same
// request are a known benign race: both succeed, last write wins on the
// profile fields.
func (s *Service) Approve(ctx context.Context, requestID int64, reviewerEmail string) error {
	reviewer, err := s.resolveReviewer(ctx, reviewerEmail)
	if err != nil {
		return err
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("verification: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.SetDecision(ctx, tx, req.ID, DecisionApproved, reviewer.ID); err != nil {
		return err
	}
	verifiedAt := s.now()
	if err := s.repo.SetVerified(ctx, tx, req.LandlordID, true, &verifiedAt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("verification: commit approve: %w", err)
	}

	s.emit(ctx, req.LandlordID, "Your verification request has been approved.")
	return nil
}

// Reject marks the request rejected and clears the profile's verified
// flags. The reason is truncated and delivered to the landlord as a
// notification.
func (s *Service) Reject(ctx context.Context, requestID int64, reviewerEmail, reason string) error {
	reviewer, err := s.resolveReviewer(ctx, reviewerEmail)
	if err != nil {
		return err
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("verification: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.SetDecision(ctx, tx, req.ID, DecisionRejected, reviewer.ID); err != nil {
		return err
	}
	if err := s.repo.SetVerified(ctx, tx, req.LandlordID, false, nil); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("verification: commit reject: %w", err)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Your verification request has been rejected."
	}
	s.emit(ctx, req.LandlordID, truncate(reason, rejectReasonLimit))
	return nil
}

// Status combines the profile's verified flag with the latest request for
// display. The flag is the ground truth for gatekeeping; the last request
// can transiently disagree and is informational only.
func (s *Service) Status(ctx context.Context, email string) (StatusView, error) {
	acc, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return StatusView{}, ErrAccountNotFound
		}
		return StatusView{}, err
	}

	verified, verifiedAt, err := s.repo.ProfileStatus(ctx, acc.ID)
	if err != nil {
		return StatusView{}, err
	}

	view := StatusView{Verified: verified, VerifiedAt: verifiedAt}

	last, err := s.repo.LatestSummary(ctx, acc.ID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return view, nil
		}
		return StatusView{}, err
	}
	view.LastRequest = &last
	return view, nil
}

// ListPending returns requests awaiting review, newest first.
func (s *Service) ListPending(ctx context.Context) ([]RequestSummary, error) {
	return s.repo.ListByDecision(ctx, DecisionPending)
}

// ListByDecision returns the review queue for any decision status.
func (s *Service) ListByDecision(ctx context.Context, decision Decision) ([]RequestSummary, error) {
	return s.repo.ListByDecision(ctx, decision)
}

func (s *Service) resolveReviewer(ctx context.Context, email string) (account.Account, error) {
	acc, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, ErrAccountNotFound
		}
		return account.Account{}, err
	}
	return acc, nil
}

// emit delivers the decision outcome after commit, best-effort. The
// emitter logs its own failures; a lost notification never fails the
// decision.
func (s *Service) emit(ctx context.Context, landlordID int64, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, landlordID, "verification", "Verification result", body)
}

// truncate cuts s to at most limit characters, never splitting a rune.
// The column limits count characters, not bytes.
func truncate(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
