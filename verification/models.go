package verification

import "time"

// Decision is the stored outcome of a verification request.
type Decision int16

const (
	DecisionPending  Decision = 0
	DecisionApproved Decision = 1
	DecisionRejected Decision = 2
)

// Request mirrors the verification_requests table. Rows are append-only:
// after insertion only the decision fields (status, reviewer) are ever
// written, exactly once, and nothing is deleted. The table is the audit
// trail.
type Request struct {
	ID           int64
	LandlordID   int64
	DocumentType string
	Evidence     []byte
	Decision     Decision
	ReviewerID   *int64
	SubmittedAt  time.Time
	FilePath     *string
}

// RequestSummary is the admin review row: a request joined with the
// landlord's profile and account email, without the evidence bytes.
type RequestSummary struct {
	ID             int64
	LandlordID     int64
	LandlordEmail  string
	LandlordName   string
	ContactAddress *string
	DocumentType   string
	Decision       Decision
	ReviewerID     *int64
	SubmittedAt    time.Time
	FilePath       *string
}

// StatusView is the landlord-facing projection of trust state: the
// profile's verified flag is authoritative for gatekeeping, while the
// latest request (highest id) is informational and may transiently
// disagree.
type StatusView struct {
	Verified    bool
	VerifiedAt  *time.Time
	LastRequest *RequestSummary
}

// CanPost derives the posting permission from verification state. Listing
// creation deliberately does not consult this, only the publishing surface
// does. Drafts are open to any landlord.
func CanPost(verified bool) bool {
	return verified
}
