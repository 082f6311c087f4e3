package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"roomflow/account"
)

var (
	ErrAccountNotFound      = errors.New("listing: account not found")
	ErrMissingRequiredField = errors.New("listing: missing required field")
)

const (
	titleLimit    = 150
	addressLimit  = 255
	localityLimit = 100
)

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type AccountResolver interface {
	Lookup(ctx context.Context, email string) (account.Account, error)
}

type Service struct {
	pool        TxBeginner
	repo        Repository
	accounts    AccountResolver
	defaultCity string
}

func NewService(pool TxBeginner, repo Repository, accounts AccountResolver, defaultCity string) *Service {
	return &Service{
		pool:        pool,
		repo:        repo,
		accounts:    accounts,
		defaultCity: defaultCity,
	}
}

// Create provisions a listing and its amenity links in one transaction.
// The landlord profile row is created on demand so the listing's foreign
// key always resolves. Verification status is deliberately not checked:
// unverified landlords may hold drafts, verification gates publishing only.
func (s *Service) Create(ctx context.Context, email string, in CreateInput) (CreateResult, error) {
	if in.Title == "" || in.Address == "" || in.BasePrice == nil {
		return CreateResult{}, ErrMissingRequiredField
	}

	acc, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return CreateResult{}, ErrAccountNotFound
		}
		return CreateResult{}, err
	}

	city := truncate(in.City, localityLimit)
	if city == "" {
		city = s.defaultCity
	}

	l := Listing{
		LandlordID:   acc.ID,
		Title:        truncate(in.Title, titleLimit),
		Description:  in.Description,
		Address:      truncate(in.Address, addressLimit),
		Ward:         truncate(in.Ward, localityLimit),
		District:     truncate(in.District, localityLimit),
		City:         city,
		Area:         in.Area,
		BasePrice:    *in.BasePrice,
		MaxOccupants: in.MaxOccupants,
		MapURL:       in.MapURL,
		Status:       StatusDraft,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CreateResult{}, fmt.Errorf("listing: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.EnsureProfile(ctx, tx, acc.ID); err != nil {
		return CreateResult{}, err
	}
	id, err := s.repo.Insert(ctx, tx, l)
	if err != nil {
		return CreateResult{}, err
	}
	for _, amenityID := range distinct(in.AmenityIDs) {
		if err := s.repo.LinkAmenity(ctx, tx, id, amenityID); err != nil {
			return CreateResult{}, err
		}
	}
	names, err := s.repo.AmenityNames(ctx, tx, id)
	if err != nil {
		return CreateResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return CreateResult{}, fmt.Errorf("listing: commit tx: %w", err)
	}

	return CreateResult{ListingID: id, AmenityNames: names}, nil
}

// ListForLandlord returns the landlord's listings, newest first.
func (s *Service) ListForLandlord(ctx context.Context, email string) ([]Summary, error) {
	acc, err := s.accounts.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.repo.ListByLandlord(ctx, acc.ID)
}

// Amenities returns the static amenity catalog.
func (s *Service) Amenities(ctx context.Context) ([]Amenity, error) {
	return s.repo.Amenities(ctx)
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// truncate cuts s to at most limit characters, never splitting a rune.
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
