package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	fullNameLimit = 150
	phoneLimit    = 20
	addressLimit  = 255
)

// LandlordProfile is the landlord-owned slice of the profile row. The
// verified fields are read-only here; only the verification workflow
// writes them.
type LandlordProfile struct {
	AccountID      int64
	FullName       string
	Phone          *string
	ContactAddress *string
	Verified       bool
	VerifiedAt     *time.Time
}

type StudentProfile struct {
	AccountID      int64
	FullName       string
	Phone          *string
	School         *string
	ContactAddress *string
}

// ProfileUpdate carries caller-editable profile fields. Empty strings are
// stored as NULL.
type ProfileUpdate struct {
	FullName       string
	Phone          string
	School         string
	ContactAddress string
}

// ProfileRepository handles data access for both profile tables.
type ProfileRepository interface {
	GetLandlord(ctx context.Context, accountID int64) (LandlordProfile, error)
	UpsertLandlord(ctx context.Context, accountID int64, update ProfileUpdate) (LandlordProfile, error)
	GetStudent(ctx context.Context, accountID int64) (StudentProfile, error)
	UpsertStudent(ctx context.Context, accountID int64, update ProfileUpdate) (StudentProfile, error)
}

// PGProfileRepository implements ProfileRepository backed by PostgreSQL.
type PGProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *PGProfileRepository {
	return &PGProfileRepository{pool: pool}
}

func (r *PGProfileRepository) GetLandlord(ctx context.Context, accountID int64) (LandlordProfile, error) {
	const query = `
		SELECT account_id, full_name, phone, contact_address, verified, verified_at
		FROM landlord_profiles
		WHERE account_id = $1
	`

	var p LandlordProfile
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&p.AccountID,
		&p.FullName,
		&p.Phone,
		&p.ContactAddress,
		&p.Verified,
		&p.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LandlordProfile{}, ErrNotFound
		}
		return LandlordProfile{}, fmt.Errorf("account: get landlord profile: %w", err)
	}
	return p, nil
}

// UpsertLandlord saves the editable fields, creating the row when absent.
// The verified columns are never touched on the conflict path.
func (r *PGProfileRepository) UpsertLandlord(ctx context.Context, accountID int64, update ProfileUpdate) (LandlordProfile, error) {
	const query = `
		INSERT INTO landlord_profiles (account_id, full_name, phone, contact_address, verified)
		VALUES ($1, $2, $3, $4, false)
		ON CONFLICT (account_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    phone = EXCLUDED.phone,
		    contact_address = EXCLUDED.contact_address
		RETURNING account_id, full_name, phone, contact_address, verified, verified_at
	`

	var p LandlordProfile
	err := r.pool.QueryRow(ctx, query,
		accountID,
		update.FullName,
		nullable(update.Phone),
		nullable(update.ContactAddress),
	).Scan(
		&p.AccountID,
		&p.FullName,
		&p.Phone,
		&p.ContactAddress,
		&p.Verified,
		&p.VerifiedAt,
	)
	if err != nil {
		return LandlordProfile{}, fmt.Errorf("account: upsert landlord profile: %w", err)
	}
	return p, nil
}

func (r *PGProfileRepository) GetStudent(ctx context.Context, accountID int64) (StudentProfile, error) {
	const query = `
		SELECT account_id, full_name, phone, school, contact_address
		FROM student_profiles
		WHERE account_id = $1
	`

	var p StudentProfile
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&p.AccountID,
		&p.FullName,
		&p.Phone,
		&p.School,
		&p.ContactAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StudentProfile{}, ErrNotFound
		}
		return StudentProfile{}, fmt.Errorf("account: get student profile: %w", err)
	}
	return p, nil
}

func (r *PGProfileRepository) UpsertStudent(ctx context.Context, accountID int64, update ProfileUpdate) (StudentProfile, error) {
	const query = `
		INSERT INTO student_profiles (account_id, full_name, phone, school, contact_address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    phone = EXCLUDED.phone,
		    school = EXCLUDED.school,
		    contact_address = EXCLUDED.contact_address
		RETURNING account_id, full_name, phone, school, contact_address
	`

	var p StudentProfile
	err := r.pool.QueryRow(ctx, query,
		accountID,
		update.FullName,
		nullable(update.Phone),
		nullable(update.School),
		nullable(update.ContactAddress),
	).Scan(
		&p.AccountID,
		&p.FullName,
		&p.Phone,
		&p.School,
		&p.ContactAddress,
	)
	if err != nil {
		return StudentProfile{}, fmt.Errorf("account: upsert student profile: %w", err)
	}
	return p, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// ProfileService resolves emails and enforces field caps before delegating
// to the repository.
type ProfileService struct {
	accounts Repository
	profiles ProfileRepository
}

func NewProfileService(accounts Repository, profiles ProfileRepository) *ProfileService {
	return &ProfileService{accounts: accounts, profiles: profiles}
}

func (s *ProfileService) GetLandlord(ctx context.Context, email string) (LandlordProfile, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return LandlordProfile{}, err
	}
	return s.profiles.GetLandlord(ctx, acc.ID)
}

func (s *ProfileService) SaveLandlord(ctx context.Context, email string, update ProfileUpdate) (LandlordProfile, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return LandlordProfile{}, err
	}
	return s.profiles.UpsertLandlord(ctx, acc.ID, capUpdate(update))
}

func (s *ProfileService) GetStudent(ctx context.Context, email string) (StudentProfile, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return StudentProfile{}, err
	}
	return s.profiles.GetStudent(ctx, acc.ID)
}

func (s *ProfileService) SaveStudent(ctx context.Context, email string, update ProfileUpdate) (StudentProfile, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return StudentProfile{}, err
	}
	return s.profiles.UpsertStudent(ctx, acc.ID, capUpdate(update))
}

func capUpdate(u ProfileUpdate) ProfileUpdate {
	return ProfileUpdate{
		FullName:       clip(u.FullName, fullNameLimit),
		Phone:          clip(u.Phone, phoneLimit),
		School:         clip(u.School, fullNameLimit),
		ContactAddress: clip(u.ContactAddress, addressLimit),
	}
}

// clip cuts s to at most limit characters, never splitting a rune.
func clip(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
