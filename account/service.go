package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrWeakPassword signals the password is outside the accepted length.
	ErrWeakPassword = errors.New("account: password must be 6 to 50 characters")
	// ErrEmailRequired signals a missing or oversized email.
	ErrEmailRequired = errors.New("account: email is required and at most 255 characters")
	// ErrBanned signals the account is locked out.
	ErrBanned = errors.New("account: banned")
)

const banReasonLimit = 500

// Notifier is the fire-and-forget message sink consumed on ban.
type Notifier interface {
	Emit(ctx context.Context, accountID int64, kind, title, body string)
}

// Service handles account business logic.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Register creates a new account. The role defaults to student when blank.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, error) {
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	if email == "" || len(email) > 255 {
		return Account{}, ErrEmailRequired
	}
	if len(password) < 6 || len(password) > 50 {
		return Account{}, ErrWeakPassword
	}

	role := Role(strings.TrimSpace(string(req.Role)))
	if role == "" {
		role = RoleStudent
	}
	if !isValidRole(role) {
		return Account{}, fmt.Errorf("account: invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("account: hash password: %w", err)
	}

	return s.repo.Create(ctx, CreateParams{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Login checks credentials and reports role plus the role's landing page.
// There is no token or session: subsequent requests identify themselves by
// email.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	acc, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(strings.TrimSpace(req.Password))); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if acc.Status == StatusBanned {
		return LoginResult{}, ErrBanned
	}

	return LoginResult{
		AccountID: acc.ID,
		Role:      acc.Role,
		Redirect:  RedirectFor(acc.Role),
	}, nil
}

// Lookup resolves an email to its account. Both core workflows use this as
// their first step.
func (s *Service) Lookup(ctx context.Context, email string) (Account, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

// Ban locks an account and notifies it with the (truncated) reason.
func (s *Service) Ban(ctx context.Context, id int64, reason string) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusBanned); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Account suspended for policy violation."
	}
	if len(reason) > banReasonLimit {
		reason = reason[:banReasonLimit]
	}
	if s.notifier != nil {
		s.notifier.Emit(ctx, id, "ban", "Account locked", reason)
	}
	return nil
}

// Unban reactivates an account.
func (s *Service) Unban(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, StatusActive)
}

// List returns admin summaries, optionally filtered by role.
func (s *Service) List(ctx context.Context, role Role) ([]Summary, error) {
	if role != "" && !isValidRole(role) {
		return nil, fmt.Errorf("account: invalid role filter %q", role)
	}
	return s.repo.ListSummaries(ctx, role)
}

// EnsureAdmin creates or refreshes the configured administrator account so a
// fresh deployment always has one. Called once at startup.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("account: hash admin password: %w", err)
	}

	acc, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		_, err = s.repo.Create(ctx, CreateParams{
			Email:        email,
			PasswordHash: string(hash),
			Role:         RoleAdministrator,
		})
		return err
	}
	if err != nil {
		return err
	}
	return s.repo.UpdateCredentials(ctx, acc.ID, string(hash), RoleAdministrator)
}

// RedirectFor maps a role to its landing page.
func RedirectFor(role Role) string {
	switch role {
	case RoleAdministrator:
		return "/admin"
	case RoleLandlord:
		return "/landlord"
	case RoleStudent:
		return "/student"
	default:
		return "/"
	}
}

func isValidRole(role Role) bool {
	switch role {
	case RoleAdministrator, RoleLandlord, RoleStudent:
		return true
	default:
		return false
	}
}
