package test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"roomflow/account"
	"roomflow/docstore"
	"roomflow/listing"
	"roomflow/notify"
	"roomflow/schema"
	"roomflow/test/infra"
	"roomflow/verification"
)

type env struct {
	pool          *pgxpool.Pool
	accounts      *account.Service
	verifications *verification.Service
	listings      *listing.Service
}

func setupEnv(t *testing.T) (*env, context.Context) {
	t.Helper()
	if os.Getenv("FLOW_TEST_PG_DSN") == "" && !dockerAvailable() {
		t.Skip("no FLOW_TEST_PG_DSN and no docker; skipping flow test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	pgC, dsn, err := infra.StartPostgres16(ctx, "")
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := schema.NewGuardian(pool).Ensure(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO amenities (name) VALUES ('Wifi'), ('Parking'), ('Laundry')`); err != nil {
		t.Fatalf("seed amenities: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := notify.NewEmitter(pool, logger)

	accountService := account.NewService(account.NewRepository(pool), emitter)
	store := docstore.New(t.TempDir())
	verificationService := verification.NewService(pool, verification.NewRepository(pool), accountService, store, emitter)
	listingService := listing.NewService(pool, listing.NewRepository(pool), accountService, "Thai Nguyen")

	return &env{
		pool:          pool,
		accounts:      accountService,
		verifications: verificationService,
		listings:      listingService,
	}, ctx
}

func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func jpegBlob() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
}

func registerLandlord(t *testing.T, ctx context.Context, e *env, email string) account.Account {
	t.Helper()
	acc, err := e.accounts.Register(ctx, account.RegisterRequest{
		Email:    email,
		Password: "secret1",
		Role:     account.RoleLandlord,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return acc
}

func TestVerificationLifecycle(t *testing.T) {
	e, ctx := setupEnv(t)

	landlord := registerLandlord(t, ctx, e, "landlord@example.com")
	admin, err := e.accounts.Register(ctx, account.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret1",
		Role:     account.RoleAdministrator,
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}

	// Submit: status must read pending and unverified.
	first, err := e.verifications.Submit(ctx, landlord.Email, "business license", jpegBlob(), "image/jpeg")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	view, err := e.verifications.Status(ctx, landlord.Email)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.Verified || view.LastRequest == nil || view.LastRequest.Decision != verification.DecisionPending {
		t.Fatalf("after submit: %+v", view)
	}

	// Approve: verified flips on, timestamp set.
	if err := e.verifications.Approve(ctx, first.ID, admin.Email); err != nil {
		t.Fatalf("approve: %v", err)
	}
	view, err = e.verifications.Status(ctx, landlord.Email)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !view.Verified || view.VerifiedAt == nil {
		t.Fatalf("after approve: verified=%v at=%v", view.Verified, view.VerifiedAt)
	}
	if !verification.CanPost(view.Verified) {
		t.Fatal("approved landlord cannot post")
	}

	// Resubmission immediately supersedes the prior approval.
	second, err := e.verifications.Submit(ctx, landlord.Email, "tax certificate", jpegBlob(), "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
	}
	view, err = e.verifications.Status(ctx, landlord.Email)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.Verified || view.VerifiedAt != nil {
		t.Fatalf("resubmission did not clear trust: %+v", view)
	}
	if view.LastRequest.ID != second.ID || view.LastRequest.Decision != verification.DecisionPending {
		t.Fatalf("latest request wrong: %+v", view.LastRequest)
	}

	// Reject the new request; the original approved row must be untouched.
	if err := e.verifications.Reject(ctx, second.ID, admin.Email, "document unreadable"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	view, err = e.verifications.Status(ctx, landlord.Email)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.Verified || view.VerifiedAt != nil {
		t.Fatalf("reject left trust set: %+v", view)
	}
	if view.LastRequest.Decision != verification.DecisionRejected {
		t.Fatalf("latest decision = %d, want rejected", view.LastRequest.Decision)
	}

	var firstStatus int16
	if err := e.pool.QueryRow(ctx, `SELECT status FROM verification_requests WHERE id = $1`, first.ID).Scan(&firstStatus); err != nil {
		t.Fatalf("read first request: %v", err)
	}
	if verification.Decision(firstStatus) != verification.DecisionApproved {
		t.Fatalf("history mutated: first request status = %d", firstStatus)
	}

	// Both decisions inserted a notification for the landlord.
	var notes int
	if err := e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE account_id = $1`, landlord.ID).Scan(&notes); err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if notes != 2 {
		t.Fatalf("notifications = %d, want 2", notes)
	}
}

func TestConcurrentSubmissionsOrdered(t *testing.T) {
	e, ctx := setupEnv(t)
	landlord := registerLandlord(t, ctx, e, "concurrent@example.com")

	const submitters = 8
	var mu sync.Mutex
	ids := []int64{}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < submitters; i++ {
		g.Go(func() error {
			req, err := e.verifications.Submit(gctx, landlord.Email, "license", jpegBlob(), "image/jpeg")
			if err != nil {
				return err
			}
			mu.Lock()
			ids = append(ids, req.ID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent submit: %v", err)
	}

	seen := map[int64]bool{}
	var max int64
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate request id %d", id)
		}
		seen[id] = true
		if id > max {
			max = id
		}
	}

	view, err := e.verifications.Status(ctx, landlord.Email)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.LastRequest == nil || view.LastRequest.ID != max {
		t.Fatalf("latest = %+v, want id %d", view.LastRequest, max)
	}
}

func TestListingProvisioning(t *testing.T) {
	e, ctx := setupEnv(t)
	landlord := registerLandlord(t, ctx, e, "listings@example.com")

	price := 1500000.0
	res, err := e.listings.Create(ctx, landlord.Email, listing.CreateInput{
		Title:      "Room near campus",
		Address:    "12 Luong Ngoc Quyen",
		BasePrice:  &price,
		AmenityIDs: []int64{1, 1, 2, 99},
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if len(res.AmenityNames) != 2 {
		t.Fatalf("amenity names = %v, want the two existing amenities", res.AmenityNames)
	}

	var links int
	if err := e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listing_amenities WHERE listing_id = $1`, res.ListingID).Scan(&links); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 2 {
		t.Fatalf("links = %d, want duplicates and unknown ids dropped", links)
	}

	summaries, err := e.listings.ListForLandlord(ctx, landlord.Email)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 || summaries[0].City != "Thai Nguyen" {
		t.Fatalf("summaries = %+v, want one row with default city", summaries)
	}
	if summaries[0].AmenityNames == "" {
		t.Fatal("amenity names not aggregated")
	}

	// Blank title writes nothing.
	if _, err := e.listings.Create(ctx, landlord.Email, listing.CreateInput{
		Address:   "5 Hoang Van Thu",
		BasePrice: &price,
	}); err == nil {
		t.Fatal("blank title accepted")
	}
	var count int
	if err := e.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE landlord_id = $1`, landlord.ID).Scan(&count); err != nil {
		t.Fatalf("count listings: %v", err)
	}
	if count != 1 {
		t.Fatalf("listings = %d, want invalid create to write no row", count)
	}
}
