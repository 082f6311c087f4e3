// Package httpapi is the transport layer: request decoding, routing, and
// translation of domain errors into the response envelope. Business rules
// live in the domain services.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roomflow/account"
	"roomflow/listing"
	"roomflow/metrics"
	"roomflow/verification"
)

// AccountService is the slice of account.Service the transport needs.
type AccountService interface {
	Register(ctx context.Context, req account.RegisterRequest) (account.Account, error)
	Login(ctx context.Context, req account.LoginRequest) (account.LoginResult, error)
	Lookup(ctx context.Context, email string) (account.Account, error)
	Ban(ctx context.Context, id int64, reason string) error
	Unban(ctx context.Context, id int64) error
	List(ctx context.Context, role account.Role) ([]account.Summary, error)
}

type ProfileService interface {
	GetLandlord(ctx context.Context, email string) (account.LandlordProfile, error)
	SaveLandlord(ctx context.Context, email string, update account.ProfileUpdate) (account.LandlordProfile, error)
	GetStudent(ctx context.Context, email string) (account.StudentProfile, error)
	SaveStudent(ctx context.Context, email string, update account.ProfileUpdate) (account.StudentProfile, error)
}

type VerificationService interface {
	Submit(ctx context.Context, email, documentType string, evidence []byte, mediaTypeHint string) (verification.Request, error)
	Approve(ctx context.Context, requestID int64, reviewerEmail string) error
	Reject(ctx context.Context, requestID int64, reviewerEmail, reason string) error
	Status(ctx context.Context, email string) (verification.StatusView, error)
	ListByDecision(ctx context.Context, decision verification.Decision) ([]verification.RequestSummary, error)
}

type ListingService interface {
	Create(ctx context.Context, email string, in listing.CreateInput) (listing.CreateResult, error)
	ListForLandlord(ctx context.Context, email string) ([]listing.Summary, error)
	Amenities(ctx context.Context) ([]listing.Amenity, error)
}

// Pinger reports store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	accounts      AccountService
	profiles      ProfileService
	verifications VerificationService
	listings      ListingService
	store         Pinger
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

func NewServer(accounts AccountService, profiles ProfileService, verifications VerificationService, listings ListingService, store Pinger, logger *slog.Logger, m *metrics.Metrics) *Server {
	return &Server{
		accounts:      accounts,
		profiles:      profiles,
		verifications: verifications,
		listings:      listings,
		store:         store,
		logger:        logger,
		metrics:       m,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.recoverPanic)
	r.Use(s.instrument)
	r.Use(limitBody(maxRequestBody))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/accounts/{email}", s.handleGetAccount)

		r.Get("/landlord/profile", s.handleGetLandlordProfile)
		r.Post("/landlord/profile", s.handleSaveLandlordProfile)
		r.Get("/student/profile", s.handleGetStudentProfile)
		r.Post("/student/profile", s.handleSaveStudentProfile)

		r.Get("/landlord/verify-status", s.handleVerifyStatus)
		r.Post("/landlord/verify-request", s.handleVerifySubmit)
		r.Get("/landlord/listings", s.handleListListings)
		r.Post("/landlord/listings", s.handleCreateListing)
		r.Get("/amenities", s.handleListAmenities)

		r.Get("/admin/verify-requests", s.handleListVerifyRequests)
		r.Post("/admin/verify-requests/{id}/approve", s.handleApprove)
		r.Post("/admin/verify-requests/{id}/reject", s.handleReject)
		r.Get("/admin/accounts", s.handleListAccounts)
		r.Post("/admin/accounts/{id}/ban", s.handleBan)
		r.Post("/admin/accounts/{id}/unban", s.handleUnban)

		// Unknown /api routes answer in the envelope, not the default
		// plain-text 404.
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, "route not found", nil)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, "store unreachable", nil)
		return
	}
	writeJSON(w, http.StatusOK, "ok", nil)
}

// maxRequestBody caps request bodies at the evidence size limit. Base64
// overhead means an evidence payload near the limit is rejected here
// before it is ever decoded.
const maxRequestBody = verification.MaxEvidenceSize

func limitBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", r.Context().Value(requestIDKey),
				)
				writeJSON(w, http.StatusInternalServerError, "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusWriter captures the response code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, r.Method, strconv.Itoa(sw.status), start)
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", r.Context().Value(requestIDKey),
		)
	})
}
