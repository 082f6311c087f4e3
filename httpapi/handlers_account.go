package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"roomflow/account"
)

type accountView struct {
	ID     int64          `json:"id"`
	Email  string         `json:"email"`
	Role   account.Role   `json:"role"`
	Status account.Status `json:"status"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req account.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	acc, err := s.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "account created", accountView{
		ID:     acc.ID,
		Email:  acc.Email,
		Role:   acc.Role,
		Status: acc.Status,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req account.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	res, err := s.accounts.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "login successful", map[string]any{
		"role":     res.Role,
		"redirect": res.Redirect,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	acc, err := s.accounts.Lookup(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", accountView{
		ID:     acc.ID,
		Email:  acc.Email,
		Role:   acc.Role,
		Status: acc.Status,
	})
}

type summaryView struct {
	ID       int64          `json:"id"`
	Email    string         `json:"email"`
	Role     account.Role   `json:"role"`
	Status   account.Status `json:"status"`
	FullName *string        `json:"fullName,omitempty"`
	Phone    *string        `json:"phone,omitempty"`
	School   *string        `json:"school,omitempty"`
	Verified *bool          `json:"verified,omitempty"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	role := account.Role(r.URL.Query().Get("role"))
	if role == "all" {
		role = ""
	}

	summaries, err := s.accounts.List(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]summaryView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, summaryView{
			ID:       sum.ID,
			Email:    sum.Email,
			Role:     sum.Role,
			Status:   sum.Status,
			FullName: sum.FullName,
			Phone:    sum.Phone,
			School:   sum.School,
			Verified: sum.Verified,
		})
	}
	writeJSON(w, http.StatusOK, "ok", views)
}

func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid account id", nil)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		req.Reason = ""
	}

	if err := s.accounts.Ban(r.Context(), id, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "account banned", nil)
}

func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid account id", nil)
		return
	}

	if err := s.accounts.Unban(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "account restored", nil)
}

type landlordProfileView struct {
	AccountID      int64      `json:"accountId"`
	FullName       string     `json:"fullName"`
	Phone          *string    `json:"phone,omitempty"`
	ContactAddress *string    `json:"contactAddress,omitempty"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`
}

func landlordProfileToView(p account.LandlordProfile) landlordProfileView {
	return landlordProfileView{
		AccountID:      p.AccountID,
		FullName:       p.FullName,
		Phone:          p.Phone,
		ContactAddress: p.ContactAddress,
		Verified:       p.Verified,
		VerifiedAt:     p.VerifiedAt,
	}
}

func (s *Server) handleGetLandlordProfile(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	profile, err := s.profiles.GetLandlord(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", landlordProfileToView(profile))
}

type profileRequest struct {
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	School         string `json:"school"`
	ContactAddress string `json:"contactAddress"`
}

func (s *Server) handleSaveLandlordProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	profile, err := s.profiles.SaveLandlord(r.Context(), req.Email, account.ProfileUpdate{
		FullName:       req.FullName,
		Phone:          req.Phone,
		ContactAddress: req.ContactAddress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "profile saved", landlordProfileToView(profile))
}

type studentProfileView struct {
	AccountID      int64   `json:"accountId"`
	FullName       string  `json:"fullName"`
	Phone          *string `json:"phone,omitempty"`
	School         *string `json:"school,omitempty"`
	ContactAddress *string `json:"contactAddress,omitempty"`
}

func studentProfileToView(p account.StudentProfile) studentProfileView {
	return studentProfileView{
		AccountID:      p.AccountID,
		FullName:       p.FullName,
		Phone:          p.Phone,
		School:         p.School,
		ContactAddress: p.ContactAddress,
	}
}

func (s *Server) handleGetStudentProfile(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	profile, err := s.profiles.GetStudent(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", studentProfileToView(profile))
}

func (s *Server) handleSaveStudentProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	profile, err := s.profiles.SaveStudent(r.Context(), req.Email, account.ProfileUpdate{
		FullName:       req.FullName,
		Phone:          req.Phone,
		School:         req.School,
		ContactAddress: req.ContactAddress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "profile saved", studentProfileToView(profile))
}
