package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"roomflow/verification"
)

type verifyRequestView struct {
	ID             int64      `json:"id"`
	LandlordID     int64      `json:"landlordId"`
	LandlordEmail  string     `json:"landlordEmail,omitempty"`
	LandlordName   string     `json:"landlordName,omitempty"`
	ContactAddress *string    `json:"contactAddress,omitempty"`
	DocumentType   string     `json:"documentType"`
	Status         int16      `json:"status"`
	ReviewerID     *int64     `json:"reviewerId,omitempty"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	FilePath       *string    `json:"filePath,omitempty"`
}

func summaryToView(sum verification.RequestSummary) verifyRequestView {
	return verifyRequestView{
		ID:             sum.ID,
		LandlordID:     sum.LandlordID,
		LandlordEmail:  sum.LandlordEmail,
		LandlordName:   sum.LandlordName,
		ContactAddress: sum.ContactAddress,
		DocumentType:   sum.DocumentType,
		Status:         int16(sum.Decision),
		ReviewerID:     sum.ReviewerID,
		SubmittedAt:    sum.SubmittedAt,
		FilePath:       sum.FilePath,
	}
}

func (s *Server) handleVerifySubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		DocumentType string `json:"documentType"`
		FileBase64   string `json:"fileBase64"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	evidence, hint, err := verification.DecodeDataURI(req.FileBase64)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.verifications.Submit(r.Context(), req.Email, req.DocumentType, evidence, hint)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementVerifySubmitted()
	}
	writeJSON(w, http.StatusCreated, "verification request submitted", map[string]any{
		"requestId": created.ID,
		"filePath":  created.FilePath,
	})
}

func (s *Server) handleVerifyStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	view, err := s.verifications.Status(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	data := map[string]any{
		"verified":   view.Verified,
		"verifiedAt": view.VerifiedAt,
		"canPost":    verification.CanPost(view.Verified),
	}
	if view.LastRequest != nil {
		last := summaryToView(*view.LastRequest)
		data["lastRequest"] = last
	}
	writeJSON(w, http.StatusOK, "ok", data)
}

func (s *Server) handleListVerifyRequests(w http.ResponseWriter, r *http.Request) {
	decision := verification.DecisionPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 2 {
			writeJSON(w, http.StatusBadRequest, "invalid status filter", nil)
			return
		}
		decision = verification.Decision(n)
	}

	summaries, err := s.verifications.ListByDecision(r.Context(), decision)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]verifyRequestView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, summaryToView(sum))
	}
	writeJSON(w, http.StatusOK, "ok", views)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request id", nil)
		return
	}
	var req struct {
		ReviewerEmail string `json:"reviewerEmail"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	if err := s.verifications.Approve(r.Context(), id, req.ReviewerEmail); err != nil {
		writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementVerifyDecided("approved")
	}
	writeJSON(w, http.StatusOK, "request approved", nil)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request id", nil)
		return
	}
	var req struct {
		ReviewerEmail string `json:"reviewerEmail"`
		Reason        string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	if err := s.verifications.Reject(r.Context(), id, req.ReviewerEmail, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementVerifyDecided("rejected")
	}
	writeJSON(w, http.StatusOK, "request rejected", nil)
}
