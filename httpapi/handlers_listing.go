package httpapi

import (
	"net/http"

	"roomflow/listing"
)

type createListingRequest struct {
	Email        string    `json:"email"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Address      string    `json:"address"`
	Ward         string    `json:"ward"`
	District     string    `json:"district"`
	City         string    `json:"city"`
	Area         flexFloat `json:"area"`
	BasePrice    flexFloat `json:"basePrice"`
	MaxOccupants flexInt   `json:"maxOccupants"`
	MapURL       string    `json:"mapUrl"`
	AmenityIDs   []int64   `json:"amenityIds"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	res, err := s.listings.Create(r.Context(), req.Email, listing.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Address:      req.Address,
		Ward:         req.Ward,
		District:     req.District,
		City:         req.City,
		Area:         req.Area.value,
		BasePrice:    req.BasePrice.value,
		MaxOccupants: req.MaxOccupants.value,
		MapURL:       req.MapURL,
		AmenityIDs:   req.AmenityIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementListingsCreated()
	}
	writeJSON(w, http.StatusCreated, "listing created", res)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	listings, err := s.listings.ListForLandlord(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", listings)
}

func (s *Server) handleListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := s.listings.Amenities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", amenities)
}
