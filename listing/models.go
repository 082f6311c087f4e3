package listing

import "time"

// Lifecycle status of a listing. New listings start as drafts and are
// published through a separate surface.
const (
	StatusDraft     int16 = 0
	StatusPublished int16 = 1
)

type Listing struct {
	ID           int64
	LandlordID   int64
	Title        string
	Description  string
	Address      string
	Ward         string
	District     string
	City         string
	Area         *float64
	BasePrice    float64
	MaxOccupants *int
	MapURL       string
	Status       int16
	CreatedAt    time.Time
}

// Summary is a listing row joined with the names of its linked amenities,
// as shown on the landlord's own listings page.
type Summary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Address      string    `json:"address"`
	Ward         string    `json:"ward,omitempty"`
	District     string    `json:"district,omitempty"`
	City         string    `json:"city"`
	Area         *float64  `json:"area,omitempty"`
	BasePrice    float64   `json:"basePrice"`
	MaxOccupants *int      `json:"maxOccupants,omitempty"`
	Status       int16     `json:"status"`
	AmenityNames string    `json:"amenityNames"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Amenity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateInput carries the caller-supplied fields for a new listing.
// Numeric fields arrive already coerced; malformed values are represented
// as nil rather than rejected.
type CreateInput struct {
	Title        string
	Description  string
	Address      string
	Ward         string
	District     string
	City         string
	Area         *float64
	BasePrice    *float64
	MaxOccupants *int
	MapURL       string
	AmenityIDs   []int64
}

// CreateResult confirms what was provisioned.
type CreateResult struct {
	ListingID    int64    `json:"listingId"`
	AmenityNames []string `json:"amenityNames"`
}
