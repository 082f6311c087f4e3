package listing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	EnsureProfile(ctx context.Context, tx pgx.Tx, accountID int64) error
	Insert(ctx context.Context, tx pgx.Tx, l Listing) (int64, error)
	LinkAmenity(ctx context.Context, tx pgx.Tx, listingID, amenityID int64) error
	AmenityNames(ctx context.Context, tx pgx.Tx, listingID int64) ([]string, error)
	ListByLandlord(ctx context.Context, landlordID int64) ([]Summary, error)
	Amenities(ctx context.Context) ([]Amenity, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) EnsureProfile(ctx context.Context, tx pgx.Tx, accountID int64) error {
	const query = `
		INSERT INTO landlord_profiles (account_id, full_name, verified)
		VALUES ($1, '', false)
		ON CONFLICT (account_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, accountID); err != nil {
		return fmt.Errorf("listing: ensure profile: %w", err)
	}
	return nil
}

func (r *PGRepository) Insert(ctx context.Context, tx pgx.Tx, l Listing) (int64, error) {
	const query = `
		INSERT INTO listings (landlord_id, title, description, address, ward, district, city,
			area, base_price, max_occupants, map_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query,
		l.LandlordID,
		l.Title,
		l.Description,
		l.Address,
		l.Ward,
		l.District,
		l.City,
		l.Area,
		l.BasePrice,
		l.MaxOccupants,
		l.MapURL,
		l.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("listing: insert: %w", err)
	}
	return id, nil
}

// LinkAmenity inserts a (listing, amenity) link only when the amenity exists
// in the catalog and the pair is not already linked. Duplicates are screened
// by the existence lookup, never by a constraint violation.
func (r *PGRepository) LinkAmenity(ctx context.Context, tx pgx.Tx, listingID, amenityID int64) error {
	const query = `
		INSERT INTO listing_amenities (listing_id, amenity_id)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM amenities WHERE id = $2)
		  AND NOT EXISTS (
			SELECT 1 FROM listing_amenities WHERE listing_id = $1 AND amenity_id = $2
		  )
	`
	if _, err := tx.Exec(ctx, query, listingID, amenityID); err != nil {
		return fmt.Errorf("listing: link amenity: %w", err)
	}
	return nil
}

func (r *PGRepository) AmenityNames(ctx context.Context, tx pgx.Tx, listingID int64) ([]string, error) {
	const query = `
		SELECT a.name
		FROM listing_amenities la
		JOIN amenities a ON a.id = la.amenity_id
		WHERE la.listing_id = $1
		ORDER BY a.name
	`

	rows, err := tx.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing: amenity names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing: amenity names: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PGRepository) ListByLandlord(ctx context.Context, landlordID int64) ([]Summary, error) {
	const query = `
		SELECT l.id, l.title, l.address, COALESCE(l.ward, ''), COALESCE(l.district, ''),
			COALESCE(l.city, ''), l.area::float8, l.base_price::float8, l.max_occupants,
			l.status, COALESCE(string_agg(a.name, ', ' ORDER BY a.name), ''), l.created_at
		FROM listings l
		LEFT JOIN listing_amenities la ON la.listing_id = l.id
		LEFT JOIN amenities a ON a.id = la.amenity_id
		WHERE l.landlord_id = $1
		GROUP BY l.id
		ORDER BY l.id DESC
	`

	rows, err := r.pool.Query(ctx, query, landlordID)
	if err != nil {
		return nil, fmt.Errorf("listing: list by landlord: %w", err)
	}
	defer rows.Close()

	list := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Address,
			&s.Ward,
			&s.District,
			&s.City,
			&s.Area,
			&s.BasePrice,
			&s.MaxOccupants,
			&s.Status,
			&s.AmenityNames,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("listing: list by landlord: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *PGRepository) Amenities(ctx context.Context) ([]Amenity, error) {
	const query = `
		SELECT id, name, COALESCE(description, '')
		FROM amenities
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing: amenities: %w", err)
	}
	defer rows.Close()

	list := []Amenity{}
	for rows.Next() {
		var a Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("listing: amenities: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
