package schema

// Column pairs an expected column name with the DDL that adds it when a
// deployed database predates it. Added columns are always nullable so the
// statement is safe against populated tables.
type Column struct {
	Name   string
	AddSQL string
}

// Table declares the full shape a managed table must have. CreateSQL builds
// the table from scratch; Columns covers stores migrated from older
// deployments where the table exists but newer fields do not.
type Table struct {
	Name      string
	CreateSQL string
	Columns   []Column
}

// Tables enumerates every table the service writes to. The guardian only
// ever adds tables and columns from this list; it never drops or alters
// existing definitions.
func Tables() []Table {
	return []Table{
		{
			Name: "accounts",
			CreateSQL: `
CREATE TABLE accounts (
    id            BIGSERIAL PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'active',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		},
		{
			Name: "landlord_profiles",
			CreateSQL: `
CREATE TABLE landlord_profiles (
    account_id      BIGINT PRIMARY KEY REFERENCES accounts(id),
    full_name       TEXT NOT NULL DEFAULT '',
    phone           TEXT,
    contact_address TEXT,
    verified        BOOLEAN NOT NULL DEFAULT false,
    verified_at     TIMESTAMPTZ
)`,
			Columns: []Column{
				{Name: "verified", AddSQL: `ALTER TABLE landlord_profiles ADD COLUMN verified BOOLEAN NOT NULL DEFAULT false`},
				{Name: "verified_at", AddSQL: `ALTER TABLE landlord_profiles ADD COLUMN verified_at TIMESTAMPTZ`},
			},
		},
		{
			Name: "student_profiles",
			CreateSQL: `
CREATE TABLE student_profiles (
    account_id      BIGINT PRIMARY KEY REFERENCES accounts(id),
    full_name       TEXT NOT NULL DEFAULT '',
    phone           TEXT,
    school          TEXT,
    contact_address TEXT
)`,
			Columns: []Column{
				{Name: "contact_address", AddSQL: `ALTER TABLE student_profiles ADD COLUMN contact_address TEXT`},
			},
		},
		{
			Name: "verification_requests",
			CreateSQL: `
CREATE TABLE verification_requests (
    id            BIGSERIAL PRIMARY KEY,
    landlord_id   BIGINT NOT NULL REFERENCES landlord_profiles(account_id),
    document_type TEXT NOT NULL,
    evidence      BYTEA NOT NULL,
    status        SMALLINT NOT NULL DEFAULT 0,
    reviewer_id   BIGINT,
    submitted_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    file_path     TEXT
)`,
			Columns: []Column{
				{Name: "submitted_at", AddSQL: `ALTER TABLE verification_requests ADD COLUMN submitted_at TIMESTAMPTZ`},
				{Name: "file_path", AddSQL: `ALTER TABLE verification_requests ADD COLUMN file_path TEXT`},
			},
		},
		{
			Name: "listings",
			CreateSQL: `
CREATE TABLE listings (
    id            BIGSERIAL PRIMARY KEY,
    landlord_id   BIGINT NOT NULL REFERENCES landlord_profiles(account_id),
    title         TEXT NOT NULL,
    description   TEXT,
    address       TEXT NOT NULL,
    ward          TEXT,
    district      TEXT,
    city          TEXT,
    area          NUMERIC(8,2),
    base_price    NUMERIC(12,2) NOT NULL,
    max_occupants INT,
    map_url       TEXT,
    status        SMALLINT NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
			Columns: []Column{
				{Name: "map_url", AddSQL: `ALTER TABLE listings ADD COLUMN map_url TEXT`},
			},
		},
		{
			Name: "amenities",
			CreateSQL: `
CREATE TABLE amenities (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT
)`,
		},
		{
			Name: "listing_amenities",
			CreateSQL: `
CREATE TABLE listing_amenities (
    listing_id BIGINT NOT NULL REFERENCES listings(id),
    amenity_id BIGINT NOT NULL REFERENCES amenities(id),
    PRIMARY KEY (listing_id, amenity_id)
)`,
		},
		{
			Name: "notifications",
			CreateSQL: `
CREATE TABLE notifications (
    id         BIGSERIAL PRIMARY KEY,
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    kind       TEXT NOT NULL,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    read       BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		},
	}
}
