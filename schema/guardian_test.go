package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	exists bool
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 1 {
		return errors.New("unexpected scan arity")
	}
	*(dest[0].(*bool)) = r.exists
	return nil
}

// fakeDB answers existence queries from two sets and records executed DDL.
type fakeDB struct {
	tables  map[string]bool
	columns map[string]bool
	queries int
	execs   []string
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries++
	if strings.Contains(sql, "information_schema.columns") {
		key := args[0].(string) + "." + args[1].(string)
		return fakeRow{exists: f.columns[key]}
	}
	return fakeRow{exists: f.tables[args[0].(string)]}
}

func TestEnsure_CreatesMissingTables(t *testing.T) {
	fdb := &fakeDB{tables: map[string]bool{}, columns: map[string]bool{}}
	g := NewGuardian(fdb)

	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if want := len(Tables()); len(fdb.execs) != want {
		t.Fatalf("expected %d CREATE TABLE statements, got %d", want, len(fdb.execs))
	}
	for _, ddl := range fdb.execs {
		if !strings.Contains(ddl, "CREATE TABLE") {
			t.Fatalf("expected only CREATE TABLE on an empty store, got %q", ddl)
		}
	}
}

func TestEnsure_AddsMissingColumnsOnly(t *testing.T) {
	fdb := &fakeDB{tables: map[string]bool{}, columns: map[string]bool{}}
	for _, table := range Tables() {
		fdb.tables[table.Name] = true
		for _, col := range table.Columns {
			fdb.columns[table.Name+"."+col.Name] = true
		}
	}
	// Simulate a store predating the verification timestamps.
	delete(fdb.columns, "landlord_profiles.verified_at")
	delete(fdb.columns, "verification_requests.file_path")

	g := NewGuardian(fdb)
	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if len(fdb.execs) != 2 {
		t.Fatalf("expected 2 ALTER statements, got %d: %v", len(fdb.execs), fdb.execs)
	}
	for _, ddl := range fdb.execs {
		if !strings.Contains(ddl, "ADD COLUMN") {
			t.Fatalf("expected ALTER ... ADD COLUMN, got %q", ddl)
		}
	}
}

func TestEnsure_CachesSuccessfulPass(t *testing.T) {
	fdb := &fakeDB{tables: map[string]bool{}, columns: map[string]bool{}}
	g := NewGuardian(fdb)

	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	queriesAfterFirst := fdb.queries

	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if fdb.queries != queriesAfterFirst {
		t.Fatalf("expected cached pass to skip catalog queries, got %d extra", fdb.queries-queriesAfterFirst)
	}
}

func TestTables_DeclaresEverythingTheServiceWrites(t *testing.T) {
	want := []string{
		"accounts", "landlord_profiles", "student_profiles",
		"verification_requests", "listings", "amenities",
		"listing_amenities", "notifications",
	}
	got := map[string]bool{}
	for _, table := range Tables() {
		got[table.Name] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Fatalf("missing table spec for %s", name)
		}
	}
}
