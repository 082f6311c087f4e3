package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the guardian needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Guardian idempotently brings the database up to the declared shape in
// Tables. It only ever adds tables and columns, so running it against a
// live store is safe; it never removes or rewrites anything.
//
// A successful pass is cached: later Ensure calls return without touching
// the catalog again, so handlers can depend on it without paying a
// metadata query per request.
type Guardian struct {
	db     DB
	tables []Table

	mu      sync.Mutex
	ensured bool
}

func NewGuardian(db DB) *Guardian {
	return &Guardian{db: db, tables: Tables()}
}

// Ensure checks every managed table and column and creates whatever is
// missing. Concurrent callers serialize on the guardian; the DDL itself is
// additive, so racing a second process running the same pass is harmless.
func (g *Guardian) Ensure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ensured {
		return nil
	}

	for _, table := range g.tables {
		exists, err := g.tableExists(ctx, table.Name)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := g.db.Exec(ctx, table.CreateSQL); err != nil {
				return fmt.Errorf("schema: create table %s: %w", table.Name, err)
			}
			continue
		}
		for _, col := range table.Columns {
			present, err := g.columnExists(ctx, table.Name, col.Name)
			if err != nil {
				return err
			}
			if present {
				continue
			}
			if _, err := g.db.Exec(ctx, col.AddSQL); err != nil {
				return fmt.Errorf("schema: add column %s.%s: %w", table.Name, col.Name, err)
			}
		}
	}

	g.ensured = true
	return nil
}

func (g *Guardian) tableExists(ctx context.Context, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)
	`
	var exists bool
	if err := g.db.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("schema: check table %s: %w", name, err)
	}
	return exists, nil
}

func (g *Guardian) columnExists(ctx context.Context, table, column string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
		)
	`
	var exists bool
	if err := g.db.QueryRow(ctx, query, table, column).Scan(&exists); err != nil {
		return false, fmt.Errorf("schema: check column %s.%s: %w", table, column, err)
	}
	return exists, nil
}
