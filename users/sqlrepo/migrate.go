package sqlrepo

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
)

const schemaName = "users"

// migrations are applied in order; the index+1 is the schema version they produce.
var migrations = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			age INTEGER NOT NULL
		)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			age INTEGER NOT NULL
		)`,
	},
}

// Migrate brings the schema up to date, recording progress in schema_version.
func (r *UserRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		name TEXT PRIMARY KEY,
		version INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("[sqlrepo Migrate] creating schema_version table: %w", err)
	}

	version, err := r.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	steps := migrations[r.driver]
	for i := version; i < len(steps); i++ {
		if err := r.applyMigration(ctx, i+1, steps[i]); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the applied schema version, 0 when nothing has been applied.
func (r *UserRepo) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx, r.bind(`SELECT version FROM schema_version WHERE name = ?`), schemaName).Scan(&version)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("[sqlrepo SchemaVersion] %w", err)
	}
	return version, nil
}

func (r *UserRepo) applyMigration(ctx context.Context, version int, statement string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[sqlrepo Migrate] begin v%d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, statement); err != nil {
		return fmt.Errorf("[sqlrepo Migrate] apply v%d: %w", version, err)
	}

	record, args := `UPDATE schema_version SET version = ? WHERE name = ?`, []any{version, schemaName}
	if version == 1 {
		record, args = `INSERT INTO schema_version (name, version) VALUES (?, ?)`, []any{schemaName, version}
	}
	if _, err := tx.ExecContext(ctx, r.bind(record), args...); err != nil {
		return fmt.Errorf("[sqlrepo Migrate] record v%d: %w", version, err)
	}
	return tx.Commit()
}
