package store

import (
	"context"
	"embed"
	"log/slog"
	"path"

	"github.com/pkg/errors"

	"github.com/neusearch/neusearch/internal/version"
)

//go:embed migration
var migrationFS embed.FS

// Migrate applies the schema for the driver's dialect. Every statement is
// idempotent, so running it on an existing database is a no-op.
//
// A database last migrated by a newer binary is refused.
func (s *Store) Migrate(ctx context.Context) error {
	dialect := s.driver.Dialect()
	file := path.Join("migration", dialect, "LATEST.sql")
	schema, err := migrationFS.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "no schema for dialect %s", dialect)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(schema)); err != nil {
		return errors.Wrapf(err, "failed to apply %s", file)
	}

	if err := s.checkSchemaVersion(ctx); err != nil {
		return err
	}

	slog.Info("database schema applied", "dialect", dialect)
	return nil
}

// SchemaVersion returns the highest binary version recorded in the database,
// or "" when none was recorded.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	rows, err := s.driver.GetDB().QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return "", errors.Wrap(err, "failed to read schema versions")
	}
	defer rows.Close()

	latest := ""
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", errors.Wrap(err, "failed to scan schema version")
		}
		if latest == "" || version.IsVersionGreaterOrEqualThan(v, latest) {
			latest = v
		}
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrap(err, "failed to read schema versions")
	}
	return latest, nil
}

func (s *Store) checkSchemaVersion(ctx context.Context) error {
	current := ""
	if s.profile != nil {
		current = s.profile.Version
	}
	if current == "" {
		return nil
	}

	latest, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if latest != "" && !version.IsVersionGreaterOrEqualThan(current, latest) {
		return errors.Errorf("database was migrated by version %s, refusing to run older version %s", latest, current)
	}

	stmt := "INSERT INTO schema_version (version) VALUES (?) ON CONFLICT (version) DO NOTHING"
	if s.driver.Dialect() == "postgres" {
		stmt = "INSERT INTO schema_version (version) VALUES ($1) ON CONFLICT (version) DO NOTHING"
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, stmt, current); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}
