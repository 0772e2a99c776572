// Package repository implements the persistence layer (SPEC_FULL.md §4.G)
// directly against database/sql, since the pack carries no sqlc-generated
// dbstore for this schema (see DESIGN.md "Hand-rolled layers"). Each
// repository type is a thin hand-written mapper between domain types and
// SQLite rows, following the query/scan style of the kept internal/db
// helpers.
package repository

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"revengine/internal/domain"
)

// mapDBError translates a database/sql or go-sqlite3 error into the
// domain error taxonomy (SPEC_FULL.md §7): not-found and any SQLite
// constraint violation (unique, foreign key, check, not null) become typed
// domain errors; everything else passes through
// unchanged for the caller to wrap.
func mapDBError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("%s", notFoundMsg)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return domain.ErrConflict("constraint violation: %s", sqliteErr.Error())
	}
	return err
}
