package repo

import (
	"database/sql"
	"errors"
	"strings"

	dom "github.com/josenava/meal-calendar/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// translateMealErr maps driver errors to domain errors. It is the only place
// where a constraint violation turns into ErrSlotOccupied.
func translateMealErr(err error, slot dom.Slot) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return dom.ErrNotFound
	case isPGUniqueViolation(err), isSQLiteUniqueViolation(err):
		return dom.SlotOccupied(slot)
	}
	return err
}

func translateUserErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return dom.ErrNotFound
	case isPGUniqueViolation(err), isSQLiteUniqueViolation(err):
		return dom.ErrUsernameTaken
	}
	return err
}

// isPGUniqueViolation reports SQLSTATE 23505.
func isPGUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
