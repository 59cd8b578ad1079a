package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/evaluation-backend/internal/apperr"
)

// DBTX is the subset of *pgxpool.Pool (and pgx.Tx) the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// translateError maps constraint violations to named conflicts and wraps
// everything else as a storage failure. Raw SQLSTATE codes never leave
// this package.
func translateError(op string, err error, duplicateMsg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(apperr.ReasonDuplicateName, duplicateMsg)
		case pgerrcode.ForeignKeyViolation:
			return apperr.Conflict(apperr.ReasonMissingParent, "Subject does not exist")
		case pgerrcode.CheckViolation:
			return apperr.Validation("Marks must be between 0 and 10", "marks")
		}
	}
	return apperr.Storage(op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
