package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes translated by Errors.
const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
	codeForeignKey      = "23503"
)

// Errors names the domain errors substituted for driver errors. A nil
// field leaves the corresponding driver error unchanged.
type Errors struct {
	// NotFound replaces sql.ErrNoRows and foreign key violations.
	NotFound error
	// Duplicate replaces unique violations.
	Duplicate error
	// Invalid replaces check constraint violations.
	Invalid error
}

// Map translates err. Constraint names are kept in the message.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var domain error
	switch pgErr.Code {
	case codeUniqueViolation:
		domain = e.Duplicate
	case codeCheckViolation:
		domain = e.Invalid
	case codeForeignKey:
		domain = e.NotFound
	}
	if domain == nil {
		return err
	}
	if pgErr.ConstraintName != "" {
		return fmt.Errorf("%w (%s)", domain, pgErr.ConstraintName)
	}
	return domain
}
