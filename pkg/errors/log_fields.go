package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// pgDetail is the subset of a Postgres error worth logging. The journal can
// run behind either driver, so both error types are recognised.
type pgDetail struct {
	code       string
	constraint string
	table      string
	message    string
}

func postgresDetail(err error) (pgDetail, bool) {
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return pgDetail{pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName, pgxErr.Message}, true
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return pgDetail{string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Message}, true
	}
	return pgDetail{}, false
}

// Chain lists every error in err's unwrap chain, outermost first.
func Chain(err error) []string {
	var chain []string
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	return chain
}

// LogFields flattens err into structured log fields: the code, the unwrap
// chain and any Postgres diagnostics found along it.
func LogFields(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	fields := map[string]any{
		"error":       err.Error(),
		"error_code":  As(err).Code(),
		"error_chain": Chain(err),
		"retryable":   Retryable(err),
	}
	if pg, ok := postgresDetail(err); ok {
		fields["pg_code"] = pg.code
		fields["pg_constraint"] = pg.constraint
		fields["pg_table"] = pg.table
		fields["pg_message"] = pg.message
	}
	return fields
}
