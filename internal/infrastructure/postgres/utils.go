package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Código SQLSTATE de unique_violation en PostgreSQL.
const uniqueViolationCode = "23505"

// isUniqueViolation detecta choques de índice único (SKU, código de barras,
// número de lote por producto) para traducirlos a domain.ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
