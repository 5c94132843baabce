package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indica que el registro pedido no existe.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indica que ya existe un registro con la misma clave.
	ErrConflict = errors.New("record already exists")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
