package driver

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
)

// constraint violation codes
const (
	pgForeignKeyViolation    = "23503"
	pgUniqueViolation        = "23505"
	mysqlForeignKeyViolation = 1452
	mysqlDuplicateEntry      = 1062
)

// IsForeignKeyViolation reports whether err was raised by a missing referenced row
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlForeignKeyViolation
	}
	return false
}

// IsUniqueViolation reports whether err was raised by a duplicated key
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}
