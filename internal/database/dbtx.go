package database

import (
	"database/sql"
)

// DBTX defines the database operations needed by repositories.
// It is satisfied by *DB and keeps repositories testable against fakes.
type DBTX interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	GetDialect() Dialect
}
