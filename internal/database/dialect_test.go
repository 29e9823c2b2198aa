package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT body FROM documents WHERE doc_key = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want query unchanged", got)
		}
	})

	t.Run("UpsertDocumentQuery", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertDocumentQuery(), "ON CONFLICT") {
			t.Error("UpsertDocumentQuery() should use ON CONFLICT for SQLite")
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "INSERT INTO documents (doc_key, body) VALUES (?, ?)"
		expected := "INSERT INTO documents (doc_key, body) VALUES ($1, $2)"
		if got := dialect.RewriteQuery(query); got != expected {
			t.Errorf("RewriteQuery() = %v, want %v", got, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT body FROM documents WHERE doc_key = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want query unchanged", got)
		}
	})

	t.Run("UpsertDocumentQuery", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertDocumentQuery(), "ON DUPLICATE KEY UPDATE") {
			t.Error("UpsertDocumentQuery() should use ON DUPLICATE KEY UPDATE for MySQL")
		}
	})
}
