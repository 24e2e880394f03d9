package database

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect establishes a connection to PostgreSQL
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// One writer per table plus replay reads; keep the pool small.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return db, nil
}
