package db

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

type PostgresDB struct {
	Conn *sql.DB
}

func NewPostgresDB(host string, port int, user, password, dbname string) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Connected to PostgreSQL")
	return &PostgresDB{Conn: conn}, nil
}

// EnsureSchema creates the key-value shaped tables if they are missing.
// Orders and events carry composite (pk, sk) keys mirroring the
// partition/sort key design.
func (db *PostgresDB) EnsureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id           TEXT PRIMARY KEY,
			product_name TEXT NOT NULL,
			code         TEXT NOT NULL,
			price        DOUBLE PRECISION NOT NULL,
			model        TEXT NOT NULL DEFAULT '',
			product_url  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			pk            TEXT NOT NULL,
			sk            TEXT NOT NULL,
			created_at    BIGINT NOT NULL,
			payment       TEXT NOT NULL,
			total_price   DOUBLE PRECISION NOT NULL,
			shipping_type TEXT NOT NULL,
			carrier       TEXT NOT NULL,
			products      JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (pk, sk)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			pk         TEXT NOT NULL,
			sk         TEXT NOT NULL,
			ttl        BIGINT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			request_id TEXT NOT NULL DEFAULT '',
			event_type TEXT NOT NULL,
			info       JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (pk, sk)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}

func (db *PostgresDB) Close() error {
	return db.Conn.Close()
}
