package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// EventRepository appends audit rows. Rows are never mutated after
// insert; expiry happens through the ttl column and DeleteExpired.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(database *PostgresDB) *EventRepository {
	return &EventRepository{db: database.Conn}
}

// Insert appends one audit row. The insert is idempotent on (pk, sk):
// redelivered duplicates collapse and report inserted=false.
func (r *EventRepository) Insert(ctx context.Context, rec models.EventRecord) (bool, error) {
	infoJSON, err := json.Marshal(rec.Info)
	if err != nil {
		return false, fmt.Errorf("failed to encode event info: %w", err)
	}

	query := `
		INSERT INTO events (pk, sk, ttl, email, created_at, request_id, event_type, info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pk, sk) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.PK, rec.SK, rec.TTL, rec.Email, rec.CreatedAt, rec.RequestID, rec.EventType, infoJSON)
	if err != nil {
		return false, fmt.Errorf("failed to insert event: %w", err)
	}

	inserted, _ := result.RowsAffected()
	return inserted > 0, nil
}

// QueryByPartitionKey returns every audit row under one partition key,
// newest first.
func (r *EventRepository) QueryByPartitionKey(ctx context.Context, pk string) ([]models.EventRecord, error) {
	query := `
		SELECT pk, sk, ttl, email, created_at, request_id, event_type, info
		FROM events WHERE pk = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, pk)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []models.EventRecord
	for rows.Next() {
		var rec models.EventRecord
		var infoJSON []byte
		err := rows.Scan(&rec.PK, &rec.SK, &rec.TTL, &rec.Email,
			&rec.CreatedAt, &rec.RequestID, &rec.EventType, &infoJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal(infoJSON, &rec.Info); err != nil {
			return nil, fmt.Errorf("failed to decode event info: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteExpired removes rows whose ttl (epoch seconds) has passed.
func (r *EventRepository) DeleteExpired(ctx context.Context, nowUnix int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE ttl < $1", nowUnix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired events: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}
