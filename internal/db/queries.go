package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/storefinder/internal/locator"
)

// ErrNotFound is returned when a query id is unknown.
var ErrNotFound = errors.New("query not found")

// MaxListLimit caps list queries.
const MaxListLimit = 500

// QueryRecord is one answered store-location query.
type QueryRecord struct {
	ID        string             `json:"id"`
	K         int                `json:"k"`
	Rows      int                `json:"rows"`
	Cols      int                `json:"cols"`
	Grid      [][]int            `json:"grid,omitempty"`
	Count     int                `json:"count"`
	Locations []locator.Position `json:"locations,omitempty"`
	ElapsedMs float64            `json:"elapsed"`
	Client    string             `json:"client,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func (q *QueryRecord) String() string {
	return fmt.Sprintf("ID: %s, K: %d, Size: %dx%d, Count: %d, Elapsed: %.3fms",
		q.ID, q.K, q.Rows, q.Cols, q.Count, q.ElapsedMs)
}

// RecordQuery stores q. An empty ID is replaced by a new UUID and a zero
// CreatedAt by the current time; both are written back to q.
func (db *DB) RecordQuery(q *QueryRecord) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if len(q.Grid) > 0 {
		q.Rows = len(q.Grid)
		q.Cols = len(q.Grid[0])
	}

	gridJSON, err := json.Marshal(q.Grid)
	if err != nil {
		return fmt.Errorf("failed to marshal grid: %w", err)
	}
	locations := q.Locations
	if locations == nil {
		locations = []locator.Position{}
	}
	locationsJSON, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("failed to marshal locations: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO queries (
			query_id, k, rows, cols, grid_json, count, locations_json,
			elapsed_ms, client, created_unix_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.K, q.Rows, q.Cols, string(gridJSON), q.Count, string(locationsJSON),
		q.ElapsedMs, q.Client, q.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query %s: %w", q.ID, err)
	}
	return nil
}

// ListQueries returns the most recent queries, newest first, without their grid
// and location payloads. limit is clamped to [1, MaxListLimit].
func (db *DB) ListQueries(limit int) ([]QueryRecord, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := db.Query(`SELECT query_id, k, rows, cols, count, elapsed_ms, client, created_unix_ns
		FROM queries ORDER BY created_unix_ns DESC, query_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]QueryRecord, 0)
	for rows.Next() {
		var (
			q         QueryRecord
			createdNs int64
		)
		if err := rows.Scan(&q.ID, &q.K, &q.Rows, &q.Cols, &q.Count, &q.ElapsedMs, &q.Client, &createdNs); err != nil {
			return nil, err
		}
		q.CreatedAt = time.Unix(0, createdNs).UTC()
		records = append(records, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetQuery returns one stored query including grid and locations.
func (db *DB) GetQuery(id string) (*QueryRecord, error) {
	var (
		q             QueryRecord
		gridJSON      string
		locationsJSON string
		createdNs     int64
	)
	err := db.QueryRow(`SELECT query_id, k, rows, cols, grid_json, count, locations_json,
			elapsed_ms, client, created_unix_ns
		FROM queries WHERE query_id = ?`, id).Scan(
		&q.ID, &q.K, &q.Rows, &q.Cols, &gridJSON, &q.Count, &locationsJSON,
		&q.ElapsedMs, &q.Client, &createdNs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(gridJSON), &q.Grid); err != nil {
		return nil, fmt.Errorf("failed to decode grid of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(locationsJSON), &q.Locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations of %s: %w", id, err)
	}
	q.CreatedAt = time.Unix(0, createdNs).UTC()
	return &q, nil
}

// ElapsedSamples returns the elapsed time in milliseconds of the most recent
// limit queries.
func (db *DB) ElapsedSamples(limit int) ([]float64, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := db.Query(`SELECT elapsed_ms FROM queries ORDER BY created_unix_ns DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := make([]float64, 0)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		samples = append(samples, v)
	}
	return samples, rows.Err()
}
