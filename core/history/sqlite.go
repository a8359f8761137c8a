package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS checks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        ts INTEGER NOT NULL,
        day TEXT NOT NULL,
        ride TEXT NOT NULL,
        worker TEXT NOT NULL,
        start_min INTEGER NOT NULL,
        end_min INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS checks_pair ON checks (worker, ride);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the records in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, recs ...Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO checks (run_id, ts, day, ride, worker, start_min, end_min) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.RunID, r.Timestamp.UnixNano(), r.Day, r.Ride, r.Worker, r.Start, r.End); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func where(q Query) (string, []any) {
	clause := ` WHERE 1=1`
	var args []any
	if q.RunID != "" {
		clause += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	if q.Worker != "" {
		clause += ` AND worker = ?`
		args = append(args, q.Worker)
	}
	if q.Ride != "" {
		clause += ` AND ride = ?`
		args = append(args, q.Ride)
	}
	if !q.Since.IsZero() {
		clause += ` AND ts >= ?`
		args = append(args, q.Since.UnixNano())
	}
	return clause, args
}

// Query returns matching records in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	clause, args := where(q)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, ts, day, ride, worker, start_min, end_min FROM checks`+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var r Record
		var ts int64
		if err := rows.Scan(&r.RunID, &ts, &r.Day, &r.Ride, &r.Worker, &r.Start, &r.End); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// PairCounts aggregates in SQL.
func (s *SQLiteStore) PairCounts(ctx context.Context, q Query) ([]PairCount, error) {
	clause, args := where(q)
	rows, err := s.db.QueryContext(ctx,
		`SELECT worker, ride, COUNT(*) FROM checks`+clause+` GROUP BY worker, ride`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []PairCount
	for rows.Next() {
		var pc PairCount
		if err := rows.Scan(&pc.Worker, &pc.Ride, &pc.Count); err != nil {
			return nil, err
		}
		res = append(res, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortPairs(res)
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
