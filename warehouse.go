package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// WarehouseStore is the Postgres-backed RecordStore used when the pipeline
// runs against a shared warehouse instead of a local SQLite file.
type WarehouseStore struct {
	db *sql.DB
}

func OpenWarehouseStore(dsn string) (*WarehouseStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	s := &WarehouseStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize warehouse schema: %w", err)
	}
	return s, nil
}

func (s *WarehouseStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customer_feedback (
			id SERIAL PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			loyalty_program TEXT DEFAULT '',
			product_category TEXT DEFAULT '',
			product_sub_category TEXT DEFAULT '',
			product_name TEXT DEFAULT '',
			product_rating INTEGER DEFAULT 0,
			review_text TEXT DEFAULT '',
			product_issue_type TEXT DEFAULT '',
			order_id TEXT NOT NULL,
			order_status TEXT DEFAULT '',
			purchase_mode TEXT DEFAULT '',
			payment_mode TEXT DEFAULT '',
			discount_applied TEXT DEFAULT '',
			store_location TEXT DEFAULT '',
			delivery_status TEXT DEFAULT '',
			follow_up_required TEXT DEFAULT '',
			feedback_date TEXT DEFAULT '',
			feedback_category TEXT DEFAULT '',
			feedback_sub_category TEXT DEFAULT '',
			support_rating INTEGER NOT NULL,
			resolution_status TEXT DEFAULT '',
			staff_name TEXT DEFAULT '',
			staff_email TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS customer_feedback_analysis (
			id SERIAL PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			loyalty_program TEXT DEFAULT '',
			product_category TEXT DEFAULT '',
			product_sub_category TEXT DEFAULT '',
			product_name TEXT DEFAULT '',
			product_rating INTEGER DEFAULT 0,
			review_text TEXT DEFAULT '',
			product_issue_type TEXT DEFAULT '',
			order_id TEXT NOT NULL,
			order_status TEXT DEFAULT '',
			purchase_mode TEXT DEFAULT '',
			payment_mode TEXT DEFAULT '',
			discount_applied TEXT DEFAULT '',
			store_location TEXT DEFAULT '',
			delivery_status TEXT DEFAULT '',
			follow_up_required TEXT DEFAULT '',
			feedback_date TEXT DEFAULT '',
			feedback_category TEXT DEFAULT '',
			feedback_sub_category TEXT DEFAULT '',
			support_rating INTEGER NOT NULL,
			resolution_status TEXT DEFAULT '',
			staff_name TEXT DEFAULT '',
			staff_email TEXT DEFAULT '',
			sentiment_score DOUBLE PRECISION NOT NULL,
			sentiment_category TEXT NOT NULL,
			satisfaction_index DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *WarehouseStore) Close() error {
	return s.db.Close()
}

func (s *WarehouseStore) FetchRaw(ctx context.Context) ([]RawFeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rawColumns+`, created_at
		 FROM customer_feedback ORDER BY id`)
	if err != nil {
		return nil, storeErr("fetch", err)
	}
	defer rows.Close()

	var records []RawFeedbackRecord
	for rows.Next() {
		var r RawFeedbackRecord
		if err := rows.Scan(rawScanTargets(&r)...); err != nil {
			return nil, storeErr("fetch", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetch", err)
	}
	return records, nil
}

func (s *WarehouseStore) InsertRaw(ctx context.Context, records []RawFeedbackRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO customer_feedback (`+rawColumns+`)
		 VALUES (`+pgPlaceholders(24)+`)`)
	if err != nil {
		return 0, storeErr("insert", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, rawInsertArgs(r)...); err != nil {
			return inserted, storeErr("insert", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, storeErr("insert", err)
	}
	return inserted, nil
}

func (s *WarehouseStore) ReplaceEnriched(ctx context.Context, records []EnrichedFeedbackRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("persist", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM customer_feedback_analysis`); err != nil {
		return 0, storeErr("persist", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO customer_feedback_analysis (`+enrichedColumns+`)
		 VALUES (`+pgPlaceholders(27)+`)`)
	if err != nil {
		return 0, storeErr("persist", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, enrichedInsertArgs(r)...); err != nil {
			return inserted, storeErr("persist", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, storeErr("persist", err)
	}
	return inserted, nil
}

func pgPlaceholders(n int) string {
	out := make([]byte, 0, n*4)
	for i := 1; i <= n; i++ {
		if i > 1 {
			out = append(out, ", "...)
		}
		out = append(out, fmt.Sprintf("$%d", i)...)
	}
	return string(out)
}
