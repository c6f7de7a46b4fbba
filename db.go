package main

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS customer_feedback (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name         TEXT NOT NULL,
		customer_email        TEXT NOT NULL,
		loyalty_program       TEXT DEFAULT '',
		product_category      TEXT DEFAULT '',
		product_sub_category  TEXT DEFAULT '',
		product_name          TEXT DEFAULT '',
		product_rating        INTEGER DEFAULT 0,
		review_text           TEXT DEFAULT '',
		product_issue_type    TEXT DEFAULT '',
		order_id              TEXT NOT NULL,
		order_status          TEXT DEFAULT '',
		purchase_mode         TEXT DEFAULT '',
		payment_mode          TEXT DEFAULT '',
		discount_applied      TEXT DEFAULT '',
		store_location        TEXT DEFAULT '',
		delivery_status       TEXT DEFAULT '',
		follow_up_required    TEXT DEFAULT '',
		feedback_date         TEXT DEFAULT '',
		feedback_category     TEXT DEFAULT '',
		feedback_sub_category TEXT DEFAULT '',
		support_rating        INTEGER NOT NULL,
		resolution_status     TEXT DEFAULT '',
		staff_name            TEXT DEFAULT '',
		staff_email           TEXT DEFAULT '',
		created_at            DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_order ON customer_feedback(order_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_staff ON customer_feedback(staff_email);

	CREATE TABLE IF NOT EXISTS customer_feedback_analysis (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name         TEXT NOT NULL,
		customer_email        TEXT NOT NULL,
		loyalty_program       TEXT DEFAULT '',
		product_category      TEXT DEFAULT '',
		product_sub_category  TEXT DEFAULT '',
		product_name          TEXT DEFAULT '',
		product_rating        INTEGER DEFAULT 0,
		review_text           TEXT DEFAULT '',
		product_issue_type    TEXT DEFAULT '',
		order_id              TEXT NOT NULL,
		order_status          TEXT DEFAULT '',
		purchase_mode         TEXT DEFAULT '',
		payment_mode          TEXT DEFAULT '',
		discount_applied      TEXT DEFAULT '',
		store_location        TEXT DEFAULT '',
		delivery_status       TEXT DEFAULT '',
		follow_up_required    TEXT DEFAULT '',
		feedback_date         TEXT DEFAULT '',
		feedback_category     TEXT DEFAULT '',
		feedback_sub_category TEXT DEFAULT '',
		support_rating        INTEGER NOT NULL,
		resolution_status     TEXT DEFAULT '',
		staff_name            TEXT DEFAULT '',
		staff_email           TEXT DEFAULT '',
		sentiment_score       REAL NOT NULL,
		sentiment_category    TEXT NOT NULL,
		satisfaction_index    REAL NOT NULL,
		created_at            DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_staff ON customer_feedback_analysis(staff_email);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FetchRaw(ctx context.Context) ([]RawFeedbackRecord, error) {
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

func (s *SQLiteStore) InsertRaw(ctx context.Context, records []RawFeedbackRecord) (int, error) {
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
		 VALUES (`+placeholders(24)+`)`)
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

func (s *SQLiteStore) ReplaceEnriched(ctx context.Context, records []EnrichedFeedbackRecord) (int, error) {
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
		 VALUES (`+placeholders(27)+`)`)
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

// FetchEnriched reads the analysis table back, mainly for verification and
// tests.
func (s *SQLiteStore) FetchEnriched(ctx context.Context) ([]EnrichedFeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rawColumns+`, sentiment_score, sentiment_category, satisfaction_index, created_at
		 FROM customer_feedback_analysis ORDER BY id`)
	if err != nil {
		return nil, storeErr("fetch", err)
	}
	defer rows.Close()

	var records []EnrichedFeedbackRecord
	for rows.Next() {
		var r EnrichedFeedbackRecord
		targets := rawScanTargets(&r.RawFeedbackRecord)
		// created_at scans last; splice the derived fields in before it.
		targets = append(targets[:len(targets)-1],
			&r.SentimentScore, &r.SentimentCategory, &r.SatisfactionIndex, &r.CreatedAt)
		if err := rows.Scan(targets...); err != nil {
			return nil, storeErr("fetch", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetch", err)
	}
	return records, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
