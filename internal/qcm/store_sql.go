package qcm

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore keeps quiz records in the qcm_tests table, quiz body as JSON in
// a text column.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Save(ctx context.Context, rec Record) error {
	qj, err := json.Marshal(rec.Quiz)
	if err != nil {
		return err
	}
	// Epoch nanos, not formatted text: RFC3339Nano is variable width and
	// sorts wrong within a second.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO qcm_tests (id,user_id,name,qcm_json,score,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.UserID, rec.Name, string(qj), rec.Score, rec.CreatedAt.UnixNano())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,name,qcm_json,score,created_at FROM qcm_tests WHERE id=$1`, id)
	var rec Record
	var qj string
	var createdAt int64
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &qj, &rec.Score, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(qj), &rec.Quiz); err != nil {
		return Record{}, err
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return rec, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM qcm_tests WHERE id=$1`, id)
	return err
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,name,score,created_at FROM qcm_tests
		 WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var createdAt int64
		if err := rows.Scan(&sm.ID, &sm.UserID, &sm.Name, &sm.Score, &createdAt); err != nil {
			return nil, err
		}
		sm.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, sm)
	}
	return out, rows.Err()
}
