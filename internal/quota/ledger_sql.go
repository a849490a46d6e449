package quota

import (
	"context"
	"database/sql"
	"errors"
)

// SQLLedger keeps roles and usage counters in the row-store tables
// user_roles and qcm_usage.
type SQLLedger struct {
	db *sql.DB
}

func NewSQLLedger(db *sql.DB) *SQLLedger { return &SQLLedger{db: db} }

func (l *SQLLedger) ResolveRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := l.db.QueryRowContext(ctx,
		`SELECT role FROM user_roles WHERE user_id=$1`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultRole, nil
	}
	if err != nil {
		return "", err
	}
	if role == "" {
		return DefaultRole, nil
	}
	return role, nil
}

func (l *SQLLedger) Usage(ctx context.Context, userID string) ([]ModelUsage, int, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT model, generated_count FROM qcm_usage WHERE user_id=$1`, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	perModel := []ModelUsage{}
	total := 0
	for rows.Next() {
		var mu ModelUsage
		if err := rows.Scan(&mu.Model, &mu.Count); err != nil {
			return nil, 0, err
		}
		perModel = append(perModel, mu)
		total += mu.Count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return perModel, total, nil
}

func (l *SQLLedger) Record(ctx context.Context, userID, model string) error {
	var current int
	err := l.db.QueryRowContext(ctx,
		`SELECT generated_count FROM qcm_usage WHERE user_id=$1 AND model=$2`,
		userID, model).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = l.db.ExecContext(ctx,
			`INSERT INTO qcm_usage (user_id, model, generated_count) VALUES ($1,$2,1)`,
			userID, model)
		return err
	case err != nil:
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`UPDATE qcm_usage SET generated_count=$1 WHERE user_id=$2 AND model=$3`,
		current+1, userID, model)
	return err
}
