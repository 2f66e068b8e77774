package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"mediscan/internal/models"

	"github.com/google/uuid"
)

type ActivitySQLite struct {
	db *sql.DB
}

func NewActivitySQLite(db *sql.DB) *ActivitySQLite { return &ActivitySQLite{db: db} }

const insertActivitySQL = `
		INSERT INTO activity (id, occurred_at, type, session_id, username, message, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

// Append inserts a new entry. If ID or OccurredAt are empty, they’re set.
func (r *ActivitySQLite) Append(ctx context.Context, a models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	} else {
		a.OccurredAt = a.OccurredAt.UTC()
	}

	var metaPtr *string
	if a.Metadata != nil {
		if b, err := json.Marshal(a.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertActivitySQL,
		a.ID,
		a.OccurredAt,
		strings.ToUpper(strings.TrimSpace(a.Type)),
		a.SessionID,
		a.Username,
		a.Description,
		metaPtr,
	)
	return err
}

// List returns entries filtered by [from, to] (inclusive), type and
// username, ordered ASC.
func (r *ActivitySQLite) List(ctx context.Context, f ActivityQuery) ([]models.Activity, error) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UTC())
	}
	if typ := strings.ToUpper(strings.TrimSpace(f.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if f.Username != "" {
		conds = append(conds, "username = ? COLLATE NOCASE")
		args = append(args, f.Username)
	}

	q := `SELECT id, occurred_at, type, session_id, username, message, meta FROM activity`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Activity, 0, 64)
	for rows.Next() {
		var a models.Activity
		var metaStr sql.NullString
		if err := rows.Scan(&a.ID, &a.OccurredAt, &a.Type, &a.SessionID, &a.Username, &a.Description, &metaStr); err != nil {
			return nil, err
		}
		a.OccurredAt = a.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				a.Metadata = v
			} else {
				a.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
