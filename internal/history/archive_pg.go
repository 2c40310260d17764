package history

import (
	"context"
	"database/sql"
)

// PGArchive implements Archive using Postgres.
type PGArchive struct {
	DB *sql.DB
}

// Save inserts a snapshot record.
func (a *PGArchive) Save(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO workshop_snapshots (session_id, seq, cause, taken_at, document)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id, seq) DO NOTHING`
	_, err := a.DB.ExecContext(ctx, query,
		rec.SessionID,
		rec.Seq,
		string(rec.Cause),
		rec.TakenAt,
		[]byte(rec.Document),
	)
	return err
}

// ListBySession returns records for a session, newest first, with limit/offset.
func (a *PGArchive) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Record, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT session_id, seq, cause, taken_at, document
FROM workshop_snapshots
WHERE session_id = $1
ORDER BY seq DESC
LIMIT $2 OFFSET $3`
	rows, err := a.DB.QueryContext(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var cause string
		var doc []byte
		if err := rows.Scan(&rec.SessionID, &rec.Seq, &cause, &rec.TakenAt, &doc); err != nil {
			return nil, err
		}
		rec.Cause = Cause(cause)
		rec.Document = doc
		records = append(records, rec)
	}
	return records, rows.Err()
}
