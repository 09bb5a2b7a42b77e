package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Fixed width so that ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS invitations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('male', 'female', 'couple')),
	url TEXT NOT NULL,
	created_at TEXT NOT NULL,
	sent_at TEXT,
	status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'sent', 'viewed', 'confirmed'))
)`

const selectColumns = `SELECT id, name, type, url, status, created_at, sent_at FROM invitations`

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ InvitationStore = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db at %s: %w", path, err)
	}

	// Reason: table must exist before any read/write operations
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating invitations table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, name string, t Type, url string) (*Invitation, error) {
	if !t.Valid() {
		return nil, &ValidationError{Field: "type", Value: string(t)}
	}

	createdAt := s.now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (name, type, url, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, string(t), url, string(StatusPending), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting invitation %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading id of invitation %q: %w", name, err)
	}
	log.WithFields(log.Fields{"id": id, "name": name}).Debug("invitation created")

	return s.GetByID(ctx, id)
}

func (s *SQLiteStore) GetAll(ctx context.Context) ([]Invitation, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invitations: %w", err)
	}

	return invitations, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (*Invitation, error) {
	inv, err := scanInvitation(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting invitation %d: %w", id, err)
	}
	return inv, nil
}

func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*Invitation, error) {
	inv, err := scanInvitation(s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ? ORDER BY id LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting invitation %q: %w", name, err)
	}
	return inv, nil
}

// UpdateStatus sets status unconditionally. sent_at is only overwritten when
// sentAt is non-nil.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id int64, status Status, sentAt *time.Time) (bool, error) {
	if !status.Valid() {
		return false, &ValidationError{Field: "status", Value: string(status)}
	}

	var sent sql.NullString
	if sentAt != nil {
		sent = sql.NullString{String: sentAt.UTC().Format(timeLayout), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET status = ?, sent_at = COALESCE(?, sent_at) WHERE id = ?`,
		string(status), sent, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating status of invitation %d: %w", id, err)
	}
	return affected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting invitation %d: %w", id, err)
	}
	return affected(res)
}

func (s *SQLiteStore) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'viewed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0)
		FROM invitations`,
	).Scan(&st.Total, &st.Sent, &st.Viewed, &st.Confirmed)
	if err != nil {
		return Stats{}, fmt.Errorf("counting invitations: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row scanner) (*Invitation, error) {
	var (
		inv       Invitation
		typ       string
		status    string
		createdAt string
		sentAt    sql.NullString
	)
	if err := row.Scan(&inv.ID, &inv.Name, &typ, &inv.URL, &status, &createdAt, &sentAt); err != nil {
		return nil, err
	}
	inv.Type = Type(typ)
	inv.Status = Status(status)

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of invitation %d: %w", inv.ID, err)
	}
	inv.CreatedAt = ts

	if sentAt.Valid {
		ts, err := time.Parse(timeLayout, sentAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing sent_at of invitation %d: %w", inv.ID, err)
		}
		inv.SentAt = &ts
	}

	return &inv, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}
