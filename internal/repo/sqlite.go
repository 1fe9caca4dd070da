package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"codebeyond/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS participants (
	id                     TEXT PRIMARY KEY,
	email                  TEXT NOT NULL UNIQUE,
	status                 TEXT NOT NULL DEFAULT 'pending'
	                       CHECK (status IN ('pending', 'approved', 'rejected')),
	rejection_reason       TEXT,
	team_name              TEXT NOT NULL,
	team_lead              TEXT NOT NULL,
	university             TEXT NOT NULL,
	department             TEXT NOT NULL DEFAULT '',
	phone                  TEXT NOT NULL DEFAULT '',
	team_size              INTEGER NOT NULL DEFAULT 1,
	project_title          TEXT NOT NULL,
	project_category       TEXT NOT NULL,
	project_description    TEXT NOT NULL DEFAULT '',
	problem_solved         TEXT NOT NULL DEFAULT '',
	tech_stack             TEXT NOT NULL DEFAULT '',
	project_url            TEXT,
	video_url              TEXT,
	project_doc_url        TEXT,
	accommodation_needed   INTEGER NOT NULL DEFAULT 0,
	accommodation_type     TEXT,
	accommodation_duration TEXT,
	special_requirements   TEXT,
	reviewed_by            TEXT,
	created_at             TEXT NOT NULL,
	updated_at             TEXT NOT NULL,
	reviewed_at            TEXT
);

CREATE TABLE IF NOT EXISTS team_members (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	participant_id TEXT NOT NULL REFERENCES participants (id) ON DELETE CASCADE,
	member_name    TEXT NOT NULL,
	member_email   TEXT NOT NULL,
	member_role    TEXT NOT NULL DEFAULT ''
);
`

// SQLite is the single-file collaborator used for local runs and tests. Timestamps are
// stored as RFC 3339 text.
type SQLite struct {
	db  *sql.DB
	log *zerolog.Logger
	now func() time.Time
}

var _ Repository = (*SQLite)(nil)

// NewSQLite opens path (":memory:" works) and creates the schema if missing.
func NewSQLite(ctx context.Context, path string, log *zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &SQLite{db: db, log: log, now: time.Now}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) FetchAll(ctx context.Context) ([]model.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := make([]model.Participant, 0)
	for rows.Next() {
		var (
			p          model.Participant
			rec        nullableColumns
			createdAt  string
			reviewedAt sql.NullString
		)
		if err := rows.Scan(append(scanTargets(&p, &rec), &createdAt, &reviewedAt)...); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		rec.apply(&p)
		if p.RegisteredAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if reviewedAt.Valid {
			at, err := parseTime(reviewedAt.String)
			if err != nil {
				return nil, err
			}
			p.ReviewedAt = &at
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	members, err := s.fetchMembers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		participants[i].TeamMembers = members[participants[i].ID]
	}
	return participants, nil
}

func (s *SQLite) fetchMembers(ctx context.Context) (map[string][]model.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id, member_name, member_email, member_role
		FROM team_members
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]model.TeamMember)
	for rows.Next() {
		var (
			participantID string
			m             model.TeamMember
		)
		if err := rows.Scan(&participantID, &m.Name, &m.Email, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members[participantID] = append(members[participantID], m)
	}
	return members, rows.Err()
}

func (s *SQLite) Insert(ctx context.Context, p model.Participant) (model.Participant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Participant{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p.ID = uuid.NewString()
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = s.now().UTC()
	}
	created := formatTime(p.RegisteredAt)

	args := append(insertArgs(p, created), created)
	query := `INSERT INTO participants (` + insertColumns + `, updated_at) VALUES (` + placeholders(len(args), question) + `)`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Participant{}, ErrDuplicateRegistration
		}
		return model.Participant{}, fmt.Errorf("failed to create participant: %w", err)
	}

	for _, m := range p.TeamMembers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_members (participant_id, member_name, member_email, member_role)
			VALUES (?, ?, ?, ?)
		`, p.ID, m.Name, m.Email, m.Role)
		if err != nil {
			return model.Participant{}, fmt.Errorf("failed to create team member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Participant{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	p.Status = model.StatusPending
	return p, nil
}

func (s *SQLite) UpdateStatus(ctx context.Context, id string, review model.Review) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE participants
		SET status = ?, rejection_reason = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`, string(review.Status), nullString(review.Reason), nullString(review.ReviewedBy),
		formatTime(review.ReviewedAt), formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM participants WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check participant: %w", err)
	}
	return ErrAlreadyReviewed
}

func (s *SQLite) UpdateFields(ctx context.Context, id string, patch model.Patch) error {
	set, args := patchSet(patch, question)
	if set == "" {
		return nil
	}
	args = append(args, formatTime(s.now()), id)

	res, err := s.db.ExecContext(ctx, `UPDATE participants SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return expectOneRow(res)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return expectOneRow(res)
}

func question(int) string { return "?" }

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
