package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"codebeyond/internal/model"
	"codebeyond/internal/registry"
)

// ErrParticipantNotFound and ErrAlreadyReviewed match registry.ErrNotFound and
// registry.ErrInvalidTransition, so bulk operations skip rows that went stale in storage.
var (
	ErrParticipantNotFound   = fmt.Errorf("participant not found: %w", registry.ErrNotFound)
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrAlreadyReviewed       = fmt.Errorf("participant already reviewed: %w", registry.ErrInvalidTransition)
)

// Repository is a registry collaborator that owns a connection.
type Repository interface {
	registry.Collaborator
	Close() error
}

type PostgresRepository interface {
	Repository
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	dsn string
	log *zerolog.Logger
}

var _ PostgresRepository = (*repository)(nil)

// NewRepository returns the PostgreSQL collaborator. dsn must be in URL form, it is
// also handed to the migrator.
func NewRepository(db *dbpg.DB, dsn string, log *zerolog.Logger) (PostgresRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, dsn: dsn, log: log}, nil
}

func (r *repository) Close() error {
	return r.db.Master.Close()
}

func (r *repository) FetchAll(ctx context.Context) ([]model.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := make([]model.Participant, 0)
	for rows.Next() {
		var (
			p          model.Participant
			rec        nullableColumns
			reviewedAt sql.NullTime
		)
		if err := rows.Scan(append(scanTargets(&p, &rec), &p.RegisteredAt, &reviewedAt)...); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		rec.apply(&p)
		if reviewedAt.Valid {
			at := reviewedAt.Time.UTC()
			p.ReviewedAt = &at
		}
		p.RegisteredAt = p.RegisteredAt.UTC()
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	members, err := r.fetchMembers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		participants[i].TeamMembers = members[participants[i].ID]
	}
	return participants, nil
}

func (r *repository) fetchMembers(ctx context.Context) (map[string][]model.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
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

func (r *repository) Insert(ctx context.Context, p model.Participant) (model.Participant, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return model.Participant{}, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
	}()

	p.ID = uuid.NewString()
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now().UTC()
	}

	args := insertArgs(p, p.RegisteredAt)
	query := `INSERT INTO participants (` + insertColumns + `) VALUES (` + placeholders(len(args), dollar) + `)`
	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return model.Participant{}, ErrDuplicateRegistration
		}
		return model.Participant{}, fmt.Errorf("failed to create participant: %w", err)
	}

	for _, m := range p.TeamMembers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO team_members (participant_id, member_name, member_email, member_role)
			VALUES ($1, $2, $3, $4)
		`, p.ID, m.Name, m.Email, m.Role)
		if err != nil {
			_ = tx.Rollback()
			return model.Participant{}, fmt.Errorf("failed to create team member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Participant{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.Status = model.StatusPending
	r.log.Debug().Str("participant_id", p.ID).Int("team_members", len(p.TeamMembers)).Msg("participant inserted")
	return p, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, review model.Review) error {
	query := `
		UPDATE participants
		SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
		RETURNING id
	`
	var updated string
	err := r.db.QueryRowContext(ctx, query,
		string(review.Status), nullString(review.Reason), nullString(review.ReviewedBy), review.ReviewedAt, id,
	).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return r.missingOrReviewed(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return nil
}

func (r *repository) missingOrReviewed(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM participants WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check participant: %w", err)
	}
	if !exists {
		return ErrParticipantNotFound
	}
	return ErrAlreadyReviewed
}

func (r *repository) UpdateFields(ctx context.Context, id string, patch model.Patch) error {
	set, args := patchSet(patch, dollar)
	if set == "" {
		return nil
	}
	args = append(args, id)
	query := `UPDATE participants SET ` + set + `, updated_at = NOW() WHERE id = $` + strconv.Itoa(len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return expectOneRow(res)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return expectOneRow(res)
}

func dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
