package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codebeyond/internal/model"
	"codebeyond/internal/registry"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleParticipant(email string) model.Participant {
	return model.Participant{
		Email:        email,
		TeamName:     "Byte Me",
		TeamLead:     "Ali Raza",
		University:   "FAST",
		Department:   "CS",
		Phone:        "+92 300 1234567",
		TeamSize:     2,
		ProjectTitle: "Queue Doctor",
		Category:     "ai",
		TechStack:    "Go",
		ProjectURL:   "https://github.com/byteme/qd",
		TeamMembers: []model.TeamMember{
			{Name: "Hina", Email: "hina@fast.edu.pk", Role: "backend"},
		},
	}
}

func TestSQLiteInsertAndFetch(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	registered := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	p := sampleParticipant("ali@fast.edu.pk")
	p.RegisteredAt = registered

	stored, err := s.Insert(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	require.Equal(t, model.StatusPending, stored.Status)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	require.Equal(t, stored.ID, got.ID)
	require.Equal(t, model.StatusPending, got.Status)
	require.Equal(t, registered, got.RegisteredAt)
	require.Equal(t, "https://github.com/byteme/qd", got.ProjectURL)
	require.Empty(t, got.VideoURL)
	require.Nil(t, got.ReviewedAt)
	require.Equal(t, p.TeamMembers, got.TeamMembers)
}

func TestSQLiteFetchAllOrdersByRegistration(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	late := sampleParticipant("late@fast.edu.pk")
	late.RegisteredAt = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	early := sampleParticipant("early@fast.edu.pk")
	early.RegisteredAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Insert(ctx, late)
	require.NoError(t, err)
	_, err = s.Insert(ctx, early)
	require.NoError(t, err)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "early@fast.edu.pk", all[0].Email)
	require.Equal(t, "late@fast.edu.pk", all[1].Email)
}

func TestSQLiteDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	_, err := s.Insert(ctx, sampleParticipant("dup@fast.edu.pk"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, sampleParticipant("dup@fast.edu.pk"))
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSQLiteUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	stored, err := s.Insert(ctx, sampleParticipant("ali@fast.edu.pk"))
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateStatus(ctx, stored.ID, model.Review{
		Status:     model.StatusRejected,
		Reason:     "incomplete submission",
		ReviewedBy: "admin@codebeyond.pk",
		ReviewedAt: at,
	}))

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, all[0].Status)
	require.Equal(t, "incomplete submission", all[0].RejectionReason)
	require.Equal(t, "admin@codebeyond.pk", all[0].ReviewedBy)
	require.NotNil(t, all[0].ReviewedAt)
	require.Equal(t, at, *all[0].ReviewedAt)

	err = s.UpdateStatus(ctx, stored.ID, model.Review{Status: model.StatusApproved, ReviewedAt: at})
	require.ErrorIs(t, err, ErrAlreadyReviewed)

	err = s.UpdateStatus(ctx, "missing", model.Review{Status: model.StatusApproved, ReviewedAt: at})
	require.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestSQLiteUpdateFields(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	stored, err := s.Insert(ctx, sampleParticipant("ali@fast.edu.pk"))
	require.NoError(t, err)

	title := "  Queue Surgeon "
	size := 4
	accommodation := true
	require.NoError(t, s.UpdateFields(ctx, stored.ID, model.Patch{
		ProjectTitle:          &title,
		TeamSize:              &size,
		AccommodationRequired: &accommodation,
	}))

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Queue Surgeon", all[0].ProjectTitle)
	require.Equal(t, 4, all[0].TeamSize)
	require.True(t, all[0].AccommodationRequired)
	require.Equal(t, "Byte Me", all[0].TeamName)

	err = s.UpdateFields(ctx, "missing", model.Patch{ProjectTitle: &title})
	require.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestSQLiteDeleteCascadesMembers(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	stored, err := s.Insert(ctx, sampleParticipant("ali@fast.edu.pk"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, stored.ID))
	require.ErrorIs(t, s.Delete(ctx, stored.ID), ErrParticipantNotFound)

	var members int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM team_members`).Scan(&members))
	require.Zero(t, members)
}

func TestRegistryBulkSkipsRowsGoneFromStorage(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	kept, err := s.Insert(ctx, sampleParticipant("ali@fast.edu.pk"))
	require.NoError(t, err)
	gone, err := s.Insert(ctx, sampleParticipant("sara@nust.edu.pk"))
	require.NoError(t, err)

	reg := registry.New(s, nil)
	require.NoError(t, reg.Load(ctx))
	_, err = s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, gone.ID)
	require.NoError(t, err)

	res, err := reg.BulkApprove(ctx, []string{kept.ID, gone.ID}, "admin@codebeyond.pk")
	require.NoError(t, err)
	require.Equal(t, []string{kept.ID}, res.Affected)

	require.ErrorIs(t, reg.Approve(ctx, gone.ID, "admin@codebeyond.pk"), registry.ErrNotFound)
	require.ErrorIs(t, ErrAlreadyReviewed, registry.ErrInvalidTransition)
}
