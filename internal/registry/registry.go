package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"codebeyond/internal/model"
)

// Collaborator is the persistence backend holding the participant records.
type Collaborator interface {
	FetchAll(ctx context.Context) ([]model.Participant, error)
	Insert(ctx context.Context, p model.Participant) (model.Participant, error)
	UpdateStatus(ctx context.Context, id string, review model.Review) error
	UpdateFields(ctx context.Context, id string, patch model.Patch) error
	Delete(ctx context.Context, id string) error
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithReloadAfterMutation re-fetches the whole set after every successful mutation
// instead of relying on the in-place patch alone.
func WithReloadAfterMutation(on bool) Option {
	return func(r *Registry) { r.reload = on }
}

// Registry is the admin view over all registrations. Every operation holds mu for its
// whole duration, backend call included, so a second trigger of the same action waits
// for the first and then sees its result.
type Registry struct {
	mu      sync.Mutex
	backend Collaborator
	log     *zerolog.Logger
	now     func() time.Time
	reload  bool

	all       []model.Participant
	filtered  []model.Participant
	filter    Filter
	selection map[string]struct{}
}

func New(backend Collaborator, log *zerolog.Logger, opts ...Option) *Registry {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	r := &Registry{
		backend:   backend,
		log:       log,
		now:       time.Now,
		selection: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.backend.FetchAll(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to load participants")
		return &LoadError{Err: err}
	}
	if all == nil {
		all = []model.Participant{}
	}
	r.all = all
	r.filter = Filter{}
	r.filtered = clone(all)
	r.selection = make(map[string]struct{})

	r.log.Info().Int("count", len(all)).Msg("participants loaded")
	return nil
}

func (r *Registry) ApplyFilters(f Filter) []model.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filter = Filter{
		Query:    strings.TrimSpace(f.Query),
		Status:   model.Status(strings.TrimSpace(string(f.Status))),
		Category: strings.TrimSpace(f.Category),
	}
	r.filtered = r.filter.Apply(r.all)
	return clone(r.filtered)
}

func (r *Registry) All() []model.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.all)
}

func (r *Registry) Filtered() []model.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.filtered)
}

func (r *Registry) CurrentFilter() Filter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter
}

// Summary counts over the full set, whatever filter is active.
func (r *Registry) Summary() model.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := model.Summary{Total: len(r.all)}
	for _, p := range r.all {
		switch p.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusApproved:
			s.Approved++
		case model.StatusRejected:
			s.Rejected++
		}
	}
	return s
}

func (r *Registry) Get(id string) (model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return model.Participant{}, &NotFoundError{ID: id}
	}
	return r.all[i], nil
}

// Register stores a new pending registration and adds it to the loaded set.
func (r *Registry) Register(ctx context.Context, p model.Participant) (model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Status = model.StatusPending
	p.RejectionReason = ""
	p.ReviewedAt = nil
	p.ReviewedBy = ""
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = r.now().UTC()
	}

	stored, err := r.backend.Insert(ctx, p)
	if err != nil {
		r.log.Error().Err(err).Str("email", p.Email).Msg("failed to insert participant")
		return model.Participant{}, &BackendError{Op: "register", Err: err}
	}
	r.all = append(r.all, stored)
	r.afterMutation(ctx)

	r.log.Info().Str("participant_id", stored.ID).Str("email", stored.Email).Msg("participant registered")
	return stored, nil
}

func (r *Registry) Approve(ctx context.Context, id, reviewer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.review(ctx, id, model.Review{
		Status:     model.StatusApproved,
		ReviewedBy: reviewer,
		ReviewedAt: r.now().UTC(),
	})
	if err != nil {
		return err
	}
	r.afterMutation(ctx)
	return nil
}

func (r *Registry) Reject(ctx context.Context, id, reason, reviewer string) error {
	reason, err := rejectionReason(reason)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.review(ctx, id, model.Review{
		Status:     model.StatusRejected,
		Reason:     reason,
		ReviewedBy: reviewer,
		ReviewedAt: r.now().UTC(),
	})
	if err != nil {
		return err
	}
	r.afterMutation(ctx)
	return nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.remove(ctx, id); err != nil {
		return err
	}
	r.afterMutation(ctx)
	return nil
}

func (r *Registry) UpdateFields(ctx context.Context, id string, patch model.Patch) error {
	if patch.Empty() {
		return &ValidationError{Field: "patch", Msg: "no fields to update"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if err := r.backend.UpdateFields(ctx, id, patch); err != nil {
		r.log.Error().Err(err).Str("participant_id", id).Msg("failed to update participant")
		return &BackendError{Op: "update participant", Err: err}
	}
	patch.Apply(&r.all[i])
	r.afterMutation(ctx)

	r.log.Info().Str("participant_id", id).Int("fields", len(patch.Columns())).Msg("participant updated")
	return nil
}

// BulkResult lists the ids an operation actually changed.
type BulkResult struct {
	Affected []string `json:"affected"`
}

func (b BulkResult) Count() int { return len(b.Affected) }

func (r *Registry) BulkApprove(ctx context.Context, ids []string, reviewer string) (BulkResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now().UTC()
	return r.bulk(ctx, "approve", ids, func(id string) error {
		return r.review(ctx, id, model.Review{Status: model.StatusApproved, ReviewedBy: reviewer, ReviewedAt: at})
	})
}

func (r *Registry) BulkReject(ctx context.Context, ids []string, reason, reviewer string) (BulkResult, error) {
	reason, err := rejectionReason(reason)
	if err != nil {
		return BulkResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now().UTC()
	return r.bulk(ctx, "reject", ids, func(id string) error {
		return r.review(ctx, id, model.Review{
			Status:     model.StatusRejected,
			Reason:     reason,
			ReviewedBy: reviewer,
			ReviewedAt: at,
		})
	})
}

func (r *Registry) BulkDelete(ctx context.Context, ids []string) (BulkResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bulk(ctx, "delete", ids, func(id string) error {
		return r.remove(ctx, id)
	})
}

// bulk applies fn to every distinct id. Unknown ids and records already reviewed are
// skipped without error; backend failures are counted and reported once at the end.
func (r *Registry) bulk(ctx context.Context, op string, ids []string, fn func(id string) error) (BulkResult, error) {
	res := BulkResult{Affected: []string{}}
	var (
		failed  int
		lastErr error
	)
	for _, id := range distinct(ids) {
		err := fn(id)
		switch {
		case err == nil:
			res.Affected = append(res.Affected, id)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidTransition):
			r.log.Debug().Err(err).Str("op", op).Str("participant_id", id).Msg("bulk item skipped")
		default:
			failed++
			lastErr = err
		}
	}
	if res.Count() > 0 {
		r.afterMutation(ctx)
	}

	r.log.Info().
		Str("op", op).
		Int("requested", len(ids)).
		Int("affected", res.Count()).
		Int("failed", failed).
		Msg("bulk operation finished")

	if failed > 0 {
		return res, &BackendError{
			Op:  "bulk " + op,
			Err: fmt.Errorf("%d of %d items failed, last error: %w", failed, len(ids), lastErr),
		}
	}
	return res, nil
}

func (r *Registry) review(ctx context.Context, id string, rv model.Review) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if from := r.all[i].Status; from != model.StatusPending {
		return &InvalidTransitionError{ID: id, From: from, To: rv.Status}
	}
	if err := r.backend.UpdateStatus(ctx, id, rv); err != nil {
		r.log.Error().Err(err).Str("participant_id", id).Str("status", string(rv.Status)).Msg("failed to update status")
		return &BackendError{Op: "update status", Err: err}
	}
	r.all[i].ApplyReview(rv)

	r.log.Info().
		Str("participant_id", id).
		Str("status", string(rv.Status)).
		Str("reviewed_by", rv.ReviewedBy).
		Msg("participant reviewed")
	return nil
}

func (r *Registry) remove(ctx context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if err := r.backend.Delete(ctx, id); err != nil {
		r.log.Error().Err(err).Str("participant_id", id).Msg("failed to delete participant")
		return &BackendError{Op: "delete participant", Err: err}
	}
	r.all = append(r.all[:i], r.all[i+1:]...)
	delete(r.selection, id)

	r.log.Info().Str("participant_id", id).Msg("participant deleted")
	return nil
}

// afterMutation re-derives the filtered view and drops selected ids that no longer exist.
func (r *Registry) afterMutation(ctx context.Context) {
	if r.reload {
		all, err := r.backend.FetchAll(ctx)
		if err != nil {
			r.log.Warn().Err(err).Msg("reload after mutation failed, keeping local state")
		} else {
			if all == nil {
				all = []model.Participant{}
			}
			r.all = all
		}
	}
	r.filtered = r.filter.Apply(r.all)
	for id := range r.selection {
		if r.index(id) < 0 {
			delete(r.selection, id)
		}
	}
}

func (r *Registry) index(id string) int {
	for i := range r.all {
		if r.all[i].ID == id {
			return i
		}
	}
	return -1
}

func rejectionReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", &ValidationError{Field: "reason", Msg: "a rejection reason is required"}
	}
	return reason, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func clone(ps []model.Participant) []model.Participant {
	out := make([]model.Participant, len(ps))
	copy(out, ps)
	return out
}
