package service

import (
	"codebeyond/internal/dto"
	"codebeyond/internal/model"
	"codebeyond/internal/rabbit"
	"codebeyond/internal/registry"
	"codebeyond/internal/repo"
	"codebeyond/pkg/validator"
	"context"
	"encoding/json"
	"errors"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
	"io"
	"time"
)

type Service interface {
	Register(ctx *ginext.Context)
	Status(ctx *ginext.Context)

	Reload(ctx *ginext.Context)
	List(ctx *ginext.Context)
	Summary(ctx *ginext.Context)
	Approve(ctx *ginext.Context)
	Reject(ctx *ginext.Context)
	Update(ctx *ginext.Context)
	Delete(ctx *ginext.Context)
	BulkApprove(ctx *ginext.Context)
	BulkReject(ctx *ginext.Context)
	BulkDelete(ctx *ginext.Context)
	Export(ctx *ginext.Context)

	Selection(ctx *ginext.Context)
	Select(ctx *ginext.Context)
	SelectFiltered(ctx *ginext.Context)
	Deselect(ctx *ginext.Context)
}

type service struct {
	reg    *registry.Registry
	log    *zerolog.Logger
	rbt    rabbit.Publisher
	locale string
	now    func() time.Time
}

// NewService builds the HTTP handlers. rbt may be nil, review notifications are then
// not published.
func NewService(reg *registry.Registry, logger *zerolog.Logger, rbt rabbit.Publisher, locale string) Service {
	return &service{
		reg:    reg,
		log:    logger,
		rbt:    rbt,
		locale: locale,
		now:    time.Now,
	}
}

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse register request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Warn().Err(verr).Msg("validation failed")
		dto.FieldIncorrectError(ctx, verr.Error())
		return
	}

	p, err := s.reg.Register(ctx.Request.Context(), req.ToModel())
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateRegistration) {
			dto.RegistrationDuplicateError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to register participant")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessCreatedResponse(ctx, dto.NewStatusResponse(p))
}

func (s *service) Status(ctx *ginext.Context) {
	p, err := s.reg.Get(ctx.Param("id"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, dto.NewStatusResponse(p))
}

// writeError maps registry errors onto the response envelope.
func (s *service) writeError(ctx *ginext.Context, err error) {
	var (
		loadErr    *registry.LoadError
		backendErr *registry.BackendError
	)
	switch {
	case errors.Is(err, registry.ErrValidation):
		dto.FieldIncorrectError(ctx, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		dto.ParticipantNotFoundError(ctx, err.Error())
	case errors.Is(err, registry.ErrInvalidTransition):
		dto.InvalidTransitionError(ctx, err.Error())
	case errors.Is(err, repo.ErrDuplicateRegistration):
		dto.RegistrationDuplicateError(ctx)
	case errors.As(err, &loadErr):
		dto.BadGatewayError(ctx, "Failed to load participants, try reloading")
	case errors.As(err, &backendErr):
		dto.BadGatewayError(ctx, backendErr.Error())
	default:
		s.log.Error().Err(err).Msg("unexpected error")
		dto.InternalServerError(ctx)
	}
}

// notify publishes the review outcome of each id. Publishing failures are logged and
// never fail the request.
func (s *service) notify(ctx context.Context, ids ...string) {
	if s.rbt == nil {
		return
	}
	for _, id := range ids {
		p, err := s.reg.Get(id)
		if err != nil || !p.Status.Terminal() {
			continue
		}
		payload, err := json.Marshal(dto.NewReviewMessage(p, s.locale))
		if err != nil {
			s.log.Error().Err(err).Str("participant_id", id).Msg("failed to marshal review message")
			continue
		}
		if err := s.rbt.Publish(ctx, payload, string(p.Status)); err != nil {
			s.log.Error().Err(err).Str("participant_id", id).Msg("failed to publish review message to RabbitMQ")
		}
	}
}

func reviewer(ctx *ginext.Context) string {
	if r := ctx.GetString(dto.ReviewerKey); r != "" {
		return r
	}
	return "admin"
}

// bindOptional decodes the JSON body into dst, treating an empty body as zero values.
func bindOptional(ctx *ginext.Context, dst any) error {
	if err := ctx.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func statusParam(raw string) (model.Status, bool) {
	st := model.Status(raw)
	return st, raw == "" || st.Valid()
}
