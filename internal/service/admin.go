package service

import (
	"codebeyond/internal/dto"
	"codebeyond/internal/model"
	"codebeyond/internal/registry"
	"codebeyond/pkg/validator"
	"errors"
	"fmt"
	"github.com/wb-go/wbf/ginext"
	"net/http"
	"strings"
)

func (s *service) Reload(ctx *ginext.Context) {
	if err := s.reg.Load(ctx.Request.Context()); err != nil {
		s.writeError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, dto.NewListResponse(s.reg.CurrentFilter(), s.reg.Filtered()))
}

// List applies the query parameters as the active filter; no parameters clears it.
func (s *service) List(ctx *ginext.Context) {
	status, ok := statusParam(strings.TrimSpace(ctx.Query("status")))
	if !ok {
		dto.FieldIncorrectError(ctx, "Unknown status: "+ctx.Query("status"))
		return
	}
	ps := s.reg.ApplyFilters(registry.Filter{
		Query:    ctx.Query("q"),
		Status:   status,
		Category: ctx.Query("category"),
	})
	dto.SuccessResponse(ctx, dto.NewListResponse(s.reg.CurrentFilter(), ps))
}

func (s *service) Summary(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, s.reg.Summary())
}

func (s *service) Approve(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := s.reg.Approve(ctx.Request.Context(), id, reviewer(ctx)); err != nil {
		s.writeError(ctx, err)
		return
	}
	s.notify(ctx.Request.Context(), id)
	s.respondParticipant(ctx, id)
}

func (s *service) Reject(ctx *ginext.Context) {
	var req dto.RejectRequest
	if err := bindOptional(ctx, &req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	id := ctx.Param("id")
	if err := s.reg.Reject(ctx.Request.Context(), id, req.Reason, reviewer(ctx)); err != nil {
		s.writeError(ctx, err)
		return
	}
	s.notify(ctx.Request.Context(), id)
	s.respondParticipant(ctx, id)
}

func (s *service) Update(ctx *ginext.Context) {
	var patch model.Patch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, patch); verr != nil {
		dto.FieldIncorrectError(ctx, verr.Error())
		return
	}

	id := ctx.Param("id")
	if err := s.reg.UpdateFields(ctx.Request.Context(), id, patch); err != nil {
		s.writeError(ctx, err)
		return
	}
	s.respondParticipant(ctx, id)
}

func (s *service) Delete(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := s.reg.Delete(ctx.Request.Context(), id); err != nil {
		s.writeError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, map[string]string{"id": id})
}

func (s *service) BulkApprove(ctx *ginext.Context) {
	ids, ok := s.bulkTargets(ctx)
	if !ok {
		return
	}
	res, err := s.reg.BulkApprove(ctx.Request.Context(), ids, reviewer(ctx))
	s.notify(ctx.Request.Context(), res.Affected...)
	s.respondBulk(ctx, res, err)
}

func (s *service) BulkReject(ctx *ginext.Context) {
	var req dto.BulkRequest
	if err := bindOptional(ctx, &req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	ids, ok := s.targets(ctx, req.IDs)
	if !ok {
		return
	}
	res, err := s.reg.BulkReject(ctx.Request.Context(), ids, req.Reason, reviewer(ctx))
	s.notify(ctx.Request.Context(), res.Affected...)
	s.respondBulk(ctx, res, err)
}

func (s *service) BulkDelete(ctx *ginext.Context) {
	ids, ok := s.bulkTargets(ctx)
	if !ok {
		return
	}
	res, err := s.reg.BulkDelete(ctx.Request.Context(), ids)
	s.respondBulk(ctx, res, err)
}

func (s *service) Export(ctx *ginext.Context) {
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, registry.ExportFileName(s.now())))
	ctx.Status(http.StatusOK)

	n, err := s.reg.ExportCSV(ctx.Writer)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to write csv export")
		return
	}
	s.log.Info().Int("rows", n).Msg("participants exported")
}

func (s *service) Selection(ctx *ginext.Context) {
	s.respondSelection(ctx)
}

func (s *service) Select(ctx *ginext.Context) {
	var req dto.SelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	s.reg.Select(req.IDs...)
	s.respondSelection(ctx)
}

func (s *service) SelectFiltered(ctx *ginext.Context) {
	s.reg.SelectFiltered()
	s.respondSelection(ctx)
}

// Deselect removes the given ids, or clears the selection when the body is empty.
func (s *service) Deselect(ctx *ginext.Context) {
	var req dto.SelectionRequest
	if err := bindOptional(ctx, &req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if len(req.IDs) == 0 {
		s.reg.ClearSelection()
	} else {
		s.reg.Deselect(req.IDs...)
	}
	s.respondSelection(ctx)
}

func (s *service) bulkTargets(ctx *ginext.Context) ([]string, bool) {
	var req dto.BulkRequest
	if err := bindOptional(ctx, &req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return nil, false
	}
	return s.targets(ctx, req.IDs)
}

// targets falls back to the current selection when no ids were sent.
func (s *service) targets(ctx *ginext.Context, ids []string) ([]string, bool) {
	if len(ids) == 0 {
		ids = s.reg.Selection()
	}
	if len(ids) == 0 {
		dto.FieldIncorrectError(ctx, "No participants selected")
		return nil, false
	}
	return ids, true
}

func (s *service) respondParticipant(ctx *ginext.Context, id string) {
	p, err := s.reg.Get(id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, p)
}

func (s *service) respondBulk(ctx *ginext.Context, res registry.BulkResult, err error) {
	var backendErr *registry.BackendError
	if err != nil && !errors.As(err, &backendErr) {
		s.writeError(ctx, err)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Int("affected", res.Count()).Msg("bulk operation partially failed")
		dto.PartialFailureResponse(ctx, err.Error(), dto.NewBulkResponse(res))
		return
	}
	dto.SuccessResponse(ctx, dto.NewBulkResponse(res))
}

func (s *service) respondSelection(ctx *ginext.Context) {
	ids := s.reg.Selection()
	dto.SuccessResponse(ctx, dto.SelectionResponse{IDs: ids, Count: len(ids)})
}
