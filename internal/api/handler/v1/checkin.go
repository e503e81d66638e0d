package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"checkpoint-backend/internal/api/handler/v1/request"
	"checkpoint-backend/internal/api/handler/v1/response"
	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/service"
)

type CheckInService interface {
	Check(ctx context.Context, attendeeID, stationID uint, actor domain.Profile, quantity int) (domain.CheckInStatus, error)
	Uncheck(ctx context.Context, attendeeID, stationID uint, actor domain.Profile) error
}

type CheckInHandler struct {
	svc     CheckInService
	authSvc AuthService
}

func NewCheckInHandler(svc CheckInService, authSvc AuthService) *CheckInHandler {
	return &CheckInHandler{
		svc:     svc,
		authSvc: authSvc,
	}
}

// HandleCheck godoc
// @Summary      Check an attendee in at a station
// @Tags         checkins
// @Produce      json
// @Param        request   body      request.CheckRequest true "request body"
// @Success      200      {object}   domain.CheckInStatus
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /checkins/check [post]
// @Security     BearerAuth
func (h *CheckInHandler) HandleCheck(ctx *gin.Context) {
	var req request.CheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	status, err := h.svc.Check(ctx.Request.Context(), req.AttendeeID, req.StationID, actor, req.Quantity)
	if err != nil {
		h.renderCheckInErr(ctx, "v1.HandleCheck", err)

		return
	}

	ctx.JSON(http.StatusOK, status)
}

// HandleUncheck godoc
// @Summary      Revert an attendee's check-in at a station
// @Tags         checkins
// @Produce      json
// @Param        request   body      request.UncheckRequest true "request body"
// @Success      204      {string}   string "no content"
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /checkins/uncheck [post]
// @Security     BearerAuth
func (h *CheckInHandler) HandleUncheck(ctx *gin.Context) {
	var req request.UncheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if err := h.svc.Uncheck(ctx.Request.Context(), req.AttendeeID, req.StationID, actor); err != nil {
		h.renderCheckInErr(ctx, "v1.HandleUncheck", err)

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *CheckInHandler) renderCheckInErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrStationGated),
		errors.Is(err, service.ErrRoleRestricted):
		response.RenderErr(ctx, response.ErrForbidden(err))
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrQuantityExceeded),
		errors.Is(err, service.ErrStationDisabled):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrAttendeeNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrAttendeeNotFound))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(
			fmt.Errorf("%s -> %w", op, err)))
	}
}
