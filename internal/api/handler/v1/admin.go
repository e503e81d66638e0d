package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"checkpoint-backend/internal/api/handler/v1/request"
	"checkpoint-backend/internal/api/handler/v1/response"
	"checkpoint-backend/internal/roles"
	"checkpoint-backend/internal/service"
)

var errAdminOnly = errors.New("admin privileges required")

type AdminService interface {
	ResetAll(ctx context.Context) (service.ResetResult, error)
	ResetStations(ctx context.Context, stationIDs []uint) (service.ResetResult, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

type AdminHandler struct {
	svc     AdminService
	authSvc AuthService
}

func NewAdminHandler(svc AdminService, authSvc AuthService) *AdminHandler {
	return &AdminHandler{
		svc:     svc,
		authSvc: authSvc,
	}
}

// HandleReset godoc
// @Summary      Reset check-ins, everywhere or at selected stations
// @Description  Takes a CSV backup of the checked slots before clearing them.
// @Tags         admin
// @Produce      json
// @Param        request   body      request.ResetRequest true "stations to reset; empty means all"
// @Success      200      {object}   service.ResetResult
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/reset [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleReset(ctx *gin.Context) {
	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}
	if actor.Role != roles.SuperAdmin {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

		return
	}

	var req request.ResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var (
		result service.ResetResult
		err    error
	)
	if len(req.StationIDs) == 0 {
		result, err = h.svc.ResetAll(ctx.Request.Context())
	} else {
		result, err = h.svc.ResetStations(ctx.Request.Context(), req.StationIDs)
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleReset -> h.svc.Reset -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleExport godoc
// @Summary      Export the checked slots as CSV
// @Tags         admin
// @Produce      text/csv
// @Success      200      {string}   string "CSV body"
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/export [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleExport(ctx *gin.Context) {
	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}
	if !roles.IsPrivileged(actor.Role) {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

		return
	}

	data, err := h.svc.ExportCSV(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleExport -> h.svc.ExportCSV -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	filename := fmt.Sprintf("checkins-%s.csv", time.Now().UTC().Format("20060102-150405"))
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}
