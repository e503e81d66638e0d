package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"checkpoint-backend/internal/api/handler/v1/request"
	"checkpoint-backend/internal/api/handler/v1/response"
	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/roles"
	"checkpoint-backend/internal/service"
)

type StationService interface {
	ListEnabled(ctx context.Context) []domain.Station
	ListAll(ctx context.Context) ([]domain.Station, error)
	CreateStation(ctx context.Context, station domain.Station) (domain.Station, error)
	UpdateStation(ctx context.Context, station domain.Station) (domain.Station, error)
	SetMain(ctx context.Context, id uint) (domain.Station, error)
}

type StationHandler struct {
	svc     StationService
	authSvc AuthService
}

func NewStationHandler(svc StationService, authSvc AuthService) *StationHandler {
	return &StationHandler{
		svc:     svc,
		authSvc: authSvc,
	}
}

// HandleListStations godoc
// @Summary      List enabled stations in display order
// @Tags         stations
// @Produce      json
// @Param        all   query     bool false "include disabled stations (admins only)"
// @Success      200      {array}    domain.Station
// @Failure      500      {object}   response.Err
// @Router       /stations [get]
// @Security     BearerAuth
func (h *StationHandler) HandleListStations(ctx *gin.Context) {
	if ctx.Query("all") == "true" {
		actor, respErr := getProfileFromContext(ctx, h.authSvc)
		if respErr != nil {
			response.RenderErr(ctx, respErr)

			return
		}
		if !roles.IsPrivileged(actor.Role) {
			response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

			return
		}

		stations, err := h.svc.ListAll(ctx.Request.Context())
		if err != nil {
			err = fmt.Errorf("v1.HandleListStations -> h.svc.ListAll -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))

			return
		}

		ctx.JSON(http.StatusOK, stations)
		return
	}

	ctx.JSON(http.StatusOK, h.svc.ListEnabled(ctx.Request.Context()))
}

// HandleCreateStation godoc
// @Summary      Create a station
// @Tags         stations
// @Produce      json
// @Param        request   body      request.CreateStationRequest true "request body"
// @Success      201      {object}   domain.Station
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stations [post]
// @Security     BearerAuth
func (h *StationHandler) HandleCreateStation(ctx *gin.Context) {
	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}
	if !roles.IsPrivileged(actor.Role) {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

		return
	}

	var req request.CreateStationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	created, err := h.svc.CreateStation(ctx.Request.Context(), domain.Station{
		Name:      req.Name,
		IsEnabled: enabled,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateStation -> h.svc.CreateStation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateStation godoc
// @Summary      Update a station's name, enabled flag or sort order
// @Tags         stations
// @Produce      json
// @Param        stationID   path      int true "station ID"
// @Param        request     body      request.UpdateStationRequest true "request body"
// @Success      200      {object}   domain.Station
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stations/{stationID} [patch]
// @Security     BearerAuth
func (h *StationHandler) HandleUpdateStation(ctx *gin.Context) {
	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}
	if !roles.IsPrivileged(actor.Role) {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

		return
	}

	id, err := strconv.ParseUint(ctx.Param("stationID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateStationRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updated, err := h.svc.UpdateStation(ctx.Request.Context(), domain.Station{
		ID:        uint(id),
		Name:      req.Name,
		IsEnabled: *req.IsEnabled,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrStationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrStationNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateStation -> h.svc.UpdateStation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleSetMainStation godoc
// @Summary      Promote a station to be the main gate
// @Tags         stations
// @Produce      json
// @Param        stationID   path      int true "station ID"
// @Success      200      {object}   domain.Station
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stations/{stationID}/main [post]
// @Security     BearerAuth
func (h *StationHandler) HandleSetMainStation(ctx *gin.Context) {
	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}
	if !roles.IsPrivileged(actor.Role) {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

		return
	}

	id, err := strconv.ParseUint(ctx.Param("stationID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	station, err := h.svc.SetMain(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrStationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrStationNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleSetMainStation -> h.svc.SetMain -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, station)
}
