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

type RosterService interface {
	CreateAttendee(ctx context.Context, attendee domain.Attendee) (domain.Attendee, error)
	GetAttendee(ctx context.Context, id uint) (domain.Attendee, error)
	ListAttendees(ctx context.Context, query service.ListAttendeesQuery) (service.RosterPage, error)
	Locations(ctx context.Context) (map[string][]string, error)
}

type AttendeeHandler struct {
	svc     RosterService
	authSvc AuthService
}

func NewAttendeeHandler(svc RosterService, authSvc AuthService) *AttendeeHandler {
	return &AttendeeHandler{
		svc:     svc,
		authSvc: authSvc,
	}
}

// HandleListAttendees godoc
// @Summary      List attendees with fuzzy search, filters and check-in statuses
// @Tags         attendees
// @Produce      json
// @Param        search       query     string false "fuzzy search over name, record number and phone"
// @Param        governorate  query     string false "exact governorate filter"
// @Param        district     query     string false "exact district filter"
// @Param        area         query     string false "exact area filter"
// @Param        station_id   query     int    false "station for the checked filter"
// @Param        checked      query     string false "any, checked or not_checked at station_id"
// @Param        sort_key     query     string false "name, record_number, governorate, district, area or quantity"
// @Param        sort_dir     query     string false "asc or desc"
// @Param        page         query     int    false "page number, 50 per page"
// @Success      200      {object}   service.RosterPage
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /attendees [get]
// @Security     BearerAuth
func (h *AttendeeHandler) HandleListAttendees(ctx *gin.Context) {
	var req request.ListAttendeesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	page, err := h.svc.ListAttendees(ctx.Request.Context(), service.ListAttendeesQuery{
		Search:      req.Search,
		Governorate: req.Governorate,
		District:    req.District,
		Area:        req.Area,
		StationID:   req.StationID,
		Checked:     req.Checked,
		SortKey:     req.SortKey,
		SortDir:     req.SortDir,
		Page:        req.Page,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListAttendees -> h.svc.ListAttendees -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, page)
}

// HandleGetAttendee godoc
// @Summary      Get one attendee
// @Tags         attendees
// @Produce      json
// @Param        attendeeID   path      int true "attendee ID"
// @Success      200      {object}   domain.Attendee
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /attendees/{attendeeID} [get]
// @Security     BearerAuth
func (h *AttendeeHandler) HandleGetAttendee(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("attendeeID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	attendee, err := h.svc.GetAttendee(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrAttendeeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrAttendeeNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetAttendee -> h.svc.GetAttendee -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, attendee)
}

// HandleCreateAttendee godoc
// @Summary      Register a new attendee
// @Tags         attendees
// @Produce      json
// @Param        request   body      request.CreateAttendeeRequest true "request body"
// @Success      201      {object}   domain.Attendee
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /attendees [post]
// @Security     BearerAuth
func (h *AttendeeHandler) HandleCreateAttendee(ctx *gin.Context) {
	actor, respErr := getProfileFromContext(ctx, h.authSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}
	if actor.Role != roles.SuperAdmin {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))

		return
	}

	var req request.CreateAttendeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	created, err := h.svc.CreateAttendee(ctx.Request.Context(), domain.Attendee{
		Name:         req.Name,
		RecordNumber: req.RecordNumber,
		Governorate:  req.Governorate,
		District:     req.District,
		Area:         req.Area,
		Phone:        req.Phone,
		Quantity:     req.Quantity,
		Ages:         req.Ages,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateAttendee -> h.svc.CreateAttendee -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetLocations godoc
// @Summary      List distinct governorates, districts and areas
// @Tags         attendees
// @Produce      json
// @Success      200      {object}   map[string][]string
// @Failure      500      {object}   response.Err
// @Router       /attendees/locations [get]
// @Security     BearerAuth
func (h *AttendeeHandler) HandleGetLocations(ctx *gin.Context) {
	locations, err := h.svc.Locations(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetLocations -> h.svc.Locations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, locations)
}
