package service

import (
	"context"
	"errors"
	"fmt"

	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
)

var (
	ErrStationGated     = checkin.ErrStationGated
	ErrRoleRestricted   = checkin.ErrRoleRestricted
	ErrInvalidQuantity  = checkin.ErrInvalidQuantity
	ErrQuantityExceeded = checkin.ErrQuantityExceeded
	ErrStationDisabled  = errors.New("station is disabled or unknown")
)

type CheckInAttendeeRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Attendee, error)
}

// CheckInService resolves a transition request's attendee and station,
// then delegates validation and the optimistic write to the engine.
type CheckInService struct {
	attendees CheckInAttendeeRepository
	catalog   *checkin.Catalog
	engine    *checkin.Engine
}

func NewCheckInService(attendees CheckInAttendeeRepository, catalog *checkin.Catalog, engine *checkin.Engine) *CheckInService {
	return &CheckInService{
		attendees: attendees,
		catalog:   catalog,
		engine:    engine,
	}
}

func (s *CheckInService) Check(ctx context.Context, attendeeID, stationID uint, actor domain.Profile, quantity int) (domain.CheckInStatus, error) {
	attendee, station, err := s.resolve(ctx, attendeeID, stationID)
	if err != nil {
		return domain.CheckInStatus{}, err
	}

	status, err := s.engine.Check(ctx, attendee, station, actor, quantity)
	if err != nil {
		return domain.CheckInStatus{}, fmt.Errorf("s.engine.Check -> %w", err)
	}

	return status, nil
}

func (s *CheckInService) Uncheck(ctx context.Context, attendeeID, stationID uint, actor domain.Profile) error {
	attendee, station, err := s.resolve(ctx, attendeeID, stationID)
	if err != nil {
		return err
	}

	if err = s.engine.Uncheck(ctx, attendee, station, actor); err != nil {
		return fmt.Errorf("s.engine.Uncheck -> %w", err)
	}

	return nil
}

// resolve looks up the attendee row and the station from the live
// catalog. Disabled or unknown stations are not valid targets.
func (s *CheckInService) resolve(ctx context.Context, attendeeID, stationID uint) (domain.Attendee, domain.Station, error) {
	attendee, err := s.attendees.FindByID(ctx, attendeeID)
	if err != nil {
		return domain.Attendee{}, domain.Station{}, fmt.Errorf("s.attendees.FindByID -> %w", err)
	}

	station, ok := s.catalog.Get(stationID)
	if !ok {
		return domain.Attendee{}, domain.Station{}, ErrStationDisabled
	}

	return attendee, station, nil
}
