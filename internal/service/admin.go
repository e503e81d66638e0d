package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
)

type AdminStatusRepository interface {
	LoadStatuses(ctx context.Context) (map[domain.StatusKey]domain.CheckInStatus, error)
	ResetAll(ctx context.Context) (int64, error)
	ResetStations(ctx context.Context, stationIDs []uint) (int64, error)
}

type AdminAttendeeRepository interface {
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Attendee, error)
}

// Refresher re-syncs the in-memory projection after a bulk mutation.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ResetResult reports a reset: how many slots were cleared and the CSV
// backup taken just before.
type ResetResult struct {
	Cleared int64  `json:"cleared"`
	Backup  []byte `json:"-"`
}

// AdminService covers the destructive bulk operations. Every reset
// snapshots the checked slots to CSV first.
type AdminService struct {
	statuses  AdminStatusRepository
	attendees AdminAttendeeRepository
	catalog   *checkin.Catalog
	refresher Refresher
}

func NewAdminService(statuses AdminStatusRepository, attendees AdminAttendeeRepository, catalog *checkin.Catalog, refresher Refresher) *AdminService {
	return &AdminService{
		statuses:  statuses,
		attendees: attendees,
		catalog:   catalog,
		refresher: refresher,
	}
}

// ResetAll unchecks every slot at every station.
func (s *AdminService) ResetAll(ctx context.Context) (ResetResult, error) {
	return s.reset(ctx, nil)
}

// ResetStations unchecks every slot at the given stations only.
func (s *AdminService) ResetStations(ctx context.Context, stationIDs []uint) (ResetResult, error) {
	if len(stationIDs) == 0 {
		return ResetResult{}, nil
	}

	return s.reset(ctx, stationIDs)
}

func (s *AdminService) reset(ctx context.Context, stationIDs []uint) (ResetResult, error) {
	backup, err := s.ExportCSV(ctx)
	if err != nil {
		return ResetResult{}, fmt.Errorf("s.ExportCSV -> %w", err)
	}

	var cleared int64
	if stationIDs == nil {
		cleared, err = s.statuses.ResetAll(ctx)
	} else {
		cleared, err = s.statuses.ResetStations(ctx, stationIDs)
	}
	if err != nil {
		return ResetResult{}, fmt.Errorf("s.statuses.Reset -> %w", err)
	}

	zap.L().Info("check-in reset",
		zap.Uints("station_ids", stationIDs),
		zap.Int64("cleared", cleared))

	// The change feed will deliver the resets row by row; a refresh
	// snaps the projection to the final state immediately.
	if err = s.refresher.Refresh(ctx); err != nil {
		zap.L().Warn("post-reset refresh failed", zap.Error(err))
	}

	return ResetResult{Cleared: cleared, Backup: backup}, nil
}

// ExportCSV renders every checked slot with its attendee and station,
// one row per slot, ordered by record number then station.
func (s *AdminService) ExportCSV(ctx context.Context) ([]byte, error) {
	statuses, err := s.statuses.LoadStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.statuses.LoadStatuses -> %w", err)
	}

	ids := make([]uint, 0, len(statuses))
	seen := make(map[uint]struct{}, len(statuses))
	for key := range statuses {
		if _, ok := seen[key.AttendeeID]; !ok {
			seen[key.AttendeeID] = struct{}{}
			ids = append(ids, key.AttendeeID)
		}
	}

	attendees, err := s.attendees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.attendees.FindByIDs -> %w", err)
	}
	byID := make(map[uint]domain.Attendee, len(attendees))
	for _, a := range attendees {
		byID[a.ID] = a
	}

	type row struct {
		attendee domain.Attendee
		station  string
		status   domain.CheckInStatus
	}
	rows := make([]row, 0, len(statuses))
	for key, st := range statuses {
		stationName := strconv.FormatUint(uint64(key.StationID), 10)
		if station, ok := s.catalog.Get(key.StationID); ok {
			stationName = station.Name
		}
		rows = append(rows, row{
			attendee: byID[key.AttendeeID],
			station:  stationName,
			status:   st,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].attendee.RecordNumber != rows[j].attendee.RecordNumber {
			return rows[i].attendee.RecordNumber < rows[j].attendee.RecordNumber
		}
		return rows[i].station < rows[j].station
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"record_number", "name", "governorate", "district", "area",
		"phone", "station", "checked_at", "quantity",
	})
	for _, r := range rows {
		phone := ""
		if r.attendee.Phone != nil {
			phone = *r.attendee.Phone
		}
		checkedAt := ""
		if r.status.CheckedAt != nil {
			checkedAt = r.status.CheckedAt.UTC().Format(time.RFC3339)
		}

		_ = w.Write([]string{
			r.attendee.RecordNumber,
			r.attendee.Name,
			r.attendee.Governorate,
			r.attendee.District,
			r.attendee.Area,
			phone,
			r.station,
			checkedAt,
			strconv.Itoa(r.status.Quantity),
		})
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return nil, fmt.Errorf("csv.Writer -> %w", err)
	}

	return buf.Bytes(), nil
}
