package service

import (
	"context"
	"fmt"

	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
)

type StatsAttendeeRepository interface {
	CountAll(ctx context.Context) (int64, error)
	SumQuantity(ctx context.Context) (int64, error)
}

type StatsStatusRepository interface {
	CountByStation(ctx context.Context) (map[uint]domain.StationTally, error)
}

// StatsService builds the dashboard snapshot: registration totals plus
// per-station progress in catalog order.
type StatsService struct {
	attendees StatsAttendeeRepository
	statuses  StatsStatusRepository
	catalog   *checkin.Catalog
}

func NewStatsService(attendees StatsAttendeeRepository, statuses StatsStatusRepository, catalog *checkin.Catalog) *StatsService {
	return &StatsService{
		attendees: attendees,
		statuses:  statuses,
		catalog:   catalog,
	}
}

func (s *StatsService) GetStats(ctx context.Context) (domain.Stats, error) {
	totalAccounts, err := s.attendees.CountAll(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.attendees.CountAll -> %w", err)
	}

	totalPeople, err := s.attendees.SumQuantity(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.attendees.SumQuantity -> %w", err)
	}

	tallies, err := s.statuses.CountByStation(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.statuses.CountByStation -> %w", err)
	}

	stats := domain.Stats{
		TotalAccounts: totalAccounts,
		TotalPeople:   totalPeople,
	}

	for _, station := range s.catalog.Stations() {
		entry := domain.StationStats{
			Station: station,
			Tally:   tallies[station.ID],
		}
		stats.Stations = append(stats.Stations, entry)

		// The main gate serves everyone; the busiest-station figure
		// only makes sense over the service stations behind it.
		if station.IsMain {
			continue
		}
		if stats.TopStation == nil || entry.Tally.People > stats.TopStation.Tally.People {
			if entry.Tally.People > 0 {
				top := entry
				stats.TopStation = &top
			}
		}
	}

	return stats, nil
}
