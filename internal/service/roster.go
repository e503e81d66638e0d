package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository"
	"checkpoint-backend/internal/search"
)

// PageSize is the fixed roster page length.
const PageSize = 50

// Checked filter values for the per-station roster filter.
const (
	CheckedAny  = "any"
	CheckedOnly = "checked"
	CheckedNot  = "not_checked"
)

var ErrAttendeeNotFound = repository.ErrAttendeeNotFound

type RosterAttendeeRepository interface {
	Create(ctx context.Context, attendee domain.Attendee) (domain.Attendee, error)
	FindByID(ctx context.Context, id uint) (domain.Attendee, error)
	List(ctx context.Context, filter domain.AttendeeFilter) ([]domain.Attendee, int64, error)
	DistinctLocations(ctx context.Context, column string) ([]string, error)
}

// ListAttendeesQuery is one roster request. Search is expanded to
// fuzzy patterns. StationID plus Checked restrict the page against the
// projection: "checked" keeps attendees with a checked slot at the
// station, "not_checked" keeps the rest. A StationID without an
// explicit Checked value means "checked". SortKey takes name,
// record_number, governorate, district, area or quantity; SortDir is
// asc or desc.
type ListAttendeesQuery struct {
	Search      string
	Governorate string
	District    string
	Area        string

	StationID uint
	Checked   string

	SortKey string
	SortDir string

	Page int
}

// RosterPage is one page of the roster plus the total matching count.
type RosterPage struct {
	Attendees []domain.AttendeeWithStatus `json:"attendees"`
	Total     int64                       `json:"total"`
	Page      int                         `json:"page"`
	PageSize  int                         `json:"page_size"`
}

// RosterService assembles attendee pages by joining the database rows
// with the in-memory check-in projection.
type RosterService struct {
	repo  RosterAttendeeRepository
	store *checkin.StatusStore
}

func NewRosterService(repo RosterAttendeeRepository, store *checkin.StatusStore) *RosterService {
	return &RosterService{
		repo:  repo,
		store: store,
	}
}

func (s *RosterService) CreateAttendee(ctx context.Context, attendee domain.Attendee) (domain.Attendee, error) {
	created, err := s.repo.Create(ctx, attendee)
	if err != nil {
		return domain.Attendee{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *RosterService) GetAttendee(ctx context.Context, id uint) (domain.Attendee, error) {
	attendee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Attendee{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return attendee, nil
}

// ListAttendees returns one roster page. Pages are re-sorted with a
// numeric-aware collator so record numbers order as humans expect
// ("A2" before "A10").
func (s *RosterService) ListAttendees(ctx context.Context, query ListAttendeesQuery) (RosterPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	sortDesc := strings.EqualFold(query.SortDir, "desc")

	filter := domain.AttendeeFilter{
		Governorate: query.Governorate,
		District:    query.District,
		Area:        query.Area,
		SortKey:     query.SortKey,
		SortDesc:    sortDesc,
		Offset:      (page - 1) * PageSize,
		Limit:       PageSize,
	}
	if q := strings.TrimSpace(query.Search); q != "" {
		filter.Patterns = search.Generate(q)
	}

	checked := query.Checked
	if checked == "" && query.StationID != 0 {
		checked = CheckedOnly
	}

	var (
		attendees []domain.Attendee
		total     int64
		err       error
	)
	if query.StationID != 0 && checked != CheckedAny {
		attendees, total, err = s.listByProjection(ctx, filter, query.StationID, checked == CheckedOnly, page)
	} else {
		attendees, total, err = s.repo.List(ctx, filter)
	}
	if err != nil {
		return RosterPage{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	sortAttendees(attendees, query.SortKey, sortDesc)

	ids := make([]uint, len(attendees))
	for i, a := range attendees {
		ids[i] = a.ID
	}
	statuses := s.store.StatusesFor(ids)

	joined := make([]domain.AttendeeWithStatus, len(attendees))
	for i, a := range attendees {
		st := statuses[a.ID]
		if st == nil {
			st = map[uint]domain.CheckInStatus{}
		}
		joined[i] = domain.AttendeeWithStatus{
			Attendee:        a,
			StationStatuses: st,
		}
	}

	return RosterPage{
		Attendees: joined,
		Total:     total,
		Page:      page,
		PageSize:  PageSize,
	}, nil
}

// listByProjection restricts the page to attendees with, or without, a
// checked slot at the station. The projection decides membership; the
// database only supplies the matching rows, so the page is paginated
// here.
func (s *RosterService) listByProjection(ctx context.Context, filter domain.AttendeeFilter, stationID uint, wantChecked bool, page int) ([]domain.Attendee, int64, error) {
	checked := make(map[uint]struct{})
	for _, id := range s.store.CheckedAttendees(stationID) {
		checked[id] = struct{}{}
	}
	if wantChecked && len(checked) == 0 {
		return nil, 0, nil
	}

	// Pull every filter match, then narrow by the projection.
	filter.Offset = 0
	filter.Limit = -1
	all, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	matched := all[:0]
	for _, a := range all {
		if _, ok := checked[a.ID]; ok == wantChecked {
			matched = append(matched, a)
		}
	}

	total := int64(len(matched))
	start := (page - 1) * PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

// Locations lists the distinct values for the roster filter dropdowns.
func (s *RosterService) Locations(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, 3)
	for _, column := range []string{"governorate", "district", "area"} {
		values, err := s.repo.DistinctLocations(ctx, column)
		if err != nil {
			return nil, fmt.Errorf("s.repo.DistinctLocations -> %w", err)
		}
		out[column] = values
	}

	return out, nil
}

// sortAttendees re-sorts one page with a numeric-aware collator on text
// keys and a plain numeric compare on quantity. Ties fall back to
// record number then ID, ascending regardless of direction.
func sortAttendees(attendees []domain.Attendee, sortKey string, desc bool) {
	c := collate.New(language.Und, collate.Numeric)

	key := func(a domain.Attendee) string {
		switch sortKey {
		case "name":
			return a.Name
		case "governorate":
			return a.Governorate
		case "district":
			return a.District
		case "area":
			return a.Area
		default:
			return a.RecordNumber
		}
	}

	sort.SliceStable(attendees, func(i, j int) bool {
		a, b := attendees[i], attendees[j]

		var cmp int
		if sortKey == "quantity" {
			switch {
			case a.Quantity < b.Quantity:
				cmp = -1
			case a.Quantity > b.Quantity:
				cmp = 1
			}
		} else {
			cmp = c.CompareString(key(a), key(b))
		}

		if cmp == 0 {
			if rc := c.CompareString(a.RecordNumber, b.RecordNumber); rc != 0 {
				return rc < 0
			}
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
