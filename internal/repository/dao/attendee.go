package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrAttendeeNotFound = errors.New("attendee not found")

type Attendee struct {
	ID uint `gorm:"primaryKey"`

	Name         string `gorm:"not null;index"`
	RecordNumber string `gorm:"not null;index"`

	Governorate string `gorm:"index"`
	District    string `gorm:"index"`
	Area        string `gorm:"index"`

	Phone    *string `gorm:"index"`
	Quantity int     `gorm:"not null;default:1"`
	Ages     []int   `gorm:"serializer:json"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Attendee) TableName() string {
	return "attendees"
}

// ListFilter narrows a roster page. Patterns are matched with ILIKE as
// one OR group over name, record number and phone; the location fields
// are exact matches ANDed on top.
type ListFilter struct {
	Patterns    []string
	Governorate string
	District    string
	Area        string

	SortKey  string
	SortDesc bool

	Offset int
	Limit  int
}

// sortColumns whitelists the sortable roster columns.
var sortColumns = map[string]string{
	"name":          "name",
	"record_number": "record_number",
	"governorate":   "governorate",
	"district":      "district",
	"area":          "area",
	"quantity":      "quantity",
}

func (f ListFilter) orderClause() string {
	column, ok := sortColumns[f.SortKey]
	if !ok {
		column = "record_number"
	}

	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	return column + " " + direction + ", id ASC"
}

type AttendeeDAO struct {
	db *gorm.DB
}

func NewAttendeeDAO(db *gorm.DB) *AttendeeDAO {
	return &AttendeeDAO{
		db: db,
	}
}

func (d *AttendeeDAO) Insert(ctx context.Context, attendee Attendee) (Attendee, error) {
	result := d.db.WithContext(ctx).Create(&attendee)
	if result.Error != nil {
		return Attendee{}, result.Error
	}

	return attendee, nil
}

func (d *AttendeeDAO) FindByID(ctx context.Context, id uint) (Attendee, error) {
	var attendee Attendee

	result := d.db.WithContext(ctx).First(&attendee, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendee{}, ErrAttendeeNotFound
		}

		return Attendee{}, result.Error
	}

	return attendee, nil
}

// List returns one roster page plus the total count of rows matching
// the same filter.
func (d *AttendeeDAO) List(ctx context.Context, filter ListFilter) ([]Attendee, int64, error) {
	query := d.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attendees []Attendee
	result := query.
		Order(filter.orderClause()).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&attendees)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return attendees, total, nil
}

// FindByIDs loads the given attendees in one query, for per-station
// filtered pages assembled from the in-memory projection.
func (d *AttendeeDAO) FindByIDs(ctx context.Context, ids []uint) ([]Attendee, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var attendees []Attendee
	result := d.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("record_number ASC, id ASC").
		Find(&attendees)
	if result.Error != nil {
		return nil, result.Error
	}

	return attendees, nil
}

func (d *AttendeeDAO) CountAll(ctx context.Context) (int64, error) {
	var total int64
	result := d.db.WithContext(ctx).Model(&Attendee{}).Count(&total)

	return total, result.Error
}

func (d *AttendeeDAO) SumQuantity(ctx context.Context) (int64, error) {
	var sum int64
	result := d.db.WithContext(ctx).
		Model(&Attendee{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum)

	return sum, result.Error
}

// DistinctLocations lists the distinct values of one location column,
// used to populate the roster filter dropdowns.
func (d *AttendeeDAO) DistinctLocations(ctx context.Context, column string) ([]string, error) {
	switch column {
	case "governorate", "district", "area":
	default:
		return nil, errors.New("unknown location column")
	}

	var values []string
	result := d.db.WithContext(ctx).
		Model(&Attendee{}).
		Distinct(column).
		Where(column + " <> ''").
		Order(column + " ASC").
		Pluck(column, &values)
	if result.Error != nil {
		return nil, result.Error
	}

	return values, nil
}

func (d *AttendeeDAO) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	query := d.db.WithContext(ctx).Model(&Attendee{})

	if len(filter.Patterns) > 0 {
		match := d.db.Session(&gorm.Session{NewDB: true})
		for _, p := range filter.Patterns {
			needle := "%" + p + "%"
			match = match.Or("name ILIKE ?", needle).
				Or("record_number ILIKE ?", needle).
				Or("phone ILIKE ?", needle)
		}
		query = query.Where(match)
	}

	if filter.Governorate != "" {
		query = query.Where("governorate = ?", filter.Governorate)
	}
	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}
	if filter.Area != "" {
		query = query.Where("area = ?", filter.Area)
	}

	return query
}
