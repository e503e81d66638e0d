package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendeeStationStatus is one check-in slot. A NULL checked_at means
// the slot is unchecked; a missing row means the same thing. Unchecks
// reset the row instead of deleting it so the change trigger still
// fires an UPDATE the listeners can fold in.
type AttendeeStationStatus struct {
	AttendeeID uint `gorm:"primaryKey;autoIncrement:false"`
	StationID  uint `gorm:"primaryKey;autoIncrement:false"`

	CheckedAt *time.Time
	Quantity  int `gorm:"not null;default:1"`

	UpdatedAt time.Time `gorm:"not null"`
}

func (AttendeeStationStatus) TableName() string {
	return "attendee_station_status"
}

// StationCount aggregates the checked slots of one station.
type StationCount struct {
	StationID uint
	Accounts  int64
	People    int64
}

type StatusDAO struct {
	db *gorm.DB
}

func NewStatusDAO(db *gorm.DB) *StatusDAO {
	return &StatusDAO{
		db: db,
	}
}

// Upsert writes one checked slot, inserting or overwriting on the
// (attendee_id, station_id) key. Last writer wins at the row level.
func (d *StatusDAO) Upsert(ctx context.Context, status AttendeeStationStatus) error {
	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attendee_id"}, {Name: "station_id"}},
			DoUpdates: clause.AssignmentColumns(
				[]string{"checked_at", "quantity", "updated_at"},
			),
		}).
		Create(&status)

	return result.Error
}

// Clear resets one slot to unchecked without deleting the row.
func (d *StatusDAO) Clear(ctx context.Context, attendeeID, stationID uint) error {
	result := d.db.WithContext(ctx).
		Model(&AttendeeStationStatus{}).
		Where("attendee_id = ? AND station_id = ?", attendeeID, stationID).
		Updates(map[string]any{
			"checked_at": nil,
			"quantity":   1,
		})

	return result.Error
}

// LoadChecked returns every checked slot, for the full reconciling
// load on subscribe and during fallback polling.
func (d *StatusDAO) LoadChecked(ctx context.Context) ([]AttendeeStationStatus, error) {
	var statuses []AttendeeStationStatus

	result := d.db.WithContext(ctx).
		Where("checked_at IS NOT NULL").
		Find(&statuses)
	if result.Error != nil {
		return nil, result.Error
	}

	return statuses, nil
}

// CountByStation aggregates checked accounts and summed head counts
// per station.
func (d *StatusDAO) CountByStation(ctx context.Context) ([]StationCount, error) {
	var counts []StationCount

	result := d.db.WithContext(ctx).
		Model(&AttendeeStationStatus{}).
		Select("station_id, COUNT(*) AS accounts, COALESCE(SUM(quantity), 0) AS people").
		Where("checked_at IS NOT NULL").
		Group("station_id").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// ResetAll unchecks every slot at every station.
func (d *StatusDAO) ResetAll(ctx context.Context) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&AttendeeStationStatus{}).
		Where("checked_at IS NOT NULL").
		Updates(map[string]any{
			"checked_at": nil,
			"quantity":   1,
		})

	return result.RowsAffected, result.Error
}

// ResetStations unchecks every slot at the given stations only.
func (d *StatusDAO) ResetStations(ctx context.Context, stationIDs []uint) (int64, error) {
	if len(stationIDs) == 0 {
		return 0, nil
	}

	result := d.db.WithContext(ctx).
		Model(&AttendeeStationStatus{}).
		Where("station_id IN ? AND checked_at IS NOT NULL", stationIDs).
		Updates(map[string]any{
			"checked_at": nil,
			"quantity":   1,
		})

	return result.RowsAffected, result.Error
}
