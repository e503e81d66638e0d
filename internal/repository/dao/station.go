package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrStationNotFound = errors.New("station not found")

type Station struct {
	ID uint `gorm:"primaryKey"`

	Name      string `gorm:"unique;not null"`
	IsEnabled bool   `gorm:"not null;default:true"`
	IsMain    bool   `gorm:"not null;default:false"`
	SortOrder int    `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Station) TableName() string {
	return "stations"
}

type StationDAO struct {
	db *gorm.DB
}

func NewStationDAO(db *gorm.DB) *StationDAO {
	return &StationDAO{
		db: db,
	}
}

func (d *StationDAO) Insert(ctx context.Context, station Station) (Station, error) {
	result := d.db.WithContext(ctx).Create(&station)
	if result.Error != nil {
		return Station{}, result.Error
	}

	return station, nil
}

func (d *StationDAO) FindByID(ctx context.Context, id uint) (Station, error) {
	var station Station

	result := d.db.WithContext(ctx).First(&station, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Station{}, ErrStationNotFound
		}

		return Station{}, result.Error
	}

	return station, nil
}

// ListAll returns every station, disabled ones included, ordered for
// display.
func (d *StationDAO) ListAll(ctx context.Context) ([]Station, error) {
	var stations []Station

	result := d.db.WithContext(ctx).
		Order("sort_order ASC, id ASC").
		Find(&stations)
	if result.Error != nil {
		return nil, result.Error
	}

	return stations, nil
}

func (d *StationDAO) Update(ctx context.Context, station Station) (Station, error) {
	result := d.db.WithContext(ctx).
		Model(&Station{ID: station.ID}).
		Updates(map[string]any{
			"name":       station.Name,
			"is_enabled": station.IsEnabled,
			"sort_order": station.SortOrder,
		})
	if result.Error != nil {
		return Station{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Station{}, ErrStationNotFound
	}

	return d.FindByID(ctx, station.ID)
}

// SetMain promotes one station to be the main gate and demotes every
// other, in a single transaction so at most one row has is_main set.
func (d *StationDAO) SetMain(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var station Station
		if err := tx.First(&station, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStationNotFound
			}
			return err
		}

		if err := tx.Model(&Station{}).
			Where("is_main = ?", true).
			Update("is_main", false).Error; err != nil {
			return err
		}

		return tx.Model(&Station{ID: id}).
			Update("is_main", true).Error
	})
}
