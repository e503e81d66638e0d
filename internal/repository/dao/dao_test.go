package dao

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("dockertest unavailable, skipping dao tests: %v", err)
		return
	}
	if err = pool.Client.Ping(); err != nil {
		log.Printf("docker daemon unreachable, skipping dao tests: %v", err)
		return
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=checkpoint_test",
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		dsn := fmt.Sprintf(
			"host=localhost port=%v user=postgres password=secret dbname=checkpoint_test sslmode=disable",
			resource.GetPort("5432/tcp"))

		testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return err
		}

		sqlDB, err := testDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	if err != nil {
		log.Fatalf("could not connect to postgres container: %v", err)
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("could not init tables: %v", err)
	}

	code := m.Run()

	_ = pool.Purge(resource)
	os.Exit(code)
}

func cleanTables(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec("TRUNCATE attendee_station_status, attendees, stations, profiles RESTART IDENTITY CASCADE").Error)
}

func TestStatusDAOUpsertClearLoad(t *testing.T) {
	cleanTables(t)
	d := NewStatusDAO(testDB)
	ctx := context.Background()

	checkedAt := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, d.Upsert(ctx, AttendeeStationStatus{
		AttendeeID: 1, StationID: 1, CheckedAt: &checkedAt, Quantity: 2,
	}))

	// Second write on the same key overwrites instead of erroring.
	later := checkedAt.Add(time.Minute)
	require.NoError(t, d.Upsert(ctx, AttendeeStationStatus{
		AttendeeID: 1, StationID: 1, CheckedAt: &later, Quantity: 3,
	}))

	checked, err := d.LoadChecked(ctx)
	require.NoError(t, err)
	require.Len(t, checked, 1)
	assert.Equal(t, 3, checked[0].Quantity)
	assert.True(t, checked[0].CheckedAt.Equal(later))

	// Clear keeps the row but resets it to unchecked.
	require.NoError(t, d.Clear(ctx, 1, 1))

	checked, err = d.LoadChecked(ctx)
	require.NoError(t, err)
	assert.Empty(t, checked)

	var total int64
	require.NoError(t, testDB.Model(&AttendeeStationStatus{}).Count(&total).Error)
	assert.Equal(t, int64(1), total, "cleared row remains for the change trigger")
}

func TestStatusDAOCountsAndResets(t *testing.T) {
	cleanTables(t)
	d := NewStatusDAO(testDB)
	ctx := context.Background()

	checkedAt := time.Now().UTC()
	for _, s := range []AttendeeStationStatus{
		{AttendeeID: 1, StationID: 1, CheckedAt: &checkedAt, Quantity: 2},
		{AttendeeID: 2, StationID: 1, CheckedAt: &checkedAt, Quantity: 1},
		{AttendeeID: 1, StationID: 2, CheckedAt: &checkedAt, Quantity: 2},
	} {
		require.NoError(t, d.Upsert(ctx, s))
	}

	counts, err := d.CountByStation(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	byStation := map[uint]StationCount{}
	for _, c := range counts {
		byStation[c.StationID] = c
	}
	assert.Equal(t, int64(2), byStation[1].Accounts)
	assert.Equal(t, int64(3), byStation[1].People)

	cleared, err := d.ResetStations(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	cleared, err = d.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}

func TestAttendeeDAOListWithPatterns(t *testing.T) {
	cleanTables(t)
	d := NewAttendeeDAO(testDB)
	ctx := context.Background()

	phone := "03463479"
	_, err := d.Insert(ctx, Attendee{
		Name: "Hassan", RecordNumber: "12/345",
		Governorate: "Beirut", District: "Achrafieh", Area: "Sassine",
		Phone: &phone, Quantity: 3, Ages: []int{34, 32, 6},
	})
	require.NoError(t, err)
	_, err = d.Insert(ctx, Attendee{
		Name: "Karim", RecordNumber: "12/400",
		Governorate: "Mount Lebanon", Quantity: 1,
	})
	require.NoError(t, err)

	// A leading-zero-stripped phone still matches through ILIKE.
	attendees, total, err := d.List(ctx, ListFilter{
		Patterns: []string{"3463479"},
		Limit:    50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, attendees, 1)
	assert.Equal(t, "Hassan", attendees[0].Name)
	assert.Equal(t, []int{34, 32, 6}, attendees[0].Ages)

	// Location filters AND on top of patterns.
	_, total, err = d.List(ctx, ListFilter{
		Patterns:    []string{"12"},
		Governorate: "Beirut",
		Limit:       50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	locations, err := d.DistinctLocations(ctx, "governorate")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Beirut", "Mount Lebanon"}, locations)

	// Sort key and direction reach the order clause.
	attendees, _, err = d.List(ctx, ListFilter{SortKey: "name", SortDesc: true, Limit: 50})
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	assert.Equal(t, "Karim", attendees[0].Name)
}

func TestListFilterOrderClause(t *testing.T) {
	assert.Equal(t, "record_number ASC, id ASC", ListFilter{}.orderClause())
	assert.Equal(t, "quantity DESC, id ASC", ListFilter{SortKey: "quantity", SortDesc: true}.orderClause())

	// Unknown keys fall back instead of reaching the SQL string.
	assert.Equal(t, "record_number ASC, id ASC", ListFilter{SortKey: "id; drop table"}.orderClause())
}

func TestStationDAOSetMainIsExclusive(t *testing.T) {
	cleanTables(t)
	d := NewStationDAO(testDB)
	ctx := context.Background()

	first, err := d.Insert(ctx, Station{Name: "Gate", IsMain: true, IsEnabled: true, SortOrder: 1})
	require.NoError(t, err)
	second, err := d.Insert(ctx, Station{Name: "Medical", IsEnabled: true, SortOrder: 2})
	require.NoError(t, err)

	require.NoError(t, d.SetMain(ctx, second.ID))

	stations, err := d.ListAll(ctx)
	require.NoError(t, err)

	var mains int
	for _, s := range stations {
		if s.IsMain {
			mains++
			assert.Equal(t, second.ID, s.ID)
		}
	}
	assert.Equal(t, 1, mains)

	_, err = d.FindByID(ctx, first.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, d.SetMain(ctx, 9999), ErrStationNotFound)
}
