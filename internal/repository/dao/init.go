package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Profile{},
		&Attendee{},
		&Station{},
		&AttendeeStationStatus{},
	); err != nil {
		return err
	}

	return installChangeTriggers(db)
}

// installChangeTriggers wires pg_notify on the status and station
// tables so every row change is pushed to LISTEN subscribers on the
// checkpoint_changes channel.
func installChangeTriggers(db *gorm.DB) error {
	statements := []string{
		`CREATE OR REPLACE FUNCTION notify_checkpoint_change() RETURNS trigger AS $$
		DECLARE
			rec RECORD;
			payload JSON;
		BEGIN
			IF TG_OP = 'DELETE' THEN
				rec := OLD;
			ELSE
				rec := NEW;
			END IF;

			IF TG_TABLE_NAME = 'stations' THEN
				payload := json_build_object(
					'table', TG_TABLE_NAME,
					'type', TG_OP,
					'station_id', rec.id);
			ELSE
				payload := json_build_object(
					'table', TG_TABLE_NAME,
					'type', TG_OP,
					'attendee_id', rec.attendee_id,
					'station_id', rec.station_id,
					'checked_at', rec.checked_at,
					'quantity', rec.quantity);
			END IF;

			PERFORM pg_notify('checkpoint_changes', payload::text);
			RETURN rec;
		END;
		$$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS attendee_station_status_notify ON attendee_station_status`,
		`CREATE TRIGGER attendee_station_status_notify
			AFTER INSERT OR UPDATE OR DELETE ON attendee_station_status
			FOR EACH ROW EXECUTE FUNCTION notify_checkpoint_change()`,

		`DROP TRIGGER IF EXISTS stations_notify ON stations`,
		`CREATE TRIGGER stations_notify
			AFTER INSERT OR UPDATE OR DELETE ON stations
			FOR EACH ROW EXECUTE FUNCTION notify_checkpoint_change()`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
