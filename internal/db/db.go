package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"checkpoint-backend/internal/config"
	"checkpoint-backend/internal/repository/dao"
)

// OpenPostgres connects, migrates the schema and installs the change
// notification triggers.
func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(conf.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	if err = dao.InitTables(conn); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return conn, nil
}
