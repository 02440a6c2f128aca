package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectGORM(databaseName string) (*gorm.DB, error) {

	dabaseUrl := os.Getenv(fmt.Sprintf("database_sqlx_url_%s", databaseName))
	if dabaseUrl == `` {
		return nil, fmt.Errorf("not found database_sqlx_url")
	}

	db, err := gorm.Open(postgres.Open(dabaseUrl), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return db, nil
}
