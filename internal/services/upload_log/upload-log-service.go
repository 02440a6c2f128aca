package uploadlog

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
)

func AddUploadLog(sqlxDB *sqlx.DB, masterName, filename string, uploadRow int, uploadStatus bool, uploadReason string, uploadBy int) error {
	sql := `INSERT INTO upload_logs (
		master_name,
		type,
		file_name,
		upload_row,
		status,
		percent,
		import_date,
		last_update_date,
		upload_reason,
		action_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := db.ExecuteQuery(sqlxDB, sql,
		masterName,
		"-",
		filename,
		uploadRow,
		uploadStatus,
		100,
		time.Now().Format(time.RFC3339),
		time.Now().Format(time.RFC3339),
		uploadReason,
		uploadBy)

	return err
}
