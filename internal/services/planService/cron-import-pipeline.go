package planService

import (
	"log"
	"os"
	"path/filepath"

	"github.com/xiaomaimax/mes-system-sub006/internal/cronjob"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
	"github.com/xiaomaimax/mes-system-sub006/internal/services/sftpService"
	uploadlog "github.com/xiaomaimax/mes-system-sub006/internal/services/upload_log"
	"github.com/xiaomaimax/mes-system-sub006/internal/utils"
)

func init() {
	cronjob.RegisterJob("plan-import-pipeline", ImportPlanFiles, `0 1 * * *`)
}

// ImportPlanFiles pulls the newest plan workbook from the SFTP drop
// directory and imports it. Runs nightly ahead of the scheduling pass.
func ImportPlanFiles() {
	remotePath := os.Getenv("plan_drop_path")
	localPath := os.Getenv("plan_local_path")
	prefix := os.Getenv("plan_file_prefix")
	if prefix == `` {
		prefix = "PLAN_"
	}

	if remotePath == `` || localPath == `` {
		log.Println("plan import: plan_drop_path or plan_local_path not configured, skipping")
		return
	}

	client, sshConn, err := sftpService.NewClient()
	if err != nil {
		log.Println("plan import: sftp connect failed:", err)
		return
	}
	defer client.Close()
	defer sshConn.Close()

	files, err := client.ReadDir(remotePath)
	if err != nil {
		log.Println("plan import: read remote dir failed:", err)
		return
	}

	latestFile, err := utils.GetLatestFile(files, prefix)
	if err != nil {
		log.Println("plan import:", err)
		return
	}

	dstPath := filepath.Join(localPath, latestFile.Name())

	remoteFile, err := client.Open(filepath.Join(remotePath, latestFile.Name()))
	if err != nil {
		log.Println("plan import: open remote file failed:", err)
		return
	}
	defer remoteFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		log.Println("plan import: create local file failed:", err)
		return
	}

	_, err = remoteFile.WriteTo(dstFile)
	dstFile.Close()
	if err != nil {
		log.Println("plan import: download failed:", err)
		return
	}

	importDownloadedPlan(dstPath, latestFile.Name())
}

func importDownloadedPlan(path, fileName string) {
	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		log.Println("plan import: db connect failed:", err)
		return
	}
	defer sqlxDB.Close()

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		log.Println("plan import: db connect failed:", err)
		return
	}

	rows, err := utils.ReadExcelPath(path, ``)
	if err != nil {
		log.Println("plan import: read workbook failed:", err)
		return
	}

	result, err := importPlanRows(gormDB, rows)

	uploadMessage := "success"
	if err != nil {
		uploadMessage = err.Error()
	}

	imported := 0
	if result != nil {
		imported = result.Imported
	}

	if logErr := uploadlog.AddUploadLog(sqlxDB, "production-plan", fileName, imported, err == nil, uploadMessage, 0); logErr != nil {
		log.Println("plan import: write upload log failed:", logErr)
	}

	if err != nil {
		log.Println("plan import: import failed:", err)
		return
	}

	log.Printf("plan import: %s imported %d rows, skipped %d\n", fileName, result.Imported, result.Skipped)
}
