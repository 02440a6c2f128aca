package planService

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
	"github.com/xiaomaimax/mes-system-sub006/internal/models"
	uploadlog "github.com/xiaomaimax/mes-system-sub006/internal/services/upload_log"
	"github.com/xiaomaimax/mes-system-sub006/internal/utils"
	"gorm.io/gorm"
)

// UploadPlan imports production plans from an uploaded Excel workbook.
// Expected columns: Plan No, Material Code, Qty, Due Date.
func UploadPlan(c *gin.Context) (interface{}, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, errors.New("incorrect content type, expected multipart/form-data")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("failed to get multipart form: " + err.Error())
	}

	if len(form.File) == 0 {
		return nil, errors.New("no file found in the request")
	}

	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	var uploadFileName string
	var rows []map[string]interface{}

	for fieldName := range form.File {
		data, fileName, err := utils.ReadExcelFile(c, fieldName, ``)
		if err != nil {
			return nil, err
		}

		uploadFileName = fileName
		rows = append(rows, data...)
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

	if logErr := uploadlog.AddUploadLog(sqlxDB, "production-plan", uploadFileName, imported, err == nil, uploadMessage, 0); logErr != nil {
		return nil, logErr
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func importPlanRows(gormDB *gorm.DB, rows []map[string]interface{}) (*ImportResult, error) {
	result := &ImportResult{Errors: []string{}}

	parsed := []PlanRow{}
	materialCodes := []string{}
	materialCodeCheck := map[string]bool{}

	for i, row := range rows {
		planNumber := utils.GetDefaultValue(row, "Plan No", "string").(string)
		materialCode := utils.GetDefaultValue(row, "Material Code", "string").(string)
		quantity := utils.GetDefaultValue(row, "Qty", "float64").(float64)
		dueDate := utils.GetDefaultValue(row, "Due Date", "datetime").(time.Time)

		if planNumber == "" && materialCode == "" {
			continue
		}

		if planNumber == "" || materialCode == "" || quantity <= 0 || dueDate.IsZero() {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: incomplete plan data", i+2))
			continue
		}

		parsed = append(parsed, PlanRow{
			PlanNumber:      planNumber,
			MaterialCode:    materialCode,
			PlannedQuantity: quantity,
			DueDate:         dueDate,
		})

		if !materialCodeCheck[materialCode] {
			materialCodes = append(materialCodes, materialCode)
			materialCodeCheck[materialCode] = true
		}
	}

	if len(parsed) == 0 {
		return result, errors.New("no importable rows found")
	}

	var materials []models.Material
	if err := gormDB.Where("material_code in ? and is_deleted = false", materialCodes).Find(&materials).Error; err != nil {
		return result, err
	}

	materialByCode := make(map[string]int64, len(materials))
	for _, material := range materials {
		materialByCode[material.MaterialCode] = material.MaterialID
	}

	now := time.Now()
	for _, row := range parsed {
		materialID, ok := materialByCode[row.MaterialCode]
		if !ok {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("plan %s: unknown material %s", row.PlanNumber, row.MaterialCode))
			continue
		}

		var count int64
		if err := gormDB.Model(&models.ProductionPlan{}).
			Where("plan_number = ? and is_deleted = false", row.PlanNumber).
			Count(&count).Error; err != nil {
			return result, err
		}
		if count > 0 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("plan %s: duplicate plan number", row.PlanNumber))
			continue
		}

		plan := models.ProductionPlan{
			PlanNumber:      row.PlanNumber,
			MaterialID:      materialID,
			PlannedQuantity: row.PlannedQuantity,
			DueDate:         row.DueDate,
			Status:          models.PlanStatusUnscheduled,
			CreatedDate:     now,
			UpdatedDate:     now,
		}
		if err := gormDB.Create(&plan).Error; err != nil {
			return result, err
		}

		result.Imported++
	}

	return result, nil
}
