package masterService

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
	"github.com/xiaomaimax/mes-system-sub006/internal/models"
	"github.com/xiaomaimax/mes-system-sub006/internal/utils"
	"gorm.io/gorm"
)

func CreateMaterial(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req MaterialRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.MaterialCode == "" || req.MaterialName == "" {
		return nil, fmt.Errorf("%w: material_code and material_name are required", models.ErrValidation)
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := gormDB.Model(&models.Material{}).
		Where("material_code = ? and is_deleted = false", req.MaterialCode).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: material_code %s", models.ErrDuplicate, req.MaterialCode)
	}

	now := time.Now()
	material := models.Material{
		MaterialCode: req.MaterialCode,
		MaterialName: req.MaterialName,
		MaterialType: req.MaterialType,
		MaterialSpec: req.MaterialSpec,
		CreatedDate:  now,
		UpdatedDate:  now,
	}
	if err := gormDB.Create(&material).Error; err != nil {
		return nil, err
	}

	return material, nil
}

func CreateDevice(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req DeviceRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.DeviceCode == "" {
		return nil, fmt.Errorf("%w: device_code is required", models.ErrValidation)
	}
	if req.Status == 0 {
		req.Status = models.ResourceStatusNormal
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := gormDB.Model(&models.Device{}).
		Where("device_code = ? and is_deleted = false", req.DeviceCode).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: device_code %s", models.ErrDuplicate, req.DeviceCode)
	}

	now := time.Now()
	device := models.Device{
		DeviceCode:      req.DeviceCode,
		DeviceName:      req.DeviceName,
		CapacityPerHour: req.CapacityPerHour,
		Status:          req.Status,
		CreatedDate:     now,
		UpdatedDate:     now,
	}
	if err := gormDB.Create(&device).Error; err != nil {
		return nil, err
	}

	return device, nil
}

func CreateMold(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req MoldRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.MoldCode == "" {
		return nil, fmt.Errorf("%w: mold_code is required", models.ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}
	if req.Status == 0 {
		req.Status = models.ResourceStatusNormal
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := gormDB.Model(&models.Mold{}).
		Where("mold_code = ? and is_deleted = false", req.MoldCode).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: mold_code %s", models.ErrDuplicate, req.MoldCode)
	}

	now := time.Now()
	mold := models.Mold{
		MoldCode:    req.MoldCode,
		MoldName:    req.MoldName,
		Status:      req.Status,
		Quantity:    req.Quantity,
		CreatedDate: now,
		UpdatedDate: now,
	}
	if err := gormDB.Create(&mold).Error; err != nil {
		return nil, err
	}

	return mold, nil
}

func GetMaterials(c *gin.Context, jsonPayload string) (interface{}, error) {
	return listMaster(c, `materials`, `material_id`)
}

func GetDevices(c *gin.Context, jsonPayload string) (interface{}, error) {
	return listMaster(c, `devices`, `device_id`)
}

func GetMolds(c *gin.Context, jsonPayload string) (interface{}, error) {
	return listMaster(c, `molds`, `mold_id`)
}

func listMaster(c *gin.Context, table, orderBy string) (interface{}, error) {
	page, pageSize := utils.ParsePageParams(c)

	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	total, err := db.CountQuery(sqlxDB,
		fmt.Sprintf(`select count(*) from %s where is_deleted = false`, table))
	if err != nil {
		return nil, err
	}

	items, err := db.ExecuteQuery(sqlxDB,
		fmt.Sprintf(`select * from %s where is_deleted = false order by %s limit $1 offset $2`, table, orderBy),
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []map[string]interface{}{}
	}

	return models.PageResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func findByID(gormDB *gorm.DB, entity interface{}, column string, id int64) error {
	err := gormDB.Where(fmt.Sprintf("%s = ? and is_deleted = false", column), id).First(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", models.ErrNotFound, column, id)
	}
	return err
}
