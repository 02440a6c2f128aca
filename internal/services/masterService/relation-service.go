package masterService

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
	"github.com/xiaomaimax/mes-system-sub006/internal/models"
)

func CreateMaterialDeviceRelation(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req DeviceRelationRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.Weight < 0 || req.Weight > 100 {
		return nil, fmt.Errorf("%w: weight must be within [0,100]", models.ErrValidation)
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	if err := findByID(gormDB, &models.Material{}, "material_id", req.MaterialID); err != nil {
		return nil, err
	}
	if err := findByID(gormDB, &models.Device{}, "device_id", req.DeviceID); err != nil {
		return nil, err
	}

	var count int64
	if err := gormDB.Model(&models.MaterialDeviceRelation{}).
		Where("material_id = ? and device_id = ? and is_deleted = false", req.MaterialID, req.DeviceID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: relation material %d device %d", models.ErrDuplicate, req.MaterialID, req.DeviceID)
	}

	relation := models.MaterialDeviceRelation{
		MaterialID:  req.MaterialID,
		DeviceID:    req.DeviceID,
		Weight:      req.Weight,
		CreatedDate: time.Now(),
	}
	if err := gormDB.Create(&relation).Error; err != nil {
		return nil, err
	}

	return relation, nil
}

func CreateMaterialMoldRelation(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req MoldRelationRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.Weight < 0 || req.Weight > 100 {
		return nil, fmt.Errorf("%w: weight must be within [0,100]", models.ErrValidation)
	}
	if req.CycleTime <= 0 || req.OutputPerCycle <= 0 {
		return nil, fmt.Errorf("%w: cycle_time and output_per_cycle must be positive", models.ErrValidation)
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	if err := findByID(gormDB, &models.Material{}, "material_id", req.MaterialID); err != nil {
		return nil, err
	}
	if err := findByID(gormDB, &models.Mold{}, "mold_id", req.MoldID); err != nil {
		return nil, err
	}

	var count int64
	if err := gormDB.Model(&models.MaterialMoldRelation{}).
		Where("material_id = ? and mold_id = ? and is_deleted = false", req.MaterialID, req.MoldID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: relation material %d mold %d", models.ErrDuplicate, req.MaterialID, req.MoldID)
	}

	relation := models.MaterialMoldRelation{
		MaterialID:     req.MaterialID,
		MoldID:         req.MoldID,
		Weight:         req.Weight,
		CycleTime:      req.CycleTime,
		OutputPerCycle: req.OutputPerCycle,
		CreatedDate:    time.Now(),
	}
	if err := gormDB.Create(&relation).Error; err != nil {
		return nil, err
	}

	return relation, nil
}
