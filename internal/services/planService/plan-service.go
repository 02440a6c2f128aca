package planService

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
	"github.com/xiaomaimax/mes-system-sub006/internal/models"
	"github.com/xiaomaimax/mes-system-sub006/internal/utils"
	"gorm.io/gorm"
)

func CreatePlan(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req PlanRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.PlanNumber == "" {
		return nil, fmt.Errorf("%w: plan_number is required", models.ErrValidation)
	}
	if req.PlannedQuantity <= 0 {
		return nil, fmt.Errorf("%w: planned_quantity must be positive", models.ErrValidation)
	}

	dueDate, err := utils.ParseDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	var material models.Material
	err = gormDB.Where("material_id = ? and is_deleted = false", req.MaterialID).First(&material).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: material %d", models.ErrNotFound, req.MaterialID)
	}
	if err != nil {
		return nil, err
	}

	var count int64
	if err := gormDB.Model(&models.ProductionPlan{}).
		Where("plan_number = ? and is_deleted = false", req.PlanNumber).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: plan_number %s", models.ErrDuplicate, req.PlanNumber)
	}

	now := time.Now()
	plan := models.ProductionPlan{
		PlanNumber:      req.PlanNumber,
		MaterialID:      req.MaterialID,
		PlannedQuantity: req.PlannedQuantity,
		DueDate:         dueDate,
		Status:          models.PlanStatusUnscheduled,
		CreatedDate:     now,
		UpdatedDate:     now,
	}
	if err := gormDB.Create(&plan).Error; err != nil {
		return nil, err
	}

	return plan, nil
}

func GetPlans(c *gin.Context, jsonPayload string) (interface{}, error) {
	page, pageSize := utils.ParsePageParams(c)

	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	filter := `where p.is_deleted = false`
	args := []interface{}{}
	if statusParam := c.Query("status"); statusParam != "" {
		status, err := strconv.Atoi(statusParam)
		if err != nil {
			return nil, fmt.Errorf("%w: status must be numeric", models.ErrValidation)
		}
		filter += ` and p.status = $1`
		args = append(args, status)
	}

	total, err := db.CountQuery(sqlxDB,
		`select count(*) from production_plans p `+filter, args...)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		select
			p.plan_id,
			p.plan_number,
			mat.material_code,
			p.planned_quantity,
			p.due_date,
			p.status,
			p.blocked_reason
		from production_plans p
		left join materials mat on mat.material_id = p.material_id
		%s
		order by p.due_date asc, p.plan_id asc
		limit $%d offset $%d`, filter, len(args)+1, len(args)+2)

	items, err := db.ExecuteQuery(sqlxDB, query, append(args, pageSize, (page-1)*pageSize)...)
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
