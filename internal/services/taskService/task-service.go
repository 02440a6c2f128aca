package taskService

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

type CompleteTaskRequest struct {
	TaskNumber string `json:"task_number"`
}

func GetTasks(c *gin.Context, jsonPayload string) (interface{}, error) {
	page, pageSize := utils.ParsePageParams(c)

	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	total, err := db.CountQuery(sqlxDB, `select count(*) from production_tasks`)
	if err != nil {
		return nil, err
	}

	items, err := db.ExecuteQuery(sqlxDB, `
		select
			t.task_id,
			t.task_number,
			p.plan_number,
			d.device_code,
			m.mold_code,
			t.scheduled_start,
			t.scheduled_end,
			t.status
		from production_tasks t
		left join production_plans p on p.plan_id = t.plan_id
		left join devices d on d.device_id = t.device_id
		left join molds m on m.mold_id = t.mold_id
		order by t.task_id desc
		limit $1 offset $2`,
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

// CompleteTask marks a task done and frees its capacity: device occupancy,
// mold active count, plan status, and the mold binding when no other
// non-terminal task still claims the mold.
func CompleteTask(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req CompleteTaskRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.TaskNumber == "" {
		return nil, fmt.Errorf("%w: task_number is required", models.ErrValidation)
	}

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	var task models.ProductionTask
	err = gormDB.Where("task_number = ?", req.TaskNumber).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, req.TaskNumber)
	}
	if err != nil {
		return nil, err
	}

	if task.Status == models.TaskStatusCompleted {
		return nil, fmt.Errorf("%w: task %s already completed", models.ErrValidation, req.TaskNumber)
	}

	now := time.Now()
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`update production_tasks
			set status = ?, completed_date = ?, updated_date = ?
			where task_id = ? and status != ?`,
			models.TaskStatusCompleted, now, now, task.TaskID, models.TaskStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task %s already completed", models.ErrValidation, req.TaskNumber)
		}

		if err := tx.Exec(`update devices
			set active_task_id = null, updated_date = ?
			where device_id = ? and active_task_id = ?`,
			now, task.DeviceID, task.TaskID).Error; err != nil {
			return err
		}

		if err := tx.Exec(`update molds
			set active_count = active_count - 1, updated_date = ?
			where mold_id = ? and active_count > 0`,
			now, task.MoldID).Error; err != nil {
			return err
		}

		if err := tx.Exec(`update production_plans
			set status = ?, updated_date = ?
			where plan_id = ?`,
			models.PlanStatusCompleted, now, task.PlanID).Error; err != nil {
			return err
		}

		// The binding stays with the device while any successor task still
		// claims the mold.
		return tx.Exec(`update device_mold_bindings
			set is_released = true, released_date = ?
			where mold_id = ? and is_released = false
			and not exists (
				select 1 from production_tasks
				where mold_id = ? and status != ?
			)`,
			now, task.MoldID, task.MoldID, models.TaskStatusCompleted).Error
	})
	if err != nil {
		return nil, err
	}

	return models.BaseResponse{
		Success: true,
		Message: fmt.Sprintf("task %s completed", req.TaskNumber),
	}, nil
}
