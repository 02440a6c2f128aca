package schedulingService

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xiaomaimax/mes-system-sub006/internal/models"
	"gorm.io/gorm"
)

// TaskEmitter is the production TaskSink. One transaction per assignment:
// guarded updates on the persisted capacity counters are the compare-and-set
// that keeps invariants intact when two runs overlap. A guard that affects
// zero rows means another run won the resource, the whole transaction rolls
// back and the allocator retries.
type TaskEmitter struct {
	gormDB *gorm.DB
}

func NewTaskEmitter(gormDB *gorm.DB) *TaskEmitter {
	return &TaskEmitter{gormDB: gormDB}
}

func (te *TaskEmitter) Emit(ctx context.Context, plan PlanInfo, pair CandidatePair, window Window) error {
	now := time.Now()

	return te.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task := models.ProductionTask{
			TaskNumber:     uuid.NewString(),
			PlanID:         plan.PlanID,
			DeviceID:       pair.Device.Device.DeviceID,
			MoldID:         pair.Mold.Mold.MoldID,
			ScheduledStart: window.Start,
			ScheduledEnd:   window.End,
			Status:         models.TaskStatusScheduled,
			CreatedDate:    now,
			UpdatedDate:    now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		res := tx.Exec(`update devices
			set active_task_id = ?, updated_date = ?
			where device_id = ? and active_task_id is null and status = ?`,
			task.TaskID, now, pair.Device.Device.DeviceID, models.ResourceStatusNormal)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReservationConflict
		}

		res = tx.Exec(`update molds
			set active_count = active_count + 1, updated_date = ?
			where mold_id = ? and active_count < quantity and status = ?`,
			now, pair.Mold.Mold.MoldID, models.ResourceStatusNormal)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReservationConflict
		}

		res = tx.Exec(`update production_plans
			set status = ?, blocked_reason = null, updated_date = ?
			where plan_id = ? and status in (?, ?)`,
			models.PlanStatusScheduled, now, plan.PlanID,
			models.PlanStatusUnscheduled, models.PlanStatusBlocked)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReservationConflict
		}

		if err := tx.Exec(`insert into scheduling_histories (material_id, last_device_id, last_mold_id, updated_date)
			values (?, ?, ?, ?)
			on conflict (material_id) do update set
				last_device_id = excluded.last_device_id,
				last_mold_id = excluded.last_mold_id,
				updated_date = excluded.updated_date`,
			plan.MaterialID, pair.Device.Device.DeviceID, pair.Mold.Mold.MoldID, now).Error; err != nil {
			return err
		}

		if pair.Mold.Mold.Quantity == 1 {
			if err := tx.Exec(`insert into device_mold_bindings (mold_id, device_id, is_released, created_date)
				select ?, ?, false, ?
				where not exists (
					select 1 from device_mold_bindings where mold_id = ? and is_released = false
				)`,
				pair.Mold.Mold.MoldID, pair.Device.Device.DeviceID, now, pair.Mold.Mold.MoldID).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (te *TaskEmitter) Block(ctx context.Context, plan PlanInfo, reason string) error {
	return te.gormDB.WithContext(ctx).Exec(`update production_plans
		set status = ?, blocked_reason = ?, updated_date = ?
		where plan_id = ? and status in (?, ?)`,
		models.PlanStatusBlocked, reason, time.Now(), plan.PlanID,
		models.PlanStatusUnscheduled, models.PlanStatusBlocked).Error
}
