package schedulingService

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
	"github.com/xiaomaimax/mes-system-sub006/internal/models"
)

type runSnapshot struct {
	plans    []PlanInfo
	catalog  *RelationCatalog
	ledger   *ResourceLedger
	tracker  *ConsistencyTracker
	bindings map[int64]int64
}

// loadRunSnapshot reads everything one allocator pass needs in a single
// burst. The run then works off this snapshot plus its own mutations.
func loadRunSnapshot(sqlxDB *sqlx.DB) (*runSnapshot, error) {
	snapshot := &runSnapshot{
		catalog:  NewRelationCatalog(),
		ledger:   NewResourceLedger(),
		tracker:  NewConsistencyTracker(),
		bindings: make(map[int64]int64),
	}

	if err := loadBacklog(sqlxDB, snapshot); err != nil {
		return nil, err
	}
	if err := loadCatalog(sqlxDB, snapshot); err != nil {
		return nil, err
	}
	if err := loadLedger(sqlxDB, snapshot); err != nil {
		return nil, err
	}
	if err := loadHistory(sqlxDB, snapshot); err != nil {
		return nil, err
	}

	snapshot.catalog.Sort()

	return snapshot, nil
}

func loadBacklog(sqlxDB *sqlx.DB, snapshot *runSnapshot) error {
	rows, err := db.ExecuteQuery(sqlxDB, `
		select plan_id, plan_number, material_id, planned_quantity, due_date, status
		from production_plans
		where is_deleted = false and status in ($1, $2)
		order by due_date asc, plan_id asc`,
		models.PlanStatusUnscheduled, models.PlanStatusBlocked)
	if err != nil {
		return err
	}

	for _, row := range rows {
		snapshot.plans = append(snapshot.plans, PlanInfo{
			PlanID:          row["plan_id"].(int64),
			PlanNumber:      row["plan_number"].(string),
			MaterialID:      row["material_id"].(int64),
			PlannedQuantity: toFloat(row["planned_quantity"]),
			DueDate:         row["due_date"].(time.Time),
			Status:          row["status"].(int64),
		})
	}

	return nil
}

func loadCatalog(sqlxDB *sqlx.DB, snapshot *runSnapshot) error {
	deviceRows, err := db.ExecuteQuery(sqlxDB, `
		select r.material_id, r.weight, d.device_id, d.device_code, d.capacity_per_hour, d.status
		from material_device_relations r
		join devices d on d.device_id = r.device_id
		where r.is_deleted = false and d.is_deleted = false`)
	if err != nil {
		return err
	}

	for _, row := range deviceRows {
		snapshot.catalog.AddDeviceRelation(row["material_id"].(int64), DeviceCandidate{
			Device: DeviceInfo{
				DeviceID:        row["device_id"].(int64),
				DeviceCode:      row["device_code"].(string),
				CapacityPerHour: toFloat(row["capacity_per_hour"]),
				Status:          row["status"].(int64),
			},
			Weight: toFloat(row["weight"]),
		})
	}

	moldRows, err := db.ExecuteQuery(sqlxDB, `
		select r.material_id, r.weight, r.cycle_time, r.output_per_cycle,
			m.mold_id, m.mold_code, m.status, m.quantity
		from material_mold_relations r
		join molds m on m.mold_id = r.mold_id
		where r.is_deleted = false and m.is_deleted = false`)
	if err != nil {
		return err
	}

	for _, row := range moldRows {
		snapshot.catalog.AddMoldRelation(row["material_id"].(int64), MoldCandidate{
			Mold: MoldInfo{
				MoldID:   row["mold_id"].(int64),
				MoldCode: row["mold_code"].(string),
				Status:   row["status"].(int64),
				Quantity: row["quantity"].(int64),
			},
			Weight:         toFloat(row["weight"]),
			CycleTime:      toFloat(row["cycle_time"]),
			OutputPerCycle: toFloat(row["output_per_cycle"]),
		})
	}

	return nil
}

func loadLedger(sqlxDB *sqlx.DB, snapshot *runSnapshot) error {
	deviceRows, err := db.ExecuteQuery(sqlxDB, `
		select d.device_id, d.device_code, d.capacity_per_hour, d.status,
			t.scheduled_start, t.scheduled_end
		from devices d
		left join production_tasks t on t.task_id = d.active_task_id
		where d.is_deleted = false`)
	if err != nil {
		return err
	}

	for _, row := range deviceRows {
		info := DeviceInfo{
			DeviceID:        row["device_id"].(int64),
			DeviceCode:      row["device_code"].(string),
			CapacityPerHour: toFloat(row["capacity_per_hour"]),
			Status:          row["status"].(int64),
		}

		var occupied *Window
		if start, ok := row["scheduled_start"].(time.Time); ok {
			if end, ok := row["scheduled_end"].(time.Time); ok {
				occupied = &Window{Start: start, End: end}
			}
		}

		snapshot.ledger.AddDevice(info, occupied)
	}

	moldRows, err := db.ExecuteQuery(sqlxDB, `
		select mold_id, mold_code, status, quantity, active_count
		from molds
		where is_deleted = false`)
	if err != nil {
		return err
	}

	for _, row := range moldRows {
		snapshot.ledger.AddMold(MoldInfo{
			MoldID:   row["mold_id"].(int64),
			MoldCode: row["mold_code"].(string),
			Status:   row["status"].(int64),
			Quantity: row["quantity"].(int64),
		}, row["active_count"].(int64))
	}

	bindingRows, err := db.ExecuteQuery(sqlxDB, `
		select mold_id, device_id
		from device_mold_bindings
		where is_released = false`)
	if err != nil {
		return err
	}

	for _, row := range bindingRows {
		snapshot.bindings[row["mold_id"].(int64)] = row["device_id"].(int64)
	}

	return nil
}

func loadHistory(sqlxDB *sqlx.DB, snapshot *runSnapshot) error {
	historyRows, err := db.ExecuteQuery(sqlxDB, `
		select material_id, last_device_id, last_mold_id
		from scheduling_histories`)
	if err != nil {
		return err
	}

	for _, row := range historyRows {
		snapshot.tracker.SeedMaterial(row["material_id"].(int64),
			toInt64OrNil(row["last_device_id"]),
			toInt64OrNil(row["last_mold_id"]))
	}

	// Latest task per mold gives the same-mold consistency prior.
	moldRows, err := db.ExecuteQuery(sqlxDB, `
		select distinct on (mold_id) mold_id, device_id
		from production_tasks
		order by mold_id, task_id desc`)
	if err != nil {
		return err
	}

	for _, row := range moldRows {
		snapshot.tracker.SeedMold(row["mold_id"].(int64), row["device_id"].(int64))
	}

	return nil
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	default:
		return 0
	}
}

func toInt64OrNil(v interface{}) *int64 {
	switch val := v.(type) {
	case int64:
		return &val
	case float64:
		i := int64(val)
		return &i
	default:
		return nil
	}
}
