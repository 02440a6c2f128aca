package models

import "time"

const (
	PlanStatusUnscheduled = 1
	PlanStatusScheduled   = 2
	PlanStatusInProgress  = 3
	PlanStatusCompleted   = 4
	PlanStatusBlocked     = 5
)

const (
	TaskStatusScheduled  = 1
	TaskStatusInProgress = 2
	TaskStatusCompleted  = 3
)

const (
	ResourceStatusNormal      = 1
	ResourceStatusMaintenance = 2
)

func (Material) TableName() string {
	return "materials"
}

func (Device) TableName() string {
	return "devices"
}

func (Mold) TableName() string {
	return "molds"
}

func (MaterialDeviceRelation) TableName() string {
	return "material_device_relations"
}

func (MaterialMoldRelation) TableName() string {
	return "material_mold_relations"
}

func (ProductionPlan) TableName() string {
	return "production_plans"
}

func (ProductionTask) TableName() string {
	return "production_tasks"
}

func (DeviceMoldBinding) TableName() string {
	return "device_mold_bindings"
}

func (SchedulingHistory) TableName() string {
	return "scheduling_histories"
}

type Material struct {
	MaterialID   int64     `gorm:"column:material_id;primaryKey;autoIncrement"`
	MaterialCode string    `gorm:"column:material_code"`
	MaterialName string    `gorm:"column:material_name"`
	MaterialType string    `gorm:"column:material_type"`
	MaterialSpec string    `gorm:"column:material_spec"`
	IsDeleted    bool      `gorm:"column:is_deleted"`
	CreatedDate  time.Time `gorm:"column:created_date"`
	UpdatedDate  time.Time `gorm:"column:updated_date"`
}

type Device struct {
	DeviceID        int64     `gorm:"column:device_id;primaryKey;autoIncrement"`
	DeviceCode      string    `gorm:"column:device_code"`
	DeviceName      string    `gorm:"column:device_name"`
	CapacityPerHour float64   `gorm:"column:capacity_per_hour"`
	Status          int64     `gorm:"column:status"`
	ActiveTaskID    *int64    `gorm:"column:active_task_id"`
	IsDeleted       bool      `gorm:"column:is_deleted"`
	CreatedDate     time.Time `gorm:"column:created_date"`
	UpdatedDate     time.Time `gorm:"column:updated_date"`
}

type Mold struct {
	MoldID      int64     `gorm:"column:mold_id;primaryKey;autoIncrement"`
	MoldCode    string    `gorm:"column:mold_code"`
	MoldName    string    `gorm:"column:mold_name"`
	Status      int64     `gorm:"column:status"`
	Quantity    int64     `gorm:"column:quantity"`
	ActiveCount int64     `gorm:"column:active_count"`
	IsDeleted   bool      `gorm:"column:is_deleted"`
	CreatedDate time.Time `gorm:"column:created_date"`
	UpdatedDate time.Time `gorm:"column:updated_date"`
}

type MaterialDeviceRelation struct {
	RelationID  int64     `gorm:"column:relation_id;primaryKey;autoIncrement"`
	MaterialID  int64     `gorm:"column:material_id"`
	DeviceID    int64     `gorm:"column:device_id"`
	Weight      float64   `gorm:"column:weight"`
	IsDeleted   bool      `gorm:"column:is_deleted"`
	CreatedDate time.Time `gorm:"column:created_date"`
}

type MaterialMoldRelation struct {
	RelationID     int64     `gorm:"column:relation_id;primaryKey;autoIncrement"`
	MaterialID     int64     `gorm:"column:material_id"`
	MoldID         int64     `gorm:"column:mold_id"`
	Weight         float64   `gorm:"column:weight"`
	CycleTime      float64   `gorm:"column:cycle_time"`
	OutputPerCycle float64   `gorm:"column:output_per_cycle"`
	IsDeleted      bool      `gorm:"column:is_deleted"`
	CreatedDate    time.Time `gorm:"column:created_date"`
}

type ProductionPlan struct {
	PlanID          int64     `gorm:"column:plan_id;primaryKey;autoIncrement"`
	PlanNumber      string    `gorm:"column:plan_number"`
	MaterialID      int64     `gorm:"column:material_id"`
	PlannedQuantity float64   `gorm:"column:planned_quantity"`
	DueDate         time.Time `gorm:"column:due_date"`
	Status          int64     `gorm:"column:status"`
	BlockedReason   *string   `gorm:"column:blocked_reason"`
	IsDeleted       bool      `gorm:"column:is_deleted"`
	CreatedDate     time.Time `gorm:"column:created_date"`
	UpdatedDate     time.Time `gorm:"column:updated_date"`
}

type ProductionTask struct {
	TaskID         int64      `gorm:"column:task_id;primaryKey;autoIncrement"`
	TaskNumber     string     `gorm:"column:task_number"`
	PlanID         int64      `gorm:"column:plan_id"`
	DeviceID       int64      `gorm:"column:device_id"`
	MoldID         int64      `gorm:"column:mold_id"`
	ScheduledStart time.Time  `gorm:"column:scheduled_start"`
	ScheduledEnd   time.Time  `gorm:"column:scheduled_end"`
	Status         int64      `gorm:"column:status"`
	CompletedDate  *time.Time `gorm:"column:completed_date"`
	CreatedDate    time.Time  `gorm:"column:created_date"`
	UpdatedDate    time.Time  `gorm:"column:updated_date"`
}

type DeviceMoldBinding struct {
	BindingID    int64      `gorm:"column:binding_id;primaryKey;autoIncrement"`
	MoldID       int64      `gorm:"column:mold_id"`
	DeviceID     int64      `gorm:"column:device_id"`
	IsReleased   bool       `gorm:"column:is_released"`
	CreatedDate  time.Time  `gorm:"column:created_date"`
	ReleasedDate *time.Time `gorm:"column:released_date"`
}

type SchedulingHistory struct {
	HistoryID    int64     `gorm:"column:history_id;primaryKey;autoIncrement"`
	MaterialID   int64     `gorm:"column:material_id"`
	LastDeviceID *int64    `gorm:"column:last_device_id"`
	LastMoldID   *int64    `gorm:"column:last_mold_id"`
	UpdatedDate  time.Time `gorm:"column:updated_date"`
}
