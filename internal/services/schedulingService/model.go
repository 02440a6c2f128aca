package schedulingService

import "time"

const (
	ReasonNoRelation        = "no-relation"
	ReasonMaintenance       = "maintenance"
	ReasonExclusivity       = "exclusivity-conflict"
	ReasonExhaustedCapacity = "exhausted-capacity"
)

type DeviceInfo struct {
	DeviceID        int64
	DeviceCode      string
	CapacityPerHour float64
	Status          int64
}

type MoldInfo struct {
	MoldID   int64
	MoldCode string
	Status   int64
	Quantity int64
}

type DeviceCandidate struct {
	Device DeviceInfo
	Weight float64
}

type MoldCandidate struct {
	Mold           MoldInfo
	Weight         float64
	CycleTime      float64
	OutputPerCycle float64
}

// Throughput is produced units per second.
func (m MoldCandidate) Throughput() float64 {
	if m.CycleTime <= 0 {
		return 0
	}
	return m.OutputPerCycle / m.CycleTime
}

type PlanInfo struct {
	PlanID          int64
	PlanNumber      string
	MaterialID      int64
	PlannedQuantity float64
	DueDate         time.Time
	Status          int64
}

type CandidatePair struct {
	Device DeviceCandidate
	Mold   MoldCandidate
}

type Window struct {
	Start time.Time
	End   time.Time
}

type RunRequest struct {
	MaxPlans int `json:"max_plans"`
}

type ScheduledPlan struct {
	PlanNumber     string    `json:"plan_number"`
	DeviceCode     string    `json:"device_code"`
	MoldCode       string    `json:"mold_code"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

type BlockedPlan struct {
	PlanNumber string `json:"plan_number"`
	Reason     string `json:"reason"`
}

type RunSummary struct {
	RunID     string          `json:"run_id"`
	Scheduled []ScheduledPlan `json:"scheduled"`
	Blocked   []BlockedPlan   `json:"blocked"`
}
