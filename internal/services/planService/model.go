package planService

import "time"

type PlanRequest struct {
	PlanNumber      string  `json:"plan_number"`
	MaterialID      int64   `json:"material_id"`
	PlannedQuantity float64 `json:"planned_quantity"`
	DueDate         string  `json:"due_date"`
}

type PlanRow struct {
	PlanNumber      string
	MaterialCode    string
	PlannedQuantity float64
	DueDate         time.Time
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}
