package masterService

type MaterialRequest struct {
	MaterialCode string `json:"material_code"`
	MaterialName string `json:"material_name"`
	MaterialType string `json:"material_type"`
	MaterialSpec string `json:"material_spec"`
}

type DeviceRequest struct {
	DeviceCode      string  `json:"device_code"`
	DeviceName      string  `json:"device_name"`
	CapacityPerHour float64 `json:"capacity_per_hour"`
	Status          int64   `json:"status"`
}

type MoldRequest struct {
	MoldCode string `json:"mold_code"`
	MoldName string `json:"mold_name"`
	Status   int64  `json:"status"`
	Quantity int64  `json:"quantity"`
}

type DeviceRelationRequest struct {
	MaterialID int64   `json:"material_id"`
	DeviceID   int64   `json:"device_id"`
	Weight     float64 `json:"weight"`
}

type MoldRelationRequest struct {
	MaterialID     int64   `json:"material_id"`
	MoldID         int64   `json:"mold_id"`
	Weight         float64 `json:"weight"`
	CycleTime      float64 `json:"cycle_time"`
	OutputPerCycle float64 `json:"output_per_cycle"`
}
