package schedulingService

import (
	"log"
	"time"

	"github.com/xiaomaimax/mes-system-sub006/internal/models"
)

// ConstraintResolver enforces the hard rules: mold/device exclusivity,
// capacity ceilings and maintenance status. Weights never enter here.
type ConstraintResolver struct {
	ledger   *ResourceLedger
	bindings map[int64]int64 // live binding: mold -> device
}

func NewConstraintResolver(ledger *ResourceLedger, bindings map[int64]int64) *ConstraintResolver {
	if bindings == nil {
		bindings = make(map[int64]int64)
	}
	return &ConstraintResolver{ledger: ledger, bindings: bindings}
}

func (cr *ConstraintResolver) LiveBinding(moldID int64) (int64, bool) {
	deviceID, ok := cr.bindings[moldID]
	return deviceID, ok
}

// NoteBinding records an in-run binding so later plans of the same run see
// the exclusivity immediately.
func (cr *ConstraintResolver) NoteBinding(moldID, deviceID int64) {
	cr.bindings[moldID] = deviceID
}

// FeasiblePairs filters the device x mold cross-product down to pairs that
// pass every hard rule. When nothing survives it returns the dominant
// infeasibility reason for the run summary.
func (cr *ConstraintResolver) FeasiblePairs(plan PlanInfo, devices []DeviceCandidate, molds []MoldCandidate, now time.Time) ([]CandidatePair, string) {
	if len(devices) == 0 || len(molds) == 0 {
		return nil, ReasonNoRelation
	}

	probe := Window{Start: now, End: now.Add(time.Second)}

	relatedDevices := make(map[int64]bool, len(devices))
	for _, d := range devices {
		relatedDevices[d.Device.DeviceID] = true
	}

	var pairs []CandidatePair
	exclusivityDrops := 0
	maintenanceDrops := 0
	capacityDrops := 0

	for _, mold := range molds {
		if mold.Throughput() <= 0 {
			log.Printf("scheduling: material %d mold %d has invalid cycle data, skipping\n", plan.MaterialID, mold.Mold.MoldID)
			continue
		}

		boundDevice, bound := cr.bindings[mold.Mold.MoldID]
		if bound && !relatedDevices[boundDevice] {
			log.Printf("scheduling: mold %d bound to device %d which no longer relates to material %d\n", mold.Mold.MoldID, boundDevice, plan.MaterialID)
		}

		for _, device := range devices {
			if bound && boundDevice != device.Device.DeviceID {
				exclusivityDrops++
				continue
			}

			if device.Device.Status != models.ResourceStatusNormal || mold.Mold.Status != models.ResourceStatusNormal {
				maintenanceDrops++
				continue
			}

			if !cr.ledger.IsDeviceFree(device.Device.DeviceID, probe) {
				capacityDrops++
				continue
			}
			if cr.ledger.ActiveLoad(mold.Mold.MoldID) >= mold.Mold.Quantity {
				capacityDrops++
				continue
			}

			pairs = append(pairs, CandidatePair{Device: device, Mold: mold})
		}
	}

	if len(pairs) > 0 {
		return pairs, ""
	}

	switch {
	case exclusivityDrops > 0:
		return nil, ReasonExclusivity
	case maintenanceDrops > 0:
		return nil, ReasonMaintenance
	case capacityDrops > 0:
		return nil, ReasonExhaustedCapacity
	default:
		return nil, ReasonNoRelation
	}
}
