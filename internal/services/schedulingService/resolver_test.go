package schedulingService

import (
	"testing"
	"time"

	"github.com/xiaomaimax/mes-system-sub006/internal/models"
)

func normalDevice(id int64, code string, weight float64) DeviceCandidate {
	return DeviceCandidate{
		Device: DeviceInfo{DeviceID: id, DeviceCode: code, Status: models.ResourceStatusNormal},
		Weight: weight,
	}
}

func normalMold(id int64, code string, qty int64, weight float64) MoldCandidate {
	return MoldCandidate{
		Mold:           MoldInfo{MoldID: id, MoldCode: code, Status: models.ResourceStatusNormal, Quantity: qty},
		Weight:         weight,
		CycleTime:      30,
		OutputPerCycle: 10,
	}
}

func ledgerFor(devices []DeviceCandidate, molds []MoldCandidate) *ResourceLedger {
	ledger := NewResourceLedger()
	for _, d := range devices {
		ledger.AddDevice(d.Device, nil)
	}
	for _, m := range molds {
		ledger.AddMold(m.Mold, 0)
	}
	return ledger
}

func TestResolverNoRelation(t *testing.T) {
	resolver := NewConstraintResolver(NewResourceLedger(), nil)
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	pairs, reason := resolver.FeasiblePairs(plan, nil, nil, time.Now())
	if len(pairs) != 0 || reason != ReasonNoRelation {
		t.Fatalf("expected no-relation, got %d pairs, reason %q", len(pairs), reason)
	}
}

func TestResolverDropsBoundMoldOnOtherDevices(t *testing.T) {
	devices := []DeviceCandidate{normalDevice(4, "DEV-004", 90), normalDevice(5, "DEV-005", 95)}
	molds := []MoldCandidate{normalMold(8, "MOLD-008", 1, 90)}
	ledger := ledgerFor(devices, molds)

	resolver := NewConstraintResolver(ledger, map[int64]int64{8: 4})
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	pairs, _ := resolver.FeasiblePairs(plan, devices, molds, time.Now())
	if len(pairs) != 1 {
		t.Fatalf("expected only the bound device pair, got %d pairs", len(pairs))
	}
	if pairs[0].Device.Device.DeviceID != 4 {
		t.Fatalf("bound mold must stay on device 4, got device %d", pairs[0].Device.Device.DeviceID)
	}
}

func TestResolverExclusivityReasonWhenBoundDeviceBusy(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	devices := []DeviceCandidate{normalDevice(4, "DEV-004", 90), normalDevice(5, "DEV-005", 95)}
	molds := []MoldCandidate{normalMold(8, "MOLD-008", 1, 90)}

	ledger := NewResourceLedger()
	busy := testWindow(now, 120)
	ledger.AddDevice(devices[0].Device, &busy)
	ledger.AddDevice(devices[1].Device, nil)
	ledger.AddMold(molds[0].Mold, 1)

	resolver := NewConstraintResolver(ledger, map[int64]int64{8: 4})
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	pairs, reason := resolver.FeasiblePairs(plan, devices, molds, now)
	if len(pairs) != 0 {
		t.Fatalf("expected no feasible pairs, got %d", len(pairs))
	}
	if reason != ReasonExclusivity {
		t.Fatalf("expected exclusivity-conflict, got %q", reason)
	}
}

func TestResolverMaintenanceReason(t *testing.T) {
	devices := []DeviceCandidate{{
		Device: DeviceInfo{DeviceID: 1, Status: models.ResourceStatusMaintenance},
		Weight: 90,
	}}
	molds := []MoldCandidate{normalMold(5, "MOLD-005", 2, 90)}
	ledger := ledgerFor(devices, molds)

	resolver := NewConstraintResolver(ledger, nil)
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	pairs, reason := resolver.FeasiblePairs(plan, devices, molds, time.Now())
	if len(pairs) != 0 || reason != ReasonMaintenance {
		t.Fatalf("expected maintenance, got %d pairs, reason %q", len(pairs), reason)
	}
}

func TestResolverExhaustedCapacityReason(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	devices := []DeviceCandidate{normalDevice(1, "DEV-001", 90)}
	molds := []MoldCandidate{normalMold(5, "MOLD-005", 2, 90)}

	ledger := NewResourceLedger()
	busy := testWindow(now, 120)
	ledger.AddDevice(devices[0].Device, &busy)
	ledger.AddMold(molds[0].Mold, 0)

	resolver := NewConstraintResolver(ledger, nil)
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	pairs, reason := resolver.FeasiblePairs(plan, devices, molds, now)
	if len(pairs) != 0 || reason != ReasonExhaustedCapacity {
		t.Fatalf("expected exhausted-capacity, got %d pairs, reason %q", len(pairs), reason)
	}
}

func TestResolverSkipsMoldWithInvalidCycleData(t *testing.T) {
	devices := []DeviceCandidate{normalDevice(1, "DEV-001", 90)}
	molds := []MoldCandidate{{
		Mold:           MoldInfo{MoldID: 5, Status: models.ResourceStatusNormal, Quantity: 2},
		Weight:         90,
		CycleTime:      0,
		OutputPerCycle: 10,
	}}
	ledger := ledgerFor(devices, molds)

	resolver := NewConstraintResolver(ledger, nil)
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	pairs, reason := resolver.FeasiblePairs(plan, devices, molds, time.Now())
	if len(pairs) != 0 || reason != ReasonNoRelation {
		t.Fatalf("expected invalid mold skipped with no-relation, got %d pairs, reason %q", len(pairs), reason)
	}
}
