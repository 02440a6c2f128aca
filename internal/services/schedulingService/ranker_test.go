package schedulingService

import "testing"

func TestRankerConsistencyDominatesRawWeight(t *testing.T) {
	tracker := NewConsistencyTracker()
	tracker.Record(1, 2, 5) // material 1 previously ran on device 2 / mold 5

	ranker := NewPreferenceRanker(tracker)
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	prior := CandidatePair{Device: normalDevice(2, "DEV-002", 90), Mold: normalMold(5, "MOLD-005", 2, 90)}
	heavier := CandidatePair{Device: normalDevice(3, "DEV-003", 96), Mold: normalMold(6, "MOLD-006", 2, 96)}

	best := ranker.Best(plan, []CandidatePair{heavier, prior})
	if best.Device.Device.DeviceID != 2 || best.Mold.Mold.MoldID != 5 {
		t.Fatalf("expected prior pair to win, got device %d mold %d",
			best.Device.Device.DeviceID, best.Mold.Mold.MoldID)
	}
}

func TestRankerSameMoldDeviceBonus(t *testing.T) {
	tracker := NewConsistencyTracker()
	tracker.SeedMold(5, 2) // mold 5 last ran on device 2

	ranker := NewPreferenceRanker(tracker)
	plan := PlanInfo{PlanID: 1, MaterialID: 9} // no material history

	mold := normalMold(5, "MOLD-005", 2, 90)
	withPrior := CandidatePair{Device: normalDevice(2, "DEV-002", 90), Mold: mold}
	heavier := CandidatePair{Device: normalDevice(3, "DEV-003", 95), Mold: mold}

	best := ranker.Best(plan, []CandidatePair{heavier, withPrior})
	if best.Device.Device.DeviceID != 2 {
		t.Fatalf("expected mold's prior device to win, got device %d", best.Device.Device.DeviceID)
	}
}

func TestRankerNoHistoryFallsBackToWeights(t *testing.T) {
	ranker := NewPreferenceRanker(NewConsistencyTracker())
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	lighter := CandidatePair{Device: normalDevice(1, "DEV-001", 80), Mold: normalMold(1, "MOLD-001", 2, 80)}
	heavier := CandidatePair{Device: normalDevice(2, "DEV-002", 95), Mold: normalMold(5, "MOLD-005", 2, 95)}

	best := ranker.Best(plan, []CandidatePair{lighter, heavier})
	if best.Device.Device.DeviceID != 2 {
		t.Fatalf("expected heavier pair, got device %d", best.Device.Device.DeviceID)
	}
}

func TestRankerTieBreaksByID(t *testing.T) {
	ranker := NewPreferenceRanker(NewConsistencyTracker())
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	a := CandidatePair{Device: normalDevice(4, "DEV-004", 90), Mold: normalMold(3, "MOLD-003", 2, 90)}
	b := CandidatePair{Device: normalDevice(2, "DEV-002", 90), Mold: normalMold(3, "MOLD-003", 2, 90)}

	best := ranker.Best(plan, []CandidatePair{a, b})
	if best.Device.Device.DeviceID != 2 {
		t.Fatalf("expected lower device ID on tie, got %d", best.Device.Device.DeviceID)
	}
}

func TestRankerTieBreaksByThroughput(t *testing.T) {
	ranker := NewPreferenceRanker(NewConsistencyTracker())
	plan := PlanInfo{PlanID: 1, MaterialID: 1}

	slow := normalMold(3, "MOLD-003", 2, 90)
	slow.CycleTime = 60
	fast := normalMold(4, "MOLD-004", 2, 90)
	fast.CycleTime = 20

	// Throughput feeds the composite score directly, fast mold wins.
	a := CandidatePair{Device: normalDevice(2, "DEV-002", 90), Mold: slow}
	b := CandidatePair{Device: normalDevice(2, "DEV-002", 90), Mold: fast}

	best := ranker.Best(plan, []CandidatePair{a, b})
	if best.Mold.Mold.MoldID != 4 {
		t.Fatalf("expected faster mold, got %d", best.Mold.Mold.MoldID)
	}
}
