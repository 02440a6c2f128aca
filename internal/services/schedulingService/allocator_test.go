package schedulingService

import (
	"context"
	"testing"
	"time"

	"github.com/xiaomaimax/mes-system-sub006/internal/models"
)

type emittedTask struct {
	plan   PlanInfo
	pair   CandidatePair
	window Window
}

type memorySink struct {
	emitted   []emittedTask
	blocked   map[string]string
	conflicts map[int64]int // planID -> times Emit reports a reservation conflict
}

func newMemorySink() *memorySink {
	return &memorySink{blocked: map[string]string{}, conflicts: map[int64]int{}}
}

func (s *memorySink) Emit(ctx context.Context, plan PlanInfo, pair CandidatePair, window Window) error {
	if s.conflicts[plan.PlanID] > 0 {
		s.conflicts[plan.PlanID]--
		return ErrReservationConflict
	}
	s.emitted = append(s.emitted, emittedTask{plan: plan, pair: pair, window: window})
	return nil
}

func (s *memorySink) Block(ctx context.Context, plan PlanInfo, reason string) error {
	s.blocked[plan.PlanNumber] = reason
	return nil
}

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// seedScenario builds the MAT-001 fixture: DEV-002 weight 95 / DEV-001
// weight 80, MOLD-005 weight 95 quantity 1 / MOLD-001 weight 80 quantity 2.
func seedScenario(sink TaskSink) *Allocator {
	catalog := NewRelationCatalog()
	catalog.AddDeviceRelation(1, normalDevice(2, "DEV-002", 95))
	catalog.AddDeviceRelation(1, normalDevice(1, "DEV-001", 80))
	catalog.AddMoldRelation(1, normalMoldQ1(5, "MOLD-005", 95))
	catalog.AddMoldRelation(1, normalMold(1, "MOLD-001", 2, 80))
	catalog.Sort()

	ledger := NewResourceLedger()
	for _, d := range catalog.CandidateDevices(1) {
		ledger.AddDevice(d.Device, nil)
	}
	for _, m := range catalog.CandidateMolds(1) {
		ledger.AddMold(m.Mold, 0)
	}

	tracker := NewConsistencyTracker()

	return &Allocator{
		Catalog:  catalog,
		Ledger:   ledger,
		Tracker:  tracker,
		Resolver: NewConstraintResolver(ledger, nil),
		Ranker:   NewPreferenceRanker(tracker),
		Sink:     sink,
		Now:      testNow,
	}
}

func normalMoldQ1(id int64, code string, weight float64) MoldCandidate {
	return normalMold(id, code, 1, weight)
}

func TestUrgentPlanClaimsPreferredPairFirst(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	plans := []PlanInfo{
		{PlanID: 1, PlanNumber: "PL-DEV-WEIGHT-001", MaterialID: 1, PlannedQuantity: 600, DueDate: testNow.AddDate(0, 0, 5)},
		{PlanID: 2, PlanNumber: "PL-URGENT-001", MaterialID: 1, PlannedQuantity: 600, DueDate: testNow.AddDate(0, 0, 2)},
	}

	summary, err := allocator.Run(context.Background(), plans)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(summary.Scheduled) != 2 || len(summary.Blocked) != 0 {
		t.Fatalf("expected 2 scheduled, got %d scheduled %d blocked", len(summary.Scheduled), len(summary.Blocked))
	}

	first := sink.emitted[0]
	if first.plan.PlanNumber != "PL-URGENT-001" {
		t.Fatalf("earlier due date must schedule first, got %s", first.plan.PlanNumber)
	}
	if first.pair.Device.Device.DeviceCode != "DEV-002" || first.pair.Mold.Mold.MoldCode != "MOLD-005" {
		t.Fatalf("urgent plan expected DEV-002/MOLD-005, got %s/%s",
			first.pair.Device.Device.DeviceCode, first.pair.Mold.Mold.MoldCode)
	}

	// DEV-002 is occupied and MOLD-005 (quantity 1) is claimed and bound,
	// so the later plan is forced onto the next best pair.
	second := sink.emitted[1]
	if second.plan.PlanNumber != "PL-DEV-WEIGHT-001" {
		t.Fatalf("expected PL-DEV-WEIGHT-001 second, got %s", second.plan.PlanNumber)
	}
	if second.pair.Device.Device.DeviceCode != "DEV-001" || second.pair.Mold.Mold.MoldCode != "MOLD-001" {
		t.Fatalf("second plan expected DEV-001/MOLD-001, got %s/%s",
			second.pair.Device.Device.DeviceCode, second.pair.Mold.Mold.MoldCode)
	}
}

func TestNoRelationBlocksPlan(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	plans := []PlanInfo{
		{PlanID: 9, PlanNumber: "PL-ORPHAN-001", MaterialID: 42, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 3)},
	}

	summary, err := allocator.Run(context.Background(), plans)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(summary.Blocked) != 1 || summary.Blocked[0].Reason != ReasonNoRelation {
		t.Fatalf("expected blocked no-relation, got %+v", summary.Blocked)
	}
}

func TestRerunWithUnchangedStateIsIdempotent(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	blocked := PlanInfo{PlanID: 9, PlanNumber: "PL-ORPHAN-001", MaterialID: 42, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 3)}

	if _, err := allocator.Run(context.Background(), []PlanInfo{blocked}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	tasksAfterFirst := len(sink.emitted)

	// Nothing changed: the same blocked backlog produces zero new tasks
	// and the identical blocked set.
	blocked.Status = models.PlanStatusBlocked
	summary, err := allocator.Run(context.Background(), []PlanInfo{blocked})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(sink.emitted) != tasksAfterFirst {
		t.Fatalf("rerun emitted new tasks: %d -> %d", tasksAfterFirst, len(sink.emitted))
	}
	if len(summary.Blocked) != 1 || summary.Blocked[0].Reason != ReasonNoRelation {
		t.Fatalf("blocked set changed on rerun: %+v", summary.Blocked)
	}
}

func TestConsistencyPreferenceOverridesWeight(t *testing.T) {
	sink := newMemorySink()

	catalog := NewRelationCatalog()
	catalog.AddDeviceRelation(1, normalDevice(2, "DEV-002", 90))
	catalog.AddDeviceRelation(1, normalDevice(3, "DEV-003", 96))
	catalog.AddMoldRelation(1, normalMold(5, "MOLD-005", 2, 90))
	catalog.AddMoldRelation(1, normalMold(6, "MOLD-006", 2, 96))
	catalog.Sort()

	ledger := NewResourceLedger()
	for _, d := range catalog.CandidateDevices(1) {
		ledger.AddDevice(d.Device, nil)
	}
	for _, m := range catalog.CandidateMolds(1) {
		ledger.AddMold(m.Mold, 0)
	}

	tracker := NewConsistencyTracker()
	tracker.Record(1, 2, 5) // material 1 last ran on DEV-002 / MOLD-005

	allocator := &Allocator{
		Catalog:  catalog,
		Ledger:   ledger,
		Tracker:  tracker,
		Resolver: NewConstraintResolver(ledger, nil),
		Ranker:   NewPreferenceRanker(tracker),
		Sink:     sink,
		Now:      testNow,
	}

	plans := []PlanInfo{{PlanID: 1, PlanNumber: "PL-X-001", MaterialID: 1, PlannedQuantity: 300, DueDate: testNow.AddDate(0, 0, 4)}}
	if _, err := allocator.Run(context.Background(), plans); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := sink.emitted[0].pair
	if got.Device.Device.DeviceCode != "DEV-002" || got.Mold.Mold.MoldCode != "MOLD-005" {
		t.Fatalf("expected prior pair DEV-002/MOLD-005 despite higher raw weights elsewhere, got %s/%s",
			got.Device.Device.DeviceCode, got.Mold.Mold.MoldCode)
	}
}

func TestBoundMoldNeverMovesToAnotherDevice(t *testing.T) {
	sink := newMemorySink()

	catalog := NewRelationCatalog()
	catalog.AddDeviceRelation(1, normalDevice(4, "DEV-004", 80))
	catalog.AddDeviceRelation(1, normalDevice(5, "DEV-005", 95))
	catalog.AddMoldRelation(1, normalMoldQ1(8, "MOLD-008", 90))
	catalog.Sort()

	ledger := NewResourceLedger()
	busy := Window{Start: testNow, End: testNow.Add(2 * time.Hour)}
	ledger.AddDevice(catalog.CandidateDevices(1)[1].Device, &busy) // DEV-004 running the bound task
	ledger.AddDevice(catalog.CandidateDevices(1)[0].Device, nil)   // DEV-005 idle
	ledger.AddMold(catalog.CandidateMolds(1)[0].Mold, 1)           // MOLD-008 fully occupied

	tracker := NewConsistencyTracker()
	allocator := &Allocator{
		Catalog:  catalog,
		Ledger:   ledger,
		Tracker:  tracker,
		Resolver: NewConstraintResolver(ledger, map[int64]int64{8: 4}),
		Ranker:   NewPreferenceRanker(tracker),
		Sink:     sink,
		Now:      testNow,
	}

	plans := []PlanInfo{{PlanID: 1, PlanNumber: "PL-BIND-001", MaterialID: 1, PlannedQuantity: 300, DueDate: testNow.AddDate(0, 0, 3)}}
	summary, err := allocator.Run(context.Background(), plans)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(sink.emitted) != 0 {
		t.Fatalf("bound mold must not move: emitted to %s", sink.emitted[0].pair.Device.Device.DeviceCode)
	}
	if len(summary.Blocked) != 1 || summary.Blocked[0].Reason != ReasonExclusivity {
		t.Fatalf("expected blocked exclusivity-conflict, got %+v", summary.Blocked)
	}
}

func TestBoundMoldFollowsItsDeviceWhenFree(t *testing.T) {
	sink := newMemorySink()

	catalog := NewRelationCatalog()
	catalog.AddDeviceRelation(1, normalDevice(4, "DEV-004", 80))
	catalog.AddDeviceRelation(1, normalDevice(5, "DEV-005", 95))
	catalog.AddMoldRelation(1, normalMoldQ1(8, "MOLD-008", 90))
	catalog.Sort()

	ledger := NewResourceLedger()
	for _, d := range catalog.CandidateDevices(1) {
		ledger.AddDevice(d.Device, nil)
	}
	ledger.AddMold(catalog.CandidateMolds(1)[0].Mold, 0)

	tracker := NewConsistencyTracker()
	allocator := &Allocator{
		Catalog:  catalog,
		Ledger:   ledger,
		Tracker:  tracker,
		Resolver: NewConstraintResolver(ledger, map[int64]int64{8: 4}),
		Ranker:   NewPreferenceRanker(tracker),
		Sink:     sink,
		Now:      testNow,
	}

	plans := []PlanInfo{{PlanID: 1, PlanNumber: "PL-BIND-002", MaterialID: 1, PlannedQuantity: 300, DueDate: testNow.AddDate(0, 0, 3)}}
	if _, err := allocator.Run(context.Background(), plans); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(sink.emitted) != 1 || sink.emitted[0].pair.Device.Device.DeviceCode != "DEV-004" {
		t.Fatalf("expected bound device DEV-004 despite DEV-005's higher weight, got %+v", sink.emitted)
	}
}

func TestMoldCapacityNeverExceeded(t *testing.T) {
	sink := newMemorySink()

	catalog := NewRelationCatalog()
	catalog.AddDeviceRelation(1, normalDevice(1, "DEV-001", 80))
	catalog.AddDeviceRelation(1, normalDevice(2, "DEV-002", 85))
	catalog.AddDeviceRelation(1, normalDevice(3, "DEV-003", 90))
	catalog.AddMoldRelation(1, normalMold(7, "MOLD-007", 2, 90))
	catalog.Sort()

	ledger := NewResourceLedger()
	for _, d := range catalog.CandidateDevices(1) {
		ledger.AddDevice(d.Device, nil)
	}
	ledger.AddMold(catalog.CandidateMolds(1)[0].Mold, 0)

	tracker := NewConsistencyTracker()
	allocator := &Allocator{
		Catalog:  catalog,
		Ledger:   ledger,
		Tracker:  tracker,
		Resolver: NewConstraintResolver(ledger, nil),
		Ranker:   NewPreferenceRanker(tracker),
		Sink:     sink,
		Now:      testNow,
	}

	plans := []PlanInfo{
		{PlanID: 1, PlanNumber: "PL-CAP-001", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 1)},
		{PlanID: 2, PlanNumber: "PL-CAP-002", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 2)},
		{PlanID: 3, PlanNumber: "PL-CAP-003", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 3)},
	}

	summary, err := allocator.Run(context.Background(), plans)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(sink.emitted) != 2 {
		t.Fatalf("mold quantity 2 allows exactly 2 tasks, got %d", len(sink.emitted))
	}
	if len(summary.Blocked) != 1 || summary.Blocked[0].Reason != ReasonExhaustedCapacity {
		t.Fatalf("expected third plan blocked exhausted-capacity, got %+v", summary.Blocked)
	}

	devicesSeen := map[int64]int{}
	for _, task := range sink.emitted {
		devicesSeen[task.pair.Device.Device.DeviceID]++
	}
	for deviceID, count := range devicesSeen {
		if count > 1 {
			t.Fatalf("device %d received %d overlapping tasks", deviceID, count)
		}
	}
}

func TestReservationConflictRetriesOnceThenBlocks(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	plan := PlanInfo{PlanID: 1, PlanNumber: "PL-RACE-001", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 2)}

	sink.conflicts[1] = 2
	summary, err := allocator.Run(context.Background(), []PlanInfo{plan})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sink.emitted) != 0 {
		t.Fatal("expected no task after two conflicts")
	}
	if len(summary.Blocked) != 1 || summary.Blocked[0].Reason != ReasonExhaustedCapacity {
		t.Fatalf("expected blocked exhausted-capacity after retry, got %+v", summary.Blocked)
	}
}

func TestReservationConflictRecoversOnRetry(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	plan := PlanInfo{PlanID: 1, PlanNumber: "PL-RACE-002", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 2)}

	sink.conflicts[1] = 1
	summary, err := allocator.Run(context.Background(), []PlanInfo{plan})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(summary.Scheduled) != 1 || len(summary.Blocked) != 0 {
		t.Fatalf("expected schedule after single conflict, got %+v", summary)
	}
}

func TestMaxPlansBoundsTheRun(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)
	allocator.MaxPlans = 1

	plans := []PlanInfo{
		{PlanID: 1, PlanNumber: "PL-A", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 1)},
		{PlanID: 2, PlanNumber: "PL-B", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 2)},
	}

	summary, err := allocator.Run(context.Background(), plans)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(summary.Scheduled)+len(summary.Blocked) != 1 {
		t.Fatalf("expected exactly 1 plan processed, got %+v", summary)
	}
}

func TestCancelledRunKeepsPartialProgress(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plans := []PlanInfo{
		{PlanID: 1, PlanNumber: "PL-A", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 1)},
	}

	summary, err := allocator.Run(ctx, plans)
	if err != nil {
		t.Fatalf("cancelled run must not error: %v", err)
	}
	if len(summary.Scheduled) != 0 || len(summary.Blocked) != 0 {
		t.Fatalf("cancelled-before-start run processed plans: %+v", summary)
	}
}

func TestBlockedPlanRecoversWhenMaintenanceEnds(t *testing.T) {
	buildAllocator := func(status int64, sink TaskSink) *Allocator {
		catalog := NewRelationCatalog()
		catalog.AddDeviceRelation(1, DeviceCandidate{
			Device: DeviceInfo{DeviceID: 1, DeviceCode: "DEV-001", Status: status},
			Weight: 80,
		})
		catalog.AddMoldRelation(1, normalMold(1, "MOLD-001", 2, 80))
		catalog.Sort()

		ledger := NewResourceLedger()
		ledger.AddDevice(catalog.CandidateDevices(1)[0].Device, nil)
		ledger.AddMold(catalog.CandidateMolds(1)[0].Mold, 0)

		tracker := NewConsistencyTracker()
		return &Allocator{
			Catalog:  catalog,
			Ledger:   ledger,
			Tracker:  tracker,
			Resolver: NewConstraintResolver(ledger, nil),
			Ranker:   NewPreferenceRanker(tracker),
			Sink:     sink,
			Now:      testNow,
		}
	}

	plan := PlanInfo{PlanID: 1, PlanNumber: "PL-MAINT-001", MaterialID: 1, PlannedQuantity: 100, DueDate: testNow.AddDate(0, 0, 2)}

	sink := newMemorySink()
	summary, err := buildAllocator(models.ResourceStatusMaintenance, sink).Run(context.Background(), []PlanInfo{plan})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(summary.Blocked) != 1 || summary.Blocked[0].Reason != ReasonMaintenance {
		t.Fatalf("expected blocked maintenance, got %+v", summary.Blocked)
	}

	// Next run, device back in service.
	plan.Status = models.PlanStatusBlocked
	sink = newMemorySink()
	summary, err = buildAllocator(models.ResourceStatusNormal, sink).Run(context.Background(), []PlanInfo{plan})
	if err != nil {
		t.Fatalf("recovery run failed: %v", err)
	}
	if len(summary.Scheduled) != 1 {
		t.Fatalf("expected plan scheduled after maintenance ends, got %+v", summary)
	}
}

func TestWindowDurationFromThroughput(t *testing.T) {
	sink := newMemorySink()
	allocator := seedScenario(sink)

	// MOLD-005: cycle 30s, 10 per cycle -> 1/3 unit per second. 600 units
	// take 1800 seconds.
	plans := []PlanInfo{{PlanID: 1, PlanNumber: "PL-WIN-001", MaterialID: 1, PlannedQuantity: 600, DueDate: testNow.AddDate(0, 0, 2)}}
	if _, err := allocator.Run(context.Background(), plans); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	window := sink.emitted[0].window
	if got := window.End.Sub(window.Start); got != 1800*time.Second {
		t.Fatalf("expected 1800s window, got %s", got)
	}
	if !window.Start.Equal(testNow) {
		t.Fatalf("expected start at run time, got %s", window.Start)
	}
}
