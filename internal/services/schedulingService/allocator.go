package schedulingService

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrReservationConflict signals that a concurrent run claimed the resource
// between feasibility check and commit. The allocator retries once, then
// demotes the plan to blocked.
var ErrReservationConflict = errors.New("reservation conflict")

// TaskSink materializes allocation decisions. The production sink writes
// tasks, plan transitions and bindings in one transaction.
type TaskSink interface {
	Emit(ctx context.Context, plan PlanInfo, pair CandidatePair, window Window) error
	Block(ctx context.Context, plan PlanInfo, reason string) error
}

// Allocator runs the scheduling loop: backlog ordered by due-date urgency,
// best feasible pair per plan, capacity reserved in the ledger, task
// emitted through the sink. One run is a pure function of the snapshot it
// was built from plus its own in-run mutations.
type Allocator struct {
	Catalog  *RelationCatalog
	Ledger   *ResourceLedger
	Tracker  *ConsistencyTracker
	Resolver *ConstraintResolver
	Ranker   *PreferenceRanker
	Sink     TaskSink
	Now      time.Time
	MaxPlans int
}

func (a *Allocator) Run(ctx context.Context, plans []PlanInfo) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Scheduled: []ScheduledPlan{},
		Blocked:   []BlockedPlan{},
	}

	// Earliest due date claims resources first. Plan ID keeps the order
	// deterministic when due dates collide.
	sort.SliceStable(plans, func(i, j int) bool {
		if !plans[i].DueDate.Equal(plans[j].DueDate) {
			return plans[i].DueDate.Before(plans[j].DueDate)
		}
		return plans[i].PlanID < plans[j].PlanID
	})

	if a.MaxPlans > 0 && len(plans) > a.MaxPlans {
		plans = plans[:a.MaxPlans]
	}

	for _, plan := range plans {
		// A cancelled run keeps everything already committed. Unprocessed
		// plans stay behind for the next invocation.
		if ctx.Err() != nil {
			break
		}

		if err := a.schedulePlan(ctx, plan, summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (a *Allocator) schedulePlan(ctx context.Context, plan PlanInfo, summary *RunSummary) error {
	devices := a.Catalog.CandidateDevices(plan.MaterialID)
	molds := a.Catalog.CandidateMolds(plan.MaterialID)

	pairs, reason := a.Resolver.FeasiblePairs(plan, devices, molds, a.Now)
	if len(pairs) == 0 {
		return a.block(ctx, plan, reason, summary)
	}

	retried := false
	for {
		best := a.Ranker.Best(plan, pairs)
		window := a.windowFor(plan, best)

		err := a.Ledger.Reserve(best.Device.Device.DeviceID, best.Mold.Mold.MoldID, window)
		if err == nil {
			err = a.Sink.Emit(ctx, plan, best, window)
			if err == nil {
				a.commit(plan, best, window, summary)
				return nil
			}
			a.Ledger.Release(best.Device.Device.DeviceID, best.Mold.Mold.MoldID)
			if !errors.Is(err, ErrReservationConflict) {
				// Storage failure, fatal to the run.
				return err
			}
		}

		if retried {
			return a.block(ctx, plan, ReasonExhaustedCapacity, summary)
		}
		retried = true

		pairs, reason = a.Resolver.FeasiblePairs(plan, devices, molds, a.Now)
		if len(pairs) == 0 {
			return a.block(ctx, plan, reason, summary)
		}
	}
}

func (a *Allocator) commit(plan PlanInfo, pair CandidatePair, window Window, summary *RunSummary) {
	a.Tracker.Record(plan.MaterialID, pair.Device.Device.DeviceID, pair.Mold.Mold.MoldID)

	if pair.Mold.Mold.Quantity == 1 {
		if _, bound := a.Resolver.LiveBinding(pair.Mold.Mold.MoldID); !bound {
			a.Resolver.NoteBinding(pair.Mold.Mold.MoldID, pair.Device.Device.DeviceID)
		}
	}

	summary.Scheduled = append(summary.Scheduled, ScheduledPlan{
		PlanNumber:     plan.PlanNumber,
		DeviceCode:     pair.Device.Device.DeviceCode,
		MoldCode:       pair.Mold.Mold.MoldCode,
		ScheduledStart: window.Start,
		ScheduledEnd:   window.End,
	})
}

func (a *Allocator) block(ctx context.Context, plan PlanInfo, reason string, summary *RunSummary) error {
	if err := a.Sink.Block(ctx, plan, reason); err != nil {
		return err
	}

	summary.Blocked = append(summary.Blocked, BlockedPlan{
		PlanNumber: plan.PlanNumber,
		Reason:     reason,
	})
	return nil
}

func (a *Allocator) windowFor(plan PlanInfo, pair CandidatePair) Window {
	seconds := math.Ceil(plan.PlannedQuantity / pair.Mold.Throughput())
	return Window{
		Start: a.Now,
		End:   a.Now.Add(time.Duration(seconds) * time.Second),
	}
}
