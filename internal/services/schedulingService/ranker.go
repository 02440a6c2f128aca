package schedulingService

// Scoring factors. The consistency bonuses are deliberately larger than the
// maximum possible weight gap (weights live in [0,100]), so a previously
// used resource beats a marginally heavier alternative. Changeover cost is
// worth more than a few weight points.
const (
	deviceWeightFactor       = 1.0
	moldWeightFactor         = 1.0
	throughputFactor         = 0.5
	materialConsistencyBonus = 150.0
	moldConsistencyBonus     = 100.0
)

// PreferenceRanker folds catalog weights, throughput and the consistency
// bias into one composite score per candidate pair.
type PreferenceRanker struct {
	tracker *ConsistencyTracker
}

func NewPreferenceRanker(tracker *ConsistencyTracker) *PreferenceRanker {
	return &PreferenceRanker{tracker: tracker}
}

func (pr *PreferenceRanker) Score(plan PlanInfo, pair CandidatePair) float64 {
	score := deviceWeightFactor*pair.Device.Weight +
		moldWeightFactor*pair.Mold.Weight +
		throughputFactor*pair.Mold.Throughput()

	if priorDevice, ok := pr.tracker.PriorDeviceFor(plan.MaterialID); ok && priorDevice == pair.Device.Device.DeviceID {
		score += materialConsistencyBonus
	}
	if priorMold, ok := pr.tracker.PriorMoldFor(plan.MaterialID); ok && priorMold == pair.Mold.Mold.MoldID {
		score += materialConsistencyBonus
	}
	if priorDevice, ok := pr.tracker.PriorDeviceForMold(pair.Mold.Mold.MoldID); ok && priorDevice == pair.Device.Device.DeviceID {
		score += moldConsistencyBonus
	}

	return score
}

// Best picks the top-scoring pair. Ties break on raw weight, then mold
// throughput, then device and mold IDs for determinism.
func (pr *PreferenceRanker) Best(plan PlanInfo, pairs []CandidatePair) CandidatePair {
	best := pairs[0]
	bestScore := pr.Score(plan, best)

	for _, pair := range pairs[1:] {
		score := pr.Score(plan, pair)
		if score > bestScore {
			best = pair
			bestScore = score
			continue
		}
		if score < bestScore {
			continue
		}

		if pr.beats(pair, best) {
			best = pair
		}
	}

	return best
}

func (pr *PreferenceRanker) beats(a, b CandidatePair) bool {
	rawA := a.Device.Weight + a.Mold.Weight
	rawB := b.Device.Weight + b.Mold.Weight
	if rawA != rawB {
		return rawA > rawB
	}

	if a.Mold.Throughput() != b.Mold.Throughput() {
		return a.Mold.Throughput() > b.Mold.Throughput()
	}

	if a.Device.Device.DeviceID != b.Device.Device.DeviceID {
		return a.Device.Device.DeviceID < b.Device.Device.DeviceID
	}

	return a.Mold.Mold.MoldID < b.Mold.Mold.MoldID
}
