package schedulingService

import "sort"

// RelationCatalog indexes the material/device and material/mold relation
// tables per run, so candidate lookups never rescan rows.
type RelationCatalog struct {
	deviceCandidates map[int64][]DeviceCandidate
	moldCandidates   map[int64][]MoldCandidate
}

func NewRelationCatalog() *RelationCatalog {
	return &RelationCatalog{
		deviceCandidates: make(map[int64][]DeviceCandidate),
		moldCandidates:   make(map[int64][]MoldCandidate),
	}
}

func (rc *RelationCatalog) AddDeviceRelation(materialID int64, candidate DeviceCandidate) {
	rc.deviceCandidates[materialID] = append(rc.deviceCandidates[materialID], candidate)
}

func (rc *RelationCatalog) AddMoldRelation(materialID int64, candidate MoldCandidate) {
	rc.moldCandidates[materialID] = append(rc.moldCandidates[materialID], candidate)
}

// Sort orders every candidate list by weight descending, ties by ID ascending.
func (rc *RelationCatalog) Sort() {
	for _, candidates := range rc.deviceCandidates {
		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].Weight != candidates[b].Weight {
				return candidates[a].Weight > candidates[b].Weight
			}
			return candidates[a].Device.DeviceID < candidates[b].Device.DeviceID
		})
	}

	for _, candidates := range rc.moldCandidates {
		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].Weight != candidates[b].Weight {
				return candidates[a].Weight > candidates[b].Weight
			}
			return candidates[a].Mold.MoldID < candidates[b].Mold.MoldID
		})
	}
}

// CandidateDevices returns an empty slice when the material has no device
// relation. That is not an error, the caller reports it as infeasible.
func (rc *RelationCatalog) CandidateDevices(materialID int64) []DeviceCandidate {
	return rc.deviceCandidates[materialID]
}

func (rc *RelationCatalog) CandidateMolds(materialID int64) []MoldCandidate {
	return rc.moldCandidates[materialID]
}
