package schedulingService

// ConsistencyTracker remembers which resources a material or mold was
// assigned to before. The ranker uses it as a scoring bias only, an
// infeasible prior resource never blocks alternatives.
type ConsistencyTracker struct {
	materialDevice map[int64]int64
	materialMold   map[int64]int64
	moldDevice     map[int64]int64
}

func NewConsistencyTracker() *ConsistencyTracker {
	return &ConsistencyTracker{
		materialDevice: make(map[int64]int64),
		materialMold:   make(map[int64]int64),
		moldDevice:     make(map[int64]int64),
	}
}

func (ct *ConsistencyTracker) SeedMaterial(materialID int64, deviceID, moldID *int64) {
	if deviceID != nil {
		ct.materialDevice[materialID] = *deviceID
	}
	if moldID != nil {
		ct.materialMold[materialID] = *moldID
	}
}

func (ct *ConsistencyTracker) SeedMold(moldID, deviceID int64) {
	ct.moldDevice[moldID] = deviceID
}

func (ct *ConsistencyTracker) PriorDeviceFor(materialID int64) (int64, bool) {
	deviceID, ok := ct.materialDevice[materialID]
	return deviceID, ok
}

func (ct *ConsistencyTracker) PriorMoldFor(materialID int64) (int64, bool) {
	moldID, ok := ct.materialMold[materialID]
	return moldID, ok
}

func (ct *ConsistencyTracker) PriorDeviceForMold(moldID int64) (int64, bool) {
	deviceID, ok := ct.moldDevice[moldID]
	return deviceID, ok
}

// Record is called by the task emitter after every successful assignment.
func (ct *ConsistencyTracker) Record(materialID, deviceID, moldID int64) {
	ct.materialDevice[materialID] = deviceID
	ct.materialMold[materialID] = moldID
	ct.moldDevice[moldID] = deviceID
}
