package schedulingService

import (
	"errors"
	"sync"

	"github.com/xiaomaimax/mes-system-sub006/internal/models"
)

var (
	ErrDeviceOccupied = errors.New("device already occupied")
	ErrMoldExhausted  = errors.New("mold capacity exhausted")
	ErrInMaintenance  = errors.New("resource in maintenance")
	ErrUnknownRes     = errors.New("unknown resource")
)

type deviceSlot struct {
	info   DeviceInfo
	window *Window
}

type moldSlot struct {
	info   MoldInfo
	active int64
}

// ResourceLedger tracks live capacity consumption for one scheduling run.
// It is seeded from the persisted device/mold rows and mutated in-process
// as reservations are made, so later plans in the same run see earlier
// claims. The cross-run serialization happens in the emitter transaction.
type ResourceLedger struct {
	mu      sync.Mutex
	devices map[int64]*deviceSlot
	molds   map[int64]*moldSlot
}

func NewResourceLedger() *ResourceLedger {
	return &ResourceLedger{
		devices: make(map[int64]*deviceSlot),
		molds:   make(map[int64]*moldSlot),
	}
}

func (rl *ResourceLedger) AddDevice(info DeviceInfo, occupied *Window) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.devices[info.DeviceID] = &deviceSlot{info: info, window: occupied}
}

func (rl *ResourceLedger) AddMold(info MoldInfo, activeTasks int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.molds[info.MoldID] = &moldSlot{info: info, active: activeTasks}
}

// Reserve atomically checks device free + mold load below quantity + both
// resources out of maintenance, then commits. A failed check leaves the
// ledger untouched.
func (rl *ResourceLedger) Reserve(deviceID, moldID int64, window Window) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	device, ok := rl.devices[deviceID]
	if !ok {
		return ErrUnknownRes
	}
	mold, ok := rl.molds[moldID]
	if !ok {
		return ErrUnknownRes
	}

	if device.info.Status != models.ResourceStatusNormal || mold.info.Status != models.ResourceStatusNormal {
		return ErrInMaintenance
	}
	if device.window != nil && overlaps(*device.window, window) {
		return ErrDeviceOccupied
	}
	if mold.active >= mold.info.Quantity {
		return ErrMoldExhausted
	}

	w := window
	device.window = &w
	mold.active++

	return nil
}

func (rl *ResourceLedger) Release(deviceID, moldID int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if device, ok := rl.devices[deviceID]; ok {
		device.window = nil
	}
	if mold, ok := rl.molds[moldID]; ok && mold.active > 0 {
		mold.active--
	}
}

func (rl *ResourceLedger) ActiveLoad(moldID int64) int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if mold, ok := rl.molds[moldID]; ok {
		return mold.active
	}
	return 0
}

func (rl *ResourceLedger) IsDeviceFree(deviceID int64, at Window) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	device, ok := rl.devices[deviceID]
	if !ok {
		return false
	}

	return device.window == nil || !overlaps(*device.window, at)
}

func overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
