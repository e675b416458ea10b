package tracing

import (
	"sync"

	"github.com/sarchlab/fifosim/fifo"
)

// OccupancyTracer collects occupancy statistics of a controller, sampled
// after every tick.
type OccupancyTracer struct {
	lock sync.Mutex

	ticks          uint64
	occupancySum   uint64
	maxOccupancy   int
	fullTicks      uint64
	emptyTicks     uint64
	capacityByName map[string]int
}

// NewOccupancyTracer creates a new OccupancyTracer.
func NewOccupancyTracer() *OccupancyTracer {
	return &OccupancyTracer{
		capacityByName: make(map[string]int),
	}
}

// Watch registers the capacity of a controller so that full ticks can be
// counted, and starts collecting its transitions.
func (t *OccupancyTracer) Watch(ctrl *fifo.Controller) {
	t.lock.Lock()
	t.capacityByName[ctrl.Name()] = ctrl.Capacity()
	t.lock.Unlock()

	CollectTrace(ctrl, t)
}

// RecordTransition samples the occupancy after a tick.
func (t *OccupancyTracer) RecordTransition(
	where string,
	trans fifo.Transition,
) {
	t.lock.Lock()
	defer t.lock.Unlock()

	occupancy := trans.OccupancyAfter

	t.ticks++
	t.occupancySum += uint64(occupancy)

	if occupancy > t.maxOccupancy {
		t.maxOccupancy = occupancy
	}

	if occupancy == 0 {
		t.emptyTicks++
	}

	capacity, ok := t.capacityByName[where]
	if ok && occupancy == capacity {
		t.fullTicks++
	}
}

// AverageOccupancy returns the mean occupancy over all the sampled ticks.
func (t *OccupancyTracer) AverageOccupancy() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.ticks == 0 {
		return 0
	}

	return float64(t.occupancySum) / float64(t.ticks)
}

// MaxOccupancy returns the highest occupancy seen.
func (t *OccupancyTracer) MaxOccupancy() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.maxOccupancy
}

// FullTicks returns the number of ticks after which a watched controller was
// full.
func (t *OccupancyTracer) FullTicks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.fullTicks
}

// EmptyTicks returns the number of ticks after which the controller was
// empty.
func (t *OccupancyTracer) EmptyTicks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.emptyTicks
}

// Ticks returns the number of ticks sampled.
func (t *OccupancyTracer) Ticks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.ticks
}
