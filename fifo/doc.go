// Package fifo implements a tick-synchronous bounded queue controller.
//
// A Controller owns a fixed number of slots, a read pointer, a write pointer
// and an occupancy counter. Callers drive four input levels (reset, push,
// drop and the input word) and call Tick once per clock edge. Every tick
// applies at most one push and one drop, and only on the rising edge of the
// corresponding request: a request held high for several ticks is accepted
// once.
//
// Pushing into a full queue and dropping from an empty queue are silent
// no-ops. They can be observed through the HookPosOverflow and
// HookPosUnderflow hook positions.
//
// Example:
//
//	ctrl, err := fifo.MakeBuilder().
//		WithCapacity(4).
//		WithDataWidth(32).
//		Build("Queue")
//	if err != nil {
//		return err
//	}
//
//	ctrl.SetInputWord(0xDEADBEEF)
//	ctrl.SetPush(true)
//	ctrl.Tick()
//	ctrl.SetPush(false)
//	ctrl.Tick()
//
//	head := ctrl.HeadWord() // 0xDEADBEEF
package fifo
