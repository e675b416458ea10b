package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

// CollectTrace lets the tracer collect the transitions of a domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer, where: domain.Name()}
	domain.AcceptHook(&h)
}

// A traceHook forwards tick transitions to a tracer.
type traceHook struct {
	t     Tracer
	where string
}

// Func calls the tracer when a tick completes.
func (h *traceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != fifo.HookPosTick {
		return
	}

	h.t.RecordTransition(h.where, ctx.Item.(fifo.Transition))
}
