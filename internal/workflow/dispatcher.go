// Package workflow collects workflow calls during a unit of work and hands
// them to the workflow engine once the unit has committed.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// MergeFunc combines a pending parameter with a new one.
type MergeFunc func(prev, next any) any

// Merge adapts a typed merge function. Parameters of another type are
// replaced rather than merged.
func Merge[P any](fn func(prev, next P) P) MergeFunc {
	return func(prev, next any) any {
		p, ok1 := prev.(P)
		n, ok2 := next.(P)
		if !ok1 || !ok2 {
			return next
		}
		return fn(p, n)
	}
}

// Registrar is the side of the dispatcher visible to services.
type Registrar interface {
	RegisterOrUpdateWorkflowCall(name string, param any, merge MergeFunc, wait bool)
}

// Call is one pending workflow invocation.
type Call struct {
	Name  string
	Param any
	Wait  bool
}

// Dispatcher holds the calls of a single unit of work. It must not be
// shared between units.
type Dispatcher struct {
	executor Executor
	log      logrus.FieldLogger

	mu    sync.Mutex
	calls []*Call
	byKey map[string]*Call
}

func NewDispatcher(executor Executor, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{executor: executor, log: log, byKey: map[string]*Call{}}
}

// RegisterOrUpdateWorkflowCall enqueues a call to name, or merges param
// into the call already pending for it. A nil merge replaces the pending
// parameter. Once a registration asks to wait the call waits.
func (d *Dispatcher) RegisterOrUpdateWorkflowCall(name string, param any, merge MergeFunc, wait bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.byKey[name]
	if !ok {
		c = &Call{Name: name, Param: param, Wait: wait}
		d.byKey[name] = c
		d.calls = append(d.calls, c)
		callsRegistered.WithLabelValues(name).Inc()
		return
	}
	if merge != nil {
		c.Param = merge(c.Param, param)
	} else {
		c.Param = param
	}
	c.Wait = c.Wait || wait
	callsMerged.WithLabelValues(name).Inc()
}

// Pending returns a snapshot of the queued calls in registration order.
func (d *Dispatcher) Pending() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, 0, len(d.calls))
	for _, c := range d.calls {
		out = append(out, *c)
	}
	return out
}

// Flush executes every pending call once and empties the queue. A failed
// call does not stop the others; all failures are returned together.
func (d *Dispatcher) Flush(ctx context.Context) error {
	calls := d.Pending()
	d.Discard()

	var errList []error
	for _, c := range calls {
		log := d.log.WithField("workflow", c.Name)
		if err := d.executor.Execute(ctx, c.Name, c.Param, c.Wait); err != nil {
			callsDispatched.WithLabelValues(c.Name, "error").Inc()
			log.WithError(err).Error("workflow dispatch failed")
			errList = append(errList, fmt.Errorf("workflow %s: %w", c.Name, err))
			continue
		}
		callsDispatched.WithLabelValues(c.Name, "ok").Inc()
		log.Debug("workflow dispatched")
	}
	return errors.Join(errList...)
}

// Discard drops every pending call.
func (d *Dispatcher) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.byKey = map[string]*Call{}
}
