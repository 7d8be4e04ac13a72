package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/state"
	"github.com/jellydator/ttlcache/v3"
)

// Router is a multi-interface distance-vector router. Everything except Inspect and
// the convergence counters must be used from the goroutine running Run.
type Router struct {
	Id    state.NodeId
	Env   *state.Env
	Costs state.CostTable
	Table *state.RoutingTable
	Intf  []*state.Interface

	tasks *state.Dispatcher[*Router]
	drops *ttlcache.Cache[dropKey, struct{}]

	changes    atomic.Uint64
	dropped    atomic.Uint64
	lastChange atomic.Int64
}

type dropKey struct {
	intf   int
	reason string
}

// NewRouter creates one interface per cost table interface index and seeds the
// routing table from the link costs.
func NewRouter(cfg state.RouterCfg, env *state.Env) *Router {
	id, costs := cfg.Id, cfg.Costs
	r := &Router{
		Id:    id,
		Env:   env,
		Costs: costs,
		Table: state.NewRoutingTable(id, costs),
		tasks: state.NewDispatcher[*Router](state.InspectQueueSize),
		drops: ttlcache.New[dropKey, struct{}](
			ttlcache.WithTTL[dropKey, struct{}](state.DropReportTTL),
			ttlcache.WithDisableTouchOnHit[dropKey, struct{}](),
		),
	}
	r.Intf = make([]*state.Interface, costs.Interfaces())
	for i := range r.Intf {
		r.Intf[i] = state.NewInterface(env.QueueSize)
	}
	r.lastChange.Store(time.Now().UnixNano())
	r.Log(TableInitialized, "initialized routing table", "table", r.Table.Snapshot())
	return r
}

func (r *Router) String() string {
	return string(r.Id)
}

func (r *Router) Log(event RouterEvent, desc string, args ...any) {
	r.Env.Log.Debug(fmt.Sprintf("%s %s", event.String(), desc), args...)
}

// Changes returns how many times the routing table improved, and when it last did.
func (r *Router) Changes() (uint64, time.Time) {
	return r.changes.Load(), time.Unix(0, r.lastChange.Load())
}

// Dropped returns how many packets the router has dropped.
func (r *Router) Dropped() uint64 {
	return r.dropped.Load()
}

func (r *Router) tableChanged() {
	r.changes.Add(1)
	r.lastChange.Store(time.Now().UnixNano())
	perf.TableChangesPerSecond.Add(1)
}

// Announce sends the full routing table out of every interface.
func (r *Router) Announce() {
	for i := range r.Intf {
		if err := r.SendRoutes(i); err != nil {
			r.reportDrop(i, "routes", err)
		}
	}
}

// Inspect runs fun on the router goroutine between two rounds and returns its result.
// Once Run has returned it fails with state.ErrDispatcherClosed.
func (r *Router) Inspect(ctx context.Context, fun func(r *Router) (any, error)) (any, error) {
	return r.tasks.DispatchWait(ctx, fun)
}

// Run processes the interfaces until ctx is done. The stop check happens once per
// round, so an outstanding blocking send delays shutdown.
func (r *Router) Run(ctx context.Context) error {
	defer r.tasks.Close()
	r.Env.Log.Debug("router started")
	r.Announce()
	if r.Env.AdvertiseInterval > 0 {
		r.tasks.RepeatTask(ctx, func(r *Router) error {
			r.Announce()
			return nil
		}, r.Env.AdvertiseInterval)
	}
	for {
		start := time.Now()
		n := r.ProcessQueues()
		if err := r.tasks.Drain(r); err != nil {
			r.Env.Log.Warn("inspection failed", "error", err)
		}
		if ctx.Err() != nil {
			break
		}
		if n == 0 {
			time.Sleep(state.IdleDelay)
			continue
		}
		perf.RoundLatency.Add(float64(time.Since(start).Microseconds()))
	}
	r.Env.Log.Debug("router stopped", "reason", context.Cause(ctx))
	return nil
}
