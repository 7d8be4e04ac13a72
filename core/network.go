package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/encodeous/dvroute/render"
	"github.com/encodeous/dvroute/state"
)

var errStopped = errors.New("network stopped")

// Network is a running simulation: every host and router in its own goroutine, joined
// by a link layer.
type Network struct {
	Env     *state.Env
	Hosts   map[state.NodeId]*Host
	Routers map[state.NodeId]*Router
	Links   *LinkLayer

	running    atomic.Bool
	stopOnce   sync.Once
	nodeCancel context.CancelCauseFunc
	linkCancel context.CancelCauseFunc
	nodes      sync.WaitGroup
	links      sync.WaitGroup
}

// Build creates the nodes of a validated topology and wires their interfaces together.
func Build(topo *state.Topology, env *state.Env) (*Network, error) {
	n := &Network{
		Env:     env,
		Hosts:   make(map[state.NodeId]*Host),
		Routers: make(map[state.NodeId]*Router),
		Links:   &LinkLayer{Log: env.Log.With("node", "link")},
	}
	for _, id := range topo.Hosts {
		n.Hosts[id] = NewHost(id, env.ForNode(id))
	}
	for _, cfg := range topo.Routers {
		n.Routers[cfg.Id] = NewRouter(cfg, env.ForNode(cfg.Id))
	}
	edges, err := topo.Edges()
	if err != nil {
		return nil, err
	}
	for _, edge := range edges {
		a, err := n.endpoint(edge.A)
		if err != nil {
			return nil, err
		}
		b, err := n.endpoint(edge.B)
		if err != nil {
			return nil, err
		}
		n.Links.Links = append(n.Links.Links, &Link{
			Edge: edge,
			A:    a,
			B:    b,
			Log:  n.Links.Log,
		})
	}
	return n, nil
}

func (n *Network) endpoint(ep state.Endpoint) (*state.Interface, error) {
	if h, ok := n.Hosts[ep.Node]; ok {
		if ep.Interface != 0 {
			return nil, fmt.Errorf("host %s has no interface %d", ep.Node, ep.Interface)
		}
		return h.Intf, nil
	}
	if r, ok := n.Routers[ep.Node]; ok {
		if ep.Interface < 0 || ep.Interface >= len(r.Intf) {
			return nil, fmt.Errorf("router %s has no interface %d", ep.Node, ep.Interface)
		}
		return r.Intf[ep.Interface], nil
	}
	return nil, fmt.Errorf("link endpoint %s references undefined node", ep)
}

// Start runs every node and the link layer. Cancelling ctx stops the nodes, but the
// link layer keeps running until Stop so that blocked senders can drain.
func (n *Network) Start(ctx context.Context) {
	nodeCtx, nodeCancel := context.WithCancelCause(ctx)
	linkCtx, linkCancel := context.WithCancelCause(context.WithoutCancel(ctx))
	n.nodeCancel, n.linkCancel = nodeCancel, linkCancel
	n.running.Store(true)

	for _, h := range n.Hosts {
		n.nodes.Go(func() {
			_ = h.Run(nodeCtx)
		})
	}
	for _, r := range n.Routers {
		n.nodes.Go(func() {
			_ = r.Run(nodeCtx)
		})
	}
	n.links.Go(func() {
		_ = n.Links.Run(linkCtx)
	})
	n.Env.Log.Info("network started", "hosts", len(n.Hosts), "routers", len(n.Routers), "links", len(n.Links.Links))
}

// Stop halts every node, then the link layer, and waits for all of them to exit.
func (n *Network) Stop() {
	n.stopOnce.Do(func() {
		if n.nodeCancel == nil {
			return
		}
		n.nodeCancel(errStopped)
		n.nodes.Wait()
		n.running.Store(false)
		n.linkCancel(errStopped)
		n.links.Wait()
		n.Env.Log.Info("network stopped")
	})
}

func (n *Network) RouterIds() []state.NodeId {
	return slices.Sorted(maps.Keys(n.Routers))
}

// Snapshot returns a copy of a router's routing table.
func (n *Network) Snapshot(ctx context.Context, id state.NodeId) (state.Vector, error) {
	r, ok := n.Routers[id]
	if !ok {
		return nil, fmt.Errorf("router %s does not exist", id)
	}
	if !n.running.Load() {
		return r.Table.Snapshot(), nil
	}
	res, err := r.Inspect(ctx, func(r *Router) (any, error) {
		return r.Table.Snapshot(), nil
	})
	if errors.Is(err, state.ErrDispatcherClosed) {
		// the router goroutine has exited, the start ctx was cancelled
		return r.Table.Snapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	return res.(state.Vector), nil
}

// Inspect renders a router's routing table.
func (n *Network) Inspect(ctx context.Context, id state.NodeId) (string, error) {
	v, err := n.Snapshot(ctx, id)
	if err != nil {
		return "", err
	}
	return render.Table(id, v), nil
}

// Send makes host src send data to dst.
func (n *Network) Send(src, dst state.NodeId, data []byte) error {
	h, ok := n.Hosts[src]
	if !ok {
		return fmt.Errorf("host %s does not exist", src)
	}
	return h.UdtSend(dst, data)
}

// WaitConverged returns once no routing table has changed for quiet.
func (n *Network) WaitConverged(ctx context.Context, quiet time.Duration) error {
	poll := max(quiet/10, state.IdleDelay)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		var last time.Time
		for _, r := range n.Routers {
			if _, t := r.Changes(); t.After(last) {
				last = t
			}
		}
		if time.Since(last) >= quiet {
			return nil
		}
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-ticker.C:
		}
	}
}
