package core

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
)

// Host is an end node with a single interface. It produces and consumes data packets
// and does no routing.
type Host struct {
	Id   state.NodeId
	Env  *state.Env
	Intf *state.Interface

	mu       sync.Mutex
	received []protocol.Packet
}

func NewHost(id state.NodeId, env *state.Env) *Host {
	return &Host{
		Id:   id,
		Env:  env,
		Intf: state.NewInterface(state.DefaultQueueSize),
	}
}

func (h *Host) String() string {
	return string(h.Id)
}

// UdtSend enqueues a data packet for dst, waiting for space if the interface is full.
func (h *Host) UdtSend(dst state.NodeId, data []byte) error {
	pkt, err := protocol.Encode(string(dst), protocol.Data, data)
	if err != nil {
		return err
	}
	h.Env.Log.Info("sending packet", "dst", dst, "packet", string(pkt))
	return h.Intf.Send(pkt, true)
}

// UdtReceive handles at most one inbound packet and reports whether there was one.
func (h *Host) UdtReceive() bool {
	raw, ok := h.Intf.TryReceive()
	if !ok {
		return false
	}
	p, err := protocol.Decode(raw)
	if err != nil {
		perf.MalformedPerSecond.Add(1)
		h.Env.Log.Warn("received malformed packet", "packet", string(raw), "error", err)
		return true
	}
	if p.Proto == protocol.Control {
		h.Env.Log.Debug("ignoring routes", "packet", p.String())
		return true
	}
	if state.NodeId(p.Dst) != h.Id {
		h.Env.Log.Warn("received packet not meant for this host", "packet", p.String())
	} else {
		h.Env.Log.Info("received packet", "packet", p.String())
	}
	perf.DeliveredPerSecond.Add(1)
	h.mu.Lock()
	h.received = append(h.received, p)
	h.mu.Unlock()
	return true
}

// Run receives packets until ctx is done.
func (h *Host) Run(ctx context.Context) error {
	h.Env.Log.Debug("host started")
	for ctx.Err() == nil {
		if !h.UdtReceive() {
			time.Sleep(state.IdleDelay)
		}
	}
	h.Env.Log.Debug("host stopped", "reason", context.Cause(ctx))
	return nil
}

// Received returns the packets received so far, in arrival order.
func (h *Host) Received() []protocol.Packet {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.received)
}
