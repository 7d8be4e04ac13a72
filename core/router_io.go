package core

import (
	"errors"
	"log/slog"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/protocol"
)

// ProcessQueues runs one round: at most one packet is taken from each interface, in
// interface order. It returns the number of packets handled.
func (r *Router) ProcessQueues() int {
	n := 0
	for i, intf := range r.Intf {
		raw, ok := intf.TryReceive()
		if !ok {
			continue
		}
		n++
		r.handle(raw, i)
	}
	return n
}

func (r *Router) handle(raw []byte, in int) {
	p, err := protocol.Decode(raw)
	if err != nil {
		perf.MalformedPerSecond.Add(1)
		r.reportDrop(in, "malformed", err)
		return
	}
	switch p.Proto {
	case protocol.Data:
		err = r.ForwardPacket(p, in)
	case protocol.Control:
		err = r.UpdateRoutes(p, in)
	}
	if err != nil {
		r.reportDrop(in, p.Proto.String(), err)
	}
}

// SendRoutes advertises our routing table on interface i. The send never blocks.
func (r *Router) SendRoutes(i int) error {
	payload, err := protocol.EncodeRoutes(string(r.Id), mapToVector(r.Table.Snapshot()))
	if err != nil {
		return err
	}
	pkt, err := protocol.Encode(protocol.Broadcast, protocol.Control, payload)
	if err != nil {
		return err
	}
	if err := r.Intf[i].Send(pkt, false); err != nil {
		return err
	}
	perf.ControlSentPerSecond.Add(1)
	r.Log(RoutesSent, "sent routes", "out", i, "len", len(pkt))
	return nil
}

func dropEvent(err error) RouterEvent {
	switch {
	case errors.Is(err, protocol.ErrFormat):
		return MalformedPacket
	case errors.Is(err, ErrNoRoute):
		return NoRoute
	case errors.Is(err, ErrUnknownNeighbour):
		return UnknownNeighbour
	}
	return PacketDropped
}

// reportDrop records a dropped packet. Every drop is traced, but only the first drop
// per interface and reason within DropReportTTL is logged as a warning.
func (r *Router) reportDrop(intf int, reason string, err error) {
	total := r.dropped.Add(1)
	perf.DroppedPerSecond.Add(1)
	r.Log(dropEvent(err), "dropped packet", "intf", intf, "reason", reason, "error", err)

	r.drops.DeleteExpired()
	if _, found := r.drops.GetOrSet(dropKey{intf, reason}, struct{}{}); found {
		return
	}
	r.Env.Log.Warn("dropping packets",
		slog.Int("intf", intf),
		slog.String("reason", reason),
		slog.Uint64("total", total),
		slog.Any("error", err),
	)
}
