package core

import (
	"errors"
	"fmt"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
)

type RouterEvent int

// trace events

const (
	TableInitialized RouterEvent = iota
	RouteImproved
	PacketForwarded
	RoutesSent
	RoutesReceived
)

// warn events

const (
	PacketDropped RouterEvent = iota + 1000
	MalformedPacket
	UnknownNeighbour
	NoRoute
)

func (e RouterEvent) String() string {
	switch e {
	case TableInitialized:
		return "TABLE_INIT"
	case RouteImproved:
		return "ROUTE_IMPROVED"
	case PacketForwarded:
		return "FORWARDED"
	case RoutesSent:
		return "ROUTES_SENT"
	case RoutesReceived:
		return "ROUTES_RECV"
	case PacketDropped:
		return "DROPPED"
	case MalformedPacket:
		return "MALFORMED"
	case UnknownNeighbour:
		return "UNKNOWN_NEIGHBOUR"
	case NoRoute:
		return "NO_ROUTE"
	}
	return fmt.Sprintf("EVENT(%d)", int(e))
}

var (
	ErrNoRoute          = errors.New("no route")
	ErrUnknownNeighbour = errors.New("routes from a router that is not a neighbour")
)

// ForwardPacket sends a data packet towards its destination. A directly attached
// destination always wins; otherwise the next hop comes from the routing table.
// Routers do not accept data addressed to themselves, such a packet is forwarded again.
func (r *Router) ForwardPacket(p protocol.Packet, in int) error {
	dst := state.NodeId(p.Dst)
	intf := -1
	if n, ok := r.Costs.Neighbour(dst); ok {
		intf = n.Interface
	} else if nh, cost, ok := r.Table.NextHop(dst); ok {
		n, _ := r.Costs.Neighbour(nh)
		intf = n.Interface
		r.Log(PacketForwarded, "selected next hop", "dst", dst, "nh", nh, "cost", cost)
	}
	if intf == -1 {
		return fmt.Errorf("%w to %s", ErrNoRoute, dst)
	}
	pkt, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := r.Intf[intf].Send(pkt, r.Env.BlockingForward); err != nil {
		return err
	}
	perf.ForwardedPerSecond.Add(1)
	r.Log(PacketForwarded, "forwarded packet", "dst", dst, "in", in, "out", intf)
	return nil
}

// UpdateRoutes merges the distance vector carried by a control packet and floods our
// table on every interface if any of our costs improved.
func (r *Router) UpdateRoutes(p protocol.Packet, in int) error {
	src, vec, err := protocol.DecodeRoutes(p.Data)
	if err != nil {
		return err
	}
	reporter := state.NodeId(src)
	perf.ControlRecvPerSecond.Add(1)
	r.Log(RoutesReceived, "received routes", "from", reporter, "in", in)
	if reporter == r.Id {
		return nil
	}
	if _, ok := r.Costs[reporter]; !ok || !state.IsRouter(reporter) {
		return fmt.Errorf("%w: %s", ErrUnknownNeighbour, reporter)
	}
	if !r.Table.Merge(reporter, mapFromVector(vec)) {
		return nil
	}
	r.tableChanged()
	r.Log(RouteImproved, "routing table improved", "from", reporter, "table", r.Table.String())
	r.Announce()
	return nil
}

func mapToVector(v state.Vector) protocol.Vector {
	out := make(protocol.Vector, len(v))
	for dst, col := range v {
		m := make(map[string]uint32, len(col))
		for via, c := range col {
			m[string(via)] = uint32(c)
		}
		out[string(dst)] = m
	}
	return out
}

func mapFromVector(v protocol.Vector) state.Vector {
	out := make(state.Vector, len(v))
	for dst, col := range v {
		m := make(map[state.NodeId]state.Cost, len(col))
		for via, c := range col {
			m[state.NodeId(via)] = state.Cost(c)
		}
		out[state.NodeId(dst)] = m
	}
	return out
}
