package state

import (
	"maps"
	"slices"
	"strings"
)

type NodeId string

// IsRouter reports whether id names a router rather than a host.
func IsRouter(id NodeId) bool {
	return len(id) == RouterIdLength && strings.HasPrefix(string(id), RouterPrefix)
}

// CostTable maps a neighbour to the interfaces it is attached on and their link costs.
type CostTable map[NodeId]map[int]Cost

// Neighbour is a directly attached node, reached over its cheapest interface.
type Neighbour struct {
	Id        NodeId
	Interface int
	Cost      Cost
}

// Neighbour resolves the interface and cost used to reach id.
func (c CostTable) Neighbour(id NodeId) (Neighbour, bool) {
	intfs, ok := c[id]
	if !ok || len(intfs) == 0 {
		return Neighbour{}, false
	}
	best := Neighbour{Id: id, Interface: -1, Cost: INF}
	for _, intf := range slices.Sorted(maps.Keys(intfs)) {
		if best.Interface == -1 || intfs[intf] < best.Cost {
			best.Interface = intf
			best.Cost = intfs[intf]
		}
	}
	return best, true
}

// Routers returns the neighbouring routers in ascending id order.
func (c CostTable) Routers() []NodeId {
	out := make([]NodeId, 0, len(c))
	for id := range c {
		if IsRouter(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Interfaces returns the number of interfaces, one past the highest index.
func (c CostTable) Interfaces() int {
	n := 0
	for _, intfs := range c {
		for intf := range intfs {
			n = max(n, intf+1)
		}
	}
	return n
}

// AddCost adds two costs, saturating at INF.
func AddCost(a, b Cost) Cost {
	if a == INF || b == INF {
		return INF
	}
	return Cost(min(uint64(INF), uint64(a)+uint64(b)))
}
