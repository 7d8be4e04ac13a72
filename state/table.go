package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Vector is a routing table keyed by destination, then by reporting router.
type Vector map[NodeId]map[NodeId]Cost

// RoutingTable is the distance-vector store of a single router. It is not safe for
// concurrent use; only the owning router goroutine may touch it.
type RoutingTable struct {
	Id    NodeId
	costs CostTable
	table Vector
}

// NewRoutingTable seeds the table with the link cost to every neighbour and a zero
// cost to the router itself.
func NewRoutingTable(id NodeId, costs CostTable) *RoutingTable {
	t := &RoutingTable{
		Id:    id,
		costs: costs,
		table: make(Vector),
	}
	for neigh := range costs {
		n, ok := costs.Neighbour(neigh)
		if !ok {
			continue
		}
		t.table[neigh] = map[NodeId]Cost{id: n.Cost}
	}
	t.table[id] = map[NodeId]Cost{id: 0}
	return t
}

// Cost returns what via reports as its cost to dst, or INF if unknown.
func (t *RoutingTable) Cost(dst, via NodeId) Cost {
	col, ok := t.table[dst]
	if !ok {
		return INF
	}
	c, ok := col[via]
	if !ok {
		return INF
	}
	return c
}

// CostToSelf returns this router's own cost to dst.
func (t *RoutingTable) CostToSelf(dst NodeId) Cost {
	return t.Cost(dst, t.Id)
}

// Merge records the vector reported by src and relaxes every self cost through the
// neighbouring routers. It reports whether any self cost decreased.
func (t *RoutingTable) Merge(src NodeId, vec Vector) bool {
	if src == t.Id {
		return false
	}
	keys := make(map[NodeId]struct{}, len(t.table)+len(vec))
	for dst := range t.table {
		keys[dst] = struct{}{}
	}
	for dst := range vec {
		keys[dst] = struct{}{}
	}
	dsts := slices.Sorted(maps.Keys(keys))

	for _, dst := range dsts {
		reported := INF
		if col, ok := vec[dst]; ok {
			if c, ok := col[src]; ok {
				reported = c
			}
		}
		if _, ok := t.table[dst]; !ok {
			t.table[dst] = map[NodeId]Cost{t.Id: INF}
		}
		t.table[dst][src] = reported
	}

	updated := false
	for _, y := range dsts {
		col := t.table[y]
		for _, v := range t.costs.Routers() {
			if v == y {
				continue
			}
			n, _ := t.costs.Neighbour(v)
			bf := AddCost(n.Cost, t.Cost(y, v))
			if bf < t.CostToSelf(y) {
				col[t.Id] = bf
				updated = true
			}
		}
	}
	return updated
}

// NextHop picks the neighbouring router minimising its reported cost to dst plus our
// cost to it. Ties go to the lowest id. If every candidate is unreachable the lowest id
// is still returned; ok is false only when there are no neighbouring routers.
func (t *RoutingTable) NextHop(dst NodeId) (nh NodeId, cost Cost, ok bool) {
	for _, v := range t.costs.Routers() {
		c := AddCost(t.Cost(dst, v), t.CostToSelf(v))
		if !ok || c < cost {
			nh, cost, ok = v, c, true
		}
	}
	return
}

// Snapshot returns a deep copy of the table.
func (t *RoutingTable) Snapshot() Vector {
	out := make(Vector, len(t.table))
	for dst, col := range t.table {
		out[dst] = maps.Clone(col)
	}
	return out
}

// Destinations returns every known destination in ascending order.
func (t *RoutingTable) Destinations() []NodeId {
	return slices.Sorted(maps.Keys(t.table))
}

// Reporters returns the owner followed by every other reporting router in ascending order.
func (v Vector) Reporters(owner NodeId) []NodeId {
	set := make(map[NodeId]struct{})
	for _, col := range v {
		for r := range col {
			if r != owner {
				set[r] = struct{}{}
			}
		}
	}
	return append([]NodeId{owner}, slices.Sorted(maps.Keys(set))...)
}

func (c Cost) String() string {
	if c == INF {
		return "inf"
	}
	return fmt.Sprintf("%d", uint32(c))
}

// String renders the self costs, one destination per line.
func (t *RoutingTable) String() string {
	buf := make([]string, 0, len(t.table))
	for _, dst := range t.Destinations() {
		buf = append(buf, fmt.Sprintf("%s: %s", dst, t.CostToSelf(dst)))
	}
	return strings.Join(buf, "\n")
}
