package state

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

// RouterCfg describes one router and its static cost table.
type RouterCfg struct {
	Id    NodeId
	Costs CostTable
}

// LinkCfg overrides properties of the link between two nodes.
type LinkCfg struct {
	A    NodeId
	B    NodeId
	Loss float64 `yaml:",omitempty"` // probability that a packet crossing the link is dropped
}

// Topology is the static network description loaded at startup.
type Topology struct {
	QueueSize         int           `yaml:"queue_size,omitempty"`         // capacity of each router interface queue, 0 for the default
	ForwardBlocking   *bool         `yaml:"forward_blocking,omitempty"`   // forward data with blocking sends, defaults to true
	AdvertiseInterval time.Duration `yaml:"advertise_interval,omitempty"` // periodic full table advertisement, 0 disables it
	Hosts             []NodeId
	Routers           []RouterCfg
	Links             []LinkCfg `yaml:",omitempty"`
}

// Endpoint is one side of a link.
type Endpoint struct {
	Node      NodeId
	Interface int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Node, e.Interface)
}

// Edge is a physical link between two interfaces.
type Edge struct {
	A    Endpoint
	B    Endpoint
	Loss float64
}

func (t *Topology) BlockingForward() bool {
	return t.ForwardBlocking == nil || *t.ForwardBlocking
}

func (t *Topology) GetRouter(id NodeId) *RouterCfg {
	idx := slices.IndexFunc(t.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		return nil
	}
	return &t.Routers[idx]
}

func (t *Topology) HasHost(id NodeId) bool {
	return slices.Contains(t.Hosts, id)
}

func (t *Topology) loss(a, b NodeId) float64 {
	want := MakeSortedPair(a, b)
	for _, l := range t.Links {
		if MakeSortedPair(l.A, l.B) == want {
			return l.Loss
		}
	}
	return 0
}

// Edges derives the physical links from the cost tables. A host always attaches on
// interface 0; parallel links between two routers are paired in interface order.
func (t *Topology) Edges() ([]Edge, error) {
	edges := make([]Edge, 0)
	for _, r := range t.Routers {
		for _, neigh := range slices.Sorted(maps.Keys(r.Costs)) {
			local := slices.Sorted(maps.Keys(r.Costs[neigh]))
			if !IsRouter(neigh) {
				for _, intf := range local {
					edges = append(edges, Edge{
						A:    Endpoint{r.Id, intf},
						B:    Endpoint{neigh, 0},
						Loss: t.loss(r.Id, neigh),
					})
				}
				continue
			}
			if neigh < r.Id {
				continue // emitted from the other side
			}
			peer := t.GetRouter(neigh)
			if peer == nil {
				return nil, fmt.Errorf("router %s references undefined router %s", r.Id, neigh)
			}
			remote := slices.Sorted(maps.Keys(peer.Costs[r.Id]))
			if len(remote) != len(local) {
				return nil, fmt.Errorf("router %s has %d interfaces to %s, but %s has %d back", r.Id, len(local), neigh, neigh, len(remote))
			}
			for i := range local {
				edges = append(edges, Edge{
					A:    Endpoint{r.Id, local[i]},
					B:    Endpoint{neigh, remote[i]},
					Loss: t.loss(r.Id, neigh),
				})
			}
		}
	}
	return edges, nil
}

func ParseTopology(data []byte) (*Topology, error) {
	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	return &topo, nil
}

// LoadTopology reads and validates a topology file.
func LoadTopology(path string) (*Topology, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	topo, err := ParseTopology(file)
	if err != nil {
		return nil, err
	}
	if err := TopologyValidator(topo); err != nil {
		return nil, fmt.Errorf("invalid topology %s: %w", path, err)
	}
	return topo, nil
}
