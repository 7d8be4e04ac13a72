package state

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

var hostPattern = regexp.MustCompile("^[1-9][0-9]{0,4}$")
var routerPattern = regexp.MustCompile("^R[0-9A-Za-z]$")

func HostValidator(id NodeId) error {
	if !hostPattern.MatchString(string(id)) {
		return fmt.Errorf("%q is not a valid host address, must match pattern %s", id, hostPattern.String())
	}
	return nil
}

func RouterValidator(id NodeId) error {
	if !routerPattern.MatchString(string(id)) {
		return fmt.Errorf("%q is not a valid router id, must match pattern %s", id, routerPattern.String())
	}
	return nil
}

func CostTableValidator(id NodeId, costs CostTable) error {
	if len(costs) == 0 {
		return fmt.Errorf("router %s has no neighbours", id)
	}
	owner := make(map[int]NodeId)
	for _, neigh := range slices.Sorted(maps.Keys(costs)) {
		if neigh == id {
			return fmt.Errorf("router %s lists itself as a neighbour", id)
		}
		if len(costs[neigh]) == 0 {
			return fmt.Errorf("router %s has no interface to %s", id, neigh)
		}
		for intf, cost := range costs[neigh] {
			if intf < 0 {
				return fmt.Errorf("router %s has negative interface %d", id, intf)
			}
			if cost == INF {
				return fmt.Errorf("router %s has infinite cost to %s", id, neigh)
			}
			if prev, ok := owner[intf]; ok {
				return fmt.Errorf("router %s interface %d is shared by %s and %s", id, intf, prev, neigh)
			}
			owner[intf] = neigh
		}
	}
	for intf := range len(owner) {
		if _, ok := owner[intf]; !ok {
			return fmt.Errorf("router %s interfaces must be numbered from 0 without gaps, missing %d", id, intf)
		}
	}
	return nil
}

func TopologyValidator(t *Topology) error {
	if t.QueueSize < 0 {
		return fmt.Errorf("queue_size must not be negative")
	}
	if t.AdvertiseInterval < 0 {
		return fmt.Errorf("advertise_interval must not be negative")
	}
	nodes := make(map[NodeId]struct{})
	for _, h := range t.Hosts {
		if err := HostValidator(h); err != nil {
			return err
		}
		if _, ok := nodes[h]; ok {
			return fmt.Errorf("duplicate node %s", h)
		}
		nodes[h] = struct{}{}
	}
	for _, r := range t.Routers {
		if err := RouterValidator(r.Id); err != nil {
			return err
		}
		if _, ok := nodes[r.Id]; ok {
			return fmt.Errorf("duplicate node %s", r.Id)
		}
		nodes[r.Id] = struct{}{}
	}

	attached := make(map[NodeId]NodeId)
	for _, r := range t.Routers {
		if err := CostTableValidator(r.Id, r.Costs); err != nil {
			return err
		}
		for _, neigh := range slices.Sorted(maps.Keys(r.Costs)) {
			if _, ok := nodes[neigh]; !ok {
				return fmt.Errorf("router %s references undefined node %s", r.Id, neigh)
			}
			if IsRouter(neigh) {
				if _, ok := t.GetRouter(neigh).Costs[r.Id]; !ok {
					return fmt.Errorf("router %s links to %s, but %s does not link back", r.Id, neigh, neigh)
				}
				continue
			}
			if prev, ok := attached[neigh]; ok || len(r.Costs[neigh]) > 1 {
				if !ok {
					prev = r.Id
				}
				return fmt.Errorf("host %s has a single interface, but is attached to %s and %s", neigh, prev, r.Id)
			}
			attached[neigh] = r.Id
		}
	}
	for _, h := range t.Hosts {
		if _, ok := attached[h]; !ok {
			return fmt.Errorf("host %s is not attached to any router", h)
		}
	}

	for _, l := range t.Links {
		if l.Loss < 0 || l.Loss >= 1 {
			return fmt.Errorf("link %s-%s loss %v must be in [0, 1)", l.A, l.B, l.Loss)
		}
		if !linked(t, l.A, l.B) {
			return fmt.Errorf("link %s-%s does not exist in any cost table", l.A, l.B)
		}
	}
	_, err := t.Edges()
	return err
}

func linked(t *Topology, a, b NodeId) bool {
	if r := t.GetRouter(a); r != nil {
		if _, ok := r.Costs[b]; ok {
			return true
		}
	}
	if r := t.GetRouter(b); r != nil {
		if _, ok := r.Costs[a]; ok {
			return true
		}
	}
	return false
}
