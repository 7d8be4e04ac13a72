package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/state"
)

// Link is a physical link joining two interfaces. It carries packets in both
// directions and never blocks: a packet that does not fit in the receiving queue is lost.
type Link struct {
	Edge state.Edge
	A    *state.Interface
	B    *state.Interface
	Log  *slog.Logger

	lost uint64
}

func (l *Link) String() string {
	return fmt.Sprintf("%s-%s", l.Edge.A, l.Edge.B)
}

func (l *Link) carry(from, to *state.Interface, dir string) bool {
	pkt, ok := from.Collect()
	if !ok {
		return false
	}
	if l.Edge.Loss > 0 && rand.Float64() < l.Edge.Loss {
		l.lost++
		perf.LinkLostPerSecond.Add(1)
		l.Log.Debug("packet lost", "link", l.String(), "dir", dir)
		return true
	}
	if err := to.Deliver(pkt); err != nil {
		l.lost++
		perf.LinkLostPerSecond.Add(1)
		l.Log.Debug("packet lost", "link", l.String(), "dir", dir, "error", err)
		return true
	}
	perf.LinkCarriedPerSecond.Add(1)
	return true
}

// Transmit moves at most one packet in each direction and returns how many it took.
func (l *Link) Transmit() int {
	n := 0
	if l.carry(l.A, l.B, "a->b") {
		n++
	}
	if l.carry(l.B, l.A, "b->a") {
		n++
	}
	return n
}

// Lost returns the number of packets dropped by the link. Only safe to call once the
// link layer has stopped.
func (l *Link) Lost() uint64 {
	return l.lost
}

// LinkLayer drives every link of the network.
type LinkLayer struct {
	Links []*Link
	Log   *slog.Logger
}

// Transmit runs one pass over every link.
func (ll *LinkLayer) Transmit() int {
	n := 0
	for _, l := range ll.Links {
		n += l.Transmit()
	}
	return n
}

// Run transmits until ctx is done.
func (ll *LinkLayer) Run(ctx context.Context) error {
	ll.Log.Debug("link layer started", "links", len(ll.Links))
	for ctx.Err() == nil {
		if ll.Transmit() == 0 {
			time.Sleep(state.IdleDelay)
		}
	}
	ll.Log.Debug("link layer stopped", "reason", context.Cause(ctx))
	return nil
}
