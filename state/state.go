package state

import (
	"log/slog"
	"time"
)

// Env is what a node reads from its surroundings. It can be read from any goroutine.
type Env struct {
	Log *slog.Logger
	// QueueSize is the capacity of each router interface queue.
	QueueSize int
	// BlockingForward selects blocking sends for forwarded data packets.
	BlockingForward bool
	// AdvertiseInterval re-advertises the full table periodically when positive.
	AdvertiseInterval time.Duration
}

// NewEnv builds the node environment described by a topology.
func NewEnv(t *Topology, log *slog.Logger) *Env {
	return &Env{
		Log:               log,
		QueueSize:         t.QueueSize,
		BlockingForward:   t.BlockingForward(),
		AdvertiseInterval: t.AdvertiseInterval,
	}
}

// ForNode returns a copy of the environment logging with the node id attached.
func (e *Env) ForNode(id NodeId) *Env {
	n := *e
	n.Log = e.Log.With("node", string(id))
	return &n
}
